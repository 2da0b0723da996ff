package pipeline

import (
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// Activate is pipeline step 2 (spec.md §4.E): it computes the active
// external profiles (from the session's externally contributed profiles)
// and the active POM profiles (from the descriptor's own profile
// definitions), then injects both sets of overlays into a clone of raw.
//
// Grounded on DefaultModelBuilder.activate: external profiles are selected
// first against the raw model's own properties, then the descriptor's own
// profiles are selected against the resulting activation context, and
// finally both overlay sets are injected — external profiles last, so on a
// property conflict an external profile's value replaces a POM profile's.
func Activate(raw *descriptor.Raw, externalProfiles []descriptor.Profile, baseDirectory string, activeIDs, inactiveIDs []string, systemProps, userProps map[string]string) diagnostic.Result[*descriptor.Activated] {
	model := raw.Clone()

	ctx := descriptor.ActivationContext{
		BaseDirectory:      baseDirectory,
		ActiveProfileIDs:   activeIDs,
		InactiveProfileIDs: inactiveIDs,
		SystemProperties:   systemProps,
		UserProperties:     userProps,
		ProjectProperties:  rawPropertyStrings(model),
	}

	activeExternal := SelectActiveProfiles(externalProfiles, ctx)

	activePOM := SelectActiveProfiles(model.Profiles, ctx)
	for _, p := range activePOM {
		InjectProfile(model, p)
	}
	for _, p := range activeExternal {
		InjectProfile(model, p)
	}

	return diagnostic.Success(&descriptor.Activated{
		Raw:                    model,
		ActiveExternalProfiles: activeExternal,
		ActivationContext:      ctx,
	})
}

// rawPropertyStrings renders a descriptor's literal (non-expression)
// properties as plain strings for activation predicates, which only ever
// compare literal property activation values — interpolation has not run
// yet at activation time.
func rawPropertyStrings(model *descriptor.Raw) map[string]string {
	out := make(map[string]string, len(model.Properties))
	for k, v := range model.Properties {
		if s, ok := literalString(v); ok {
			out[k] = s
		}
	}
	return out
}
