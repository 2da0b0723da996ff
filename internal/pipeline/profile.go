package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/hashicorp/hcl/v2"
)

// SelectActiveProfiles implements the profile-selector contract (spec.md
// §4.F): given a collection of profiles and an activation context, it
// returns the active subset, order-stable by profile id.
//
// A profile is active when:
//   - its id is listed in ctx.ActiveProfileIDs (explicit activation always
//     wins, unless the id is also listed in InactiveProfileIDs), or
//   - its id is not listed in InactiveProfileIDs and its activation
//     predicate holds against ctx, or
//   - no profile was explicitly activated and the profile is
//     ActiveByDefault.
func SelectActiveProfiles(profiles []descriptor.Profile, ctx descriptor.ActivationContext) []descriptor.Profile {
	inactive := toSet(ctx.InactiveProfileIDs)
	explicit := toSet(ctx.ActiveProfileIDs)

	anyExplicit := false
	for _, p := range profiles {
		if explicit[p.ID] {
			anyExplicit = true
			break
		}
	}

	var active []descriptor.Profile
	for _, p := range profiles {
		if inactive[p.ID] {
			continue
		}
		switch {
		case explicit[p.ID]:
			active = append(active, p)
		case activationHolds(p.Activation, ctx):
			active = append(active, p)
		case !anyExplicit && p.Activation.ActiveByDefault:
			active = append(active, p)
		}
	}

	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active
}

func activationHolds(a descriptor.Activation, ctx descriptor.ActivationContext) bool {
	if a.OS != nil && a.OS.Name != "" {
		if ctx.SystemProperties["os.name"] != a.OS.Name {
			return false
		}
	}
	if a.Property != nil && a.Property.Name != "" {
		props := unionProperties(ctx)
		v, ok := props[a.Property.Name]
		if !ok {
			return false
		}
		if a.Property.Value != "" && v != a.Property.Value {
			return false
		}
		return true
	}
	if a.File != nil {
		if a.File.Exists != "" {
			if !fileExists(filepath.Join(ctx.BaseDirectory, a.File.Exists)) {
				return false
			}
			return true
		}
		if a.File.Missing != "" {
			return !fileExists(filepath.Join(ctx.BaseDirectory, a.File.Missing))
		}
	}
	if a.JDK != "" {
		return false
	}
	return a.OS != nil || a.Property != nil || a.File != nil
}

func unionProperties(ctx descriptor.ActivationContext) map[string]string {
	union := make(map[string]string, len(ctx.SystemProperties)+len(ctx.UserProperties)+len(ctx.ProjectProperties))
	for k, v := range ctx.ProjectProperties {
		union[k] = v
	}
	for k, v := range ctx.SystemProperties {
		union[k] = v
	}
	for k, v := range ctx.UserProperties {
		union[k] = v
	}
	return union
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// InjectProfile merges an active profile's overlay into model, mirroring
// ProfileInjector.injectProfile: the profile's properties, dependencies,
// dependency management, plugins and repositories are appended/merged into
// the target descriptor. Overlay properties win on key conflicts, since
// the profile is more specific than the descriptor it's injected into.
func InjectProfile(model *descriptor.Raw, profile descriptor.Profile) {
	overlay := profile.Overlay
	if len(overlay.Properties) > 0 {
		if model.Properties == nil {
			model.Properties = make(map[string]hcl.Expression, len(overlay.Properties))
		}
		for k, v := range overlay.Properties {
			model.Properties[k] = v
		}
	}
	model.Dependencies = append(model.Dependencies, overlay.Dependencies...)
	if overlay.DependencyManagement != nil {
		if model.DependencyManagement == nil {
			model.DependencyManagement = &descriptor.DependencyManagement{}
		}
		model.DependencyManagement.Dependencies = append(model.DependencyManagement.Dependencies, overlay.DependencyManagement.Dependencies...)
	}
	model.Plugins = append(model.Plugins, overlay.Plugins...)
	model.Repositories = append(model.Repositories, overlay.Repositories...)
}
