package pipeline

import (
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/resolver"
)

// LifecycleInjector injects packaging-specific lifecycle plugin bindings.
// Packaging and execution are out of scope for this model, so no
// implementation ships with it; Enable simply skips this step when
// injector is nil, matching the original's "optional, skipped if injector
// absent" behavior.
type LifecycleInjector interface {
	InjectLifecycleBindings(model *descriptor.Raw)
}

// Enable is pipeline step 5: it applies lifecycle-binding injection (if an
// injector is configured), dependency-management injection, default-value
// injection, and effective-model validation, producing the Effective
// descriptor.
func Enable(injector LifecycleInjector, level resolver.ValidationLevel, interpolated *descriptor.Interpolated) diagnostic.Result[*descriptor.Effective] {
	model := interpolated.Raw.Clone()

	if injector != nil {
		injector.InjectLifecycleBindings(model)
	}

	var managed []descriptor.Dependency
	if model.DependencyManagement != nil {
		managed = model.DependencyManagement.Dependencies
	}
	model.Dependencies = InjectManagedVersions(managed, model.Dependencies)
	model.Dependencies = InjectDefaultValues(model.Dependencies)

	diags := Validate(level, model)

	return diagnostic.NewResult(&descriptor.Effective{
		Raw:        model,
		Properties: interpolated.Properties,
	}, diags)
}

// InjectManagedVersions fills in the Version (and, if absent, Scope) of
// every dependency that omits it from the matching entry in managed,
// keyed by Dependency.Key(), mirroring
// DefaultDependencyManagementInjector.injectManagement. A dependency that
// already declares a version is left untouched — management only ever
// fills gaps, it never overrides an explicit declaration.
func InjectManagedVersions(managed, deps []descriptor.Dependency) []descriptor.Dependency {
	if len(deps) == 0 {
		return deps
	}
	byKey := make(map[string]descriptor.Dependency, len(managed))
	for _, m := range managed {
		byKey[m.Key()] = m
	}

	out := make([]descriptor.Dependency, len(deps))
	for i, d := range deps {
		if d.Version == "" {
			if m, ok := byKey[d.Key()]; ok {
				d.Version = m.Version
				if d.Scope == "" {
					d.Scope = m.Scope
				}
			}
		}
		out[i] = d
	}
	return out
}

// InjectDefaultValues fills in the Type and Scope fields Maven-style
// descriptors treat as optional, mirroring
// DefaultModelNormalizer.injectDefaultValues: Type defaults to "jar",
// Scope defaults to "compile".
func InjectDefaultValues(deps []descriptor.Dependency) []descriptor.Dependency {
	out := make([]descriptor.Dependency, len(deps))
	for i, d := range deps {
		if d.Type == "" {
			d.Type = "jar"
		}
		if d.Scope == "" {
			d.Scope = "compile"
		}
		out[i] = d
	}
	return out
}
