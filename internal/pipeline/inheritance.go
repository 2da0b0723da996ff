package pipeline

import (
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/hashicorp/hcl/v2"
)

// AssembleInheritance merges parent into child element-wise, returning a
// new descriptor: child wins on scalar conflicts (a child's own groupId,
// version or property entry always takes precedence); list-valued
// sections merge by identity key, child entries first so a child override
// for a given coordinate shadows the parent's, then any parent entries
// whose key the child didn't already declare.
//
// Grounded on DefaultModelInheritanceAssembler.assembleModelInheritance:
// callers fold lineage bottom-up, from the super-descriptor down to the
// leaf, treating each fold's result as the new "child" for the next
// ancestor closer to the leaf.
func AssembleInheritance(parent, child *descriptor.Raw) *descriptor.Raw {
	merged := child.Clone()

	if merged.GroupID == "" {
		merged.GroupID = parent.GroupID
	}
	if merged.Version == "" {
		merged.Version = parent.Version
	}

	merged.Properties = mergeProperties(parent.Properties, child.Properties)
	merged.Dependencies = mergeDependencies(parent.Dependencies, child.Dependencies)
	merged.Plugins = mergePlugins(parent.Plugins, child.Plugins)
	merged.Repositories = mergeRepositories(parent.Repositories, child.Repositories)
	merged.DependencyManagement = mergeDependencyManagement(parent.DependencyManagement, child.DependencyManagement)

	return merged
}

func mergeProperties(parent, child map[string]hcl.Expression) map[string]hcl.Expression {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]hcl.Expression, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func mergeDependencies(parent, child []descriptor.Dependency) []descriptor.Dependency {
	seen := make(map[string]bool, len(child))
	out := make([]descriptor.Dependency, 0, len(parent)+len(child))
	for _, d := range child {
		out = append(out, d)
		seen[d.Key()] = true
	}
	for _, d := range parent {
		if !seen[d.Key()] {
			out = append(out, d)
		}
	}
	return out
}

func mergePlugins(parent, child []descriptor.Plugin) []descriptor.Plugin {
	seen := make(map[string]bool, len(child))
	out := make([]descriptor.Plugin, 0, len(parent)+len(child))
	for _, p := range child {
		out = append(out, p)
		seen[p.Key()] = true
	}
	for _, p := range parent {
		if !seen[p.Key()] {
			out = append(out, p)
		}
	}
	return out
}

func mergeRepositories(parent, child []descriptor.Repository) []descriptor.Repository {
	seen := make(map[string]bool, len(child))
	out := make([]descriptor.Repository, 0, len(parent)+len(child))
	for _, r := range child {
		out = append(out, r)
		seen[r.ID] = true
	}
	for _, r := range parent {
		if !seen[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func mergeDependencyManagement(parent, child *descriptor.DependencyManagement) *descriptor.DependencyManagement {
	if parent == nil && child == nil {
		return nil
	}
	var parentDeps, childDeps []descriptor.Dependency
	if parent != nil {
		parentDeps = parent.Dependencies
	}
	if child != nil {
		childDeps = child.Dependencies
	}
	return &descriptor.DependencyManagement{Dependencies: mergeDependencies(parentDeps, childDeps)}
}
