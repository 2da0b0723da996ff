package jsonmodel

import (
	"context"
	"fmt"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/resolver"
)

// External is a minimal resolver.External: it resolves nothing remote by
// itself. A real deployment would back this with an artifact repository
// client; remote-artifact resolution is explicitly out of core scope
// (spec.md §1), so this stub only accumulates the repositories the core
// registers during lineage traversal and reports any resolution attempt
// as a clear error rather than silently inventing a descriptor.
type External struct {
	Repositories []descriptor.Repository
}

// NewExternal returns an External with no repositories configured.
func NewExternal() *External {
	return &External{}
}

// ResolveModel implements resolver.External.
func (e *External) ResolveModel(_ context.Context, groupID, artifactID, version string) (string, error) {
	return "", fmt.Errorf("no remote repository configured to resolve %s:%s:%s", groupID, artifactID, version)
}

// AddRepository implements resolver.External: replace clears any
// previously accumulated repositories before appending repo, mirroring
// the first-call-replaces semantics of ProjectDependencyGraphBuilder's
// addRepositories.
func (e *External) AddRepository(repo descriptor.Repository, replace bool) error {
	if replace {
		e.Repositories = []descriptor.Repository{repo}
		return nil
	}
	e.Repositories = append(e.Repositories, repo)
	return nil
}

// NewCopy implements resolver.External: it returns an independent copy
// seeded with the same accumulated repositories, matching the original
// ModelResolver.newCopy contract used when a descriptor's lineage needs
// its own repository accumulation scope.
func (e *External) NewCopy() resolver.External {
	cp := &External{Repositories: append([]descriptor.Repository(nil), e.Repositories...)}
	return cp
}
