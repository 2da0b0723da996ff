package pipeline

import (
	"fmt"
	"strings"

	"github.com/busjaeger/reactor/internal/descriptor"
)

// ImportRef is a single dependency-management import selected from a
// descriptor's DependencyManagement section: a dependency with
// Type=="pom" and Scope=="import".
type ImportRef struct {
	GroupID    string
	ArtifactID string
	Version    string
}

func (r ImportRef) String() string {
	return r.GroupID + ":" + r.ArtifactID + ":" + r.Version
}

// SelectImports splits dm's dependency list into the remaining managed
// dependencies and the BOM imports it declares. An import contributes
// only its own DependencyManagement section, never its direct
// dependencies, so it is removed from the list rather than resolved in
// place — mirroring DefaultDependencyManagementImporter's initial scan.
func SelectImports(dm *descriptor.DependencyManagement) (remaining []descriptor.Dependency, imports []ImportRef) {
	if dm == nil {
		return nil, nil
	}
	for _, d := range dm.Dependencies {
		if d.Type == "pom" && d.Scope == "import" {
			imports = append(imports, ImportRef{GroupID: d.GroupID, ArtifactID: d.ArtifactID, Version: d.Version})
			continue
		}
		remaining = append(remaining, d)
	}
	return remaining, imports
}

// DetectImportCycle reports whether resolving next while already
// resolving the chain inProgress would reenter an already-importing
// coordinate. The message format matches the original dependency
// management importer's cycle diagnostic exactly.
func DetectImportCycle(inProgress []ImportRef, next ImportRef) error {
	for _, r := range inProgress {
		if r != next {
			continue
		}
		ids := make([]string, 0, len(inProgress)+1)
		for _, p := range inProgress {
			ids = append(ids, p.String())
		}
		ids = append(ids, next.String())
		return fmt.Errorf("The dependencies of type=pom and with scope=import form a cycle: %s", strings.Join(ids, " -> "))
	}
	return nil
}

// MergeImportedManagement folds each import's DependencyManagement
// section into base, in source order (the order imports were declared in
// the importing descriptor). Earlier entries are never overridden by a
// later import for the same management key, since a BOM's declarations
// are authoritative for whatever it manages first.
func MergeImportedManagement(base []descriptor.Dependency, imported ...[]descriptor.Dependency) []descriptor.Dependency {
	seen := make(map[string]bool, len(base))
	out := make([]descriptor.Dependency, 0, len(base))
	for _, d := range base {
		out = append(out, d)
		seen[d.Key()] = true
	}
	for _, section := range imported {
		for _, d := range section {
			if seen[d.Key()] {
				continue
			}
			out = append(out, d)
			seen[d.Key()] = true
		}
	}
	return out
}
