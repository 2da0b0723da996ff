// Package resolver defines the collaborator interfaces the core consumes
// but does not implement: the descriptor parser, the module-file locator,
// the external (remote) descriptor resolver, and the super-descriptor
// provider that bootstraps every parent chain. It also owns the in-memory
// external-descriptor cache described by the concurrency model.
package resolver

import (
	"context"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// Parser turns a descriptor source file into a raw descriptor. Out of
// scope for the core; implementations live outside this module (XML/POM
// parsing) or in internal/testfixture for tests.
type Parser interface {
	Parse(ctx context.Context, sourceFile string, validationLevel ValidationLevel, locationTracking bool) diagnostic.Result[*descriptor.Raw]
}

// ValidationLevel selects how strictly a descriptor is checked.
type ValidationLevel int

const (
	ValidationMinimal ValidationLevel = iota
	ValidationV20
	ValidationStrict
)

// Locator finds a descriptor file inside a directory, used when a declared
// module path fragment resolves to a directory rather than a file.
type Locator interface {
	Locate(directory string) (file string, ok bool)
}

// External resolves descriptors that are not present in the workspace: a
// parent reference or a dependency-management import pointing outside the
// reactor. Mirrors WorkspaceResolver.java's external-facing half.
type External interface {
	ResolveModel(ctx context.Context, groupID, artifactID, version string) (sourceFile string, err error)
	AddRepository(repo descriptor.Repository, replace bool) error
	NewCopy() External
}

// SuperModelProvider returns the bootstrap root every parent lineage
// terminates in, keyed by a schema version. Descriptors declare none, so
// the pipeline always requests the same default version.
type SuperModelProvider interface {
	GetSuperModel(version string) *descriptor.Raw
}
