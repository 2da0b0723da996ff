package pipeline

import (
	"context"
	"fmt"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// defaultSchemaVersion is the schema version passed to the super-descriptor
// provider; descriptors in this model don't declare one of their own, so
// every lineage terminates against the same bootstrap version.
const defaultSchemaVersion = "1.0"

// ParentLocator resolves a single parent reference to the raw descriptor it
// names. Implemented by internal/graphbuilder, which alone knows how to
// consult the workspace index before falling back to the external
// resolver — this package only walks whatever chain it's handed.
type ParentLocator interface {
	LocateParent(ctx context.Context, ref descriptor.ParentRef) diagnostic.Result[*descriptor.Raw]
}

// SuperModelProvider returns the bootstrap root every parent lineage
// terminates in. Satisfied by internal/resolver.SuperModelProvider;
// re-declared here so this package doesn't import internal/resolver just
// for one method.
type SuperModelProvider interface {
	GetSuperModel(version string) *descriptor.Raw
}

// AssembleLineage walks model's parent chain from its immediate parent up
// to (and including) the bootstrap super-descriptor, activating every
// ancestor against the same external profiles and session inputs used for
// model itself and against the child's base directory. The project
// properties an ancestor's property-activation predicates see are that
// ancestor's own literal properties, not the child's. The super-descriptor
// is activated with no external profiles and no profile-ID selections.
//
// A repeated parent coordinate in the chain is a FATAL diagnostic: the
// super-descriptor has no parent of its own, so it can never itself
// reintroduce a cycle.
func AssembleLineage(
	ctx context.Context,
	locator ParentLocator,
	superModel SuperModelProvider,
	model *descriptor.Activated,
	externalProfiles []descriptor.Profile,
	activeIDs, inactiveIDs []string,
	systemProps, userProps map[string]string,
) diagnostic.Result[[]*descriptor.Activated] {
	var lineage []*descriptor.Activated
	seen := make(map[string]bool)

	current := model.Raw
	for current.Parent != nil {
		ref := *current.Parent
		key := ref.GroupID + ":" + ref.ArtifactID + ":" + ref.Version
		if seen[key] {
			return failLineage(fmt.Sprintf("parent lineage cycle detected at %s", key), current.SourceFile)
		}
		seen[key] = true

		parentResult := locator.LocateParent(ctx, ref)
		if parentResult.HasErrors() {
			return diagnostic.Failed[[]*descriptor.Activated](parentResult.Problems())
		}
		parentRaw := parentResult.Get()

		activated := Activate(parentRaw, externalProfiles, model.ActivationContext.BaseDirectory, activeIDs, inactiveIDs, systemProps, userProps)
		if activated.HasErrors() {
			return diagnostic.Failed[[]*descriptor.Activated](activated.Problems())
		}

		lineage = append(lineage, activated.Get())
		current = parentRaw
	}

	superRaw := superModel.GetSuperModel(defaultSchemaVersion)
	superActivated := Activate(superRaw, nil, model.ActivationContext.BaseDirectory, nil, nil, systemProps, userProps)
	lineage = append(lineage, superActivated.Get())

	return diagnostic.Success(lineage)
}

func failLineage(message, source string) diagnostic.Result[[]*descriptor.Activated] {
	return diagnostic.Failed[[]*descriptor.Activated]([]diagnostic.Diagnostic{{
		Severity: diagnostic.Fatal,
		Message:  message,
		Source:   source,
	}})
}
