package pipeline

import (
	"context"
	"strings"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// RepositoryRegistrar registers a descriptor's declared repositories with
// the external resolver. Satisfied directly by resolver.External; declared
// here so this package doesn't import internal/resolver just for one
// method.
type RepositoryRegistrar interface {
	AddRepository(repo descriptor.Repository, replace bool) error
}

// BuildInterpolated performs pipeline step 3 in full: lineage traversal,
// bottom-up inheritance assembly, property interpolation and repository
// URL normalization, producing the Interpolated descriptor that import
// resolution (step 4) and enablement (step 5) build on. registrar may be
// nil; when set, each lineage level's declared repositories are
// registered with it as the chain is walked, the descriptor's own
// repositories replacing on the first call and every ancestor's
// contributing without replacing, mirroring
// ProjectDependencyGraphBuilder's addRepositories/newModelResolver.
func BuildInterpolated(
	ctx context.Context,
	locator ParentLocator,
	superModel SuperModelProvider,
	model *descriptor.Activated,
	externalProfiles []descriptor.Profile,
	activeIDs, inactiveIDs []string,
	systemProps, userProps map[string]string,
	registrar RepositoryRegistrar,
) diagnostic.Result[*descriptor.Interpolated] {
	lineageResult := AssembleLineage(ctx, locator, superModel, model, externalProfiles, activeIDs, inactiveIDs, systemProps, userProps)
	if lineageResult.HasErrors() {
		return diagnostic.Failed[*descriptor.Interpolated](lineageResult.Problems())
	}
	lineage := lineageResult.Get()

	if registrar != nil {
		registerRepositories(registrar, model.Raw.Repositories, true)
		for _, ancestor := range lineage {
			registerRepositories(registrar, ancestor.Raw.Repositories, false)
		}
	}

	// Fold bottom-up: the last lineage entry is the bootstrap
	// super-descriptor, which has no parent of its own; walk back toward
	// the immediate parent, then merge the whole chain into model itself.
	assembled := lineage[len(lineage)-1].Raw
	for i := len(lineage) - 2; i >= 0; i-- {
		assembled = AssembleInheritance(assembled, lineage[i].Raw)
	}
	assembled = AssembleInheritance(assembled, model.Raw)

	props, diags := Interpolate(PropertyStack{
		Descriptor: assembled.Properties,
		System:     systemProps,
		User:       userProps,
	})

	normalizeRepositoryURLs(assembled)

	return diagnostic.NewResult(&descriptor.Interpolated{
		Raw:        assembled,
		Lineage:    lineage,
		Properties: props,
	}, diags)
}

func registerRepositories(registrar RepositoryRegistrar, repos []descriptor.Repository, replace bool) {
	for i, r := range repos {
		registrar.AddRepository(r, replace && i == 0)
	}
}

// normalizeRepositoryURLs mirrors DefaultModelUrlNormalizer: a non-empty
// repository URL without a trailing slash gets one appended so relative
// artifact paths resolve against it correctly; a URL that already ends in
// a slash is left as it is.
func normalizeRepositoryURLs(model *descriptor.Raw) {
	for i, r := range model.Repositories {
		model.Repositories[i].URL = normalizeURL(r.URL)
	}
}

func normalizeURL(raw string) string {
	if raw == "" || strings.HasSuffix(raw, "/") {
		return raw
	}
	return raw + "/"
}
