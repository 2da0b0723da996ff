package graphbuilder

import (
	"context"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/pipeline"
	"github.com/busjaeger/reactor/internal/resolver"
)

// resolveImports implements pipeline step 4 (spec.md §4.E): it splits
// interpolated's dependency-management section into its remaining managed
// dependencies and its BOM imports, resolves each import (through
// buildByCoord for workspace projects, through the external resolver
// otherwise), and folds every import's own dependency-management section
// back into interpolated in source order. Only workspace imports produce a
// *Node the caller attaches to the project node; an external import
// contributes its managed versions without becoming a graph reference.
//
// chain tracks the identities of every descriptor whose dependency
// management is currently being resolved, so a reentrant import (A imports
// B, B imports A back) is caught here as spec.md §7's distinct import
// cycle - recorded as an ERROR and skipped - before it ever reaches
// buildByCoord's coordinate-level cycle check, which would otherwise abort
// the whole build with a FATAL diagnostic instead.
func (st *state) resolveImports(ctx context.Context, interpolated *descriptor.Interpolated) ([]*Node, []diagnostic.Diagnostic) {
	self := pipeline.ImportRef{
		GroupID:    interpolated.Raw.GroupID,
		ArtifactID: interpolated.Raw.ArtifactID,
		Version:    interpolated.Raw.Version,
	}
	chain := append(append([]pipeline.ImportRef{}, st.importChain...), self)
	return st.resolveImportsChain(ctx, interpolated, chain)
}

func (st *state) resolveImportsChain(ctx context.Context, interpolated *descriptor.Interpolated, chain []pipeline.ImportRef) ([]*Node, []diagnostic.Diagnostic) {
	if interpolated.DependencyManagement == nil {
		return nil, nil
	}

	remaining, imports := pipeline.SelectImports(interpolated.DependencyManagement)
	interpolated.DependencyManagement.Dependencies = remaining

	var nodes []*Node
	var diags []diagnostic.Diagnostic
	managedSections := make([][]descriptor.Dependency, 0, len(imports))

	for _, imp := range imports {
		if err := pipeline.DetectImportCycle(chain, imp); err != nil {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  err.Error(),
				Source:   interpolated.SourceFile,
			})
			continue
		}

		c, cerr := coordinate.New(imp.GroupID, imp.ArtifactID)
		if cerr != nil {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  cerr.Error(),
				Source:   interpolated.SourceFile,
			})
			continue
		}

		if st.cfg.Policy.IsProject(c) {
			prevChain := st.importChain
			st.importChain = chain
			result := st.buildByCoord(ctx, c)
			st.importChain = prevChain

			diags = append(diags, result.Problems()...)
			if result.HasErrors() {
				continue
			}
			node := result.Get()
			nodes = append(nodes, node)
			if node.Effective != nil && node.Effective.DependencyManagement != nil {
				managedSections = append(managedSections, node.Effective.DependencyManagement.Dependencies)
			}
			continue
		}

		rawResult := st.resolveExternalRaw(ctx, imp.GroupID, imp.ArtifactID, imp.Version, resolver.CacheTagImport)
		diags = append(diags, rawResult.Problems()...)
		if rawResult.HasErrors() {
			continue
		}
		raw := rawResult.Get()
		if raw.DependencyManagement == nil {
			continue
		}
		// External imports are resolved through the out-of-scope collaborator
		// as opaque descriptors (spec.md §1): their own nested imports are
		// not expanded here, and the cached Raw is never mutated.
		managedSections = append(managedSections, raw.DependencyManagement.Dependencies)
	}

	interpolated.DependencyManagement.Dependencies = pipeline.MergeImportedManagement(remaining, managedSections...)

	return nodes, diags
}
