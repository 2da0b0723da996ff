// Package session implements the core's external entry point (spec.md
// §6): it wires the input session fields through components B (loader),
// C (workspace indexer), D (build-behavior policy) and E (project graph
// builder) in order, producing the final Result[ProjectGraph].
package session

import (
	"context"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/ctxlog"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/graphbuilder"
	"github.com/busjaeger/reactor/internal/loader"
	"github.com/busjaeger/reactor/internal/policy"
	"github.com/busjaeger/reactor/internal/resolver"
	"github.com/busjaeger/reactor/internal/workspace"
)

// Session is every input the core needs for one invocation (spec.md §6).
// A Session is built once per run and never mutated; all per-invocation
// mutable state lives inside internal/graphbuilder's own state instead.
type Session struct {
	// PomFile is the filesystem path to the root descriptor.
	PomFile string
	// BaseDirectory is the directory project selectors resolve against.
	BaseDirectory string

	// SelectedProjects is the ordered list of selector strings from
	// --projects; empty means ALL mode.
	SelectedProjects []string
	// MakeBehavior is the user-selected build-behavior mode. The zero
	// value, policy.ModeDefault, means "not specified": SELECTED_ONLY if
	// SelectedProjects is non-empty, else ALL.
	MakeBehavior policy.Mode

	ActiveProfileIDs   []string
	InactiveProfileIDs []string
	SystemProperties   map[string]string
	UserProperties     map[string]string

	ValidationLevel resolver.ValidationLevel
	Profiles        []descriptor.Profile

	// BinaryDescriptors is the raw descriptor set for the binary variant
	// index, required by SELECTED_ONLY and DOWNSTREAM modes. May be empty
	// for ALL/UPSTREAM, which never consult a binary index.
	BinaryDescriptors []*descriptor.Raw

	Parser     resolver.Parser
	Locator    resolver.Locator
	External   resolver.External
	SuperModel resolver.SuperModelProvider
}

// Build runs the full pipeline: load the aggregation tree, index it,
// construct the build-behavior policy from SelectedProjects and
// MakeBehavior, and build the final project graph.
func Build(ctx context.Context, sess *Session) diagnostic.Result[*graphbuilder.ProjectGraph] {
	logger := ctxlog.FromContext(ctx)

	loadResult := loader.New(sess.Parser, sess.Locator).LoadModules(ctx, sess.PomFile)
	if loadResult.HasErrors() {
		return diagnostic.Failed[*graphbuilder.ProjectGraph](loadResult.Problems())
	}
	logger.Debug("loaded raw descriptors", "count", len(loadResult.Get()))

	sourceIdxResult := workspace.NewIndex(loadResult.Get())
	if sourceIdxResult.HasErrors() {
		return diagnostic.Failed[*graphbuilder.ProjectGraph](sourceIdxResult.Problems())
	}
	sourceIdx := sourceIdxResult.Get()

	var binaryIdxMap map[coordinate.Coordinate]*descriptor.Raw
	if len(sess.BinaryDescriptors) > 0 {
		binaryIdxResult := workspace.NewIndex(sess.BinaryDescriptors)
		if binaryIdxResult.HasErrors() {
			return diagnostic.Failed[*graphbuilder.ProjectGraph](binaryIdxResult.Problems())
		}
		binaryIdxMap = binaryIdxResult.Get().Map()
	}

	selected, diags := selectProjects(sourceIdx, sess.SelectedProjects, sess.BaseDirectory)
	if len(diags) > 0 {
		return diagnostic.Failed[*graphbuilder.ProjectGraph](diags)
	}

	selectedSet := make(map[coordinate.Coordinate]struct{}, len(selected))
	for c := range selected {
		selectedSet[c] = struct{}{}
	}

	buildPolicy, err := policy.NewPolicy(sess.MakeBehavior, sourceIdx.Map(), binaryIdxMap, selectedSet)
	if err != nil {
		return diagnostic.Failed[*graphbuilder.ProjectGraph]([]diagnostic.Diagnostic{{
			Severity: diagnostic.Fatal,
			Message:  err.Error(),
		}})
	}

	return graphbuilder.Build(ctx, graphbuilder.Config{
		SourceIndex: sourceIdx.Map(),
		BinaryIndex: binaryIdxMap,
		Policy:      buildPolicy,

		Parser:     sess.Parser,
		External:   sess.External,
		SuperModel: sess.SuperModel,

		ExternalProfiles:   sess.Profiles,
		ActiveProfileIDs:   sess.ActiveProfileIDs,
		InactiveProfileIDs: sess.InactiveProfileIDs,
		SystemProperties:   sess.SystemProperties,
		UserProperties:     sess.UserProperties,
		ValidationLevel:    sess.ValidationLevel,
	})
}

// selectProjects parses every selector string against baseDirectory and
// returns their union's matches. A single invalid selector aborts the
// whole stage with a fatal diagnostic (spec.md §7).
func selectProjects(idx *workspace.Index, selectorStrings []string, baseDirectory string) (map[coordinate.Coordinate]*descriptor.Raw, []diagnostic.Diagnostic) {
	if len(selectorStrings) == 0 {
		return nil, nil
	}
	selectors := make([]workspace.Selector, 0, len(selectorStrings))
	for _, s := range selectorStrings {
		sel, err := workspace.ParseSelector(s, baseDirectory)
		if err != nil {
			return nil, []diagnostic.Diagnostic{{
				Severity: diagnostic.Fatal,
				Message:  err.Error(),
			}}
		}
		selectors = append(selectors, sel)
	}
	return workspace.Select(idx, selectors), nil
}
