// Package policy implements component D: given the user's build-behavior
// mode, it decides which coordinates seed the graph-builder's recursion,
// whether a coordinate counts as a workspace project, and which variant
// (source or binary) a given coordinate builds as.
package policy

import (
	"context"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// Node is the minimal view of a built project node the policy needs to
// decide variant fallback: whether its transitive closure touches a
// source-variant project. internal/graphbuilder's Node satisfies this.
type Node interface {
	HasSourceDependency() bool
}

// Builder is the callback the policy uses to build a single coordinate's
// chosen variant, routing back into the graph builder's recursion so
// memoization and cycle detection apply uniformly. internal/graphbuilder
// implements this.
type Builder interface {
	BuildVariant(ctx context.Context, isSource bool, raw *descriptor.Raw) diagnostic.Result[Node]
}

// BuildPolicy is the tagged sum over the four supported build-behavior
// modes (spec.md §9): All, Selected, Upstream, Downstream. BOTH is
// rejected at construction time (see NewPolicy) rather than represented
// here, since it has no defined behavior to dispatch to.
type BuildPolicy struct {
	kind         policyKind
	sourceIndex  map[coordinate.Coordinate]*descriptor.Raw
	binaryIndex  map[coordinate.Coordinate]*descriptor.Raw
	selected     map[coordinate.Coordinate]struct{}
	seedOverride []coordinate.Coordinate
}

type policyKind int

const (
	kindAll policyKind = iota
	kindSelected
	kindUpstream
	kindDownstream
)

// Mode names the user-facing build-behavior selection from the session.
type Mode int

const (
	ModeDefault Mode = iota // SELECTED_ONLY if selections present, else ALL
	ModeUpstream
	ModeDownstream
	ModeBoth
)

// NewPolicy constructs the BuildPolicy for a session, mirroring
// MakeBehaviorFactory.create's dispatch. selected is the set produced by
// the workspace selector (empty ⇒ ALL mode regardless of the requested
// mode, matching the original's "empty means user did not specify a
// value" short-circuit).
func NewPolicy(mode Mode, sourceIndex, binaryIndex map[coordinate.Coordinate]*descriptor.Raw, selected map[coordinate.Coordinate]struct{}) (*BuildPolicy, error) {
	if len(selected) == 0 {
		return &BuildPolicy{kind: kindAll, sourceIndex: sourceIndex}, nil
	}

	switch mode {
	case ModeDefault:
		if binaryIndex == nil {
			return nil, errBinaryRequired("build selected projects")
		}
		return &BuildPolicy{kind: kindSelected, sourceIndex: sourceIndex, binaryIndex: binaryIndex, selected: selected}, nil
	case ModeDownstream:
		if binaryIndex == nil {
			return nil, errBinaryRequired("build projects and dependents")
		}
		return &BuildPolicy{kind: kindDownstream, sourceIndex: sourceIndex, binaryIndex: binaryIndex, selected: selected}, nil
	case ModeUpstream:
		return &BuildPolicy{kind: kindUpstream, sourceIndex: sourceIndex, selected: selected}, nil
	case ModeBoth:
		return nil, errUnsupportedBoth()
	default:
		return nil, errUnknownMode(mode)
	}
}

// SeedCoordinates returns the coordinates the graph builder starts
// recursion from.
func (p *BuildPolicy) SeedCoordinates() []coordinate.Coordinate {
	switch p.kind {
	case kindAll, kindDownstream:
		return sortedKeys(p.sourceIndex)
	default: // kindSelected, kindUpstream
		return sortedSet(p.selected)
	}
}

// IsProject reports whether c is considered part of the workspace (as
// opposed to an external coordinate the resolver must fetch).
func (p *BuildPolicy) IsProject(c coordinate.Coordinate) bool {
	switch p.kind {
	case kindAll, kindUpstream:
		_, ok := p.sourceIndex[c]
		return ok
	default: // kindSelected, kindDownstream
		if _, ok := p.sourceIndex[c]; ok {
			return true
		}
		_, ok := p.binaryIndex[c]
		return ok
	}
}

// Build builds a single coordinate, deciding which variant to use and
// handling variant fallback, then delegating the pipeline work to
// builder.
func (p *BuildPolicy) Build(ctx context.Context, builder Builder, c coordinate.Coordinate) diagnostic.Result[Node] {
	switch p.kind {
	case kindAll:
		return p.buildFromIndex(ctx, builder, c, true, p.sourceIndex)
	case kindUpstream:
		return p.buildFromIndex(ctx, builder, c, true, p.sourceIndex)
	case kindSelected:
		if _, ok := p.selected[c]; ok {
			return p.buildFromIndex(ctx, builder, c, true, p.sourceIndex)
		}
		return p.buildFromIndex(ctx, builder, c, false, p.binaryIndex)
	case kindDownstream:
		return p.buildDownstream(ctx, builder, c)
	default:
		return diagnostic.Failed[Node]([]diagnostic.Diagnostic{{
			Severity: diagnostic.Fatal,
			Message:  "policy: unknown kind",
		}})
	}
}

func (p *BuildPolicy) buildFromIndex(ctx context.Context, builder Builder, c coordinate.Coordinate, isSource bool, index map[coordinate.Coordinate]*descriptor.Raw) diagnostic.Result[Node] {
	raw, ok := index[c]
	if !ok {
		return diagnostic.Failed[Node]([]diagnostic.Diagnostic{{
			Severity: diagnostic.Fatal,
			Message:  "policy: assertion violation: build of non-existing project requested " + c.String(),
		}})
	}
	return builder.BuildVariant(ctx, isSource, raw)
}

// buildDownstream implements AlsoMakeDependents.build: build source first
// to inspect its transitive closure, falling back to binary only when
// independent of source, per spec.md §4.D's documented "use source"
// strategy for the variant-conflict case.
func (p *BuildPolicy) buildDownstream(ctx context.Context, builder Builder, c coordinate.Coordinate) diagnostic.Result[Node] {
	srcRaw, hasSource := p.sourceIndex[c]

	if !hasSource {
		if _, selected := p.selected[c]; selected {
			return diagnostic.Failed[Node]([]diagnostic.Diagnostic{{
				Severity: diagnostic.Fatal,
				Message:  "policy: assertion violation: selected set contains binary-only project " + c.String(),
			}})
		}
		binRaw, hasBinary := p.binaryIndex[c]
		if !hasBinary {
			return diagnostic.Failed[Node]([]diagnostic.Diagnostic{{
				Severity: diagnostic.Fatal,
				Message:  "policy: assertion violation: build of non-existing project requested " + c.String(),
			}})
		}
		binResult := builder.BuildVariant(ctx, false, binRaw)
		if binResult.HasErrors() {
			return binResult
		}
		if binResult.Get().HasSourceDependency() {
			return diagnostic.AddProblem(binResult, diagnostic.Diagnostic{
				Severity: diagnostic.Fatal,
				Message:  "Binary project " + c.String() + " refers to a source project, but no source project with same id available",
			})
		}
		return binResult
	}

	srcResult := builder.BuildVariant(ctx, true, srcRaw)
	if srcResult.HasErrors() {
		return srcResult
	}
	if _, selected := p.selected[c]; selected {
		return srcResult
	}
	if srcResult.Get().HasSourceDependency() {
		return srcResult
	}

	binRaw, hasBinary := p.binaryIndex[c]
	if !hasBinary {
		return srcResult
	}

	binResult := builder.BuildVariant(ctx, false, binRaw)
	if binResult.HasErrors() {
		// binary failed; fall back to the already-built source result.
		return srcResult
	}
	if binResult.Get().HasSourceDependency() {
		// documented strategy: use source because binary would pull in source.
		return srcResult
	}
	return binResult
}

func errBinaryRequired(what string) error {
	return policyError{"Binary projects required to " + what}
}

func errUnsupportedBoth() error {
	return policyError{"BOTH make mode is not supported"}
}

func errUnknownMode(mode Mode) error {
	return policyError{"unknown make mode"}
}

type policyError struct{ msg string }

func (e policyError) Error() string { return e.msg }

func sortedKeys(m map[coordinate.Coordinate]*descriptor.Raw) []coordinate.Coordinate {
	out := make([]coordinate.Coordinate, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sortCoordinates(out)
	return out
}

func sortedSet(m map[coordinate.Coordinate]struct{}) []coordinate.Coordinate {
	out := make([]coordinate.Coordinate, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sortCoordinates(out)
	return out
}
