package graphbuilder

import (
	"context"
	"path/filepath"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/ctxlog"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/pipeline"
	"github.com/busjaeger/reactor/internal/policy"
	"github.com/busjaeger/reactor/internal/resolver"
)

// Config is everything a single graph-build invocation needs: the
// workspace indexes, the chosen build policy, the session's activation
// and interpolation inputs, and the external collaborators.
type Config struct {
	SourceIndex map[coordinate.Coordinate]*descriptor.Raw
	BinaryIndex map[coordinate.Coordinate]*descriptor.Raw
	Policy      *policy.BuildPolicy

	Parser     resolver.Parser
	External   resolver.External
	SuperModel resolver.SuperModelProvider

	ExternalProfiles   []descriptor.Profile
	ActiveProfileIDs   []string
	InactiveProfileIDs []string
	SystemProperties   map[string]string
	UserProperties     map[string]string
	ValidationLevel    resolver.ValidationLevel
}

// state is the per-invocation build state (spec.md §4.E): completed and
// building live here, owned exclusively by one Build call, never shared
// across invocations or goroutines.
type state struct {
	cfg   Config
	cache *resolver.Cache

	completed *orderedResults
	building  *buildingSet

	// importChain is the dependency-management import chain currently
	// being resolved, set around the recursive buildByCoord call a
	// workspace import triggers so the indirect recursion through
	// BuildVariant can still see it (spec.md §7's import-cycle diagnostic
	// is distinct from, and checked ahead of, the coordinate-level cycle
	// buildByCoord itself detects).
	importChain []pipeline.ImportRef
}

func newState(cfg Config) *state {
	return &state{
		cfg:       cfg,
		cache:     resolver.NewCache(),
		completed: newOrderedResults(),
		building:  newBuildingSet(),
	}
}

// Build is the top-level entry point: it seeds recursion from the
// policy's seed coordinates, then flattens the completed map into the
// final graph.
func Build(ctx context.Context, cfg Config) diagnostic.Result[*ProjectGraph] {
	st := newState(cfg)

	var diags []diagnostic.Diagnostic
	hasErrors := false
	// A memoized result's diagnostics reach Build both through the node
	// that first built it and through its own seed entry; each distinct
	// diagnostic is reported once.
	seen := make(map[string]bool)
	for _, seed := range cfg.Policy.SeedCoordinates() {
		result := st.buildByCoord(ctx, seed)
		for _, d := range result.Problems() {
			key := d.Severity.String() + "\x00" + d.Source + "\x00" + d.Message
			if !seen[key] {
				seen[key] = true
				diags = append(diags, d)
			}
		}
		hasErrors = hasErrors || result.HasErrors()
	}

	nodes := make([]*Node, 0, len(st.completed.order))
	for _, r := range st.completed.orderedValues() {
		nodes = append(nodes, r.Get())
	}
	graph := newProjectGraph(nodes)

	if hasErrors {
		return diagnostic.FailedWithValue(graph, diags)
	}
	return diagnostic.NewResult(graph, diags)
}

// buildByCoord implements spec.md §4.E's memoized, cycle-detecting
// recursion. It memoizes every result it builds, even on failure, so
// dependents can still report the cascading failure against a real node;
// a detected cycle is returned without being memoized.
func (st *state) buildByCoord(ctx context.Context, c coordinate.Coordinate) diagnostic.Result[*Node] {
	if r, ok := st.completed.get(c); ok {
		return r
	}
	if st.building.contains(c) {
		msg := "Project dependency cycle detected " + st.building.list()
		return diagnostic.Failed[*Node]([]diagnostic.Diagnostic{{Severity: diagnostic.Fatal, Message: msg}})
	}

	st.building.add(c)
	result := st.cfg.Policy.Build(ctx, st, c)
	st.building.remove(c)

	nodeResult := adaptPolicyResult(result)
	st.completed.put(c, nodeResult)
	return nodeResult
}

func adaptPolicyResult(r diagnostic.Result[policy.Node]) diagnostic.Result[*Node] {
	node, _ := r.Get().(*Node)
	if r.HasErrors() {
		if node != nil {
			return diagnostic.FailedWithValue(node, r.Problems())
		}
		return diagnostic.Failed[*Node](r.Problems())
	}
	return diagnostic.NewResult(node, r.Problems())
}

// BuildVariant implements policy.Builder: it runs the six-step
// per-descriptor pipeline (spec.md §4.E) for a single coordinate's chosen
// variant.
func (st *state) BuildVariant(ctx context.Context, isSource bool, raw *descriptor.Raw) diagnostic.Result[policy.Node] {
	logger := ctxlog.FromContext(ctx)

	c, err := raw.Coordinate()
	if err != nil {
		return diagnostic.Failed[policy.Node]([]diagnostic.Diagnostic{{
			Severity: diagnostic.Fatal, Message: err.Error(), Source: raw.SourceFile,
		}})
	}
	logger.Debug("building project variant", "coordinate", c.String(), "source", isSource)

	node := &Node{Coordinate: c, IsSource: isSource}
	var diags []diagnostic.Diagnostic

	// Step 1: parent resolution, for workspace parents only.
	if raw.Parent != nil {
		parentCoord, perr := coordinate.New(raw.Parent.GroupID, raw.Parent.ArtifactID)
		if perr == nil && st.cfg.Policy.IsProject(parentCoord) {
			parentResult := st.buildByCoord(ctx, parentCoord)
			diags = append(diags, parentResult.Problems()...)
			if parentResult.HasErrors() {
				return finish(node, diags, true)
			}
			node.Parent = parentResult.Get()
		}
	}

	baseDir := filepath.Dir(raw.SourceFile)

	// Step 2: activation.
	activated := pipeline.Activate(raw, st.cfg.ExternalProfiles, baseDir, st.cfg.ActiveProfileIDs, st.cfg.InactiveProfileIDs, st.cfg.SystemProperties, st.cfg.UserProperties)
	diags = append(diags, activated.Problems()...)
	if activated.HasErrors() {
		return finish(node, diags, true)
	}

	// Step 3: lineage traversal + interpolation.
	interpolatedResult := pipeline.BuildInterpolated(ctx, st, st.cfg.SuperModel, activated.Get(), st.cfg.ExternalProfiles, st.cfg.ActiveProfileIDs, st.cfg.InactiveProfileIDs, st.cfg.SystemProperties, st.cfg.UserProperties, st.cfg.External)
	diags = append(diags, interpolatedResult.Problems()...)
	if interpolatedResult.HasErrors() {
		return finish(node, diags, true)
	}
	interpolated := interpolatedResult.Get()

	// Step 4: dependency-management import resolution.
	importNodes, importDiags := st.resolveImports(ctx, interpolated)
	diags = append(diags, importDiags...)
	node.Imports = importNodes

	// Step 5: enablement.
	effectiveResult := pipeline.Enable(nil, st.cfg.ValidationLevel, interpolated)
	diags = append(diags, effectiveResult.Problems()...)
	node.Effective = effectiveResult.Get()
	if effectiveResult.HasErrors() {
		return finish(node, diags, true)
	}

	// Step 6: reference resolution (dependencies, plugins).
	node.Dependencies, diags = st.resolveWorkspaceRefs(ctx, dependencyCoordinates(node.Effective.Dependencies), diags)
	node.Plugins, diags = st.resolveWorkspaceRefs(ctx, pluginCoordinates(node.Effective.Plugins), diags)

	return finish(node, diags, false)
}

func finish(node *Node, diags []diagnostic.Diagnostic, hasErrors bool) diagnostic.Result[policy.Node] {
	if hasErrors {
		return diagnostic.FailedWithValue[policy.Node](node, diags)
	}
	return diagnostic.NewResult[policy.Node](node, diags)
}

func dependencyCoordinates(deps []descriptor.Dependency) []coordinate.Coordinate {
	out := make([]coordinate.Coordinate, 0, len(deps))
	for _, d := range deps {
		if c, err := coordinate.New(d.GroupID, d.ArtifactID); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func pluginCoordinates(plugins []descriptor.Plugin) []coordinate.Coordinate {
	out := make([]coordinate.Coordinate, 0, len(plugins))
	for _, p := range plugins {
		if c, err := coordinate.New(p.GroupID, p.ArtifactID); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// resolveWorkspaceRefs builds and attaches every coordinate that is a
// workspace project, skipping anything external (the reactor only tracks
// references it can build itself).
func (st *state) resolveWorkspaceRefs(ctx context.Context, coords []coordinate.Coordinate, diags []diagnostic.Diagnostic) ([]*Node, []diagnostic.Diagnostic) {
	var refs []*Node
	for _, c := range coords {
		if !st.cfg.Policy.IsProject(c) {
			continue
		}
		result := st.buildByCoord(ctx, c)
		diags = append(diags, result.Problems()...)
		if !result.HasErrors() {
			refs = append(refs, result.Get())
		}
	}
	return refs, diags
}

// rawFor looks up a coordinate in the source index first, then the binary
// index, mirroring policy.IsProject's precedence.
func (st *state) rawFor(c coordinate.Coordinate) (*descriptor.Raw, bool) {
	if raw, ok := st.cfg.SourceIndex[c]; ok {
		return raw, true
	}
	if raw, ok := st.cfg.BinaryIndex[c]; ok {
		return raw, true
	}
	return nil, false
}

// LocateParent implements pipeline.ParentLocator: a workspace parent
// resolves directly from the indexes; anything else falls through to the
// external resolver.
func (st *state) LocateParent(ctx context.Context, ref descriptor.ParentRef) diagnostic.Result[*descriptor.Raw] {
	c, err := coordinate.New(ref.GroupID, ref.ArtifactID)
	if err == nil && st.cfg.Policy.IsProject(c) {
		if raw, ok := st.rawFor(c); ok {
			return diagnostic.Success(raw)
		}
	}
	return st.resolveExternalRaw(ctx, ref.GroupID, ref.ArtifactID, ref.Version, resolver.CacheTagParent)
}

// resolveExternalRaw resolves and parses a non-workspace descriptor,
// consulting the per-invocation cache first.
func (st *state) resolveExternalRaw(ctx context.Context, groupID, artifactID, version string, tag resolver.CacheTag) diagnostic.Result[*descriptor.Raw] {
	if cached, ok := st.cache.Get(groupID, artifactID, version, tag, ""); ok {
		return diagnostic.Success(cached)
	}
	sourceFile, err := st.cfg.External.ResolveModel(ctx, groupID, artifactID, version)
	if err != nil {
		return diagnostic.Failed[*descriptor.Raw]([]diagnostic.Diagnostic{{
			Severity: diagnostic.Fatal,
			Message:  err.Error(),
			Source:   groupID + ":" + artifactID + ":" + version,
		}})
	}
	parsed := st.cfg.Parser.Parse(ctx, sourceFile, st.cfg.ValidationLevel, false)
	if parsed.HasErrors() {
		return parsed
	}
	st.cache.Put(groupID, artifactID, version, tag, parsed.Get())
	return parsed
}
