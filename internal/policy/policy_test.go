package policy_test

import (
	"context"
	"testing"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct{ sourceDep bool }

func (n fakeNode) HasSourceDependency() bool { return n.sourceDep }

// fakeBuilder records every call and returns a canned node per variant,
// letting tests assert exactly which variant the policy requested.
type fakeBuilder struct {
	sourceDeps map[string]bool // coordinate string -> HasSourceDependency for source build
	binaryDeps map[string]bool
	calls      []call
}

type call struct {
	coord    string
	isSource bool
}

func (b *fakeBuilder) BuildVariant(_ context.Context, isSource bool, raw *descriptor.Raw) diagnostic.Result[policy.Node] {
	c, _ := raw.Coordinate()
	b.calls = append(b.calls, call{coord: c.String(), isSource: isSource})
	deps := b.sourceDeps
	if !isSource {
		deps = b.binaryDeps
	}
	return diagnostic.Success[policy.Node](fakeNode{sourceDep: deps[c.String()]})
}

func coord(t *testing.T, g, a string) coordinate.Coordinate {
	c, err := coordinate.New(g, a)
	require.NoError(t, err)
	return c
}

func TestNewPolicy_EmptySelectionForcesAll(t *testing.T) {
	src := map[coordinate.Coordinate]*descriptor.Raw{
		coord(t, "com.x", "a"): {GroupID: "com.x", ArtifactID: "a"},
	}
	p, err := policy.NewPolicy(policy.ModeUpstream, src, nil, nil)
	require.NoError(t, err)
	assert.Len(t, p.SeedCoordinates(), 1)
}

func TestNewPolicy_DefaultRequiresBinaryIndex(t *testing.T) {
	selected := map[coordinate.Coordinate]struct{}{coord(t, "com.x", "a"): {}}
	_, err := policy.NewPolicy(policy.ModeDefault, nil, nil, selected)
	assert.Error(t, err)
}

func TestNewPolicy_BothUnsupported(t *testing.T) {
	selected := map[coordinate.Coordinate]struct{}{coord(t, "com.x", "a"): {}}
	_, err := policy.NewPolicy(policy.ModeBoth, nil, nil, selected)
	assert.Error(t, err)
}

func TestBuildPolicy_All(t *testing.T) {
	a := coord(t, "com.x", "a")
	src := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	p, err := policy.NewPolicy(policy.ModeDefault, src, nil, nil)
	require.NoError(t, err)

	b := &fakeBuilder{}
	result := p.Build(context.Background(), b, a)
	require.False(t, result.HasErrors())
	require.Len(t, b.calls, 1)
	assert.True(t, b.calls[0].isSource)
}

func TestBuildPolicy_SelectedOnlyFallsBackToBinary(t *testing.T) {
	a := coord(t, "com.x", "a")
	bCoord := coord(t, "com.x", "b")
	src := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	bin := map[coordinate.Coordinate]*descriptor.Raw{bCoord: {GroupID: "com.x", ArtifactID: "b"}}
	selected := map[coordinate.Coordinate]struct{}{a: {}}

	p, err := policy.NewPolicy(policy.ModeDefault, src, bin, selected)
	require.NoError(t, err)

	builder := &fakeBuilder{}
	aResult := p.Build(context.Background(), builder, a)
	require.False(t, aResult.HasErrors())
	bResult := p.Build(context.Background(), builder, bCoord)
	require.False(t, bResult.HasErrors())

	require.Len(t, builder.calls, 2)
	assert.True(t, builder.calls[0].isSource)
	assert.False(t, builder.calls[1].isSource)
}

func TestBuildPolicy_DownstreamUsesSourceWhenBinaryDependsOnSource(t *testing.T) {
	a := coord(t, "com.x", "a")
	src := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	bin := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	selected := map[coordinate.Coordinate]struct{}{} // not selected, but present so mode stays downstream
	selected[coord(t, "com.x", "other")] = struct{}{}

	p, err := policy.NewPolicy(policy.ModeDownstream, src, bin, selected)
	require.NoError(t, err)

	builder := &fakeBuilder{binaryDeps: map[string]bool{"com.x:a": true}}
	result := p.Build(context.Background(), builder, a)
	require.False(t, result.HasErrors())
	// both variants get built to inspect the closure, but the fallback picks source.
	require.Len(t, builder.calls, 2)
	assert.True(t, builder.calls[0].isSource)
	assert.False(t, builder.calls[1].isSource)
}

func TestBuildPolicy_DownstreamPicksBinaryWhenIndependent(t *testing.T) {
	a := coord(t, "com.x", "a")
	src := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	bin := map[coordinate.Coordinate]*descriptor.Raw{a: {GroupID: "com.x", ArtifactID: "a"}}
	selected := map[coordinate.Coordinate]struct{}{coord(t, "com.x", "other"): {}}

	p, err := policy.NewPolicy(policy.ModeDownstream, src, bin, selected)
	require.NoError(t, err)

	builder := &fakeBuilder{}
	result := p.Build(context.Background(), builder, a)
	require.False(t, result.HasErrors())
	node := result.Get().(fakeNode)
	assert.False(t, node.sourceDep)
}
