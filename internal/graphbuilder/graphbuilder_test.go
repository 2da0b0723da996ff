package graphbuilder_test

import (
	"context"
	"testing"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/graphbuilder"
	"github.com/busjaeger/reactor/internal/policy"
	"github.com/busjaeger/reactor/internal/resolver"
	"github.com/busjaeger/reactor/internal/testfixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCoord(t *testing.T, groupID, artifactID string) coordinate.Coordinate {
	t.Helper()
	c, err := coordinate.New(groupID, artifactID)
	require.NoError(t, err)
	return c
}

func baseConfig(sourceIndex, binaryIndex map[coordinate.Coordinate]*descriptor.Raw, pol *policy.BuildPolicy) graphbuilder.Config {
	return graphbuilder.Config{
		SourceIndex:     sourceIndex,
		BinaryIndex:     binaryIndex,
		Policy:          pol,
		Parser:          testfixture.NewParser(),
		External:        testfixture.NewExternal(),
		SuperModel:      testfixture.NewSuperModelProvider(nil),
		ValidationLevel: resolver.ValidationMinimal,
	}
}

// S1: linear dependency chain A -> B -> C, ALL mode. All three build from
// source, and C precedes B precedes A in the topological order.
func TestBuild_LinearDependency(t *testing.T) {
	a := &descriptor.Raw{SourceFile: "/ws/a/pom.json", GroupID: "com.x", ArtifactID: "a", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "b", Version: "1.0"}}}
	b := &descriptor.Raw{SourceFile: "/ws/b/pom.json", GroupID: "com.x", ArtifactID: "b", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "c", Version: "1.0"}}}
	c := &descriptor.Raw{SourceFile: "/ws/c/pom.json", GroupID: "com.x", ArtifactID: "c", Version: "1.0"}

	sourceIndex := map[coordinate.Coordinate]*descriptor.Raw{
		mustCoord(t, "com.x", "a"): a,
		mustCoord(t, "com.x", "b"): b,
		mustCoord(t, "com.x", "c"): c,
	}

	pol, err := policy.NewPolicy(policy.ModeDefault, sourceIndex, nil, nil)
	require.NoError(t, err)

	result := graphbuilder.Build(context.Background(), baseConfig(sourceIndex, nil, pol))
	require.False(t, result.HasErrors(), "%v", result.Problems())

	nodes := result.Get().GetSortedProjects()
	require.Len(t, nodes, 3)

	index := make(map[string]int, 3)
	for i, n := range nodes {
		index[n.Coordinate.String()] = i
		assert.True(t, n.IsSource)
	}
	assert.Less(t, index["com.x:c"], index["com.x:b"])
	assert.Less(t, index["com.x:b"], index["com.x:a"])
}

// S3: dependency cycle A <-> B must be rejected with a fatal diagnostic
// naming both coordinates, and no graph produced.
func TestBuild_DependencyCycle(t *testing.T) {
	a := &descriptor.Raw{SourceFile: "/ws/a/pom.json", GroupID: "com.x", ArtifactID: "a", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "b", Version: "1.0"}}}
	b := &descriptor.Raw{SourceFile: "/ws/b/pom.json", GroupID: "com.x", ArtifactID: "b", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "a", Version: "1.0"}}}

	sourceIndex := map[coordinate.Coordinate]*descriptor.Raw{
		mustCoord(t, "com.x", "a"): a,
		mustCoord(t, "com.x", "b"): b,
	}

	pol, err := policy.NewPolicy(policy.ModeDefault, sourceIndex, nil, nil)
	require.NoError(t, err)

	result := graphbuilder.Build(context.Background(), baseConfig(sourceIndex, nil, pol))
	require.True(t, result.HasErrors())

	found := false
	for _, d := range result.Problems() {
		if d.Severity.String() == "FATAL" && containsCycleMessage(d.Message) {
			found = true
			assert.True(t,
				d.Message == "Project dependency cycle detected [com.x:a, com.x:b]" ||
					d.Message == "Project dependency cycle detected [com.x:b, com.x:a]",
				"cycle message must name each coordinate exactly once, got %q", d.Message)
		}
	}
	assert.True(t, found, "expected a dependency cycle diagnostic, got %v", result.Problems())
}

func containsCycleMessage(msg string) bool {
	return len(msg) > 0 && containsSubstring(msg, "Project dependency cycle detected")
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// Two independent back-edges to the same coordinate (A -> [B, C], B -> A,
// C -> A) must each be detected as their own FATAL cycle. This guards
// against buildingSet bookkeeping getting corrupted by the first cycle's
// diagnostic rendering and silently losing track of A for the second.
func TestBuild_IndependentCyclesToSameCoordinate(t *testing.T) {
	a := &descriptor.Raw{SourceFile: "/ws/a/pom.json", GroupID: "com.x", ArtifactID: "a", Version: "1.0",
		Dependencies: []descriptor.Dependency{
			{GroupID: "com.x", ArtifactID: "b", Version: "1.0"},
			{GroupID: "com.x", ArtifactID: "c", Version: "1.0"},
		}}
	b := &descriptor.Raw{SourceFile: "/ws/b/pom.json", GroupID: "com.x", ArtifactID: "b", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "a", Version: "1.0"}}}
	c := &descriptor.Raw{SourceFile: "/ws/c/pom.json", GroupID: "com.x", ArtifactID: "c", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "a", Version: "1.0"}}}

	sourceIndex := map[coordinate.Coordinate]*descriptor.Raw{
		mustCoord(t, "com.x", "a"): a,
		mustCoord(t, "com.x", "b"): b,
		mustCoord(t, "com.x", "c"): c,
	}

	pol, err := policy.NewPolicy(policy.ModeDefault, sourceIndex, nil, nil)
	require.NoError(t, err)

	result := graphbuilder.Build(context.Background(), baseConfig(sourceIndex, nil, pol))
	require.True(t, result.HasErrors())

	var cycleMsgs []string
	for _, d := range result.Problems() {
		if d.Severity.String() == "FATAL" && containsCycleMessage(d.Message) {
			cycleMsgs = append(cycleMsgs, d.Message)
		}
	}
	require.Len(t, cycleMsgs, 2, "expected both back-edges to be independently detected, got %v", result.Problems())
	assert.True(t, containsSubstring(cycleMsgs[0], "com.x:b") || containsSubstring(cycleMsgs[1], "com.x:b"))
	assert.True(t, containsSubstring(cycleMsgs[0], "com.x:c") || containsSubstring(cycleMsgs[1], "com.x:c"))
}

// A dependency-management import cycle between two workspace projects (A
// imports B, B imports A back) must be recorded as an ERROR and the
// offending import skipped, per spec.md §7 - distinct from, and caught
// ahead of, the coordinate-level FATAL cycle check buildByCoord otherwise
// applies to every workspace reference.
func TestBuild_WorkspaceImportCycleIsError(t *testing.T) {
	a := &descriptor.Raw{SourceFile: "/ws/a/pom.json", GroupID: "com.x", ArtifactID: "a", Version: "1.0",
		DependencyManagement: &descriptor.DependencyManagement{
			Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "b", Version: "1.0", Type: "pom", Scope: "import"}},
		},
	}
	b := &descriptor.Raw{SourceFile: "/ws/b/pom.json", GroupID: "com.x", ArtifactID: "b", Version: "1.0",
		DependencyManagement: &descriptor.DependencyManagement{
			Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "a", Version: "1.0", Type: "pom", Scope: "import"}},
		},
	}

	sourceIndex := map[coordinate.Coordinate]*descriptor.Raw{
		mustCoord(t, "com.x", "a"): a,
		mustCoord(t, "com.x", "b"): b,
	}

	pol, err := policy.NewPolicy(policy.ModeDefault, sourceIndex, nil, nil)
	require.NoError(t, err)

	result := graphbuilder.Build(context.Background(), baseConfig(sourceIndex, nil, pol))

	foundCycleError := false
	for _, d := range result.Problems() {
		assert.NotEqual(t, "FATAL", d.Severity.String(), "import cycle must not escalate to a fatal coordinate cycle: %s", d.Message)
		if d.Severity.String() == "ERROR" && containsSubstring(d.Message, "form a cycle") {
			foundCycleError = true
		}
	}
	assert.True(t, foundCycleError, "expected an import-cycle ERROR diagnostic, got %v", result.Problems())

	coords := make(map[string]bool)
	for _, n := range result.Get().GetSortedProjects() {
		coords[n.Coordinate.String()] = true
	}
	assert.True(t, coords["com.x:a"])
	assert.True(t, coords["com.x:b"])
}

// S7: a dependency-management import chain A -> B -> C, where C manages
// x:y:1.0. A's unversioned dependency on x:y must resolve to 1.0 in A's
// effective descriptor.
func TestBuild_ImportChain(t *testing.T) {
	c := &descriptor.Raw{SourceFile: "/ws/c/pom.json", GroupID: "com.x", ArtifactID: "c", Version: "1.0",
		DependencyManagement: &descriptor.DependencyManagement{
			Dependencies: []descriptor.Dependency{{GroupID: "x", ArtifactID: "y", Version: "1.0"}},
		},
	}
	b := &descriptor.Raw{SourceFile: "/ws/b/pom.json", GroupID: "com.x", ArtifactID: "b", Version: "1.0",
		DependencyManagement: &descriptor.DependencyManagement{
			Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "c", Version: "1.0", Type: "pom", Scope: "import"}},
		},
	}
	a := &descriptor.Raw{SourceFile: "/ws/a/pom.json", GroupID: "com.x", ArtifactID: "a", Version: "1.0",
		DependencyManagement: &descriptor.DependencyManagement{
			Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "b", Version: "1.0", Type: "pom", Scope: "import"}},
		},
		Dependencies: []descriptor.Dependency{{GroupID: "x", ArtifactID: "y"}},
	}

	sourceIndex := map[coordinate.Coordinate]*descriptor.Raw{
		mustCoord(t, "com.x", "a"): a,
		mustCoord(t, "com.x", "b"): b,
		mustCoord(t, "com.x", "c"): c,
	}

	pol, err := policy.NewPolicy(policy.ModeDefault, sourceIndex, nil, nil)
	require.NoError(t, err)

	result := graphbuilder.Build(context.Background(), baseConfig(sourceIndex, nil, pol))
	require.False(t, result.HasErrors(), "%v", result.Problems())

	var aNode *graphbuilder.Node
	for _, n := range result.Get().GetSortedProjects() {
		if n.Coordinate.String() == "com.x:a" {
			aNode = n
		}
	}
	require.NotNil(t, aNode)

	var resolved descriptor.Dependency
	for _, d := range aNode.Effective.Dependencies {
		if d.GroupID == "x" && d.ArtifactID == "y" {
			resolved = d
		}
	}
	assert.Equal(t, "1.0", resolved.Version)
}
