package session_test

import (
	"context"
	"testing"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/policy"
	"github.com/busjaeger/reactor/internal/resolver"
	"github.com/busjaeger/reactor/internal/session"
	"github.com/busjaeger/reactor/internal/testfixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SingleDescriptorAllMode(t *testing.T) {
	parser := testfixture.NewParser()
	parser.AddDescriptor("/ws/root.json", &descriptor.Raw{GroupID: "com.x", ArtifactID: "root", Version: "1.0"})

	sess := &session.Session{
		PomFile:         "/ws/root.json",
		BaseDirectory:   "/ws",
		Parser:          parser,
		Locator:         testfixture.NewLocator(),
		External:        testfixture.NewExternal(),
		SuperModel:      testfixture.NewSuperModelProvider(nil),
		ValidationLevel: resolver.ValidationMinimal,
	}

	result := session.Build(context.Background(), sess)
	require.False(t, result.HasErrors(), "%v", result.Problems())

	nodes := result.Get().GetSortedProjects()
	require.Len(t, nodes, 1)
	assert.Equal(t, "com.x:root", nodes[0].Coordinate.String())
}

func TestBuild_InvalidSelectorAbortsFatally(t *testing.T) {
	parser := testfixture.NewParser()
	parser.AddDescriptor("/ws/root.json", &descriptor.Raw{GroupID: "com.x", ArtifactID: "root", Version: "1.0"})

	sess := &session.Session{
		PomFile:          "/ws/root.json",
		BaseDirectory:    "/ws",
		SelectedProjects: []string{"a:b:c"},
		MakeBehavior:     policy.ModeDefault,
		Parser:           parser,
		Locator:          testfixture.NewLocator(),
		External:         testfixture.NewExternal(),
		SuperModel:       testfixture.NewSuperModelProvider(nil),
	}

	result := session.Build(context.Background(), sess)
	require.True(t, result.HasErrors())

	problems := result.Problems()
	require.NotEmpty(t, problems)
	assert.Equal(t, "FATAL", problems[0].Severity.String())
}
