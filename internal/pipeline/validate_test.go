package pipeline_test

import (
	"testing"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/pipeline"
	"github.com/busjaeger/reactor/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MinimalIgnoresMissingVersion(t *testing.T) {
	model := &descriptor.Raw{
		GroupID: "com.x", ArtifactID: "app", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "lib"}},
	}
	diags := pipeline.Validate(resolver.ValidationMinimal, model)
	assert.Empty(t, diags)
}

func TestValidate_V20WarnsOnMissingVersion(t *testing.T) {
	model := &descriptor.Raw{
		GroupID: "com.x", ArtifactID: "app", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "lib"}},
	}
	diags := pipeline.Validate(resolver.ValidationV20, model)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Warning, diags[0].Severity)
}

func TestValidate_StrictEscalatesToError(t *testing.T) {
	model := &descriptor.Raw{
		GroupID: "com.x", ArtifactID: "app", Version: "1.0",
		Dependencies: []descriptor.Dependency{{GroupID: "com.x", ArtifactID: "lib"}},
	}
	diags := pipeline.Validate(resolver.ValidationStrict, model)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Error, diags[0].Severity)
}

func TestValidate_StrictRejectsDuplicateDependency(t *testing.T) {
	model := &descriptor.Raw{
		GroupID: "com.x", ArtifactID: "app", Version: "1.0",
		Dependencies: []descriptor.Dependency{
			{GroupID: "com.x", ArtifactID: "lib", Version: "1.0"},
			{GroupID: "com.x", ArtifactID: "lib", Version: "2.0"},
		},
	}
	diags := pipeline.Validate(resolver.ValidationStrict, model)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "duplicate")
}

func TestValidate_MissingGroupIDIsFatal(t *testing.T) {
	model := &descriptor.Raw{ArtifactID: "app", Version: "1.0"}
	diags := pipeline.Validate(resolver.ValidationMinimal, model)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Fatal, diags[0].Severity)
}
