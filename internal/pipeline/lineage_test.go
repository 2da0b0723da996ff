package pipeline_test

import (
	"context"
	"testing"

	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/pipeline"
	"github.com/busjaeger/reactor/internal/testfixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activatedFixture(raw *descriptor.Raw) *descriptor.Activated {
	return &descriptor.Activated{
		Raw: raw,
		ActivationContext: descriptor.ActivationContext{
			BaseDirectory: "/ws/app",
		},
	}
}

func TestAssembleLineage_TerminatesAtSuperModel(t *testing.T) {
	locator := testfixture.NewParentLocator()
	super := testfixture.NewSuperModelProvider(&descriptor.Raw{SourceFile: "(super)"})

	leaf := activatedFixture(&descriptor.Raw{SourceFile: "app/pom", GroupID: "com.x", ArtifactID: "app"})

	result := pipeline.AssembleLineage(context.Background(), locator, super, leaf, nil, nil, nil, nil, nil)
	require.False(t, result.HasErrors())
	lineage := result.Get()
	require.Len(t, lineage, 1)
	assert.Equal(t, "(super)", lineage[0].SourceFile)
}

func TestAssembleLineage_WalksParentChain(t *testing.T) {
	locator := testfixture.NewParentLocator()
	parentRaw := &descriptor.Raw{SourceFile: "parent/pom", GroupID: "com.x", ArtifactID: "parent-pom"}
	locator.Add("com.x", "parent-pom", "1.0", parentRaw)
	super := testfixture.NewSuperModelProvider(&descriptor.Raw{SourceFile: "(super)"})

	leaf := activatedFixture(&descriptor.Raw{
		SourceFile: "app/pom",
		GroupID:    "com.x",
		ArtifactID: "app",
		Parent:     &descriptor.ParentRef{GroupID: "com.x", ArtifactID: "parent-pom", Version: "1.0"},
	})

	result := pipeline.AssembleLineage(context.Background(), locator, super, leaf, nil, nil, nil, nil, nil)
	require.False(t, result.HasErrors())
	lineage := result.Get()
	require.Len(t, lineage, 2)
	assert.Equal(t, "parent/pom", lineage[0].SourceFile)
	assert.Equal(t, "(super)", lineage[1].SourceFile)
}

func TestAssembleLineage_CycleIsFatal(t *testing.T) {
	locator := testfixture.NewParentLocator()
	a := &descriptor.Raw{
		SourceFile: "a/pom", GroupID: "com.x", ArtifactID: "a",
		Parent: &descriptor.ParentRef{GroupID: "com.x", ArtifactID: "b", Version: "1.0"},
	}
	b := &descriptor.Raw{
		SourceFile: "b/pom", GroupID: "com.x", ArtifactID: "b",
		Parent: &descriptor.ParentRef{GroupID: "com.x", ArtifactID: "a", Version: "1.0"},
	}
	locator.Add("com.x", "a", "1.0", a)
	locator.Add("com.x", "b", "1.0", b)
	super := testfixture.NewSuperModelProvider(nil)

	leaf := activatedFixture(&descriptor.Raw{
		SourceFile: "leaf/pom", GroupID: "com.x", ArtifactID: "leaf",
		Parent: &descriptor.ParentRef{GroupID: "com.x", ArtifactID: "a", Version: "1.0"},
	})

	result := pipeline.AssembleLineage(context.Background(), locator, super, leaf, nil, nil, nil, nil, nil)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Problems()[0].Message, "cycle")
}

func TestAssembleLineage_MissingParentPropagatesFailure(t *testing.T) {
	locator := testfixture.NewParentLocator()
	super := testfixture.NewSuperModelProvider(nil)

	leaf := activatedFixture(&descriptor.Raw{
		SourceFile: "app/pom", GroupID: "com.x", ArtifactID: "app",
		Parent: &descriptor.ParentRef{GroupID: "com.x", ArtifactID: "missing", Version: "1.0"},
	})

	result := pipeline.AssembleLineage(context.Background(), locator, super, leaf, nil, nil, nil, nil, nil)
	assert.True(t, result.HasErrors())
}
