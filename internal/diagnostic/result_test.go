package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	r := Success(42)
	assert.Equal(t, 42, r.Get())
	assert.Empty(t, r.Problems())
	assert.False(t, r.HasErrors())
}

func TestSuccessWithDiagnostics(t *testing.T) {
	r := SuccessWithDiagnostics("v", []Diagnostic{{Severity: Warning, Message: "careful"}})
	assert.Equal(t, "v", r.Get())
	require.Len(t, r.Problems(), 1)
	assert.False(t, r.HasErrors())
}

func TestFailed(t *testing.T) {
	r := Failed[string]([]Diagnostic{{Severity: Fatal, Message: "boom"}})
	assert.Equal(t, "", r.Get())
	assert.True(t, r.HasErrors())
}

func TestFailedWithValue(t *testing.T) {
	r := FailedWithValue("partial", []Diagnostic{{Severity: Error, Message: "bad"}})
	assert.Equal(t, "partial", r.Get())
	assert.True(t, r.HasErrors())
}

func TestNewResult(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := NewResult(1, []Diagnostic{{Severity: Info, Message: "fyi"}})
		assert.False(t, r.HasErrors())
	})
	t.Run("with error", func(t *testing.T) {
		r := NewResult(1, []Diagnostic{{Severity: Error, Message: "nope"}})
		assert.True(t, r.HasErrors())
	})
}

func TestAddProblem(t *testing.T) {
	r := Success(1)
	r2 := AddProblem(r, Diagnostic{Severity: Warning, Message: "hmm"})
	assert.False(t, r2.HasErrors())
	require.Len(t, r2.Problems(), 1)

	r3 := AddProblem(r2, Diagnostic{Severity: Fatal, Message: "dead"})
	assert.True(t, r3.HasErrors())
	require.Len(t, r3.Problems(), 2)

	// original result is unchanged (immutability)
	assert.False(t, r.HasErrors())
	assert.Empty(t, r.Problems())
}

func TestAddProblems(t *testing.T) {
	r := Success(1)
	r2 := AddProblems(r, []Diagnostic{
		{Severity: Info, Message: "a"},
		{Severity: Error, Message: "b"},
	})
	assert.True(t, r2.HasErrors())
	require.Len(t, r2.Problems(), 2)
}

func TestNewResultSet(t *testing.T) {
	t.Run("all success", func(t *testing.T) {
		set := NewResultSet([]Result[int]{Success(1), Success(2), Success(3)})
		assert.False(t, set.HasErrors())
		assert.Equal(t, []int{1, 2, 3}, set.Get())
	})

	t.Run("one error propagates", func(t *testing.T) {
		set := NewResultSet([]Result[int]{
			Success(1),
			Failed[int]([]Diagnostic{{Severity: Fatal, Message: "bad"}}),
			Success(3),
		})
		assert.True(t, set.HasErrors())
		require.Len(t, set.Problems(), 1)
		assert.Equal(t, []int{1, 0, 3}, set.Get())
	})

	t.Run("diagnostics concatenated in order", func(t *testing.T) {
		set := NewResultSet([]Result[int]{
			SuccessWithDiagnostics(1, []Diagnostic{{Severity: Info, Message: "first"}}),
			SuccessWithDiagnostics(2, []Diagnostic{{Severity: Warning, Message: "second"}}),
		})
		require.Len(t, set.Problems(), 2)
		assert.Equal(t, "first", set.Problems()[0].Message)
		assert.Equal(t, "second", set.Problems()[1].Message)
	})
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Severity: Fatal, Message: "boom", Source: "com.x:y"}
	assert.Equal(t, "com.x:y: boom", d.Error())

	d2 := Diagnostic{Severity: Fatal, Message: "boom"}
	assert.Equal(t, "boom", d2.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARNING", Warning.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "FATAL", Fatal.String())
}
