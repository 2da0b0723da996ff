package diagnostic

// Result carries the outcome of a pipeline stage: an optional value plus an
// ordered collection of diagnostics. It is immutable; every combinator
// returns a new Result rather than mutating an existing one.
type Result[T any] struct {
	value       T
	diagnostics []Diagnostic
	errors      bool
}

// Success builds a Result with a value and no diagnostics.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// SuccessWithDiagnostics builds a Result with a value and non-error
// diagnostics (warnings/info). Callers must not pass diagnostics of Error
// or Fatal severity here; use Failed or NewResult for that.
func SuccessWithDiagnostics[T any](v T, diags []Diagnostic) Result[T] {
	return Result[T]{value: v, diagnostics: diags, errors: hasErrors(diags)}
}

// Failed builds an error Result with no value, carrying the diagnostics
// that explain the failure.
func Failed[T any](diags []Diagnostic) Result[T] {
	var zero T
	return Result[T]{value: zero, diagnostics: diags, errors: true}
}

// FailedWithValue builds an error Result that still carries a partial
// value, so downstream consumers can report on it (e.g. a project node
// that failed parent resolution is still inserted into the graph so
// dependents can report the cascading failure).
func FailedWithValue[T any](v T, diags []Diagnostic) Result[T] {
	return Result[T]{value: v, diagnostics: diags, errors: true}
}

// NewResult determines success/error by scanning the given diagnostics for
// Error/Fatal severities.
func NewResult[T any](v T, diags []Diagnostic) Result[T] {
	return Result[T]{value: v, diagnostics: diags, errors: hasErrors(diags)}
}

// AddProblem returns a new Result with one additional diagnostic appended.
func AddProblem[T any](r Result[T], d Diagnostic) Result[T] {
	return AddProblems(r, []Diagnostic{d})
}

// AddProblems returns a new Result with the union of r's diagnostics and ds,
// in order. The error state is the disjunction of both.
func AddProblems[T any](r Result[T], ds []Diagnostic) Result[T] {
	merged := make([]Diagnostic, 0, len(r.diagnostics)+len(ds))
	merged = append(merged, r.diagnostics...)
	merged = append(merged, ds...)
	return Result[T]{value: r.value, diagnostics: merged, errors: r.errors || hasErrors(ds)}
}

// Get returns the carried value, which may be the zero value if this
// Result is an error with no partial value.
func (r Result[T]) Get() T {
	return r.value
}

// Problems returns the ordered diagnostics collected for this Result.
func (r Result[T]) Problems() []Diagnostic {
	return r.diagnostics
}

// HasErrors reports whether this Result is in an error state.
func (r Result[T]) HasErrors() bool {
	return r.errors
}

// NewResultSet combines a slice of same-typed Results into a single Result
// over a slice of values: diagnostics are concatenated in order, the error
// state is the disjunction of all inputs, and the value is the ordered
// slice of each input's value (present even for error entries, so a
// partial value is available to the caller for reporting).
func NewResultSet[T any](results []Result[T]) Result[[]T] {
	values := make([]T, 0, len(results))
	var diags []Diagnostic
	errors := false
	for _, r := range results {
		values = append(values, r.value)
		diags = append(diags, r.diagnostics...)
		errors = errors || r.errors
	}
	return Result[[]T]{value: values, diagnostics: diags, errors: errors}
}
