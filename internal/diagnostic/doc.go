// Package diagnostic provides the Result carrier: a value paired with an
// ordered collection of classified diagnostics, used throughout the core
// instead of returning bare Go errors for expected, data-driven failures.
//
// A Result is in an error state iff it carries at least one diagnostic of
// severity Error or Fatal. Diagnostics are never cleared, only accumulated;
// a Result that starts in an error state stays in an error state.
package diagnostic
