// Package workspace implements component C: it reduces the loader's raw
// descriptor collection to a unique coordinate index and applies the
// user's project selectors to derive the selected subset.
package workspace

import (
	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// Index is the coordinate -> raw descriptor mapping the reactor plans
// over. Construct with NewIndex; the zero value is not usable.
type Index struct {
	byCoordinate map[coordinate.Coordinate]*descriptor.Raw
	order        []coordinate.Coordinate
}

// NewIndex folds descriptors into a coordinate index. If two descriptors
// share a coordinate, the whole operation fails with a single FATAL
// diagnostic naming the duplicate; no partial index is returned.
func NewIndex(descriptors []*descriptor.Raw) diagnostic.Result[*Index] {
	idx := &Index{byCoordinate: make(map[coordinate.Coordinate]*descriptor.Raw, len(descriptors))}

	for _, d := range descriptors {
		c, err := d.Coordinate()
		if err != nil {
			return diagnostic.Failed[*Index]([]diagnostic.Diagnostic{{
				Severity: diagnostic.Fatal,
				Message:  err.Error(),
				Source:   d.SourceFile,
			}})
		}
		if _, exists := idx.byCoordinate[c]; exists {
			return diagnostic.Failed[*Index]([]diagnostic.Diagnostic{{
				Severity: diagnostic.Fatal,
				Message:  "Duplicate project identifiers: " + c.String(),
				Source:   d.SourceFile,
			}})
		}
		idx.byCoordinate[c] = d
		idx.order = append(idx.order, c)
	}

	return diagnostic.Success(idx)
}

// Get returns the raw descriptor for a coordinate, if present.
func (i *Index) Get(c coordinate.Coordinate) (*descriptor.Raw, bool) {
	d, ok := i.byCoordinate[c]
	return d, ok
}

// Contains reports whether c is present in the index.
func (i *Index) Contains(c coordinate.Coordinate) bool {
	_, ok := i.byCoordinate[c]
	return ok
}

// Coordinates returns every coordinate in the index, in the order the
// descriptors were folded in (document order from the loader).
func (i *Index) Coordinates() []coordinate.Coordinate {
	return append([]coordinate.Coordinate(nil), i.order...)
}

// Len returns the number of descriptors in the index.
func (i *Index) Len() int {
	return len(i.byCoordinate)
}

// Map returns the coordinate -> raw descriptor mapping itself, for callers
// (internal/session) that hand it to internal/graphbuilder.Config as a
// plain map rather than going through Index's accessor methods one
// coordinate at a time.
func (i *Index) Map() map[coordinate.Coordinate]*descriptor.Raw {
	return i.byCoordinate
}
