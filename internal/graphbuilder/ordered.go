package graphbuilder

import (
	"strings"

	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/diagnostic"
)

// orderedResults is the completed map from spec.md §4.E: insertion-ordered
// so its values() sequence is a valid topological order of the graph, a
// node having been inserted only after every coordinate it references is
// either completed or determined external.
type orderedResults struct {
	order  []coordinate.Coordinate
	values map[coordinate.Coordinate]diagnostic.Result[*Node]
}

func newOrderedResults() *orderedResults {
	return &orderedResults{values: make(map[coordinate.Coordinate]diagnostic.Result[*Node])}
}

func (r *orderedResults) get(c coordinate.Coordinate) (diagnostic.Result[*Node], bool) {
	v, ok := r.values[c]
	return v, ok
}

func (r *orderedResults) put(c coordinate.Coordinate, v diagnostic.Result[*Node]) {
	if _, exists := r.values[c]; !exists {
		r.order = append(r.order, c)
	}
	r.values[c] = v
}

func (r *orderedResults) orderedValues() []diagnostic.Result[*Node] {
	out := make([]diagnostic.Result[*Node], len(r.order))
	for i, c := range r.order {
		out[i] = r.values[c]
	}
	return out
}

// buildingSet is the recursion stack from spec.md §4.E: insertion-ordered
// so a detected cycle can be reported in traversal order.
type buildingSet struct {
	order []coordinate.Coordinate
	index map[coordinate.Coordinate]struct{}
}

func newBuildingSet() *buildingSet {
	return &buildingSet{index: make(map[coordinate.Coordinate]struct{})}
}

func (b *buildingSet) contains(c coordinate.Coordinate) bool {
	_, ok := b.index[c]
	return ok
}

func (b *buildingSet) add(c coordinate.Coordinate) {
	b.index[c] = struct{}{}
	b.order = append(b.order, c)
}

func (b *buildingSet) remove(c coordinate.Coordinate) {
	delete(b.index, c)
	for i, o := range b.order {
		if o == c {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// list renders the stack in traversal order as "[a, b, c]", without
// mutating the set — so rendering a cycle message never disturbs the
// still-active outer recursion's bookkeeping. The coordinate that closed
// the cycle is already present in the stack (it is only ever rendered
// from buildByCoord after contains(c) reported true for it), so it is
// not appended a second time.
func (b *buildingSet) list() string {
	parts := make([]string, 0, len(b.order))
	for _, o := range b.order {
		parts = append(parts, o.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
