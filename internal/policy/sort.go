package policy

import (
	"sort"

	"github.com/busjaeger/reactor/internal/coordinate"
)

// sortCoordinates orders coordinates deterministically by their canonical
// string form, since Go map iteration order is unspecified and the seed
// list feeds directly into the graph builder's recursion order.
func sortCoordinates(cs []coordinate.Coordinate) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].String() < cs[j].String()
	})
}
