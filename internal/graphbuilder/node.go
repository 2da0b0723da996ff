// Package graphbuilder implements component E: the recursive builder that
// drives the per-descriptor pipeline (internal/pipeline) coordinate by
// coordinate, memoizing results and detecting dependency cycles, to
// assemble the final topologically-ordered project graph.
package graphbuilder

import (
	"github.com/busjaeger/reactor/internal/coordinate"
	"github.com/busjaeger/reactor/internal/descriptor"
)

// Node is a single built project: the effective descriptor, the variant
// it was built as, and its resolved references to other nodes in the
// graph. Cross-node references are plain pointers into the arena the
// builder owns (state.completed) — a Node never owns another Node, so the
// graph's cyclic-looking references (a dependency's dependent pointing
// back through a shared coordinate) never become cyclic ownership.
type Node struct {
	Coordinate coordinate.Coordinate
	IsSource   bool

	Effective *descriptor.Effective

	Parent       *Node
	Dependencies []*Node
	Plugins      []*Node
	Imports      []*Node
}

// HasSourceDependency implements policy.Node: it reports whether any
// direct reference (parent, dependency, plugin or import) is itself a
// source-variant node, or itself has a source dependency further down.
// The node's own variant is deliberately excluded — this asks about the
// closure a node pulls in, not the node itself, since that's what the
// downstream-mode variant-fallback decision needs.
func (n *Node) HasSourceDependency() bool {
	for _, ref := range n.references() {
		if ref.IsSource || ref.HasSourceDependency() {
			return true
		}
	}
	return false
}

func (n *Node) references() []*Node {
	refs := make([]*Node, 0, 1+len(n.Dependencies)+len(n.Plugins)+len(n.Imports))
	if n.Parent != nil {
		refs = append(refs, n.Parent)
	}
	refs = append(refs, n.Dependencies...)
	refs = append(refs, n.Plugins...)
	refs = append(refs, n.Imports...)
	return refs
}
