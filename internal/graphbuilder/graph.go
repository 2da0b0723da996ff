package graphbuilder

import "github.com/busjaeger/reactor/internal/coordinate"

// ProjectGraph is the final output (spec.md §3, §6): a topologically
// ordered sequence of project nodes plus a reverse-edge index, so callers
// can walk both a node's upstream (what it depends on) and downstream
// (what depends on it) closures without re-deriving them from the node
// pointers each time.
type ProjectGraph struct {
	nodes      []*Node
	dependents map[coordinate.Coordinate][]*Node
}

// newProjectGraph builds the reverse-edge index from nodes' forward
// references. nodes is assumed already topologically ordered (a node
// appears after everything it references), which orderedResults.orderedValues()
// guarantees by construction.
func newProjectGraph(nodes []*Node) *ProjectGraph {
	g := &ProjectGraph{
		nodes:      nodes,
		dependents: make(map[coordinate.Coordinate][]*Node, len(nodes)),
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, ref := range n.references() {
			g.dependents[ref.Coordinate] = append(g.dependents[ref.Coordinate], n)
		}
	}
	return g
}

// GetSortedProjects returns the topological sequence: every node appears
// after all of its out-edges.
func (g *ProjectGraph) GetSortedProjects() []*Node {
	return g.nodes
}

// GetUpstreamProjects returns the projects n depends on: its direct
// out-edges (parent, dependencies, plugins, imports), or the full
// transitive closure when transitive is true.
func (g *ProjectGraph) GetUpstreamProjects(n *Node, transitive bool) []*Node {
	if n == nil {
		return nil
	}
	if !transitive {
		return dedupeNodes(n.references())
	}
	visited := make(map[coordinate.Coordinate]bool)
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, ref := range cur.references() {
			if visited[ref.Coordinate] {
				continue
			}
			visited[ref.Coordinate] = true
			out = append(out, ref)
			walk(ref)
		}
	}
	walk(n)
	return out
}

// GetDownstreamProjects returns the projects that depend on n: its direct
// in-edges, or the full transitive closure when transitive is true.
func (g *ProjectGraph) GetDownstreamProjects(n *Node, transitive bool) []*Node {
	if n == nil {
		return nil
	}
	if !transitive {
		return dedupeNodes(g.dependents[n.Coordinate])
	}
	visited := make(map[coordinate.Coordinate]bool)
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, dep := range g.dependents[cur.Coordinate] {
			if visited[dep.Coordinate] {
				continue
			}
			visited[dep.Coordinate] = true
			out = append(out, dep)
			walk(dep)
		}
	}
	walk(n)
	return out
}

func dedupeNodes(nodes []*Node) []*Node {
	seen := make(map[coordinate.Coordinate]bool, len(nodes))
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.Coordinate] {
			continue
		}
		seen[n.Coordinate] = true
		out = append(out, n)
	}
	return out
}
