package graph

import (
	"maps"
	"slices"
)

// =============================================================================
// Node
// =============================================================================

// Node is a graph vertex: a junction, dead end or color-transition pixel.
type Node struct {
	Pos  Coord
	Name string // optional identification, empty when unset

	// Edges maps each neighbor to the type of the segment joining them.
	// Keys are unique: one type is retained per neighbor.
	Edges map[Coord]EdgeType
}

// Neighbors returns the neighbor coordinates sorted with [Coord.Less].
func (n *Node) Neighbors() []Coord {
	return slices.SortedFunc(maps.Keys(n.Edges), Coord.Compare)
}

// Degree returns the number of distinct neighbors.
func (n *Node) Degree() int { return len(n.Edges) }

// =============================================================================
// Graph
// =============================================================================

// Graph is the navigation graph of one map floor.
//
// The zero value is not usable - use [New]. A Graph is built once by the
// extractor and then only read; it is not safe for concurrent mutation.
type Graph struct {
	Name  string
	Floor int

	nodes map[Coord]*Node
	order []Coord
}

// New creates an empty graph for the given map name and floor.
func New(name string, floor int) *Graph {
	return &Graph{
		Name:  name,
		Floor: floor,
		nodes: make(map[Coord]*Node),
	}
}

// AddNode adds a node at pos and returns it. Adding an existing position
// returns the existing node unchanged.
func (g *Graph) AddNode(pos Coord) *Node {
	if n, ok := g.nodes[pos]; ok {
		return n
	}
	n := &Node{Pos: pos, Edges: make(map[Coord]EdgeType)}
	g.nodes[pos] = n
	g.order = append(g.order, pos)
	return n
}

// SetEdge records to as a neighbor of from with type t, replacing any type
// previously stored for that neighbor. The node at from is created if needed;
// to is not.
func (g *Graph) SetEdge(from, to Coord, t EdgeType) {
	g.AddNode(from).Edges[to] = t
}

// Node returns the node at pos.
func (g *Graph) Node(pos Coord) (*Node, bool) {
	n, ok := g.nodes[pos]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, pos := range g.order {
		out[i] = g.nodes[pos]
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the undirected edge count: the sum of every node's
// neighbor-map size divided by two. Correct only while adjacency is symmetric.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.Edges)
	}
	return total / 2
}

// Edges returns each undirected connection once, oriented so that
// From.Less(To). A one-sided listing is included from the side that has it.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, pos := range g.order {
		n := g.nodes[pos]
		for _, to := range n.Neighbors() {
			if pos.Less(to) {
				out = append(out, Edge{From: pos, To: to, Type: n.Edges[to]})
				continue
			}
			if other, ok := g.nodes[to]; !ok || !hasEdge(other, pos) {
				out = append(out, Edge{From: to, To: pos, Type: n.Edges[to]})
			}
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := a.From.Compare(b.From); c != 0 {
			return c
		}
		return a.To.Compare(b.To)
	})
	return out
}

func hasEdge(n *Node, to Coord) bool {
	_, ok := n.Edges[to]
	return ok
}

// =============================================================================
// Invariant checks
// =============================================================================

// Asymmetry describes a neighbor listing that is not mirrored.
type Asymmetry struct {
	From Coord
	To   Coord
	Type EdgeType
	// Reverse is the type listed by To for From, nil when To does not list From.
	Reverse *EdgeType
}

// Asymmetries returns every listing A→B where B does not list A, or lists it
// with a different type. A mismatched pair is reported once, from the lesser
// coordinate.
func (g *Graph) Asymmetries() []Asymmetry {
	var out []Asymmetry
	for _, pos := range g.order {
		n := g.nodes[pos]
		for _, to := range n.Neighbors() {
			t := n.Edges[to]
			other, ok := g.nodes[to]
			if !ok {
				out = append(out, Asymmetry{From: pos, To: to, Type: t})
				continue
			}
			rt, ok := other.Edges[pos]
			if !ok {
				out = append(out, Asymmetry{From: pos, To: to, Type: t})
				continue
			}
			if rt != t && pos.Less(to) {
				out = append(out, Asymmetry{From: pos, To: to, Type: t, Reverse: &rt})
			}
		}
	}
	return out
}

// Disconnected returns the nodes with no neighbors, in insertion order.
func (g *Graph) Disconnected() []Coord {
	var out []Coord
	for _, pos := range g.order {
		if len(g.nodes[pos].Edges) == 0 {
			out = append(out, pos)
		}
	}
	return out
}

// ApplyLabels sets Node.Name from labels and returns the label positions that
// do not match any node, sorted.
func (g *Graph) ApplyLabels(labels map[Coord]string) []Coord {
	var unknown []Coord
	for pos, name := range labels {
		n, ok := g.nodes[pos]
		if !ok {
			unknown = append(unknown, pos)
			continue
		}
		n.Name = name
	}
	slices.SortFunc(unknown, Coord.Compare)
	return unknown
}

// Equal reports whether both graphs have the same name, floor, node set,
// names and typed neighbor maps. Enumeration order is ignored.
func (g *Graph) Equal(o *Graph) bool {
	if g.Name != o.Name || g.Floor != o.Floor || len(g.nodes) != len(o.nodes) {
		return false
	}
	for pos, n := range g.nodes {
		m, ok := o.nodes[pos]
		if !ok || n.Name != m.Name || !maps.Equal(n.Edges, m.Edges) {
			return false
		}
	}
	return true
}
