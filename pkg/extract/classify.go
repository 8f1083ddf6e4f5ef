package extract

import (
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

// IsNode reports whether the pixel at (x, y) is a graph node. It is safe for
// any coordinate: out-of-bounds pixels are background.
func IsNode(g *raster.Grid, x, y int) bool {
	px := g.At(x, y)
	if px == raster.Background {
		return false
	}

	degree := 0
	for _, n := range (graph.Coord{X: x, Y: y}).Neighbors() {
		c := g.At(n.X, n.Y)
		if c == raster.Background {
			continue
		}
		if px == raster.Path && c != px {
			return true
		}
		degree++
	}
	return degree != 0 && degree != 2
}

// NodeSet is the set of classified node pixels of one grid. It remembers
// classification order.
type NodeSet struct {
	width  int
	height int
	member []bool
	order  []graph.Coord
}

// Classify scans the grid column by column (x outer, y inner) and returns
// every pixel for which [IsNode] holds.
func Classify(g *raster.Grid) *NodeSet {
	s := &NodeSet{
		width:  g.Width(),
		height: g.Height(),
		member: make([]bool, g.Width()*g.Height()),
	}
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			if IsNode(g, x, y) {
				s.member[y*s.width+x] = true
				s.order = append(s.order, graph.Coord{X: x, Y: y})
			}
		}
	}
	return s
}

// Contains reports whether c is a classified node.
func (s *NodeSet) Contains(c graph.Coord) bool {
	if c.X < 0 || c.X >= s.width || c.Y < 0 || c.Y >= s.height {
		return false
	}
	return s.member[c.Y*s.width+c.X]
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int { return len(s.order) }

// Coords returns the nodes in classification order. The slice must not be
// modified.
func (s *NodeSet) Coords() []graph.Coord { return s.order }
