package extract

import (
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

// Hit is a node reached by a trace and the type of the segment leading to it.
type Hit struct {
	To   graph.Coord
	Type graph.EdgeType
}

type step struct {
	pos   graph.Coord
	stair bool
}

// Trace returns every node reachable from start without passing through
// another node, deduplicated by (node, type). Two segments reaching the same
// node with different types yield two hits.
//
// Pixels are expanded east, west, south, north. A branch is pruned on
// background or on a pixel already visited by this trace; nodes other than
// start end their branch without being marked visited, so every segment
// reaching them is recorded.
func Trace(g *raster.Grid, nodes *NodeSet, start graph.Coord) []Hit {
	var hits []Hit
	seen := make(map[Hit]struct{})
	visited := make(map[graph.Coord]struct{})

	stack := []step{{pos: start}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := g.At(s.pos.X, s.pos.Y)
		if c == raster.Background {
			continue
		}
		if _, ok := visited[s.pos]; ok {
			continue
		}

		stair := s.stair || c == raster.Stair

		if s.pos != start && nodes.Contains(s.pos) {
			h := Hit{To: s.pos, Type: edgeType(stair)}
			if _, dup := seen[h]; !dup {
				seen[h] = struct{}{}
				hits = append(hits, h)
			}
			continue
		}

		visited[s.pos] = struct{}{}

		// Neighbors() is N, W, E, S; push in reverse of the expansion order
		// so east is popped first.
		n := s.pos.Neighbors()
		for _, next := range [4]graph.Coord{n[0], n[3], n[1], n[2]} {
			if g.At(next.X, next.Y) == raster.Background {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			stack = append(stack, step{pos: next, stair: stair})
		}
	}
	return hits
}

func edgeType(stair bool) graph.EdgeType {
	if stair {
		return graph.Stair
	}
	return graph.Flat
}
