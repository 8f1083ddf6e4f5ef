package export

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/pathgraph/pkg/graph"
)

// ToDOT renders g as an undirected Graphviz graph. Nodes are pinned at their
// pixel position (y flipped so the drawing matches the image) and stair
// segments are dashed.
func ToDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if g.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s floor %d", g.Name, g.Floor))
	}
	buf.WriteString("  node [shape=point, width=0.08];\n")
	buf.WriteString("  edge [color=red];\n")
	buf.WriteString("\n")

	maxY := 0
	for _, n := range g.Nodes() {
		maxY = max(maxY, n.Pos.Y)
	}
	for _, n := range g.Nodes() {
		attrs := fmt.Sprintf("pos=\"%d,%d!\"", n.Pos.X, maxY-n.Pos.Y)
		if n.Name != "" {
			attrs += fmt.Sprintf(", xlabel=%q", n.Name)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Pos.String(), attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Type == graph.Stair {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=green];\n", e.From.String(), e.To.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From.String(), e.To.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}
