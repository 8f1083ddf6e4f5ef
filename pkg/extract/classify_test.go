package extract

import (
	"testing"

	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

func TestIsNode(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		x, y int
		want bool
	}{
		{"background", []string{"...", ".#.", "..."}, 0, 0, false},
		{"isolated pixel", []string{"...", ".#.", "..."}, 1, 1, false},
		{"dead end", []string{"##."}, 0, 0, true},
		{"straight through", []string{"###"}, 1, 0, false},
		{"corner is straight through", []string{"##", "#."}, 0, 0, false},
		{"tee junction", []string{"###", ".#."}, 1, 0, true},
		{"cross junction", []string{".#.", "###", ".#."}, 1, 1, true},
		{"path next to stair", []string{"##s"}, 1, 0, true},
		{"path next to unrecognized", []string{"#?#"}, 0, 0, true},
		{"stair straight through", []string{"#ss#"}, 1, 0, false},
		{"stair dead end", []string{"##s"}, 2, 0, true},
		{"stair junction", []string{"sss", ".s."}, 1, 0, true},
		{"unrecognized straight through", []string{"#?#"}, 1, 0, false},
		{"out of bounds", []string{"#"}, -1, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := raster.MustParseText(tt.rows...)
			if got := IsNode(g, tt.x, tt.y); got != tt.want {
				t.Errorf("IsNode(%d, %d) = %v, want %v\n%s", tt.x, tt.y, got, tt.want, g)
			}
		})
	}
}

func TestIsNodeAtCorners(t *testing.T) {
	g := raster.MustParseText(
		"##.",
		"#..",
		"..#",
	)

	// (0,0) sees two path neighbors and two out-of-bounds backgrounds.
	if IsNode(g, 0, 0) {
		t.Error("(0,0) with degree 2 should not be a node")
	}
	if !IsNode(g, 1, 0) {
		t.Error("(1,0) dead end should be a node")
	}
	if IsNode(g, 2, 2) {
		t.Error("(width-1, height-1) isolated pixel should not be a node")
	}

	h := raster.MustParseText(
		"..#",
		"###",
	)
	if IsNode(h, 2, 1) {
		t.Error("(width-1, height-1) corner of degree 2 should not be a node")
	}
	if !IsNode(h, 0, 1) {
		t.Error("(0, height-1) dead end should be a node")
	}
	if !IsNode(h, 2, 0) {
		t.Error("(width-1, 0) dead end should be a node")
	}
}

func TestClassifyOrder(t *testing.T) {
	g := raster.MustParseText(
		"..#..",
		"..#..",
		"#####",
		"..#..",
		"..#..",
	)

	nodes := Classify(g)
	want := []graph.Coord{pt(0, 2), pt(2, 0), pt(2, 2), pt(2, 4), pt(4, 2)}
	got := nodes.Coords()
	if len(got) != len(want) {
		t.Fatalf("Classify() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if !nodes.Contains(pt(2, 2)) {
		t.Error("center should be a node")
	}
	if nodes.Contains(pt(2, 1)) {
		t.Error("arm pixel should not be a node")
	}
	if nodes.Contains(pt(-1, 2)) || nodes.Contains(pt(5, 5)) {
		t.Error("out-of-bounds coordinates should not be nodes")
	}
}

func pt(x, y int) graph.Coord { return graph.Coord{X: x, Y: y} }
