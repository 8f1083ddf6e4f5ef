package graph

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func c(x, y int) Coord { return Coord{X: x, Y: y} }

func TestCoordString(t *testing.T) {
	if got := c(12, -3).String(); got != "(12, -3)" {
		t.Errorf("String() = %q, want %q", got, "(12, -3)")
	}
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in      string
		want    Coord
		wantErr bool
	}{
		{"(3, 4)", c(3, 4), false},
		{"3,4", c(3, 4), false},
		{" 3 4 ", c(3, 4), false},
		{"(-1, 0)", c(-1, 0), false},
		{"3", Coord{}, true},
		{"3,4,5", Coord{}, true},
		{"a,b", Coord{}, true},
		{"", Coord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCoord(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoord(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCoord(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoordOrder(t *testing.T) {
	coords := []Coord{c(2, 0), c(0, 5), c(0, 1), c(1, 9)}
	slices.SortFunc(coords, Coord.Compare)
	want := []Coord{c(0, 1), c(0, 5), c(1, 9), c(2, 0)}
	if !slices.Equal(coords, want) {
		t.Errorf("sorted = %v, want %v", coords, want)
	}
	if c(1, 1).Compare(c(1, 1)) != 0 {
		t.Error("Compare of equal coords should be 0")
	}
}

func TestCoordNeighbors(t *testing.T) {
	got := c(5, 5).Neighbors()
	want := [4]Coord{c(5, 4), c(4, 5), c(6, 5), c(5, 6)}
	if got != want {
		t.Errorf("Neighbors() = %v, want %v", got, want)
	}
}

func TestEdgeType(t *testing.T) {
	tests := []struct {
		in      string
		want    EdgeType
		wantErr bool
	}{
		{"FLAT", Flat, false},
		{"stair", Stair, false},
		{" Stair ", Stair, false},
		{"ramp", Flat, true},
	}
	for _, tt := range tests {
		got, err := ParseEdgeType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEdgeType(%q) = %v, %v; want %v, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}

	if Flat.Merge(Flat) != Flat || Flat.Merge(Stair) != Stair || Stair.Merge(Flat) != Stair {
		t.Error("Merge should keep STAIR whenever either side is STAIR")
	}
}

// line builds a -- b == c where "==" is a stair.
func line() *Graph {
	g := New("hall", 1)
	a, b, cc := c(0, 0), c(4, 0), c(9, 0)
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(cc)
	g.SetEdge(a, b, Flat)
	g.SetEdge(b, a, Flat)
	g.SetEdge(b, cc, Stair)
	g.SetEdge(cc, b, Stair)
	return g
}

func TestGraphBasics(t *testing.T) {
	g := line()

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}

	want := []Edge{
		{From: c(0, 0), To: c(4, 0), Type: Flat},
		{From: c(4, 0), To: c(9, 0), Type: Stair},
	}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}

	n, ok := g.Node(c(4, 0))
	if !ok || n.Degree() != 2 {
		t.Fatalf("Node((4, 0)) = %v, %v; want degree 2", n, ok)
	}
	if got := n.Neighbors(); !slices.Equal(got, []Coord{c(0, 0), c(9, 0)}) {
		t.Errorf("Neighbors() = %v", got)
	}

	if _, ok := g.Node(c(1, 1)); ok {
		t.Error("Node() found a position that was never added")
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New("", 0)
	first := g.AddNode(c(1, 2))
	first.Name = "door"
	second := g.AddNode(c(1, 2))
	if first != second || g.NodeCount() != 1 || second.Name != "door" {
		t.Error("AddNode on an existing position should return the existing node")
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New("", 0)
	order := []Coord{c(5, 5), c(0, 0), c(3, 1)}
	for _, p := range order {
		g.AddNode(p)
	}
	var got []Coord
	for _, n := range g.Nodes() {
		got = append(got, n.Pos)
	}
	if !slices.Equal(got, order) {
		t.Errorf("Nodes() order = %v, want %v", got, order)
	}
}

func TestAsymmetries(t *testing.T) {
	g := New("", 0)
	a, b, d := c(0, 0), c(1, 0), c(2, 0)
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(d)
	g.SetEdge(a, b, Flat) // b does not list a
	g.SetEdge(b, d, Flat)
	g.SetEdge(d, b, Stair) // type mismatch

	got := g.Asymmetries()
	if len(got) != 2 {
		t.Fatalf("Asymmetries() = %v, want 2 entries", got)
	}
	if got[0].From != a || got[0].To != b || got[0].Reverse != nil {
		t.Errorf("first = %+v, want one-sided a->b", got[0])
	}
	if got[1].From != b || got[1].To != d || got[1].Reverse == nil || *got[1].Reverse != Stair {
		t.Errorf("second = %+v, want b->d FLAT vs STAIR", got[1])
	}

	// A one-sided listing still shows up in Edges.
	if edges := g.Edges(); len(edges) != 2 {
		t.Errorf("Edges() = %v, want 2", edges)
	}
}

func TestDisconnected(t *testing.T) {
	g := line()
	g.AddNode(c(7, 7))
	if got := g.Disconnected(); !slices.Equal(got, []Coord{c(7, 7)}) {
		t.Errorf("Disconnected() = %v, want [(7, 7)]", got)
	}
}

func TestApplyLabels(t *testing.T) {
	g := line()
	unknown := g.ApplyLabels(map[Coord]string{
		c(0, 0):   "entrance",
		c(9, 0):   "upstairs",
		c(50, 50): "nowhere",
		c(1, 1):   "typo",
	})

	if !slices.Equal(unknown, []Coord{c(1, 1), c(50, 50)}) {
		t.Errorf("unknown = %v", unknown)
	}
	n, _ := g.Node(c(0, 0))
	if n.Name != "entrance" {
		t.Errorf("Name = %q, want entrance", n.Name)
	}
	n, _ = g.Node(c(4, 0))
	if n.Name != "" {
		t.Errorf("unlabelled node Name = %q, want empty", n.Name)
	}
}

func TestEqual(t *testing.T) {
	if !line().Equal(line()) {
		t.Error("identical graphs should be equal")
	}

	other := line()
	other.SetEdge(c(0, 0), c(4, 0), Stair)
	if line().Equal(other) {
		t.Error("graphs with different edge types should differ")
	}

	named := line()
	named.ApplyLabels(map[Coord]string{c(0, 0): "x"})
	if line().Equal(named) {
		t.Error("graphs with different names should differ")
	}

	floor := line()
	floor.Floor = 2
	if line().Equal(floor) {
		t.Error("graphs with different floors should differ")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := line()
	g.ApplyLabels(map[Coord]string{c(0, 0): "entrance"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if !g.Equal(back) {
		t.Errorf("round trip changed the graph:\n%s", data)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Edges != 2 || len(doc.Nodes) != 3 {
		t.Errorf("document edges=%d nodes=%d, want 2 and 3", doc.Edges, len(doc.Nodes))
	}
	if !strings.Contains(string(data), `"type": "STAIR"`) {
		t.Errorf("expected STAIR edge in output:\n%s", data)
	}
	if strings.Count(string(data), `"name"`) != 2 {
		t.Errorf("empty node names should be omitted:\n%s", data)
	}
}

func TestReadGraphDuplicateNode(t *testing.T) {
	in := `{"name":"x","floor":0,"edges":0,"nodes":[{"pos":"1,1","edges":[]},{"pos":"1,1","edges":[]}]}`
	if _, err := ReadGraph(strings.NewReader(in)); err == nil {
		t.Error("ReadGraph() should reject duplicate nodes")
	}
}
