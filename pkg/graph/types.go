package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Coord
// =============================================================================

// Coord is an integer pixel position. Two nodes are the same node iff their
// coordinates are equal.
type Coord struct {
	X int
	Y int
}

// String formats the coordinate as "(x, y)", the textual position used in
// exported documents.
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Less orders coordinates by X, then Y. This matches the scan order of the
// node classifier.
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Compare returns -1, 0 or +1 following [Coord.Less]. Suitable for slices.SortFunc.
func (c Coord) Compare(o Coord) int {
	switch {
	case c == o:
		return 0
	case c.Less(o):
		return -1
	default:
		return 1
	}
}

// Neighbors returns the four orthogonal neighbors in the order
// north, west, east, south.
func (c Coord) Neighbors() [4]Coord {
	return [4]Coord{
		{c.X, c.Y - 1},
		{c.X - 1, c.Y},
		{c.X + 1, c.Y},
		{c.X, c.Y + 1},
	}
}

// ParseCoord parses "(x, y)", "x,y" or "x y".
func ParseCoord(s string) (Coord, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")
	fields := strings.FieldsFunc(trimmed, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 2 {
		return Coord{}, fmt.Errorf("invalid coordinate %q", s)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// MarshalText implements encoding.TextMarshaler so coordinates can be used as
// map keys in JSON and TOML.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", c.X, c.Y)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coord) UnmarshalText(text []byte) error {
	parsed, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// EdgeType
// =============================================================================

// EdgeType is the resolved type of a path segment between two nodes.
type EdgeType int

const (
	// Flat segments contain no stair-colored pixel.
	Flat EdgeType = iota
	// Stair segments pass through at least one stair-colored pixel.
	Stair
)

// String returns "FLAT" or "STAIR".
func (t EdgeType) String() string {
	if t == Stair {
		return "STAIR"
	}
	return "FLAT"
}

// Merge resolves two types produced for the same neighbor. Stair wins.
func (t EdgeType) Merge(o EdgeType) EdgeType {
	if t == Stair || o == Stair {
		return Stair
	}
	return Flat
}

// ParseEdgeType parses "FLAT" or "STAIR" (case-insensitive).
func ParseEdgeType(s string) (EdgeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FLAT":
		return Flat, nil
	case "STAIR":
		return Stair, nil
	}
	return Flat, fmt.Errorf("invalid edge type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t EdgeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EdgeType) UnmarshalText(text []byte) error {
	parsed, err := ParseEdgeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// Edge
// =============================================================================

// Edge is an undirected connection as seen from one endpoint.
type Edge struct {
	From Coord
	To   Coord
	Type EdgeType
}
