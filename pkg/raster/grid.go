package raster

import (
	"image"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

// Grid is an immutable width×height array of classified colors.
// The zero value is an empty 0×0 grid.
type Grid struct {
	width  int
	height int
	cells  []Color // row-major
}

// Stats summarizes how a grid was built from an image.
type Stats struct {
	// Unrecognized is the number of pixels that matched no palette color.
	Unrecognized int
	// FirstUnrecognized is the first such pixel in scan order (x, then y),
	// and its raw color. Meaningful only when Unrecognized > 0.
	FirstUnrecognized      image.Point
	FirstUnrecognizedColor RGB
	// Policy is the policy that was applied to them.
	Policy UnrecognizedPolicy
}

// NewGrid builds a grid from row-major cells. It panics if len(cells) does not
// equal width*height.
func NewGrid(width, height int, cells []Color) *Grid {
	if width < 0 || height < 0 || len(cells) != width*height {
		panic("raster: cell count does not match dimensions")
	}
	return &Grid{width: width, height: height, cells: append([]Color(nil), cells...)}
}

// FromImage classifies every pixel of img against the palette.
//
// With [PolicyReject] the first unrecognized pixel aborts with a
// MALFORMED_INPUT error. Every other policy returns a grid and reports the
// unrecognized pixels in Stats.
func FromImage(img image.Image, p Palette, policy UnrecognizedPolicy) (*Grid, Stats, error) {
	policy, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{Policy: policy}
	if err := p.Validate(); err != nil {
		return nil, stats, err
	}

	b := img.Bounds()
	g := &Grid{width: b.Dx(), height: b.Dy(), cells: make([]Color, b.Dx()*b.Dy())}

	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			rgb := RGBOf(img.At(b.Min.X+x, b.Min.Y+y))
			c := p.Classify(rgb)
			if c == Unrecognized {
				if stats.Unrecognized == 0 {
					stats.FirstUnrecognized = image.Pt(x, y)
					stats.FirstUnrecognizedColor = rgb
				}
				stats.Unrecognized++
				if policy == PolicyReject {
					return nil, stats, perrors.New(perrors.ErrCodeMalformedInput,
						"unrecognized color %s at (%d, %d)", rgb, x, y)
				}
				c = policy.resolve()
			}
			g.cells[y*g.width+x] = c
		}
	}
	return g, stats, nil
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the color at (x, y), or Background outside the grid.
func (g *Grid) At(x, y int) Color {
	if !g.InBounds(x, y) {
		return Background
	}
	return g.cells[y*g.width+x]
}

// Count returns the number of cells of the given color.
func (g *Grid) Count(c Color) int {
	n := 0
	for _, cell := range g.cells {
		if cell == c {
			n++
		}
	}
	return n
}
