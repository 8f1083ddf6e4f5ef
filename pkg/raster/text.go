package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Text glyphs used by [ParseText] and [Grid.String].
const (
	GlyphBackground   = '.'
	GlyphPath         = '#'
	GlyphStair        = 's'
	GlyphUnrecognized = '?'
)

// ParseText builds a grid from rows of glyphs: '.' background, '#' path,
// 's' stair and '?' unrecognized. All rows must have the same length.
func ParseText(rows ...string) (*Grid, error) {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	cells := make([]Color, 0, width*height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has length %d, want %d", y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case GlyphBackground, ' ':
				cells = append(cells, Background)
			case GlyphPath:
				cells = append(cells, Path)
			case GlyphStair:
				cells = append(cells, Stair)
			case GlyphUnrecognized:
				cells = append(cells, Unrecognized)
			default:
				return nil, fmt.Errorf("unknown glyph %q at (%d, %d)", row[x], x, y)
			}
		}
	}
	return NewGrid(width, height, cells), nil
}

// MustParseText is like [ParseText] but panics on error.
func MustParseText(rows ...string) *Grid {
	g, err := ParseText(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// String renders the grid with the glyphs of [ParseText], one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			switch g.At(x, y) {
			case Background:
				b.WriteByte(GlyphBackground)
			case Path:
				b.WriteByte(GlyphPath)
			case Stair:
				b.WriteByte(GlyphStair)
			default:
				b.WriteByte(GlyphUnrecognized)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Image paints the grid with the palette colors. Unrecognized cells are
// painted with the unrecognized color u.
func (g *Grid) Image(p Palette, u RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			var c RGB
			switch g.At(x, y) {
			case Background:
				c = p.Background
			case Path:
				c = p.Path
			case Stair:
				c = p.Stair
			default:
				c = u
			}
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return img
}
