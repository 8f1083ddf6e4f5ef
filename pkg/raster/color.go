// Package raster turns a decoded image into an immutable, coordinate
// addressable grid of classified colors.
//
// Every pixel is matched exactly against a [Palette] of three reserved RGB
// values: background, path and stair. Anything else is [Unrecognized] and is
// handled according to an [UnrecognizedPolicy] when the grid is built.
//
// [Grid.At] never fails: coordinates outside the image resolve to
// [Background], so callers treat the image border like any interior pixel.
package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

// Color is the classification of one pixel.
type Color uint8

const (
	Background Color = iota
	Path
	Stair
	Unrecognized
)

var colorNames = [...]string{
	Background:   "background",
	Path:         "path",
	Stair:        "stair",
	Unrecognized: "unrecognized",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", c)
}

// =============================================================================
// RGB
// =============================================================================

// RGB is an opaque 8-bit color. Alpha is dropped when converting from an
// image, the same way an RGB conversion of an RGBA image keeps the channels.
type RGB struct {
	R, G, B uint8
}

// RGBOf converts any color to RGB through the non-premultiplied model.
func RGBOf(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// String formats the color as "#rrggbb".
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// ParseRGB parses "#rrggbb", "rrggbb", "#rgb" or "r,g,b".
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return RGB{}, perrors.New(perrors.ErrCodeInvalidColor, "invalid color %q (want r,g,b)", s)
		}
		var out [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return RGB{}, perrors.Wrap(perrors.ErrCodeInvalidColor, err, "invalid color %q", s)
			}
			out[i] = uint8(v)
		}
		return RGB{out[0], out[1], out[2]}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, perrors.New(perrors.ErrCodeInvalidColor, "invalid color %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, perrors.Wrap(perrors.ErrCodeInvalidColor, err, "invalid color %q", s)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler, so palettes can be read
// from TOML and JSON as strings.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// Palette
// =============================================================================

// Palette holds the three reserved colors.
type Palette struct {
	Background RGB `toml:"background" json:"background"`
	Path       RGB `toml:"path" json:"path"`
	Stair      RGB `toml:"stair" json:"stair"`
}

// DefaultPalette is black background, red paths and green stairs.
var DefaultPalette = Palette{
	Background: RGB{0, 0, 0},
	Path:       RGB{255, 0, 0},
	Stair:      RGB{0, 255, 0},
}

// Validate checks that the three reserved colors are distinct.
func (p Palette) Validate() error {
	if p.Background == p.Path || p.Background == p.Stair || p.Path == p.Stair {
		return perrors.New(perrors.ErrCodeInvalidColor,
			"palette colors must be distinct (background %s, path %s, stair %s)", p.Background, p.Path, p.Stair)
	}
	return nil
}

// Classify maps an RGB value to its Color by exact match.
func (p Palette) Classify(c RGB) Color {
	switch c {
	case p.Background:
		return Background
	case p.Path:
		return Path
	case p.Stair:
		return Stair
	}
	return Unrecognized
}
