package img2pbn

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// ColorSpace selects the space in which color distances are measured
// during quantization and facet reduction.
type ColorSpace int

const (
	// SpaceRGB measures distance on the raw RGB channels.
	SpaceRGB ColorSpace = iota
	// SpaceHSL measures distance on hue/saturation/lightness coordinates.
	SpaceHSL
	// SpaceLAB measures distance in CIE L*a*b*, which approximates
	// perceptual color difference.
	SpaceLAB
)

// String returns the lowercase name of the color space.
func (s ColorSpace) String() string {
	switch s {
	case SpaceRGB:
		return "rgb"
	case SpaceHSL:
		return "hsl"
	case SpaceLAB:
		return "lab"
	}
	return fmt.Sprintf("ColorSpace(%d)", int(s))
}

// ParseColorSpace converts a color space name ("rgb", "hsl", "lab") to a
// ColorSpace value. The comparison is case-insensitive.
func ParseColorSpace(name string) (ColorSpace, error) {
	switch strings.ToLower(name) {
	case "rgb":
		return SpaceRGB, nil
	case "hsl":
		return SpaceHSL, nil
	case "lab":
		return SpaceLAB, nil
	}
	return SpaceRGB, fmt.Errorf("unknown color space %q (valid: rgb, hsl, lab)", name)
}

// RGB represents a color with 8-bit channels, where each channel ranges
// from 0 to 255. Every color in the pipeline is canonically stored as an
// RGB triple regardless of which space distances are measured in.
type RGB struct {
	R, G, B uint8
}

// toUint32 converts an RGB color to a 32-bit unsigned integer.
func (c RGB) toUint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// rgbFromUint32 converts a 32-bit unsigned integer to an RGB color.
func rgbFromUint32(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// RGBFromColor converts a color.Color to RGB, discarding alpha.
func RGBFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// ToColor converts an RGB color to a color.RGBA for use with the
// standard library image packages.
func (c RGB) ToColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns the color formatted as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// colorfulValue converts the RGB color to a go-colorful value for
// color-space conversions.
func (c RGB) colorfulValue() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Coords returns the color's coordinates in the given space as a
// 3-element slice. All three spaces are scaled so that each axis spans
// roughly the unit interval (hue is divided by 360), which lets one
// convergence threshold apply to any space.
func (c RGB) Coords(space ColorSpace) []float64 {
	cf := c.colorfulValue()
	switch space {
	case SpaceHSL:
		h, s, l := cf.Hsl()
		return []float64{h / 360.0, s, l}
	case SpaceLAB:
		l, a, b := cf.Lab()
		return []float64{l, a, b}
	default:
		return []float64{cf.R, cf.G, cf.B}
	}
}

// rgbFromCoords converts coordinates in the given space back to a
// canonical RGB triple. Out-of-gamut results are clamped.
func rgbFromCoords(space ColorSpace, coords []float64) RGB {
	var cf colorful.Color
	switch space {
	case SpaceHSL:
		cf = colorful.Hsl(coords[0]*360.0, coords[1], coords[2])
	case SpaceLAB:
		cf = colorful.Lab(coords[0], coords[1], coords[2])
	default:
		cf = colorful.Color{R: coords[0], G: coords[1], B: coords[2]}
	}
	r, g, b := cf.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// DistanceIn returns the Euclidean distance between two colors in the
// given space, using the same coordinates the quantizer clusters on.
func (c RGB) DistanceIn(space ColorSpace, other RGB) float64 {
	return floats.Distance(c.Coords(space), other.Coords(space), 2)
}
