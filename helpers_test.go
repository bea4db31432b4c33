package img2pbn

import (
	"context"
	"testing"

	"github.com/wbrown/img2pbn/imageutil"
)

var (
	tRed   = RGB{R: 255}
	tGreen = RGB{G: 255}
	tBlue  = RGB{B: 255}
	tWhite = RGB{R: 255, G: 255, B: 255}
	tBlack = RGB{}
)

// imageFrom builds a width x height test image from row-major colors.
func imageFrom(t *testing.T, width, height int, colors []RGB) *imageutil.RGBAImage {
	t.Helper()
	if len(colors) != width*height {
		t.Fatalf("imageFrom: got %d colors, want %d", len(colors), width*height)
	}
	img := imageutil.NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colors[y*width+x]
			img.SetRGB(x, y, imageutil.RGB{R: c.R, G: c.G, B: c.B})
		}
	}
	return img
}

// resultFrom builds a FacetResult directly from a color-index grid,
// bypassing quantization.
func resultFrom(t *testing.T, width, height int, indices []int, palette []RGB) *FacetResult {
	t.Helper()
	q := &QuantizeResult{
		Width:   width,
		Height:  height,
		Palette: palette,
		Indices: indices,
	}
	fr, err := buildFacets(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("buildFacets failed: %v", err)
	}
	return fr
}

// checkerboard2x2 returns the canonical 4-distinct-color 2x2 fixture.
func checkerboard2x2(t *testing.T) *FacetResult {
	t.Helper()
	return resultFrom(t, 2, 2,
		[]int{0, 1, 2, 3},
		[]RGB{tRed, tGreen, tBlue, tWhite})
}

// donut3x3 returns a 3x3 image whose center pixel differs from the
// surrounding ring.
func donut3x3(t *testing.T) *FacetResult {
	t.Helper()
	return resultFrom(t, 3, 3,
		[]int{
			0, 0, 0,
			0, 1, 0,
			0, 0, 0,
		},
		[]RGB{tRed, tBlue})
}

// facetByColor returns the live facet with the given color index,
// failing the test if there is not exactly one.
func facetByColor(t *testing.T, fr *FacetResult, colorIndex int) *Facet {
	t.Helper()
	var found *Facet
	for _, id := range fr.LiveFacets() {
		f := fr.Facet(id)
		if f.ColorIndex == colorIndex {
			if found != nil {
				t.Fatalf("multiple live facets with color index %d", colorIndex)
			}
			found = f
		}
	}
	if found == nil {
		t.Fatalf("no live facet with color index %d", colorIndex)
	}
	return found
}
