// Package export renders a finished FacetResult as a paint-by-numbers
// template, either as an SVG document built from the smoothed border
// segments or as a rasterized PNG. The FacetResult is consumed strictly
// read-only.
package export

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/wbrown/img2pbn"
)

// SVGOptions configures the SVG template.
type SVGOptions struct {
	// Scale multiplies all pixel coordinates. Zero means 1.
	Scale float64
	// FillColors paints each facet with its palette color instead of
	// leaving the template white.
	FillColors bool
	// ShowLabels draws each facet's palette number at its label anchor.
	ShowLabels bool
	// StrokeWidth is the border stroke width in output units. Zero
	// means 1.
	StrokeWidth float64
}

// WriteSVG writes the template as an SVG document. Every facet becomes
// one path whose subpaths are the facet's outer border and its holes;
// shared borders are therefore drawn with identical coordinates from
// both sides and always meet exactly.
func WriteSVG(w io.Writer, res *img2pbn.FacetResult, opts SVGOptions) error {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	strokeWidth := opts.StrokeWidth
	if strokeWidth <= 0 {
		strokeWidth = 1
	}

	canvas := svg.New(w)
	canvas.Start(int(float64(res.Width)*scale+0.5), int(float64(res.Height)*scale+0.5))

	for _, id := range res.LiveFacets() {
		f := res.Facet(id)
		d := facetPathData(f, scale)
		if d == "" {
			continue
		}

		fill := "#ffffff"
		if opts.FillColors {
			fill = res.Palette[f.ColorIndex].Hex()
		}
		canvas.Path(d, fmt.Sprintf("fill:%s;stroke:#000000;stroke-width:%g;stroke-linejoin:round", fill, strokeWidth))
	}

	if opts.ShowLabels {
		for _, id := range res.LiveFacets() {
			f := res.Facet(id)
			if f.Label == nil {
				continue
			}
			size := labelFontSize(f.Label.Radius * scale)
			canvas.Text(
				int(f.Label.X*scale+0.5),
				int(f.Label.Y*scale+size*0.35+0.5),
				fmt.Sprintf("%d", f.ColorIndex+1),
				fmt.Sprintf("font-family:sans-serif;font-size:%.1fpx;text-anchor:middle;fill:#000000", size),
			)
		}
	}

	canvas.End()
	return nil
}

// facetPathData builds the SVG path data for a facet: one closed
// subpath per border loop.
func facetPathData(f *img2pbn.Facet, scale float64) string {
	var b strings.Builder
	for _, segs := range f.BorderSegments {
		first := true
		for _, seg := range segs {
			for _, p := range seg.Points {
				if first {
					fmt.Fprintf(&b, "M%.2f %.2f", p.X*scale, p.Y*scale)
					first = false
					continue
				}
				fmt.Fprintf(&b, " L%.2f %.2f", p.X*scale, p.Y*scale)
			}
		}
		if !first {
			b.WriteString(" Z ")
		}
	}
	return strings.TrimSpace(b.String())
}

// labelFontSize derives a legible font size from the inscribed-circle
// radius, clamped so tiny facets still get a readable number.
func labelFontSize(radius float64) float64 {
	size := radius
	if size < 6 {
		size = 6
	}
	if size > 48 {
		size = 48
	}
	return size
}
