package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/img2pbn"
)

// PNGOptions configures the rasterized template.
type PNGOptions struct {
	// Scale is the integer pixel magnification. Zero means 1.
	Scale int
	// FillColors paints each facet with its palette color instead of
	// leaving the template white.
	FillColors bool
	// Outline draws black facet boundaries.
	Outline bool
	// ShowLabels draws each facet's palette number at its label anchor.
	ShowLabels bool
}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

// loadLabelFont parses the embedded Go regular font once.
func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// RenderPNG rasterizes the template into an RGBA image.
func RenderPNG(res *img2pbn.FacetResult, opts PNGOptions) (*image.RGBA, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	width, height := res.Width*scale, res.Height*scale
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if opts.FillColors {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f := res.Facet(res.At(x/scale, y/scale))
				out.SetRGBA(x, y, res.Palette[f.ColorIndex].ToColor())
			}
		}
	}

	if opts.Outline {
		black := color.RGBA{A: 255}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				sx, sy := x/scale, y/scale
				id := res.At(sx, sy)
				boundary := (x%scale == 0 && sx > 0 && res.At(sx-1, sy) != id) ||
					(y%scale == 0 && sy > 0 && res.At(sx, sy-1) != id)
				if boundary {
					out.SetRGBA(x, y, black)
				}
			}
		}
	}

	if opts.ShowLabels {
		if err := drawLabels(out, res, scale); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// drawLabels renders each facet's palette number at its label anchor,
// sized by the inscribed-circle radius.
func drawLabels(dst *image.RGBA, res *img2pbn.FacetResult, scale int) error {
	fnt, err := loadLabelFont()
	if err != nil {
		return fmt.Errorf("failed to load label font: %w", err)
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(fnt)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(color.Black))

	for _, id := range res.LiveFacets() {
		f := res.Facet(id)
		if f.Label == nil {
			continue
		}
		size := labelFontSize(f.Label.Radius * float64(scale))
		c.SetFontSize(size)

		text := fmt.Sprintf("%d", f.ColorIndex+1)
		// Approximate centering; exact glyph metrics are not worth the
		// complexity for a template number.
		x := f.Label.X*float64(scale) - size*0.28*float64(len(text))
		y := f.Label.Y*float64(scale) + size*0.35
		if _, err := c.DrawString(text, freetype.Pt(int(x+0.5), int(y+0.5))); err != nil {
			return fmt.Errorf("failed to draw label for facet %d: %w", id, err)
		}
	}
	return nil
}
