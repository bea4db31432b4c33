package img2pbn

import (
	"embed"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
)

//go:embed colordata/primary12.json
//go:embed colordata/pastel16.json
var paletteFS embed.FS

// Palette is a fixed list of colors. When supplied to the pipeline it
// bypasses K-means clustering: every pixel is assigned directly to its
// nearest palette entry.
type Palette []RGB

// ParseHexColor parses a "#rrggbb" or "rrggbb" string into an RGB color.
func ParseHexColor(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return rgbFromUint32(uint32(v)), nil
}

// ParsePalette parses a JSON array of hex color strings, e.g.
// ["#ff0000", "#00ff00"]. An empty array is rejected.
func ParsePalette(data []byte) (Palette, error) {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse palette: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("palette contains no colors")
	}
	p := make(Palette, 0, len(entries))
	for _, e := range entries {
		c, err := ParseHexColor(e)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

// LoadPalette loads a palette by embedded preset name ("primary12",
// "pastel16") or from a JSON file on disk.
func LoadPalette(name string) (Palette, error) {
	if data, err := paletteFS.ReadFile("colordata/" + name + ".json"); err == nil {
		return ParsePalette(data)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette %q: %w", name, err)
	}
	return ParsePalette(data)
}

// DominantPalette extracts a fixed palette of up to count colors from an
// image by dominant-color frequency. Candidates are oversampled and the
// most frequent distinct ones kept, so the palette reflects colors that
// are actually present in the image rather than cluster averages.
func DominantPalette(img image.Image, count int) (Palette, error) {
	if count <= 0 {
		return nil, fmt.Errorf("palette size must be positive, got %d", count)
	}
	over := count * 4
	if over < 16 {
		over = 16
	}
	candidates := dominantcolor.FindWeight(img, over)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no dominant colors found")
	}
	p := make(Palette, 0, count)
	seen := make(map[RGB]bool)
	for _, c := range candidates {
		rgb := RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B}
		if seen[rgb] {
			continue
		}
		seen[rgb] = true
		p = append(p, rgb)
		if len(p) == count {
			break
		}
	}
	return p, nil
}
