package img2pbn

import (
	"math"
	"sort"
)

// paletteNode represents a node in a KD-tree over the entries of a fixed
// palette. Each node stores a color, the palette index it came from, a
// left child, a right child, and the axis along which the colors are
// split. The tree answers nearest-palette-entry queries for the fixed
// palette quantization path.
type paletteNode struct {
	Color       RGB
	Index       int
	Left, Right *paletteNode
	SplitAxis   int
}

// paletteEntry pairs a palette color with its index so sorting during
// tree construction does not lose the index mapping.
type paletteEntry struct {
	color RGB
	index int
}

// buildPaletteTree constructs a KD-tree from a palette. The axis
// pruning is only valid for the axis-aligned RGB metric, so callers use
// the tree when distances are measured in SpaceRGB and fall back to a
// linear scan for other spaces.
func buildPaletteTree(p Palette) *paletteNode {
	entries := make([]paletteEntry, len(p))
	for i, c := range p {
		entries[i] = paletteEntry{color: c, index: i}
	}
	return buildPaletteSubtree(entries)
}

func buildPaletteSubtree(entries []paletteEntry) *paletteNode {
	if len(entries) == 0 {
		return nil
	}

	// Choose splitting axis based on the dimension with the largest variance
	axis := chooseSplitAxis(entries)

	sort.Slice(entries, func(i, j int) bool {
		return colorComponent(entries[i].color, axis) <
			colorComponent(entries[j].color, axis)
	})

	median := len(entries) / 2
	return &paletteNode{
		Color:     entries[median].color,
		Index:     entries[median].index,
		Left:      buildPaletteSubtree(entries[:median]),
		Right:     buildPaletteSubtree(entries[median+1:]),
		SplitAxis: axis,
	}
}

// chooseSplitAxis selects the axis along which to split the colors in a
// KD-tree. It returns the index of the RGB axis with the largest
// variance across the given entries.
func chooseSplitAxis(entries []paletteEntry) int {
	var meanR, meanG, meanB float64
	for _, e := range entries {
		meanR += float64(e.color.R)
		meanG += float64(e.color.G)
		meanB += float64(e.color.B)
	}
	n := float64(len(entries))
	meanR /= n
	meanG /= n
	meanB /= n

	var varR, varG, varB float64
	for _, e := range entries {
		varR += (float64(e.color.R) - meanR) * (float64(e.color.R) - meanR)
		varG += (float64(e.color.G) - meanG) * (float64(e.color.G) - meanG)
		varB += (float64(e.color.B) - meanB) * (float64(e.color.B) - meanB)
	}

	if varR >= varG && varR >= varB {
		return 0
	}
	if varG >= varB {
		return 1
	}
	return 2
}

// colorComponent returns the color channel for the given axis index.
func colorComponent(c RGB, axis int) float64 {
	switch axis {
	case 0:
		return float64(c.R)
	case 1:
		return float64(c.G)
	default:
		return float64(c.B)
	}
}

// rgbDistanceSq returns the squared Euclidean distance between two RGB
// colors on the raw channels.
func rgbDistanceSq(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

// Nearest returns the palette index of the entry closest to c under the
// RGB metric, along with the squared distance to it.
func (n *paletteNode) Nearest(c RGB) (int, float64) {
	best := -1
	bestDist := math.MaxFloat64
	n.nearestInto(c, &best, &bestDist)
	return best, bestDist
}

func (n *paletteNode) nearestInto(c RGB, best *int, bestDist *float64) {
	if n == nil {
		return
	}

	if d := rgbDistanceSq(c, n.Color); d < *bestDist {
		*bestDist = d
		*best = n.Index
	}

	axisDelta := colorComponent(c, n.SplitAxis) - colorComponent(n.Color, n.SplitAxis)
	near, far := n.Left, n.Right
	if axisDelta > 0 {
		near, far = n.Right, n.Left
	}

	near.nearestInto(c, best, bestDist)
	// Only descend the far side if the splitting plane is closer than
	// the best match found so far.
	if axisDelta*axisDelta < *bestDist {
		far.nearestInto(c, best, bestDist)
	}
}
