package img2pbn

import (
	"image"
	"sort"
)

// BoundingBox holds inclusive integer pixel bounds.
type BoundingBox struct {
	MinX, MinY int
	MaxX, MaxY int
}

// emptyBoundingBox returns a box that any first expand call will snap to
// a single pixel.
func emptyBoundingBox() BoundingBox {
	return BoundingBox{MinX: int(^uint(0) >> 1), MinY: int(^uint(0) >> 1), MaxX: -1, MaxY: -1}
}

// Width returns the inclusive pixel width of the box.
func (b BoundingBox) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the inclusive pixel height of the box.
func (b BoundingBox) Height() int { return b.MaxY - b.MinY + 1 }

// expand grows the box to include the pixel (x, y).
func (b *BoundingBox) expand(x, y int) {
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// union grows the box to include another box.
func (b *BoundingBox) union(o BoundingBox) {
	b.expand(o.MinX, o.MinY)
	b.expand(o.MaxX, o.MaxY)
}

// Label is the anchor point and maximal inscribed-circle radius used to
// place a facet's number.
type Label struct {
	X, Y   float64
	Radius float64
}

// Facet is one maximal 4-connected region of same-colored pixels. Facets
// live in the FacetResult arena and are referenced by id everywhere;
// deleting a facet zeroes its point count without renumbering, so ids
// stay valid as map keys for the lifetime of the result.
type Facet struct {
	ID         int
	ColorIndex int
	PointCount int

	// BorderPoints lists the facet pixels that have at least one
	// 4-neighbor outside the facet, in fill order.
	BorderPoints []image.Point
	BBox         BoundingBox

	// BorderLoops holds the traced closed boundary loops: the outer
	// loop first, then one loop per interior hole. Attached by the
	// border tracer.
	BorderLoops [][]PathPoint

	// BorderSegments holds, per loop, the smoothed segments shared with
	// each neighboring facet. Attached by the border segmenter.
	BorderSegments [][]*BorderSegment

	// Label is the number placement anchor. Attached by the label placer.
	Label *Label

	neighbours      []int
	neighboursDirty bool
}

// Alive reports whether the facet still owns pixels. Deleted facets stay
// in the arena as tombstones.
func (f *Facet) Alive() bool {
	return f != nil && f.PointCount > 0
}

// FacetResult owns the facet-id grid and the facet arena. It is passed
// by exclusive reference through the pipeline stages; no stage runs
// concurrently with another.
//
// Invariant: every grid cell references a live facet, and the sum of all
// live facets' point counts equals Width*Height.
type FacetResult struct {
	Width, Height int

	// Grid maps each pixel (row-major) to its owning facet id.
	Grid []int

	// Facets is indexable by facet id and tolerant of tombstones.
	Facets []*Facet

	// Palette holds the quantized colors; Facet.ColorIndex points here.
	Palette []RGB
}

// inBounds reports whether (x, y) is a valid pixel coordinate.
func (fr *FacetResult) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < fr.Width && y < fr.Height
}

// At returns the facet id owning pixel (x, y).
func (fr *FacetResult) At(x, y int) int {
	return fr.Grid[y*fr.Width+x]
}

// set assigns pixel (x, y) to a facet id.
func (fr *FacetResult) set(x, y, id int) {
	fr.Grid[y*fr.Width+x] = id
}

// Facet returns the facet with the given id, or nil for out-of-range
// ids. Callers must check Alive before using the result.
func (fr *FacetResult) Facet(id int) *Facet {
	if id < 0 || id >= len(fr.Facets) {
		return nil
	}
	return fr.Facets[id]
}

// LiveFacets returns the ids of all live facets in ascending order.
func (fr *FacetResult) LiveFacets() []int {
	ids := make([]int, 0, len(fr.Facets))
	for _, f := range fr.Facets {
		if f.Alive() {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// LiveCount returns the number of live facets.
func (fr *FacetResult) LiveCount() int {
	n := 0
	for _, f := range fr.Facets {
		if f.Alive() {
			n++
		}
	}
	return n
}

// markNeighboursDirty invalidates a facet's cached neighbor list.
// Reduction marks rather than recomputes, so repeated changes to a
// shared neighborhood cost one rebuild instead of many.
func (fr *FacetResult) markNeighboursDirty(id int) {
	if f := fr.Facet(id); f != nil {
		f.neighboursDirty = true
	}
}

// Neighbours returns the ids of the facets 4-adjacent to the given
// facet, in ascending order. The list is cached and rebuilt on demand
// from the facet's border pixels when marked dirty.
func (fr *FacetResult) Neighbours(id int) []int {
	f := fr.Facet(id)
	if f == nil {
		return nil
	}
	if f.neighbours != nil && !f.neighboursDirty {
		return f.neighbours
	}

	seen := make(map[int]bool)
	for _, p := range f.BorderPoints {
		for _, d := range neighbourOffsets {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !fr.inBounds(nx, ny) {
				continue
			}
			if n := fr.At(nx, ny); n != id {
				seen[n] = true
			}
		}
	}

	ids := make([]int, 0, len(seen))
	for n := range seen {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	f.neighbours = ids
	f.neighboursDirty = false
	return ids
}

// neighbourOffsets are the 4-connected neighbor deltas.
var neighbourOffsets = [4]image.Point{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}}

// Validate checks the grid/point-count invariant: every cell references
// a live facet and the live point counts sum to the pixel count.
func (fr *FacetResult) Validate() error {
	counts := make(map[int]int)
	for y := 0; y < fr.Height; y++ {
		for x := 0; x < fr.Width; x++ {
			id := fr.At(x, y)
			f := fr.Facet(id)
			if !f.Alive() {
				return consistencyErrorf(id, x, y, "grid references dead facet")
			}
			counts[id]++
		}
	}
	total := 0
	for id, n := range counts {
		f := fr.Facet(id)
		if f.PointCount != n {
			return consistencyErrorf(id, f.BBox.MinX, f.BBox.MinY,
				"point count %d does not match %d grid cells", f.PointCount, n)
		}
		total += n
	}
	if total != fr.Width*fr.Height {
		return consistencyErrorf(-1, 0, 0,
			"live point counts sum to %d, want %d", total, fr.Width*fr.Height)
	}
	return nil
}

// facetPixels calls fn for every pixel owned by the facet, scanning its
// bounding box in raster order.
func (fr *FacetResult) facetPixels(f *Facet, fn func(x, y int)) {
	for y := f.BBox.MinY; y <= f.BBox.MaxY; y++ {
		for x := f.BBox.MinX; x <= f.BBox.MaxX; x++ {
			if fr.At(x, y) == f.ID {
				fn(x, y)
			}
		}
	}
}
