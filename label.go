package img2pbn

import (
	"container/heap"
	"context"
	"math"
)

// placeLabels computes, for every live facet, the interior point
// maximally distant from any boundary (the pole of inaccessibility) and
// the corresponding inscribed-circle radius. Hole loops count as
// boundary, and a candidate inside a hole is invalid (negative
// distance). The exporter uses the anchor and radius to place and size
// the facet's number.
func placeLabels(ctx context.Context, fr *FacetResult, precision float64, progress func(float64)) error {
	live := fr.LiveFacets()
	for i, id := range live {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		f := fr.Facet(id)
		lbl := poleOfInaccessibility(facetRings(f), precision)
		f.Label = &lbl
		if progress != nil {
			progress(float64(i+1) / float64(len(live)))
		}
	}
	return nil
}

// facetRings collects the facet's boundary rings from its smoothed
// segments: the outer ring first, then one ring per hole. Each ring is
// the concatenation of the loop's segment points.
func facetRings(f *Facet) [][]PathPoint {
	rings := make([][]PathPoint, 0, len(f.BorderSegments))
	for _, segs := range f.BorderSegments {
		var ring []PathPoint
		for _, seg := range segs {
			ring = append(ring, seg.Points...)
		}
		rings = append(rings, ring)
	}
	return rings
}

// labelCell is a candidate square in the grid-refinement search. max is
// an upper bound on the boundary distance achievable anywhere inside the
// cell; the queue pops the most promising cell first.
type labelCell struct {
	x, y float64
	h    float64
	d    float64
	max  float64
}

func newLabelCell(x, y, h float64, rings [][]PathPoint) labelCell {
	d := ringsDistance(x, y, rings)
	return labelCell{x: x, y: y, h: h, d: d, max: d + h*math.Sqrt2}
}

// cellQueue is a max-heap of candidate cells ordered by their distance
// upper bound.
type cellQueue []labelCell

func (q cellQueue) Len() int            { return len(q) }
func (q cellQueue) Less(i, j int) bool  { return q[i].max > q[j].max }
func (q cellQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(v interface{}) { *q = append(*q, v.(labelCell)) }
func (q *cellQueue) Pop() interface{} {
	old := *q
	n := len(old)
	v := old[n-1]
	*q = old[:n-1]
	return v
}

// poleOfInaccessibility runs the grid-refinement search over the
// polygon formed by the given rings. It repeatedly subdivides the most
// promising cell until no cell's bound can improve the best point by
// more than precision.
func poleOfInaccessibility(rings [][]PathPoint, precision float64) Label {
	if len(rings) == 0 || len(rings[0]) == 0 {
		return Label{}
	}

	minX, minY := rings[0][0].X, rings[0][0].Y
	maxX, maxY := minX, minY
	for _, p := range rings[0] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	width, height := maxX-minX, maxY-minY
	cellSize := math.Min(width, height)
	if cellSize == 0 {
		// Degenerate polygon: anchor at the bounding box center.
		return Label{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	}

	queue := &cellQueue{}
	heap.Init(queue)
	h := cellSize / 2
	for x := minX; x < maxX; x += cellSize {
		for y := minY; y < maxY; y += cellSize {
			heap.Push(queue, newLabelCell(x+h, y+h, h, rings))
		}
	}

	best := centroidCell(rings)
	if c := newLabelCell((minX+maxX)/2, (minY+maxY)/2, 0, rings); c.d > best.d {
		best = c
	}

	for queue.Len() > 0 {
		cell := heap.Pop(queue).(labelCell)
		if cell.d > best.d {
			best = cell
		}
		// The cell cannot contain a point meaningfully better than the
		// best found so far.
		if cell.max-best.d <= precision {
			continue
		}
		h = cell.h / 2
		heap.Push(queue, newLabelCell(cell.x-h, cell.y-h, h, rings))
		heap.Push(queue, newLabelCell(cell.x+h, cell.y-h, h, rings))
		heap.Push(queue, newLabelCell(cell.x-h, cell.y+h, h, rings))
		heap.Push(queue, newLabelCell(cell.x+h, cell.y+h, h, rings))
	}

	return Label{X: best.x, Y: best.y, Radius: best.d}
}

// centroidCell seeds the search with the outer ring's area centroid.
func centroidCell(rings [][]PathPoint) labelCell {
	ring := rings[0]
	var area, cx, cy float64
	for i, n := 0, len(ring); i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		f := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * f
		cy += (a.Y + b.Y) * f
		area += f * 3
	}
	if area == 0 {
		return newLabelCell(ring[0].X, ring[0].Y, 0, rings)
	}
	return newLabelCell(cx/area, cy/area, 0, rings)
}

// ringsDistance returns the signed distance from (x, y) to the polygon
// boundary: positive inside (outside every hole), negative outside.
// Insideness uses the even-odd rule over all rings, so holes flip it.
func ringsDistance(x, y float64, rings [][]PathPoint) float64 {
	inside := false
	minDistSq := math.MaxFloat64

	for _, ring := range rings {
		for i, n := 0, len(ring); i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if (a.Y > y) != (b.Y > y) &&
				x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
			if d := segmentDistSq(x, y, a, b); d < minDistSq {
				minDistSq = d
			}
		}
	}

	d := math.Sqrt(minDistSq)
	if !inside {
		return -d
	}
	return d
}

// segmentDistSq returns the squared distance from (x, y) to the segment
// a-b.
func segmentDistSq(x, y float64, a, b PathPoint) float64 {
	px, py := a.X, a.Y
	dx, dy := b.X-a.X, b.Y-a.Y

	if dx != 0 || dy != 0 {
		t := ((x-px)*dx + (y-py)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			px, py = b.X, b.Y
		} else if t > 0 {
			px += dx * t
			py += dy * t
		}
	}

	dx, dy = x-px, y-py
	return dx*dx + dy*dy
}
