package img2pbn

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"
)

// RemovalOrder controls the order in which undersized facets are
// eliminated.
type RemovalOrder int

const (
	// LargeToSmall removes the largest undersized facets first. This is
	// the default: large regions absorb small ones before the smallest
	// fragments are redistributed, which avoids disproportionately
	// warping big regions.
	LargeToSmall RemovalOrder = iota
	// SmallToLarge removes the smallest facets first.
	SmallToLarge
)

// String returns the option name of the removal order.
func (o RemovalOrder) String() string {
	if o == SmallToLarge {
		return "smallToLarge"
	}
	return "largeToSmall"
}

// ParseRemovalOrder converts an option name to a RemovalOrder.
func ParseRemovalOrder(name string) (RemovalOrder, error) {
	switch strings.ToLower(name) {
	case "largetosmall":
		return LargeToSmall, nil
	case "smalltolarge":
		return SmallToLarge, nil
	}
	return LargeToSmall, fmt.Errorf("unknown removal order %q (valid: largeToSmall, smallToLarge)", name)
}

// facetReducer eliminates facets below a minimum size by reassigning
// their pixels to neighboring facets, then keeps eliminating the
// smallest facets while the live count exceeds an optional cap. The
// facet-id grid and the (lazy) neighbor graph stay valid throughout.
type facetReducer struct {
	minSize  int
	order    RemovalOrder
	maxCount int
	space    ColorSpace
	progress func(float64)
}

func (r *facetReducer) report(fraction float64) {
	if r.progress != nil {
		r.progress(fraction)
	}
}

// reduce runs both elimination phases and then verifies that no grid
// cell references a dead facet.
func (r *facetReducer) reduce(ctx context.Context, fr *FacetResult) error {
	candidates := r.undersized(fr)
	for i, id := range candidates {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		f := fr.Facet(id)
		// Earlier eliminations may have grown this facet past the
		// threshold or merged it away entirely.
		if !f.Alive() || f.PointCount >= r.minSize {
			continue
		}
		r.removeFacet(fr, f)
		r.report(float64(i+1) / float64(len(candidates)+1))
	}

	if err := r.enforceFacetCap(ctx, fr); err != nil {
		return err
	}
	r.repairDeadReferences(fr)
	r.report(1.0)

	logger().Debug("facets reduced", "live", fr.LiveCount(),
		"minSize", r.minSize, "maxCount", r.maxCount)
	return nil
}

// undersized returns the ids of live facets below the size threshold,
// sorted by the configured removal order with ascending id as the final
// tie-break for determinism.
func (r *facetReducer) undersized(fr *FacetResult) []int {
	var ids []int
	for _, f := range fr.Facets {
		if f.Alive() && f.PointCount < r.minSize {
			ids = append(ids, f.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := fr.Facet(ids[i]), fr.Facet(ids[j])
		if a.PointCount != b.PointCount {
			if r.order == SmallToLarge {
				return a.PointCount < b.PointCount
			}
			return a.PointCount > b.PointCount
		}
		return a.ID < b.ID
	})
	return ids
}

// enforceFacetCap removes the smallest live facets until the live count
// is within the configured maximum.
func (r *facetReducer) enforceFacetCap(ctx context.Context, fr *FacetResult) error {
	if r.maxCount <= 0 {
		return nil
	}
	for fr.LiveCount() > r.maxCount {
		if err := checkCancel(ctx); err != nil {
			return err
		}

		var smallest *Facet
		for _, f := range fr.Facets {
			if !f.Alive() {
				continue
			}
			if smallest == nil || f.PointCount < smallest.PointCount {
				smallest = f
			}
		}
		before := fr.LiveCount()
		r.removeFacet(fr, smallest)
		if fr.LiveCount() == before {
			// The remaining facet has no live neighbor (it spans the
			// whole image); the cap cannot be met.
			break
		}
	}
	return nil
}

// removeFacet reassigns every pixel of f to a neighboring facet and
// tombstones f. A facet with no live neighbor is left untouched.
func (r *facetReducer) removeFacet(fr *FacetResult, f *Facet) {
	var neighbours []int
	for _, id := range fr.Neighbours(f.ID) {
		if fr.Facet(id).Alive() {
			neighbours = append(neighbours, id)
		}
	}
	if len(neighbours) == 0 {
		return
	}

	// Dirty the whole affected neighborhood (the neighbors and their
	// neighbors) before border data goes stale.
	dirty := make(map[int]bool)
	for _, id := range neighbours {
		dirty[id] = true
		for _, nn := range fr.Neighbours(id) {
			dirty[nn] = true
		}
	}

	var pixels []image.Point
	fr.facetPixels(f, func(x, y int) {
		pixels = append(pixels, image.Point{X: x, Y: y})
	})
	for _, p := range pixels {
		target := fr.Facet(r.bestNeighbourFor(fr, f, p, neighbours))
		fr.set(p.X, p.Y, target.ID)
		target.PointCount++
		target.BBox.expand(p.X, p.Y)
		f.PointCount--
	}

	f.PointCount = 0
	f.BorderPoints = nil
	f.neighbours = nil
	f.neighboursDirty = true

	for _, id := range neighbours {
		rebuildFacet(fr, fr.Facet(id))
	}
	for id := range dirty {
		fr.markNeighboursDirty(id)
	}

	r.mergeAdjacentSameColor(fr, neighbours)
}

// bestNeighbourFor picks the replacement facet for one pixel of a
// removed facet: minimum Manhattan distance to the candidate's recorded
// border pixels, tie-broken by minimum color distance between the
// removed facet's color and the candidate's, tie-broken by lowest id
// (candidates arrive in ascending id order, so strict comparisons keep
// the lowest).
func (r *facetReducer) bestNeighbourFor(fr *FacetResult, f *Facet, p image.Point, candidates []int) int {
	removedColor := fr.Palette[f.ColorIndex]
	best := -1
	bestDist := math.MaxInt
	bestColor := math.MaxFloat64

	for _, id := range candidates {
		n := fr.Facet(id)
		if !n.Alive() {
			continue
		}
		d := minManhattan(p, n.BorderPoints)
		if d > bestDist {
			continue
		}
		cd := removedColor.DistanceIn(r.space, fr.Palette[n.ColorIndex])
		if d < bestDist || cd < bestColor {
			best = id
			bestDist = d
			bestColor = cd
		}
	}
	return best
}

// minManhattan returns the minimum Manhattan distance from p to any of
// the given points.
func minManhattan(p image.Point, points []image.Point) int {
	best := math.MaxInt
	for _, q := range points {
		d := abs(p.X-q.X) + abs(p.Y-q.Y)
		if d < best {
			best = d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// mergeAdjacentSameColor merges pairs of live facets that share a color
// index and became adjacent through pixel reassignment. The smaller
// facet is relabeled into the larger (lower id wins a size tie), so one
// color region never ends up split across two adjacent facet ids.
func (r *facetReducer) mergeAdjacentSameColor(fr *FacetResult, ids []int) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := fr.Facet(ids[i]), fr.Facet(ids[j])
			if !a.Alive() || !b.Alive() || a.ColorIndex != b.ColorIndex {
				continue
			}
			if !containsInt(fr.Neighbours(a.ID), b.ID) {
				continue
			}

			dst, src := a, b
			if src.PointCount > dst.PointCount {
				dst, src = src, dst
			}

			for _, n := range fr.Neighbours(src.ID) {
				fr.markNeighboursDirty(n)
			}
			fr.facetPixels(src, func(x, y int) {
				fr.set(x, y, dst.ID)
			})
			dst.PointCount += src.PointCount
			dst.BBox.union(src.BBox)

			src.PointCount = 0
			src.BorderPoints = nil
			src.neighbours = nil
			src.neighboursDirty = true

			rebuildFacet(fr, dst)
			for _, n := range fr.Neighbours(dst.ID) {
				fr.markNeighboursDirty(n)
			}
		}
	}
}

// repairDeadReferences is the reducer's sanity check: no pixel may end
// up referencing a deleted facet id. Violations are repaired by direct
// reassignment to the nearest live facet (breadth-first over the grid)
// and logged, since they indicate a bookkeeping bug upstream.
func (r *facetReducer) repairDeadReferences(fr *FacetResult) {
	repaired := map[int]bool{}
	for y := 0; y < fr.Height; y++ {
		for x := 0; x < fr.Width; x++ {
			id := fr.At(x, y)
			if fr.Facet(id).Alive() {
				continue
			}
			live := fr.nearestLiveFacet(x, y)
			if live < 0 {
				continue
			}
			logger().Warn("repairing dead facet reference",
				"x", x, "y", y, "dead", id, "reassigned", live)
			target := fr.Facet(live)
			fr.set(x, y, live)
			target.PointCount++
			target.BBox.expand(x, y)
			repaired[live] = true
		}
	}
	for id := range repaired {
		rebuildFacet(fr, fr.Facet(id))
		for _, n := range fr.Neighbours(id) {
			fr.markNeighboursDirty(n)
		}
	}
}

// nearestLiveFacet finds the live facet id closest to (x, y) by
// breadth-first search over the grid. Returns -1 when no live facet
// exists at all.
func (fr *FacetResult) nearestLiveFacet(x, y int) int {
	visited := make(map[image.Point]bool)
	queue := []image.Point{{X: x, Y: y}}
	visited[queue[0]] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if id := fr.At(p.X, p.Y); fr.Facet(id).Alive() {
			return id
		}
		for _, d := range neighbourOffsets {
			n := image.Point{X: p.X + d.X, Y: p.Y + d.Y}
			if !fr.inBounds(n.X, n.Y) || visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return -1
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
