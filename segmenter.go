package img2pbn

import (
	"context"
)

// EdgeNeighbour is the sentinel neighbor id for border segments that run
// along the image boundary rather than between two facets.
const EdgeNeighbour = -1

// BorderSegment is an ordered run of boundary points separating a facet
// from exactly one neighbor (or from the image edge). Points are wall
// coordinates, smoothed; an interior segment's reversed point sequence
// appears verbatim in the neighbor's segment list, so the two facets
// always share identical geometry.
type BorderSegment struct {
	Points    []PathPoint
	Neighbour int
}

// rawSegment is a segment before smoothing and twin pairing.
type rawSegment struct {
	points    []PathPoint
	neighbour int
	closed    bool
	smoothed  []PathPoint
	done      bool
}

// borderSegmenter splits each facet's loops into per-neighbor segments,
// smooths every physical boundary exactly once, and publishes the shared
// result to both owning facets.
type borderSegmenter struct {
	rounds   int
	progress func(float64)
}

// segmentBorders runs the segmentation stage over all live facets.
func segmentBorders(ctx context.Context, fr *FacetResult, rounds int, progress func(float64)) error {
	s := &borderSegmenter{rounds: rounds, progress: progress}
	return s.run(ctx, fr)
}

func (s *borderSegmenter) run(ctx context.Context, fr *FacetResult) error {
	live := fr.LiveFacets()

	// Pass 1: cut every loop into raw segments.
	raw := make(map[int][][]*rawSegment, len(live))
	for _, id := range live {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		f := fr.Facet(id)
		perLoop := make([][]*rawSegment, len(f.BorderLoops))
		for li, loop := range f.BorderLoops {
			perLoop[li] = cutLoop(fr, loop)
		}
		raw[id] = perLoop
	}

	// Pass 2: smooth each physical boundary once. Processing facets in
	// ascending id order means an interior segment is smoothed by its
	// lower-id owner and the reversed result published to the twin.
	for i, id := range live {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		for _, segs := range raw[id] {
			for _, seg := range segs {
				if seg.done {
					continue
				}
				if seg.neighbour == EdgeNeighbour {
					seg.smoothed = smoothSegment(seg.points, s.rounds)
					seg.done = true
					continue
				}
				twin := findTwin(raw[seg.neighbour], id, seg)
				if twin == nil {
					p := seg.points[0]
					return consistencyErrorf(id, int(p.X), int(p.Y),
						"no reversed twin segment in facet %d", seg.neighbour)
				}
				seg.smoothed = smoothSegment(seg.points, s.rounds)
				twin.smoothed = reversedCopy(seg.smoothed, twin)
				seg.done = true
				twin.done = true
			}
		}
		if s.progress != nil {
			s.progress(float64(i+1) / float64(len(live)))
		}
	}

	// Pass 3: attach. Kept separate so cancellation mid-stage never
	// leaves a facet with half its segments published.
	for _, id := range live {
		f := fr.Facet(id)
		f.BorderSegments = make([][]*BorderSegment, len(raw[id]))
		for li, segs := range raw[id] {
			out := make([]*BorderSegment, len(segs))
			for si, seg := range segs {
				out[si] = &BorderSegment{Points: seg.smoothed, Neighbour: seg.neighbour}
			}
			f.BorderSegments[li] = out
		}
	}
	return nil
}

// cutLoop splits one traced loop into raw segments, cutting wherever the
// facet across the wall changes. A loop facing a single neighbor for its
// whole length yields one closed segment, rotated to a canonical anchor
// (the minimal wall coordinate) so both owners cut identically.
func cutLoop(fr *FacetResult, loop []PathPoint) []*rawSegment {
	n := len(loop)
	across := make([]int, n)
	for i, p := range loop {
		across[i] = acrossWall(fr, p)
	}

	start := -1
	for i := 0; i < n; i++ {
		if across[i] != across[(i+n-1)%n] {
			start = i
			break
		}
	}

	if start < 0 {
		// Single-neighbor loop: one closed segment.
		pts := make([]PathPoint, n)
		for i, p := range loop {
			pts[i] = wallPoint(p)
		}
		rotateToAnchor(pts)
		return []*rawSegment{{points: pts, neighbour: across[0], closed: true}}
	}

	var segs []*rawSegment
	var cur *rawSegment
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if cur == nil || across[idx] != cur.neighbour {
			cur = &rawSegment{neighbour: across[idx]}
			segs = append(segs, cur)
		}
		cur.points = append(cur.points, wallPoint(loop[idx]))
	}
	return segs
}

// wallPoint re-expresses a traced path point in wall coordinates: the
// pixel center shifted half a unit toward the wall. The two owners of a
// physical wall produce the same wall coordinates from their respective
// pixels, which is what makes shared segments match exactly.
func wallPoint(p PathPoint) PathPoint {
	return PathPoint{X: p.WallX(), Y: p.WallY(), Orientation: p.Orientation}
}

// rotateToAnchor rotates a closed segment in place so that its minimal
// (x, y) point comes first. Wall coordinates are unique within a loop,
// so the anchor is unambiguous.
func rotateToAnchor(pts []PathPoint) {
	anchor := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].X < pts[anchor].X ||
			(pts[i].X == pts[anchor].X && pts[i].Y < pts[anchor].Y) {
			anchor = i
		}
	}
	if anchor == 0 {
		return
	}
	rotated := make([]PathPoint, 0, len(pts))
	rotated = append(rotated, pts[anchor:]...)
	rotated = append(rotated, pts[:anchor]...)
	copy(pts, rotated)
}

// findTwin locates the unmatched raw segment of the neighbor facet whose
// reversed geometry equals seg. Matching is geometric: several segments
// may separate the same facet pair, so neighbor id alone is not enough.
func findTwin(perLoop [][]*rawSegment, facetID int, seg *rawSegment) *rawSegment {
	for _, segs := range perLoop {
		for _, cand := range segs {
			if cand.done || cand.neighbour != facetID || cand.closed != seg.closed {
				continue
			}
			if reversedEqual(seg.points, cand.points, seg.closed) {
				return cand
			}
		}
	}
	return nil
}

// reversedEqual reports whether b is the exact coordinate reversal of a.
// Closed segments share a canonical anchor at index 0, so their reversal
// fixes the anchor and reverses the remainder.
func reversedEqual(a, b []PathPoint, closed bool) bool {
	if len(a) != len(b) {
		return false
	}
	n := len(a)
	if closed {
		if a[0].X != b[0].X || a[0].Y != b[0].Y {
			return false
		}
		for i := 1; i < n; i++ {
			if a[i].X != b[n-i].X || a[i].Y != b[n-i].Y {
				return false
			}
		}
		return true
	}
	for i := 0; i < n; i++ {
		if a[i].X != b[n-1-i].X || a[i].Y != b[n-1-i].Y {
			return false
		}
	}
	return true
}

// reversedCopy builds the twin's smoothed points from the already
// smoothed source: identical coordinates in reverse order, with the
// twin's own wall orientations preserved.
func reversedCopy(src []PathPoint, twin *rawSegment) []PathPoint {
	n := len(src)
	out := make([]PathPoint, n)
	if twin.closed {
		out[0] = PathPoint{X: src[0].X, Y: src[0].Y, Orientation: twin.points[0].Orientation}
		for i := 1; i < n; i++ {
			out[i] = PathPoint{X: src[n-i].X, Y: src[n-i].Y, Orientation: twin.points[i].Orientation}
		}
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = PathPoint{X: src[n-1-i].X, Y: src[n-1-i].Y, Orientation: twin.points[i].Orientation}
	}
	return out
}

// smoothSegment applies the configured number of Haar-wavelet averaging
// rounds. Each round replaces every interior point with the average of
// itself and the midpoints toward its two neighbors,
// p'[i] = (p[i-1] + 4*p[i] + p[i+1]) / 6, while the segment endpoints
// stay pinned so junctions shared by three or more facets never open up.
// Zero rounds returns an unmodified copy.
func smoothSegment(pts []PathPoint, rounds int) []PathPoint {
	out := append([]PathPoint(nil), pts...)
	if len(out) < 3 {
		return out
	}
	buf := make([]PathPoint, len(out))
	for r := 0; r < rounds; r++ {
		copy(buf, out)
		for i := 1; i < len(out)-1; i++ {
			out[i].X = (buf[i-1].X + 4*buf[i].X + buf[i+1].X) / 6
			out[i].Y = (buf[i-1].Y + 4*buf[i].Y + buf[i+1].Y) / 6
		}
	}
	return out
}
