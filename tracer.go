package img2pbn

import (
	"context"
	"image"
	"sort"
)

// Orientation identifies one of the four walls of a pixel. Boundary
// tracing works at wall granularity: a PathPoint is a pixel plus the
// wall of that pixel the boundary follows.
type Orientation uint8

const (
	OrientLeft Orientation = iota
	OrientTop
	OrientRight
	OrientBottom
)

// String returns the wall name.
func (o Orientation) String() string {
	switch o {
	case OrientLeft:
		return "left"
	case OrientTop:
		return "top"
	case OrientRight:
		return "right"
	case OrientBottom:
		return "bottom"
	}
	return "invalid"
}

// cw returns the orientation rotated 90 degrees clockwise.
func (o Orientation) cw() Orientation { return (o + 1) % 4 }

// ccw returns the orientation rotated 90 degrees counter-clockwise.
func (o Orientation) ccw() Orientation { return (o + 3) % 4 }

// orientNormal points outward across each wall; orientDir is the travel
// direction along each wall that keeps the facet interior on the right.
// The four orientations share one transition rule through these two
// tables instead of four duplicated handlers.
var (
	orientNormal = [4]image.Point{{X: -1}, {Y: -1}, {X: 1}, {Y: 1}}
	orientDir    = [4]image.Point{{Y: -1}, {X: 1}, {Y: 1}, {X: -1}}
)

// PathPoint is a coordinate plus the wall orientation the boundary
// follows there. Two PathPoints with the same coordinate but different
// orientations are distinct. Traced points carry integer pixel
// coordinates; the segmenter re-expresses them in wall coordinates and
// smoothing moves them fractionally, so the fields are float64.
type PathPoint struct {
	X, Y        float64
	Orientation Orientation
}

// WallX returns the x coordinate of the wall midpoint: the pixel center
// shifted half a unit toward the wall. Two facets on either side of one
// physical wall see the same wall coordinates.
func (p PathPoint) WallX() float64 {
	return p.X + 0.5*float64(orientNormal[p.Orientation].X)
}

// WallY returns the y coordinate of the wall midpoint.
func (p PathPoint) WallY() float64 {
	return p.Y + 0.5*float64(orientNormal[p.Orientation].Y)
}

// wallState is the border tracer's state: a pixel and the wall being
// followed.
type wallState struct {
	x, y int
	o    Orientation
}

// traceBorders walks every live facet's pixel boundary and attaches the
// resulting closed loops: the outer loop first, then one reverse-
// oriented loop per interior hole.
func traceBorders(ctx context.Context, fr *FacetResult, progress func(float64)) error {
	live := fr.LiveFacets()
	for i, id := range live {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		f := fr.Facet(id)
		loops, err := traceFacet(fr, f)
		if err != nil {
			return err
		}
		f.BorderLoops = loops
		if progress != nil {
			progress(float64(i+1) / float64(len(live)))
		}
	}
	return nil
}

// traceFacet extracts all closed boundary loops of one facet. The outer
// loop starts at the topmost-then-leftmost border pixel with the Left
// wall; loops for holes start from any boundary wall not consumed by a
// previous loop.
func traceFacet(fr *FacetResult, f *Facet) ([][]PathPoint, error) {
	// Deterministic scan order for loop discovery.
	border := append([]image.Point(nil), f.BorderPoints...)
	sort.Slice(border, func(i, j int) bool {
		if border[i].Y != border[j].Y {
			return border[i].Y < border[j].Y
		}
		return border[i].X < border[j].X
	})

	visited := make(map[wallState]bool)
	var loops [][]PathPoint
	for _, p := range border {
		for o := OrientLeft; o <= OrientBottom; o++ {
			s := wallState{x: p.X, y: p.Y, o: o}
			if visited[s] || !isBoundaryWall(fr, f.ID, s) {
				continue
			}
			loop, err := walkLoop(fr, f, s, visited)
			if err != nil {
				return nil, err
			}
			loops = append(loops, collapseEdgeRuns(fr, f.ID, loop))
		}
	}
	return loops, nil
}

// isBoundaryWall reports whether the pixel across the given wall lies
// outside the facet (including off-grid).
func isBoundaryWall(fr *FacetResult, id int, s wallState) bool {
	n := orientNormal[s.o]
	nx, ny := s.x+n.X, s.y+n.Y
	return !fr.inBounds(nx, ny) || fr.At(nx, ny) != id
}

// nextWallState advances the wall-following machine by one step. With
// travel direction d and outward normal n for the current wall, the
// up-to-two cells ahead decide the move:
//
//   - the cell ahead is outside the facet: turn clockwise in place;
//   - the cell diagonally ahead (across the wall) is inside: step onto
//     it and turn counter-clockwise;
//   - otherwise: step straight ahead on the same wall.
//
// A diagonal neighbor alone never implies connectivity: when the cell
// ahead is outside, the machine turns in place even if the diagonal
// cell belongs to the facet.
func nextWallState(fr *FacetResult, id int, s wallState) wallState {
	d := orientDir[s.o]
	n := orientNormal[s.o]

	ax, ay := s.x+d.X, s.y+d.Y // ahead
	if !fr.inBounds(ax, ay) || fr.At(ax, ay) != id {
		return wallState{x: s.x, y: s.y, o: s.o.cw()}
	}
	dx, dy := ax+n.X, ay+n.Y // diagonally ahead, across the wall
	if fr.inBounds(dx, dy) && fr.At(dx, dy) == id {
		return wallState{x: dx, y: dy, o: s.o.ccw()}
	}
	return wallState{x: ax, y: ay, o: s.o}
}

// walkLoop follows the boundary from start until the state machine
// returns to its starting value. The closure condition is exact: start
// state equals end state. A walk exceeding four steps per border pixel
// indicates corrupt adjacency and is a fatal consistency error.
func walkLoop(fr *FacetResult, f *Facet, start wallState, visited map[wallState]bool) ([]PathPoint, error) {
	maxSteps := 4*len(f.BorderPoints) + 4
	var loop []PathPoint

	s := start
	for steps := 0; ; steps++ {
		if steps > maxSteps {
			return nil, consistencyErrorf(f.ID, start.x, start.y,
				"border trace did not close after %d steps", maxSteps)
		}
		visited[s] = true
		loop = append(loop, PathPoint{X: float64(s.x), Y: float64(s.y), Orientation: s.o})
		s = nextWallState(fr, f.ID, s)
		if s == start {
			break
		}
	}
	return loop, nil
}

// acrossWall returns the facet id on the far side of a path point's
// wall, or EdgeNeighbour when the wall lies on the image boundary.
func acrossWall(fr *FacetResult, p PathPoint) int {
	n := orientNormal[p.Orientation]
	nx, ny := int(p.X)+n.X, int(p.Y)+n.Y
	if !fr.inBounds(nx, ny) {
		return EdgeNeighbour
	}
	return fr.At(nx, ny)
}

// collapseEdgeRuns drops redundant points from straight wall runs along
// the image edge, keeping one PathPoint per run. A full-bleed
// rectangular facet therefore collapses to one point per wall. Interior
// runs keep every wall point so that shared segments stay dense and
// exactly reversible between their two owners.
func collapseEdgeRuns(fr *FacetResult, id int, loop []PathPoint) []PathPoint {
	n := len(loop)
	if n < 2 {
		return loop
	}

	sameEdgeRun := func(a, b PathPoint) bool {
		return a.Orientation == b.Orientation &&
			acrossWall(fr, a) == EdgeNeighbour &&
			acrossWall(fr, b) == EdgeNeighbour
	}

	// Rotate so index 0 starts a run; a closed loop always has at least
	// four orientation changes, so a run boundary exists.
	startIdx := 0
	for i := 0; i < n; i++ {
		prev := loop[(i+n-1)%n]
		if !sameEdgeRun(prev, loop[i]) {
			startIdx = i
			break
		}
	}

	out := make([]PathPoint, 0, n)
	for i := 0; i < n; i++ {
		p := loop[(startIdx+i)%n]
		if len(out) > 0 && sameEdgeRun(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
