package img2pbn

import (
	"context"
	"testing"
)

func TestOrientationRotation(t *testing.T) {
	cases := []struct {
		o       Orientation
		cw, ccw Orientation
	}{
		{OrientLeft, OrientTop, OrientBottom},
		{OrientTop, OrientRight, OrientLeft},
		{OrientRight, OrientBottom, OrientTop},
		{OrientBottom, OrientLeft, OrientRight},
	}
	for _, c := range cases {
		if got := c.o.cw(); got != c.cw {
			t.Errorf("%v.cw() = %v, want %v", c.o, got, c.cw)
		}
		if got := c.o.ccw(); got != c.ccw {
			t.Errorf("%v.ccw() = %v, want %v", c.o, got, c.ccw)
		}
	}
}

func TestWallCoordinates(t *testing.T) {
	cases := []struct {
		p     PathPoint
		x, y  float64
	}{
		{PathPoint{X: 1, Y: 1, Orientation: OrientLeft}, 0.5, 1},
		{PathPoint{X: 1, Y: 1, Orientation: OrientTop}, 1, 0.5},
		{PathPoint{X: 1, Y: 1, Orientation: OrientRight}, 1.5, 1},
		{PathPoint{X: 1, Y: 1, Orientation: OrientBottom}, 1, 1.5},
	}
	for _, c := range cases {
		if c.p.WallX() != c.x || c.p.WallY() != c.y {
			t.Errorf("%v wall = (%g, %g), want (%g, %g)",
				c.p, c.p.WallX(), c.p.WallY(), c.x, c.y)
		}
	}

	// Two pixels on either side of one physical wall must agree on its
	// coordinates.
	right := PathPoint{X: 0, Y: 1, Orientation: OrientRight}
	left := PathPoint{X: 1, Y: 1, Orientation: OrientLeft}
	if right.WallX() != left.WallX() || right.WallY() != left.WallY() {
		t.Errorf("shared wall disagrees: (%g, %g) vs (%g, %g)",
			right.WallX(), right.WallY(), left.WallX(), left.WallY())
	}
}

func TestTraceSinglePixelFacet(t *testing.T) {
	fr := checkerboard2x2(t)
	if err := traceBorders(context.Background(), fr, nil); err != nil {
		t.Fatalf("traceBorders failed: %v", err)
	}

	f := fr.Facet(fr.At(0, 0))
	if len(f.BorderLoops) != 1 {
		t.Fatalf("got %d loops, want 1", len(f.BorderLoops))
	}
	loop := f.BorderLoops[0]
	if len(loop) != 4 {
		t.Fatalf("got %d path points, want 4", len(loop))
	}
	// Four points at the same pixel coordinate, one per wall, walked
	// clockwise from the left wall.
	wantOrient := []Orientation{OrientLeft, OrientTop, OrientRight, OrientBottom}
	for i, p := range loop {
		if p.X != 0 || p.Y != 0 {
			t.Errorf("point %d at (%g, %g), want (0, 0)", i, p.X, p.Y)
		}
		if p.Orientation != wantOrient[i] {
			t.Errorf("point %d orientation = %v, want %v", i, p.Orientation, wantOrient[i])
		}
	}
}

func TestTraceSolidFacetCollapses(t *testing.T) {
	fr := resultFrom(t, 3, 3, []int{
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
	}, []RGB{tRed})
	if err := traceBorders(context.Background(), fr, nil); err != nil {
		t.Fatalf("traceBorders failed: %v", err)
	}

	f := fr.Facet(fr.At(0, 0))
	if len(f.BorderLoops) != 1 {
		t.Fatalf("got %d loops, want 1", len(f.BorderLoops))
	}
	loop := f.BorderLoops[0]
	// Each straight run along the image edge collapses to one point, so
	// the square traces as one point per wall.
	if len(loop) != 4 {
		t.Fatalf("got %d path points, want 4: %v", len(loop), loop)
	}
	seen := make(map[Orientation]bool)
	for _, p := range loop {
		if seen[p.Orientation] {
			t.Errorf("orientation %v appears twice", p.Orientation)
		}
		seen[p.Orientation] = true
	}
}

func TestTraceDonutLoops(t *testing.T) {
	fr := donut3x3(t)
	if err := traceBorders(context.Background(), fr, nil); err != nil {
		t.Fatalf("traceBorders failed: %v", err)
	}

	ring := facetByColor(t, fr, 0)
	hole := facetByColor(t, fr, 1)

	if len(ring.BorderLoops) != 2 {
		t.Fatalf("ring has %d loops, want 2 (outer plus hole)", len(ring.BorderLoops))
	}
	if len(hole.BorderLoops) != 1 {
		t.Fatalf("hole facet has %d loops, want 1", len(hole.BorderLoops))
	}
	// The hole loop consists of the four ring walls facing the center
	// pixel.
	inner := ring.BorderLoops[1]
	if len(inner) != 4 {
		t.Fatalf("inner loop has %d points, want 4", len(inner))
	}
	for _, p := range inner {
		if got := acrossWall(fr, p); got != hole.ID {
			t.Errorf("inner loop point %v faces facet %d, want %d", p, got, hole.ID)
		}
	}
}

func TestTraceLoopCloses(t *testing.T) {
	// An interior loop keeps every wall point, so stepping the transition
	// function from each point must land exactly on the next, and from
	// the last point back on the first.
	fr := donut3x3(t)
	if err := traceBorders(context.Background(), fr, nil); err != nil {
		t.Fatalf("traceBorders failed: %v", err)
	}

	hole := facetByColor(t, fr, 1)
	loop := hole.BorderLoops[0]
	n := len(loop)
	for i, p := range loop {
		s := wallState{x: int(p.X), y: int(p.Y), o: p.Orientation}
		next := nextWallState(fr, hole.ID, s)
		q := loop[(i+1)%n]
		want := wallState{x: int(q.X), y: int(q.Y), o: q.Orientation}
		if next != want {
			t.Errorf("step from %v = %+v, want %+v", p, next, want)
		}
	}
}

func TestTraceTwoHoles(t *testing.T) {
	fr := resultFrom(t, 5, 3, []int{
		0, 0, 0, 0, 0,
		0, 1, 0, 2, 0,
		0, 0, 0, 0, 0,
	}, []RGB{tRed, tBlue, tGreen})
	if err := traceBorders(context.Background(), fr, nil); err != nil {
		t.Fatalf("traceBorders failed: %v", err)
	}

	ring := facetByColor(t, fr, 0)
	if len(ring.BorderLoops) != 3 {
		t.Fatalf("got %d loops, want 3 (outer plus two holes)", len(ring.BorderLoops))
	}
}

func TestTraceBordersCancelled(t *testing.T) {
	fr := checkerboard2x2(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := traceBorders(ctx, fr, nil); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
