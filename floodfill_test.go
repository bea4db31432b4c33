package img2pbn

import "testing"

func TestBuildFacetsSolid(t *testing.T) {
	fr := resultFrom(t, 3, 3, []int{
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
	}, []RGB{tRed})

	if got := fr.LiveCount(); got != 1 {
		t.Fatalf("LiveCount() = %d, want 1", got)
	}
	f := fr.Facet(fr.At(0, 0))
	if f.PointCount != 9 {
		t.Errorf("PointCount = %d, want 9", f.PointCount)
	}
	// All pixels except the center touch the outside.
	if got := len(f.BorderPoints); got != 8 {
		t.Errorf("got %d border points, want 8", got)
	}
	want := BoundingBox{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}
	if f.BBox != want {
		t.Errorf("BBox = %+v, want %+v", f.BBox, want)
	}
	if n := fr.Neighbours(f.ID); len(n) != 0 {
		t.Errorf("solid facet has neighbours %v, want none", n)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestBuildFacetsCheckerboard(t *testing.T) {
	fr := checkerboard2x2(t)

	if got := fr.LiveCount(); got != 4 {
		t.Fatalf("LiveCount() = %d, want 4", got)
	}
	for _, id := range fr.LiveFacets() {
		f := fr.Facet(id)
		if f.PointCount != 1 {
			t.Errorf("facet %d PointCount = %d, want 1", id, f.PointCount)
		}
		if len(f.BorderPoints) != 1 {
			t.Errorf("facet %d has %d border points, want 1", id, len(f.BorderPoints))
		}
		// Diagonal pixels are not connected and not adjacent: each corner
		// facet sees exactly its two edge-sharing neighbors.
		if n := fr.Neighbours(id); len(n) != 2 {
			t.Errorf("facet %d neighbours = %v, want 2 entries", id, n)
		}
	}

	// Opposite corners must land in different facets despite sharing a
	// color index requirement being absent here; verify adjacency pairs.
	topLeft := fr.At(0, 0)
	n := fr.Neighbours(topLeft)
	wantA, wantB := fr.At(1, 0), fr.At(0, 1)
	if !containsInt(n, wantA) || !containsInt(n, wantB) || containsInt(n, fr.At(1, 1)) {
		t.Errorf("top-left neighbours = %v, want exactly {%d, %d}", n, wantA, wantB)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestBuildFacetsDiagonalNotConnected(t *testing.T) {
	// Two same-colored pixels touching only at a corner are separate
	// facets under 4-connectivity.
	fr := resultFrom(t, 2, 2, []int{
		0, 1,
		1, 0,
	}, []RGB{tRed, tBlue})

	if got := fr.LiveCount(); got != 4 {
		t.Errorf("LiveCount() = %d, want 4", got)
	}
	if fr.At(0, 0) == fr.At(1, 1) {
		t.Error("diagonal same-color pixels merged into one facet")
	}
}

func TestBuildFacetsDonut(t *testing.T) {
	fr := donut3x3(t)

	if got := fr.LiveCount(); got != 2 {
		t.Fatalf("LiveCount() = %d, want 2", got)
	}
	ring := facetByColor(t, fr, 0)
	hole := facetByColor(t, fr, 1)
	if ring.PointCount != 8 {
		t.Errorf("ring PointCount = %d, want 8", ring.PointCount)
	}
	if hole.PointCount != 1 {
		t.Errorf("hole PointCount = %d, want 1", hole.PointCount)
	}
	// Every ring pixel borders either the outside or the hole.
	if got := len(ring.BorderPoints); got != 8 {
		t.Errorf("ring has %d border points, want 8", got)
	}
	if n := fr.Neighbours(hole.ID); len(n) != 1 || n[0] != ring.ID {
		t.Errorf("hole neighbours = %v, want [%d]", n, ring.ID)
	}
}

func TestRebuildFacet(t *testing.T) {
	fr := resultFrom(t, 3, 1, []int{0, 0, 1}, []RGB{tRed, tBlue})
	a := fr.Facet(fr.At(0, 0))
	b := fr.Facet(fr.At(2, 0))

	// Hand the third pixel over and rebuild: counts, borders and boxes
	// must match the new grid.
	fr.set(2, 0, a.ID)
	a.PointCount++
	a.BBox.expand(2, 0)
	b.PointCount--
	rebuildFacet(fr, a)

	if a.PointCount != 3 {
		t.Errorf("PointCount = %d, want 3", a.PointCount)
	}
	want := BoundingBox{MinX: 0, MinY: 0, MaxX: 2, MaxY: 0}
	if a.BBox != want {
		t.Errorf("BBox = %+v, want %+v", a.BBox, want)
	}
	// Every pixel of the 3x1 facet touches the image edge.
	if len(a.BorderPoints) != 3 {
		t.Errorf("got %d border points, want 3", len(a.BorderPoints))
	}
}

func TestBoundingBox(t *testing.T) {
	b := emptyBoundingBox()
	b.expand(3, 4)
	if b.Width() != 1 || b.Height() != 1 {
		t.Errorf("single-pixel box is %dx%d, want 1x1", b.Width(), b.Height())
	}
	b.expand(1, 7)
	want := BoundingBox{MinX: 1, MinY: 4, MaxX: 3, MaxY: 7}
	if b != want {
		t.Errorf("box = %+v, want %+v", b, want)
	}

	o := emptyBoundingBox()
	o.expand(0, 0)
	o.union(b)
	if o.MinX != 0 || o.MaxX != 3 || o.MinY != 0 || o.MaxY != 7 {
		t.Errorf("union = %+v", o)
	}
}
