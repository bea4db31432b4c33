package img2pbn

import (
	"context"
	"testing"
)

func TestParseRemovalOrder(t *testing.T) {
	cases := []struct {
		name    string
		want    RemovalOrder
		wantErr bool
	}{
		{"largeToSmall", LargeToSmall, false},
		{"SMALLTOLARGE", SmallToLarge, false},
		{"biggest", LargeToSmall, true},
	}
	for _, c := range cases {
		got, err := ParseRemovalOrder(c.name)
		if c.wantErr != (err != nil) {
			t.Errorf("ParseRemovalOrder(%q) error = %v, wantErr %v", c.name, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("ParseRemovalOrder(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestUndersizedOrdering(t *testing.T) {
	// Facet sizes by id: 0 -> 2 pixels, 1 -> 1 pixel, 2 -> 3 pixels.
	fr := resultFrom(t, 6, 1, []int{0, 0, 1, 2, 2, 2}, []RGB{tRed, tGreen, tBlue})

	large := &facetReducer{minSize: 10, order: LargeToSmall}
	if got := large.undersized(fr); !equalInts(got, []int{2, 0, 1}) {
		t.Errorf("LargeToSmall order = %v, want [2 0 1]", got)
	}
	small := &facetReducer{minSize: 10, order: SmallToLarge}
	if got := small.undersized(fr); !equalInts(got, []int{1, 0, 2}) {
		t.Errorf("SmallToLarge order = %v, want [1 0 2]", got)
	}
}

func TestReduceCheckerboard(t *testing.T) {
	fr := checkerboard2x2(t)
	r := &facetReducer{minSize: 2, order: LargeToSmall, space: SpaceRGB}
	if err := r.reduce(context.Background(), fr); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	// Every 1-pixel facet dissolves into the first one to grow; the rest
	// follow it, so a single facet covers the whole image.
	if got := fr.LiveCount(); got != 1 {
		t.Fatalf("LiveCount() = %d, want 1", got)
	}
	f := fr.Facet(fr.LiveFacets()[0])
	if f.PointCount != 4 {
		t.Errorf("PointCount = %d, want 4", f.PointCount)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReduceLeavesLargeFacetsAlone(t *testing.T) {
	fr := resultFrom(t, 4, 2, []int{
		0, 0, 1, 1,
		0, 0, 1, 1,
	}, []RGB{tRed, tBlue})
	r := &facetReducer{minSize: 3, order: LargeToSmall, space: SpaceRGB}
	if err := r.reduce(context.Background(), fr); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	if got := fr.LiveCount(); got != 2 {
		t.Errorf("LiveCount() = %d, want 2", got)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReduceNoNeighbourNoop(t *testing.T) {
	// A facet spanning the whole image has nowhere to dissolve into; the
	// threshold becomes a no-op rather than an error.
	fr := resultFrom(t, 3, 3, []int{
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
	}, []RGB{tRed})
	r := &facetReducer{minSize: 100, order: LargeToSmall, space: SpaceRGB}
	if err := r.reduce(context.Background(), fr); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	if got := fr.LiveCount(); got != 1 {
		t.Errorf("LiveCount() = %d, want 1", got)
	}
	if got := fr.Facet(fr.LiveFacets()[0]).PointCount; got != 9 {
		t.Errorf("PointCount = %d, want 9", got)
	}
}

func TestReduceFacetCap(t *testing.T) {
	fr := resultFrom(t, 4, 1, []int{0, 1, 0, 1}, []RGB{tRed, tBlue})
	r := &facetReducer{minSize: 0, order: LargeToSmall, maxCount: 2, space: SpaceRGB}
	if err := r.reduce(context.Background(), fr); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	if got := fr.LiveCount(); got > 2 {
		t.Errorf("LiveCount() = %d, want at most 2", got)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReduceMergesSameColorNeighbours(t *testing.T) {
	// Removing the blue pixel in the middle makes the two red facets
	// adjacent; they share a color index and must merge into one.
	fr := resultFrom(t, 5, 1, []int{0, 0, 1, 0, 0}, []RGB{tRed, tBlue})
	r := &facetReducer{minSize: 2, order: LargeToSmall, space: SpaceRGB}
	if err := r.reduce(context.Background(), fr); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	if got := fr.LiveCount(); got != 1 {
		t.Fatalf("LiveCount() = %d, want 1", got)
	}
	f := fr.Facet(fr.LiveFacets()[0])
	if f.PointCount != 5 {
		t.Errorf("PointCount = %d, want 5", f.PointCount)
	}
	if f.ColorIndex != 0 {
		t.Errorf("ColorIndex = %d, want 0", f.ColorIndex)
	}
	if err := fr.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestReduceTieBreaksByColorDistance(t *testing.T) {
	// The green pixel is equidistant from both neighbors; the teal facet
	// is far closer in color than the red one and must absorb it.
	teal := RGB{G: 230, B: 60}
	fr := resultFrom(t, 3, 1, []int{0, 1, 2}, []RGB{tRed, tGreen, teal})
	r := &facetReducer{minSize: 2, order: SmallToLarge, space: SpaceRGB}

	f := fr.Facet(fr.At(1, 0))
	r.removeFacet(fr, f)

	if got := fr.At(1, 0); got != 2 {
		t.Errorf("green pixel reassigned to facet %d, want 2 (teal)", got)
	}
}

func TestReduceCancelled(t *testing.T) {
	fr := checkerboard2x2(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &facetReducer{minSize: 2, order: LargeToSmall, space: SpaceRGB}
	if err := r.reduce(ctx, fr); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
