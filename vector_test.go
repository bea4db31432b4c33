package img2pbn

import (
	"math"
	"testing"
)

func TestCentroidAccumulator(t *testing.T) {
	acc := newCentroidAccumulator(3)
	if _, ok := acc.mean(); ok {
		t.Error("empty accumulator reported a mean")
	}

	acc.add(newVector(tBlack, SpaceRGB, 3))
	acc.add(newVector(tWhite, SpaceRGB, 1))

	pos, ok := acc.mean()
	if !ok {
		t.Fatal("accumulator with vectors reported no mean")
	}
	// Weighted mean of 3 black and 1 white pixels: 0.25 per channel.
	for i, v := range pos {
		if math.Abs(v-0.25) > 1e-9 {
			t.Errorf("mean[%d] = %g, want 0.25", i, v)
		}
	}
}

func TestVectorDistance(t *testing.T) {
	v := newVector(tBlack, SpaceRGB, 1)
	if d := v.distanceTo([]float64{0, 0, 0}); d != 0 {
		t.Errorf("distance to own position = %g, want 0", d)
	}
	if d := v.distanceTo([]float64{1, 0, 0}); math.Abs(d-1) > 1e-12 {
		t.Errorf("unit distance = %g, want 1", d)
	}
}
