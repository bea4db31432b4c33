package img2pbn

import "gonum.org/v1/gonum/floats"

// vector is a weighted point in a 3-D color space. Each distinct color
// value in the input becomes one vector whose weight is that color's
// pixel frequency, so K-means never repeats distance computations over
// duplicate colors.
type vector struct {
	coords []float64
	weight float64
	color  RGB
}

// newVector builds the weighted color-space point for a color.
func newVector(c RGB, space ColorSpace, weight float64) vector {
	return vector{
		coords: c.Coords(space),
		weight: weight,
		color:  c,
	}
}

// distanceTo returns the Euclidean distance from the vector to a
// centroid position.
func (v vector) distanceTo(centroid []float64) float64 {
	return floats.Distance(v.coords, centroid, 2)
}

// centroidAccumulator incrementally computes the weight-averaged
// position of the vectors assigned to one cluster.
type centroidAccumulator struct {
	sum    []float64
	weight float64
}

func newCentroidAccumulator(dims int) *centroidAccumulator {
	return &centroidAccumulator{sum: make([]float64, dims)}
}

// add folds one weighted vector into the accumulator.
func (a *centroidAccumulator) add(v vector) {
	floats.AddScaled(a.sum, v.weight, v.coords)
	a.weight += v.weight
}

// mean returns the weighted mean position, or ok=false when the cluster
// received no vectors.
func (a *centroidAccumulator) mean() (pos []float64, ok bool) {
	if a.weight == 0 {
		return nil, false
	}
	pos = make([]float64, len(a.sum))
	copy(pos, a.sum)
	floats.Scale(1.0/a.weight, pos)
	return pos, true
}
