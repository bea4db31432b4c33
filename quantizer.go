package img2pbn

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/wbrown/img2pbn/imageutil"
)

// QuantizeResult holds the output of the color quantization stage: the
// palette of representative colors and, for every pixel, the palette
// index it maps to. Indices is row-major with stride Width.
type QuantizeResult struct {
	Width, Height int
	Palette       []RGB
	Indices       []int
}

// quantizer maps every pixel of an image to one of K representative
// colors using weighted Lloyd's K-means over the distinct-color
// histogram. A fixed palette bypasses clustering entirely. The stage is
// a pure function of its input and seed.
type quantizer struct {
	k         int
	space     ColorSpace
	threshold float64
	seed      int64
	maxIter   int
	fixed     Palette
	progress  func(float64)
}

func (q *quantizer) report(fraction float64) {
	if q.progress != nil {
		q.progress(fraction)
	}
}

// run quantizes the image. The per-distinct-color assignment is built
// first; the per-pixel index grid is derived from it in a final pass.
func (q *quantizer) run(ctx context.Context, img *imageutil.RGBAImage) (*QuantizeResult, error) {
	width, height := img.Width(), img.Height()
	if width == 0 || height == 0 {
		return nil, validationErrorf("empty image (%dx%d)", width, height)
	}

	hist := newColorHistogram()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := img.GetRGB(x, y)
			hist.Add(RGB{R: p.R, G: p.G, B: p.B})
		}
	}

	var palette []RGB
	var assignment map[RGB]int
	var err error
	if len(q.fixed) > 0 {
		palette, assignment = q.assignFixed(hist)
	} else {
		palette, assignment, err = q.cluster(ctx, hist)
		if err != nil {
			return nil, err
		}
	}

	indices := make([]int, width*height)
	for y := 0; y < height; y++ {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			p := img.GetRGB(x, y)
			indices[y*width+x] = assignment[RGB{R: p.R, G: p.G, B: p.B}]
		}
	}
	q.report(1.0)

	return &QuantizeResult{
		Width:   width,
		Height:  height,
		Palette: palette,
		Indices: indices,
	}, nil
}

// assignFixed maps every distinct color to its nearest entry of the
// fixed palette. The KD-tree accelerates the RGB metric; HSL and LAB
// use a linear scan because axis pruning does not hold for them.
func (q *quantizer) assignFixed(hist *colorHistogram) ([]RGB, map[RGB]int) {
	palette := make([]RGB, len(q.fixed))
	copy(palette, q.fixed)

	assignment := make(map[RGB]int, hist.Len())
	if q.space == SpaceRGB {
		tree := buildPaletteTree(q.fixed)
		for _, c := range hist.Keys() {
			idx, _ := tree.Nearest(c)
			assignment[c] = idx
		}
		return palette, assignment
	}

	for _, c := range hist.Keys() {
		best, bestDist := 0, c.DistanceIn(q.space, palette[0])
		for i := 1; i < len(palette); i++ {
			if d := c.DistanceIn(q.space, palette[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		assignment[c] = best
	}
	return palette, assignment
}

// cluster runs weighted Lloyd's K-means over the distinct colors and
// returns the centroid palette plus the distinct-color assignment.
func (q *quantizer) cluster(ctx context.Context, hist *colorHistogram) ([]RGB, map[RGB]int, error) {
	vectors := make([]vector, 0, hist.Len())
	hist.Iterate(func(c RGB, count int) {
		vectors = append(vectors, newVector(c, q.space, float64(count)))
	})

	// K at or above the distinct-color count degenerates to exact-color
	// clusters with no iteration.
	if q.k >= len(vectors) {
		palette := make([]RGB, len(vectors))
		assignment := make(map[RGB]int, len(vectors))
		for i, v := range vectors {
			palette[i] = v.color
			assignment[v.color] = i
		}
		q.report(1.0)
		return palette, assignment, nil
	}

	// Deterministic seeded initialization: sample K distinct colors.
	rng := rand.New(rand.NewSource(q.seed))
	perm := rng.Perm(len(vectors))
	centroids := make([][]float64, q.k)
	for i := 0; i < q.k; i++ {
		src := vectors[perm[i]].coords
		centroids[i] = make([]float64, len(src))
		copy(centroids[i], src)
	}

	assignments := make([]int, len(vectors))
	for iter := 0; iter < q.maxIter; iter++ {
		if err := checkCancel(ctx); err != nil {
			return nil, nil, err
		}

		for i, v := range vectors {
			best, bestDist := 0, v.distanceTo(centroids[0])
			for c := 1; c < q.k; c++ {
				if d := v.distanceTo(centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			assignments[i] = best
		}

		accs := make([]*centroidAccumulator, q.k)
		for c := range accs {
			accs[c] = newCentroidAccumulator(len(centroids[c]))
		}
		for i, v := range vectors {
			accs[assignments[i]].add(v)
		}

		movement := 0.0
		for c := range centroids {
			pos, ok := accs[c].mean()
			if !ok {
				// Empty cluster: keep the previous centroid so the
				// result stays deterministic.
				continue
			}
			if d := floats.Distance(centroids[c], pos, 2); d > movement {
				movement = d
			}
			centroids[c] = pos
		}

		q.report(float64(iter+1) / float64(q.maxIter))
		if movement < q.threshold {
			logger().Debug("kmeans converged",
				"iterations", iter+1, "movement", movement)
			break
		}
	}

	palette := make([]RGB, q.k)
	for c := range centroids {
		palette[c] = rgbFromCoords(q.space, centroids[c])
	}
	assignment := make(map[RGB]int, len(vectors))
	for i, v := range vectors {
		assignment[v.color] = assignments[i]
	}
	return palette, assignment, nil
}
