package img2pbn

import (
	"context"
	"fmt"
	"time"

	"github.com/wbrown/img2pbn/imageutil"
)

// Stage identifies a pipeline stage in progress reports.
type Stage int

const (
	StageQuantize Stage = iota
	StageRegions
	StageReduce
	StageTrace
	StageSegment
	StageLabel
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageQuantize:
		return "quantize"
	case StageRegions:
		return "regions"
	case StageReduce:
		return "reduce"
	case StageTrace:
		return "trace"
	case StageSegment:
		return "segment"
	case StageLabel:
		return "label"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ProgressFunc receives coarse progress reports: once per K-means
// iteration, once per scanned row during region building, once per
// facet in the later stages. fraction grows from 0 to 1 within a stage.
type ProgressFunc func(stage Stage, fraction float64)

// Options configures a pipeline run.
type Options struct {
	// ClusterCount is K, the number of representative colors. Ignored
	// when FixedPalette is set.
	ClusterCount int
	// ColorSpace selects the space for all color distances.
	ColorSpace ColorSpace
	// ConvergenceThreshold stops K-means when the maximum centroid
	// movement in one iteration falls below it. Coordinates are scaled
	// to roughly the unit interval in every space.
	ConvergenceThreshold float64
	// MaxKMeansIterations caps K-means when convergence is slow.
	MaxKMeansIterations int
	// RandomSeed makes centroid initialization reproducible: the same
	// seed on the same image yields identical output.
	RandomSeed int64
	// FixedPalette, when non-empty, bypasses clustering and assigns
	// every pixel to its nearest listed color.
	FixedPalette Palette

	// MinFacetSize is the minimum surviving facet size in pixels.
	// Facets below it are dissolved into their neighbors.
	MinFacetSize int
	// RemovalOrder controls the facet elimination order.
	RemovalOrder RemovalOrder
	// MaxFacetCount, when positive, keeps eliminating the smallest
	// facets until at most this many remain.
	MaxFacetCount int

	// SmoothingIterations is the number of Haar-wavelet averaging
	// rounds applied to every border segment. Zero disables smoothing.
	SmoothingIterations int

	// LabelPrecision bounds the pole-of-inaccessibility refinement, in
	// pixels.
	LabelPrecision float64

	// Progress, when non-nil, receives per-stage progress reports.
	Progress ProgressFunc
}

// DefaultOptions returns a configuration that produces a reasonable
// template for most photographs.
func DefaultOptions() Options {
	return Options{
		ClusterCount:         16,
		ColorSpace:           SpaceRGB,
		ConvergenceThreshold: 0.001,
		MaxKMeansIterations:  50,
		RandomSeed:           1,
		MinFacetSize:         20,
		RemovalOrder:         LargeToSmall,
		SmoothingIterations:  2,
		LabelPrecision:       0.5,
	}
}

// Validate rejects malformed options before any stage runs.
func (o *Options) Validate() error {
	if len(o.FixedPalette) == 0 && o.ClusterCount <= 0 {
		return validationErrorf("cluster count must be positive, got %d", o.ClusterCount)
	}
	if o.ColorSpace < SpaceRGB || o.ColorSpace > SpaceLAB {
		return validationErrorf("unknown color space %d", int(o.ColorSpace))
	}
	if o.ConvergenceThreshold < 0 {
		return validationErrorf("convergence threshold must not be negative, got %g", o.ConvergenceThreshold)
	}
	if o.MaxKMeansIterations <= 0 {
		return validationErrorf("k-means iteration cap must be positive, got %d", o.MaxKMeansIterations)
	}
	if o.MinFacetSize < 0 {
		return validationErrorf("minimum facet size must not be negative, got %d", o.MinFacetSize)
	}
	if o.MaxFacetCount < 0 {
		return validationErrorf("maximum facet count must not be negative, got %d", o.MaxFacetCount)
	}
	if o.SmoothingIterations < 0 {
		return validationErrorf("smoothing iterations must not be negative, got %d", o.SmoothingIterations)
	}
	if o.LabelPrecision <= 0 {
		return validationErrorf("label precision must be positive, got %g", o.LabelPrecision)
	}
	return nil
}

// stageProgress narrows the global callback to one stage.
func (o *Options) stageProgress(s Stage) func(float64) {
	if o.Progress == nil {
		return nil
	}
	return func(fraction float64) {
		o.Progress(s, fraction)
	}
}

// Process runs the full pipeline on a decoded image and returns the
// final FacetResult: the facet-id grid, the palette, and per facet the
// smoothed border segments with neighbor ids plus the label anchor and
// radius. The result is handed to exporters read-only.
//
// Cancellation via ctx is not an error in the pipeline's own taxonomy:
// the context error is returned as-is, with the last fully-completed
// facet state intact.
func Process(ctx context.Context, img *imageutil.RGBAImage, opts Options) (*FacetResult, error) {
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return nil, validationErrorf("empty image")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	q := &quantizer{
		k:         opts.ClusterCount,
		space:     opts.ColorSpace,
		threshold: opts.ConvergenceThreshold,
		seed:      opts.RandomSeed,
		maxIter:   opts.MaxKMeansIterations,
		fixed:     opts.FixedPalette,
		progress:  opts.stageProgress(StageQuantize),
	}
	quantized, err := q.run(ctx, img)
	if err != nil {
		return nil, err
	}
	logger().Debug("stage done", "stage", StageQuantize.String(),
		"palette", len(quantized.Palette), "elapsed", time.Since(start))

	fr, err := buildFacets(ctx, quantized, opts.stageProgress(StageRegions))
	if err != nil {
		return nil, err
	}

	reducer := &facetReducer{
		minSize:  opts.MinFacetSize,
		order:    opts.RemovalOrder,
		maxCount: opts.MaxFacetCount,
		space:    opts.ColorSpace,
		progress: opts.stageProgress(StageReduce),
	}
	if err := reducer.reduce(ctx, fr); err != nil {
		return nil, err
	}

	if err := traceBorders(ctx, fr, opts.stageProgress(StageTrace)); err != nil {
		return nil, err
	}
	if err := segmentBorders(ctx, fr, opts.SmoothingIterations, opts.stageProgress(StageSegment)); err != nil {
		return nil, err
	}
	if err := placeLabels(ctx, fr, opts.LabelPrecision, opts.stageProgress(StageLabel)); err != nil {
		return nil, err
	}

	logger().Debug("pipeline done", "facets", fr.LiveCount(),
		"elapsed", time.Since(start))
	return fr, nil
}
