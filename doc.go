// Package img2pbn converts a raster image into a paint-by-numbers
// template: a small palette of representative colors, a partition of the
// image into contiguous same-color regions (facets), smoothed vector
// borders for every facet, and a numbered label anchor inside each one.
//
// The pipeline runs six stages in order: color quantization (weighted
// K-means in a selectable color space), flood-fill region labeling,
// small-facet reduction, border tracing, border segmentation with
// Haar-wavelet smoothing, and label placement via a
// pole-of-inaccessibility search. Process runs all of them; the
// individual stages are not exposed separately.
//
// The resulting FacetResult is consumed read-only by the exporters in
// the export subpackage.
package img2pbn
