package img2pbn

// colorHistogram counts occurrences of each distinct color while
// preserving first-seen insertion order. The deterministic order is what
// makes K-means reproducible for a fixed seed: Go map iteration order
// would randomize centroid initialization between runs.
type colorHistogram struct {
	keys   []RGB
	counts map[RGB]int
}

// newColorHistogram creates an empty histogram.
func newColorHistogram() *colorHistogram {
	return &colorHistogram{
		counts: make(map[RGB]int),
	}
}

// Add counts one occurrence of a color.
func (h *colorHistogram) Add(c RGB) {
	if _, exists := h.counts[c]; !exists {
		h.keys = append(h.keys, c)
	}
	h.counts[c]++
}

// Count returns the number of occurrences recorded for a color.
func (h *colorHistogram) Count(c RGB) int {
	return h.counts[c]
}

// Len returns the number of distinct colors.
func (h *colorHistogram) Len() int {
	return len(h.keys)
}

// Iterate calls f for each distinct color in first-seen order.
func (h *colorHistogram) Iterate(f func(c RGB, count int)) {
	for _, k := range h.keys {
		f(k, h.counts[k])
	}
}

// Keys returns the distinct colors in first-seen order. The returned
// slice is shared with the histogram and must not be modified.
func (h *colorHistogram) Keys() []RGB {
	return h.keys
}
