package img2pbn

import "testing"

func TestHistogramCounts(t *testing.T) {
	h := newColorHistogram()
	h.Add(tRed)
	h.Add(tGreen)
	h.Add(tRed)
	h.Add(tRed)

	if got := h.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := h.Count(tRed); got != 3 {
		t.Errorf("Count(red) = %d, want 3", got)
	}
	if got := h.Count(tGreen); got != 1 {
		t.Errorf("Count(green) = %d, want 1", got)
	}
	if got := h.Count(tBlue); got != 0 {
		t.Errorf("Count(blue) = %d, want 0", got)
	}
}

func TestHistogramInsertionOrder(t *testing.T) {
	h := newColorHistogram()
	order := []RGB{tBlue, tRed, tWhite, tGreen}
	for _, c := range order {
		h.Add(c)
	}
	// Repeats must not disturb the first-seen order.
	h.Add(tWhite)
	h.Add(tBlue)

	keys := h.Keys()
	if len(keys) != len(order) {
		t.Fatalf("got %d keys, want %d", len(keys), len(order))
	}
	for i, want := range order {
		if keys[i] != want {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want)
		}
	}

	i := 0
	h.Iterate(func(c RGB, count int) {
		if c != order[i] {
			t.Errorf("Iterate position %d = %v, want %v", i, c, order[i])
		}
		i++
	})
	if i != len(order) {
		t.Errorf("Iterate visited %d colors, want %d", i, len(order))
	}
}
