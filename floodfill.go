package img2pbn

import (
	"context"
	"image"
)

// buildFacets partitions the color-index grid into maximal 4-connected
// same-color regions. Pixels are scanned in raster order; each unvisited
// pixel seeds a stack-based flood fill that assigns a fresh facet id,
// tracks the running bounding box, and records border pixels (any filled
// pixel with a 4-neighbor of a different color index, or off-grid) in
// the same pass. Neighbor-id lists are left to lazy discovery from the
// border pixels.
func buildFacets(ctx context.Context, q *QuantizeResult, progress func(float64)) (*FacetResult, error) {
	width, height := q.Width, q.Height
	fr := &FacetResult{
		Width:   width,
		Height:  height,
		Grid:    make([]int, width*height),
		Palette: append([]RGB(nil), q.Palette...),
	}

	visited := make([]bool, width*height)
	var stack []image.Point

	for y := 0; y < height; y++ {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			if visited[y*width+x] {
				continue
			}

			colorIndex := q.Indices[y*width+x]
			f := &Facet{
				ID:              len(fr.Facets),
				ColorIndex:      colorIndex,
				BBox:            emptyBoundingBox(),
				neighboursDirty: true,
			}
			fr.Facets = append(fr.Facets, f)

			// Non-recursive 4-connected fill restricted to pixels
			// sharing the seed's color index.
			stack = stack[:0]
			stack = append(stack, image.Point{X: x, Y: y})
			visited[y*width+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				fr.set(p.X, p.Y, f.ID)
				f.PointCount++
				f.BBox.expand(p.X, p.Y)

				border := false
				for _, d := range neighbourOffsets {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						border = true
						continue
					}
					if q.Indices[ny*width+nx] != colorIndex {
						border = true
						continue
					}
					if !visited[ny*width+nx] {
						visited[ny*width+nx] = true
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
				if border {
					f.BorderPoints = append(f.BorderPoints, p)
				}
			}
		}
		if progress != nil {
			progress(float64(y+1) / float64(height))
		}
	}

	logger().Debug("facets built", "count", len(fr.Facets),
		"width", width, "height", height)
	return fr, nil
}

// rebuildFacet recomputes a facet's point count, border pixels, and
// tight bounding box by rescanning the grid inside the facet's current
// (possibly over-large) bounding box. Used after pixel reassignment,
// when the stored border data is stale. The neighbor list is marked
// dirty rather than recomputed.
func rebuildFacet(fr *FacetResult, f *Facet) {
	scan := f.BBox
	count := 0
	box := emptyBoundingBox()
	borders := f.BorderPoints[:0]

	for y := scan.MinY; y <= scan.MaxY; y++ {
		for x := scan.MinX; x <= scan.MaxX; x++ {
			if fr.At(x, y) != f.ID {
				continue
			}
			count++
			box.expand(x, y)

			border := false
			for _, d := range neighbourOffsets {
				nx, ny := x+d.X, y+d.Y
				if !fr.inBounds(nx, ny) || fr.At(nx, ny) != f.ID {
					border = true
					break
				}
			}
			if border {
				borders = append(borders, image.Point{X: x, Y: y})
			}
		}
	}

	f.PointCount = count
	f.BBox = box
	f.BorderPoints = borders
	f.neighboursDirty = true
}
