package layout

import "math"

// grid arranges items into rows and columns inside b.
//
// The column count is derived from the widest footprint in the set:
// floor(available / (maxWidth + padding)), clamped to [1, n]. Each row
// holds exactly that many items (the last row may be short); a row's
// height is the tallest item placed in it, and rows stack with one
// padding gap between them.
//
// Horizontally the available width is split into equal slots and every
// item is centered within its slot, clamped so it never starts left of
// the inset. An item wider than its slot (or the whole zone) is
// accepted and may overflow the right edge.
func (e *Engine) grid(items []Item, b Bounds) []Entry {
	pad := e.cfg.Padding
	avail := b.available()

	maxW := 0.0
	for _, it := range items {
		if w, _, _ := e.size(it); w > maxW {
			maxW = w
		}
	}

	cols := int(math.Floor(avail / (maxW + pad)))
	cols = clampColumns(cols, len(items))

	slotW := (avail - float64(cols-1)*pad) / float64(cols)

	heights := rowHeights(e, items, cols)
	offsets := rowOffsets(heights, b.Inset, pad)

	entries := make([]Entry, len(items))
	for i, it := range items {
		w, h, scale := e.size(it)
		col := i % cols
		row := i / cols

		x := b.Inset + float64(col)*(slotW+pad) + (slotW-w)/2
		if x < b.Inset {
			x = b.Inset
		}

		entries[i] = Entry{
			ID:     it.ID,
			X:      x,
			Y:      offsets[row],
			Width:  w,
			Height: h,
			Scale:  scale,
		}
	}
	return entries
}

// clampColumns bounds a derived column count to [1, n].
// Collapsed or negative available widths land here as cols <= 0.
func clampColumns(cols, n int) int {
	if cols < 1 {
		return 1
	}
	if cols > n {
		return n
	}
	return cols
}

// rowHeights returns the tallest footprint per row, rows keyed by
// index, grown lazily as items are assigned.
func rowHeights(e *Engine, items []Item, cols int) []float64 {
	var heights []float64
	for i, it := range items {
		_, h, _ := e.size(it)
		row := i / cols
		for len(heights) <= row {
			heights = append(heights, 0)
		}
		if h > heights[row] {
			heights[row] = h
		}
	}
	return heights
}

// rowOffsets converts row heights into top y coordinates: the inset
// plus all prior row heights plus one padding gap per prior row.
func rowOffsets(heights []float64, inset, pad float64) []float64 {
	offsets := make([]float64, len(heights))
	y := inset
	for i, h := range heights {
		offsets[i] = y
		y += h + pad
	}
	return offsets
}
