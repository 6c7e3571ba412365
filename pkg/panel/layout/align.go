package layout

import (
	"math"
	"sort"
)

// alignedGrid lays out the secondary zone so its columns snap onto the
// primary zone's column grid.
//
// The column pitch and starting x are derived from the already-computed
// primary entries instead of the secondary zone's own slot math: items
// are placed at firstX + col*pitch rather than centered, so the left
// edges of both zones' columns coincide. Row assignment and stacking
// follow the same rules as grid.
func (e *Engine) alignedGrid(items []Item, b Bounds, prior []Entry) []Entry {
	pad := e.cfg.Padding
	firstX := primaryFirstX(prior)
	pitch := primaryPitch(prior, pad)
	if pitch <= 0 {
		pitch = e.cfg.BaseWidth + pad
	}

	cols := int(math.Floor(b.available()/pitch)) + 1
	cols = clampColumns(cols, len(items))

	heights := rowHeights(e, items, cols)
	offsets := rowOffsets(heights, b.Inset, pad)

	entries := make([]Entry, len(items))
	for i, it := range items {
		w, h, scale := e.size(it)
		col := i % cols
		row := i / cols

		entries[i] = Entry{
			ID:     it.ID,
			X:      firstX + float64(col)*pitch,
			Y:      offsets[row],
			Width:  w,
			Height: h,
			Scale:  scale,
		}
	}
	return entries
}

// shiftToLeadingEdge applies the flow-strategy alignment fallback: a
// uniform horizontal shift so the secondary zone's leading edge matches
// the primary's. Row and column structure is left untouched, so this
// does not guarantee per-column snapping the way alignedGrid does.
func shiftToLeadingEdge(entries, prior []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	delta := primaryFirstX(prior) - primaryFirstX(entries)
	if delta == 0 {
		return entries
	}
	shifted := make([]Entry, len(entries))
	for i, en := range entries {
		en.X += delta
		shifted[i] = en
	}
	return shifted
}

// primaryFirstX returns the minimum x among entries.
func primaryFirstX(entries []Entry) float64 {
	first := entries[0].X
	for _, en := range entries[1:] {
		if en.X < first {
			first = en.X
		}
	}
	return first
}

// primaryPitch derives the horizontal distance between adjacent column
// left edges of a computed layout. With two or more distinct x values
// the pitch is the gap between the two smallest; a single-column layout
// falls back to the first entry's width plus one padding gap.
func primaryPitch(entries []Entry, pad float64) float64 {
	xs := make([]float64, 0, len(entries))
	for _, en := range entries {
		xs = append(xs, en.X)
	}
	sort.Float64s(xs)

	first := xs[0]
	for _, x := range xs[1:] {
		if x > first {
			return x - first
		}
	}
	return entries[0].Width + pad
}
