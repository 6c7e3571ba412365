package layout

// flow packs items left to right, wrapping to a new line only when the
// next item would not fit in the remaining horizontal space.
//
// The cursor starts at (inset, inset). A wrap never happens at the
// start of a row, so an item wider than the whole zone sits alone on
// its row and overflows the right edge instead of looping forever.
func (e *Engine) flow(items []Item, b Bounds) []Entry {
	pad := e.cfg.Padding
	limit := b.Width - b.Inset

	x := b.Inset
	y := b.Inset
	rowH := 0.0

	entries := make([]Entry, len(items))
	for i, it := range items {
		w, h, scale := e.size(it)

		if x+w > limit && x > b.Inset {
			x = b.Inset
			y += rowH + pad
			rowH = 0
		}

		entries[i] = Entry{
			ID:     it.ID,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
			Scale:  scale,
		}

		x += w + pad
		if h > rowH {
			rowH = h
		}
	}
	return entries
}
