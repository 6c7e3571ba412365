package layout

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func testItems(n int) []Item {
	items := make([]Item, n)
	ids := []string{"altitude", "airspeed", "rpm", "phase", "fuel", "temperature", "pressure", "heading", "vertical_speed"}
	for i := range items {
		items[i] = Item{ID: ids[i%len(ids)], Order: i, Scale: 1, Visible: true}
	}
	return items
}

func TestStrategyValid(t *testing.T) {
	for _, s := range []Strategy{StrategyGrid, StrategyFlow} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Strategy{"", "spiral", "GRID"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestGridCompleteness(t *testing.T) {
	e := New(DefaultConfig())
	items := testItems(7)
	items[3].Visible = false

	entries := e.Compute(items, e.BoundsFor(800, 600), StrategyGrid, nil)

	if len(entries) != 6 {
		t.Fatalf("expected 6 entries for 6 visible items, got %d", len(entries))
	}
	seen := map[string]bool{}
	for _, en := range entries {
		if seen[en.ID] {
			t.Errorf("duplicate id %q in output", en.ID)
		}
		seen[en.ID] = true
	}
	for _, it := range items {
		if it.Visible != seen[it.ID] {
			t.Errorf("item %q: visible=%v but in output=%v", it.ID, it.Visible, seen[it.ID])
		}
	}
}

func TestDeterminism(t *testing.T) {
	e := New(DefaultConfig())
	items := testItems(9)
	b := e.BoundsFor(1024, 400)

	for _, s := range []Strategy{StrategyGrid, StrategyFlow} {
		a := e.Compute(items, b, s, nil)
		bEntries := e.Compute(items, b, s, nil)
		if !reflect.DeepEqual(a, bEntries) {
			t.Errorf("%s: repeated computation differs", s)
		}
	}
}

func TestGridNonNegativePlacement(t *testing.T) {
	e := New(DefaultConfig())
	b := e.BoundsFor(700, 500)

	entries := e.Compute(testItems(5), b, StrategyGrid, nil)
	for _, en := range entries {
		if en.X < b.Inset || en.Y < b.Inset {
			t.Errorf("entry %q at (%v,%v) violates inset %v", en.ID, en.X, en.Y, b.Inset)
		}
	}
}

func TestGridNoOverlapWithinRow(t *testing.T) {
	e := New(DefaultConfig())
	entries := e.Compute(testItems(6), e.BoundsFor(1000, 600), StrategyGrid, nil)

	// Group by row via y coordinate.
	rows := map[float64][]Entry{}
	for _, en := range entries {
		rows[en.Y] = append(rows[en.Y], en)
	}
	for y, row := range rows {
		for i := 0; i < len(row); i++ {
			for j := i + 1; j < len(row); j++ {
				a, b := row[i], row[j]
				if a.X < b.X+b.Width && b.X < a.X+a.Width {
					t.Errorf("row y=%v: %q and %q overlap horizontally", y, a.ID, b.ID)
				}
			}
		}
	}
}

func TestGridMonotonicRowStacking(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	items := testItems(6)
	items[1].Scale = 1.5 // tallest in row 0

	b := e.BoundsFor(1000, 800) // 2 columns at scale 1.5 max width
	entries := e.Compute(items, b, StrategyGrid, nil)

	rows := map[float64]float64{} // y -> max height
	for _, en := range entries {
		if en.Height > rows[en.Y] {
			rows[en.Y] = en.Height
		}
	}
	ys := make([]float64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	if len(ys) < 2 {
		t.Fatalf("expected multiple rows, got %d", len(ys))
	}
	for y, h := range rows {
		next := math.Inf(1)
		for other := range rows {
			if other > y && other < next {
				next = other
			}
		}
		if math.IsInf(next, 1) {
			continue
		}
		if next < y+h+cfg.Padding {
			t.Errorf("row at y=%v (h=%v) not cleared by next row at y=%v", y, h, next)
		}
	}
}

func TestScalePropagation(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	items := []Item{{ID: "rpm", Scale: 2, Visible: true}}

	entries := e.Compute(items, e.BoundsFor(1200, 600), StrategyGrid, nil)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Width != 2*cfg.BaseWidth || entries[0].Height != 2*cfg.BaseHeight {
		t.Errorf("scale 2 produced %vx%v, want %vx%v",
			entries[0].Width, entries[0].Height, 2*cfg.BaseWidth, 2*cfg.BaseHeight)
	}
	if entries[0].Scale != 2 {
		t.Errorf("scale not echoed: %v", entries[0].Scale)
	}
}

func TestEmptyZone(t *testing.T) {
	e := New(DefaultConfig())
	entries := e.Compute(nil, e.BoundsFor(800, 600), StrategyGrid, nil)
	if len(entries) != 0 {
		t.Errorf("empty input should produce empty output, got %d entries", len(entries))
	}
}

func TestSingleOversizedComponent(t *testing.T) {
	e := New(DefaultConfig())
	b := e.BoundsFor(200, 600) // narrower than one instrument
	items := []Item{{ID: "altitude", Scale: 1, Visible: true}}

	for _, s := range []Strategy{StrategyGrid, StrategyFlow} {
		entries := e.Compute(items, b, s, nil)
		if len(entries) != 1 {
			t.Fatalf("%s: expected 1 entry, got %d", s, len(entries))
		}
		if entries[0].X != b.Inset {
			t.Errorf("%s: oversized item should clamp to inset %v, got x=%v", s, b.Inset, entries[0].X)
		}
	}
}

func TestGridZeroBounds(t *testing.T) {
	e := New(DefaultConfig())
	entries := e.Compute(testItems(3), Bounds{Width: 0, Height: 0, Inset: 12}, StrategyGrid, nil)

	// Collapsed bounds clamp to a single column; output stays complete.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].X != entries[0].X {
			t.Errorf("collapsed bounds should produce one column, entry %d at x=%v", i, entries[i].X)
		}
		if entries[i].Y <= entries[i-1].Y {
			t.Errorf("rows should still stack downward")
		}
	}
}

func TestFlowWrap(t *testing.T) {
	// Three instruments that fit two per line: the third wraps.
	cfg := Config{BaseWidth: 280, BaseHeight: 180, Padding: 12}
	e := New(cfg)
	b := Bounds{Width: 620, Height: 600, Inset: 12}

	entries := e.Compute(testItems(3), b, StrategyFlow, nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Y != entries[1].Y {
		t.Errorf("first two should share a row: y0=%v y1=%v", entries[0].Y, entries[1].Y)
	}
	if entries[2].Y != entries[0].Y+cfg.BaseHeight+cfg.Padding {
		t.Errorf("third should wrap below row 1: y=%v", entries[2].Y)
	}
	if entries[2].X != b.Inset {
		t.Errorf("wrapped item should restart at inset: x=%v", entries[2].X)
	}
	if entries[1].X != b.Inset+cfg.BaseWidth+cfg.Padding {
		t.Errorf("second item cursor position wrong: x=%v", entries[1].X)
	}
}

func TestFlowNeverWrapsLoneItem(t *testing.T) {
	e := New(DefaultConfig())
	b := Bounds{Width: 100, Height: 100, Inset: 12}

	entries := e.Compute(testItems(3), b, StrategyFlow, nil)
	// Every item exceeds the zone width, so each sits alone on its row.
	for i, en := range entries {
		if en.X != b.Inset {
			t.Errorf("entry %d should start at inset, got x=%v", i, en.X)
		}
		if i > 0 && en.Y <= entries[i-1].Y {
			t.Errorf("entry %d should be on a lower row", i)
		}
	}
}

func TestAlignmentSnapping(t *testing.T) {
	e := New(DefaultConfig())
	prior := []Entry{
		{ID: "altitude", X: 12, Y: 12, Width: 300, Height: 180, Scale: 1},
		{ID: "airspeed", X: 324, Y: 12, Width: 300, Height: 180, Scale: 1},
	}
	b := Bounds{Width: 960, Height: 400, Inset: 12}

	entries := e.Compute(testItems(3), b, StrategyGrid, prior)
	want := []float64{12, 324, 636}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, en := range entries {
		if en.X != want[i] {
			t.Errorf("entry %d: x=%v, want %v", i, en.X, want[i])
		}
	}
}

func TestAlignmentPitchFromMultiRowPrimary(t *testing.T) {
	e := New(DefaultConfig())
	// Two-column primary spanning two rows: column 0 appears twice.
	prior := []Entry{
		{ID: "a", X: 12, Y: 12, Width: 300, Height: 180},
		{ID: "b", X: 324, Y: 12, Width: 300, Height: 180},
		{ID: "c", X: 12, Y: 204, Width: 300, Height: 180},
	}
	entries := e.Compute(testItems(2), Bounds{Width: 960, Height: 400, Inset: 12}, StrategyGrid, prior)

	if entries[0].X != 12 || entries[1].X != 324 {
		t.Errorf("pitch should derive from distinct x values: got %v, %v", entries[0].X, entries[1].X)
	}
}

func TestAlignmentSingleEntryPrimary(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	prior := []Entry{{ID: "a", X: 50, Y: 12, Width: 300, Height: 180}}

	entries := e.Compute(testItems(2), Bounds{Width: 960, Height: 400, Inset: 12}, StrategyGrid, prior)

	pitch := cfg.BaseWidth + cfg.Padding
	if entries[0].X != 50 {
		t.Errorf("first column should start at primary first x: %v", entries[0].X)
	}
	if entries[1].X != 50+pitch {
		t.Errorf("single-entry pitch should be width+padding: got %v, want %v", entries[1].X, 50+pitch)
	}
}

func TestAlignmentColumnCountClamped(t *testing.T) {
	e := New(DefaultConfig())
	prior := []Entry{
		{ID: "a", X: 12, Y: 12, Width: 300, Height: 180},
		{ID: "b", X: 324, Y: 12, Width: 300, Height: 180},
	}
	// Wide zone derives more columns than there are items.
	entries := e.Compute(testItems(2), Bounds{Width: 2000, Height: 400, Inset: 12}, StrategyGrid, prior)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Y != entries[1].Y {
		t.Errorf("both items should fit one row when columns clamp to item count")
	}
}

func TestFlowAlignmentShiftsLeadingEdge(t *testing.T) {
	e := New(DefaultConfig())
	b := Bounds{Width: 960, Height: 400, Inset: 12}
	prior := []Entry{{ID: "a", X: 50, Y: 12, Width: 300, Height: 180}}

	plain := e.Compute(testItems(3), b, StrategyFlow, nil)
	shifted := e.Compute(testItems(3), b, StrategyFlow, prior)

	delta := 50.0 - b.Inset
	for i := range plain {
		if shifted[i].X != plain[i].X+delta {
			t.Errorf("entry %d: x=%v, want %v", i, shifted[i].X, plain[i].X+delta)
		}
		if shifted[i].Y != plain[i].Y {
			t.Errorf("entry %d: alignment shift must not touch rows", i)
		}
	}
}

func TestOrderSorting(t *testing.T) {
	e := New(DefaultConfig())
	items := []Item{
		{ID: "third", Order: 5, Scale: 1, Visible: true},
		{ID: "first", Order: 1, Scale: 1, Visible: true},
		{ID: "second", Order: 1, Scale: 1, Visible: true}, // tie: list position wins
	}
	entries := e.Compute(items, e.BoundsFor(2000, 400), StrategyGrid, nil)

	want := []string{"first", "second", "third"}
	for i, en := range entries {
		if en.ID != want[i] {
			t.Errorf("position %d: got %q, want %q", i, en.ID, want[i])
		}
	}
}

type recordingObserver struct {
	strategy Strategy
	items    int
	aligned  bool
	calls    int
}

func (r *recordingObserver) LayoutComputed(s Strategy, n int, aligned bool, _ time.Duration) {
	r.strategy = s
	r.items = n
	r.aligned = aligned
	r.calls++
}

func TestObserverDoesNotAffectResult(t *testing.T) {
	obs := &recordingObserver{}
	plain := New(DefaultConfig())
	observed := New(DefaultConfig(), WithObserver(obs))
	b := plain.BoundsFor(800, 600)

	a := plain.Compute(testItems(4), b, StrategyGrid, nil)
	o := observed.Compute(testItems(4), b, StrategyGrid, nil)

	if !reflect.DeepEqual(a, o) {
		t.Error("observer must not influence the computed layout")
	}
	if obs.calls != 1 || obs.items != 4 || obs.strategy != StrategyGrid || obs.aligned {
		t.Errorf("observer saw %+v", obs)
	}
}
