// Package layout computes instrument placement for the two cockpit
// display zones.
//
// The engine is a pure function over its inputs: a set of instrument
// descriptors, the pixel bounds of a zone, and a packing strategy. It
// retains no state between calls and never fails — degenerate inputs
// (empty sets, collapsed bounds, oversized instruments) degrade to a
// defined fallback instead of an error.
//
// # Strategies
//
// Two strategies are supported:
//   - grid: rows and columns sized from the widest instrument, each
//     instrument centered in its column slot. Used for the primary zone.
//   - flow: left-to-right cursor packing with line wrapping. Used for
//     the secondary zone.
//
// When the primary zone has already been laid out, the secondary zone
// can be aligned to it so the columns of both zones share left edges.
// See [Engine.Compute].
//
// # Coordinates
//
// All output coordinates are local to the zone, top-left origin, with
// the zone inset already applied. A computed layout is only valid for
// the bounds it was computed against; callers re-invoke on any change
// to the instrument set or the measured zone size.
package layout

import (
	"sort"
	"time"
)

// Strategy selects the packing algorithm for one zone.
type Strategy string

// Packing strategies.
const (
	StrategyGrid Strategy = "grid"
	StrategyFlow Strategy = "flow"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyGrid || s == StrategyFlow
}

// Config holds the shared base geometry for all instruments.
// BaseWidth and BaseHeight are the footprint of an instrument at scale
// 1.0; Padding is the gap between adjacent instruments. Both strategies
// use the same constants so grid and flow output stay visually
// consistent.
type Config struct {
	BaseWidth  float64
	BaseHeight float64
	Padding    float64
}

// DefaultConfig returns the nominal instrument geometry.
func DefaultConfig() Config {
	return Config{BaseWidth: 300, BaseHeight: 180, Padding: 12}
}

// Bounds is the content box of one zone. Inset is applied on all four
// sides before packing begins.
type Bounds struct {
	Width  float64
	Height float64
	Inset  float64
}

// available returns the horizontal space left after both insets.
// May be zero or negative for collapsed zones; callers clamp.
func (b Bounds) available() float64 {
	return b.Width - 2*b.Inset
}

// Item is one instrument descriptor as the engine sees it.
// Order defines pack priority (ascending, stable on ties). Scale is a
// uniform multiplier on the base footprint; non-positive values are
// treated as 1.0. Invisible items are excluded from layout entirely.
type Item struct {
	ID      string
	Order   int
	Scale   float64
	Visible bool
}

// Entry is the computed rectangle for one instrument.
// X and Y are the top-left corner in zone-local coordinates with the
// inset included. Width and Height are the post-scale pixel size.
type Entry struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// Observer receives a notification after each layout computation.
// Implementations must not influence the computed result; the engine
// calls the observer after the entries are final.
type Observer interface {
	LayoutComputed(strategy Strategy, items int, aligned bool, elapsed time.Duration)
}

// NopObserver is the default no-op observer.
type NopObserver struct{}

// LayoutComputed does nothing.
func (NopObserver) LayoutComputed(Strategy, int, bool, time.Duration) {}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an observer to the engine.
// Passing nil keeps the no-op default.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = o
		}
	}
}

// Engine computes zone layouts. It is stateless and safe for
// concurrent use; every call recomputes from scratch.
type Engine struct {
	cfg Config
	obs Observer
}

// New creates an engine with the given geometry.
// Zero-valued config fields fall back to [DefaultConfig].
func New(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.BaseWidth <= 0 {
		cfg.BaseWidth = def.BaseWidth
	}
	if cfg.BaseHeight <= 0 {
		cfg.BaseHeight = def.BaseHeight
	}
	if cfg.Padding < 0 {
		cfg.Padding = def.Padding
	}
	e := &Engine{cfg: cfg, obs: NopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's geometry constants.
func (e *Engine) Config() Config { return e.cfg }

// BoundsFor builds zone bounds for a measured content box, using the
// engine's padding constant as the inset.
func (e *Engine) BoundsFor(width, height float64) Bounds {
	return Bounds{Width: width, Height: height, Inset: e.cfg.Padding}
}

// Compute lays out the visible items inside bounds using the given
// strategy. The set of output IDs always equals the set of visible
// input IDs, in pack order.
//
// When prior is non-empty it is treated as the already-computed primary
// zone layout and the result is aligned to it: a grid secondary snaps
// its columns onto the primary column pitch, a flow secondary is
// shifted so the leading edges of both zones match.
//
// Identical arguments always produce identical output. Compute never
// returns an error; degenerate inputs degrade per the fallback rules
// documented on the strategy functions.
func (e *Engine) Compute(items []Item, b Bounds, strategy Strategy, prior []Entry) []Entry {
	start := time.Now()

	visible := packOrder(items)
	aligned := len(prior) > 0

	var entries []Entry
	switch {
	case len(visible) == 0:
		entries = []Entry{}
	case strategy == StrategyFlow:
		entries = e.flow(visible, b)
		if aligned {
			entries = shiftToLeadingEdge(entries, prior)
		}
	case aligned:
		entries = e.alignedGrid(visible, b, prior)
	default:
		entries = e.grid(visible, b)
	}

	e.obs.LayoutComputed(strategy, len(entries), aligned, time.Since(start))
	return entries
}

// packOrder filters invisible items and stable-sorts the remainder by
// ascending order, preserving list position on ties.
func packOrder(items []Item) []Item {
	visible := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Visible {
			visible = append(visible, it)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Order < visible[j].Order
	})
	return visible
}

// size returns the post-scale footprint of an item.
func (e *Engine) size(it Item) (w, h, scale float64) {
	scale = it.Scale
	if scale <= 0 {
		scale = 1
	}
	return e.cfg.BaseWidth * scale, e.cfg.BaseHeight * scale, scale
}
