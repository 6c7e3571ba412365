// Package panel defines the cockpit panel configuration model: the
// instrument descriptors, the panel state exchanged with the agent
// service, and the merge/validation rules that keep the safety-critical
// instruments on screen.
//
// The JSON field names mirror the wire schema the browser frontend and
// the agent speak (camelCase, e.g. "bgColor", "visualizationType"), so
// a State round-trips through the API unchanged.
package panel

import (
	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
)

// Zone names a display region with independent layout computation.
type Zone string

// Display zones. The primary zone holds the safety-critical
// instruments; the secondary zone holds auxiliary ones.
const (
	ZonePrimary   Zone = "primary"
	ZoneSecondary Zone = "secondary"
)

// Valid reports whether z is a known zone.
func (z Zone) Valid() bool { return z == ZonePrimary || z == ZoneSecondary }

// Visualization selects how an instrument draws its value.
type Visualization string

// Visualization types.
const (
	VizText Visualization = "text"
	VizBar  Visualization = "bar"
	VizRing Visualization = "ring"
)

// Valid reports whether v is a known visualization (empty means default).
func (v Visualization) Valid() bool {
	return v == "" || v == VizText || v == VizBar || v == VizRing
}

// Theme is the panel color scheme.
type Theme string

// Themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeDark || t == ThemeLight }

// Scale limits enforced on descriptors.
const (
	MinScale = 0.5
	MaxScale = 2.0
)

// Component describes one instrument's layout-relevant attributes.
// Descriptors are owned by the caller and passed by value; the engine
// output is recomputed wholesale whenever any field changes.
type Component struct {
	ID            string        `json:"id"`
	Label         string        `json:"label,omitempty"`
	Visible       bool          `json:"visible"`
	Zone          Zone          `json:"zone"`
	Order         int           `json:"order"`
	Color         string        `json:"color,omitempty"`
	BgColor       string        `json:"bgColor,omitempty"`
	Scale         float64       `json:"scale,omitempty"`
	IsCore        bool          `json:"isCore,omitempty"`
	Visualization Visualization `json:"visualizationType,omitempty"`
}

// LayoutItem converts the descriptor to an engine input.
func (c Component) LayoutItem() layout.Item {
	return layout.Item{ID: c.ID, Order: c.Order, Scale: c.Scale, Visible: c.Visible}
}

// Instrument identifiers.
const (
	InstrumentAltitude      = "altitude"
	InstrumentAirspeed      = "airspeed"
	InstrumentRPM           = "rpm"
	InstrumentPhase         = "phase"
	InstrumentFuel          = "fuel"
	InstrumentTemperature   = "temperature"
	InstrumentPressure      = "pressure"
	InstrumentHeading       = "heading"
	InstrumentVerticalSpeed = "vertical_speed"
)

// Meta is the fixed metadata for one instrument.
type Meta struct {
	Label string
	Core  bool
}

// metadata is the instrument registry. Core instruments must always be
// visible and must stay in the primary zone.
var metadata = map[string]Meta{
	InstrumentAltitude:      {Label: "Altitude (ft)", Core: true},
	InstrumentAirspeed:      {Label: "Airspeed (mph)", Core: true},
	InstrumentRPM:           {Label: "Engine RPM", Core: true},
	InstrumentPhase:         {Label: "Flight Phase", Core: true},
	InstrumentFuel:          {Label: "Fuel Level (%)", Core: false},
	InstrumentTemperature:   {Label: "Temperature (°C)", Core: false},
	InstrumentPressure:      {Label: "Pressure (hPa)", Core: false},
	InstrumentHeading:       {Label: "Heading (°)", Core: false},
	InstrumentVerticalSpeed: {Label: "Vertical Speed (ft/min)", Core: false},
}

// Lookup returns the registry metadata for an instrument id.
func Lookup(id string) (Meta, bool) {
	m, ok := metadata[id]
	return m, ok
}

// Instruments returns all known instrument ids in a fixed order.
func Instruments() []string {
	return []string{
		InstrumentAltitude, InstrumentAirspeed, InstrumentRPM, InstrumentPhase,
		InstrumentFuel, InstrumentTemperature, InstrumentPressure,
		InstrumentHeading, InstrumentVerticalSpeed,
	}
}

// IsCore reports whether id names a safety-critical instrument.
func IsCore(id string) bool {
	return metadata[id].Core
}

// normalize fills registry-derived defaults on a descriptor: display
// label, core flag, and a 1.0 scale when unset.
func (c Component) normalize() Component {
	if m, ok := metadata[c.ID]; ok {
		if c.Label == "" {
			c.Label = m.Label
		}
		c.IsCore = m.Core
	}
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Visualization == "" {
		c.Visualization = VizText
	}
	return c
}

// validate checks a single descriptor against the registry and the
// safety constraints.
func (c Component) validate() error {
	if _, ok := metadata[c.ID]; !ok {
		return errors.New(errors.ErrCodeInvalidComponent, "unknown instrument %q", c.ID)
	}
	if !c.Zone.Valid() {
		return errors.New(errors.ErrCodeInvalidComponent, "instrument %q: invalid zone %q", c.ID, c.Zone)
	}
	if c.Scale != 0 && (c.Scale < MinScale || c.Scale > MaxScale) {
		return errors.New(errors.ErrCodeInvalidScale, "instrument %q: scale %.2f outside [%.1f, %.1f]", c.ID, c.Scale, MinScale, MaxScale)
	}
	if !c.Visualization.Valid() {
		return errors.New(errors.ErrCodeInvalidComponent, "instrument %q: invalid visualization %q", c.ID, c.Visualization)
	}
	if IsCore(c.ID) {
		if !c.Visible {
			return errors.New(errors.ErrCodeProtectedComponent, "core instrument %q cannot be hidden", c.ID)
		}
		if c.Zone != ZonePrimary {
			return errors.New(errors.ErrCodeProtectedComponent, "core instrument %q must stay in the primary zone", c.ID)
		}
	}
	return nil
}
