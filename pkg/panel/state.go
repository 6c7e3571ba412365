package panel

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
)

// State is the full panel configuration: theme plus the complete
// component list. It is the unit exchanged with the agent service and
// the browser frontend.
type State struct {
	Theme      Theme       `json:"theme"`
	Components []Component `json:"components"`
}

// DefaultState returns the initial panel: core instruments in the
// primary zone, auxiliary instruments in the secondary zone, registry
// order.
func DefaultState() State {
	s := State{Theme: ThemeDark}
	primary, secondary := 0, 0
	for _, id := range Instruments() {
		c := Component{ID: id, Visible: true, Scale: 1}
		if IsCore(id) {
			c.Zone = ZonePrimary
			c.Order = primary
			primary++
		} else {
			c.Zone = ZoneSecondary
			c.Order = secondary
			secondary++
		}
		s.Components = append(s.Components, c.normalize())
	}
	return s
}

// Normalize returns a copy of the state with registry defaults filled
// in on every component (label, core flag, default scale).
func (s State) Normalize() State {
	out := State{Theme: s.Theme, Components: make([]Component, len(s.Components))}
	for i, c := range s.Components {
		out.Components[i] = c.normalize()
	}
	return out
}

// Validate checks the state against the registry and the safety
// constraints: known unique instrument ids, valid theme and zones,
// scales within bounds, and core instruments visible in the primary
// zone. Returns the first violation found.
func (s State) Validate() error {
	if !s.Theme.Valid() {
		return errors.New(errors.ErrCodeInvalidState, "invalid theme %q", s.Theme)
	}
	seen := make(map[string]bool, len(s.Components))
	for _, c := range s.Components {
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidState, "duplicate instrument %q", c.ID)
		}
		seen[c.ID] = true
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Merge overlays an agent-supplied update onto the current state.
//
// Components named by the update replace the current ones field by
// field (update values win, current values fill gaps for optional
// fields the agent dropped). Components the update does not mention are
// preserved unchanged, so an agent that returns a partial list cannot
// silently remove instruments.
func Merge(current, updated State) State {
	existing := make(map[string]Component, len(current.Components))
	for _, c := range current.Components {
		existing[c.ID] = c
	}

	merged := State{Theme: updated.Theme}
	if merged.Theme == "" {
		merged.Theme = current.Theme
	}

	mentioned := make(map[string]bool, len(updated.Components))
	for _, upd := range updated.Components {
		mentioned[upd.ID] = true
		if cur, ok := existing[upd.ID]; ok {
			merged.Components = append(merged.Components, overlay(cur, upd))
		} else {
			merged.Components = append(merged.Components, upd.normalize())
		}
	}
	for _, cur := range current.Components {
		if !mentioned[cur.ID] {
			merged.Components = append(merged.Components, cur)
		}
	}
	return merged
}

// overlay applies upd on top of cur. Required fields (visible, zone,
// order) always come from the update; optional fields fall back to the
// current value when the update left them empty.
func overlay(cur, upd Component) Component {
	out := upd
	if out.Label == "" {
		out.Label = cur.Label
	}
	if out.Color == "" {
		out.Color = cur.Color
	}
	if out.BgColor == "" {
		out.BgColor = cur.BgColor
	}
	if out.Scale == 0 {
		out.Scale = cur.Scale
	}
	if out.Visualization == "" {
		out.Visualization = cur.Visualization
	}
	return out.normalize()
}

// ZoneComponents returns the visible components assigned to zone,
// sorted by ascending order with list position breaking ties.
func (s State) ZoneComponents(zone Zone) []Component {
	var out []Component
	for _, c := range s.Components {
		if c.Visible && c.Zone == zone {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// LayoutItems converts a zone's components to engine inputs.
func (s State) LayoutItems(zone Zone) []layout.Item {
	comps := s.ZoneComponents(zone)
	items := make([]layout.Item, len(comps))
	for i, c := range comps {
		items[i] = c.LayoutItem()
	}
	return items
}

// MarshalState serializes a state to indented JSON.
func MarshalState(s State) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalState deserializes and normalizes a state. The state is not
// validated here; callers decide whether violations are fatal.
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, errors.Wrap(errors.ErrCodeInvalidState, err, "decode panel state")
	}
	return s.Normalize(), nil
}
