package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
	"github.com/matzehuels/flightdeck/pkg/telemetry"
)

// previewCommand creates the preview command: an interactive terminal
// rendering of the computed panel layout.
func (c *CLI) previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [state.json]",
		Short: "Render a panel layout in the terminal",
		Long: `Preview computes the zone layouts for a panel state and draws the
instruments as boxes in the terminal. The layout recomputes as the
terminal is resized.

Keys: q quit · s toggle secondary strategy (grid/flow)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := panel.DefaultState()
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "read state file %s", args[0])
				}
				if state, err = panel.UnmarshalState(data); err != nil {
					return err
				}
			}
			if err := state.Validate(); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine := layout.New(layout.Config{
				BaseWidth:  cfg.Layout.BaseWidth,
				BaseHeight: cfg.Layout.BaseHeight,
				Padding:    cfg.Layout.Padding,
			})

			sim := telemetry.NewSimulator(cfg.Telemetry.Seed)
			model := newPreviewModel(state, engine, sim)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	return cmd
}

// =============================================================================
// PreviewModel - terminal panel rendering
// =============================================================================

// cellScale converts layout pixels to terminal cells. Terminal cells
// are roughly twice as tall as wide, hence the asymmetry.
const (
	cellScaleX = 20.0
	cellScaleY = 40.0
)

var (
	previewZoneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)

	previewCoreStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewAuxStyle  = lipgloss.NewStyle().Foreground(colorGray)
)

// previewModel is the bubbletea model for the preview command.
type previewModel struct {
	state    panel.State
	engine   *layout.Engine
	sim      *telemetry.Simulator
	sample   telemetry.Sample
	width    int
	height   int
	useFlow  bool
	quitting bool
}

func newPreviewModel(state panel.State, engine *layout.Engine, sim *telemetry.Simulator) previewModel {
	return previewModel{state: state, engine: engine, sim: sim, width: 80, height: 24}
}

// tickMsg drives the simulated telemetry refresh.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/2, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m previewModel) Init() tea.Cmd {
	return tick()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "s":
			m.useFlow = !m.useFlow
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.sample = m.sim.Next()
		return m, tick()
	}
	return m, nil
}

func (m previewModel) View() string {
	if m.quitting {
		return ""
	}

	// Map the terminal area back to layout pixels, split 60/40 between
	// the zones.
	panelW := float64(m.width-2) * cellScaleX
	primaryH := float64(m.height) * 0.6 * cellScaleY
	secondaryH := float64(m.height) * 0.4 * cellScaleY

	primary := m.engine.Compute(
		m.state.LayoutItems(panel.ZonePrimary),
		m.engine.BoundsFor(panelW, primaryH),
		layout.StrategyGrid,
		nil,
	)
	strategy := layout.StrategyGrid
	if m.useFlow {
		strategy = layout.StrategyFlow
	}
	secondary := m.engine.Compute(
		m.state.LayoutItems(panel.ZoneSecondary),
		m.engine.BoundsFor(panelW, secondaryH),
		strategy,
		primary,
	)

	var b strings.Builder
	b.WriteString(StyleTitle.Render("flightdeck preview"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d instruments · secondary: %s", len(primary)+len(secondary), strategy)))
	b.WriteString("\n")
	b.WriteString(m.renderZone("PRIMARY", primary))
	b.WriteString("\n")
	b.WriteString(m.renderZone("SECONDARY", secondary))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit · s toggle secondary strategy"))
	return b.String()
}

// renderZone paints one zone's entries on a character canvas.
func (m previewModel) renderZone(title string, entries []layout.Entry) string {
	cols := m.width - 4
	if cols < 20 {
		cols = 20
	}
	rows := 0
	for _, e := range entries {
		if r := int((e.Y+e.Height)/cellScaleY) + 1; r > rows {
			rows = r
		}
	}
	if rows < 3 {
		rows = 3
	}

	canvas := make([][]rune, rows)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", cols))
	}

	for _, e := range entries {
		x := int(e.X / cellScaleX)
		y := int(e.Y / cellScaleY)
		w := int(e.Width / cellScaleX)
		if w < 4 {
			w = 4
		}
		if y >= rows || x >= cols {
			continue
		}
		label := e.ID
		if meta, ok := panel.Lookup(e.ID); ok {
			label = meta.Label
		}
		if v := instrumentValue(m.sample, e.ID); v != "" {
			label += " " + v
		}
		cell := fmt.Sprintf("[%s]", truncate(label, w-2))
		for i, r := range cell {
			if x+i < cols {
				canvas[y][x+i] = r
			}
		}
	}

	var lines []string
	for _, row := range canvas {
		line := string(row)
		styled := line
		if strings.Contains(line, "[") {
			styled = previewAuxStyle.Render(line)
		}
		lines = append(lines, styled)
	}

	body := previewCoreStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return previewZoneStyle.Width(cols + 2).Render(body)
}

// instrumentValue formats the current simulated reading for an
// instrument. Returns "" before the first tick.
func instrumentValue(s telemetry.Sample, id string) string {
	if s.Phase == "" {
		return ""
	}
	switch id {
	case panel.InstrumentAltitude:
		return fmt.Sprintf("%.0f", s.Altitude)
	case panel.InstrumentAirspeed:
		return fmt.Sprintf("%.0f", s.Airspeed)
	case panel.InstrumentRPM:
		return fmt.Sprintf("%.0f", s.RPM)
	case panel.InstrumentPhase:
		return string(s.Phase)
	case panel.InstrumentFuel:
		return fmt.Sprintf("%.1f", s.Fuel)
	case panel.InstrumentTemperature:
		return fmt.Sprintf("%.1f", s.Temperature)
	case panel.InstrumentPressure:
		return fmt.Sprintf("%.0f", s.Pressure)
	case panel.InstrumentHeading:
		return fmt.Sprintf("%.0f", s.Heading)
	case panel.InstrumentVerticalSpeed:
		return fmt.Sprintf("%+.0f", s.VerticalSpeed)
	}
	return ""
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}
