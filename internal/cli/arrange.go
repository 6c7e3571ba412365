package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
)

// arrangement is the output document of the arrange command.
type arrangement struct {
	Primary   []layout.Entry `json:"primary"`
	Secondary []layout.Entry `json:"secondary"`
}

// arrangeCommand creates the arrange command: offline layout
// computation for a panel state file.
func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		width      float64
		primaryH   float64
		secondaryH float64
		secondary  string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "arrange [state.json]",
		Short: "Compute instrument placements for a panel state",
		Long: `Arrange reads a panel state JSON file (or the default panel when no
file is given), computes placements for both zones, and writes the
result as JSON. The primary zone packs as a grid; the secondary zone
packs with the chosen strategy, aligned to the primary grid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			strategy := layout.Strategy(secondary)
			if !strategy.Valid() {
				return errors.New(errors.ErrCodeInvalidConfig, "unknown secondary strategy %q (grid or flow)", secondary)
			}

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

			primary := engine.Compute(
				state.LayoutItems(panel.ZonePrimary),
				engine.BoundsFor(width, primaryH),
				layout.StrategyGrid,
				nil,
			)
			secondaryEntries := engine.Compute(
				state.LayoutItems(panel.ZoneSecondary),
				engine.BoundsFor(width, secondaryH),
				strategy,
				primary,
			)

			data, err := json.MarshalIndent(arrangement{Primary: primary, Secondary: secondaryEntries}, "", "  ")
			if err != nil {
				return err
			}

			placed := len(primary) + len(secondaryEntries)
			if output == "-" || output == "" {
				fmt.Println(string(data))
			} else {
				if err := os.WriteFile(output, data, 0644); err != nil {
					return err
				}
				printSuccess("Arranged %d instruments", placed)
				printFile(output)
			}

			prog.done(fmt.Sprintf("Arranged %d instruments", placed))
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 1280, "panel width in pixels")
	cmd.Flags().Float64Var(&primaryH, "primary-height", 400, "primary zone height in pixels")
	cmd.Flags().Float64Var(&secondaryH, "secondary-height", 300, "secondary zone height in pixels")
	cmd.Flags().StringVar(&secondary, "secondary", string(layout.StrategyGrid), "secondary zone strategy (grid or flow)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
