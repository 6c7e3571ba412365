package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flightdeck/internal/server"
	"github.com/matzehuels/flightdeck/pkg/agent"
	"github.com/matzehuels/flightdeck/pkg/observability"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
	"github.com/matzehuels/flightdeck/pkg/telemetry"
)

// serveCommand creates the serve command running the panel HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the panel HTTP service",
		Long: `Serve the cockpit panel API: the adjust-ui agent endpoint,
deterministic zone layout computation, a health probe, and a websocket
telemetry stream for the frontend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if noCache {
				cfg.Cache.Backend = "null"
			}

			store := c.newCache(cmd, cfg)
			defer store.Close()

			adjuster := agent.NewClient(agent.ClientConfig{
				BaseURL: cfg.Agent.BaseURL,
				APIKey:  cfg.Agent.APIKey,
				Model:   cfg.Agent.Model,
			}, store)
			if !adjuster.Configured() {
				c.Logger.Warn("no API key configured, adjust-ui will be unavailable")
			}

			engine := layout.New(layout.Config{
				BaseWidth:  cfg.Layout.BaseWidth,
				BaseHeight: cfg.Layout.BaseHeight,
				Padding:    cfg.Layout.Padding,
			}, layout.WithObserver(observability.LayoutObserver()))

			seed := cfg.Telemetry.Seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			sim := telemetry.NewSimulator(seed)
			go sim.Run(cmd.Context(), cfg.TelemetryInterval())

			c.Logger.Info("starting panel service",
				"addr", cfg.Server.Addr,
				"model", adjuster.Model(),
				"cache", cfg.Cache.Backend,
			)
			srv := server.New(cfg, c.Logger, adjuster, engine, sim)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the agent verdict cache")
	return cmd
}
