// Package cli implements the flightdeck command-line interface.
//
// This package provides commands for serving the panel HTTP API,
// computing instrument layouts offline, previewing panels in the
// terminal, and managing the agent verdict cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the panel HTTP service (agent, layout, telemetry)
//   - arrange: Compute instrument placements for a panel state file
//   - preview: Render a panel layout in the terminal
//   - cache: Manage the agent verdict cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context so long-running operations can
// report structured progress.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flightdeck/internal/config"
	"github.com/matzehuels/flightdeck/pkg/buildinfo"
	"github.com/matzehuels/flightdeck/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flightdeck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flightdeck",
		Short:        "Flightdeck runs the cockpit panel service",
		Long:         `Flightdeck serves a cockpit instrument dashboard: natural-language panel adjustments through a model agent, deterministic zone layouts, and simulated telemetry.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to TOML config file")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration from the --config path (or the
// defaults plus environment overrides when no file is given).
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the agent verdict cache selected by the config.
// Backend failures fall back to a null cache so a missing Redis never
// prevents serving.
func (c *CLI) newCache(cmd *cobra.Command, cfg config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case config.CacheNull:
		return cache.NewNullCache()
	case config.CacheMemory:
		return cache.NewMemoryCache()
	case config.CacheFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "error", err)
				return cache.NewNullCache()
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return fc
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", cfg.Cache.Redis.Addr, "error", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		return cache.NewNullCache()
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flightdeck/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
