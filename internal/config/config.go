// Package config loads the flightdeck service configuration from an
// optional TOML file with environment variable overrides. Environment
// values win over file values so deployments can inject credentials
// without touching the config file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flightdeck/pkg/errors"
)

// Cache backends selectable in the [cache] section.
const (
	CacheNull   = "null"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Agent     AgentConfig     `toml:"agent"`
	Layout    LayoutConfig    `toml:"layout"`
	Cache     CacheConfig     `toml:"cache"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// AgentConfig holds the model endpoint settings.
type AgentConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// LayoutConfig holds the layout engine geometry. Zero values fall back
// to the engine defaults.
type LayoutConfig struct {
	BaseWidth  float64 `toml:"base_width"`
	BaseHeight float64 `toml:"base_height"`
	Padding    float64 `toml:"padding"`
}

// CacheConfig selects and configures the agent verdict cache.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds the Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TelemetryConfig holds the simulator settings.
type TelemetryConfig struct {
	Interval duration `toml:"interval"`
	Seed     int64    `toml:"seed"`
}

// duration lets TOML carry values like "500ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file is present. The
// CORS origins cover the Vite and Node dev servers the frontend runs
// under.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8000",
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://localhost:4173",
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Agent: AgentConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Telemetry: TelemetryConfig{
			Interval: duration{time.Second},
		},
	}
}

// Load reads the configuration. An empty path or a missing file yields
// the defaults; a present but malformed file is an error. Environment
// overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over the loaded values. The
// OPENAI_* names match what the frontend's deployment docs already use.
func (c *Config) applyEnv() {
	setString(&c.Agent.APIKey, "OPENAI_API_KEY")
	setString(&c.Agent.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Agent.Model, "OPENAI_MODEL")
	setString(&c.Server.Addr, "FLIGHTDECK_ADDR")
	setString(&c.Cache.Backend, "FLIGHTDECK_CACHE")
	setString(&c.Cache.Dir, "FLIGHTDECK_CACHE_DIR")
	setString(&c.Cache.Redis.Addr, "FLIGHTDECK_REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "FLIGHTDECK_REDIS_PASSWORD")

	if v := os.Getenv("FLIGHTDECK_TELEMETRY_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Telemetry.Interval = duration{parsed}
		}
	}
	if v := os.Getenv("FLIGHTDECK_TELEMETRY_SEED"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telemetry.Seed = parsed
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheNull, CacheMemory, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr cannot be empty")
	}
	if c.Telemetry.Interval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "telemetry interval must be positive")
	}
	return nil
}

// TelemetryInterval returns the sampling interval.
func (c Config) TelemetryInterval() time.Duration {
	return c.Telemetry.Interval.Duration
}
