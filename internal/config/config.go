package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/internal/logging"
	"github.com/vango-dev/outlet/pkg/datacache"
	"github.com/vango-dev/outlet/pkg/loader"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "outlet.json"

	// DefaultAddress is the default server listen address.
	DefaultAddress = "localhost:3000"

	// DefaultManifest is the default route manifest path.
	DefaultManifest = "routes.yaml"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultCacheTTL is how long committed loader data is kept.
	DefaultCacheTTL = 30 * time.Minute
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config represents the complete outlet.json configuration.
type Config struct {
	// Address is the server listen address.
	Address string `json:"address,omitempty"`

	// Manifest is the path to the route manifest, relative to the config.
	Manifest string `json:"manifest,omitempty"`

	// Loader controls how loaders run.
	Loader LoaderConfig `json:"loader,omitempty"`

	// Metrics configures the Prometheus middleware.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing configures the OpenTelemetry middleware.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty"`

	// Cache configures where committed loader data is kept.
	Cache CacheConfig `json:"cache,omitempty"`

	// ShutdownTimeout is a duration string such as "10s".
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LoaderConfig selects the loader strategy.
type LoaderConfig struct {
	// Strategy is "waterfall" or "parallel".
	Strategy string `json:"strategy,omitempty"`

	// Concurrency limits parallel loaders; zero means unlimited.
	Concurrency int `json:"concurrency,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains tracing settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// CacheConfig contains loader data cache settings.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `json:"backend,omitempty"`

	// Addr is the redis address.
	Addr string `json:"addr,omitempty"`

	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`

	// Prefix is prepended to redis keys.
	Prefix string `json:"prefix,omitempty"`

	// TTL is a duration string such as "30m".
	TTL string `json:"ttl,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Address:  DefaultAddress,
		Manifest: DefaultManifest,
		Loader: LoaderConfig{
			Strategy: loader.Waterfall.String(),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "outlet",
		},
		Tracing: TracingConfig{
			TracerName: "outlet",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
			Prefix:  datacache.DefaultRedisPrefix,
			TTL:     DefaultCacheTTL.String(),
		},
		ShutdownTimeout: DefaultShutdownTimeout.String(),
	}
}

// Load reads outlet.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills fields that were explicitly emptied in the file.
func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Loader.Strategy == "" {
		c.Loader.Strategy = loader.Waterfall.String()
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "outlet"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "outlet"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = datacache.DefaultRedisPrefix
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL.String()
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout.String()
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := loader.ParseStrategy(c.Loader.Strategy); err != nil {
		return errors.New("E102").
			Wrap(err).
			WithSuggestion(`Set "loader.strategy" to "waterfall" or "parallel"`)
	}
	if c.Loader.Concurrency < 0 {
		return errors.New("E103")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.New("E105").Wrap(err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E105").
			WithSuggestion(`Set "log.format" to "text" or "json"`)
	}
	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.Addr == "" {
			return errors.New("E106").
				WithSuggestion(`Set "cache.addr", e.g. "localhost:6379"`)
		}
	default:
		return errors.New("E104")
	}
	if _, err := c.CacheTTL(); err != nil {
		return errors.Newf(errors.CategoryConfig, "invalid cache.ttl %q", c.Cache.TTL).Wrap(err)
	}
	if _, err := c.ShutdownDuration(); err != nil {
		return errors.Newf(errors.CategoryConfig, "invalid shutdownTimeout %q", c.ShutdownTimeout).Wrap(err)
	}
	return nil
}

// Strategy returns the parsed loader strategy.
func (c *Config) Strategy() loader.Strategy {
	s, err := loader.ParseStrategy(c.Loader.Strategy)
	if err != nil {
		return loader.Waterfall
	}
	return s
}

// CacheTTL returns the parsed cache TTL.
func (c *Config) CacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// ShutdownDuration returns the parsed shutdown timeout.
func (c *Config) ShutdownDuration() (time.Duration, error) {
	return time.ParseDuration(c.ShutdownTimeout)
}

// ManifestPath returns the absolute manifest path.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.Dir(), c.Manifest)
}
