// Package config loads co2focus settings from ~/.co2focus/config.yaml and the
// environment. Defaults cover every field, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/co2focus/internal/cache"
	"github.com/rshade/co2focus/internal/logging"
	"github.com/rshade/co2focus/internal/projection"
)

// Environment variables read by New.
const (
	EnvHome         = "CO2FOCUS_HOME"
	EnvData         = "CO2FOCUS_DATA"
	EnvModel        = "CO2FOCUS_MODEL"
	EnvLogLevel     = "CO2FOCUS_LOG_LEVEL"
	EnvLogFormat    = "CO2FOCUS_LOG_FORMAT"
	EnvOutputFormat = "CO2FOCUS_OUTPUT_FORMAT"
	EnvCacheEnabled = "CO2FOCUS_CACHE_ENABLED"
	EnvCacheTTL     = "CO2FOCUS_CACHE_TTL"
)

// Defaults.
const (
	DefaultCSVPath         = "owid-co2-data.csv"
	DefaultModelPath       = "model.pb"
	DefaultTargetYear      = 2030
	DefaultOutputFormat    = "table"
	DefaultPrecision       = 2
	DefaultLogLevel        = "info"
	DefaultServerAddr      = ":8050"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second

	configFileName = "config.yaml"
	cacheDirName   = "cache"
	maxPrecision   = 6
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full co2focus configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Projection ProjectionConfig `yaml:"projection"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`

	configPath string
}

// DataConfig locates the two input files.
type DataConfig struct {
	CSVPath   string `yaml:"csv_path"`
	ModelPath string `yaml:"model_path"`
}

// ProjectionConfig bounds the target year control.
type ProjectionConfig struct {
	FromYear    int `yaml:"from_year"`
	DefaultYear int `yaml:"default_year"`
	MinYear     int `yaml:"min_year"`
	MaxYear     int `yaml:"max_year"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// CacheConfig controls the parsed-dataset cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), ".co2focus")
	}
	return &Config{
		Data: DataConfig{
			CSVPath:   DefaultCSVPath,
			ModelPath: DefaultModelPath,
		},
		Projection: ProjectionConfig{
			FromYear:    projection.DefaultFromYear,
			DefaultYear: DefaultTargetYear,
			MinYear:     projection.MinTargetYear,
			MaxYear:     projection.MaxTargetYear,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutputFormat,
			Precision:     DefaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: logging.FormatConsole,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Directory:  filepath.Join(dir, cacheDirName),
			TTLSeconds: cache.DefaultTTLSeconds,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		configPath: filepath.Join(dir, configFileName),
	}
}

// Load builds the configuration: defaults, then the config file if present,
// then environment overrides.
func Load() (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(cfg.configPath); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, cfg.configPath); mergeErr != nil {
			return cfg, mergeErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("checking config file: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// New is Load that falls back to defaults plus environment when the file is unreadable.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		cfg = Default()
		cfg.ApplyEnv()
	}
	return cfg
}

// ApplyEnv overrides fields from CO2FOCUS_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvData); v != "" {
		c.Data.CSVPath = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Data.ModelPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvOutputFormat); v != "" {
		c.Output.DefaultFormat = v
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	// Seconds or a Go duration; invalid values leave the file setting in place.
	if v := os.Getenv(EnvCacheTTL); v != "" {
		if ttl, err := cache.ParseTTL(v); err == nil {
			c.Cache.TTLSeconds = ttl
		}
	}
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// Validate checks every section and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Data.CSVPath) == "" {
		add("data.csv_path is required")
	}
	if strings.TrimSpace(c.Data.ModelPath) == "" {
		add("data.model_path is required")
	}

	p := c.Projection
	if p.MinYear > p.MaxYear {
		add("projection.min_year %d is after max_year %d", p.MinYear, p.MaxYear)
	}
	if p.FromYear > p.MinYear {
		add("projection.from_year %d is after min_year %d", p.FromYear, p.MinYear)
	} else if p.MinYear <= p.MaxYear {
		if err := projection.ValidateRange(p.FromYear, p.MaxYear); err != nil {
			add("projection.from_year: %v", err)
		}
	}
	if p.DefaultYear < p.MinYear || p.DefaultYear > p.MaxYear {
		add("projection.default_year %d not in [%d, %d]", p.DefaultYear, p.MinYear, p.MaxYear)
	}

	if !slices.Contains([]string{"table", "json", "ndjson"}, c.Output.DefaultFormat) {
		add("output.default_format %q must be table, json or ndjson", c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		add("output.precision %d not in [0, %d]", c.Output.Precision, maxPrecision)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		add("logging.level %q is not a log level", c.Logging.Level)
	}
	if c.Logging.Format != logging.FormatConsole && c.Logging.Format != logging.FormatJSON {
		add("logging.format %q must be console or json", c.Logging.Format)
	}

	if c.Cache.Enabled {
		if c.Cache.Directory == "" {
			add("cache.directory is required when the cache is enabled")
		}
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			add("cache.ttl_seconds: %v", err)
		}
	}

	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"read_timeout", c.Server.ReadTimeout},
		{"write_timeout", c.Server.WriteTimeout},
		{"shutdown_timeout", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			add("server.%s must be positive", t.name)
		}
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML to Path.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
