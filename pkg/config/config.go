package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Raphcal/localserver/pkg/engine"
	"github.com/Raphcal/localserver/pkg/localserver"
	"github.com/Raphcal/localserver/pkg/logging"
)

// Value sources recorded in Config.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// DefaultPort is the port served when none is configured.
const DefaultPort = 8080

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full localserver configuration.
type Config struct {
	Port           int           `yaml:"port" json:"port"`
	Host           string        `yaml:"host" json:"host"`
	Root           string        `yaml:"root" json:"root"`
	Implementation string        `yaml:"implementation" json:"implementation"`
	RandomPort     bool          `yaml:"randomPort" json:"randomPort"`
	Retries        int           `yaml:"retries" json:"retries"`
	PollTimeout    time.Duration `yaml:"pollTimeout" json:"pollTimeout"`
	StopAfter      time.Duration `yaml:"stopAfter" json:"stopAfter"`
	MaxConnections int           `yaml:"maxConnections" json:"maxConnections"`
	Exclude        []string      `yaml:"exclude" json:"exclude"`
	Log            LogConfig     `yaml:"log" json:"log"`

	// Sources maps a yaml key to the layer that last set it.
	Sources map[string]string `yaml:"-" json:"-"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level     string `yaml:"level" json:"level"`
	Format    string `yaml:"format" json:"format"`
	File      string `yaml:"file" json:"file"`
	AddSource bool   `yaml:"addSource" json:"addSource"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		Root:           ".",
		Implementation: localserver.ImplementationLocal.String(),
		Retries:        localserver.DefaultRetries,
		PollTimeout:    engine.BoundedPollTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Sources: make(map[string]string),
	}
}

// Set records that key was set by source.
func (c *Config) Set(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// Source returns the layer that last set key.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.StopAfter < 0 {
		errs = append(errs, fmt.Errorf("stopAfter must not be negative, got %s", c.StopAfter))
	}
	if c.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("maxConnections must not be negative, got %d", c.MaxConnections))
	}
	if _, err := localserver.ParseImplementation(c.Implementation); err != nil {
		errs = append(errs, err)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("exclude pattern %q is malformed", pattern))
		}
	}
	switch c.Log.Format {
	case "", string(logging.FormatText), string(logging.FormatJSON):
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ImplementationValue returns the parsed implementation.
func (c *Config) ImplementationValue() localserver.Implementation {
	impl, _ := localserver.ParseImplementation(c.Implementation)
	return impl
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	cfg.File = c.Log.File
	cfg.AddSource = c.Log.AddSource
	return cfg
}
