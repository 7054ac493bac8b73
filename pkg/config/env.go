package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvPort           = "LOCALSERVER_PORT"
	EnvHost           = "LOCALSERVER_HOST"
	EnvRoot           = "LOCALSERVER_ROOT"
	EnvImplementation = "LOCALSERVER_IMPLEMENTATION"
	EnvRandomPort     = "LOCALSERVER_RANDOM_PORT"
	EnvRetries        = "LOCALSERVER_RETRIES"
	EnvPollTimeout    = "LOCALSERVER_POLL_TIMEOUT"
	EnvStopAfter      = "LOCALSERVER_STOP_AFTER"
	EnvMaxConnections = "LOCALSERVER_MAX_CONNECTIONS"
	EnvExclude        = "LOCALSERVER_EXCLUDE"
	EnvConfig         = "LOCALSERVER_CONFIG"
	EnvLogLevel       = "LOCALSERVER_LOG_LEVEL"
	EnvLogFormat      = "LOCALSERVER_LOG_FORMAT"
	EnvLogFile        = "LOCALSERVER_LOG_FILE"
)

// EnvFileName is the dotenv file read by LoadEnvFile.
const EnvFileName = ".env"

// LoadEnvFile loads path into the process environment when the file exists.
// Variables already set are left untouched.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadEnv applies LOCALSERVER_* variables to c. Only variables present in
// the environment are applied; malformed values are reported together.
func (c *Config) LoadEnv() error {
	var errs []error

	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
			c.Set("port", SourceEnv)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPort, err))
		}
	}
	if v, ok := os.LookupEnv(EnvHost); ok {
		c.Host = v
		c.Set("host", SourceEnv)
	}
	if v := os.Getenv(EnvRoot); v != "" {
		c.Root = v
		c.Set("root", SourceEnv)
	}
	if v := os.Getenv(EnvImplementation); v != "" {
		c.Implementation = v
		c.Set("implementation", SourceEnv)
	}
	if v := os.Getenv(EnvRandomPort); v != "" {
		c.RandomPort = parseBool(v)
		c.Set("randomPort", SourceEnv)
	}
	if v := os.Getenv(EnvRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retries = n
			c.Set("retries", SourceEnv)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRetries, err))
		}
	}
	if v := os.Getenv(EnvPollTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollTimeout = d
			c.Set("pollTimeout", SourceEnv)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPollTimeout, err))
		}
	}
	if v := os.Getenv(EnvStopAfter); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StopAfter = d
			c.Set("stopAfter", SourceEnv)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvStopAfter, err))
		}
	}
	if v := os.Getenv(EnvMaxConnections); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConnections = n
			c.Set("maxConnections", SourceEnv)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxConnections, err))
		}
	}
	if v := os.Getenv(EnvExclude); v != "" {
		c.Exclude = splitList(v)
		c.Set("exclude", SourceEnv)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
		c.Set("log.level", SourceEnv)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = strings.ToLower(v)
		c.Set("log.format", SourceEnv)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
		c.Set("log.file", SourceEnv)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
