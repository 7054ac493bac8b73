package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raphcal/localserver/pkg/localserver"
	"github.com/Raphcal/localserver/pkg/logging"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================================
// Defaults and validation
// ============================================================================

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "local", cfg.Implementation)
	assert.Equal(t, localserver.DefaultRetries, cfg.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.PollTimeout)
	assert.Equal(t, SourceDefault, cfg.Source("port"))
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"negative port", func(c *Config) { c.Port = -1 }},
		{"negative retries", func(c *Config) { c.Retries = -2 }},
		{"negative stopAfter", func(c *Config) { c.StopAfter = -time.Second }},
		{"negative maxConnections", func(c *Config) { c.MaxConnections = -1 }},
		{"unknown implementation", func(c *Config) { c.Implementation = "tomcat" }},
		{"bad pattern", func(c *Config) { c.Exclude = []string{"[oops"} }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Implementation = "HOST"
	cfg.Log = LogConfig{Level: "debug", Format: "json", File: "/tmp/x.log", AddSource: true}

	assert.Equal(t, localserver.ImplementationHost, cfg.ImplementationValue())

	lc := cfg.Logging()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.Equal(t, "/tmp/x.log", lc.File)
	assert.True(t, lc.AddSource)
}

// ============================================================================
// File loading
// ============================================================================

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "server.yaml", `
port: 9000
root: ./public
implementation: host
pollTimeout: 100ms
stopAfter: 1m
exclude:
  - ".git/**"
  - "**/*.key"
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "./public", cfg.Root)
	assert.Equal(t, "host", cfg.Implementation)
	assert.Equal(t, 100*time.Millisecond, cfg.PollTimeout)
	assert.Equal(t, time.Minute, cfg.StopAfter)
	assert.Equal(t, []string{".git/**", "**/*.key"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep their default")
	assert.Equal(t, localserver.DefaultRetries, cfg.Retries)

	assert.Equal(t, SourceFile, cfg.Source("port"))
	assert.Equal(t, SourceFile, cfg.Source("log.level"))
	assert.Equal(t, SourceDefault, cfg.Source("log.format"))
	assert.Equal(t, SourceDefault, cfg.Source("retries"))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "empty.yaml", ""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("syntax", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "bad.yaml", "port: [1, 2"))
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})

	t.Run("duration as integer", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "int.yaml", "pollTimeout: 250\n"))
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		_, err := Load(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, "range.yaml", "port: 123456\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestToYAML_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.StopAfter = 90 * time.Second
	cfg.Exclude = []string{"*.tmp"}

	data, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "stopAfter: 1m30s")

	loaded, err := Load(writeConfig(t, "out.yaml", string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg.StopAfter, loaded.StopAfter)
	assert.Equal(t, cfg.Exclude, loaded.Exclude)
	assert.Equal(t, cfg.PollTimeout, loaded.PollTimeout)
}

func TestFindLocal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Empty(t, FindLocal(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, LocalFileName), []byte("port: 1\n"), 0o644))
	assert.Equal(t, filepath.Join(dir, LocalFileName), FindLocal(dir))
}

// ============================================================================
// Environment
// ============================================================================

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvRandomPort, "yes")
	t.Setenv(EnvPollTimeout, "-1s")
	t.Setenv(EnvExclude, " .git/** , *.key ,")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvMaxConnections, "4")

	cfg := Default()
	require.NoError(t, cfg.LoadEnv())

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.True(t, cfg.RandomPort)
	assert.Equal(t, -time.Second, cfg.PollTimeout)
	assert.Equal(t, []string{".git/**", "*.key"}, cfg.Exclude)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.MaxConnections)
	assert.Equal(t, SourceEnv, cfg.Source("port"))
	assert.Equal(t, SourceEnv, cfg.Source("log.format"))
	assert.Equal(t, SourceDefault, cfg.Source("root"))
}

func TestLoadEnv_Malformed(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	t.Setenv(EnvStopAfter, "soon")

	cfg := Default()
	err := cfg.LoadEnv()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), EnvPort)
	assert.Contains(t, err.Error(), EnvStopAfter)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "LOCALSERVER_TEST_DOTENV_ROOT"
	t.Setenv(EnvRoot, "")
	require.NoError(t, os.Unsetenv(EnvRoot))
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := writeConfig(t, ".env", EnvRoot+"=/srv/www\n"+key+"=yes\n")
	require.NoError(t, LoadEnvFile(path))
	t.Cleanup(func() {
		_ = os.Unsetenv(EnvRoot)
		_ = os.Unsetenv(key)
	})

	assert.Equal(t, "yes", os.Getenv(key))

	cfg := Default()
	require.NoError(t, cfg.LoadEnv())
	assert.Equal(t, "/srv/www", cfg.Root)

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadEnvFile_KeepsExisting(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, ".env", EnvLogLevel+"=debug\n")
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "warn", os.Getenv(EnvLogLevel))
}
