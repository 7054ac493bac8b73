package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Raphcal/localserver/pkg/config"
)

// configFlags are the flags shared by every command reading the
// configuration. Only flags set on the command line override the
// file and environment layers.
type configFlags struct {
	configPath     string
	port           int
	host           string
	root           string
	implementation string
	randomPort     bool
	retries        int
	pollTimeout    time.Duration
	stopAfter      time.Duration
	maxConnections int
	exclude        []string
	logLevel       string
	logFormat      string
	logFile        string
}

func (f *configFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML configuration file")
	fs.IntVarP(&f.port, "port", "p", def.Port, "Port to listen on")
	fs.StringVar(&f.host, "host", def.Host, "Address to bind (default: all interfaces)")
	fs.StringVarP(&f.root, "root", "r", def.Root, "Directory to serve")
	fs.StringVarP(&f.implementation, "implementation", "i", def.Implementation, "Server implementation (local, host)")
	fs.BoolVar(&f.randomPort, "random-port", def.RandomPort, "Pick a random port and probe it")
	fs.IntVar(&f.retries, "retries", def.Retries, "Attempts made by --random-port")
	fs.DurationVar(&f.pollTimeout, "poll-timeout", def.PollTimeout, "Readiness wait of the local engine (negative waits forever)")
	fs.DurationVar(&f.stopAfter, "stop-after", def.StopAfter, "Stop serving after this duration (0 serves until interrupted)")
	fs.IntVar(&f.maxConnections, "max-connections", def.MaxConnections, "Concurrent connection cap of the host implementation (0 for none)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Glob of paths to hide (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", def.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", def.Log.Format, "Log format (text, json)")
	fs.StringVar(&f.logFile, "log-file", def.Log.File, "Also append JSON logs to this file")
}

// resolve layers defaults, the configuration file, the environment and the
// flags. It returns the configuration and the file it was read from.
func (f *configFlags) resolve(cmd *cobra.Command) (*config.Config, string, error) {
	if err := config.LoadEnvFile(config.EnvFileName); err != nil {
		return nil, "", err
	}

	cfg := config.Default()
	path := f.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindLocal(wd)
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, "", err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, "", err
	}

	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (f *configFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := func(flag, key string) bool {
		if !cmd.Flags().Changed(flag) {
			return false
		}
		cfg.Set(key, config.SourceFlag)
		return true
	}

	if changed("port", "port") {
		cfg.Port = f.port
	}
	if changed("host", "host") {
		cfg.Host = f.host
	}
	if changed("root", "root") {
		cfg.Root = f.root
	}
	if changed("implementation", "implementation") {
		cfg.Implementation = f.implementation
	}
	if changed("random-port", "randomPort") {
		cfg.RandomPort = f.randomPort
	}
	if changed("retries", "retries") {
		cfg.Retries = f.retries
	}
	if changed("poll-timeout", "pollTimeout") {
		cfg.PollTimeout = f.pollTimeout
	}
	if changed("stop-after", "stopAfter") {
		cfg.StopAfter = f.stopAfter
	}
	if changed("max-connections", "maxConnections") {
		cfg.MaxConnections = f.maxConnections
	}
	if changed("exclude", "exclude") {
		cfg.Exclude = f.exclude
	}
	if changed("log-level", "log.level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format", "log.format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("log-file", "log.file") {
		cfg.Log.File = f.logFile
	}
}
