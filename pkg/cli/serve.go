package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Raphcal/localserver/pkg/cli/internal/output"
	"github.com/Raphcal/localserver/pkg/config"
	"github.com/Raphcal/localserver/pkg/index"
	"github.com/Raphcal/localserver/pkg/localserver"
	"github.com/Raphcal/localserver/pkg/logging"
)

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	configFlags
	printURL bool
}

func newServeCommand() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve a directory",
		Long: `Serve a directory over HTTP/1.1.

GET requests answer with the file at the requested path, or with an HTML
listing for directories. Paths matching an --exclude glob are hidden and
answered with 404. The server runs until SIGINT/SIGTERM or --stop-after.`,
		Example: `  # Serve the working directory on port 8080
  localserver serve

  # Serve ./public on a random port and print its URL
  localserver serve ./public --random-port --print-url

  # Hide VCS metadata and private keys
  localserver serve --exclude '.git/**' --exclude '**/*.key'

  # Use the net/http implementation and stop after a minute
  localserver serve -i host --stop-after 1m`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, f)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.printURL, "print-url", false, "Print the base URL on stdout once serving")
	return cmd
}

func runServe(cmd *cobra.Command, args []string, f *serveFlags) error {
	cfg, path, err := f.resolve(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Root = args[0]
		cfg.Set("root", config.SourceFlag)
	}

	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	log, closer, err := logging.Open(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	if path != "" {
		log.Debug("configuration loaded", "path", path)
	}

	handler, err := index.New(cfg.Root, index.WithExclude(cfg.Exclude...), index.WithLogger(log))
	if err != nil {
		return err
	}

	opts := []localserver.Option{
		localserver.WithLogger(log),
		localserver.WithHost(cfg.Host),
		localserver.WithPollTimeout(cfg.PollTimeout),
		localserver.WithRetries(cfg.Retries),
		localserver.WithMaxConnections(cfg.MaxConnections),
	}
	// A random port alternates implementations unless one was chosen.
	if !cfg.RandomPort || cfg.Source("implementation") != config.SourceDefault {
		opts = append(opts, localserver.WithImplementation(cfg.ImplementationValue()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *localserver.LocalServer
	if cfg.RandomPort {
		srv, err = localserver.StartOnRandomPort(ctx, handler, opts...)
	} else {
		srv, err = localserver.New(cfg.Port, handler, opts...)
		if err == nil {
			err = srv.Start()
		}
	}
	if err != nil {
		return err
	}

	if cfg.MaxConnections > 0 && srv.Implementation() == localserver.ImplementationLocal {
		output.Warn(cmd.ErrOrStderr(), "maxConnections=%d is ignored by the local implementation", cfg.MaxConnections)
	}

	log.Info("serving directory",
		"root", handler.Root(),
		"endpoint", srv.Addr(),
		"implementation", srv.Implementation().String(),
	)
	if f.printURL {
		fmt.Fprintf(cmd.OutOrStdout(), "http://%s/\n", srv.Addr())
	}

	if cfg.StopAfter > 0 {
		srv.StopAfter(cfg.StopAfter)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.StopAfter)
		defer cancel()
	}
	<-ctx.Done()

	return srv.Stop()
}
