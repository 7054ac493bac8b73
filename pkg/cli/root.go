package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo is injected by main from ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// DefaultBuildInfo is used when main does not provide one.
var DefaultBuildInfo = BuildInfo{Version: "dev", Commit: "none", BuildDate: "unknown"}

// rootFlags holds the persistent flags.
type rootFlags struct {
	jsonOutput bool
}

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "localserver",
		Short: "localserver is a throwaway HTTP/1.1 server for local tests",
		Long: `localserver serves a directory over HTTP/1.1 with a small embeddable engine.

Configuration can be provided via flags, LOCALSERVER_* environment variables
(a .env file is read when present), or a YAML file. Without --config,
.localserver.yaml in the working directory is used when it exists.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}
	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCommand(),
		newFetchCommand(flags),
		newConfigCommand(flags),
		newVersionCommand(info, flags),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, info BuildInfo, args []string) int {
	root := NewRootCommand(info)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
