package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Raphcal/localserver/pkg/cli/internal/output"
	"github.com/Raphcal/localserver/pkg/config"
)

// ConfigOutput is the --json form of the config command.
type ConfigOutput struct {
	File    string            `json:"file,omitempty"`
	Config  *config.Config    `json:"config"`
	Sources map[string]string `json:"sources"`
}

func newConfigCommand(root *rootFlags) *cobra.Command {
	f := &configFlags{}
	var showSources bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Display the configuration serve would use after applying, in order,
the defaults, the configuration file, .env and LOCALSERVER_* variables,
and the flags given to this command.`,
		Example: `  # Show effective configuration as YAML
  localserver config

  # Show where each value came from
  localserver config --sources -c ./server.yaml --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return printConfig(cmd, cfg, path, showSources, root.jsonOutput)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&showSources, "sources", false, "List the layer that set each value")
	return cmd
}

func printConfig(cmd *cobra.Command, cfg *config.Config, path string, showSources, jsonOutput bool) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		return output.JSON(w, ConfigOutput{File: path, Config: cfg, Sources: cfg.Sources})
	}

	if showSources {
		keys := make([]string, 0, len(cfg.Sources))
		for k := range cfg.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tw := output.Table(w)
		fmt.Fprintln(tw, "KEY\tSOURCE")
		for _, k := range keys {
			fmt.Fprintf(tw, "%s\t%s\n", k, cfg.Sources[k])
		}
		return tw.Flush()
	}

	data, err := cfg.ToYAML()
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(w, "# Loaded from: %s\n", path)
	}
	_, err = w.Write(data)
	return err
}
