package cli

import (
	"github.com/spf13/cobra"
	"github.com/vk/tabflow/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string
}

// NewRootCommand creates the root command for the tabflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tabflow",
		Short: "tabflow - declarative tabular data pipelines",
		Long: `Runs data pipelines described in HCL. A pipeline chains blocks that
extract files, interpret them as sheets and tables, and load the result
into a database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := app.DefaultConfig()
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", defaults.LogLevel, "logging level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", defaults.LogFormat, "log output format (text|json)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file; explicitly set flags override it")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))

	return cmd
}

// baseConfig returns the defaults overlaid with the config file, if any,
// and then with the global flags the user set explicitly.
func baseConfig(cmd *cobra.Command, opts *RootOptions) (app.Config, error) {
	cfg := app.DefaultConfig()
	if opts.ConfigPath != "" {
		if err := app.LoadConfigFile(opts.ConfigPath, &cfg); err != nil {
			return cfg, &ExitError{Code: ExitUsage, Message: "invalid config file", Err: err}
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.LogFormat
	}
	return cfg, nil
}
