package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/tabflow/internal/app"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Params      []string
	Pipeline    string
	Workers     int
	PreviewRows int
	EnvPrefix   string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}
	defaults := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run [pipeline-file]",
		Short: "Run the pipelines of an HCL file",
		Long: `Load an HCL pipeline file and run its pipelines.

Runtime parameters referenced with requires("NAME") are read from
environment variables carrying the parameter prefix and from -e flags.
The file may be omitted when the config file names it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runConfig(cmd, rootOpts, opts, args)
			if err != nil {
				return err
			}
			a := app.NewApp(cmd.OutOrStdout(), cfg)
			if err := a.Run(cmd.Context()); err != nil {
				return &ExitError{Code: ExitFailure, Message: "pipeline run failed", Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "e", nil, "runtime parameter NAME=VALUE (repeatable)")
	cmd.Flags().StringVarP(&opts.Pipeline, "pipeline", "p", "", "run only the named pipeline")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", defaults.WorkerCount, "number of blocks executed concurrently")
	cmd.Flags().IntVar(&opts.PreviewRows, "preview-rows", defaults.PreviewRows, "log the first N rows of every sheet and table (debug level)")
	cmd.Flags().StringVar(&opts.EnvPrefix, "env-prefix", defaults.EnvPrefix, "prefix of environment variables that supply runtime parameters")

	return cmd
}

func runConfig(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions, args []string) (*app.Config, error) {
	cfg, err := baseConfig(cmd, rootOpts)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.PipelinePath = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("pipeline") {
		cfg.Pipeline = opts.Pipeline
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = opts.Workers
	}
	if flags.Changed("preview-rows") {
		cfg.PreviewRows = opts.PreviewRows
	}
	if flags.Changed("env-prefix") {
		cfg.EnvPrefix = opts.EnvPrefix
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		merged := make(map[string]string, len(cfg.Params)+len(params))
		for k, v := range cfg.Params {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		cfg.Params = merged
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return validated, nil
}

// parseParams splits NAME=VALUE pairs. A later pair overrides an earlier
// one with the same name.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, usageError("invalid runtime parameter %q: expected NAME=VALUE", pair)
		}
		params[name] = value
	}
	return params, nil
}
