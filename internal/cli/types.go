package cli

import (
	"github.com/spf13/cobra"
	"github.com/vk/tabflow/internal/app"
)

// NewTypesCommand creates the types command, which documents every block
// and constraint type the interpreter knows.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "Print the block and constraint types as HCL",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := baseConfig(cmd, rootOpts)
			if err != nil {
				return err
			}
			// No pipeline is loaded; only the logging settings matter.
			cfg.PipelinePath = "-"
			if _, err := app.NewConfig(cfg); err != nil {
				return usageError("%v", err)
			}
			// Logs go to stderr so the documentation can be redirected as is.
			a := app.NewApp(cmd.ErrOrStderr(), &cfg)
			return a.WriteTypes(cmd.OutOrStdout())
		},
	}
}
