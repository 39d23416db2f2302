// Package cli wires the cobra command tree over the application container.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kaelos/kael-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	askCmd := newAskCommand(container)

	root := &cobra.Command{
		Use:   "kael [prompt]",
		Short: "Kael - multi-provider AI assistant engine",
		Long:  "Kael answers prompts through an ordered chain of AI providers, falling back from local inference to cloud backends.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetArgs(args)
			return askCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(askCmd)
	root.AddCommand(newKeysCommand(container))
	root.AddCommand(newProvidersCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newWarmupCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
