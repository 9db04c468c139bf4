package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imamik/hcloud-runner/cmd/hcloud-runner/handlers"
	"github.com/imamik/hcloud-runner/internal/config"
)

// Delete returns the delete command.
//
// The server is deleted before the runner is deregistered.
func Delete(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete a runner server and deregister its runner",
		Long: `Delete removes the Hetzner Cloud server and then deregisters the runner
with the given name from the repository. Server deletion is retried until
it succeeds or the delete-wait budget is spent.

Example:
  hcloud-runner delete --name gh-runner-1a2b3c4d --server-id 4711

WARNING: This operation is irreversible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v.Set(config.KeyMode, string(config.ModeDelete))
			return handlers.Run(cmd.Context(), v)
		},
	}
}
