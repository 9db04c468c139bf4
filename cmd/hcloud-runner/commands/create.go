package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imamik/hcloud-runner/cmd/hcloud-runner/handlers"
	"github.com/imamik/hcloud-runner/internal/config"
)

// Create returns the create command.
func Create(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a server and wait for its runner to register",
		Long: `Create requests a registration token, creates a Hetzner Cloud server whose
cloud-init installs and starts the Actions runner, and waits until the
server is running and the runner shows up in the repository.

The label and server_id outputs are written as soon as the server exists,
so a later delete step can clean up even when a wait times out.

Example:
  hcloud-runner create --github-repository octo/app --server-type cx32`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v.Set(config.KeyMode, string(config.ModeCreate))
			return handlers.Run(cmd.Context(), v)
		},
	}
}
