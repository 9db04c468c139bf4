// Package commands defines the CLI command structure and flag bindings.
//
// Every action input is available as a persistent flag bound to the same
// viper key as its INPUT_<KEY> environment variable. Command execution is
// delegated to handler functions in the handlers package.
package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/hcloud-runner/cmd/hcloud-runner/handlers"
	"github.com/imamik/hcloud-runner/internal/config"
)

// inputFlags lists the inputs exposed as flags, in help order.
var inputFlags = []struct {
	key   string
	usage string
}{
	{config.KeyName, "Runner and server name (generated in create mode when empty)"},
	{config.KeyServerID, "Server ID to delete (delete mode)"},
	{config.KeyImage, "Server image name"},
	{config.KeyLocation, "Hetzner Cloud location"},
	{config.KeyServerType, "Hetzner Cloud server type"},
	{config.KeyEnableIPv4, "Attach a public IPv4 address (true|false)"},
	{config.KeyEnableIPv6, "Attach a public IPv6 address (true|false)"},
	{config.KeyNetwork, "Network ID to attach, or null"},
	{config.KeySSHKey, "SSH key ID to install, or null"},
	{config.KeyVolume, "Volume ID to attach, or null"},
	{config.KeyPrimaryIPv4, "Primary IPv4 ID to assign, or null"},
	{config.KeyPrimaryIPv6, "Primary IPv6 ID to assign, or null"},
	{config.KeyRunnerDir, "Runner installation directory on the server"},
	{config.KeyRunnerVersion, "Actions runner version, latest or skip"},
	{config.KeyPreRunnerScript, "Shell script executed before the runner is installed"},
	{config.KeyCreateWait, "Server creation attempts"},
	{config.KeyDeleteWait, "Server deletion attempts"},
	{config.KeyServerWait, "Server status polls until running"},
	{config.KeyRunnerWait, "Runner list polls until registered"},
	{config.KeyPollInterval, "Delay between attempts"},
	{config.KeyGitHubToken, "GitHub token with administration rights on the repository"},
	{config.KeyHCloudToken, "Hetzner Cloud API token"},
	{config.KeyHCloudEndpoint, "Hetzner Cloud API endpoint"},
	{config.KeyCloudInitTemplate, "Path to a cloud-init template replacing the embedded one"},
	{config.KeyMetricsFile, "Write Prometheus metrics to this file"},
	{config.KeyLogLevel, "Log level (debug, info, warn, error)"},
	{config.KeyGitHubRepository, "Repository in owner/repo form"},
	{config.KeyGitHubServerURL, "GitHub server URL"},
	{config.KeyGitHubAPIURL, "GitHub REST API URL"},
}

// FlagName returns the command-line flag for an input key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Root returns the root command for the hcloud-runner CLI.
//
// Run without a subcommand, it reads the mode input and behaves like the
// matching subcommand. This is how the GitHub Action invokes it.
func Root() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "hcloud-runner",
		Short: "Run GitHub Actions jobs on ephemeral Hetzner Cloud servers",
		Long: `hcloud-runner creates a Hetzner Cloud server that registers itself as a
self-hosted GitHub Actions runner, and deletes it again afterwards.

Every flag can also be set through its INPUT_<NAME> environment variable,
e.g. --create-wait and INPUT_CREATE_WAIT.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(FlagName(config.KeyMode), "", "Operation mode (create|delete)")
	_ = v.BindPFlag(config.KeyMode, flags.Lookup(FlagName(config.KeyMode)))
	for _, f := range inputFlags {
		flags.String(FlagName(f.key), "", f.usage)
		_ = v.BindPFlag(f.key, flags.Lookup(FlagName(f.key)))
	}

	cmd.AddCommand(Create(v))
	cmd.AddCommand(Delete(v))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
