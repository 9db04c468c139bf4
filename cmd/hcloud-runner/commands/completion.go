package commands

import "github.com/spf13/cobra"

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for hcloud-runner.

To load completions:

Bash:
  $ source <(hcloud-runner completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ hcloud-runner completion bash > /etc/bash_completion.d/hcloud-runner
  # macOS:
  $ hcloud-runner completion bash > $(brew --prefix)/etc/bash_completion.d/hcloud-runner

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ hcloud-runner completion zsh > "${fpath[1]}/_hcloud-runner"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ hcloud-runner completion fish | source
  # To load completions for each session, execute once:
  $ hcloud-runner completion fish > ~/.config/fish/completions/hcloud-runner.fish

PowerShell:
  PS> hcloud-runner completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> hcloud-runner completion powershell > hcloud-runner.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
	return cmd
}
