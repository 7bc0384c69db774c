package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(cosmosctl completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ cosmosctl completion bash > /etc/bash_completion.d/cosmosctl
  # macOS:
  $ cosmosctl completion bash > /usr/local/etc/bash_completion.d/cosmosctl

Zsh:
  $ autoload -U compinit; compinit
  $ source <(cosmosctl completion zsh)
  # To load completions for each session, add to your ~/.zshrc:
  $ cosmosctl completion zsh > "${fpath[1]}/_cosmosctl"
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmd.Help()
			}
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			default:
				return cmd.Help()
			}
		},
	}
	return cmd
}
