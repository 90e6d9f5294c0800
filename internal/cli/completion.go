package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgnorm/pkg/pipeline"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for pkgnorm and print it to stdout.

Examples:
  source <(pkgnorm completion bash)
  pkgnorm completion zsh > "${fpath[1]}/_pkgnorm"
  pkgnorm completion fish > ~/.config/fish/completions/pkgnorm.fish
  pkgnorm completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeSources completes the source name, then falls back to file names
// for the input path.
func completeSources(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return pipeline.ValidSources(), cobra.ShellCompDirectiveNoFileComp
}
