package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/internal/config"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
	"github.com/matzehuels/entitydiagram/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for entitydiagram.

Bash:
  $ source <(entitydiagram completion bash)

Zsh:
  $ entitydiagram completion zsh > "${fpath[1]}/_entitydiagram"

Fish:
  $ entitydiagram completion fish | source

PowerShell:
  PS> entitydiagram completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func completeBackends(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return append(overlay.Backends[:len(overlay.Backends):len(overlay.Backends)], config.BackendAPI), cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
