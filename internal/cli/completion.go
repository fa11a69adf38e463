package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/config"
)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for your shell. Board commands complete
board names from the configured board store.`,
		Example: `  source <(heightcompare completion bash)
  heightcompare completion zsh > "${fpath[1]}/_heightcompare"
  heightcompare completion fish > ~/.config/fish/completions/heightcompare.fish
  heightcompare completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(stdout)
				}
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, !noDesc)
			default:
				if noDesc {
					return root.GenPowerShellCompletion(stdout)
				}
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit completion descriptions")

	return cmd
}

// completeBoardArgs attaches board-name completion to every command whose
// first argument is a board.
func (c *CLI) completeBoardArgs(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		if strings.HasPrefix(cmd.Use, cmd.Name()+" <board>") && cmd.ValidArgsFunction == nil && len(cmd.ValidArgs) == 0 {
			cmd.ValidArgsFunction = c.completeBoards
		}
	}
}

// completeBoards completes the first argument with stored board names.
// Completion skips the root's setup, so the config is loaded here.
func (c *CLI) completeBoards(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cfg, err := config.Load(c.configPath); err == nil {
		c.Config = cfg
	}
	store, err := c.openBoards(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()
	list, err := store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name+"\t"+b.ID)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
