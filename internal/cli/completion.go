package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/pkg/dataset"
)

// completionGenerators writes a completion script for each supported shell.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for jengatower.

Completions cover commands, flags and sort keys (e.g. --sort pagerank:asc).

  bash:        source <(jengatower completion bash)
  zsh:         jengatower completion zsh > "${fpath[1]}/_jengatower"
  fish:        jengatower completion fish | source
  powershell:  jengatower completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// sortKeys lists every metric:order combination.
func sortKeys() []string {
	keys := make([]string, 0, 2*len(dataset.Metrics))
	for _, m := range dataset.Metrics {
		keys = append(keys, m.Short()+":desc", m.Short()+":asc")
	}
	return keys
}

// completeSortKeys completes a --sort style flag.
func completeSortKeys(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return sortKeys(), cobra.ShellCompDirectiveNoFileComp
}
