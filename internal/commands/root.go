package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/settle/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "settle",
		Short:   "Apply client transaction feeds and report account balances",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
