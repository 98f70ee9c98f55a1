package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/inkwell/cmd/inkwell/cmd/catalog"
	"github.com/agentstation/inkwell/cmd/inkwell/cmd/collection"
	"github.com/agentstation/inkwell/cmd/inkwell/cmd/refresh"
	"github.com/agentstation/inkwell/cmd/inkwell/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Collection commands
	rootCmd.AddCommand(collection.NewProgressCommand(a))
	rootCmd.AddCommand(collection.NewOwnCommand(a))
	rootCmd.AddCommand(collection.NewWishCommand(a))
	rootCmd.AddCommand(collection.NewWishlistCommand(a))

	// Catalog commands
	rootCmd.AddCommand(catalog.NewSetsCommand(a))
	rootCmd.AddCommand(catalog.NewCardsCommand(a))
	rootCmd.AddCommand(catalog.NewSearchCommand(a))
	rootCmd.AddCommand(refresh.NewRefreshCommand(a))
	rootCmd.AddCommand(refresh.NewCheckCommand(a))

	// Utility commands
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "inkwell %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
				fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
