package app

import (
	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix/cmd/mathflix/cmd/games"
	"github.com/ashkam58/mathflix/cmd/mathflix/cmd/reconcile"
	"github.com/ashkam58/mathflix/cmd/mathflix/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(games.NewListCommand(a))
	rootCmd.AddCommand(games.NewGetCommand(a))
	rootCmd.AddCommand(games.NewViewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(games.NewAddCommand(a))
	rootCmd.AddCommand(games.NewDeleteCommand(a))
	rootCmd.AddCommand(reconcile.NewCommand(a))

	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("mathflix %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
