package games

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
)

// NewGetCommand creates the get command.
func NewGetCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		GroupID: "core",
		Short:   "Show a single game",
		Example: `  mathflix get fraction-pizza
  mathflix get 1718000000000 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(ctx context.Context, mf mathflix.Client) error {
				record, err := mf.Game(ctx, args[0])
				if err != nil {
					return err
				}
				return output.WriteGame(cmd.OutOrStdout(), format(app), record)
			})
		},
	}
}
