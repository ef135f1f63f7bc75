package games

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
)

// NewDeleteCommand creates the delete command. Only games created by
// users can be deleted; defined games are read-only.
func NewDeleteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		GroupID: "management",
		Short:   "Delete a user-created game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(ctx context.Context, mf mathflix.Client) error {
				if err := mf.DeleteGame(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return err
			})
		},
	}
}
