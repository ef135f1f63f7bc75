package games

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
)

// NewViewCommand creates the view command, which records one play of a game.
func NewViewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "view <id>",
		GroupID: "core",
		Short:   "Increment the view count of a game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(ctx context.Context, mf mathflix.Client) error {
				views, err := mf.IncrementViews(ctx, args[0])
				if err != nil {
					return err
				}

				f := format(app)
				if f.IsTable() {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d views\n", args[0], views)
					return err
				}
				return output.NewFormatter(f).Format(cmd.OutOrStdout(), map[string]any{
					"id":    args[0],
					"views": views,
				})
			})
		},
	}
}
