package games

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// NewListCommand creates the list command.
func NewListCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List games in catalog order",
		Long: `List reconciles the catalog and prints every game: defined games first
in definition order, then games created by users.`,
		Example: `  mathflix list                       # All games
  mathflix list --category Coding     # One shelf
  mathflix list --premium=false       # Free games only
  mathflix list --query fraction -o json  # Search titles and topics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := parseFilter(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			return run(cmd, app, func(ctx context.Context, mf mathflix.Client) error {
				records, err := mf.Games(ctx)
				if err != nil {
					return err
				}

				filtered := filter.Apply(records)
				if limit > 0 && len(filtered) > limit {
					filtered = filtered[:limit]
				}

				f := format(app)
				if f.IsTable() {
					fmt.Fprintf(cmd.ErrOrStderr(), "Found %d games\n", len(filtered))
				}
				return output.WriteGames(cmd.OutOrStdout(), f, filtered)
			})
		},
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category (e.g. Math, Coding)")
	cmd.Flags().String("premium", "", "Filter by premium flag (true or false)")
	cmd.Flags().String("query", "", "Search titles, descriptions and topics")
	cmd.Flags().Int("limit", 0, "Maximum number of games to show (0 for all)")

	return cmd
}

// parseFilter builds a record filter from the list flags.
func parseFilter(cmd *cobra.Command) (catalogs.Filter, error) {
	var filter catalogs.Filter

	if s, _ := cmd.Flags().GetString("category"); s != "" {
		category, err := catalogs.ParseCategory(s)
		if err != nil {
			return filter, err
		}
		filter.Category = category
	}

	if s, _ := cmd.Flags().GetString("premium"); s != "" {
		premium, err := strconv.ParseBool(s)
		if err != nil {
			return filter, fmt.Errorf("invalid --premium value %q: %w", s, err)
		}
		filter.Premium = &premium
	}

	filter.Query, _ = cmd.Flags().GetString("query")
	return filter, nil
}
