// Package reconcile provides the command that merges the catalog
// definitions into the stored snapshot.
package reconcile

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
	"github.com/ashkam58/mathflix/pkg/constants"
	reconciler "github.com/ashkam58/mathflix/pkg/reconcile"
)

// NewCommand creates the reconcile command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reconcile",
		Aliases: []string{"sync"},
		GroupID: "management",
		Short:   "Merge catalog definitions into the stored snapshot",
		Long: `Reconcile loads the catalog definitions and the stored snapshot, merges
them and saves the result when it changed.

Defined games take their content from the definitions and keep their view
counts. Games created by users are kept in their previous order after the
defined games. Games that are neither defined nor user-created are dropped.`,
		Example: `  mathflix reconcile             # Merge and save
  mathflix reconcile --dry-run   # Show what would change
  mathflix reconcile -o json     # Full result as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			mf, err := app.Client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ReconcileTimeout)
			defer cancel()

			var result *reconciler.Result
			if dryRun {
				result, err = mf.Preview(ctx)
			} else {
				result, err = mf.Reconcile(ctx)
			}
			if err != nil {
				return err
			}

			app.Logger().Debug().
				Bool("dry_run", dryRun).
				Bool("changed", result.Changed).
				Int("records", len(result.Records)).
				Dur("duration", result.Metadata.Duration).
				Msg("Reconcile finished")

			return output.WriteReconcile(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), result, dryRun)
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute the merge without saving")

	return cmd
}
