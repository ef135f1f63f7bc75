// Package games provides the commands that read and change catalog games.
package games

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
	"github.com/ashkam58/mathflix/pkg/constants"
)

// run resolves the client and a bounded context, then calls fn.
func run(cmd *cobra.Command, app application.Application, fn func(ctx context.Context, mf mathflix.Client) error) error {
	mf, err := app.Client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()
	return fn(ctx, mf)
}

func format(app application.Application) output.Format {
	return output.DetectFormat(app.OutputFormat())
}
