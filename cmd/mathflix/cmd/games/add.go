package games

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/cmd/output"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
)

// NewAddCommand creates the add command, which stores a user-created game.
func NewAddCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"create"},
		GroupID: "management",
		Short:   "Create a game",
		Long: `Add stores a new user-created game. The id is assigned automatically and
the view count starts at zero. The game is described either with flags or
with a YAML or JSON file.`,
		Example: `  mathflix add --title "Times Tables" --content https://example.com/tt --type url
  mathflix add --file game.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, err := recordFromFlags(cmd)
			if err != nil {
				return err
			}
			return run(cmd, app, func(ctx context.Context, mf mathflix.Client) error {
				created, err := mf.CreateGame(ctx, record)
				if err != nil {
					return err
				}
				return output.WriteGame(cmd.OutOrStdout(), format(app), created)
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Read the game from a YAML or JSON file")
	cmd.Flags().String("title", "", "Game title")
	cmd.Flags().String("description", "", "Short description")
	cmd.Flags().String("category", string(catalogs.CategoryMath), "Category")
	cmd.Flags().String("grade", "", "Target grade band")
	cmd.Flags().StringSlice("topics", nil, "Topics (comma-separated)")
	cmd.Flags().StringSlice("subtopics", nil, "Subtopics (comma-separated)")
	cmd.Flags().String("thumbnail", "", "Thumbnail URL")
	cmd.Flags().String("content", "", "HTML document or URL, depending on --type")
	cmd.Flags().String("type", string(catalogs.ContentTypeHTML), "Content type: html, url, react")
	cmd.Flags().Bool("premium", false, "Mark the game as premium")

	return cmd
}

// recordFromFlags builds the record to create. A file, when given, is the
// starting point and explicitly set flags override its fields.
func recordFromFlags(cmd *cobra.Command) (catalogs.Record, error) {
	var record catalogs.Record
	flags := cmd.Flags()

	if path, _ := flags.GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return record, errors.WrapIO("read", path, err)
		}
		if err := yaml.Unmarshal(data, &record); err != nil {
			return record, errors.WrapParse("yaml", path, err)
		}
	}

	set := func(name string, dst *string) {
		if flags.Changed(name) || *dst == "" {
			*dst, _ = flags.GetString(name)
		}
	}
	set("title", &record.Title)
	set("description", &record.Description)
	set("grade", &record.Grade)
	set("thumbnail", &record.ThumbnailURL)
	set("content", &record.Content)

	category := string(record.Category)
	set("category", &category)
	parsed, err := catalogs.ParseCategory(category)
	if err != nil {
		return record, err
	}
	record.Category = parsed

	contentType := string(record.Type)
	set("type", &contentType)
	record.Type = catalogs.ContentType(contentType)

	if flags.Changed("topics") || record.Topics == nil {
		record.Topics, _ = flags.GetStringSlice("topics")
	}
	if flags.Changed("subtopics") || record.Subtopics == nil {
		record.Subtopics, _ = flags.GetStringSlice("subtopics")
	}
	if flags.Changed("premium") {
		record.IsPremium, _ = flags.GetBool("premium")
	}

	if record.Title == "" {
		return record, errors.NewValidationError("title", record.Title, "is required (--title or --file)")
	}
	return record, nil
}
