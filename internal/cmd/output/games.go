package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/reconcile"
)

// GamesToTableData converts records to table format. wide adds grade,
// topics and a truncated description.
func GamesToTableData(records []catalogs.Record, wide bool) Data {
	headers := []string{"ID", "Title", "Category", "Type", "Premium", "Views", "Provenance"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignCenter, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "Grade", "Topics", "Description")
		align = append(align, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		row := []string{
			r.ID,
			r.Title,
			r.Category.String(),
			r.Type.String(),
			yesNo(r.IsPremium),
			strconv.FormatInt(r.Views, 10),
			orDash(r.Provenance.String()),
		}
		if wide {
			row = append(row,
				orDash(r.Grade),
				orDash(strings.Join(r.Topics, ", ")),
				orDash(truncate(r.Description, 60)),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// GameToTableData renders a single record as property/value rows.
func GameToTableData(r catalogs.Record) Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", r.ID},
			{"Title", r.Title},
			{"Description", orDash(r.Description)},
			{"Category", r.Category.String()},
			{"Grade", orDash(r.Grade)},
			{"Topics", orDash(strings.Join(r.Topics, ", "))},
			{"Subtopics", orDash(strings.Join(r.Subtopics, ", "))},
			{"Type", r.Type.String()},
			{"Content", orDash(truncate(r.Content, 60))},
			{"Thumbnail", orDash(r.ThumbnailURL)},
			{"Premium", yesNo(r.IsPremium)},
			{"Views", strconv.FormatInt(r.Views, 10)},
			{"Provenance", orDash(r.Provenance.String())},
		},
	}
}

// ReconcileToTableData lists every change in a reconcile result.
func ReconcileToTableData(result *reconcile.Result) Data {
	data := Data{Headers: []string{"Change", "ID", "Detail"}}
	if result.Changeset != nil {
		for _, r := range result.Changeset.Added {
			data.Rows = append(data.Rows, []string{"added", r.ID, r.Title})
		}
		for _, u := range result.Changeset.Updated {
			paths := make([]string, 0, len(u.Changes))
			for _, c := range u.Changes {
				paths = append(paths, c.Path)
			}
			data.Rows = append(data.Rows, []string{"updated", u.ID, strings.Join(paths, ", ")})
		}
		for _, r := range result.Changeset.Removed {
			data.Rows = append(data.Rows, []string{"removed", r.ID, r.Title})
		}
		if result.Changeset.Reordered {
			data.Rows = append(data.Rows, []string{"reordered", "-", "record order changed"})
		}
	}
	return data
}

// WriteReconcile prints a reconcile result. Tables get a summary line
// followed by the change list; other formats get the result itself.
func WriteReconcile(w io.Writer, format Format, result *reconcile.Result, dryRun bool) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, result)
	}

	prefix := "Reconciled"
	if dryRun {
		prefix = "Dry run"
	}
	if result.FirstRun {
		prefix += " (first run)"
	}
	if _, err := fmt.Fprintf(w, "%s: %s in %s\n", prefix, result.Summary(), result.Metadata.Duration); err != nil {
		return err
	}

	data := ReconcileToTableData(result)
	if len(data.Rows) == 0 {
		return nil
	}
	return NewFormatter(format).Format(w, data)
}

// WriteGames prints records in the given format.
func WriteGames(w io.Writer, format Format, records []catalogs.Record) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, GamesToTableData(records, format == FormatWide))
	}
	return NewFormatter(format).Format(w, records)
}

// WriteGame prints a single record in the given format.
func WriteGame(w io.Writer, format Format, record catalogs.Record) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, GameToTableData(record))
	}
	return NewFormatter(format).Format(w, record)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
