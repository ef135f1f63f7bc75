// Package sources provides the canonical game definitions that every
// reconciliation starts from.
//
// A Source is read fresh on each reconciliation. Records returned by a
// Source are stamped with canonical provenance and validated, but duplicate
// ids are passed through untouched: rejecting them is the reconciler's job.
//
// Example usage:
//
//	src := sources.NewEmbedded()
//	defs, err := src.Definitions(ctx)
//	if err != nil {
//	    return err
//	}
package sources

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ashkam58/mathflix/internal/embedded"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
)

// Source supplies canonical definitions.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Definitions returns the canonical records in display order.
	Definitions(ctx context.Context) ([]catalogs.Record, error)
}

// definitionsFile is the on-disk layout of a definitions file.
type definitionsFile struct {
	Games []catalogs.Record `yaml:"games"`
}

// Parse decodes a YAML definitions document. name is used in errors.
func Parse(name string, data []byte) ([]catalogs.Record, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return prepare(file.Games)
}

// prepare stamps and validates definitions.
func prepare(records []catalogs.Record) ([]catalogs.Record, error) {
	out := make([]catalogs.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		r.Provenance = catalogs.ProvenanceCanonical
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("definition %d (%q): %w", i, r.ID, err)
		}
		out[i] = r
	}
	return out, nil
}

// static serves a fixed list.
type static struct {
	records []catalogs.Record
}

// Static returns a Source that serves records.
func Static(records ...catalogs.Record) Source {
	return &static{records: catalogs.CloneRecords(records)}
}

func (s *static) Name() string { return "static" }

func (s *static) Definitions(_ context.Context) ([]catalogs.Record, error) {
	return prepare(s.records)
}

// file reads a YAML definitions file on every call.
type file struct {
	path string
}

// NewFile returns a Source backed by the YAML file at path.
func NewFile(path string) Source {
	return &file{path: path}
}

func (f *file) Name() string { return "file:" + f.path }

func (f *file) Definitions(ctx context.Context) ([]catalogs.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.WrapIO("read", f.path, err)
	}
	return Parse(f.path, data)
}

// embeddedSource reads the definitions compiled into the binary.
type embeddedSource struct{}

// NewEmbedded returns a Source backed by the built-in definitions.
func NewEmbedded() Source {
	return embeddedSource{}
}

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Definitions(_ context.Context) ([]catalogs.Record, error) {
	data, err := embedded.FS.ReadFile(embedded.GamesFile)
	if err != nil {
		return nil, errors.WrapIO("read", embedded.GamesFile, err)
	}
	return Parse(embedded.GamesFile, data)
}
