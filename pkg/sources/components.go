package sources

import (
	"context"
	"maps"

	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// Components maps record ids to opaque in-process payloads.
type Components map[string]any

// withComponents decorates a Source with component payloads.
type withComponents struct {
	Source
	components Components
}

// WithComponents attaches payloads to the definitions of src by id.
// Payloads travel with the records in memory and are never persisted.
func WithComponents(src Source, components Components) Source {
	return &withComponents{Source: src, components: maps.Clone(components)}
}

func (w *withComponents) Definitions(ctx context.Context) ([]catalogs.Record, error) {
	records, err := w.Source.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if c, ok := w.components[records[i].ID]; ok {
			records[i].Component = c
		}
	}
	return records, nil
}
