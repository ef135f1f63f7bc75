package reconcile

import (
	"github.com/ashkam58/mathflix/pkg/authority"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/provenance"
)

// merger holds the bookkeeping of a single merge.
type merger struct {
	authority authority.Authority
	classify  Classifier

	carried   int
	added     int
	preserved []string
	dropped   []catalogs.Record
}

func newMerger(a authority.Authority, c Classifier) *merger {
	return &merger{authority: a, classify: c}
}

// checkDuplicates returns a DuplicateDefinitionError for the first id that
// appears more than once in canonical.
func checkDuplicates(canonical []catalogs.Record) error {
	positions := make(map[string][]int, len(canonical))
	var order []string
	for i, r := range canonical {
		if _, seen := positions[r.ID]; !seen {
			order = append(order, r.ID)
		}
		positions[r.ID] = append(positions[r.ID], i)
	}
	for _, id := range order {
		if p := positions[id]; len(p) > 1 {
			return errors.NewDuplicateDefinitionError(id, p...)
		}
	}
	return nil
}

// merge builds the merged list. canonical must be free of duplicates.
func (m *merger) merge(canonical, previous []catalogs.Record) []catalogs.Record {
	// first occurrence wins when a corrupt snapshot repeats an id
	lookup := make(map[string]*catalogs.Record, len(previous))
	for i := range previous {
		if _, ok := lookup[previous[i].ID]; !ok {
			lookup[previous[i].ID] = &previous[i]
		}
	}

	canonicalIDs := provenance.NewIDSet(canonical)
	merged := make([]catalogs.Record, 0, len(canonical)+len(previous))

	for _, c := range canonical {
		record := c.Clone()
		if p, ok := lookup[c.ID]; ok {
			m.authority.Carry(&record, p)
			m.carried++
		} else {
			m.added++
		}
		merged = append(merged, record)
	}

	kept := make(provenance.IDSet)
	for i := range previous {
		p := &previous[i]
		switch m.classify(canonicalIDs, p) {
		case provenance.ClassCanonical:
			// already emitted from canonical
		case provenance.ClassUser:
			if kept.Has(p.ID) {
				continue
			}
			kept[p.ID] = struct{}{}
			merged = append(merged, p.Clone())
			m.preserved = append(m.preserved, p.ID)
		default:
			m.dropped = append(m.dropped, p.Clone())
		}
	}

	return merged
}
