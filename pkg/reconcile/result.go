package reconcile

import (
	"fmt"
	"time"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/differ"
)

// Result represents the outcome of a reconciliation
type Result struct {
	// Records is the merged list to persist and serve
	Records []catalogs.Record

	// Changed is true when Records is not identical to the previous snapshot
	Changed bool

	// FirstRun is true when there was no previous snapshot
	FirstRun bool

	// Changeset describes the differences from the previous snapshot
	Changeset *differ.Changeset

	// Preserved lists the ids of user-created records that were kept
	Preserved []string

	// Dropped holds orphaned records removed from the snapshot
	Dropped []catalogs.Record

	Statistics Statistics
	Metadata   Metadata
}

// Statistics counts what happened during a merge.
type Statistics struct {
	Canonical int // canonical definitions read
	Previous  int // records in the previous snapshot
	Carried   int // canonical records whose state was carried over
	Added     int // canonical records new to the snapshot
	Preserved int // user-created records kept
	Dropped   int // orphaned records removed
	Merged    int // records in the merged list
}

// Metadata contains timing information about the reconciliation.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	if !r.Changed {
		return fmt.Sprintf("%d records, no changes", len(r.Records))
	}
	return fmt.Sprintf("%d records (%d added, %d updated, %d removed, %d user-created kept)",
		len(r.Records),
		len(r.Changeset.Added),
		len(r.Changeset.Updated),
		len(r.Changeset.Removed),
		r.Statistics.Preserved)
}
