package catalogs

import (
	"strings"
)

// CloneRecords returns a deep copy of records. A nil input yields nil.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}

// Find returns the first record with the given id.
func Find(records []Record, id string) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// IDs returns the ids of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// Filter selects records for listing. Zero values match everything.
type Filter struct {
	Category Category
	Premium  *bool
	Query    string // case-insensitive match on title, description and topics
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *Record) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Premium != nil && r.IsPremium != *f.Premium {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q) {
			return true
		}
		for _, t := range r.Topics {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
		return false
	}
	return true
}

// Apply returns the records matching f, preserving order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
