// Package snapshot encodes and decodes the persisted catalog snapshot.
//
// A snapshot is a bare JSON array of records, the same layout the first
// release wrote to browser storage, so old snapshots load unchanged.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
)

// Encode serializes records. A nil list encodes as an empty array.
func Encode(records []catalogs.Record) ([]byte, error) {
	if records == nil {
		records = []catalogs.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return data, nil
}

// Decode parses a stored snapshot. Any failure is reported as a
// *errors.SnapshotUnreadableError for key, so callers can treat the
// snapshot as absent.
func Decode(key string, data []byte) ([]catalogs.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.NewSnapshotUnreadableError(key, fmt.Errorf("expected a JSON array"))
	}

	var records []catalogs.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, errors.NewSnapshotUnreadableError(key, err)
	}
	if records == nil {
		records = []catalogs.Record{}
	}
	return records, nil
}
