package fs

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/receipt/pkg/core"
)

// logDocument is the persisted layout: one ordered collection, head first.
type logDocument struct {
	Entries []core.Entry `json:"entries"`
}

// emptyLog is the document written by Initialize.
var emptyLog = []byte("{\n  \"entries\": []\n}\n")

// decodeLog parses a persisted log. Anything that does not match the schema
// (bad JSON, missing collection, an entry of unknown type or without id) is
// reported as core.ErrStoreCorrupt; an empty collection is a valid log.
func decodeLog(data []byte) ([]core.Entry, error) {
	var raw struct {
		Entries *[]core.Entry `json:"entries"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreCorrupt, err)
	}
	if raw.Entries == nil {
		return nil, fmt.Errorf("%w: missing entries collection", core.ErrStoreCorrupt)
	}

	entries := *raw.Entries
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", core.ErrStoreCorrupt, i)
		}
		if !e.Type.Valid() {
			return nil, fmt.Errorf("%w: entry %s has unknown type %q", core.ErrStoreCorrupt, e.ID, e.Type)
		}
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	return entries, nil
}

func encodeLog(entries []core.Entry) ([]byte, error) {
	if entries == nil {
		entries = []core.Entry{}
	}
	data, err := json.MarshalIndent(logDocument{Entries: entries}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
