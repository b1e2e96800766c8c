package collection

import (
	"encoding/json"

	"github.com/aretw0/lattice/pkg/schema"
)

// Entry is one validated document of a collection.
type Entry struct {
	ID         string
	Collection string
	Path       string
	Data       schema.Record
	Body       string
}

// Decode copies the entry's data into out, a pointer to a struct with
// mapstructure tags.
func (e Entry) Decode(out any) error {
	return e.Data.Decode(out)
}

type entryJSON struct {
	ID         string        `json:"id"`
	Collection string        `json:"collection"`
	Path       string        `json:"path,omitempty"`
	Data       schema.Record `json:"data"`
	Body       string        `json:"body,omitempty"`
}

// MarshalJSON encodes the entry with its data in declaration order.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON(e))
}

// All decodes every entry into a T, preserving order.
func All[T any](entries []Entry) ([]T, error) {
	out := make([]T, len(entries))
	for i, e := range entries {
		if err := e.Decode(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
