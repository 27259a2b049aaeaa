package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Record is a user facing record type, represents a JSON object.
//
//	"id" field is reserved for the record identifier.
type Record map[string]interface{}

// GetID returns the record identifier as a string. Numeric identifiers
// are formatted without an exponent so the same record always maps to
// the same cache key.
func (r Record) GetID() string {
	return StringID(r["id"])
}

// HasID reports whether the record carries a non-empty identifier.
func (r Record) HasID() bool {
	return r.GetID() != ""
}

// GenerateIDIfEmpty assigns a fresh UUID when the record has no identifier.
func (r Record) GenerateIDIfEmpty() {
	if !r.HasID() {
		r["id"] = uuid.New().String()
	}
}

// Get returns the value of an arbitrary field, or nil when absent.
func (r Record) Get(field string) interface{} {
	return r[field]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// StringID normalizes an identifier value of any supported type to its
// canonical string form. Nil and empty values map to "".
func StringID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		// JSON numbers decode as float64; keep integral IDs exact.
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%v", id)
	case int:
		return fmt.Sprintf("%d", id)
	case int64:
		return fmt.Sprintf("%d", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
