// Package model defines core data structures for salescan.
package model

import (
	"encoding/json"
	"strconv"
)

// DefaultCategory is the sentinel bucket for records that carry no category.
const DefaultCategory = "Unknown"

// Item represents a single sold-item record from the input ledger.
// Fields are resolved exactly once at decode time: a missing or null
// category decodes to the empty string, a missing or null price to 0.
// The source imposes no uniqueness or type guarantees, so every field
// is optional on the wire.
type Item struct {
	// ID identifies the item. Empty means the record carried no usable
	// identifier and must be skipped by the aggregator.
	ID string

	// Category is the aggregation bucket. Empty means unset.
	Category string

	// Price is the sale value of the item.
	Price float64
}

// HasID reports whether the record carries a usable identifier.
// Absent, null, empty-string, zero-valued and non-scalar identifiers
// all count as missing.
func (it *Item) HasID() bool {
	return it.ID != ""
}

// Reset clears the item for reuse from a pool.
func (it *Item) Reset() {
	it.ID = ""
	it.Category = ""
	it.Price = 0
}

// wireItem mirrors the loosely-structured record shape on the wire.
type wireItem struct {
	ID       json.RawMessage `json:"id"`
	Category *string         `json:"category"`
	Price    *float64        `json:"price"`
}

// UnmarshalJSON decodes a ledger record, resolving optional fields to
// their defaults. Identifiers may be any JSON string or number and are
// canonicalized to a type-tagged key: a numeric identifier never
// collides with a string identifier of the same text, while numeric
// spellings of one value (1, 1.0) reduce to the same key.
func (it *Item) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	it.ID = canonicalID(w.ID)

	if w.Category != nil {
		it.Category = *w.Category
	} else {
		it.Category = ""
	}

	if w.Price != nil {
		it.Price = *w.Price
	} else {
		it.Price = 0
	}

	return nil
}

// canonicalID converts a raw identifier scalar to its canonical key.
// Falsy identifiers (absent, null, "", 0, false) and identifiers that
// are not a string or number map to the empty string. Keys carry a
// type tag ("s:" for strings, "n:" for numbers) so 1 and "1" stay
// distinct records.
func canonicalID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}

	switch id := v.(type) {
	case string:
		if id == "" {
			return ""
		}
		return "s:" + id
	case float64:
		if id == 0 {
			return ""
		}
		return "n:" + strconv.FormatFloat(id, 'g', -1, 64)
	default:
		// null, booleans, and nested values are not usable keys.
		return ""
	}
}
