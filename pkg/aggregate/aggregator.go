// Package aggregate folds item records into per-category totals.
package aggregate

import (
	"github.com/salescan/salescan/internal/model"
)

// Aggregator accumulates per-category item counts and sale totals,
// suppressing duplicate identifiers. It is owned by a single run and
// is not safe for concurrent use.
//
// The seen-identifier set grows monotonically for the lifetime of a
// run; at batch-job scale this is acceptable, but it is the scaling
// limit of the design.
type Aggregator struct {
	seen   map[string]struct{}
	counts map[string]int
	sales  map[string]float64

	defaultCategory string

	accepted   int64
	duplicates int64
	unkeyed    int64
}

// New creates an empty aggregator using model.DefaultCategory as the
// bucket for uncategorized items.
func New() *Aggregator {
	return NewWithDefault(model.DefaultCategory)
}

// NewWithDefault creates an empty aggregator with a custom bucket name
// for uncategorized items. Empty falls back to model.DefaultCategory.
func NewWithDefault(category string) *Aggregator {
	if category == "" {
		category = model.DefaultCategory
	}
	return &Aggregator{
		seen:            make(map[string]struct{}),
		counts:          make(map[string]int),
		sales:           make(map[string]float64),
		defaultCategory: category,
	}
}

// Add folds one record into the running totals and reports whether it
// was accepted. Records without a usable identifier are skipped
// without touching any state; records whose identifier was already
// seen are skipped as duplicates. Accepted records resolve a missing
// category to model.DefaultCategory and contribute their price (zero
// when absent) to the category total.
func (a *Aggregator) Add(item *model.Item) bool {
	if !item.HasID() {
		a.unkeyed++
		return false
	}
	if _, dup := a.seen[item.ID]; dup {
		a.duplicates++
		return false
	}
	a.seen[item.ID] = struct{}{}

	category := item.Category
	if category == "" {
		category = a.defaultCategory
	}

	a.counts[category]++
	a.sales[category] += item.Price
	a.accepted++
	return true
}

// Counts returns the category → item count mapping.
// The returned map is the aggregator's own state, not a copy.
func (a *Aggregator) Counts() map[string]int {
	return a.counts
}

// Sales returns the category → total sale value mapping.
// Its key set is always identical to Counts().
func (a *Aggregator) Sales() map[string]float64 {
	return a.sales
}

// Accepted returns the number of records folded into the totals.
func (a *Aggregator) Accepted() int64 {
	return a.accepted
}

// Duplicates returns the number of records dropped as duplicate IDs.
func (a *Aggregator) Duplicates() int64 {
	return a.duplicates
}

// Unkeyed returns the number of records dropped for missing IDs.
func (a *Aggregator) Unkeyed() int64 {
	return a.unkeyed
}

// Reset clears all state for reuse.
func (a *Aggregator) Reset() {
	a.seen = make(map[string]struct{})
	a.counts = make(map[string]int)
	a.sales = make(map[string]float64)
	a.accepted = 0
	a.duplicates = 0
	a.unkeyed = 0
}
