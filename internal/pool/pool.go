// Package pool provides allocation-free reuse of record structs using sync.Pool.
package pool

import (
	"sync"

	"github.com/salescan/salescan/internal/model"
)

// ItemPool manages reusable Item structs for the parse/aggregate handoff.
type ItemPool struct {
	pool sync.Pool
}

// NewItemPool creates a new item pool.
func NewItemPool() *ItemPool {
	ip := &ItemPool{}
	ip.pool.New = func() any {
		return &model.Item{}
	}
	return ip
}

// Get retrieves an item from the pool.
func (p *ItemPool) Get() *model.Item {
	return p.pool.Get().(*model.Item)
}

// Put returns an item to the pool.
func (p *ItemPool) Put(it *model.Item) {
	it.Reset()
	p.pool.Put(it)
}
