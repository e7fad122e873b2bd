package state

import (
	"sync"

	"moreyou/storefront/internal/domain"
)

// SnapshotCell holds the in-memory last-known-good cart snapshot. Process
// lifetime only: cleared on restart, rehydrated by the synchronizer. Writes
// go through the synchronizer exclusively; reads are free.
type SnapshotCell struct {
	mu   sync.RWMutex
	cart *domain.Cart
}

func NewSnapshotCell() *SnapshotCell {
	return &SnapshotCell{}
}

func (c *SnapshotCell) Get() *domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart
}

func (c *SnapshotCell) Set(cart *domain.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = cart
}
