package customerrepo

import (
	"context"
	"sync"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// RepoMem keeps customers in process memory.
type RepoMem struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
	order     []string
}

// NewRepoMem returns empty customer RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{customers: make(map[string]domain.Customer)}
}

// Save inserts the customer or overwrites the one with the same id.
func (r *RepoMem) Save(_ context.Context, c domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}

	r.customers[c.ID] = c

	return nil
}

// List returns all the customers in insertion order.
func (r *RepoMem) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.Customer, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.customers[id])
	}

	return items, nil
}
