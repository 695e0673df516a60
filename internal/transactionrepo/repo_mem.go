package transactionrepo

import (
	"context"
	"sync"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// RepoMem keeps the transaction log in process memory.
type RepoMem struct {
	mu        sync.RWMutex
	byAccount map[string][]domain.Transaction
}

// NewRepoMem returns empty transaction RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{byAccount: make(map[string][]domain.Transaction)}
}

// Add appends the transaction to the log of its account.
func (r *RepoMem) Add(_ context.Context, t domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byAccount[t.AccountNumber] = append(r.byAccount[t.AccountNumber], t)

	return nil
}

// ListByAccount returns a copy of the account's transactions in the order they were added.
func (r *RepoMem) ListByAccount(_ context.Context, accountNumber string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.byAccount[accountNumber]

	items := make([]domain.Transaction, len(log))
	copy(items, log)

	return items, nil
}
