package accountrepo

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// RepoMem keeps accounts in process memory.
//
// Accounts are stored by value; callers always receive copies.
type RepoMem struct {
	mu         sync.RWMutex
	accounts   map[string]domain.Account
	byCustomer map[string][]string
}

// NewRepoMem returns empty account RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts:   make(map[string]domain.Account),
		byCustomer: make(map[string][]string),
	}
}

// Create inserts the account and then returns it.
func (r *RepoMem) Create(_ context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.Number]; ok {
		return domain.Account{}, domain.ErrAccountNumberTaken
	}

	r.put(a)

	return a, nil
}

// Save inserts the account or overwrites the one with the same number.
func (r *RepoMem) Save(_ context.Context, a domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.accounts[a.Number]; ok && old.CustomerID != a.CustomerID {
		r.unindex(old)
	}

	r.put(a)

	return nil
}

func (r *RepoMem) put(a domain.Account) {
	if _, ok := r.accounts[a.Number]; !ok {
		r.byCustomer[a.CustomerID] = append(r.byCustomer[a.CustomerID], a.Number)
	}

	r.accounts[a.Number] = a
}

func (r *RepoMem) unindex(a domain.Account) {
	numbers := r.byCustomer[a.CustomerID]

	for i, n := range numbers {
		if n == a.Number {
			r.byCustomer[a.CustomerID] = append(numbers[:i:i], numbers[i+1:]...)
			break
		}
	}

	delete(r.accounts, a.Number)
}

// Get returns the account with the given number.
func (r *RepoMem) Get(_ context.Context, number string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// List returns all the accounts in no particular order.
func (r *RepoMem) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		items = append(items, a)
	}

	return items, nil
}

// ListByCustomer returns the accounts owned by the given customer.
func (r *RepoMem) ListByCustomer(_ context.Context, customerID string) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers := r.byCustomer[customerID]

	items := make([]domain.Account, 0, len(numbers))
	for _, n := range numbers {
		items = append(items, r.accounts[n])
	}

	return items, nil
}

// Count returns the number of accounts.
func (r *RepoMem) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.accounts)), nil
}

// AddBalance changes the account's balance by delta and returns the changed account.
func (r *RepoMem) AddBalance(_ context.Context, number string, delta decimal.Decimal) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	balance := a.Balance.Add(delta)
	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance = balance
	r.accounts[number] = a

	return a, nil
}
