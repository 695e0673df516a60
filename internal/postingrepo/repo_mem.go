package postingrepo

import (
	"context"
	"sync"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
)

// RepoMem applies postings to the in-memory account and transaction repositories.
//
// Every balance change is checked before any is applied, so a failed posting
// leaves both repositories untouched.
type RepoMem struct {
	mu           sync.Mutex
	accounts     *accountrepo.RepoMem
	transactions *transactionrepo.RepoMem
}

// NewRepoMem returns posting RepoMem on top of the given repositories.
func NewRepoMem(accounts *accountrepo.RepoMem, transactions *transactionrepo.RepoMem) *RepoMem {
	return &RepoMem{
		accounts:     accounts,
		transactions: transactions,
	}
}

// Post changes the balances of the involved accounts and appends the transactions to the log.
func (r *RepoMem) Post(ctx context.Context, p domain.Posting) (domain.PostingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changes := p.Changes()

	for _, c := range changes {
		a, err := r.accounts.Get(ctx, c.AccountNumber)
		if err != nil {
			return domain.PostingResult{}, err
		}

		if a.Balance.Add(c.Delta).IsNegative() {
			return domain.PostingResult{}, domain.ErrInsufficientFunds
		}
	}

	result := domain.PostingResult{
		Accounts:     make([]domain.Account, 0, len(changes)),
		Transactions: p.Transactions,
	}

	for _, c := range changes {
		a, err := r.accounts.AddBalance(ctx, c.AccountNumber, c.Delta)
		if err != nil {
			return domain.PostingResult{}, err
		}

		result.Accounts = append(result.Accounts, a)
	}

	for _, t := range p.Transactions {
		if err := r.transactions.Add(ctx, t); err != nil {
			return domain.PostingResult{}, err
		}
	}

	return result, nil
}
