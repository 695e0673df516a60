// Package postingrepo applies postings to the ledger storage atomically.
package postingrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoSQL facilitates posting repository layer logic on top of a SQL database.
type RepoSQL struct {
	db *sqlx.DB
}

// NewRepoSQL returns posting RepoSQL with connection to start transactions.
func NewRepoSQL(db *sqlx.DB) *RepoSQL {
	return &RepoSQL{db: db}
}

// Post changes the balances of the involved accounts and appends the transactions
// to the log within a single database transaction.
//
// Balances are changed in ascending account number order so concurrent postings
// lock rows in a consistent order.
func (r *RepoSQL) Post(ctx context.Context, p domain.Posting) (domain.PostingResult, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.PostingResult{}, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoSQL(tx)
	transactionRepo := transactionrepo.NewRepoSQL(tx)

	changes := p.Changes()
	result := domain.PostingResult{
		Accounts:     make([]domain.Account, 0, len(changes)),
		Transactions: p.Transactions,
	}

	for _, c := range changes {
		a, err := accountRepo.AddBalance(ctx, c.AccountNumber, c.Delta)
		if err != nil {
			return domain.PostingResult{}, err
		}

		result.Accounts = append(result.Accounts, a)
	}

	for _, t := range p.Transactions {
		if err := transactionRepo.Add(ctx, t); err != nil {
			return domain.PostingResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.PostingResult{}, errorspkg.ErrInternal
	}

	return result, nil
}
