// Package transactionrepo manages repository layer of the transaction log.
package transactionrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoSQL facilitates transaction log repository layer logic on top of a SQL database.
type RepoSQL struct {
	db dbpkg.SQLInterface
}

// NewRepoSQL returns transaction RepoSQL.
func NewRepoSQL(db dbpkg.SQLInterface) *RepoSQL {
	return &RepoSQL{db: db}
}

const addQuery = `
INSERT INTO
    transactions (id, type, account_number, amount, note, created_at)
VALUES
    (?, ?, ?, ?, ?, ?)
`

// Add appends the transaction to the log of its account.
func (r *RepoSQL) Add(ctx context.Context, t domain.Transaction) error {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(addQuery),
		t.ID, t.Type, t.AccountNumber, t.Amount, t.Note, t.Timestamp)
	if err != nil {
		l.Error().Err(err).Msgf("Add(ctx, %+v)", t)

		if dbpkg.IsForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}

		return errorspkg.ErrInternal
	}

	return nil
}

const listByAccountQuery = `
SELECT
	id, type, account_number, amount, note, created_at
FROM transactions
WHERE account_number = ?
ORDER BY seq
`

// ListByAccount returns the transactions of the account in the order they were added.
func (r *RepoSQL) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	items := []domain.Transaction{}

	err := r.db.SelectContext(ctx, &items, r.db.Rebind(listByAccountQuery), accountNumber)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
