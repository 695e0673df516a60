// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoSQL facilitates account repository layer logic on top of a SQL database.
type RepoSQL struct {
	db dbpkg.SQLInterface
}

// NewRepoSQL returns account RepoSQL.
func NewRepoSQL(db dbpkg.SQLInterface) *RepoSQL {
	return &RepoSQL{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (account_number, account_type, customer_id, balance, created_at)
VALUES
    (?, ?, ?, ?, ?)
`

// Create inserts the account and then returns it.
func (r *RepoSQL) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(createQuery),
		a.Number, a.Type, a.CustomerID, a.Balance, a.CreatedAt)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", a)

		switch {
		case dbpkg.IsUniqueViolation(err):
			return domain.Account{}, domain.ErrAccountNumberTaken
		case dbpkg.IsForeignKeyViolation(err):
			return domain.Account{}, domain.ErrCustomerNotFound
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const saveQuery = `
INSERT INTO
    accounts (account_number, account_type, customer_id, balance, created_at)
VALUES
    (?, ?, ?, ?, ?)
ON CONFLICT (account_number) DO UPDATE SET
    account_type = excluded.account_type,
    customer_id = excluded.customer_id,
    balance = excluded.balance
`

// Save inserts the account or overwrites the one with the same number.
func (r *RepoSQL) Save(ctx context.Context, a domain.Account) error {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(saveQuery),
		a.Number, a.Type, a.CustomerID, a.Balance, a.CreatedAt)
	if err != nil {
		l.Error().Err(err).Msgf("Save(ctx, %+v)", a)

		if dbpkg.IsForeignKeyViolation(err) {
			return domain.ErrCustomerNotFound
		}

		return errorspkg.ErrInternal
	}

	return nil
}

const getQuery = `
SELECT
	account_number, account_type, customer_id, balance, created_at
FROM accounts
WHERE account_number = ?
`

// Get returns the account with the given number.
func (r *RepoSQL) Get(ctx context.Context, number string) (domain.Account, error) {
	return r.get(ctx, getQuery, number)
}

func (r *RepoSQL) get(ctx context.Context, query, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	err := r.db.GetContext(ctx, &a, r.db.Rebind(query), number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT
	account_number, account_type, customer_id, balance, created_at
FROM accounts
ORDER BY account_number
`

// List returns all the accounts.
func (r *RepoSQL) List(ctx context.Context) ([]domain.Account, error) {
	return r.list(ctx, listQuery)
}

const listByCustomerQuery = `
SELECT
	account_number, account_type, customer_id, balance, created_at
FROM accounts
WHERE customer_id = ?
ORDER BY account_number
`

// ListByCustomer returns the accounts owned by the given customer.
func (r *RepoSQL) ListByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	return r.list(ctx, listByCustomerQuery, customerID)
}

func (r *RepoSQL) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	items := []domain.Account{}

	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const countQuery = `SELECT count(*) FROM accounts`

// Count returns the number of accounts.
func (r *RepoSQL) Count(ctx context.Context) (int64, error) {
	l := zerolog.Ctx(ctx)

	var n int64

	if err := r.db.GetContext(ctx, &n, countQuery); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return n, nil
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = ?
WHERE account_number = ?
`

// AddBalance changes the account's balance by delta and returns the changed account.
//
// The new balance is computed in Go: SQLite keeps money as TEXT and would fall back
// to floating point arithmetic. Run it inside a transaction to keep the
// read-modify-write atomic.
func (r *RepoSQL) AddBalance(ctx context.Context, number string, delta decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := r.get(ctx, getQuery+dbpkg.ForUpdate(r.db), number)
	if err != nil {
		return domain.Account{}, err
	}

	balance := a.Balance.Add(delta)
	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(updateBalanceQuery), balance, number)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	a.Balance = balance

	return a, nil
}
