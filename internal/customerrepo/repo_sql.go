// Package customerrepo manages repository layer of customers.
package customerrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoSQL facilitates customer repository layer logic on top of a SQL database.
type RepoSQL struct {
	db dbpkg.SQLInterface
}

// NewRepoSQL returns customer RepoSQL.
func NewRepoSQL(db dbpkg.SQLInterface) *RepoSQL {
	return &RepoSQL{db: db}
}

const saveQuery = `
INSERT INTO
    customers (id, name, email, created_at)
VALUES
    (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    email = excluded.email
`

// Save inserts the customer or overwrites the one with the same id.
func (r *RepoSQL) Save(ctx context.Context, c domain.Customer) error {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, r.db.Rebind(saveQuery), c.ID, c.Name, c.Email, c.CreatedAt)
	if err != nil {
		l.Error().Err(err).Msgf("Save(ctx, %+v)", c)
		return errorspkg.ErrInternal
	}

	return nil
}

const listQuery = `
SELECT id, name, email, created_at FROM customers
ORDER BY created_at, id
`

// List returns all the customers.
func (r *RepoSQL) List(ctx context.Context) ([]domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	items := []domain.Customer{}

	if err := r.db.SelectContext(ctx, &items, listQuery); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
