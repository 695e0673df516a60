// Package app wires the ledger service to the storage and event backends chosen by the config.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/customerrepo"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/internal/ledgerservice"
	"github.com/go-petr/pet-ledger/internal/postingrepo"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// StoreMemory keeps the ledger in process memory.
const StoreMemory = "memory"

const redisPingTimeout = 2 * time.Second

// App holds the wired ledger service and the database behind it, if any.
type App struct {
	Service *ledgerservice.Service
	DB      *sqlx.DB
}

type store struct {
	accounts     ledgerservice.AccountRepo
	customers    ledgerservice.CustomerRepo
	transactions ledgerservice.TransactionRepo
	poster       ledgerservice.Poster
}

// New builds the ledger service for config and returns it with the func that releases
// its resources.
func New(ctx context.Context, config configpkg.Config, logger zerolog.Logger) (*App, func(), error) {
	a := &App{}

	var s store

	switch config.StoreDriver {
	case StoreMemory, "":
		accounts := accountrepo.NewRepoMem()
		transactions := transactionrepo.NewRepoMem()

		s = store{
			accounts:     accounts,
			customers:    customerrepo.NewRepoMem(),
			transactions: transactions,
			poster:       postingrepo.NewRepoMem(accounts, transactions),
		}
	case dbpkg.DriverSQLite, dbpkg.DriverPostgres:
		db, err := dbpkg.Setup(config.StoreDriver, config.DBSource)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
		}

		if err := dbpkg.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		a.DB = db
		s = store{
			accounts:     accountrepo.NewRepoSQL(db),
			customers:    customerrepo.NewRepoSQL(db),
			transactions: transactionrepo.NewRepoSQL(db),
			poster:       postingrepo.NewRepoSQL(db),
		}
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", config.StoreDriver)
	}

	var opts []ledgerservice.Option

	if config.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddress})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", config.RedisAddress).Msg("redis is unreachable")
		}
		cancel()

		opts = append(opts, ledgerservice.WithPublisher(eventpub.New(rdb, config.EventsChannel)))
	}

	a.Service = ledgerservice.New(s.accounts, s.customers, s.transactions, s.poster, opts...)

	logger.Info().
		Str("store", config.StoreDriver).
		Bool("events", config.RedisAddress != "").
		Msg("ledger initialized")

	cleanup := func() {
		if err := a.Service.Close(); err != nil {
			logger.Error().Err(err).Msg("cannot close ledger service")
		}

		if a.DB != nil {
			if err := a.DB.Close(); err != nil {
				logger.Error().Err(err).Msg("cannot close database")
			}
		}
	}

	return a, cleanup, nil
}
