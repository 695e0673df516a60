package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

func newMigrateCmd(loadConfig func() (configpkg.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations of the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			logger := middleware.CreateLogger(config)

			db, err := dbpkg.Setup(config.StoreDriver, config.DBSource)
			if err != nil {
				return fmt.Errorf("cannot connect to database: %w", err)
			}
			defer db.Close()

			if err := dbpkg.Migrate(db); err != nil {
				return err
			}

			version, dirty, err := dbpkg.Version(db)
			if err != nil {
				return err
			}

			logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrated")

			return nil
		},
	}
}
