package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/app"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

func newServeCmd(loadConfig func() (configpkg.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			logger := middleware.CreateLogger(config)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, cleanup, err := app.New(ctx, config, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			server, err := httpserver.New(application.Service, logger, config)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    config.ServerAddress,
				Handler: server,
			}

			errCh := make(chan error, 1)

			go func() {
				logger.Info().Str("addr", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}

				return nil
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		},
	}
}
