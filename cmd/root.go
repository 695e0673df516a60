package main

import (
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "ledger",
		Short:         "ledger is a retail banking ledger API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs", "directory holding app.env")

	loadConfig := func() (configpkg.Config, error) {
		return configpkg.Load(configPath)
	}

	rootCmd.AddCommand(newServeCmd(loadConfig))
	rootCmd.AddCommand(newMigrateCmd(loadConfig))

	return rootCmd
}
