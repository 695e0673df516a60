// Package main provides the ledger API server and its maintenance commands.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}
