package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hiver-ai/email-triage/triageservice"
)

func main() {
	if err := triageservice.Run(); err != nil {
		log.Error().Err(err).Msg("triage-service exited with error")
		os.Exit(1)
	}
}
