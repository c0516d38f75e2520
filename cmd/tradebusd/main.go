package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("tradebusd exited with error")
		os.Exit(1)
	}
}
