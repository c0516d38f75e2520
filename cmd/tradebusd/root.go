package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{Use: "tradebusd", Short: "Tradebus in-process message bus demo"}
	root.AddCommand(demoCmd(ctx))
	log.Info().Msg("tradebusd starting")
	return root.ExecuteContext(ctx)
}
