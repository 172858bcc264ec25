package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ordersync/ordersync/internal/devserver"
)

var serveSeed bool

// ordersync serve — run the bundled reference backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the order service backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := devserver.New()
		if err != nil {
			return err
		}
		if serveSeed {
			if err := srv.Seed(); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "seed a demo admin and sample orders")
}
