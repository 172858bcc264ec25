package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ordersync/ordersync/config"
	"github.com/ordersync/ordersync/pkg/orders"
	"github.com/ordersync/ordersync/pkg/realtime"
)

// ordersync watch — follow the realtime channel and print new orders as they
// arrive.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream new orders as they are placed",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess := newSession()
		if err := requireAuth(sess); err != nil {
			return err
		}

		ch := realtime.Init(config.APIBaseURL())
		if err := ch.JoinAdmin(); err != nil {
			return err
		}
		defer ch.Close()

		ch.OnOrderCreated(func(o orders.Order) {
			fmt.Printf("[%s] new order %s: %s x%d for %s\n",
				o.CreatedAt.Format("15:04:05"), o.ID, o.ProductName, o.Quantity, o.CustomerName)
		})

		fmt.Println("Watching for new orders. Ctrl-C to stop.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}
