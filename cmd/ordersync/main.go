// Command ordersync is the terminal front end for the order service. It keeps
// a local encrypted session token, mirrors one page of orders at a time and
// can tail the realtime channel for new orders.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordersync/ordersync/config"
	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/orders"
	"github.com/ordersync/ordersync/pkg/session"
	"github.com/ordersync/ordersync/pkg/storage"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ordersync",
	Short: "Order management client and reference backend",
	Long:  "ordersync talks to the order service API: authenticate, browse and edit orders, follow live order events, or run the bundled backend.",
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// newSession builds the API client and session store shared by all commands.
// The token rehydrates from the local storage disk when present.
func newSession() (*api.Client, *session.Store) {
	storage.Connect()
	client := api.New(config.APIBaseURL())
	tokens := session.NewDiskTokenStore(storage.Default(), config.TokenFile())
	return client, session.New(client, tokens)
}

func newOrderStore() (*orders.Store, *session.Store) {
	client, sess := newSession()
	return orders.NewStore(client), sess
}

func requireAuth(sess *session.Store) error {
	if !sess.IsAuthenticated() {
		return fmt.Errorf("not logged in, run `ordersync login` first")
	}
	return nil
}
