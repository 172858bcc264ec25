package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ordersync/ordersync/pkg/orders"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse and edit orders",
}

var (
	listPage   int
	listLimit  int
	listSearch string
	listFrom   string
	listTo     string
)

// ordersync orders list — fetch and print one page.
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, sess := newOrderStore()
		if err := requireAuth(sess); err != nil {
			return err
		}

		err := store.Fetch(cmd.Context(), orders.FetchParams{
			Page:     listPage,
			Limit:    listLimit,
			Search:   listSearch,
			DateFrom: listFrom,
			DateTo:   listTo,
		})
		if err != nil {
			return err
		}

		page := store.Pagination()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCUSTOMER\tPRODUCT\tQTY\tSTATUS\tCREATED")
		for _, o := range store.Orders() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				o.ID, o.CustomerName, o.ProductName, o.Quantity, o.Status,
				o.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		fmt.Printf("\npage %d of %d (%d orders)\n", page.Page, page.Pages, page.Total)
		return nil
	},
}

var (
	createCustomer string
	createEmail    string
	createContact  string
	createAddress  string
	createProduct  string
	createQuantity int
	createImage    string
)

// ordersync orders create — submit the customer order form.
var ordersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Place a new order",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _ := newOrderStore()

		input := orders.CreateInput{
			CustomerName:    createCustomer,
			Email:           createEmail,
			ContactNumber:   createContact,
			ShippingAddress: createAddress,
			ProductName:     createProduct,
			Quantity:        createQuantity,
		}
		if createImage != "" {
			f, err := os.Open(createImage)
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer f.Close()
			input.Image = f
			input.ImageName = filepath.Base(createImage)
		}

		created, err := store.Create(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Printf("Order %s created.\n", created.ID)
		return nil
	},
}

// ordersync orders set-quantity <id> <quantity>.
var ordersSetQuantityCmd = &cobra.Command{
	Use:   "set-quantity <id> <quantity>",
	Short: "Change the quantity of an order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, sess := newOrderStore()
		if err := requireAuth(sess); err != nil {
			return err
		}

		var quantity int
		if _, err := fmt.Sscanf(args[1], "%d", &quantity); err != nil {
			return fmt.Errorf("quantity must be an integer")
		}
		if err := store.UpdateQuantity(cmd.Context(), args[0], quantity); err != nil {
			return err
		}
		fmt.Println("Quantity updated.")
		return nil
	},
}

// ordersync orders delete <id>.
var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, sess := newOrderStore()
		if err := requireAuth(sess); err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Order deleted.")
		return nil
	},
}

// ordersync orders get <id>.
var ordersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, sess := newOrderStore()
		if err := requireAuth(sess); err != nil {
			return err
		}

		o, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%s\n", o.ID)
		fmt.Fprintf(w, "Customer:\t%s\n", o.CustomerName)
		fmt.Fprintf(w, "Email:\t%s\n", o.Email)
		fmt.Fprintf(w, "Contact:\t%s\n", o.ContactNumber)
		fmt.Fprintf(w, "Address:\t%s\n", o.ShippingAddress)
		fmt.Fprintf(w, "Product:\t%s\n", o.ProductName)
		fmt.Fprintf(w, "Quantity:\t%d\n", o.Quantity)
		fmt.Fprintf(w, "Status:\t%s\n", o.Status)
		if o.ProductImage != "" {
			fmt.Fprintf(w, "Image:\t%s\n", o.ProductImage)
		}
		fmt.Fprintf(w, "Created:\t%s\n", o.CreatedAt.Format("2006-01-02 15:04:05"))
		w.Flush()
		return nil
	},
}

func init() {
	ordersListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	ordersListCmd.Flags().IntVar(&listLimit, "limit", 10, "orders per page")
	ordersListCmd.Flags().StringVar(&listSearch, "search", "", "match against customer, email or product")
	ordersListCmd.Flags().StringVar(&listFrom, "from", "", "created on or after (YYYY-MM-DD)")
	ordersListCmd.Flags().StringVar(&listTo, "to", "", "created on or before (YYYY-MM-DD)")

	ordersCreateCmd.Flags().StringVar(&createCustomer, "customer", "", "customer name")
	ordersCreateCmd.Flags().StringVar(&createEmail, "email", "", "customer email")
	ordersCreateCmd.Flags().StringVar(&createContact, "contact", "", "contact number")
	ordersCreateCmd.Flags().StringVar(&createAddress, "address", "", "shipping address")
	ordersCreateCmd.Flags().StringVar(&createProduct, "product", "", "product name")
	ordersCreateCmd.Flags().IntVar(&createQuantity, "quantity", 1, "quantity")
	ordersCreateCmd.Flags().StringVar(&createImage, "image", "", "path to a product image to upload")

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersGetCmd)
	ordersCmd.AddCommand(ordersCreateCmd)
	ordersCmd.AddCommand(ordersSetQuantityCmd)
	ordersCmd.AddCommand(ordersDeleteCmd)
}
