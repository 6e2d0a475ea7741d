package cart

import (
	"fmt"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var (
	addCmd = &cobra.Command{
		Use:   "add [productID]",
		Short: "Puts units of a product into the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart(cmd)
			if err != nil {
				return err
			}
			color, _ := cmd.Flags().GetString("color")
			quantity, _ := cmd.Flags().GetInt("quantity")
			if err := c.Add(args[0], color, quantity); err != nil {
				return err
			}
			fmt.Println("added to cart")
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [productID]",
		Short: "Removes every line of a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart(cmd)
			if err != nil {
				return err
			}
			if err := c.Remove(args[0]); err != nil {
				return err
			}
			fmt.Println("removed from cart")
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Shows the cart and its total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart(cmd)
			if err != nil {
				return err
			}
			// lines of products deleted in the meantime
			if dropped, err := c.Prune(); err != nil {
				return err
			} else if dropped > 0 {
				fmt.Printf("%d unavailable items removed\n", dropped)
			}

			items, err := c.Items()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("the cart is empty")
				return nil
			}
			total, err := c.TotalPrice()
			if err != nil {
				return err
			}

			tbl := table.New("ID", "Title", "Color", "Price", "Quantity").WithWriter(os.Stdout)
			tbl.WithPadding(2)
			units := 0
			for _, item := range items {
				tbl.AddRow(item.ProductID, item.Title, item.SelectedColor, fmt.Sprintf("%.2f", item.Price), item.Quantity)
				units += item.Quantity
			}
			tbl.Print()
			fmt.Printf("\n%d items, total %.2f\n", units, total)
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Empties the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart(cmd)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Println("cart cleared")
			return nil
		},
	}
	checkoutCmd = &cobra.Command{
		Use:   "checkout",
		Short: "Buys the cart and empties it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart(cmd)
			if err != nil {
				return err
			}
			lines, err := c.CheckoutItems()
			if err != nil {
				return err
			}
			applied, err := c.Checkout()
			if err != nil {
				return err
			}
			fmt.Printf("purchased %d of %d items\n", applied, len(lines))
			return nil
		},
	}
)

func init() {
	addCmd.Flags().String("color", "", "Color variant to buy")
	addCmd.Flags().Int("quantity", 1, "Number of units")
}
