package product

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/catalog"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var (
	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Adds a product and prints its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			email, _ := f.GetString("seller-email")
			name, _ := f.GetString("seller-name")
			title, _ := f.GetString("title")
			description, _ := f.GetString("description")
			category, _ := f.GetString("category")
			price, _ := f.GetFloat64("price")
			stock, _ := f.GetInt("stock")
			colors, _ := f.GetStringSlice("colors")

			p, err := products.Add(catalog.Seller{Email: email, Name: name}, catalog.Draft{
				Title:         title,
				Description:   description,
				Category:      category,
				Price:         price,
				Stock:         stock,
				ColorVariants: colors,
			})
			if err != nil {
				return err
			}
			fmt.Println(p.ProductID)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seller, _ := cmd.Flags().GetString("seller")
			category, _ := cmd.Flags().GetString("category")

			var list []catalog.Product
			switch {
			case seller != "":
				list = products.BySeller(seller)
			case category != "":
				list = products.ByCategory(category)
			default:
				list = products.List()
			}

			tbl := table.New("ID", "Title", "Category", "Price", "Stock", "Sold", "Seller").WithWriter(os.Stdout)
			tbl.WithPadding(2)
			for _, p := range list {
				if category != "" && p.Category != category {
					continue
				}
				stock := fmt.Sprint(p.Stock)
				if len(p.StockByColor) > 0 {
					parts := make([]string, 0, len(p.ColorVariants))
					for _, c := range p.ColorVariants {
						parts = append(parts, fmt.Sprintf("%s:%d", c, p.StockByColor[c]))
					}
					stock = strings.Join(parts, " ")
				}
				tbl.AddRow(p.ProductID, p.Title, p.Category, fmt.Sprintf("%.2f", p.Price), stock, p.UnitsSold, p.SellerID)
			}
			tbl.Print()
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id...]",
		Short: "Deletes products and frees their ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := products.DeleteMany(args)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, strings.Join(args, ", "))
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	syncCmd = &cobra.Command{
		Use:   "sync [file]",
		Short: "Replaces the catalog with a JSON snapshot and rebuilds the seller ids",
		Long: util.WrapString(`Replaces the catalog with a JSON snapshot (a list of products, "-" reads stdin).
The id counters of every seller are rebuilt from the snapshot, sellers missing from it are reset.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := products.Sync(snapshot); err != nil {
				return err
			}
			fmt.Printf("synced %d products\n", len(snapshot))
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Removes all products and resets every seller's ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := products.Reset(); err != nil {
				return err
			}
			fmt.Println("reset successfully")
			return nil
		},
	}
)

// readSnapshot decodes a product list from path or stdin
func readSnapshot(path string) ([]catalog.Product, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var snapshot []catalog.Product
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	for i, p := range snapshot {
		if p.ProductID == "" || p.SellerID == "" {
			return nil, fmt.Errorf("invalid snapshot %s: product %d needs productId and sellerId", path, i)
		}
	}
	return snapshot, nil
}

func init() {
	f := addCmd.Flags()
	f.String("seller-email", "", "Email of the seller (id namespace)")
	f.String("seller-name", "", "Display name of the seller (id prefix)")
	f.String("title", "", fmt.Sprintf("Product title (1-%d characters)", catalog.MaxTitleLength))
	f.String("description", "", "Short description")
	f.String("category", "", "Product category")
	f.Float64("price", 0, fmt.Sprintf("Price (%d-%d)", catalog.MinPrice, catalog.MaxPrice))
	f.Int("stock", 0, "Units in stock, split evenly over the colors")
	f.StringSlice("colors", nil, "Comma separated color variants")
	_ = addCmd.MarkFlagRequired("seller-email")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("price")

	listCmd.Flags().String("seller", "", "Only products of this seller email")
	listCmd.Flags().String("category", "", "Only products of this category")
}
