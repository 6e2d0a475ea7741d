package cmd

import (
	"fmt"
	"os"

	"github.com/jasonrodrigues28/product-landing-page/cmd/cart"
	"github.com/jasonrodrigues28/product-landing-page/cmd/ids"
	"github.com/jasonrodrigues28/product-landing-page/cmd/product"
	"github.com/jasonrodrigues28/product-landing-page/cmd/review"
	"github.com/jasonrodrigues28/product-landing-page/cmd/users"
	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "storefront",
		Short: "storefront catalog and id allocator",
		Long: fmt.Sprintf(`storefront (v%s)

Command line access to the storefront state: the product catalog,
the per-seller product id allocator, carts, reviews and the user
directory.

Configuration can be set via flags or environment variables in the
format STOREFRONT_<flag> (e.g. STOREFRONT_DATA_DIR=/var/lib/storefront).`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of storefront",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storefront v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(ids.IDCommands)
	RootCmd.AddCommand(product.ProductCommands)
	RootCmd.AddCommand(review.ReviewCommands)
	RootCmd.AddCommand(cart.CartCommands)
	RootCmd.AddCommand(users.UserCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStoreFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
