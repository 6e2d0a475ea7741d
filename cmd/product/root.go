package product

import (
	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/catalog"
	"github.com/spf13/cobra"
)

var (
	env      *util.Env
	products *catalog.Catalog

	// ProductCommands represents the product command group
	ProductCommands = &cobra.Command{
		Use:                "product",
		Short:              "Manage the product catalog",
		PersistentPreRunE:  setupCatalog,
		PersistentPostRunE: teardownCatalog,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	ProductCommands.AddCommand(addCmd)
	ProductCommands.AddCommand(listCmd)
	ProductCommands.AddCommand(deleteCmd)
	ProductCommands.AddCommand(resetCmd)
	ProductCommands.AddCommand(syncCmd)
}

// setupCatalog opens the configured store and loads the catalog
func setupCatalog(cmd *cobra.Command, _ []string) (err error) {
	env, err = util.Setup(cmd)
	if err != nil {
		return err
	}
	products, err = env.OpenCatalog()
	return err
}

func teardownCatalog(*cobra.Command, []string) error {
	return env.Teardown()
}
