package cart

import (
	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/auth"
	"github.com/jasonrodrigues28/product-landing-page/lib/cart"
	"github.com/spf13/cobra"
)

var (
	env *util.Env

	// CartCommands represents the cart command group
	CartCommands = &cobra.Command{
		Use:                "cart",
		Short:              "Fill and check out the cart of a buyer",
		PersistentPreRunE:  setupEnv,
		PersistentPostRunE: teardownEnv,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	for _, cmd := range []*cobra.Command{addCmd, removeCmd, listCmd, clearCmd, checkoutCmd} {
		util.SetupLoginFlags(cmd, auth.RoleBuyer)
		CartCommands.AddCommand(cmd)
	}
}

func setupEnv(cmd *cobra.Command, _ []string) (err error) {
	env, err = util.Setup(cmd)
	return err
}

func teardownEnv(*cobra.Command, []string) error {
	return env.Teardown()
}

// openCart logs the buyer in and opens their cart on the catalog
func openCart(cmd *cobra.Command) (*cart.Cart, error) {
	session, err := env.Login(cmd, auth.RequireBuyer)
	if err != nil {
		return nil, err
	}
	products, err := env.OpenCatalog()
	if err != nil {
		return nil, err
	}
	return cart.Open(env.Store, session.Username, products)
}
