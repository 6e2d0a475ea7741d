package review

import (
	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/review"
	"github.com/spf13/cobra"
)

var (
	env  *util.Env
	book *review.Book

	// ReviewCommands represents the review command group
	ReviewCommands = &cobra.Command{
		Use:                "review",
		Short:              "Read and write product reviews",
		PersistentPreRunE:  setupBook,
		PersistentPostRunE: teardownBook,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	ReviewCommands.AddCommand(addCmd)
	ReviewCommands.AddCommand(listCmd)
}

func setupBook(cmd *cobra.Command, _ []string) (err error) {
	env, err = util.Setup(cmd)
	if err != nil {
		return err
	}
	book = review.NewBook(env.Store)
	return nil
}

func teardownBook(*cobra.Command, []string) error {
	return env.Teardown()
}
