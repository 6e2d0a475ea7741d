package ids

import (
	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/spf13/cobra"
)

var (
	env *util.Env

	// IDCommands represents the id allocator command group
	IDCommands = &cobra.Command{
		Use:                "ids",
		Short:              "Inspect and modify the per-seller id allocator",
		PersistentPreRunE:  setupEnv,
		PersistentPostRunE: teardownEnv,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	IDCommands.AddCommand(allocateCmd)
	IDCommands.AddCommand(freeCmd)
	IDCommands.AddCommand(resetCmd)
	IDCommands.AddCommand(rebuildCmd)
	IDCommands.AddCommand(showCmd)
	IDCommands.AddCommand(statsCmd)
	IDCommands.AddCommand(perfTestCmd)
}

// setupEnv opens the configured store and allocator
func setupEnv(cmd *cobra.Command, _ []string) (err error) {
	env, err = util.Setup(cmd)
	return err
}

func teardownEnv(*cobra.Command, []string) error {
	return env.Teardown()
}
