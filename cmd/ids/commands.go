package ids

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jasonrodrigues28/product-landing-page/lib/idalloc"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var (
	allocateCmd = &cobra.Command{
		Use:   "allocate [namespace]",
		Short: "Issues the next identifier of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace := args[0]
			if prefix, _ := cmd.Flags().GetString("prefix"); prefix != "" {
				if err := env.Allocator.Ensure(namespace, prefix); err != nil {
					return err
				}
			}
			count, _ := cmd.Flags().GetInt("count")
			for i := 0; i < count; i++ {
				id, err := env.Allocator.Allocate(namespace)
				if err != nil {
					return err
				}
				fmt.Println(id)
			}
			return nil
		},
	}
	freeCmd = &cobra.Command{
		Use:   "free [namespace] [id...]",
		Short: "Makes identifiers available for reuse",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Allocator.FreeMany(args[0], args[1:]); err != nil {
				return err
			}
			fmt.Println("freed successfully")
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset [namespace]",
		Short: "Resets a namespace so numbering starts at 1 again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Allocator.Reset(args[0]); err != nil {
				return err
			}
			fmt.Println("reset successfully")
			return nil
		},
	}
	rebuildCmd = &cobra.Command{
		Use:   "rebuild [namespace] [id...]",
		Short: "Rebuilds a namespace from the identifiers that currently exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Allocator.RebuildFromExisting(args[0], args[1:]); err != nil {
				return err
			}
			fmt.Println("rebuilt successfully")
			return nil
		},
	}
	showCmd = &cobra.Command{
		Use:   "show [namespace]",
		Short: "Shows the state of a namespace and its next identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := env.Allocator.State(args[0])
			if err != nil {
				return err
			}
			next, err := env.Allocator.Peek(args[0])
			if err != nil {
				return err
			}
			fmt.Println(state.String())
			fmt.Printf("next id: %s\n", next)
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Lists all persisted namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			namespaces, err := env.States.Namespaces()
			if err != nil {
				return err
			}

			tbl := table.New("Namespace", "Prefix", "Next", "HWM", "Reclaimed").WithWriter(os.Stdout)
			tbl.WithPadding(2)
			for _, ns := range namespaces {
				state, err := env.Allocator.State(ns)
				if err != nil {
					return err
				}
				tbl.AddRow(ns, state.Prefix, state.NextSequential, state.HighWaterMark, strconv.Itoa(len(state.Reclaimed)))
			}
			tbl.Print()

			if prom, _ := cmd.Flags().GetBool("prometheus"); prom {
				fmt.Println()
				idalloc.WriteMetrics(os.Stdout)
			}
			return nil
		},
	}
)

func init() {
	allocateCmd.Flags().String("prefix", "", "Prefix assigned if the namespace is new")
	allocateCmd.Flags().Int("count", 1, "Number of identifiers to issue")
	statsCmd.Flags().Bool("prometheus", false, "Also print the allocator counters of this process")
}
