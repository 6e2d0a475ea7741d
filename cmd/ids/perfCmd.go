package ids

import (
	"fmt"
	"sync"
	"time"

	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/idalloc"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the id allocator",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNamespacePrefix = "__perf"
	perfNamespaces      = 4
	perfOps             = 1000
	perfNumThreads      = 8
)

func init() {
	key := "namespaces"
	perfTestCmd.Flags().Int(key, 4, util.WrapString("Number of namespaces used concurrently"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Allocations per namespace (every second id is freed again)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 8, util.WrapString("Number of goroutines issuing requests"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNamespaces = viper.GetInt("namespaces")
	perfOps = viper.GetInt("ops")
	perfNumThreads = viper.GetInt("threads")
	if perfNamespaces < 1 || perfOps < 1 || perfNumThreads < 1 {
		return fmt.Errorf("namespaces, ops and threads must be positive")
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the id allocator")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(env.Config.String())
	fmt.Printf("Namespaces: %d, ops: %d, threads: %d\n", perfNamespaces, perfOps, perfNumThreads)
	fmt.Println()

	registry := gometrics.NewRegistry()
	allocTimer := gometrics.GetOrRegisterTimer("allocate", registry)
	freeTimer := gometrics.GetOrRegisterTimer("free", registry)
	errCount := gometrics.GetOrRegisterCounter("errors", registry)

	namespaces := make([]string, perfNamespaces)
	for i := range namespaces {
		namespaces[i] = fmt.Sprintf("%s/%d", perfNamespacePrefix, i)
		if err := env.Allocator.Reset(namespaces[i]); err != nil {
			return err
		}
	}
	defer cleanupPerf(namespaces)

	type job struct {
		namespace string
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	start := time.Now()
	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter := 0
			for j := range jobs {
				var id string
				var err error
				allocTimer.Time(func() { id, err = env.Allocator.Allocate(j.namespace) })
				if err != nil {
					errCount.Inc(1)
					continue
				}
				if counter%2 == 0 {
					freeTimer.Time(func() { err = env.Allocator.Free(j.namespace, id) })
					if err != nil {
						errCount.Inc(1)
					}
				}
				counter++
			}
		}()
	}
	for i := 0; i < perfOps; i++ {
		for _, ns := range namespaces {
			jobs <- job{namespace: ns}
		}
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	printTimer("allocate", allocTimer)
	printTimer("free", freeTimer)
	total := allocTimer.Count() + freeTimer.Count()
	fmt.Printf("\n%d operations in %v (%.0f ops/s), %d errors\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), errCount.Count())

	for _, ns := range namespaces {
		state, err := env.Allocator.State(ns)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", ns, state.String())
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func printTimer(name string, t gometrics.Timer) {
	ps := t.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-9s count=%-8d mean=%-10v p50=%-10v p95=%-10v p99=%v\n",
		name, t.Count(),
		time.Duration(t.Mean()).Round(time.Microsecond),
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(ps[2]).Round(time.Microsecond))
}

// cleanupPerf removes the persisted state of the benchmark namespaces
func cleanupPerf(namespaces []string) {
	for _, ns := range namespaces {
		if err := env.Store.Delete(idalloc.DefaultKeyPrefix + ns); err != nil {
			fmt.Printf("(cleanup) - error deleting %s: %v\n", ns, err)
		}
	}
}
