package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cvm-lang/cvm/internal/eval"
	"github.com/spf13/cobra"
)

var spaceCmd = &cobra.Command{
	Use:   "space <source-file>",
	Short: "evaluate a source file and report peak heap usage on standard error",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpace,
}

func init() {
	rootCmd.AddCommand(spaceCmd)
}

// spaceSampleInterval is how often the background sampler reads
// MemStats.HeapAlloc while the program runs.
const spaceSampleInterval = time.Millisecond

func runSpace(_ *cobra.Command, args []string) error {
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}

	var peak uint64
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var ms runtime.MemStats
		ticker := time.NewTicker(spaceSampleInterval)
		defer ticker.Stop()
		for {
			runtime.ReadMemStats(&ms)
			for {
				old := atomic.LoadUint64(&peak)
				if ms.HeapAlloc <= old || atomic.CompareAndSwapUint64(&peak, old, ms.HeapAlloc) {
					break
				}
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	v, err := eval.Run(root, eval.Options{Debug: debugFlag})
	close(done)
	wg.Wait()
	if err != nil {
		fail(err)
	}
	fmt.Println(v.Display())
	fmt.Fprintf(os.Stderr, "Peak memory (KiB): %f\n", float64(atomic.LoadUint64(&peak))/1024)
	return nil
}
