package cmd

import (
	"fmt"
	"os"
	stdtime "time"

	"github.com/cvm-lang/cvm/internal/eval"
	"github.com/spf13/cobra"
)

var timeCmd = &cobra.Command{
	Use:   "time <source-file>",
	Short: "evaluate a source file and report wall-clock time on standard error",
	Args:  cobra.ExactArgs(1),
	RunE:  runTime,
}

func init() {
	rootCmd.AddCommand(timeCmd)
}

func runTime(_ *cobra.Command, args []string) error {
	start := stdtime.Now()
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}
	v, err := eval.Run(root, eval.Options{Debug: debugFlag})
	elapsed := stdtime.Since(start)
	if err != nil {
		fail(err)
	}
	fmt.Println(v.Display())
	fmt.Fprintf(os.Stderr, "Total time (seconds): %f\n", elapsed.Seconds())
	return nil
}
