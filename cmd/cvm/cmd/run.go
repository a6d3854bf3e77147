package cmd

import (
	"fmt"

	"github.com/cvm-lang/cvm/internal/eval"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <source-file>",
	Short: "evaluate a source file and print its final value",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}
	v, err := eval.Run(root, eval.Options{Debug: debugFlag})
	if err != nil {
		fail(err)
	}
	fmt.Println(v.Display())
	return nil
}
