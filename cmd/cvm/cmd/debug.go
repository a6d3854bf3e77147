package cmd

import (
	"fmt"

	"github.com/cvm-lang/cvm/internal/eval"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug <source-file>",
	Short: "evaluate a source file with verbose tracing on standard error",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
}

func runDebug(_ *cobra.Command, args []string) error {
	debugFlag = true
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}
	v, err := eval.Run(root, eval.Options{Debug: true})
	if err != nil {
		fail(err)
	}
	fmt.Println(v.Display())
	return nil
}
