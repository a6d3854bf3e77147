package cmd

import (
	"fmt"

	"github.com/cvm-lang/cvm/internal/printer"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print <source-file>",
	Short: "parse a source file and pretty-print it as source-compatible text",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func runPrint(_ *cobra.Command, args []string) error {
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}
	fmt.Println(printer.Print(root))
	return nil
}
