package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var astCmd = &cobra.Command{
	Use:   "ast <source-file>",
	Short: "parse a source file and print its bracketed structural form",
	Args:  cobra.ExactArgs(1),
	RunE:  runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
}

func runAST(_ *cobra.Command, args []string) error {
	root, err := parseFile(args[0])
	if err != nil {
		fail(err)
	}
	fmt.Println(root.String())
	return nil
}
