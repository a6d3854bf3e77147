// Package cmd implements the cvm command line: one cobra subcommand per
// interpreter mode, matching the shape `<program> <mode> <source-file>`.
package cmd

import (
	"fmt"
	"os"

	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/diag"
	"github.com/cvm-lang/cvm/internal/lexer"
	"github.com/cvm-lang/cvm/internal/parser"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cvm",
	Short: "cvm is a tree-walking interpreter for a small continuation-passing language",
	Long: `cvm lexes, parses, and evaluates programs over an explicit value
store with precise mark-sweep-compact garbage collection.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// debugFlag gates lexer and evaluator [Debug] tracing; -v can be
// combined with any mode, not only the debug subcommand.
var debugFlag bool

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "verbose", "v", false, "enable [Debug]-prefixed tracing on standard error")
}

// parseFile reads filename and runs it through the lexer and parser,
// returning the resulting tree.
func parseFile(filename string) (ast.Node, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filename, err)
	}
	toks, err := lexer.New(string(src), lexer.WithTracing(debugFlag)).Tokenize()
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// fail prints a diagnostic and exits nonzero (spec §6 exit codes).
func fail(err error) {
	if de, ok := err.(*diag.Error); ok {
		fmt.Fprintln(os.Stderr, de.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
