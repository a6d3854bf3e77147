package eval

import (
	"github.com/cvm-lang/cvm/internal/lexer"
	"github.com/cvm-lang/cvm/internal/parser"
	"github.com/cvm-lang/cvm/internal/value"
)

// evalNested implements .eval: it spawns an entirely independent
// interpreter instance over src, with an empty environment and its own
// store — the pinned resolution of spec.md's "Open Question — .eval
// environment scope" (see SPEC_FULL.md §6). It shares this State's stdin
// and stdout so .put/.getline inside the nested program still reach the
// real process I/O.
func (st *State) evalNested(src string) (value.Value, error) {
	toks, err := lexer.New(src, lexer.WithTracing(st.debug)).Tokenize()
	if err != nil {
		return nil, err
	}
	root, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}
	return Run(root, Options{
		Debug:  st.debug,
		Stdin:  st.stdin,
		Stdout: st.stdout,
	})
}
