// Package printer renders an ast.Node tree back into source-compatible
// text, used by the `print` CLI mode and by the round-trip print property
// (spec §8 property 1).
package printer

import (
	"fmt"
	"strings"

	"github.com/cvm-lang/cvm/internal/ast"
)

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// Print renders node as cvm source text.
func Print(node ast.Node) string {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return fmt.Sprintf("%d", n.Value)
	case *ast.StringNode:
		return ast.Quote(n.Value)
	case *ast.IntrinsicNode:
		return n.Name
	case *ast.VariableNode:
		return n.Name
	case *ast.LambdaNode:
		names := make([]string, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
		}
		return "lambda (" + strings.Join(names, " ") + ") {\n" +
			indent(Print(n.Body), 2) + "\n}"
	case *ast.LetrecNode:
		parts := make([]string, len(n.Bindings))
		for i, b := range n.Bindings {
			parts[i] = b.Name.Name + " = " + Print(b.Init)
		}
		return "letrec (\n" +
			indent(strings.Join(parts, "\n"), 2) + "\n) {\n" +
			indent(Print(n.Body), 2) + "\n}"
	case *ast.IfNode:
		return "if " + Print(n.Cond) + " then " + Print(n.Then) + "\n" +
			"else " + Print(n.Else)
	case *ast.CallNode:
		parts := make([]string, 0, len(n.Args)+1)
		parts = append(parts, Print(n.Callee))
		for _, a := range n.Args {
			parts = append(parts, Print(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.SequenceNode:
		parts := make([]string, len(n.Exprs))
		for i, e := range n.Exprs {
			parts[i] = Print(e)
		}
		return "[\n" + indent(strings.Join(parts, "\n"), 2) + "\n]"
	default:
		return ""
	}
}
