// Package ast defines the expression node types produced by the parser.
//
// Every node carries a source token.Position. The node set is closed (see
// spec §3), so it is represented as an interface implemented by a fixed
// number of concrete struct types, dispatched by type switch rather than
// virtual method indirection — the same choice the teacher's own ast
// package makes for its (much larger) statement/expression hierarchy.
package ast

import (
	"fmt"
	"strings"

	"github.com/cvm-lang/cvm/internal/token"
)

// Node is implemented by every expression node.
type Node interface {
	Position() token.Position
	String() string // structural dump, used by `ast` mode
}

type IntegerNode struct {
	Pos   token.Position
	Value int64
}

func (n *IntegerNode) Position() token.Position { return n.Pos }
func (n *IntegerNode) String() string           { return fmt.Sprintf("(Integer %s %d)", n.Pos, n.Value) }

type StringNode struct {
	Pos   token.Position
	Value string
}

func (n *StringNode) Position() token.Position { return n.Pos }
func (n *StringNode) String() string           { return fmt.Sprintf("(String %s %s)", n.Pos, Quote(n.Value)) }

type IntrinsicNode struct {
	Pos  token.Position
	Name string // includes leading '.'
}

func (n *IntrinsicNode) Position() token.Position { return n.Pos }
func (n *IntrinsicNode) String() string           { return fmt.Sprintf("(Intrinsic %s %s)", n.Pos, n.Name) }

type VariableNode struct {
	Pos  token.Position
	Name string
}

func (n *VariableNode) Position() token.Position { return n.Pos }
func (n *VariableNode) String() string           { return fmt.Sprintf("(Variable %s %s)", n.Pos, n.Name) }

type LambdaNode struct {
	Pos    token.Position
	Params []*VariableNode
	Body   Node
}

func (n *LambdaNode) Position() token.Position { return n.Pos }
func (n *LambdaNode) String() string {
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.String()
	}
	return fmt.Sprintf("(Lambda %s [%s] %s)", n.Pos, strings.Join(names, ", "), n.Body)
}

// Binding is one (name = initializer) pair in a Letrec.
type Binding struct {
	Name *VariableNode
	Init Node
}

type LetrecNode struct {
	Pos      token.Position
	Bindings []Binding
	Body     Node
}

func (n *LetrecNode) Position() token.Position { return n.Pos }
func (n *LetrecNode) String() string {
	parts := make([]string, len(n.Bindings))
	for i, b := range n.Bindings {
		parts[i] = fmt.Sprintf("(%s %s)", b.Name, b.Init)
	}
	return fmt.Sprintf("(Letrec %s [%s] %s)", n.Pos, strings.Join(parts, ", "), n.Body)
}

type IfNode struct {
	Pos            token.Position
	Cond, Then, Else Node
}

func (n *IfNode) Position() token.Position { return n.Pos }
func (n *IfNode) String() string {
	return fmt.Sprintf("(If %s %s %s %s)", n.Pos, n.Cond, n.Then, n.Else)
}

type CallNode struct {
	Pos    token.Position
	Callee Node
	Args   []Node
}

func (n *CallNode) Position() token.Position { return n.Pos }
func (n *CallNode) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(Call %s %s [%s])", n.Pos, n.Callee, strings.Join(parts, ", "))
}

type SequenceNode struct {
	Pos   token.Position
	Exprs []Node // non-empty
}

func (n *SequenceNode) Position() token.Position { return n.Pos }
func (n *SequenceNode) String() string {
	parts := make([]string, len(n.Exprs))
	for i, e := range n.Exprs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(Sequence %s [%s])", n.Pos, strings.Join(parts, ", "))
}

// Quote renders s as a double-quoted literal, escaping '\\' and '"'.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
