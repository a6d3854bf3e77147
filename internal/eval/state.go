// Package eval implements the evaluator: a stack-based micro-step loop
// over an explicit Stack of Layers and an allocated Store, the garbage
// collector that keeps that store compact, and the fixed intrinsic table.
//
// The evaluator never recurses into the host call stack to evaluate a
// sub-expression — all recursion is explicit via pushed Layers, which is
// what lets .callcc snapshot in-progress evaluation as an ordinary value.
package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/diag"
	"github.com/cvm-lang/cvm/internal/value"
)

// Options configures a single Run.
type Options struct {
	Debug  bool
	Stdin  io.Reader
	Stdout io.Writer
}

// State is the complete, self-contained interpretation state: the
// evaluation stack, the store, and the transient value register that
// holds the most recently produced value between micro-steps.
type State struct {
	Stack value.Stack
	Store *value.Store
	Reg   value.Value

	debug  bool
	stdin  *bufio.Reader
	stdout *bufio.Writer

	// insufficientCapacity is the last store capacity at which a GC pass
	// failed to bring usage below the trigger threshold; GC is suppressed
	// until the store has grown past it, preventing thrash (spec §4.5).
	insufficientCapacity int
}

// newState builds a fresh State with a single root frame layer evaluating
// root in an empty environment.
func newState(root ast.Node, opts Options) *State {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	rootEnv := value.Environment{}
	return &State{
		Stack:                value.Stack{{Env: &rootEnv, Expr: root, Frame: true}},
		Store:                value.NewStore(),
		debug:                opts.Debug,
		stdin:                bufio.NewReader(stdin),
		stdout:               bufio.NewWriter(stdout),
		insufficientCapacity: -1,
	}
}

// Run interprets root to completion and returns its final value, or the
// first fatal *diag.Error encountered.
func Run(root ast.Node, opts Options) (v value.Value, err error) {
	st := newState(root, opts)
	defer st.stdout.Flush()

	if st.debug {
		fmt.Fprintln(os.Stderr, "[Debug] *** starting interpreter ***")
	}

	for {
		if len(st.Stack) == 0 {
			return st.Reg, nil
		}

		st.maybeCollect()

		layer := st.Stack[len(st.Stack)-1]
		if st.debug {
			fmt.Fprintf(os.Stderr, "[Debug] evaluating AST node of type %T at %s\n", layer.Expr, layer.Expr.Position())
		}

		var stop bool
		stop, err = st.step(layer)
		if err != nil {
			return nil, err
		}
		if stop {
			return st.Reg, nil
		}
	}
}

func (st *State) push(l *value.Layer) {
	st.Stack = append(st.Stack, l)
}

func (st *State) pop() {
	st.Stack = st.Stack[:len(st.Stack)-1]
}

// step executes one micro-step of the expression at the top of the stack.
// The bool return signals an early program stop (raised only by .exit).
func (st *State) step(layer *value.Layer) (bool, error) {
	switch expr := layer.Expr.(type) {

	case *ast.IntegerNode:
		st.Reg = value.NewInteger(expr.Value)
		st.pop()

	case *ast.StringNode:
		st.Reg = value.NewString(expr.Value)
		st.pop()

	case *ast.LambdaNode:
		st.Reg = value.NewClosure(value.FilterLexical(*layer.Env), expr)
		st.pop()

	case *ast.LetrecNode:
		return false, st.stepLetrec(layer, expr)

	case *ast.IfNode:
		return false, st.stepIf(layer, expr)

	case *ast.VariableNode:
		return false, st.stepVariable(layer, expr)

	case *ast.CallNode:
		return st.stepCall(layer, expr)

	case *ast.SequenceNode:
		st.stepSequence(layer, expr)

	default:
		return false, diag.Internalf("unrecognized AST node %T", expr)
	}
	return false, nil
}

func (st *State) stepLetrec(layer *value.Layer, expr *ast.LetrecNode) error {
	n := len(expr.Bindings)
	switch {
	case layer.PC == 0:
		for _, b := range expr.Bindings {
			loc := st.Store.New(value.NewVoid())
			*layer.Env = append(*layer.Env, value.Binding{Name: b.Name.Name, Loc: loc})
		}
		layer.PC++

	case layer.PC <= n:
		if layer.PC > 1 {
			prev := expr.Bindings[layer.PC-2].Name
			loc, ok := layer.Env.Lookup(prev.Name)
			if !ok {
				return diag.Internalf("letrec binding %s vanished from its own environment", prev.Name)
			}
			st.Store.Set(loc, st.Reg)
		}
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Bindings[layer.PC-1].Init})
		layer.PC++

	case layer.PC == n+1:
		if layer.PC > 1 {
			prev := expr.Bindings[layer.PC-2].Name
			loc, ok := layer.Env.Lookup(prev.Name)
			if !ok {
				return diag.Internalf("letrec binding %s vanished from its own environment", prev.Name)
			}
			st.Store.Set(loc, st.Reg)
		}
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Body})
		layer.PC++

	default:
		*layer.Env = (*layer.Env)[:len(*layer.Env)-n]
		st.pop()
	}
	return nil
}

func (st *State) stepIf(layer *value.Layer, expr *ast.IfNode) error {
	switch layer.PC {
	case 0:
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Cond})
		layer.PC++
	case 1:
		cond, ok := st.Reg.(*value.Integer)
		if !ok {
			return diag.Runtimef(expr.Pos, "the condition of if evaluated to a value of wrong type")
		}
		branch := expr.Else
		if cond.Value != 0 {
			branch = expr.Then
		}
		st.push(&value.Layer{Env: layer.Env, Expr: branch})
		layer.PC++
	default:
		st.pop()
	}
	return nil
}

func (st *State) stepVariable(layer *value.Layer, expr *ast.VariableNode) error {
	var loc int
	if value.Lexical(expr.Name) {
		l, ok := layer.Env.Lookup(expr.Name)
		if !ok {
			return diag.Runtimef(expr.Pos, "undefined variable %s (intrinsic functions cannot be treated as variables)", expr.Name)
		}
		loc = l
	} else {
		l, ok := lookupDynamic(st.Stack, expr.Name)
		if !ok {
			return diag.Runtimef(expr.Pos, "undefined variable %s (intrinsic functions cannot be treated as variables)", expr.Name)
		}
		loc = l
	}
	st.Reg = st.Store.Get(loc)
	st.pop()
	return nil
}

// lookupDynamic scans the stack from top to bottom and, within each
// frame-marked layer, its environment right-to-left (spec §4.4).
func lookupDynamic(stack value.Stack, name string) (int, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].Frame {
			continue
		}
		if loc, ok := stack[i].Env.Lookup(name); ok {
			return loc, true
		}
	}
	return 0, false
}

func (st *State) stepSequence(layer *value.Layer, expr *ast.SequenceNode) {
	if layer.PC < len(expr.Exprs) {
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Exprs[layer.PC]})
		layer.PC++
		return
	}
	st.pop()
}
