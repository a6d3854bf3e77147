package eval

import (
	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/diag"
	"github.com/cvm-lang/cvm/internal/value"
)

// stepCall advances a Call node. Intrinsic callees are special-cased
// because intrinsics are not first-class values (spec §4.4); everything
// else evaluates the callee expression and dispatches on its runtime type.
func (st *State) stepCall(layer *value.Layer, expr *ast.CallNode) (bool, error) {
	if intr, ok := expr.Callee.(*ast.IntrinsicNode); ok {
		return st.stepIntrinsicCall(layer, expr, intr)
	}
	return st.stepValueCall(layer, expr)
}

func argsOf(layer *value.Layer) []value.Value {
	v, _ := layer.Local["args"].([]value.Value)
	return v
}

func (st *State) stepIntrinsicCall(layer *value.Layer, expr *ast.CallNode, intr *ast.IntrinsicNode) (bool, error) {
	n := len(expr.Args)
	switch {
	case layer.PC == 0:
		if layer.Local == nil {
			layer.Local = map[string]any{}
		}
		layer.Local["args"] = []value.Value{}
		layer.PC++

	case layer.PC <= n:
		if layer.PC > 1 {
			layer.Local["args"] = append(argsOf(layer), st.Reg)
		}
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Args[layer.PC-1]})
		layer.PC++

	default:
		if layer.PC > 1 {
			layer.Local["args"] = append(argsOf(layer), st.Reg)
		}
		args := argsOf(layer)

		switch intr.Name {
		case ".callcc":
			return false, st.execCallCC(intr, args)
		case ".exit":
			if len(args) != 0 {
				return false, diag.Runtimef(intr.Pos, "wrong number of arguments given to %s", intr.Name)
			}
			return true, nil
		default:
			result, err := st.execIntrinsic(intr, args)
			if err != nil {
				return false, err
			}
			st.Reg = result
			st.pop()
		}
	}
	return false, nil
}

// execCallCC implements .callcc: pop the call layer itself (the
// continuation resumes *after* the call, not at it), snapshot what
// remains of the stack as a Continuation, then invoke the given closure
// with that continuation as its single argument.
func (st *State) execCallCC(intr *ast.IntrinsicNode, args []value.Value) error {
	if len(args) != 1 {
		return diag.Runtimef(intr.Pos, "wrong number of arguments given to %s", intr.Name)
	}
	closure, ok := args[0].(*value.Closure)
	if !ok {
		return diag.Runtimef(intr.Pos, "wrong type of arguments given to %s", intr.Name)
	}
	if len(closure.Fun.Params) != 1 {
		return diag.Runtimef(intr.Pos, "wrong number of arguments given to %s", intr.Name)
	}

	st.pop()
	cont := value.NewContinuation(st.Stack.Clone())
	loc := cont.Location()
	if loc < 0 {
		loc = st.Store.New(cont)
	}

	newEnv := append(value.Environment(nil), closure.Env...)
	newEnv = append(newEnv, value.Binding{Name: closure.Fun.Params[0].Name, Loc: loc})
	st.push(&value.Layer{Env: &newEnv, Expr: closure.Fun.Body, Frame: true})
	return nil
}

func (st *State) stepValueCall(layer *value.Layer, expr *ast.CallNode) (bool, error) {
	n := len(expr.Args)
	switch {
	case layer.PC == 0:
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Callee})
		layer.PC++

	case layer.PC == 1:
		if layer.Local == nil {
			layer.Local = map[string]any{}
		}
		layer.Local["callee"] = st.Reg
		layer.Local["args"] = []value.Value{}
		layer.PC++

	case layer.PC-1 <= n:
		argIdx := layer.PC - 2
		if argIdx > 0 {
			layer.Local["args"] = append(argsOf(layer), st.Reg)
		}
		st.push(&value.Layer{Env: layer.Env, Expr: expr.Args[argIdx]})
		layer.PC++

	case layer.PC-1 == n+1:
		if n > 0 {
			layer.Local["args"] = append(argsOf(layer), st.Reg)
		}
		callee, _ := layer.Local["callee"].(value.Value)
		args := argsOf(layer)
		switch c := callee.(type) {
		case *value.Closure:
			if len(args) != len(c.Fun.Params) {
				return false, diag.Runtimef(expr.Callee.Position(), "wrong number of arguments given to %s", expr.Callee)
			}
			newEnv := append(value.Environment(nil), c.Env...)
			for i, p := range c.Fun.Params {
				loc := args[i].Location()
				if loc < 0 {
					loc = st.Store.New(args[i])
				}
				newEnv = append(newEnv, value.Binding{Name: p.Name, Loc: loc})
			}
			st.push(&value.Layer{Env: &newEnv, Expr: c.Fun.Body, Frame: true})
			layer.PC++

		case *value.Continuation:
			if len(args) != 1 {
				return false, diag.Runtimef(expr.Callee.Position(), "wrong number of arguments given to %s", expr.Callee)
			}
			// st.Reg already holds the sole argument; replace the stack
			// wholesale with a fresh copy of the captured one and let the
			// outer loop resume from there (the discarded stack's call
			// layer is never popped, matching spec §4.4).
			st.Stack = c.Stack.Clone()
			return false, nil

		default:
			return false, diag.Runtimef(expr.Callee.Position(), "%s (whose evaluation result is %s) is not callable", expr.Callee, callee.Display())
		}

	default:
		st.pop()
	}
	return false, nil
}
