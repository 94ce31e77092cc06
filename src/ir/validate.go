package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// -------------------
// ----- Globals -----
// -------------------

// builtins are the runtime functions every program may call.
var builtins = []struct {
	name string
	typ  FuncType
}{
	{"printInt", FuncType{Params: []Type{Int}, Ret: Void}},
	{"printDouble", FuncType{Params: []Type{Double}, Ret: Void}},
	{"printString", FuncType{Params: []Type{String}, Ret: Void}},
	{"readInt", FuncType{Ret: Int}},
	{"readDouble", FuncType{Ret: Double}},
}

// ---------------------
// ----- Functions -----
// ---------------------

// IsBuiltin returns true if name is one of the runtime functions.
func IsBuiltin(name string) bool {
	for _, e1 := range builtins {
		if e1.name == name {
			return true
		}
	}
	return false
}

// Signature returns the signature of the function definition f.
func (f *FunctionDef) Signature() FuncType {
	ft := FuncType{Params: make([]Type, len(f.Params)), Ret: f.Ret}
	for i1, e1 := range f.Params {
		ft.Params[i1] = e1.Typ
	}
	return ft
}

// TypeCheck validates the program and annotates every expression with its resolved type. Checking stops at the
// first error. Signatures of all functions are registered before any body is checked, so functions may call
// functions defined further down in the source.
func TypeCheck(prog *Program) error {
	env := NewEnv()
	for _, e1 := range builtins {
		if err := env.AddSignature(e1.name, e1.typ, Pos{}); err != nil {
			panic(err)
		}
	}
	for _, e1 := range prog.Funcs {
		for _, e2 := range e1.Params {
			if e2.Typ.Kind == KindVoid {
				return newError(VoidVariable, e2.Pos, "parameter %s cannot have type void", e2.Name)
			}
		}
		if err := env.AddSignature(e1.Name, e1.Signature(), e1.Pos); err != nil {
			return err
		}
	}
	if _, err := env.FindFn("main", Pos{}); err != nil {
		return &TypeError{Kind: MissingMain, Msg: "missing function main"}
	}
	for _, e1 := range prog.Funcs {
		if err := checkFunction(env, e1); err != nil {
			return errors.WithMessagef(err, "in function %s", e1.Name)
		}
	}
	return nil
}

// checkFunction checks the body of function f. Parameters and the top level statements of the body share one scope.
func checkFunction(env *Env, f *FunctionDef) error {
	if err := env.EnterFn(f.Name, f.Pos); err != nil {
		return err
	}
	env.EnterScope()
	for _, e1 := range f.Params {
		if err := env.AddVar(e1.Name, e1.Typ, e1.Pos); err != nil {
			return err
		}
	}
	if err := checkStmts(env, f.Body.Stmts); err != nil {
		return err
	}
	env.ExitScope()
	if f.Ret.Kind != KindVoid && !returns(f.Body.Stmts) {
		return newError(MissingReturn, f.Pos, "function %s may end without returning %s", f.Name, f.Ret)
	}
	return nil
}

// checkStmts checks a statement list in the current scope. Expressions are replaced by their typed rewrites.
func checkStmts(env *Env, stmts []Stmt) error {
	for _, e1 := range stmts {
		if err := checkStmt(env, e1); err != nil {
			return err
		}
	}
	return nil
}

// checkBranch checks the body of a conditional or loop in its own scope.
func checkBranch(env *Env, s Stmt) error {
	env.EnterScope()
	if err := checkStmt(env, s); err != nil {
		return err
	}
	env.ExitScope()
	return nil
}

// checkCond infers a condition and requires it to be boolean.
func checkCond(env *Env, cond Expr) (Expr, error) {
	t, c, err := inferExpr(env, cond)
	if err != nil {
		return nil, err
	}
	if t.Kind != KindBool {
		return nil, newError(ConditionNotBoolean, cond.Position(), "condition must be boolean, got %s", t)
	}
	return c, nil
}

// checkStmt checks a single statement.
func checkStmt(env *Env, s Stmt) error {
	switch n := s.(type) {
	case *Block:
		env.EnterScope()
		if err := checkStmts(env, n.Stmts); err != nil {
			return err
		}
		env.ExitScope()
	case *Decl:
		if n.Typ.Kind == KindVoid {
			return newError(VoidVariable, n.Pos, "variables cannot have type void")
		}
		for _, e1 := range n.Items {
			if e1.Init != nil {
				t, x, err := inferExpr(env, e1.Init)
				if err != nil {
					return err
				}
				if !t.Equal(n.Typ) {
					return newError(InitializerTypeMismatch, e1.Pos, "cannot initialise %s %s with %s", n.Typ, e1.Name, t)
				}
				e1.Init = x
			}
			if err := env.AddVar(e1.Name, n.Typ, e1.Pos); err != nil {
				return err
			}
		}
	case *Assign:
		var tt Type
		var target Expr
		var err error
		switch x := Unwrap(n.Target).(type) {
		case *Ident:
			tt, target, err = inferExpr(env, x)
		case *Index:
			tt, target, err = resolveIndex(env, x)
		default:
			return newError(AssignmentTypeMismatch, n.Pos, "cannot assign to expression")
		}
		if err != nil {
			return err
		}
		vt, value, err := inferExpr(env, n.Value)
		if err != nil {
			return err
		}
		if !tt.Equal(vt) {
			return newError(AssignmentTypeMismatch, n.Pos, "cannot assign %s to %s", vt, tt)
		}
		n.Target, n.Value = target, value
	case *Incr:
		t, err := env.FindVar(n.Name, n.Pos)
		if err != nil {
			return err
		}
		if t.Kind != KindInt {
			return newError(NotAnInteger, n.Pos, "%s must be int, got %s", n.Name, t)
		}
	case *If:
		c, err := checkCond(env, n.Cond)
		if err != nil {
			return err
		}
		n.Cond = c
		return checkBranch(env, n.Then)
	case *IfElse:
		c, err := checkCond(env, n.Cond)
		if err != nil {
			return err
		}
		n.Cond = c
		if err = checkBranch(env, n.Then); err != nil {
			return err
		}
		return checkBranch(env, n.Else)
	case *While:
		c, err := checkCond(env, n.Cond)
		if err != nil {
			return err
		}
		n.Cond = c
		return checkBranch(env, n.Body)
	case *ForEach:
		t, x, err := inferExpr(env, n.Array)
		if err != nil {
			return err
		}
		if !t.IsArray() {
			return newError(NotAnArray, n.Array.Position(), "cannot iterate over %s", t)
		}
		if !t.ElemOf().Equal(n.ElemType) {
			return newError(LoopVariableTypeMismatch, n.Pos, "loop variable %s has type %s, elements have type %s", n.Name, n.ElemType, t.ElemOf())
		}
		n.Array = x
		env.EnterScope()
		if err = env.AddVar(n.Name, n.ElemType, n.Pos); err != nil {
			return err
		}
		if err = checkBranch(env, n.Body); err != nil {
			return err
		}
		env.ExitScope()
	case *Return:
		name, ft := env.CurrentFunction()
		if ft.Ret.Kind == KindVoid {
			return newError(ReturnTypeMismatch, n.Pos, "void function %s cannot return a value", name)
		}
		t, x, err := inferExpr(env, n.Value)
		if err != nil {
			return err
		}
		if !t.Equal(ft.Ret) {
			return newError(ReturnTypeMismatch, n.Pos, "function %s returns %s, got %s", name, ft.Ret, t)
		}
		n.Value = x
	case *VoidReturn:
		name, ft := env.CurrentFunction()
		if ft.Ret.Kind != KindVoid {
			return newError(ReturnTypeMismatch, n.Pos, "function %s must return %s", name, ft.Ret)
		}
	case *ExprStmt:
		t, x, err := inferExpr(env, n.X)
		if err != nil {
			return err
		}
		if t.Kind != KindVoid {
			return newError(ExpressionMustBeVoid, n.Pos, "expression statement must be void, got %s", t)
		}
		n.X = x
	case *Empty:
	default:
		panic(fmt.Sprintf("unexpected statement node %T", s))
	}
	return nil
}
