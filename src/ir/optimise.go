package ir

import (
	"fmt"
	"sync"

	"jlc/src/util"
)

// Optimise folds constant sub-expressions of a type checked program. Functions are folded in parallel when
// opt.Threads is larger than 1. Integer division and modulo by zero are left for run time.
func Optimise(opt util.Options, prog *Program) {
	l := len(prog.Funcs)
	t := opt.Threads
	if t > l {
		t = l // Cannot launch more threads than functions.
	}
	if t <= 1 {
		for _, e1 := range prog.Funcs {
			foldStmts(e1.Body.Stmts)
		}
		return
	}

	wg := sync.WaitGroup{}
	n := l / t   // Number of jobs per worker thread.
	res := l % t // Residual work for res first threads.
	start := 0
	for i1 := 0; i1 < t; i1++ {
		m := n
		if i1 < res {
			m++
		}
		wg.Add(1)
		go func(i, j int) {
			defer wg.Done()
			for i2 := i; i2 < i+j; i2++ {
				foldStmts(prog.Funcs[i2].Body.Stmts)
			}
		}(start, m)
		start += m
	}
	wg.Wait()
}

// foldStmts folds every expression of a statement list.
func foldStmts(stmts []Stmt) {
	for _, e1 := range stmts {
		foldStmt(e1)
	}
}

// foldStmt folds the expressions of a single statement in place.
func foldStmt(s Stmt) {
	switch n := s.(type) {
	case *Block:
		foldStmts(n.Stmts)
	case *Decl:
		for _, e1 := range n.Items {
			if e1.Init != nil {
				e1.Init = fold(e1.Init)
			}
		}
	case *Assign:
		n.Target = fold(n.Target)
		n.Value = fold(n.Value)
	case *If:
		n.Cond = fold(n.Cond)
		foldStmt(n.Then)
	case *IfElse:
		n.Cond = fold(n.Cond)
		foldStmt(n.Then)
		foldStmt(n.Else)
	case *While:
		n.Cond = fold(n.Cond)
		foldStmt(n.Body)
	case *ForEach:
		n.Array = fold(n.Array)
		foldStmt(n.Body)
	case *Return:
		n.Value = fold(n.Value)
	case *ExprStmt:
		n.X = fold(n.X)
	case *Incr, *VoidReturn, *Empty:
	default:
		panic(fmt.Sprintf("unexpected statement node %T", s))
	}
}

// fold returns e with constant sub-expressions replaced by typed literals. e must be a Typed expression.
func fold(e Expr) Expr {
	te, ok := e.(*Typed)
	if !ok {
		panic(fmt.Sprintf("cannot fold untyped expression %T", e))
	}
	switch n := te.X.(type) {
	case *Unary:
		n.X = fold(n.X)
		switch x := n.X.(*Typed).X.(type) {
		case *IntLit:
			return &Typed{X: &IntLit{Pos: n.Pos, Val: -x.Val}, Typ: Int}
		case *DoubleLit:
			return &Typed{X: &DoubleLit{Pos: n.Pos, Val: -x.Val}, Typ: Double}
		case *BoolLit:
			return &Typed{X: &BoolLit{Pos: n.Pos, Val: !x.Val}, Typ: Bool}
		}
	case *Binary:
		n.X = fold(n.X)
		n.Y = fold(n.Y)
		if r := foldBinary(n); r != nil {
			return r
		}
	case *Call:
		for i1, e1 := range n.Args {
			n.Args[i1] = fold(e1)
		}
	case *Index:
		n.X = fold(n.X)
		n.Index = fold(n.Index)
	case *NewArray:
		for i1, e1 := range n.Sizes {
			n.Sizes[i1] = fold(e1)
		}
	case *Length:
		n.X = fold(n.X)
	}
	return e
}

// foldBinary returns a typed literal holding the value of n if both operands are literals, else <nil>.
func foldBinary(n *Binary) Expr {
	x, y := n.X.(*Typed).X, n.Y.(*Typed).X
	switch a := x.(type) {
	case *IntLit:
		b, ok := y.(*IntLit)
		if !ok {
			return nil
		}
		switch n.Op {
		case OpAdd:
			return intLit(n.Pos, a.Val+b.Val)
		case OpSub:
			return intLit(n.Pos, a.Val-b.Val)
		case OpMul:
			return intLit(n.Pos, a.Val*b.Val)
		case OpDiv:
			if b.Val == 0 {
				return nil
			}
			return intLit(n.Pos, a.Val/b.Val)
		case OpMod:
			if b.Val == 0 {
				return nil
			}
			return intLit(n.Pos, a.Val%b.Val)
		case OpLt:
			return boolLit(n.Pos, a.Val < b.Val)
		case OpLe:
			return boolLit(n.Pos, a.Val <= b.Val)
		case OpGt:
			return boolLit(n.Pos, a.Val > b.Val)
		case OpGe:
			return boolLit(n.Pos, a.Val >= b.Val)
		case OpEq:
			return boolLit(n.Pos, a.Val == b.Val)
		case OpNe:
			return boolLit(n.Pos, a.Val != b.Val)
		}
	case *DoubleLit:
		b, ok := y.(*DoubleLit)
		if !ok {
			return nil
		}
		switch n.Op {
		case OpAdd:
			return doubleLit(n.Pos, a.Val+b.Val)
		case OpSub:
			return doubleLit(n.Pos, a.Val-b.Val)
		case OpMul:
			return doubleLit(n.Pos, a.Val*b.Val)
		case OpDiv:
			return doubleLit(n.Pos, a.Val/b.Val)
		case OpLt:
			return boolLit(n.Pos, a.Val < b.Val)
		case OpLe:
			return boolLit(n.Pos, a.Val <= b.Val)
		case OpGt:
			return boolLit(n.Pos, a.Val > b.Val)
		case OpGe:
			return boolLit(n.Pos, a.Val >= b.Val)
		case OpEq:
			return boolLit(n.Pos, a.Val == b.Val)
		case OpNe:
			return boolLit(n.Pos, a.Val != b.Val)
		}
	case *BoolLit:
		b, ok := y.(*BoolLit)
		if !ok {
			return nil
		}
		switch n.Op {
		case OpAnd:
			return boolLit(n.Pos, a.Val && b.Val)
		case OpOr:
			return boolLit(n.Pos, a.Val || b.Val)
		case OpEq:
			return boolLit(n.Pos, a.Val == b.Val)
		case OpNe:
			return boolLit(n.Pos, a.Val != b.Val)
		}
	}
	return nil
}

func intLit(p Pos, v int64) Expr      { return &Typed{X: &IntLit{Pos: p, Val: v}, Typ: Int} }
func doubleLit(p Pos, v float64) Expr { return &Typed{X: &DoubleLit{Pos: p, Val: v}, Typ: Double} }
func boolLit(p Pos, v bool) Expr      { return &Typed{X: &BoolLit{Pos: p, Val: v}, Typ: Bool} }
