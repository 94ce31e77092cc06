package ir

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// kindSet is a bit set of Kind values.
type kindSet uint

// opRule gives the operand kinds accepted by an operator and whether the result is boolean. Operators whose result
// is not boolean yield the operand type.
type opRule struct {
	allowed kindSet
	boolRes bool
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	setInt     = kindSet(1 << KindInt)
	setDouble  = kindSet(1 << KindDouble)
	setBool    = kindSet(1 << KindBool)
	setNumeric = setInt | setDouble
)

// -------------------
// ----- Globals -----
// -------------------

// binRules is the lookup table of allowed operand kinds per binary operator. Equality accepts booleans on top of
// the numeric kinds accepted by the ordering operators.
var binRules = [...]opRule{
	OpAdd: {allowed: setNumeric},
	OpSub: {allowed: setNumeric},
	OpMul: {allowed: setNumeric},
	OpDiv: {allowed: setNumeric},
	OpMod: {allowed: setInt},
	OpLt:  {allowed: setNumeric, boolRes: true},
	OpLe:  {allowed: setNumeric, boolRes: true},
	OpGt:  {allowed: setNumeric, boolRes: true},
	OpGe:  {allowed: setNumeric, boolRes: true},
	OpEq:  {allowed: setNumeric | setBool, boolRes: true},
	OpNe:  {allowed: setNumeric | setBool, boolRes: true},
	OpAnd: {allowed: setBool, boolRes: true},
	OpOr:  {allowed: setBool, boolRes: true},
}

// unRules is the lookup table of allowed operand kinds per unary operator.
var unRules = [...]opRule{
	OpNeg: {allowed: setNumeric},
	OpNot: {allowed: setBool},
}

// ---------------------
// ----- Functions -----
// ---------------------

// has returns true if Type t is a member of the set.
func (s kindSet) has(t Type) bool {
	return s&(1<<uint(t.Kind)) != 0
}

// typed wraps expression e in a Typed annotation of type t.
func typed(e Expr, t Type) (Type, Expr, error) {
	return t, &Typed{X: e, Typ: t}, nil
}

// inferExpr resolves the type of expression e. It returns the type together with a new Typed node wrapping the
// rewritten expression; the caller places the returned node in the tree. Already annotated expressions are
// inferred again from their underlying node.
func inferExpr(env *Env, e Expr) (Type, Expr, error) {
	switch n := Unwrap(e).(type) {
	case *IntLit:
		return typed(n, Int)
	case *DoubleLit:
		return typed(n, Double)
	case *BoolLit:
		return typed(n, Bool)
	case *StringLit:
		return typed(n, String)
	case *Ident:
		t, err := env.FindVar(n.Name, n.Pos)
		if err != nil {
			return Error, nil, err
		}
		return typed(n, t)
	case *Unary:
		return inferUnary(env, n)
	case *Binary:
		return inferBinary(env, n)
	case *Call:
		return inferCall(env, n)
	case *Length:
		return inferLength(env, n)
	case *Index:
		return resolveIndex(env, n)
	case *NewArray:
		return resolveNew(env, n)
	default:
		panic(fmt.Sprintf("unexpected expression node %T", e))
	}
}

// inferUnary resolves the type of a unary expression. The result has the operand's type.
func inferUnary(env *Env, n *Unary) (Type, Expr, error) {
	t, x, err := inferExpr(env, n.X)
	if err != nil {
		return Error, nil, err
	}
	if !unRules[n.Op].allowed.has(t) {
		return Error, nil, newError(InvalidOperandType, n.Pos, "invalid operand type %s for unary operator %s", t, n.Op)
	}
	return typed(&Unary{Pos: n.Pos, Op: n.Op, X: x}, t)
}

// inferBinary resolves the type of a binary expression. Both operands must be members of the operator's allowed set
// and must have equal types.
func inferBinary(env *Env, n *Binary) (Type, Expr, error) {
	t1, x, err := inferExpr(env, n.X)
	if err != nil {
		return Error, nil, err
	}
	t2, y, err := inferExpr(env, n.Y)
	if err != nil {
		return Error, nil, err
	}
	rule := binRules[n.Op]
	if !rule.allowed.has(t1) {
		return Error, nil, newError(InvalidOperandType, n.X.Position(), "invalid operand type %s for operator %s", t1, n.Op)
	}
	if !rule.allowed.has(t2) {
		return Error, nil, newError(InvalidOperandType, n.Y.Position(), "invalid operand type %s for operator %s", t2, n.Op)
	}
	if !t1.Equal(t2) {
		return Error, nil, newError(IncompatibleOperandTypes, n.Pos, "incompatible operand types %s and %s for operator %s", t1, t2, n.Op)
	}
	res := t1
	if rule.boolRes {
		res = Bool
	}
	return typed(&Binary{Pos: n.Pos, Op: n.Op, X: x, Y: y}, res)
}

// inferCall resolves the type of a function call. Arguments are checked in order against the declared parameter
// types.
func inferCall(env *Env, n *Call) (Type, Expr, error) {
	ft, err := env.FindFn(n.Name, n.Pos)
	if err != nil {
		return Error, nil, err
	}
	if len(ft.Params) != len(n.Args) {
		return Error, nil, newError(ArityError, n.Pos, "function %s expects %d arguments, got %d", n.Name, len(ft.Params), len(n.Args))
	}
	args := make([]Expr, len(n.Args))
	for i1, e1 := range n.Args {
		t, a, err := inferExpr(env, e1)
		if err != nil {
			return Error, nil, err
		}
		if !t.Equal(ft.Params[i1]) {
			return Error, nil, newError(ArgumentTypeError, e1.Position(), "argument %d of %s: expected %s, got %s", i1+1, n.Name, ft.Params[i1], t)
		}
		args[i1] = a
	}
	return typed(&Call{Pos: n.Pos, Name: n.Name, Args: args}, ft.Ret)
}

// inferLength resolves an array member access. The only member of an array is length.
func inferLength(env *Env, n *Length) (Type, Expr, error) {
	t, x, err := inferExpr(env, n.X)
	if err != nil {
		return Error, nil, err
	}
	if !t.IsArray() {
		return Error, nil, newError(NotAnArray, n.Pos, "expected array, got %s", t)
	}
	if n.Member != "length" {
		return Error, nil, newError(UnknownMember, n.Pos, "unknown member %s of type %s", n.Member, t)
	}
	return typed(&Length{Pos: n.Pos, X: x, Member: n.Member}, Int)
}
