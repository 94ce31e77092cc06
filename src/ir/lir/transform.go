package lir

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	tree "jlc/src/ir"
	"jlc/src/ir/lir/types"
	"jlc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// scope maps variable names to stack slots.
type scope map[string]int

// ---------------------
// ----- Constants -----
// ---------------------

// mapSize defines a pre-defined size of scope hash maps.
const mapSize = 8

// ---------------------
// ----- Functions -----
// ---------------------

// GenLIR generates lightweight intermediate representation from the type checked syntax tree. Functions are lowered
// in parallel when opt.Threads is larger than 1. The functions of the returned module are in source order.
func GenLIR(opt util.Options, prog *tree.Program) (*Module, error) {
	m := CreateModule(filepath.Base(opt.Src))
	if len(prog.Funcs) == 0 {
		return m, nil
	}
	funcs := make([]*Function, len(prog.Funcs))
	if opt.Threads > 1 {
		// Parallel.
		t := opt.Threads
		l := len(prog.Funcs)
		if t > l {
			t = l
		}
		n := l / t
		res := l % t

		start := 0
		end := n

		wg := sync.WaitGroup{}
		wg.Add(t)
		perr := util.NewPerror(t)

		// Spawn t worker go routines.
		for i1 := 0; i1 < t; i1++ {
			if i1 < res {
				// This worker go routine should perform one residual job.
				end++
			}
			go func(start, end int) {
				defer wg.Done()
				for i2 := start; i2 < end; i2++ {
					f, err := genFunction(m, prog.Funcs[i2])
					if err != nil {
						perr.Append(err)
						continue
					}
					funcs[i2] = f
				}
			}(start, end)
			start = end
			end += n
		}
		wg.Wait()

		if perr.Len() > 0 {
			return nil, errors.Wrapf(perr.First(), "%d errors during parallel LIR generation", perr.Len())
		}
	} else {
		// Sequential.
		for i1, e1 := range prog.Funcs {
			f, err := genFunction(m, e1)
			if err != nil {
				return nil, err
			}
			funcs[i1] = f
		}
	}

	// Workers append functions in completion order.
	m.setFunctions(funcs)
	return m, nil
}

// genFunction lowers a single function definition into Module m.
func genFunction(m *Module, fn *tree.FunctionDef) (*Function, error) {
	params := make([]types.DataType, len(fn.Params))
	for i1, e1 := range fn.Params {
		params[i1] = genType(e1.Typ)
	}
	f := m.CreateFunction(fn.Name, genType(fn.Ret), params)
	b := f.CreateBlock(util.LabelEntry)

	// Parameters share the outermost scope with the top level statements of the body.
	st := util.Stack{}
	st.Push(make(scope, mapSize))
	for i1, e1 := range fn.Params {
		slot := f.CreateSlot(e1.Name, params[i1])
		b.CreateStore(slot, b.CreateParam(i1))
		st.Peek().(scope)[e1.Name] = slot
	}

	var err error
	for _, e1 := range fn.Body.Stmts {
		if b, err = genStmt(b, e1, &st); err != nil {
			return nil, errors.WithMessagef(err, "function %s", fn.Name)
		}
	}
	st.Pop()

	// Control flows off the end of the body.
	if b.Terminator() == nil {
		if f.typ == types.Void {
			b.CreateReturn(nil)
		} else {
			b.CreateUnreachable()
		}
	}
	buildCFG(f)
	return f, nil
}

// genStmt generates LIR instructions for statement s into Block b. The returned Block is the block into which the
// next sequential instructions are to be inserted.
func genStmt(b *Block, s tree.Stmt, st *util.Stack) (*Block, error) {
	var err error
	switch n := s.(type) {
	case *tree.Block:
		st.Push(make(scope, mapSize))
		for _, e1 := range n.Stmts {
			if b, err = genStmt(b, e1, st); err != nil {
				return nil, err
			}
		}
		st.Pop()
	case *tree.Decl:
		return genDeclaration(b, n, st)
	case *tree.Assign:
		return genAssign(b, n, st)
	case *tree.Incr:
		slot, err := lookup(n.Name, st)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d:%d", n.Line, n.Col)
		}
		op := types.Add
		if n.Dec {
			op = types.Sub
		}
		v := b.CreateArithmetic(op, b.CreateLoad(slot), b.CreateConstantInt(1))
		b.CreateStore(slot, v)
	case *tree.If:
		return genIf(b, n.Cond, n.Then, nil, st)
	case *tree.IfElse:
		return genIf(b, n.Cond, n.Then, n.Else, st)
	case *tree.While:
		return genWhile(b, n, st)
	case *tree.ForEach:
		return genForEach(b, n, st)
	case *tree.Return:
		var v *Instruction
		if b, v, err = genExpression(b, n.Value, st); err != nil {
			return nil, err
		}
		b.CreateReturn(v)
		b.CreateUnreachable()
	case *tree.VoidReturn:
		b.CreateReturn(nil)
		b.CreateUnreachable()
	case *tree.ExprStmt:
		if b, _, err = genExpression(b, n.X, st); err != nil {
			return nil, err
		}
	case *tree.Empty:
	default:
		panic(fmt.Sprintf("unexpected statement node %T", s))
	}
	return b, nil
}

// genBranch generates a branch body in its own scope.
func genBranch(b *Block, s tree.Stmt, st *util.Stack) (*Block, error) {
	st.Push(make(scope, mapSize))
	defer st.Pop()
	return genStmt(b, s, st)
}

// genDeclaration allocates a stack slot per declared variable in the current scope and stores either the
// initialiser or the default value of the type.
func genDeclaration(b *Block, n *tree.Decl, st *util.Stack) (*Block, error) {
	typ := genType(n.Typ)
	for _, e1 := range n.Items {
		var v *Instruction
		var err error
		if e1.Init != nil {
			if b, v, err = genExpression(b, e1.Init, st); err != nil {
				return nil, err
			}
		} else {
			v = genDefault(b, typ)
		}
		slot := b.f.CreateSlot(e1.Name, typ)
		b.CreateStore(slot, v)
		st.Peek().(scope)[e1.Name] = slot
	}
	return b, nil
}

// genDefault creates the zero value of data type typ.
func genDefault(b *Block, typ types.DataType) *Instruction {
	switch typ {
	case types.Int:
		return b.CreateConstantInt(0)
	case types.Double:
		return b.CreateConstantDouble(0)
	case types.Bool:
		return b.CreateConstantBool(false)
	case types.Pointer:
		return b.CreateNull()
	default:
		panic(fmt.Sprintf("no default value for data type %s", typ))
	}
}

// genAssign generates a store to a variable or to an array element.
func genAssign(b *Block, n *tree.Assign, st *util.Stack) (*Block, error) {
	var err error
	switch x := tree.Unwrap(n.Target).(type) {
	case *tree.Ident:
		slot, err := lookup(x.Name, st)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d:%d", x.Line, x.Col)
		}
		var v *Instruction
		if b, v, err = genExpression(b, n.Value, st); err != nil {
			return nil, err
		}
		b.CreateStore(slot, v)
	case *tree.Index:
		var arr, idx, v *Instruction
		if b, arr, err = genExpression(b, x.X, st); err != nil {
			return nil, err
		}
		if b, idx, err = genExpression(b, x.Index, st); err != nil {
			return nil, err
		}
		if b, v, err = genExpression(b, n.Value, st); err != nil {
			return nil, err
		}
		b.CreateStoreElem(arr, idx, v)
	default:
		return nil, errors.Errorf("line %d:%d: cannot assign to %T", n.Line, n.Col, x)
	}
	return b, nil
}

// genIf generates LIR IF-THEN or IF-THEN-ELSE statement. els is <nil> for IF-THEN. The returned Block is the
// converging block following the statement.
func genIf(b *Block, cond tree.Expr, thn, els tree.Stmt, st *util.Stack) (*Block, error) {
	b, c, err := genExpression(b, cond, st)
	if err != nil {
		return nil, err
	}
	then := b.f.CreateBlock(util.LabelIf)
	var other *Block
	if els != nil {
		other = b.f.CreateBlock(util.LabelIfElse)
	}
	conv := b.f.CreateBlock(util.LabelIfEnd)
	if other == nil {
		b.CreateConditionalBranch(c, then, conv)
	} else {
		b.CreateConditionalBranch(c, then, other)
	}

	// Generate THEN body.
	ret, err := genBranch(then, thn, st)
	if err != nil {
		return nil, err
	}
	if ret.Terminator() == nil {
		ret.CreateBranch(conv)
	}

	// Generate ELSE body.
	if other != nil {
		if ret, err = genBranch(other, els, st); err != nil {
			return nil, err
		}
		if ret.Terminator() == nil {
			ret.CreateBranch(conv)
		}
	}
	return conv, nil
}

// genWhile generates LIR for a while statement and its body.
func genWhile(b *Block, n *tree.While, st *util.Stack) (*Block, error) {
	head := b.f.CreateBlock(util.LabelWhileHead)
	body := b.f.CreateBlock(util.LabelWhileBody)
	conv := b.f.CreateBlock(util.LabelWhileEnd)

	b.CreateBranch(head)
	h, c, err := genExpression(head, n.Cond, st)
	if err != nil {
		return nil, err
	}
	h.CreateConditionalBranch(c, body, conv)

	// Jump back to loop head unless the body returned.
	ret, err := genBranch(body, n.Body, st)
	if err != nil {
		return nil, err
	}
	if ret.Terminator() == nil {
		ret.CreateBranch(head)
	}
	return conv, nil
}

// genForEach lowers for (T x : arr) body into a counting loop over the length field of arr.
func genForEach(b *Block, n *tree.ForEach, st *util.Stack) (*Block, error) {
	b, arr, err := genExpression(b, n.Array, st)
	if err != nil {
		return nil, err
	}
	f := b.f
	l := b.CreateArrayLen(arr)
	counter := f.CreateSlot(n.Name+".idx", types.Int)
	b.CreateStore(counter, b.CreateConstantInt(0))

	head := f.CreateBlock(util.LabelForHead)
	body := f.CreateBlock(util.LabelForBody)
	conv := f.CreateBlock(util.LabelForEnd)
	b.CreateBranch(head)
	head.CreateConditionalBranch(head.CreateCompare(types.LessThan, head.CreateLoad(counter), l), body, conv)

	// The loop variable lives in its own scope around the body.
	typ := genType(n.ElemType)
	st.Push(make(scope, mapSize))
	slot := f.CreateSlot(n.Name, typ)
	st.Peek().(scope)[n.Name] = slot
	body.CreateStore(slot, body.CreateLoadElem(arr, body.CreateLoad(counter), typ))
	ret, err := genBranch(body, n.Body, st)
	st.Pop()
	if err != nil {
		return nil, err
	}
	if ret.Terminator() == nil {
		next := ret.CreateArithmetic(types.Add, ret.CreateLoad(counter), ret.CreateConstantInt(1))
		ret.CreateStore(counter, next)
		ret.CreateBranch(head)
	}
	return conv, nil
}

// genExpression generates LIR for the typed expression e. It returns the block in which evaluation ends and the
// instruction holding the result. Calls to void functions return an instruction that defines no value.
func genExpression(b *Block, e tree.Expr, st *util.Stack) (*Block, *Instruction, error) {
	te, ok := e.(*tree.Typed)
	if !ok {
		return nil, nil, errors.Errorf("line %d:%d: untyped expression %T", e.Position().Line, e.Position().Col, e)
	}
	var err error
	switch n := te.X.(type) {
	case *tree.IntLit:
		return b, b.CreateConstantInt(n.Val), nil
	case *tree.DoubleLit:
		return b, b.CreateConstantDouble(n.Val), nil
	case *tree.BoolLit:
		return b, b.CreateConstantBool(n.Val), nil
	case *tree.StringLit:
		return b, b.CreateString(n.Val), nil
	case *tree.Ident:
		slot, err := lookup(n.Name, st)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d:%d", n.Line, n.Col)
		}
		return b, b.CreateLoad(slot), nil
	case *tree.Unary:
		var x *Instruction
		if b, x, err = genExpression(b, n.X, st); err != nil {
			return nil, nil, err
		}
		if n.Op == tree.OpNot {
			return b, b.CreateNot(x), nil
		}
		return b, b.CreateNeg(x), nil
	case *tree.Binary:
		if n.Op.IsLogical() {
			return genShortCircuit(b, n, st)
		}
		var x, y *Instruction
		if b, x, err = genExpression(b, n.X, st); err != nil {
			return nil, nil, err
		}
		if b, y, err = genExpression(b, n.Y, st); err != nil {
			return nil, nil, err
		}
		if n.Op.IsRelational() {
			return b, b.CreateCompare(relOps[n.Op], x, y), nil
		}
		return b, b.CreateArithmetic(arithOps[n.Op], x, y), nil
	case *tree.Call:
		args := make([]*Instruction, len(n.Args))
		for i1, e1 := range n.Args {
			var v *Instruction
			if b, v, err = genExpression(b, e1, st); err != nil {
				return nil, nil, err
			}
			args[i1] = v
		}
		// Arguments move into their parameter registers.
		for i1, e1 := range args {
			args[i1] = b.CreateCopy(e1)
		}
		return b, b.CreateCall(n.Name, genType(te.Typ), args), nil
	case *tree.Index:
		var arr, idx *Instruction
		if b, arr, err = genExpression(b, n.X, st); err != nil {
			return nil, nil, err
		}
		if b, idx, err = genExpression(b, n.Index, st); err != nil {
			return nil, nil, err
		}
		return b, b.CreateLoadElem(arr, idx, genType(te.Typ)), nil
	case *tree.NewArray:
		sizes := make([]*Instruction, len(n.Sizes))
		for i1, e1 := range n.Sizes {
			if b, sizes[i1], err = genExpression(b, e1, st); err != nil {
				return nil, nil, err
			}
		}
		return b, b.CreateNewArray(genType(te.Typ.Scalar()), te.Typ.Dims, sizes), nil
	case *tree.Length:
		var arr *Instruction
		if b, arr, err = genExpression(b, n.X, st); err != nil {
			return nil, nil, err
		}
		return b, b.CreateArrayLen(arr), nil
	default:
		panic(fmt.Sprintf("unexpected expression node %T", te.X))
	}
}

// genShortCircuit lowers && and || into branches over a temporary boolean slot. The right operand is only evaluated
// if the left operand does not determine the result.
func genShortCircuit(b *Block, n *tree.Binary, st *util.Stack) (*Block, *Instruction, error) {
	b, x, err := genExpression(b, n.X, st)
	if err != nil {
		return nil, nil, err
	}
	f := b.f
	var rhs *Block
	if n.Op == tree.OpAnd {
		rhs = f.CreateBlock(util.LabelAndRight)
	} else {
		rhs = f.CreateBlock(util.LabelOrRight)
	}
	end := f.CreateBlock(util.LabelShortEnd)
	tmp := f.CreateSlot(rhs.name+".tmp", types.Bool)
	b.CreateStore(tmp, x)
	if n.Op == tree.OpAnd {
		b.CreateConditionalBranch(x, rhs, end)
	} else {
		b.CreateConditionalBranch(x, end, rhs)
	}

	r, y, err := genExpression(rhs, n.Y, st)
	if err != nil {
		return nil, nil, err
	}
	r.CreateStore(tmp, y)
	r.CreateBranch(end)
	return end, end.CreateLoad(tmp), nil
}

// lookup returns the stack slot of the named variable. Scopes are searched inner-most to outer-most.
func lookup(name string, st *util.Stack) (int, error) {
	for i1 := 1; i1 <= st.Size(); i1++ {
		if sc, ok := st.Get(i1).(scope); ok {
			if slot, ok := sc[name]; ok {
				return slot, nil
			}
		} else {
			return -1, errors.New("compiler error: scope from scope stack is <nil>")
		}
	}
	return -1, errors.Errorf("undeclared variable %q", name)
}

// genType maps a source type to its LIR data type. Strings and arrays are references.
func genType(t tree.Type) types.DataType {
	switch t.Kind {
	case tree.KindInt:
		return types.Int
	case tree.KindDouble:
		return types.Double
	case tree.KindBool:
		return types.Bool
	case tree.KindString, tree.KindArray:
		return types.Pointer
	case tree.KindVoid:
		return types.Void
	default:
		panic(fmt.Sprintf("cannot lower type %s", t))
	}
}

// -------------------
// ----- Globals -----
// -------------------

// arithOps maps arithmetic source operators to LIR operations.
var arithOps = map[tree.BinOp]types.ArithmeticOperation{
	tree.OpAdd: types.Add,
	tree.OpSub: types.Sub,
	tree.OpMul: types.Mul,
	tree.OpDiv: types.Div,
	tree.OpMod: types.Rem,
}

// relOps maps relational source operators to LIR comparisons.
var relOps = map[tree.BinOp]types.RelationalOperation{
	tree.OpEq: types.Eq,
	tree.OpNe: types.Neq,
	tree.OpLt: types.LessThan,
	tree.OpLe: types.LessThanOrEqual,
	tree.OpGt: types.GreaterThan,
	tree.OpGe: types.GreaterThanOrEqual,
}
