//go:build llvm
// +build llvm

package llvm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"tinygo.org/x/go-llvm"

	"jlc/src/ir"
	"jlc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// scope maps variable names to their stack allocations.
type scope map[string]llvm.Value

// gen holds the state of the generation of a single module.
type gen struct {
	ctx llvm.Context
	b   llvm.Builder
	m   llvm.Module

	// Primitive types.
	i, f, i1, i8p llvm.Type

	fun    llvm.Value      // Function being generated.
	allocs llvm.BasicBlock // Block holding every alloca of fun.
	st     util.Stack      // Scope stack.
	labels util.Labels     // Block labels of fun.
	done   bool            // True if the current block is terminated.
}

// ---------------------
// ----- Constants -----
// ---------------------

const mapSize = 8 // Pre-defined size of scope hash maps.

// Runtime helpers handling arrays.
const (
	rtNewArray = "jlcNewArray" // i8* jlcNewArray(i64 elemSize, i64 dims, i64* sizes)
	rtLength   = "jlcLength"   // i64 jlcLength(i8* arr)
	rtElem     = "jlcElem"     // i8* jlcElem(i8* arr, i64 idx, i64 elemSize)
)

// -------------------
// ----- Globals -----
// -------------------

// iPreds maps relational operators to integer predicates.
var iPreds = map[ir.BinOp]llvm.IntPredicate{
	ir.OpEq: llvm.IntEQ,
	ir.OpNe: llvm.IntNE,
	ir.OpLt: llvm.IntSLT,
	ir.OpLe: llvm.IntSLE,
	ir.OpGt: llvm.IntSGT,
	ir.OpGe: llvm.IntSGE,
}

// fPreds maps relational operators to floating point predicates.
var fPreds = map[ir.BinOp]llvm.FloatPredicate{
	ir.OpEq: llvm.FloatOEQ,
	ir.OpNe: llvm.FloatUNE,
	ir.OpLt: llvm.FloatOLT,
	ir.OpLe: llvm.FloatOLE,
	ir.OpGt: llvm.FloatOGT,
	ir.OpGe: llvm.FloatOGE,
}

// ---------------------
// ----- Functions -----
// ---------------------

// GenLLVM generates a verified LLVM IR module from the type checked syntax tree and returns its textual form.
// Functions are generated sequentially, an LLVM context is not safe for concurrent use.
func GenLLVM(opt util.Options, prog *ir.Program) (string, error) {
	if prog == nil {
		return "", errors.New("syntax tree is <nil>")
	}
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	// Builder constructs LLVM IR instructions on basic block level.
	b := ctx.NewBuilder()
	defer b.Dispose()

	// Set module name equal file name.
	m := ctx.NewModule(filepath.Base(opt.Src))
	defer m.Dispose()
	if triple, err := genTriple(opt); err != nil {
		return "", err
	} else {
		m.SetTarget(triple)
	}

	g := &gen{
		ctx: ctx,
		b:   b,
		m:   m,
		i:   ctx.Int64Type(),
		f:   ctx.DoubleType(),
		i1:  ctx.Int1Type(),
		i8p: llvm.PointerType(ctx.Int8Type(), 0),
	}
	g.genRuntime()

	// Declare all functions before generating any body.
	for _, e1 := range prog.Funcs {
		g.genDeclaration(e1)
	}
	for _, e1 := range prog.Funcs {
		if err := g.genFunction(e1); err != nil {
			return "", errors.WithMessagef(err, "function %s", e1.Name)
		}
	}

	if err := llvm.VerifyModule(m, llvm.ReturnStatusAction); err != nil {
		return "", errors.Wrap(err, "LLVM module verification failed")
	}
	return m.String(), nil
}

// genTriple returns the target triple of the architecture defined by opt.
func genTriple(opt util.Options) (string, error) {
	sb := strings.Builder{}
	switch opt.TargetArch {
	case util.Aarch64:
		sb.WriteString("aarch64")
	case util.Riscv64:
		sb.WriteString("riscv64")
	default:
		return "", errors.Errorf("unsupported target architecture identifier %d", opt.TargetArch)
	}
	sb.WriteString("-unknown-linux-gnu")
	return sb.String(), nil
}

// genRuntime declares the builtin functions and the array helpers of the runtime library.
func (g *gen) genRuntime() {
	void := g.ctx.VoidType()
	decl := func(name string, ret llvm.Type, params ...llvm.Type) {
		llvm.AddFunction(g.m, name, llvm.FunctionType(ret, params, false))
	}
	decl("printInt", void, g.i)
	decl("printDouble", void, g.f)
	decl("printString", void, g.i8p)
	decl("readInt", g.i)
	decl("readDouble", g.f)
	decl(rtNewArray, g.i8p, g.i, g.i, llvm.PointerType(g.i, 0))
	decl(rtLength, g.i, g.i8p)
	decl(rtElem, g.i8p, g.i8p, g.i, g.i)
}

// genType returns the LLVM type of source type t. Strings and arrays are opaque byte pointers.
func (g *gen) genType(t ir.Type) llvm.Type {
	switch t.Kind {
	case ir.KindInt:
		return g.i
	case ir.KindDouble:
		return g.f
	case ir.KindBool:
		return g.i1
	case ir.KindString, ir.KindArray:
		return g.i8p
	case ir.KindVoid:
		return g.ctx.VoidType()
	default:
		panic(fmt.Sprintf("cannot generate LLVM type of %s", t))
	}
}

// elemSize returns the size in bytes of one element of an array whose elements have type t.
func elemSize(t ir.Type) uint64 {
	if t.Kind == ir.KindBool {
		return 1
	}
	return 8
}

// genDeclaration adds the LLVM function declaration of fn to the module.
func (g *gen) genDeclaration(fn *ir.FunctionDef) {
	params := make([]llvm.Type, len(fn.Params))
	for i1, e1 := range fn.Params {
		params[i1] = g.genType(e1.Typ)
	}
	llvm.AddFunction(g.m, fn.Name, llvm.FunctionType(g.genType(fn.Ret), params, false))
}

// genFunction generates the body of function fn. Every variable lives in an alloca of the function's first block,
// which branches to the first block of the body when the body is complete.
func (g *gen) genFunction(fn *ir.FunctionDef) error {
	g.fun = g.m.NamedFunction(fn.Name)
	g.labels = util.Labels{}
	g.allocs = llvm.AddBasicBlock(g.fun, "allocs")
	body := g.newBlock(util.LabelEntry)

	// Parameters share the outermost scope with the top level statements of the body.
	g.st = util.Stack{}
	g.st.Push(make(scope, mapSize))
	for i1, e1 := range fn.Params {
		p := g.fun.Param(i1)
		p.SetName(e1.Name)
		alloc := g.alloca(p.Type(), e1.Name)
		g.b.CreateStore(p, alloc)
		g.st.Peek().(scope)[e1.Name] = alloc
	}
	for _, e1 := range fn.Body.Stmts {
		if err := g.genStmt(e1); err != nil {
			return err
		}
	}
	g.st.Pop()

	// Control flows off the end of the body.
	if !g.done {
		if fn.Ret.Kind == ir.KindVoid {
			g.b.CreateRetVoid()
		} else {
			g.b.CreateUnreachable()
		}
	}
	g.b.SetInsertPointAtEnd(g.allocs)
	g.b.CreateBr(body)
	return nil
}

// newBlock appends a new basic block of label kind typ to the current function and moves the insert point to it.
func (g *gen) newBlock(typ int) llvm.BasicBlock {
	bb := g.appendBlock(typ)
	g.enter(bb)
	return bb
}

// appendBlock appends a new basic block of label kind typ to the current function.
func (g *gen) appendBlock(typ int) llvm.BasicBlock {
	return llvm.AddBasicBlock(g.fun, g.labels.NewLabel(typ))
}

// enter moves the insert point to the end of bb.
func (g *gen) enter(bb llvm.BasicBlock) {
	g.b.SetInsertPointAtEnd(bb)
	g.done = false
}

// branch terminates the current block with a branch to bb, unless the block is already terminated.
func (g *gen) branch(bb llvm.BasicBlock) {
	if !g.done {
		g.b.CreateBr(bb)
	}
	g.done = true
}

// alloca allocates stack memory of type t in the first block of the current function.
func (g *gen) alloca(t llvm.Type, name string) llvm.Value {
	cur := g.b.GetInsertBlock()
	g.b.SetInsertPointAtEnd(g.allocs)
	a := g.b.CreateAlloca(t, name)
	g.b.SetInsertPointAtEnd(cur)
	return a
}

// lookup returns the alloca of the named variable. Scopes are searched inner-most to outer-most.
func (g *gen) lookup(name string) (llvm.Value, error) {
	for i1 := 1; i1 <= g.st.Size(); i1++ {
		if v, ok := g.st.Get(i1).(scope)[name]; ok {
			return v, nil
		}
	}
	return llvm.Value{}, errors.Errorf("undeclared variable %q", name)
}

// genStmt generates LLVM IR for statement s. Statements following a terminator are generated into a fresh block
// without predecessors.
func (g *gen) genStmt(s ir.Stmt) error {
	if g.done {
		g.newBlock(util.LabelIfEnd)
	}
	switch n := s.(type) {
	case *ir.Block:
		g.st.Push(make(scope, mapSize))
		defer g.st.Pop()
		for _, e1 := range n.Stmts {
			if err := g.genStmt(e1); err != nil {
				return err
			}
		}
	case *ir.Decl:
		typ := g.genType(n.Typ)
		for _, e1 := range n.Items {
			var val llvm.Value
			if e1.Init != nil {
				v, err := g.genExpression(e1.Init)
				if err != nil {
					return err
				}
				val = v
			} else {
				val = g.zero(n.Typ)
			}
			alloc := g.alloca(typ, e1.Name)
			g.b.CreateStore(val, alloc)
			g.st.Peek().(scope)[e1.Name] = alloc
		}
	case *ir.Assign:
		return g.genAssign(n)
	case *ir.Incr:
		alloc, err := g.lookup(n.Name)
		if err != nil {
			return errors.Wrapf(err, "line %d:%d", n.Line, n.Col)
		}
		one := llvm.ConstInt(g.i, 1, true)
		v := g.b.CreateLoad(alloc, "")
		if n.Dec {
			v = g.b.CreateSub(v, one, "")
		} else {
			v = g.b.CreateAdd(v, one, "")
		}
		g.b.CreateStore(v, alloc)
	case *ir.If:
		return g.genIf(n.Cond, n.Then, nil)
	case *ir.IfElse:
		return g.genIf(n.Cond, n.Then, n.Else)
	case *ir.While:
		return g.genWhile(n)
	case *ir.ForEach:
		return g.genForEach(n)
	case *ir.Return:
		v, err := g.genExpression(n.Value)
		if err != nil {
			return err
		}
		g.b.CreateRet(v)
		g.done = true
	case *ir.VoidReturn:
		g.b.CreateRetVoid()
		g.done = true
	case *ir.ExprStmt:
		_, err := g.genExpression(n.X)
		return err
	case *ir.Empty:
	default:
		panic(fmt.Sprintf("unexpected statement node %T", s))
	}
	return nil
}

// genBranch generates a branch of a conditional or loop in its own scope.
func (g *gen) genBranch(s ir.Stmt) error {
	g.st.Push(make(scope, mapSize))
	defer g.st.Pop()
	return g.genStmt(s)
}

// zero returns the default value of a variable of type t.
func (g *gen) zero(t ir.Type) llvm.Value {
	switch t.Kind {
	case ir.KindDouble:
		return llvm.ConstFloat(g.f, 0)
	case ir.KindBool:
		return llvm.ConstInt(g.i1, 0, false)
	case ir.KindString, ir.KindArray:
		return llvm.ConstPointerNull(g.i8p)
	default:
		return llvm.ConstInt(g.i, 0, true)
	}
}

// genAssign stores the value of an assignment into a variable or an array element.
func (g *gen) genAssign(n *ir.Assign) error {
	switch t := ir.Unwrap(n.Target).(type) {
	case *ir.Ident:
		alloc, err := g.lookup(t.Name)
		if err != nil {
			return errors.Wrapf(err, "line %d:%d", t.Line, t.Col)
		}
		v, err := g.genExpression(n.Value)
		if err != nil {
			return err
		}
		g.b.CreateStore(v, alloc)
	case *ir.Index:
		ptr, err := g.genElem(t, ir.TypeOf(n.Target))
		if err != nil {
			return err
		}
		v, err := g.genExpression(n.Value)
		if err != nil {
			return err
		}
		g.b.CreateStore(v, ptr)
	default:
		return errors.Errorf("line %d:%d: cannot assign to %T", n.Line, n.Col, t)
	}
	return nil
}

// genIf generates a conditional. els is <nil> for conditionals without an else branch.
func (g *gen) genIf(cond ir.Expr, thn, els ir.Stmt) error {
	c, err := g.genExpression(cond)
	if err != nil {
		return err
	}
	then := g.appendBlock(util.LabelIf)
	end := g.appendBlock(util.LabelIfEnd)
	other := end
	if els != nil {
		other = g.appendBlock(util.LabelIfElse)
	}
	g.b.CreateCondBr(c, then, other)

	g.enter(then)
	if err = g.genBranch(thn); err != nil {
		return err
	}
	g.branch(end)
	if els != nil {
		g.enter(other)
		if err = g.genBranch(els); err != nil {
			return err
		}
		g.branch(end)
	}
	g.enter(end)
	return nil
}

// genWhile generates a pre-tested loop.
func (g *gen) genWhile(n *ir.While) error {
	head := g.appendBlock(util.LabelWhileHead)
	body := g.appendBlock(util.LabelWhileBody)
	end := g.appendBlock(util.LabelWhileEnd)
	g.branch(head)

	g.enter(head)
	c, err := g.genExpression(n.Cond)
	if err != nil {
		return err
	}
	g.b.CreateCondBr(c, body, end)

	g.enter(body)
	if err = g.genBranch(n.Body); err != nil {
		return err
	}
	g.branch(head)
	g.enter(end)
	return nil
}

// genForEach generates a loop over the outermost dimension of an array.
func (g *gen) genForEach(n *ir.ForEach) error {
	arr, err := g.genExpression(n.Array)
	if err != nil {
		return err
	}
	length := g.b.CreateCall(g.m.NamedFunction(rtLength), []llvm.Value{arr}, "")
	idx := g.alloca(g.i, n.Name+".idx")
	g.b.CreateStore(llvm.ConstInt(g.i, 0, true), idx)

	head := g.appendBlock(util.LabelForHead)
	body := g.appendBlock(util.LabelForBody)
	end := g.appendBlock(util.LabelForEnd)
	g.branch(head)

	g.enter(head)
	i := g.b.CreateLoad(idx, "")
	g.b.CreateCondBr(g.b.CreateICmp(llvm.IntSLT, i, length, ""), body, end)

	g.enter(body)
	g.st.Push(make(scope, mapSize))
	typ := g.genType(n.ElemType)
	elem := g.b.CreateCall(g.m.NamedFunction(rtElem),
		[]llvm.Value{arr, i, llvm.ConstInt(g.i, elemSize(n.ElemType), false)}, "")
	ptr := g.b.CreateBitCast(elem, llvm.PointerType(typ, 0), "")
	v := g.alloca(typ, n.Name)
	g.b.CreateStore(g.b.CreateLoad(ptr, ""), v)
	g.st.Peek().(scope)[n.Name] = v
	err = g.genStmt(n.Body)
	g.st.Pop()
	if err != nil {
		return err
	}
	if !g.done {
		g.b.CreateStore(g.b.CreateAdd(g.b.CreateLoad(idx, ""), llvm.ConstInt(g.i, 1, true), ""), idx)
	}
	g.branch(head)
	g.enter(end)
	return nil
}

// genElem returns a typed pointer to the element of the indexing expression n. typ is the type of the element.
func (g *gen) genElem(n *ir.Index, typ ir.Type) (llvm.Value, error) {
	arr, err := g.genExpression(n.X)
	if err != nil {
		return llvm.Value{}, err
	}
	idx, err := g.genExpression(n.Index)
	if err != nil {
		return llvm.Value{}, err
	}
	elem := g.b.CreateCall(g.m.NamedFunction(rtElem),
		[]llvm.Value{arr, idx, llvm.ConstInt(g.i, elemSize(typ), false)}, "")
	return g.b.CreateBitCast(elem, llvm.PointerType(g.genType(typ), 0), ""), nil
}

// genExpression generates LLVM IR for the type annotated expression e and returns its value.
func (g *gen) genExpression(e ir.Expr) (llvm.Value, error) {
	te, ok := e.(*ir.Typed)
	if !ok {
		return llvm.Value{}, errors.Errorf("line %d:%d: untyped expression %T",
			e.Position().Line, e.Position().Col, e)
	}
	switch n := te.X.(type) {
	case *ir.IntLit:
		return llvm.ConstInt(g.i, uint64(n.Val), true), nil
	case *ir.DoubleLit:
		return llvm.ConstFloat(g.f, n.Val), nil
	case *ir.BoolLit:
		if n.Val {
			return llvm.ConstInt(g.i1, 1, false), nil
		}
		return llvm.ConstInt(g.i1, 0, false), nil
	case *ir.StringLit:
		return g.b.CreateGlobalStringPtr(n.Val, "str"), nil
	case *ir.Ident:
		alloc, err := g.lookup(n.Name)
		if err != nil {
			return llvm.Value{}, errors.Wrapf(err, "line %d:%d", n.Line, n.Col)
		}
		return g.b.CreateLoad(alloc, ""), nil
	case *ir.Unary:
		x, err := g.genExpression(n.X)
		if err != nil {
			return llvm.Value{}, err
		}
		switch {
		case n.Op == ir.OpNot:
			return g.b.CreateNot(x, ""), nil
		case te.Typ.Kind == ir.KindDouble:
			return g.b.CreateFNeg(x, ""), nil
		default:
			return g.b.CreateNeg(x, ""), nil
		}
	case *ir.Binary:
		if n.Op.IsLogical() {
			return g.genShortCircuit(n)
		}
		return g.genBinary(n)
	case *ir.Call:
		args := make([]llvm.Value, len(n.Args))
		for i1, e1 := range n.Args {
			v, err := g.genExpression(e1)
			if err != nil {
				return llvm.Value{}, err
			}
			args[i1] = v
		}
		fun := g.m.NamedFunction(n.Name)
		if fun.IsAFunction().IsNil() {
			return llvm.Value{}, errors.Errorf("line %d:%d: function %s has no declaration", n.Line, n.Col, n.Name)
		}
		return g.b.CreateCall(fun, args, ""), nil
	case *ir.Index:
		ptr, err := g.genElem(n, te.Typ)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.b.CreateLoad(ptr, ""), nil
	case *ir.NewArray:
		sizes := g.alloca(llvm.ArrayType(g.i, len(n.Sizes)), "sizes")
		zero := llvm.ConstInt(g.i, 0, false)
		for i1, e1 := range n.Sizes {
			v, err := g.genExpression(e1)
			if err != nil {
				return llvm.Value{}, err
			}
			ptr := g.b.CreateGEP(sizes, []llvm.Value{zero, llvm.ConstInt(g.i, uint64(i1), false)}, "")
			g.b.CreateStore(v, ptr)
		}
		first := g.b.CreateGEP(sizes, []llvm.Value{zero, zero}, "")
		size := llvm.ConstInt(g.i, elemSize(te.Typ.Scalar()), false)
		dims := llvm.ConstInt(g.i, uint64(te.Typ.Dims), false)
		return g.b.CreateCall(g.m.NamedFunction(rtNewArray), []llvm.Value{size, dims, first}, ""), nil
	case *ir.Length:
		arr, err := g.genExpression(n.X)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.b.CreateCall(g.m.NamedFunction(rtLength), []llvm.Value{arr}, ""), nil
	default:
		panic(fmt.Sprintf("unexpected expression node %T", te.X))
	}
}

// genBinary generates arithmetic and relational expressions.
func (g *gen) genBinary(n *ir.Binary) (llvm.Value, error) {
	x, err := g.genExpression(n.X)
	if err != nil {
		return llvm.Value{}, err
	}
	y, err := g.genExpression(n.Y)
	if err != nil {
		return llvm.Value{}, err
	}
	double := ir.TypeOf(n.X).Kind == ir.KindDouble
	if n.Op.IsRelational() {
		if double {
			return g.b.CreateFCmp(fPreds[n.Op], x, y, ""), nil
		}
		return g.b.CreateICmp(iPreds[n.Op], x, y, ""), nil
	}
	switch n.Op {
	case ir.OpAdd:
		if double {
			return g.b.CreateFAdd(x, y, ""), nil
		}
		return g.b.CreateAdd(x, y, ""), nil
	case ir.OpSub:
		if double {
			return g.b.CreateFSub(x, y, ""), nil
		}
		return g.b.CreateSub(x, y, ""), nil
	case ir.OpMul:
		if double {
			return g.b.CreateFMul(x, y, ""), nil
		}
		return g.b.CreateMul(x, y, ""), nil
	case ir.OpDiv:
		if double {
			return g.b.CreateFDiv(x, y, ""), nil
		}
		return g.b.CreateSDiv(x, y, ""), nil
	case ir.OpMod:
		return g.b.CreateSRem(x, y, ""), nil
	default:
		return llvm.Value{}, errors.Errorf("line %d:%d: unexpected operator %s", n.Line, n.Col, n.Op)
	}
}

// genShortCircuit generates && and || with a phi node joining the constant short cut and the right operand.
func (g *gen) genShortCircuit(n *ir.Binary) (llvm.Value, error) {
	x, err := g.genExpression(n.X)
	if err != nil {
		return llvm.Value{}, err
	}
	from := g.b.GetInsertBlock()
	var rhs llvm.BasicBlock
	var short llvm.Value
	if n.Op == ir.OpAnd {
		rhs = g.appendBlock(util.LabelAndRight)
		short = llvm.ConstInt(g.i1, 0, false)
	} else {
		rhs = g.appendBlock(util.LabelOrRight)
		short = llvm.ConstInt(g.i1, 1, false)
	}
	end := g.appendBlock(util.LabelShortEnd)
	if n.Op == ir.OpAnd {
		g.b.CreateCondBr(x, rhs, end)
	} else {
		g.b.CreateCondBr(x, end, rhs)
	}

	g.enter(rhs)
	y, err := g.genExpression(n.Y)
	if err != nil {
		return llvm.Value{}, err
	}
	last := g.b.GetInsertBlock()
	g.b.CreateBr(end)

	g.enter(end)
	phi := g.b.CreatePHI(g.i1, "")
	phi.AddIncoming([]llvm.Value{short, y}, []llvm.BasicBlock{from, last})
	return phi, nil
}
