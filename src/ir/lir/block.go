package lir

import (
	"fmt"
	"strings"

	"jlc/src/ir/lir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Block defines a basic block. A basic block is a sequence of instructions that is terminated by a branch
// instruction, a return instruction or an unreachable marker.
type Block struct {
	f      *Function      // Parent function that owns the basic block.
	id     int            // Unique identifier of basic block.
	name   string         // Label of basic block.
	instrs []*Instruction // Instructions in the basic block.
	preds  []*Block       // Predecessors, built by the CFG pass.
	succs  []*Block       // Successors, built by the CFG pass.
}

// ---------------------
// ----- functions -----
// ---------------------

// Id returns the uniquely assigned identifier of Block b.
func (b *Block) Id() int {
	return b.id
}

// Name returns the label of Block b.
func (b *Block) Name() string {
	return b.name
}

// Function returns the function that owns Block b.
func (b *Block) Function() *Function {
	return b.f
}

// Instructions returns the instructions of the basic Block b.
func (b *Block) Instructions() []*Instruction {
	return b.instrs
}

// Preds returns the predecessors of Block b.
func (b *Block) Preds() []*Block {
	return b.preds
}

// Succs returns the successors of Block b.
func (b *Block) Succs() []*Block {
	return b.succs
}

// Terminator returns the last instruction of b if it is a terminator, else <nil>.
func (b *Block) Terminator() *Instruction {
	if len(b.instrs) == 0 {
		return nil
	}
	if last := b.instrs[len(b.instrs)-1]; last.IsTerminator() {
		return last
	}
	return nil
}

// String returns the textual LIR representation of all instructions in Block b.
func (b *Block) String() string {
	sb := strings.Builder{}
	sb.WriteString(b.name)
	sb.WriteString(":")
	if len(b.preds) > 0 {
		sb.WriteString("\t; preds:")
		for _, e1 := range b.preds {
			sb.WriteString(" ")
			sb.WriteString(e1.name)
		}
	}
	sb.WriteRune('\n')
	for _, e1 := range b.instrs {
		sb.WriteRune('\t')
		sb.WriteString(e1.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

// value returns operand v after verifying that it defines a value and belongs to the same function as b.
func (b *Block) value(v *Instruction, n int, fn string) *Instruction {
	if v == nil {
		panic(fmt.Sprintf("operand %d is <nil>, cannot use as input to %s", n, fn))
	}
	if !v.HasValue() {
		panic(fmt.Sprintf("operand %d is not a value, cannot use %s as input to %s", n, v.Op, fn))
	}
	if v.b.f != b.f {
		panic(fmt.Sprintf("operand %d of %s belongs to function %s, not %s", n, fn, v.b.f.name, b.f.name))
	}
	return v
}

// ------------------------------
// ----- Value instructions -----
// ------------------------------

// CreateParam creates the value of incoming parameter number idx.
func (b *Block) CreateParam(idx int) *Instruction {
	if idx < 0 || idx >= len(b.f.params) {
		panic(fmt.Sprintf("function %s has no parameter %d", b.f.name, idx))
	}
	inst := b.f.add(b, types.Param, b.f.params[idx])
	inst.IVal = int64(idx)
	return inst
}

// CreateConstantInt creates an integer constant.
func (b *Block) CreateConstantInt(v int64) *Instruction {
	inst := b.f.add(b, types.Constant, types.Int)
	inst.IVal = v
	return inst
}

// CreateConstantDouble creates a double constant.
func (b *Block) CreateConstantDouble(v float64) *Instruction {
	inst := b.f.add(b, types.Constant, types.Double)
	inst.FVal = v
	return inst
}

// CreateConstantBool creates a boolean constant.
func (b *Block) CreateConstantBool(v bool) *Instruction {
	inst := b.f.add(b, types.Constant, types.Bool)
	if v {
		inst.IVal = 1
	}
	return inst
}

// CreateNull creates a null array reference.
func (b *Block) CreateNull() *Instruction {
	return b.f.add(b, types.Constant, types.Pointer)
}

// CreateString creates a reference to the string literal s.
func (b *Block) CreateString(s string) *Instruction {
	inst := b.f.add(b, types.String, types.Pointer)
	inst.Str = s
	return inst
}

// CreateLoad loads the value of stack slot.
func (b *Block) CreateLoad(slot int) *Instruction {
	if slot < 0 || slot >= len(b.f.slots) {
		panic(fmt.Sprintf("function %s: load from undefined slot %d", b.f.name, slot))
	}
	inst := b.f.add(b, types.Load, b.f.slots[slot].Typ)
	inst.Slot = slot
	return inst
}

// CreateStore stores v to stack slot.
func (b *Block) CreateStore(slot int, v *Instruction) *Instruction {
	if slot < 0 || slot >= len(b.f.slots) {
		panic(fmt.Sprintf("function %s: store to undefined slot %d", b.f.name, slot))
	}
	b.value(v, 1, "CreateStore")
	if v.Typ != b.f.slots[slot].Typ {
		panic(fmt.Sprintf("cannot store %s to slot %s of type %s", v.Typ, b.f.slots[slot].Name, b.f.slots[slot].Typ))
	}
	inst := b.f.add(b, types.Store, types.Void)
	inst.Slot = slot
	inst.Args = []int{v.id}
	return inst
}

// CreateArithmetic creates the binary arithmetic operation op1 <op> op2.
func (b *Block) CreateArithmetic(op types.ArithmeticOperation, op1, op2 *Instruction) *Instruction {
	if op == types.Neg || op == types.Not {
		panic(fmt.Sprintf("unexpected unary operation %s in CreateArithmetic", op))
	}
	b.value(op1, 1, "CreateArithmetic")
	b.value(op2, 2, "CreateArithmetic")
	if op1.Typ != op2.Typ {
		panic(fmt.Sprintf("operand types %s and %s differ in CreateArithmetic", op1.Typ, op2.Typ))
	}
	inst := b.f.add(b, types.Arithmetic, op1.Typ)
	inst.Arith = op
	inst.Args = []int{op1.id, op2.id}
	return inst
}

// CreateNeg creates the arithmetic negation -op1.
func (b *Block) CreateNeg(op1 *Instruction) *Instruction {
	b.value(op1, 1, "CreateNeg")
	inst := b.f.add(b, types.Arithmetic, op1.Typ)
	inst.Arith = types.Neg
	inst.Args = []int{op1.id}
	return inst
}

// CreateNot creates the logical negation !op1.
func (b *Block) CreateNot(op1 *Instruction) *Instruction {
	b.value(op1, 1, "CreateNot")
	if op1.Typ != types.Bool {
		panic(fmt.Sprintf("operand 1 is %s, CreateNot expects bool", op1.Typ))
	}
	inst := b.f.add(b, types.Arithmetic, types.Bool)
	inst.Arith = types.Not
	inst.Args = []int{op1.id}
	return inst
}

// CreateCompare creates the comparison op1 <rel> op2 yielding a boolean.
func (b *Block) CreateCompare(rel types.RelationalOperation, op1, op2 *Instruction) *Instruction {
	b.value(op1, 1, "CreateCompare")
	b.value(op2, 2, "CreateCompare")
	if op1.Typ != op2.Typ {
		panic(fmt.Sprintf("operand types %s and %s differ in CreateCompare", op1.Typ, op2.Typ))
	}
	inst := b.f.add(b, types.Compare, types.Bool)
	inst.Rel = rel
	inst.Args = []int{op1.id, op2.id}
	return inst
}

// CreateCopy creates a register move of op1. Copies are coalescing candidates for the register allocator.
func (b *Block) CreateCopy(op1 *Instruction) *Instruction {
	b.value(op1, 1, "CreateCopy")
	inst := b.f.add(b, types.Copy, op1.Typ)
	inst.Args = []int{op1.id}
	return inst
}

// CreateCall creates a call to the named function. A call with return type types.Void defines no value.
func (b *Block) CreateCall(name string, ret types.DataType, args []*Instruction) *Instruction {
	ids := make([]int, len(args))
	for i1, e1 := range args {
		ids[i1] = b.value(e1, i1+1, "CreateCall").id
	}
	inst := b.f.add(b, types.Call, ret)
	inst.Str = name
	inst.Args = ids
	return inst
}

// CreateNewArray allocates an array with dims dimensions of element type elem. One size operand is given per
// allocated dimension, outermost first.
func (b *Block) CreateNewArray(elem types.DataType, dims int, sizes []*Instruction) *Instruction {
	if len(sizes) == 0 || len(sizes) > dims {
		panic(fmt.Sprintf("CreateNewArray: %d sizes for %d dimensions", len(sizes), dims))
	}
	ids := make([]int, len(sizes))
	for i1, e1 := range sizes {
		if b.value(e1, i1+1, "CreateNewArray").Typ != types.Int {
			panic(fmt.Sprintf("operand %d of CreateNewArray is %s, expected int", i1+1, e1.Typ))
		}
		ids[i1] = e1.id
	}
	inst := b.f.add(b, types.NewArray, types.Pointer)
	inst.Elem = elem
	inst.IVal = int64(dims)
	inst.Args = ids
	return inst
}

// CreateArrayLen reads the length field of array arr.
func (b *Block) CreateArrayLen(arr *Instruction) *Instruction {
	if b.value(arr, 1, "CreateArrayLen").Typ != types.Pointer {
		panic(fmt.Sprintf("operand 1 of CreateArrayLen is %s, expected ptr", arr.Typ))
	}
	inst := b.f.add(b, types.ArrayLen, types.Int)
	inst.Args = []int{arr.id}
	return inst
}

// CreateLoadElem loads element idx of array arr. typ is the data type of the element.
func (b *Block) CreateLoadElem(arr, idx *Instruction, typ types.DataType) *Instruction {
	if b.value(arr, 1, "CreateLoadElem").Typ != types.Pointer {
		panic(fmt.Sprintf("operand 1 of CreateLoadElem is %s, expected ptr", arr.Typ))
	}
	if b.value(idx, 2, "CreateLoadElem").Typ != types.Int {
		panic(fmt.Sprintf("operand 2 of CreateLoadElem is %s, expected int", idx.Typ))
	}
	inst := b.f.add(b, types.LoadElem, typ)
	inst.Elem = typ
	inst.Args = []int{arr.id, idx.id}
	return inst
}

// CreateStoreElem stores v to element idx of array arr.
func (b *Block) CreateStoreElem(arr, idx, v *Instruction) *Instruction {
	if b.value(arr, 1, "CreateStoreElem").Typ != types.Pointer {
		panic(fmt.Sprintf("operand 1 of CreateStoreElem is %s, expected ptr", arr.Typ))
	}
	if b.value(idx, 2, "CreateStoreElem").Typ != types.Int {
		panic(fmt.Sprintf("operand 2 of CreateStoreElem is %s, expected int", idx.Typ))
	}
	b.value(v, 3, "CreateStoreElem")
	inst := b.f.add(b, types.StoreElem, types.Void)
	inst.Elem = v.Typ
	inst.Args = []int{arr.id, idx.id, v.id}
	return inst
}

// ------------------------------
// ----- Branch instruction -----
// ------------------------------

// CreateBranch creates an unconditional branch instruction, effectively terminating Block b.
func (b *Block) CreateBranch(dst *Block) *Instruction {
	if dst == nil || dst.f != b.f {
		panic(fmt.Sprintf("function %s, block %s: invalid branch target", b.f.name, b.name))
	}
	inst := b.f.add(b, types.Branch, types.Void)
	inst.Then = dst
	return inst
}

// CreateConditionalBranch branches to thn if cond is true, else to els.
func (b *Block) CreateConditionalBranch(cond *Instruction, thn, els *Block) *Instruction {
	if b.value(cond, 1, "CreateConditionalBranch").Typ != types.Bool {
		panic(fmt.Sprintf("operand 1 of CreateConditionalBranch is %s, expected bool", cond.Typ))
	}
	if thn == nil || els == nil || thn.f != b.f || els.f != b.f {
		panic(fmt.Sprintf("function %s, block %s: invalid conditional branch target", b.f.name, b.name))
	}
	inst := b.f.add(b, types.CondBranch, types.Void)
	inst.Args = []int{cond.id}
	inst.Then = thn
	inst.Else = els
	return inst
}

// CreateReturn creates a return instruction, effectively terminating Block b. val is <nil> for void functions.
func (b *Block) CreateReturn(val *Instruction) *Instruction {
	if val != nil {
		b.value(val, 1, "CreateReturn")
		if val.Typ != b.f.typ {
			panic(fmt.Sprintf("function %s returns %s, cannot return %s", b.f.name, b.f.typ, val.Typ))
		}
	} else if b.f.typ != types.Void {
		panic(fmt.Sprintf("function %s returns %s, got void return", b.f.name, b.f.typ))
	}
	inst := b.f.add(b, types.Return, types.Void)
	if val != nil {
		inst.Args = []int{val.id}
	}
	return inst
}

// CreateUnreachable marks the end of reachable code in Block b.
func (b *Block) CreateUnreachable() *Instruction {
	return b.f.add(b, types.Unreachable, types.Void)
}
