package lir

import (
	"fmt"
	"strings"

	"jlc/src/ir/lir/types"
	"jlc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Function represents a function. It has a name, return datatype, parameters, stack slots and basic blocks. The
// function owns the arena of all instructions created in its blocks.
type Function struct {
	m      *Module          // Parent module.
	name   string           // Name of function.
	typ    types.DataType   // Return type of function.
	params []types.DataType // Parameter types.
	slots  []Slot           // Stack slots of declared variables and temporaries.
	blocks []*Block         // Basic blocks in function body, entry block first.
	instrs []*Instruction   // Instruction arena indexed by instruction id.
	order  []*Block         // Block order of the last numbering.
	labels util.Labels      // Block label generator.
	bseq   int              // Sequence number of block identifiers.
}

// ---------------------
// ----- functions -----
// ---------------------

// Name returns the name of Function f.
func (f *Function) Name() string {
	return f.name
}

// DataType returns the return type of Function f.
func (f *Function) DataType() types.DataType {
	return f.typ
}

// Params returns the parameter types of Function f.
func (f *Function) Params() []types.DataType {
	return f.params
}

// Slots returns the stack slots of Function f.
func (f *Function) Slots() []Slot {
	return f.slots
}

// Blocks returns the basic blocks of Function f.
func (f *Function) Blocks() []*Block {
	return f.blocks
}

// Entry returns the entry block of Function f.
func (f *Function) Entry() *Block {
	if len(f.blocks) == 0 {
		panic(fmt.Sprintf("function %s has no blocks", f.name))
	}
	return f.blocks[0]
}

// Instr returns the instruction with arena index id.
func (f *Function) Instr(id int) *Instruction {
	if id < 0 || id >= len(f.instrs) {
		panic(fmt.Sprintf("function %s: instruction %d out of range", f.name, id))
	}
	return f.instrs[id]
}

// NumInstrs returns the size of the instruction arena, including stripped instructions.
func (f *Function) NumInstrs() int {
	return len(f.instrs)
}

// Instructions returns all instructions of the function in block order.
func (f *Function) Instructions() []*Instruction {
	res := make([]*Instruction, 0, len(f.instrs))
	for _, e1 := range f.blocks {
		res = append(res, e1.instrs...)
	}
	return res
}

// Order returns the blocks in the order they were numbered, or <nil> if the function was not numbered yet.
func (f *Function) Order() []*Block {
	return f.order
}

// CreateBlock creates a new Block with a label of the given kind and appends it to Function f.
func (f *Function) CreateBlock(kind int) *Block {
	b := &Block{
		f:      f,
		id:     f.bseq,
		name:   f.labels.NewLabel(kind),
		instrs: make([]*Instruction, 0, 8),
	}
	f.bseq++
	f.blocks = append(f.blocks, b)
	return b
}

// CreateSlot allocates a new stack slot for a variable of type typ.
func (f *Function) CreateSlot(name string, typ types.DataType) int {
	if typ == types.Void {
		panic(fmt.Sprintf("function %s: cannot allocate void slot %s", f.name, name))
	}
	f.slots = append(f.slots, Slot{Name: name, Typ: typ})
	return len(f.slots) - 1
}

// String returns the textual LIR representation of Function f.
func (f *Function) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("function %s(", f.name))
	for i1, e1 := range f.params {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e1.String())
	}
	sb.WriteString(fmt.Sprintf("): %s {\n", f.typ))
	for i1, e1 := range f.slots {
		sb.WriteString(fmt.Sprintf("\tslot%d %s %s\n", i1, e1.Typ, e1.Name))
	}
	for _, e1 := range f.blocks {
		sb.WriteString(e1.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// add appends a fresh instruction to the arena and returns it.
func (f *Function) add(b *Block, op types.InstructionType, typ types.DataType) *Instruction {
	inst := &Instruction{
		id:    len(f.instrs),
		b:     b,
		Op:    op,
		Typ:   typ,
		Index: -1,
		Loc:   unassigned,
	}
	f.instrs = append(f.instrs, inst)
	b.instrs = append(b.instrs, inst)
	return inst
}
