// Package lir provides functions for transforming the syntax tree into the light intermediate representation.
//
// Every function owns an arena of instructions. Instructions reference their operands by arena index, and every
// instruction that produces a value is a virtual register.
package lir

import (
	"jlc/src/ir/lir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Instruction is a single LIR instruction.
type Instruction struct {
	id    int                       // Index of instruction in the function arena.
	b     *Block                    // Block that owns the instruction.
	Op    types.InstructionType     // Instruction type.
	Typ   types.DataType            // Data type of the produced value, types.Void if none.
	Arith types.ArithmeticOperation // Operation of arithmetic instructions.
	Rel   types.RelationalOperation // Operation of compare instructions.
	Args  []int                     // Operand instruction ids.
	Slot  int                       // Stack slot of load and store instructions.
	IVal  int64                     // Integer and boolean constants, parameter index, array dimensions.
	FVal  float64                   // Double constants.
	Str   string                    // String literal or callee name.
	Elem  types.DataType            // Element data type of array instructions.
	Then  *Block                    // Branch target, or true target of conditional branch.
	Else  *Block                    // False target of conditional branch.
	Index int                       // Linear index assigned by Number, -1 before numbering.
	Loc   Loc                       // Storage assigned by the register allocator.
}

// Loc is the storage location of a virtual register. -1 means unassigned.
type Loc struct {
	Reg   int    // Physical register number.
	Spill int    // Spill slot number.
	Name  string // Assembler name of the register.
}

// Slot is a stack allocated local variable.
type Slot struct {
	Name string
	Typ  types.DataType
}

// ---------------------
// ----- Constants -----
// ---------------------

// labelValuePrefix is the textual LIR prefix of virtual registers.
const labelValuePrefix = "%"

// ---------------------
// ----- Functions -----
// ---------------------

// Id returns the arena index of the instruction.
func (inst *Instruction) Id() int {
	return inst.id
}

// Block returns the basic block that owns the instruction.
func (inst *Instruction) Block() *Block {
	return inst.b
}

// HasValue returns true if the instruction defines a virtual register.
func (inst *Instruction) HasValue() bool {
	return inst.Typ != types.Void && !inst.Op.IsTerminator() && inst.Op != types.Store && inst.Op != types.StoreElem
}

// IsTerminator returns true if the instruction ends a basic block.
func (inst *Instruction) IsTerminator() bool {
	return inst.Op.IsTerminator()
}

// unassigned is the zero location of a fresh instruction.
var unassigned = Loc{Reg: -1, Spill: -1}

// Assigned returns true if a register or a spill slot was assigned.
func (l Loc) Assigned() bool {
	return l.Reg >= 0 || l.Spill >= 0
}
