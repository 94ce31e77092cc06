package lir

import (
	"fmt"
	"io"
	"strings"

	"jlc/src/ir/lir/types"
)

// ---------------------
// ----- Functions -----
// ---------------------

// Name returns the textual representation of the virtual register defined by the instruction.
func (inst *Instruction) Name() string {
	return fmt.Sprintf("%s%d", labelValuePrefix, inst.id)
}

// String returns the textual LIR representation of the instruction. Numbered instructions are prefixed by their
// index and allocated values are suffixed by their location.
func (inst *Instruction) String() string {
	sb := strings.Builder{}
	if inst.Index >= 0 {
		sb.WriteString(fmt.Sprintf("%4d: ", inst.Index))
	}
	if inst.HasValue() {
		sb.WriteString(fmt.Sprintf("%s = ", inst.Name()))
	}
	sb.WriteString(inst.Op.String())
	switch inst.Op {
	case types.Param:
		sb.WriteString(fmt.Sprintf(" %s %d", inst.Typ, inst.IVal))
	case types.Constant:
		switch inst.Typ {
		case types.Double:
			sb.WriteString(fmt.Sprintf(" double %g", inst.FVal))
		case types.Bool:
			sb.WriteString(fmt.Sprintf(" bool %t", inst.IVal != 0))
		case types.Pointer:
			sb.WriteString(" ptr null")
		default:
			sb.WriteString(fmt.Sprintf(" %s %d", inst.Typ, inst.IVal))
		}
	case types.String:
		sb.WriteString(fmt.Sprintf(" %q", inst.Str))
	case types.Load:
		sb.WriteString(fmt.Sprintf(" %s slot%d", inst.Typ, inst.Slot))
	case types.Store:
		sb.WriteString(fmt.Sprintf(" slot%d, %s", inst.Slot, inst.args()))
	case types.Arithmetic:
		sb.WriteString(fmt.Sprintf(" %s %s %s", inst.Arith, inst.Typ, inst.args()))
	case types.Compare:
		sb.WriteString(fmt.Sprintf(" %s %s", inst.Rel, inst.args()))
	case types.Call:
		sb.WriteString(fmt.Sprintf(" %s %s(%s)", inst.Typ, inst.Str, inst.args()))
	case types.NewArray:
		sb.WriteString(fmt.Sprintf(" %s %d [%s]", inst.Elem, inst.IVal, inst.args()))
	case types.LoadElem, types.StoreElem:
		sb.WriteString(fmt.Sprintf(" %s %s", inst.Elem, inst.args()))
	case types.Branch:
		sb.WriteString(fmt.Sprintf(" %s", inst.Then.name))
	case types.CondBranch:
		sb.WriteString(fmt.Sprintf(" %s, %s, %s", inst.args(), inst.Then.name, inst.Else.name))
	default:
		if len(inst.Args) > 0 {
			sb.WriteString(" ")
			sb.WriteString(inst.args())
		}
	}
	if inst.HasValue() && inst.Loc.Assigned() {
		sb.WriteString("\t; ")
		sb.WriteString(inst.Loc.String())
	}
	return sb.String()
}

// args returns the operand list of the instruction.
func (inst *Instruction) args() string {
	s := make([]string, len(inst.Args))
	for i1, e1 := range inst.Args {
		s[i1] = fmt.Sprintf("%s%d", labelValuePrefix, e1)
	}
	return strings.Join(s, ", ")
}

// String returns the textual representation of location l.
func (l Loc) String() string {
	if l.Reg >= 0 && l.Name != "" {
		return l.Name
	}
	if l.Reg >= 0 {
		return fmt.Sprintf("r%d", l.Reg)
	}
	if l.Spill >= 0 {
		return fmt.Sprintf("spill%d", l.Spill)
	}
	return "unassigned"
}

// Print writes the textual LIR of Module m to w. When live is true the intervals of each function are printed after
// its body.
func (m *Module) Print(w io.Writer, live bool) error {
	if _, err := io.WriteString(w, m.String()); err != nil {
		return err
	}
	if !live {
		return nil
	}
	for _, e1 := range m.functions {
		if _, err := io.WriteString(w, BuildIntervals(e1).String()); err != nil {
			return err
		}
	}
	return nil
}
