// Package arm provides the aarch64 register file used by the register allocator.
package arm

import (
	"fmt"

	"jlc/src/backend/regfile"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// register is one physical register and its allocation status.
type register struct {
	class regfile.Class
	idx   int  // Hardware index, x<idx> or d<idx>.
	use   bool // Handed out by the allocator.
}

// bank holds the registers of one class together with the indices the allocator may hand out.
type bank struct {
	regs  []*register
	temps []int
}

// RegisterFile holds the 32 integer and 32 floating point registers of the AAPCS64 calling standard.
type RegisterFile struct {
	i, f bank
}

// ---------------------
// ----- Constants -----
// ---------------------

const nregs = 32

// Special purpose integer registers. Index 31 denotes sp, the zero register is never allocated.
const (
	fp = 29
	lr = 30
	sp = 31
)

// Allocatable ranges. x0-x7 and d0-d7 carry arguments and results, x18 is the platform register on some targets and
// x28, d30 and d31 are reserved as scratch for spill code.
const (
	firstTempI, lastTempI = 8, 27
	firstTempF, lastTempF = 8, 29
)

// ---------------------
// ----- Functions -----
// ---------------------

// newBank returns a bank of nregs free registers of class c handing out indices [first, last].
func newBank(c regfile.Class, first, last int) bank {
	b := bank{regs: make([]*register, nregs), temps: make([]int, 0, last-first+1)}
	for i1 := range b.regs {
		b.regs[i1] = &register{class: c, idx: i1}
	}
	for i1 := first; i1 <= last; i1++ {
		b.temps = append(b.temps, i1)
	}
	return b
}

// next marks the first vacant temporary as used and returns it, or <nil> if every temporary is taken.
func (b *bank) next() regfile.Register {
	for _, e1 := range b.temps {
		if r := b.regs[e1]; !r.use {
			r.use = true
			return r
		}
	}
	return nil
}

// free marks register i vacant.
func (b *bank) free(i int) {
	if i >= 0 && i < len(b.regs) {
		b.regs[i].use = false
	}
}

// CreateRegisterFile returns a register file with all registers free.
func CreateRegisterFile() *RegisterFile {
	return &RegisterFile{
		i: newBank(regfile.Integer, firstTempI, lastTempI),
		f: newBank(regfile.Float, firstTempF, lastTempF),
	}
}

// String returns the assembler name of r.
func (r *register) String() string {
	if r.class == regfile.Float {
		return fmt.Sprintf("d%d", r.idx)
	}
	switch r.idx {
	case fp:
		return "fp"
	case lr:
		return "lr"
	case sp:
		return "sp"
	}
	return fmt.Sprintf("x%d", r.idx)
}

// Id returns the hardware index of r.
func (r *register) Id() int { return r.idx }

// Class returns the register class of r.
func (r *register) Class() regfile.Class { return r.class }

// Arch returns the name of the architecture.
func (rf *RegisterFile) Arch() string { return "aarch64" }

// GetNextTempI returns the next vacant temporary integer register, or <nil> if all are in use.
func (rf *RegisterFile) GetNextTempI() regfile.Register { return rf.i.next() }

// GetNextTempF returns the next vacant temporary floating point register, or <nil> if all are in use.
func (rf *RegisterFile) GetNextTempF() regfile.Register { return rf.f.next() }

// FreeI frees integer register with index i.
func (rf *RegisterFile) FreeI(i int) { rf.i.free(i) }

// FreeF frees floating point register with index i.
func (rf *RegisterFile) FreeF(i int) { rf.f.free(i) }

// Ki returns the number of usable temporary integer registers.
func (rf *RegisterFile) Ki() int { return len(rf.i.temps) }

// Kf returns the number of usable temporary floating point registers.
func (rf *RegisterFile) Kf() int { return len(rf.f.temps) }
