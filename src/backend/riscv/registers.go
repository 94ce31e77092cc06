// Package riscv provides the RISC-V 64-bit register file used by the register allocator.
package riscv

import (
	"jlc/src/backend/regfile"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// register holds the status of a register at any given time.
type register struct {
	id    int           // Zero indexed id of register.
	class regfile.Class // Integer or floating point.
	use   bool          // false = not used, true = used.
}

// RegisterFile represents the register file of the RV64IMFD architecture.
type RegisterFile struct {
	i []*register // All integer registers defined for architecture.
	f []*register // All floating point registers defined for architecture.
}

// ---------------------
// ----- Constants -----
// ---------------------

// Base registers (integer).
const (
	x0  = iota // Zero register, RO.
	x1         // Return address (caller save).
	x2         // Stack pointer (callee save).
	x3         // Global pointer.
	x4         // Thread pointer.
	x5         // Temp register (caller saved).
	x6         // Temp register (caller saved).
	x7         // Temp register (caller saved).
	x8         // Frame pointer (callee saved).
	x9         // Saved (callee saved).
	x10        // Function args and return (caller saved).
	x11        // Function args and return (caller saved).
	x12        // Function arguments (caller saved).
	x13        // Function arguments (caller saved).
	x14        // Function arguments (caller saved).
	x15        // Function arguments (caller saved).
	x16        // Function arguments (caller saved).
	x17        // Function arguments (caller saved).
	x18        // Saved (callee saved).
	x19        // Saved (callee saved).
	x20        // Saved (callee saved).
	x21        // Saved (callee saved).
	x22        // Saved (callee saved).
	x23        // Saved (callee saved).
	x24        // Saved (callee saved).
	x25        // Saved (callee saved).
	x26        // Saved (callee saved).
	x27        // Saved (callee saved).
	x28        // Temp (caller saved).
	x29        // Temp (caller saved).
	x30        // Temp (caller saved).
	x31        // Temp (caller saved). Reserved for spilling.
)

// Floating point registers from the F and D extensions.
const (
	f0  = 0
	f8  = 8
	f10 = 10
	f18 = 18
	f28 = 28
	f31 = 31 // Reserved for spilling.
)

// -------------------
// ----- Globals -----
// -------------------

// regi defines the ABI names of the integer registers.
var regi = [...]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"fp", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// regf defines the ABI names of the floating point registers.
var regf = [...]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// tempI lists the integer registers handed out as temporaries, caller saved first. Argument registers are left to
// the calling convention.
var tempI = []int{x5, x6, x7, x28, x29, x30, x9, x18, x19, x20, x21, x22, x23, x24, x25, x26, x27}

// tempF lists the floating point registers handed out as temporaries.
var tempF = func() []int {
	res := make([]int, 0, 23)
	for i1 := f0; i1 < f10; i1++ {
		res = append(res, i1)
	}
	for i1 := f18; i1 < f31; i1++ {
		res = append(res, i1)
	}
	return res
}()

// ---------------------
// ----- Functions -----
// ---------------------

// CreateRegisterFile returns a register file with all registers free.
func CreateRegisterFile() *RegisterFile {
	rf := RegisterFile{
		i: make([]*register, len(regi)),
		f: make([]*register, len(regf)),
	}
	for i1 := range rf.i {
		rf.i[i1] = &register{id: i1, class: regfile.Integer}
		rf.f[i1] = &register{id: i1, class: regfile.Float}
	}
	return &rf
}

// String returns the ABI name of register r.
func (r *register) String() string {
	if r.class == regfile.Float {
		return regf[r.id]
	}
	return regi[r.id]
}

// Id returns the hardware index of register r.
func (r *register) Id() int {
	return r.id
}

// Class returns the register class.
func (r *register) Class() regfile.Class {
	return r.class
}

// Arch returns the name of the architecture.
func (rf *RegisterFile) Arch() string {
	return "riscv64"
}

// GetNextTempI returns the next vacant temporary integer register, or <nil> if all are in use.
func (rf *RegisterFile) GetNextTempI() regfile.Register {
	for _, e1 := range tempI {
		if !rf.i[e1].use {
			rf.i[e1].use = true
			return rf.i[e1]
		}
	}
	return nil
}

// GetNextTempF returns the next vacant temporary floating point register, or <nil> if all are in use.
func (rf *RegisterFile) GetNextTempF() regfile.Register {
	for _, e1 := range tempF {
		if !rf.f[e1].use {
			rf.f[e1].use = true
			return rf.f[e1]
		}
	}
	return nil
}

// FreeI frees integer register with index i.
func (rf *RegisterFile) FreeI(i int) {
	if i < 0 || i >= len(rf.i) {
		return
	}
	rf.i[i].use = false
}

// FreeF frees floating point register with index i.
func (rf *RegisterFile) FreeF(i int) {
	if i < 0 || i >= len(rf.f) {
		return
	}
	rf.f[i].use = false
}

// Ki returns the number of usable temporary integer registers.
func (rf *RegisterFile) Ki() int {
	return len(tempI)
}

// Kf returns the number of usable temporary floating point registers.
func (rf *RegisterFile) Kf() int {
	return len(tempF)
}
