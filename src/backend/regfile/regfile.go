// Package regfile provides type definitions for virtual register files.
package regfile

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Class identifies the register bank a value lives in.
type Class int

// Register defines a physical register interface.
// A register has a class (floating point or integer), an identifier (usually ranging from 0-31)
// and an assembler name.
type Register interface {
	Id() int        // The hardware index of the register within its class.
	Class() Class   // Class returns either Integer or Float.
	String() string // String returns the assembler string for the register.
}

// RegisterFile defines an interface for a virtual register file.
// A register file hands out and takes back the temporary registers of its architecture. A register file is owned by a
// single function during allocation and is not safe for concurrent use.
type RegisterFile interface {
	Arch() string           // Name of the target architecture.
	FreeI(i int)            // Free/de-allocate integer register with index i.
	FreeF(i int)            // Free/de-allocate floating register with index i.
	GetNextTempI() Register // Returns the next available temporary integer register.
	GetNextTempF() Register // Returns the next available temporary floating point register.
	Ki() int                // Ki returns the number of usable temporary integer registers; allocated and un-allocated.
	Kf() int                // Kf returns the number of usable temporary floating point registers; allocated and un-allocated.
}

// ---------------------
// ----- Constants -----
// ---------------------

// Register classes.
const (
	Integer Class = iota // General purpose registers. Holds integers, booleans and references.
	Float                // Floating point registers.
)

// ---------------------
// ----- Functions -----
// ---------------------

// String returns a print friendly name of register class c.
func (c Class) String() string {
	if c == Float {
		return "float"
	}
	return "int"
}

// Next returns the next free temporary register of class c from rf, or <nil> if all are in use.
func Next(rf RegisterFile, c Class) Register {
	if c == Float {
		return rf.GetNextTempF()
	}
	return rf.GetNextTempI()
}

// Free releases register r in rf.
func Free(rf RegisterFile, r Register) {
	if r.Class() == Float {
		rf.FreeF(r.Id())
	} else {
		rf.FreeI(r.Id())
	}
}
