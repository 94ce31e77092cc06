// Package types defines LIR instruction types, data types etc.
package types

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ArithmeticOperation defines a type of arithmetic operation, either unary or binary.
type ArithmeticOperation uint

// RelationalOperation defines the comparison operators.
type RelationalOperation uint

// InstructionType defines different type of LIR instructions.
type InstructionType uint

// DataType defines LIR data types.
type DataType uint

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Add ArithmeticOperation = iota // Add identifies the arithmetic operation a = b + c.
	Sub                            // Sub identifies the arithmetic operation a = b - c.
	Mul                            // Mul identifies the arithmetic operation a = b * c.
	Div                            // Div identifies the arithmetic operation a = b / c.
	Rem                            // Rem identifies the arithmetic operation a = b % c.
	Neg                            // Neg identifies the arithmetic operation a = -b.
	Not                            // Not identifies the logical operation a = !b.
)

const (
	Eq                 RelationalOperation = iota // Eq defines ==.
	Neq                                           // Neq defines !=.
	LessThan                                      // LessThan defines <.
	LessThanOrEqual                               // LessThanOrEqual defines <=.
	GreaterThan                                   // GreaterThan defines >.
	GreaterThanOrEqual                            // GreaterThanOrEqual defines >=.
)

const (
	Param       InstructionType = iota // Incoming function parameter.
	Constant                           // Integer, boolean, double or null pointer constant.
	String                             // Address of a string literal.
	Load                               // Load from a stack slot.
	Store                              // Store to a stack slot.
	Arithmetic                         // Unary or binary arithmetic.
	Compare                            // Comparison yielding a boolean.
	Copy                               // Register to register move.
	Call                               // Function call.
	NewArray                           // Array allocation.
	ArrayLen                           // Array length query.
	LoadElem                           // Array element load.
	StoreElem                          // Array element store.
	Branch                             // Unconditional branch.
	CondBranch                         // Conditional branch.
	Return                             // Function return.
	Unreachable                        // Marks the end of reachable code in a block.
)

const (
	Int     DataType = iota // 64-bit integer.
	Double                  // 64-bit floating point.
	Bool                    // Boolean.
	Pointer                 // String or array reference.
	Void                    // No value.
)

// -------------------
// ----- Globals -----
// -------------------

// aTyp provides string literals for ArithmeticOperation constants.
var aTyp = [...]string{
	"add",
	"sub",
	"mul",
	"div",
	"rem",
	"neg",
	"not",
}

// iTyp provides string literals for InstructionType constants.
var iTyp = [...]string{
	"param",
	"const",
	"string",
	"load",
	"store",
	"arith",
	"cmp",
	"copy",
	"call",
	"newarray",
	"arraylen",
	"loadelem",
	"storeelem",
	"br",
	"condbr",
	"ret",
	"unreachable",
}

// dTyp provides string literals for DataType constants.
var dTyp = [...]string{
	"int",
	"double",
	"bool",
	"ptr",
	"void",
}

// lTyp provides string literals for RelationalOperation constants.
var lTyp = [...]string{
	"eq",
	"ne",
	"lt",
	"le",
	"gt",
	"ge",
}

// ---------------------
// ----- Functions -----
// ---------------------

// String provides a print friendly string representation of the ArithmeticOperation.
func (inst ArithmeticOperation) String() string {
	return aTyp[inst]
}

// String provides a print friendly string representation of the InstructionType.
func (inst InstructionType) String() string {
	return iTyp[inst]
}

// IsTerminator returns true if the instruction type ends a basic block.
func (inst InstructionType) IsTerminator() bool {
	return inst >= Branch
}

// String provides a print friendly string representation of the DataType.
func (inst DataType) String() string {
	return dTyp[inst]
}

// String provides a print friendly string representation of the RelationalOperation.
func (inst RelationalOperation) String() string {
	return lTyp[inst]
}
