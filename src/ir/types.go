package ir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind differentiates the primitive kinds of types in the language.
type Kind int

// Type is a resolved static type. Arrays keep their scalar element kind in Elem and their number of dimensions in
// Dims. Scalar types have a zero Elem and Dims. Type values are comparable with ==.
type Type struct {
	Kind Kind // Kind of type.
	Elem Kind // Scalar element kind of an array type.
	Dims int  // Number of array dimensions, 0 for scalars.
}

// FuncType is a function signature: ordered parameter types plus return type.
type FuncType struct {
	Params []Type // Parameter types in declaration order.
	Ret    Type   // Return type.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	KindError Kind = iota
	KindInt
	KindDouble
	KindBool
	KindString
	KindVoid
	KindArray
)

// -------------------
// ----- Globals -----
// -------------------

// kTyp defines strings for print friendly output of Kind.
var kTyp = [...]string{
	KindError:  "error",
	KindInt:    "int",
	KindDouble: "double",
	KindBool:   "boolean",
	KindString: "string",
	KindVoid:   "void",
	KindArray:  "array",
}

// Predeclared scalar types.
var (
	Error  = Type{Kind: KindError}
	Int    = Type{Kind: KindInt}
	Double = Type{Kind: KindDouble}
	Bool   = Type{Kind: KindBool}
	String = Type{Kind: KindString}
	Void   = Type{Kind: KindVoid}
)

// ---------------------
// ----- Functions -----
// ---------------------

// String returns a print friendly string of Kind k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kTyp) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kTyp[k]
}

// ArrayOf returns the type of an array with dims dimensions over elem. If elem is itself an array its dimensions are
// added to dims, so ArrayOf(int[], 2) is int[][][]. A dims of 0 returns elem.
func ArrayOf(elem Type, dims int) Type {
	if dims <= 0 {
		return elem
	}
	if elem.Kind == KindArray {
		return Type{Kind: KindArray, Elem: elem.Elem, Dims: elem.Dims + dims}
	}
	return Type{Kind: KindArray, Elem: elem.Kind, Dims: dims}
}

// Scalar returns the element type of array t, or t itself if t is not an array.
func (t Type) Scalar() Type {
	if t.Kind != KindArray {
		return t
	}
	return Type{Kind: t.Elem}
}

// ElemOf returns the type obtained by indexing array t once. Indexing a one dimensional array gives its scalar
// element type. ElemOf panics if t is not an array.
func (t Type) ElemOf() Type {
	if t.Kind != KindArray {
		panic(fmt.Sprintf("cannot take element type of non-array type %s", t))
	}
	if t.Dims == 1 {
		return Type{Kind: t.Elem}
	}
	return Type{Kind: KindArray, Elem: t.Elem, Dims: t.Dims - 1}
}

// Equal returns true if t and u denote the same type. Array types are equal when both element kind and dimension
// count match.
func (t Type) Equal(u Type) bool {
	return t == u
}

// IsArray returns true if t is an array type.
func (t Type) IsArray() bool {
	return t.Kind == KindArray
}

// IsNumeric returns true if t is int or double.
func (t Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindDouble
}

// String returns the source level spelling of type t.
func (t Type) String() string {
	if t.Kind != KindArray {
		return t.Kind.String()
	}
	return t.Elem.String() + strings.Repeat("[]", t.Dims)
}

// String returns a print friendly string of function type ft.
func (ft FuncType) String() string {
	sb := strings.Builder{}
	sb.WriteString("(")
	for i1, e1 := range ft.Params {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e1.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(ft.Ret.String())
	return sb.String()
}
