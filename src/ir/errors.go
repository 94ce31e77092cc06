package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ErrorKind classifies semantic errors.
type ErrorKind int

// TypeError is a semantic error reported by the checker. It carries the position of the offending node.
type TypeError struct {
	Kind ErrorKind
	Msg  string
	Line int
	Col  int
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	UndeclaredVariable ErrorKind = iota
	UndeclaredFunction
	DuplicateVariable
	DuplicateFunction
	InvalidOperandType
	IncompatibleOperandTypes
	ArityError
	ArgumentTypeError
	AssignmentTypeMismatch
	InitializerTypeMismatch
	ConditionNotBoolean
	ReturnTypeMismatch
	MissingReturn
	ExpressionMustBeVoid
	NotAnInteger
	NotAnArray
	UnknownMember
	InvalidIndexDepth
	OnlyIntegerIndicesAllowed
	MissingMain
	IndexingOfNonArrayType
	LoopVariableTypeMismatch
	VoidVariable
)

// -------------------
// ----- Globals -----
// -------------------

// eKind provides print friendly strings of ErrorKind.
var eKind = [...]string{
	UndeclaredVariable:        "UndeclaredVariable",
	UndeclaredFunction:        "UndeclaredFunction",
	DuplicateVariable:         "DuplicateVariable",
	DuplicateFunction:         "DuplicateFunction",
	InvalidOperandType:        "InvalidOperandType",
	IncompatibleOperandTypes:  "IncompatibleOperandTypes",
	ArityError:                "ArityError",
	ArgumentTypeError:         "ArgumentTypeError",
	AssignmentTypeMismatch:    "AssignmentTypeMismatch",
	InitializerTypeMismatch:   "InitializerTypeMismatch",
	ConditionNotBoolean:       "ConditionNotBoolean",
	ReturnTypeMismatch:        "ReturnTypeMismatch",
	MissingReturn:             "MissingReturn",
	ExpressionMustBeVoid:      "ExpressionMustBeVoid",
	NotAnInteger:              "NotAnInteger",
	NotAnArray:                "NotAnArray",
	UnknownMember:             "UnknownMember",
	InvalidIndexDepth:         "InvalidIndexDepth",
	OnlyIntegerIndicesAllowed: "OnlyIntegerIndicesAllowed",
	MissingMain:               "MissingMain",
	IndexingOfNonArrayType:    "IndexingOfNonArrayType",
	LoopVariableTypeMismatch:  "LoopVariableTypeMismatch",
	VoidVariable:              "VoidVariable",
}

// ---------------------
// ----- Functions -----
// ---------------------

// String returns the name of error kind k.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(eKind) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return eKind[k]
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Line < 1 {
		return e.Msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// newError returns a *TypeError of kind k positioned at p.
func newError(k ErrorKind, p Pos, format string, args ...interface{}) error {
	return &TypeError{
		Kind: k,
		Msg:  fmt.Sprintf(format, args...),
		Line: p.Line,
		Col:  p.Col,
	}
}

// KindOf returns the kind of the semantic error at the root of err's cause chain. ok is false if err was not
// produced by the checker.
func KindOf(err error) (k ErrorKind, ok bool) {
	te, ok := errors.Cause(err).(*TypeError)
	if !ok {
		return 0, false
	}
	return te.Kind, true
}
