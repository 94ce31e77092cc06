package ir

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Pos is a 1-based source position.
type Pos struct {
	Line int // Line in source code the node is declared.
	Col  int // Position on the line in source code the node is declared.
}

// Node is implemented by every syntax tree node.
type Node interface {
	Position() Pos
}

// Stmt is a statement node. The set of statements is closed: only types in this file implement it.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. The set of expressions is closed: only types in this file implement it.
type Expr interface {
	Node
	exprNode()
}

// BinOp identifies a binary operator.
type BinOp int

// UnOp identifies a unary operator.
type UnOp int

// Program is the root of the syntax tree.
type Program struct {
	Funcs []*FunctionDef // Functions in order of appearance top-to-bottom in the source code.
}

// FunctionDef is a top level function definition.
type FunctionDef struct {
	Pos
	Name   string
	Params []*Param
	Ret    Type
	Body   *Block
}

// Param is a single typed function parameter.
type Param struct {
	Pos
	Name string
	Typ  Type
}

// Block is a braced statement list with its own scope.
type Block struct {
	Pos
	Stmts []Stmt
}

// Decl declares one or more variables of the same type.
type Decl struct {
	Pos
	Typ   Type
	Items []*DeclItem
}

// DeclItem is a single declared name with an optional initializer.
type DeclItem struct {
	Pos
	Name string
	Init Expr // <nil> if the variable is not initialised.
}

// Assign stores Value into Target. Target is either an *Ident or an *Index expression.
type Assign struct {
	Pos
	Target Expr
	Value  Expr
}

// Incr increments or decrements an integer variable.
type Incr struct {
	Pos
	Name string
	Dec  bool // True for --.
}

// If is a conditional without an else branch.
type If struct {
	Pos
	Cond Expr
	Then Stmt
}

// IfElse is a conditional with an else branch.
type IfElse struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a pre-tested loop.
type While struct {
	Pos
	Cond Expr
	Body Stmt
}

// ForEach iterates the outermost dimension of an array: for (ElemType Name : Array) Body.
type ForEach struct {
	Pos
	ElemType Type
	Name     string
	Array    Expr
	Body     Stmt
}

// Return returns a value.
type Return struct {
	Pos
	Value Expr
}

// VoidReturn returns from a void function.
type VoidReturn struct {
	Pos
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Pos
	X Expr
}

// Empty is the empty statement ';'.
type Empty struct {
	Pos
}

// IntLit is an integer literal.
type IntLit struct {
	Pos
	Val int64
}

// DoubleLit is a floating point literal.
type DoubleLit struct {
	Pos
	Val float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Pos
	Val bool
}

// StringLit is a string literal, only valid as argument to printString.
type StringLit struct {
	Pos
	Val string
}

// Ident is a variable reference.
type Ident struct {
	Pos
	Name string
}

// Unary is a unary negation or logical not.
type Unary struct {
	Pos
	Op UnOp
	X  Expr
}

// Binary is an arithmetic, relational or logical binary expression.
type Binary struct {
	Pos
	Op BinOp
	X  Expr
	Y  Expr
}

// Call is a function call.
type Call struct {
	Pos
	Name string
	Args []Expr
}

// Index is a single level of array indexing: X[Index].
type Index struct {
	Pos
	X     Expr
	Index Expr
}

// NewArray constructs an array: new Elem[Sizes[0]]...[Sizes[n-1]].
type NewArray struct {
	Pos
	Elem  Type
	Sizes []Expr
}

// Length is a member access on an array, X.Member. Member must be "length".
type Length struct {
	Pos
	X      Expr
	Member string
}

// Typed annotates expression X with its resolved type. Every expression of a checked tree is wrapped in exactly one
// Typed node.
type Typed struct {
	X   Expr
	Typ Type
}

// ---------------------
// ----- Constants -----
// ---------------------

// Binary operators.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
)

// Unary operators.
const (
	OpNeg UnOp = iota
	OpNot
)

// -------------------
// ----- Globals -----
// -------------------

// bOp provides print friendly strings of binary operators.
var bOp = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpEq:  "==",
	OpNe:  "!=",
	OpAnd: "&&",
	OpOr:  "||",
}

// uOp provides print friendly strings of unary operators.
var uOp = [...]string{
	OpNeg: "-",
	OpNot: "!",
}

// ---------------------
// ----- Functions -----
// ---------------------

// Position returns the position p. Nodes embedding Pos inherit it.
func (p Pos) Position() Pos { return p }

// Position returns the position of the annotated expression.
func (t *Typed) Position() Pos { return t.X.Position() }

// String returns the source spelling of binary operator op.
func (op BinOp) String() string { return bOp[op] }

// String returns the source spelling of unary operator op.
func (op UnOp) String() string { return uOp[op] }

// IsRelational returns true if op compares its operands and yields a boolean.
func (op BinOp) IsRelational() bool { return op >= OpLt && op <= OpNe }

// IsLogical returns true if op is a short circuit boolean operator.
func (op BinOp) IsLogical() bool { return op == OpAnd || op == OpOr }

func (*Block) stmtNode()      {}
func (*Decl) stmtNode()       {}
func (*Assign) stmtNode()     {}
func (*Incr) stmtNode()       {}
func (*If) stmtNode()         {}
func (*IfElse) stmtNode()     {}
func (*While) stmtNode()      {}
func (*ForEach) stmtNode()    {}
func (*Return) stmtNode()     {}
func (*VoidReturn) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*Empty) stmtNode()      {}

func (*IntLit) exprNode()    {}
func (*DoubleLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Call) exprNode()      {}
func (*Index) exprNode()     {}
func (*NewArray) exprNode()  {}
func (*Length) exprNode()    {}
func (*Typed) exprNode()     {}

// TypeOf returns the resolved type of a checked expression. It panics if e has not been annotated.
func TypeOf(e Expr) Type {
	t, ok := e.(*Typed)
	if !ok {
		panic("expression has no resolved type")
	}
	return t.Typ
}

// Unwrap strips Typed annotations from e.
func Unwrap(e Expr) Expr {
	for {
		t, ok := e.(*Typed)
		if !ok {
			return e
		}
		e = t.X
	}
}
