// parser.go implements a recursive descent parser over the items produced by the lexer. Every node of the produced
// syntax tree carries the line and column of the token it starts at.

package frontend

import (
	"strconv"

	"github.com/pkg/errors"

	"jlc/src/ir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// parser holds the token slice and the read position.
type parser struct {
	items []item
	pos   int
}

// ---------------------
// ----- Functions -----
// ---------------------

// peek returns the current item without consuming it.
func (p *parser) peek() item {
	return p.items[p.pos]
}

// peekN returns the item n positions ahead of the current item, or the EOF item.
func (p *parser) peekN(n int) item {
	if p.pos+n >= len(p.items) {
		return p.items[len(p.items)-1]
	}
	return p.items[p.pos+n]
}

// next consumes and returns the current item. The trailing EOF item is never consumed.
func (p *parser) next() item {
	i := p.items[p.pos]
	if i.typ != itemEOF {
		p.pos++
	}
	return i
}

// got consumes the current item and returns true if it is of type typ.
func (p *parser) got(typ itemType) bool {
	if p.peek().typ == typ {
		p.next()
		return true
	}
	return false
}

// expect consumes an item of type typ or returns a syntax error.
func (p *parser) expect(typ itemType) (item, error) {
	i := p.peek()
	if i.typ != typ {
		return i, p.errorf(i, "expected %s, got %s", typ, describe(i))
	}
	return p.next(), nil
}

// errorf returns a syntax error positioned at item i.
func (p *parser) errorf(i item, format string, args ...interface{}) error {
	return errors.Errorf("line %d:%d: syntax error: "+format, append([]interface{}{i.line, i.pos}, args...)...)
}

// describe returns a print friendly description of the item for error messages.
func describe(i item) string {
	if i.typ == itemEOF {
		return "end of file"
	}
	return strconv.Quote(i.val)
}

// pos returns the source position of item i.
func pos(i item) ir.Pos {
	return ir.Pos{Line: i.line, Col: i.pos}
}

// isType returns true if the item starts a type.
func isType(i item) bool {
	switch i.typ {
	case kwInt, kwDouble, kwBoolean, kwVoid:
		return true
	}
	return false
}

// parseProgram parses a sequence of function definitions.
func (p *parser) parseProgram() (*ir.Program, error) {
	prog := &ir.Program{}
	for p.peek().typ != itemEOF {
		f, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, f)
	}
	return prog, nil
}

// parseFunction parses: type ident '(' [type ident {',' type ident}] ')' block.
func (p *parser) parseFunction() (*ir.FunctionDef, error) {
	start := p.peek()
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(itemIdent)
	if err != nil {
		return nil, err
	}
	f := &ir.FunctionDef{Pos: pos(start), Name: name.val, Ret: ret}
	if _, err = p.expect('('); err != nil {
		return nil, err
	}
	for p.peek().typ != ')' {
		if len(f.Params) > 0 {
			if _, err = p.expect(','); err != nil {
				return nil, err
			}
		}
		ps := p.peek()
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pn, err := p.expect(itemIdent)
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, &ir.Param{Pos: pos(ps), Name: pn.val, Typ: typ})
	}
	p.next()
	if f.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseType parses a base type followed by any number of '[]' pairs.
func (p *parser) parseType() (ir.Type, error) {
	i := p.next()
	var t ir.Type
	switch i.typ {
	case kwInt:
		t = ir.Int
	case kwDouble:
		t = ir.Double
	case kwBoolean:
		t = ir.Bool
	case kwVoid:
		t = ir.Void
	default:
		return ir.Error, p.errorf(i, "expected type, got %s", describe(i))
	}
	dims := 0
	for p.peek().typ == '[' && p.peekN(1).typ == ']' {
		p.next()
		p.next()
		dims++
	}
	return ir.ArrayOf(t, dims), nil
}

// parseBlock parses '{' {stmt} '}'.
func (p *parser) parseBlock() (*ir.Block, error) {
	open, err := p.expect('{')
	if err != nil {
		return nil, err
	}
	b := &ir.Block{Pos: pos(open)}
	for !p.got('}') {
		if p.peek().typ == itemEOF {
			return nil, p.errorf(p.peek(), "expected '}', got end of file")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

// parseStmt parses a single statement.
func (p *parser) parseStmt() (ir.Stmt, error) {
	i := p.peek()
	switch {
	case i.typ == ';':
		p.next()
		return &ir.Empty{Pos: pos(i)}, nil
	case i.typ == '{':
		return p.parseBlock()
	case isType(i):
		return p.parseDecl()
	case i.typ == kwReturn:
		p.next()
		if p.got(';') {
			return &ir.VoidReturn{Pos: pos(i)}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(';'); err != nil {
			return nil, err
		}
		return &ir.Return{Pos: pos(i), Value: e}, nil
	case i.typ == kwIf:
		return p.parseIf()
	case i.typ == kwWhile:
		p.next()
		cond, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ir.While{Pos: pos(i), Cond: cond, Body: body}, nil
	case i.typ == kwFor:
		return p.parseFor()
	}

	// Assignment, increment, decrement or expression statement.
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var s ir.Stmt
	switch op := p.peek(); op.typ {
	case '=':
		switch e.(type) {
		case *ir.Ident, *ir.Index:
		default:
			return nil, p.errorf(op, "cannot assign to expression")
		}
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s = &ir.Assign{Pos: pos(i), Target: e, Value: v}
	case itemInc, itemDec:
		id, ok := e.(*ir.Ident)
		if !ok {
			return nil, p.errorf(op, "%s requires a variable", op.val)
		}
		p.next()
		s = &ir.Incr{Pos: pos(i), Name: id.Name, Dec: op.typ == itemDec}
	default:
		s = &ir.ExprStmt{Pos: pos(i), X: e}
	}
	if _, err = p.expect(';'); err != nil {
		return nil, err
	}
	return s, nil
}

// parseDecl parses: type item {',' item} ';' where item is ident ['=' expr].
func (p *parser) parseDecl() (ir.Stmt, error) {
	start := p.peek()
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	d := &ir.Decl{Pos: pos(start), Typ: typ}
	for {
		name, err := p.expect(itemIdent)
		if err != nil {
			return nil, err
		}
		di := &ir.DeclItem{Pos: pos(name), Name: name.val}
		if p.got('=') {
			if di.Init, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		d.Items = append(d.Items, di)
		if !p.got(',') {
			break
		}
	}
	if _, err = p.expect(';'); err != nil {
		return nil, err
	}
	return d, nil
}

// parseCond parses a parenthesised condition.
func (p *parser) parseCond() (ir.Expr, error) {
	if _, err := p.expect('('); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err = p.expect(')'); err != nil {
		return nil, err
	}
	return e, nil
}

// parseIf parses: 'if' '(' expr ')' stmt ['else' stmt].
func (p *parser) parseIf() (ir.Stmt, error) {
	i := p.next()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if !p.got(kwElse) {
		return &ir.If{Pos: pos(i), Cond: cond, Then: then}, nil
	}
	els, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ir.IfElse{Pos: pos(i), Cond: cond, Then: then, Else: els}, nil
}

// parseFor parses: 'for' '(' type ident ':' expr ')' stmt.
func (p *parser) parseFor() (ir.Stmt, error) {
	i := p.next()
	if _, err := p.expect('('); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(itemIdent)
	if err != nil {
		return nil, err
	}
	if _, err = p.expect(':'); err != nil {
		return nil, err
	}
	arr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err = p.expect(')'); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ir.ForEach{Pos: pos(i), ElemType: typ, Name: name.val, Array: arr, Body: body}, nil
}

// parseExpr parses an expression. The lowest precedence operator || is right associative.
func (p *parser) parseExpr() (ir.Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.typ == itemOr {
		p.next()
		y, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Pos: pos(op), Op: ir.OpOr, X: x, Y: y}, nil
	}
	return x, nil
}

// parseAnd parses a right associative chain of &&.
func (p *parser) parseAnd() (ir.Expr, error) {
	x, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.typ == itemAnd {
		p.next()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Pos: pos(op), Op: ir.OpAnd, X: x, Y: y}, nil
	}
	return x, nil
}

// relOps maps relational tokens to operators.
var relOps = map[itemType]ir.BinOp{
	'<':    ir.OpLt,
	itemLe: ir.OpLe,
	'>':    ir.OpGt,
	itemGe: ir.OpGe,
	itemEq: ir.OpEq,
	itemNe: ir.OpNe,
}

// parseRel parses a non associative relational expression.
func (p *parser) parseRel() (ir.Expr, error) {
	x, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	op := p.peek()
	if rel, ok := relOps[op.typ]; ok {
		p.next()
		y, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Pos: pos(op), Op: rel, X: x, Y: y}, nil
	}
	return x, nil
}

// parseAdd parses a left associative chain of + and -.
func (p *parser) parseAdd() (ir.Expr, error) {
	x, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		var bop ir.BinOp
		switch op.typ {
		case '+':
			bop = ir.OpAdd
		case '-':
			bop = ir.OpSub
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		x = &ir.Binary{Pos: pos(op), Op: bop, X: x, Y: y}
	}
}

// parseMul parses a left associative chain of *, / and %.
func (p *parser) parseMul() (ir.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		var bop ir.BinOp
		switch op.typ {
		case '*':
			bop = ir.OpMul
		case '/':
			bop = ir.OpDiv
		case '%':
			bop = ir.OpMod
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ir.Binary{Pos: pos(op), Op: bop, X: x, Y: y}
	}
}

// parseUnary parses prefix negation and logical not.
func (p *parser) parseUnary() (ir.Expr, error) {
	op := p.peek()
	var uop ir.UnOp
	switch op.typ {
	case '-':
		uop = ir.OpNeg
	case '!':
		uop = ir.OpNot
	default:
		return p.parsePostfix()
	}
	p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ir.Unary{Pos: pos(op), Op: uop, X: x}, nil
}

// parsePostfix parses a primary expression followed by indexing and member access.
func (p *parser) parsePostfix() (ir.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch op := p.peek(); op.typ {
		case '[':
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err = p.expect(']'); err != nil {
				return nil, err
			}
			x = &ir.Index{Pos: pos(op), X: x, Index: idx}
		case '.':
			p.next()
			m, err := p.expect(itemIdent)
			if err != nil {
				return nil, err
			}
			x = &ir.Length{Pos: pos(op), X: x, Member: m.val}
		default:
			return x, nil
		}
	}
}

// parsePrimary parses literals, variables, calls, parenthesised expressions and array construction.
func (p *parser) parsePrimary() (ir.Expr, error) {
	i := p.next()
	switch i.typ {
	case itemInt:
		v, err := strconv.ParseInt(i.val, 10, 64)
		if err != nil {
			return nil, p.errorf(i, "integer literal %s out of range", i.val)
		}
		return &ir.IntLit{Pos: pos(i), Val: v}, nil
	case itemDouble:
		v, err := strconv.ParseFloat(i.val, 64)
		if err != nil {
			return nil, p.errorf(i, "malformed double literal %s", i.val)
		}
		return &ir.DoubleLit{Pos: pos(i), Val: v}, nil
	case kwTrue, kwFalse:
		return &ir.BoolLit{Pos: pos(i), Val: i.typ == kwTrue}, nil
	case itemString:
		s, err := strconv.Unquote(`"` + i.val + `"`)
		if err != nil {
			return nil, p.errorf(i, "malformed string literal")
		}
		return &ir.StringLit{Pos: pos(i), Val: s}, nil
	case itemIdent:
		if !p.got('(') {
			return &ir.Ident{Pos: pos(i), Name: i.val}, nil
		}
		c := &ir.Call{Pos: pos(i), Name: i.val}
		for !p.got(')') {
			if len(c.Args) > 0 {
				if _, err := p.expect(','); err != nil {
					return nil, err
				}
			}
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			c.Args = append(c.Args, a)
		}
		return c, nil
	case '(':
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(')'); err != nil {
			return nil, err
		}
		return e, nil
	case kwNew:
		return p.parseNew(i)
	default:
		return nil, p.errorf(i, "unexpected %s", describe(i))
	}
}

// parseNew parses the remainder of: 'new' type '[' expr ']' {'[' expr ']'}. Empty '[]' pairs directly after the
// base type make the element type an array.
func (p *parser) parseNew(kw item) (ir.Expr, error) {
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	n := &ir.NewArray{Pos: pos(kw), Elem: elem}
	for p.peek().typ == '[' {
		p.next()
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(']'); err != nil {
			return nil, err
		}
		n.Sizes = append(n.Sizes, size)
	}
	if len(n.Sizes) == 0 {
		return nil, p.errorf(p.peek(), "expected array size after new %s", elem)
	}
	return n, nil
}
