package ir

import (
	"fmt"
	"io"
	"strings"
)

// String returns the indented tree representation of the program.
func (p *Program) String() string {
	sb := strings.Builder{}
	p.Print(&sb)
	return sb.String()
}

// Print writes the program tree to w, indenting every node two spaces per depth. Typed expressions are printed with
// their resolved type.
func (p *Program) Print(w io.Writer) {
	for _, e1 := range p.Funcs {
		params := make([]string, len(e1.Params))
		for i1, e2 := range e1.Params {
			params[i1] = e2.Typ.String() + " " + e2.Name
		}
		_, _ = fmt.Fprintf(w, "FUNCTION %s %s(%s)\n", e1.Ret, e1.Name, strings.Join(params, ", "))
		printStmt(w, e1.Body, 1)
	}
}

// indent writes a line at depth d.
func indent(w io.Writer, d int, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", d), fmt.Sprintf(format, args...))
}

// printStmt recursively prints statement s and its children.
func printStmt(w io.Writer, s Stmt, d int) {
	switch n := s.(type) {
	case *Block:
		indent(w, d, "BLOCK")
		for _, e1 := range n.Stmts {
			printStmt(w, e1, d+1)
		}
	case *Decl:
		indent(w, d, "DECLARATION %s", n.Typ)
		for _, e1 := range n.Items {
			indent(w, d+1, "%s", e1.Name)
			if e1.Init != nil {
				printExpr(w, e1.Init, d+2)
			}
		}
	case *Assign:
		indent(w, d, "ASSIGNMENT")
		printExpr(w, n.Target, d+1)
		printExpr(w, n.Value, d+1)
	case *Incr:
		if n.Dec {
			indent(w, d, "DECREMENT %s", n.Name)
		} else {
			indent(w, d, "INCREMENT %s", n.Name)
		}
	case *If:
		indent(w, d, "IF")
		printExpr(w, n.Cond, d+1)
		printStmt(w, n.Then, d+1)
	case *IfElse:
		indent(w, d, "IF_ELSE")
		printExpr(w, n.Cond, d+1)
		printStmt(w, n.Then, d+1)
		printStmt(w, n.Else, d+1)
	case *While:
		indent(w, d, "WHILE")
		printExpr(w, n.Cond, d+1)
		printStmt(w, n.Body, d+1)
	case *ForEach:
		indent(w, d, "FOR %s %s", n.ElemType, n.Name)
		printExpr(w, n.Array, d+1)
		printStmt(w, n.Body, d+1)
	case *Return:
		indent(w, d, "RETURN")
		printExpr(w, n.Value, d+1)
	case *VoidReturn:
		indent(w, d, "RETURN")
	case *ExprStmt:
		indent(w, d, "EXPRESSION_STATEMENT")
		printExpr(w, n.X, d+1)
	case *Empty:
		indent(w, d, "EMPTY")
	default:
		indent(w, d, "---> UNKNOWN STATEMENT %T", s)
	}
}

// printExpr recursively prints expression e and its children.
func printExpr(w io.Writer, e Expr, d int) {
	suffix := ""
	if t, ok := e.(*Typed); ok {
		suffix = " : " + t.Typ.String()
		e = Unwrap(t)
	}
	switch n := e.(type) {
	case *IntLit:
		indent(w, d, "INTEGER %d%s", n.Val, suffix)
	case *DoubleLit:
		indent(w, d, "DOUBLE %g%s", n.Val, suffix)
	case *BoolLit:
		indent(w, d, "BOOLEAN %t%s", n.Val, suffix)
	case *StringLit:
		indent(w, d, "STRING %q%s", n.Val, suffix)
	case *Ident:
		indent(w, d, "IDENTIFIER %s%s", n.Name, suffix)
	case *Unary:
		indent(w, d, "UNARY %s%s", n.Op, suffix)
		printExpr(w, n.X, d+1)
	case *Binary:
		indent(w, d, "BINARY %s%s", n.Op, suffix)
		printExpr(w, n.X, d+1)
		printExpr(w, n.Y, d+1)
	case *Call:
		indent(w, d, "CALL %s%s", n.Name, suffix)
		for _, e1 := range n.Args {
			printExpr(w, e1, d+1)
		}
	case *Index:
		indent(w, d, "INDEX%s", suffix)
		printExpr(w, n.X, d+1)
		printExpr(w, n.Index, d+1)
	case *NewArray:
		indent(w, d, "NEW %s%s", n.Elem, suffix)
		for _, e1 := range n.Sizes {
			printExpr(w, e1, d+1)
		}
	case *Length:
		indent(w, d, "MEMBER %s%s", n.Member, suffix)
		printExpr(w, n.X, d+1)
	default:
		indent(w, d, "---> UNKNOWN EXPRESSION %T", e)
	}
}
