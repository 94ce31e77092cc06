package ir_test

import (
	"strings"
	"testing"

	"jlc/src/frontend"
	"jlc/src/ir"
	"jlc/src/util"
)

// check parses and type checks src.
func check(t *testing.T, src string) (*ir.Program, error) {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %s", err)
	}
	return prog, ir.TypeCheck(prog)
}

// TestTypeCheckPrograms runs whole programs through the checker and compares the first reported error kind.
func TestTypeCheckPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
		kind ir.ErrorKind
	}{
		{name: "minimal", ok: true, src: `int main() { int x; x = 1 + 2; return x; }`},
		{name: "forward reference", ok: true, src: `
int a() { return b() + 1; }
int b() { return 2; }
int main() { return a(); }`},
		{name: "mutual recursion", ok: true, src: `
boolean even(int n) { if (n == 0) return true; else return odd(n - 1); }
boolean odd(int n) { if (n == 0) return false; else return even(n - 1); }
int main() { if (even(4)) printInt(1); return 0; }`},
		{name: "missing main", kind: ir.MissingMain, src: `int f() { return 0; }`},
		{name: "main with params", ok: true, src: `int main(int argc) { return argc; }`},
		{name: "duplicate function", kind: ir.DuplicateFunction, src: `int main() { return 0; } int main() { return 1; }`},
		{name: "redefine builtin", kind: ir.DuplicateFunction, src: `void printInt(int x) { } int main() { return 0; }`},
		{name: "duplicate parameter", kind: ir.DuplicateVariable, src: `int f(int a, int a) { return a; } int main() { return 0; }`},
		{name: "parameter shadowed by body", kind: ir.DuplicateVariable, src: `int main(int a) { int a; return 0; }`},
		{name: "shadow in block", ok: true, src: `int main() { int a = 1; { double a = 2.0; printDouble(a); } return a; }`},
		{name: "block scope ends", kind: ir.UndeclaredVariable, src: `int main() { { int a = 1; } return a; }`},
		{name: "branch scope ends", kind: ir.UndeclaredVariable, src: `int main() { if (true) { int a = 1; } return a; }`},
		{name: "missing return", kind: ir.MissingReturn, src: `int main() { boolean c = true; if (c) return 1; }`},
		{name: "if-else returns", ok: true, src: `int main() { boolean c = true; if (c) return 1; else return 0; }`},
		{name: "if-else blocks return", ok: true, src: `int main() { boolean c = true; if (c) { return 1; } else { { return 0; } } }`},
		{name: "if-else one block returns", kind: ir.MissingReturn, src: `int main() { if (true) { return 1; } else { printInt(0); } }`},
		{name: "void without return", ok: true, src: `void f() { printInt(1); } int main() { f(); return 0; }`},
		{name: "void returns value", kind: ir.ReturnTypeMismatch, src: `void f() { return 1; } int main() { return 0; }`},
		{name: "int returns void", kind: ir.ReturnTypeMismatch, src: `int main() { return; }`},
		{name: "wrong return type", kind: ir.ReturnTypeMismatch, src: `int main() { return 1.0; }`},
		{name: "initializer", kind: ir.InitializerTypeMismatch, src: `int main() { int x = true; return 0; }`},
		{name: "initializer self", kind: ir.UndeclaredVariable, src: `int main() { int x = x; return 0; }`},
		{name: "assignment", kind: ir.AssignmentTypeMismatch, src: `int main() { int x; x = 2.0; return 0; }`},
		{name: "array assignment", kind: ir.AssignmentTypeMismatch, src: `int main() { int[] a = new int[2]; a[0] = false; return 0; }`},
		{name: "array element kinds", kind: ir.AssignmentTypeMismatch, src: `int main() { int[] a; a = new double[2]; return 0; }`},
		{name: "increment double", kind: ir.NotAnInteger, src: `int main() { double d; d++; return 0; }`},
		{name: "condition", kind: ir.ConditionNotBoolean, src: `int main() { while (1) { } return 0; }`},
		{name: "expression statement", kind: ir.ExpressionMustBeVoid, src: `int main() { 1 + 2; return 0; }`},
		{name: "call statement", kind: ir.ExpressionMustBeVoid, src: `int main() { readInt(); return 0; }`},
		{name: "arity", kind: ir.ArityError, src: `int main() { printInt(1, 2); return 0; }`},
		{name: "argument", kind: ir.ArgumentTypeError, src: `int main() { printInt(1.0); return 0; }`},
		{name: "undeclared function", kind: ir.UndeclaredFunction, src: `int main() { foo(); return 0; }`},
		{name: "void variable", kind: ir.VoidVariable, src: `int main() { void v; return 0; }`},
		{name: "for each", ok: true, src: `int main() { int[][] m = new int[2][3]; for (int[] r : m) for (int x : r) printInt(x); return 0; }`},
		{name: "for each element", kind: ir.LoopVariableTypeMismatch, src: `int main() { int[][] m = new int[2][3]; for (int x : m) printInt(x); return 0; }`},
		{name: "for each non array", kind: ir.NotAnArray, src: `int main() { int n = 3; for (int x : n) printInt(x); return 0; }`},
		{name: "for each scope", kind: ir.UndeclaredVariable, src: `int main() { int[] a = new int[1]; for (int x : a) { } return x; }`},
		{name: "length", ok: true, src: `int main() { int[] a = new int[4]; return a.length + new int[2][3].length; }`},
		{name: "length of int", kind: ir.NotAnArray, src: `int main() { int a; return a.length; }`},
		{name: "unknown member", kind: ir.UnknownMember, src: `int main() { int[] a; return a.size; }`},
		{name: "index depth", kind: ir.InvalidIndexDepth, src: `int main() { int[][] a; return a[0][0][0]; }`},
		{name: "index type", kind: ir.OnlyIntegerIndicesAllowed, src: `int main() { int[] a; return a[true]; }`},
		{name: "index non array", kind: ir.IndexingOfNonArrayType, src: `int main() { return (1 + 2)[0]; }`},
		{name: "array parameter", ok: true, src: `
int sum(int[] a) { int s = 0; for (int x : a) s = s + x; return s; }
int[] mk(int n) { return new int[n]; }
int main() { return sum(mk(3)) + mk(2)[1]; }`},
		{name: "string literal", ok: true, src: `int main() { printString("hello"); return 0; }`},
		{name: "equality of booleans", ok: true, src: `int main() { boolean b = true == false; if (b != true) return 1; return 0; }`},
		{name: "ordering of booleans", kind: ir.InvalidOperandType, src: `int main() { boolean b = true < false; return 0; }`},
		{name: "modulo of doubles", kind: ir.InvalidOperandType, src: `int main() { double d = 1.0 % 2.0; return 0; }`},
		{name: "mixed arithmetic", kind: ir.IncompatibleOperandTypes, src: `int main() { double d = 1 + 2.0; return 0; }`},
	}
	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			_, err := check(t, e1.src)
			if e1.ok {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s", e1.kind)
			}
			k, ok := ir.KindOf(err)
			if !ok || k != e1.kind {
				t.Fatalf("expected %s, got %q", e1.kind, err)
			}
		})
	}
}

// TestTypeCheckAnnotates tests that after checking every expression of the minimal program carries its type and
// that errors carry their source position.
func TestTypeCheckAnnotates(t *testing.T) {
	prog, err := check(t, `int main() { int x; x = 1 + 2; return x; }`)
	if err != nil {
		t.Fatal(err)
	}
	body := prog.Funcs[0].Body.Stmts
	if d := body[0].(*ir.Decl); d.Typ != ir.Int {
		t.Errorf("expected x to be int, got %s", d.Typ)
	}
	as := body[1].(*ir.Assign)
	if ir.TypeOf(as.Target) != ir.Int || ir.TypeOf(as.Value) != ir.Int {
		t.Error("assignment not annotated with int")
	}
	sum := as.Value.(*ir.Typed).X.(*ir.Binary)
	if ir.TypeOf(sum.X) != ir.Int || ir.TypeOf(sum.Y) != ir.Int {
		t.Error("operands not annotated")
	}
	if ir.TypeOf(body[2].(*ir.Return).Value) != ir.Int {
		t.Error("return value not annotated")
	}
	if !strings.Contains(prog.String(), "IDENTIFIER x : int") {
		t.Errorf("expected typed identifier in tree dump:\n%s", prog)
	}

	_, err = check(t, "int main() {\n  return y;\n}")
	if err == nil || !strings.Contains(err.Error(), "line 2:10") {
		t.Errorf("expected error at line 2:10, got %v", err)
	}
}

// TestOptimise tests constant folding on a checked tree.
func TestOptimise(t *testing.T) {
	prog, err := check(t, `
int main() {
  int x = 2 * 3 + 4;
  double d = -(1.5 + 0.5);
  boolean b = 1 < 2 && !false;
  int z = 1 / 0;
  return x;
}`)
	if err != nil {
		t.Fatal(err)
	}
	ir.Optimise(util.Options{Threads: 1}, prog)
	init := func(i int) ir.Expr {
		return prog.Funcs[0].Body.Stmts[i].(*ir.Decl).Items[0].Init.(*ir.Typed).X
	}
	if l, ok := init(0).(*ir.IntLit); !ok || l.Val != 10 {
		t.Errorf("expected 10, got %#v", init(0))
	}
	if l, ok := init(1).(*ir.DoubleLit); !ok || l.Val != -2.0 {
		t.Errorf("expected -2.0, got %#v", init(1))
	}
	if l, ok := init(2).(*ir.BoolLit); !ok || !l.Val {
		t.Errorf("expected true, got %#v", init(2))
	}
	if _, ok := init(3).(*ir.Binary); !ok {
		t.Errorf("division by zero must not be folded, got %#v", init(3))
	}
}

// TestOptimiseParallel tests that folding functions in parallel gives the same tree as folding sequentially.
func TestOptimiseParallel(t *testing.T) {
	src := `
int a() { return 1 + 1; }
int b() { return 2 + 2; }
int c() { return 3 + 3; }
int main() { return a() + b() + c(); }`
	seq, _ := check(t, src)
	par, _ := check(t, src)
	ir.Optimise(util.Options{Threads: 1}, seq)
	ir.Optimise(util.Options{Threads: 3}, par)
	if seq.String() != par.String() {
		t.Errorf("parallel result differs:\n%s\n%s", seq, par)
	}
}
