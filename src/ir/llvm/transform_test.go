//go:build llvm
// +build llvm

package llvm

import (
	"strings"
	"testing"

	"jlc/src/frontend"
	"jlc/src/ir"
	"jlc/src/util"
)

const program = `
int fac(int n) {
  int r = 1;
  while (n > 1) { r = r * n; n--; }
  return r;
}
double avg(double[] xs) {
  double s = 0.0;
  for (double x : xs) s = s + x;
  return s / 2.0;
}
int main() {
  double[] xs = new double[2];
  xs[0] = 1.0;
  xs[1] = 3.0;
  if (fac(3) == 6 && xs.length == 2) printDouble(avg(xs));
  else printString("bad");
  return 0;
}`

func TestGenLLVM(t *testing.T) {
	prog, err := frontend.Parse(program)
	if err != nil {
		t.Fatalf("unexpected syntax error: %s", err)
	}
	if err = ir.TypeCheck(prog); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	for _, e1 := range []struct {
		arch   int
		triple string
	}{{util.Aarch64, "aarch64-unknown-linux-gnu"}, {util.Riscv64, "riscv64-unknown-linux-gnu"}} {
		out, err := GenLLVM(util.Options{Src: "prog.jl", TargetArch: e1.arch}, prog)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		for _, e2 := range []string{
			e1.triple,
			"define i64 @fac(i64 %n)",
			"define double @avg(i8* %xs)",
			"declare void @printDouble(double)",
			"call i8* @jlcNewArray(",
			"call i64 @jlcLength(",
			"phi i1",
			"fdiv double",
		} {
			if !strings.Contains(out, e2) {
				t.Errorf("expected %q in LLVM IR:\n%s", e2, out)
			}
		}
	}

	if _, err = GenLLVM(util.Options{TargetArch: util.UnknownArch}, prog); err == nil {
		t.Errorf("expected error for unknown architecture")
	}
}
