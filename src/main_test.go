package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jlc/src/util"
)

// ----------------------
// ----- Constants ------
// ----------------------

// p defines the maximum number of parallel threads to pass to the compiler.
const p = 4

// program is a small but complete source file exercising every statement kind.
const program = `
// Greatest common divisor.
int gcd(int a, int b) {
  while (b != 0) {
    int t = b;
    b = a % b;
    a = t;
  }
  return a;
}

double mean(double[] xs) {
  double s = 0.0;
  for (double x : xs)
    s = s + x;
  return s / 3.0;
}

boolean positive(int x) {
  if (x > 0) return true;
  else return false;
}

void greet() {
  printString("hello");
}

int main() {
  int[][] grid = new int[2][3];
  grid[1][2] = gcd(12, 18);
  double[] xs = new double[3];
  xs[0] = 1.0; xs[1] = 2.0; xs[2] = 3.0;
  if (positive(grid[1][2]) || grid.length > 4) printInt(grid[1][2]);
  printDouble(mean(xs));
  greet();
  int i = 0;
  i++;
  return 0;
}
`

// ----------------------
// ----- Functions ------
// ----------------------

// helperWriteSource writes src to a temporary source file and returns its path.
func helperWriteSource(t testing.TB, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.jl")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunOK(t *testing.T) {
	for _, e1 := range []int{util.Aarch64, util.Riscv64} {
		for i2 := 1; i2 <= p; i2++ {
			opt := util.Options{Src: helperWriteSource(t, program), Threads: i2, TargetArch: e1, PrintLive: true}
			out, diag := strings.Builder{}, strings.Builder{}
			if err := run(opt, strings.NewReader(""), &out, &diag); err != nil {
				t.Fatalf("arch %d, threads %d: unexpected error: %s", e1, i2, err)
			}
			if diag.String() != "OK\n" {
				t.Errorf("expected OK, got %q", diag.String())
			}
			for _, e2 := range []string{"Module: prog.jl", "function gcd(", "function main(", "intervals main:",
				`str0 = "hello"`} {
				if !strings.Contains(out.String(), e2) {
					t.Errorf("expected %q in output:\n%s", e2, out.String())
				}
			}
			if strings.Contains(out.String(), "unassigned") {
				t.Errorf("expected every value to be allocated:\n%s", out.String())
			}
		}
	}
}

func TestRunStdin(t *testing.T) {
	opt := util.Options{Threads: 1, TargetArch: util.Aarch64, Optimise: true, PrintTree: true, PrintLIR: true}
	out, diag := strings.Builder{}, strings.Builder{}
	if err := run(opt, strings.NewReader(program), &out, &diag); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.HasPrefix(out.String(), "FUNCTION int gcd(int a, int b)") {
		t.Errorf("expected syntax tree first, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "function mean(") {
		t.Errorf("expected LIR after the syntax tree, got:\n%s", out.String())
	}
}

func TestRunTokenStream(t *testing.T) {
	opt := util.Options{Threads: 1, TargetArch: util.Aarch64, TokenStream: true}
	out, diag := strings.Builder{}, strings.Builder{}
	if err := run(opt, strings.NewReader("int main() { return 0; }"), &out, &diag); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(out.String(), "main") || strings.Contains(out.String(), "function") {
		t.Errorf("expected only tokens, got:\n%s", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "int main() { return 0 }", "syntax error"},
		{"type", "int main() { return true; }", "type error"},
		{"main", "int f() { return 0; }", "missing function main"},
		{"undeclared", "int main() { x = 1; return 0; }", "undeclared variable"},
		{"empty", "", "expected input from stdin"},
	}
	for _, e1 := range tests {
		t.Run(e1.name, func(t *testing.T) {
			out, diag := strings.Builder{}, strings.Builder{}
			err := run(util.Options{Threads: 1, TargetArch: util.Aarch64}, strings.NewReader(e1.src), &out, &diag)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(diag.String(), "ERROR\n") || !strings.Contains(diag.String(), e1.want) {
				t.Errorf("expected ERROR with %q, got %q", e1.want, diag.String())
			}
			if out.Len() != 0 {
				t.Errorf("expected no output on error, got:\n%s", out.String())
			}
		})
	}
}

func TestRunToFile(t *testing.T) {
	dir := t.TempDir()
	opt := util.Options{Src: helperWriteSource(t, program), Out: filepath.Join(dir, "prog.lir"), Threads: 2,
		TargetArch: util.Riscv64}
	diag := strings.Builder{}
	if err := runToFile(opt, nil, &diag); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	data, err := os.ReadFile(opt.Out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "function main(") || diag.String() != "OK\n" {
		t.Errorf("expected LIR in %s and OK, got %q:\n%s", opt.Out, diag.String(), data)
	}

	// The output file is written and closed even when compilation fails.
	opt.Src = helperWriteSource(t, "int main() { return true; }")
	diag.Reset()
	if err = runToFile(opt, nil, &diag); err == nil {
		t.Fatalf("expected type error")
	}
	if data, err = os.ReadFile(opt.Out); err != nil || len(data) != 0 {
		t.Errorf("expected empty output file after error, got %q (%v)", data, err)
	}
	if err = os.Remove(opt.Out); err != nil {
		t.Errorf("could not remove closed output file: %s", err)
	}

	opt.Out = filepath.Join(dir, "missing", "prog.lir")
	diag.Reset()
	if err = runToFile(opt, nil, &diag); err == nil || diag.Len() == 0 {
		t.Errorf("expected error for unwritable output path")
	}
}

// BenchmarkCompile benchmarks compiling the test program for both register files with increasing parallelism.
func BenchmarkCompile(b *testing.B) {
	src := helperWriteSource(b, program)
	for _, e1 := range []int{util.Aarch64, util.Riscv64} {
		for i2 := 1; i2 <= p; i2++ {
			opt := util.Options{Src: src, Threads: i2, TargetArch: e1}
			b.Run(fmt.Sprintf("arch=%d-threads=%d", e1, i2), func(b *testing.B) {
				for n := 0; n < b.N; n++ {
					out, diag := strings.Builder{}, strings.Builder{}
					if err := run(opt, nil, &out, &diag); err != nil {
						b.Fatalf("unexpected error: %s", err)
					}
				}
			})
		}
	}
}
