package lir

import (
	"strings"
	"testing"

	"jlc/src/backend/regfile"
	"jlc/src/frontend"
	"jlc/src/ir"
	"jlc/src/ir/lir"
	"jlc/src/ir/lir/types"
	"jlc/src/util"
)

// lower parses, type checks and lowers src.
func lower(t *testing.T, src string) *lir.Module {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %s", err)
	}
	if err = ir.TypeCheck(prog); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	m, err := lir.GenLIR(util.Options{Threads: 1}, prog)
	if err != nil {
		t.Fatalf("unexpected LIR error: %s", err)
	}
	return m
}

// verify checks that every value of f has a location and that values sharing a register never live at the
// same time.
func verify(t *testing.T, f *lir.Function) {
	t.Helper()
	iv := lir.BuildIntervals(f)
	vals := make([]*lir.Instruction, 0, 32)
	for _, e1 := range f.Instructions() {
		if !e1.HasValue() {
			continue
		}
		if !e1.Loc.Assigned() {
			t.Errorf("%s: value %s has no location", f.Name(), e1.Name())
		}
		vals = append(vals, e1)
	}
	for i1, a := range vals {
		for _, b := range vals[i1+1:] {
			if a.Loc.Reg < 0 || a.Loc.Reg != b.Loc.Reg || class(a) != class(b) {
				continue
			}
			if iv.Of(a.Id()).Intersects(iv.Of(b.Id())) {
				t.Errorf("%s: %s and %s share %s while both live", f.Name(), a.Name(), b.Name(), a.Loc)
			}
		}
	}
}

const program = `
double scale(double x, int n) {
  double r = 1.0;
  while (n > 0) { r = r * x; n--; }
  return r;
}
int sum(int[] a) {
  int s = 0;
  for (int x : a) s = s + x;
  return s;
}
int main() {
  int[] a = new int[4];
  a[0] = 1;
  a[1] = 2;
  printDouble(scale(2.0, 3));
  if (sum(a) > 2 && a.length == 4) printInt(sum(a));
  return 0;
}`

func TestAllocateRegisters(t *testing.T) {
	for _, e1 := range []struct {
		arch   int
		prefix string
	}{{util.Aarch64, "d"}, {util.Riscv64, "f"}} {
		m := lower(t, program)
		stats, err := AllocateRegisters(util.Options{Threads: 1, TargetArch: e1.arch}, m)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(stats) != 3 {
			t.Fatalf("expected stats of 3 functions, got %d", len(stats))
		}
		for i1, e2 := range m.Functions() {
			if stats[i1].Function != e2.Name() {
				t.Errorf("stats %d: expected %s, got %s", i1, e2.Name(), stats[i1].Function)
			}
			if stats[i1].Spilled != 0 {
				t.Errorf("%s: unexpected spills", e2.Name())
			}
			verify(t, e2)
		}

		// Doubles live in floating point registers.
		for _, e2 := range m.GetFunction("scale").Instructions() {
			if e2.HasValue() && e2.Typ == types.Double && !strings.HasPrefix(e2.Loc.Name, e1.prefix) {
				t.Errorf("double %s allocated to %s", e2.Name(), e2.Loc)
			}
		}
	}
}

func TestCoalesce(t *testing.T) {
	m := lower(t, `int id(int x) { return x; } int main() { return id(1); }`)
	stats, err := AllocateRegisters(util.Options{Threads: 1, TargetArch: util.Aarch64}, m)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stats[1].Coalesced != 1 {
		t.Errorf("expected 1 coalesced copy in main, got %d", stats[1].Coalesced)
	}
	f := m.GetFunction("main")
	for _, e1 := range f.Instructions() {
		if e1.Op != types.Copy {
			continue
		}
		if src := f.Instr(e1.Args[0]); src.Loc != e1.Loc {
			t.Errorf("copy %s in %s, source in %s", e1.Name(), e1.Loc, src.Loc)
		}
	}
	if !strings.Contains(f.String(), "; x8") {
		t.Errorf("expected register names in LIR dump:\n%s", f.String())
	}
}

func TestSpill(t *testing.T) {
	for _, e1 := range []int{util.Aarch64, util.Riscv64} {
		m := lir.CreateModule("spill")
		f := m.CreateFunction("f", types.Int, nil)
		b := f.CreateBlock(util.LabelEntry)

		// More values are live at once than there are integer temporaries.
		cs := make([]*lir.Instruction, 30)
		for i1 := range cs {
			cs[i1] = b.CreateConstantInt(int64(i1))
		}
		s := b.CreateArithmetic(types.Add, cs[0], cs[1])
		for _, e2 := range cs[2:] {
			s = b.CreateArithmetic(types.Add, s, e2)
		}
		b.CreateReturn(s)

		stats, err := AllocateRegisters(util.Options{Threads: 1, TargetArch: e1}, m)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if stats[0].Spilled == 0 {
			t.Errorf("arch %d: expected spills", e1)
		}
		spills := make(map[int]bool)
		for _, e2 := range f.Instructions() {
			if e2.HasValue() && e2.Loc.Reg < 0 {
				if spills[e2.Loc.Spill] {
					t.Errorf("arch %d: spill slot %d reused", e1, e2.Loc.Spill)
				}
				spills[e2.Loc.Spill] = true
			}
		}
		if len(spills) != stats[0].Spilled {
			t.Errorf("arch %d: expected %d spill slots, got %d", e1, stats[0].Spilled, len(spills))
		}
		verify(t, f)
	}
}

func TestAllocateParallel(t *testing.T) {
	m := lower(t, program)
	stats, err := AllocateRegisters(util.Options{Threads: 2, TargetArch: util.Riscv64}, m)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"scale", "sum", "main"}
	for i1, e1 := range want {
		if stats[i1].Function != e1 || stats[i1].Values == 0 {
			t.Errorf("stats %d: expected non-empty %s, got %+v", i1, e1, stats[i1])
		}
	}
	for _, e1 := range m.Functions() {
		verify(t, e1)
	}

	if _, err = AllocateRegisters(util.Options{Threads: 1, TargetArch: util.UnknownArch}, m); err == nil {
		t.Errorf("expected error for unknown architecture")
	}
}

func TestClass(t *testing.T) {
	if class(&lir.Instruction{Typ: types.Double}) != regfile.Float {
		t.Errorf("expected doubles in float registers")
	}
	for _, e1 := range []types.DataType{types.Int, types.Bool, types.Pointer} {
		if class(&lir.Instruction{Typ: e1}) != regfile.Integer {
			t.Errorf("expected %s in integer registers", e1)
		}
	}
}
