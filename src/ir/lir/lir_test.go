package lir

import (
	"strings"
	"testing"

	"jlc/src/frontend"
	"jlc/src/ir"
	"jlc/src/ir/lir/types"
	"jlc/src/util"
)

// lower parses, type checks and lowers src.
func lower(t *testing.T, opt util.Options, src string) *Module {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("unexpected syntax error: %s", err)
	}
	if err = ir.TypeCheck(prog); err != nil {
		t.Fatalf("unexpected type error: %s", err)
	}
	m, err := GenLIR(opt, prog)
	if err != nil {
		t.Fatalf("unexpected LIR error: %s", err)
	}
	return m
}

// expectPanic fails the test if fn returns normally.
func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

// find returns the first instruction of type op in f.
func find(t *testing.T, f *Function, op types.InstructionType) *Instruction {
	t.Helper()
	for _, e1 := range f.Instructions() {
		if e1.Op == op {
			return e1
		}
	}
	t.Fatalf("function %s has no %s instruction", f.Name(), op)
	return nil
}

func TestRangeSet(t *testing.T) {
	tests := []struct {
		name string
		in   []Range
		out  string
	}{
		{name: "overlap", in: []Range{{1, 3}, {2, 5}}, out: "[1,5)"},
		{name: "overlap reversed", in: []Range{{2, 5}, {1, 3}}, out: "[1,5)"},
		{name: "disjoint", in: []Range{{1, 2}, {5, 6}}, out: "[1,2) [5,6)"},
		{name: "disjoint reversed", in: []Range{{5, 6}, {1, 2}}, out: "[1,2) [5,6)"},
		{name: "touching", in: []Range{{1, 3}, {3, 4}}, out: "[1,4)"},
		{name: "bridge", in: []Range{{1, 2}, {5, 6}, {8, 9}, {2, 5}}, out: "[1,6) [8,9)"},
		{name: "swallow", in: []Range{{2, 3}, {4, 5}, {0, 10}}, out: "[0,10)"},
		{name: "inside", in: []Range{{0, 10}, {4, 5}}, out: "[0,10)"},
		{name: "empty", in: []Range{{3, 3}, {4, 2}}, out: ""},
	}
	for _, e1 := range tests {
		rs := RangeSet{}
		for _, e2 := range e1.in {
			rs.Add(e2)
		}
		if got := rs.String(); got != e1.out {
			t.Errorf("%s: expected %q, got %q", e1.name, e1.out, got)
		}
	}

	rs := RangeSet{}
	rs.Add(Range{1, 3})
	rs.Add(Range{6, 8})
	for _, e1 := range []struct {
		i  int
		in bool
	}{{0, false}, {1, true}, {2, true}, {3, false}, {5, false}, {6, true}, {7, true}, {8, false}} {
		if rs.Covers(e1.i) != e1.in {
			t.Errorf("Covers(%d): expected %t", e1.i, e1.in)
		}
	}
	if rs.Start() != 1 || rs.End() != 8 || rs.Len() != 2 {
		t.Errorf("unexpected bounds of %s", rs.String())
	}

	a, b, c := RangeSet{}, RangeSet{}, RangeSet{}
	a.Add(Range{1, 3})
	b.Add(Range{3, 5})
	c.Add(Range{0, 2})
	if a.Intersects(&b) || b.Intersects(&a) {
		t.Errorf("touching ranges must not intersect")
	}
	if !a.Intersects(&c) || !c.Intersects(&a) {
		t.Errorf("overlapping ranges must intersect")
	}
	a.Union(&b)
	if a.String() != "[1,5)" {
		t.Errorf("expected union [1,5), got %s", a.String())
	}
}

func TestJoin(t *testing.T) {
	iv := newIntervals(nil)
	iv.add(1, Range{0, 2})
	iv.add(2, Range{2, 4})
	iv.add(3, Range{3, 6})
	iv.add(4, Range{7, 8})

	if !iv.Join(1, 2, nil) {
		t.Fatalf("expected disjoint values 1 and 2 to join")
	}
	if iv.Find(2) != 1 || iv.Of(2).String() != "[0,4)" {
		t.Errorf("expected 2 to alias 1 with [0,4), got %d with %s", iv.Find(2), iv.Of(2))
	}
	if iv.Join(2, 3, nil) {
		t.Errorf("expected intersecting values 2 and 3 not to join")
	}
	if iv.Join(3, 4, func(a, b int) bool { return false }) {
		t.Errorf("expected incompatible values not to join")
	}
	if !iv.Join(4, 2, nil) {
		t.Fatalf("expected values 4 and 2 to join")
	}
	if iv.Find(1) != 4 || iv.Find(2) != 4 {
		t.Errorf("expected representative 4, got %d and %d", iv.Find(1), iv.Find(2))
	}
	if got := iv.Of(1).String(); got != "[0,4) [7,8)" {
		t.Errorf("unexpected joined ranges %s", got)
	}
	if !iv.Join(1, 2, nil) {
		t.Errorf("joined values must report as joined")
	}
	if vs := iv.Values(); len(vs) != 2 || vs[0] != 4 || vs[1] != 3 {
		t.Errorf("unexpected representatives %v", vs)
	}
}

func TestNumber(t *testing.T) {
	m := CreateModule("")
	f := m.CreateFunction("loop", types.Void, nil)
	entry := f.CreateBlock(util.LabelEntry)
	head := f.CreateBlock(util.LabelWhileHead)
	end := f.CreateBlock(util.LabelWhileEnd)
	body := f.CreateBlock(util.LabelWhileBody)

	slot := f.CreateSlot("i", types.Int)
	entry.CreateStore(slot, entry.CreateConstantInt(0))
	entry.CreateBranch(head)
	c := head.CreateCompare(types.LessThan, head.CreateLoad(slot), head.CreateConstantInt(10))
	head.CreateConditionalBranch(c, body, end)
	body.CreateStore(slot, body.CreateArithmetic(types.Add, body.CreateLoad(slot), body.CreateConstantInt(1)))
	body.CreateBranch(head)
	end.CreateReturn(nil)
	buildCFG(f)
	Number(f)

	order := f.Order()
	names := make([]string, len(order))
	for i1, e1 := range order {
		names[i1] = e1.Name()
	}
	if got := strings.Join(names, " "); got != "entry while.head.0 while.end.0 while.body.0" {
		t.Errorf("unexpected numbering order %q", got)
	}

	// Indices are dense and strictly increasing within each block.
	seen := make(map[int]bool)
	for _, e1 := range f.Blocks() {
		prev := -1
		for _, e2 := range e1.Instructions() {
			if e2.Index <= prev {
				t.Errorf("block %s: index %d follows %d", e1.Name(), e2.Index, prev)
			}
			if seen[e2.Index] {
				t.Errorf("duplicate index %d", e2.Index)
			}
			seen[e2.Index] = true
			prev = e2.Index
		}
	}
	for i1 := 0; i1 < len(seen); i1++ {
		if !seen[i1] {
			t.Errorf("index %d missing", i1)
		}
	}
	if len(head.Preds()) != 2 || len(head.Succs()) != 2 || len(end.Succs()) != 0 {
		t.Errorf("unexpected CFG edges of %s", head.Name())
	}
}

func TestBuildCFG(t *testing.T) {
	m := CreateModule("")
	f := m.CreateFunction("f", types.Int, nil)
	entry := f.CreateBlock(util.LabelEntry)
	dead := f.CreateBlock(util.LabelIf)
	entry.CreateReturn(entry.CreateConstantInt(1))
	entry.CreateUnreachable()
	c := entry.CreateConstantInt(2)
	entry.CreateBranch(dead)
	dead.CreateReturn(c)
	buildCFG(f)

	if len(f.Blocks()) != 1 {
		t.Fatalf("expected unreachable block to be dropped, got %d blocks", len(f.Blocks()))
	}
	if n := len(entry.Instructions()); n != 2 {
		t.Errorf("expected 2 instructions after stripping, got %d", n)
	}
	if entry.Terminator().Op != types.Return {
		t.Errorf("expected entry to end in ret, got %s", entry.Terminator().Op)
	}
	if c.Block() != nil {
		t.Errorf("expected stripped instruction to be detached")
	}

	g := m.CreateFunction("g", types.Void, nil)
	g.CreateBlock(util.LabelEntry).CreateConstantInt(0)
	expectPanic(t, "unterminated block", func() { buildCFG(g) })
}

func TestBuilderPanics(t *testing.T) {
	m := CreateModule("")
	f := m.CreateFunction("f", types.Int, []types.DataType{types.Double})
	b := f.CreateBlock(util.LabelEntry)
	i := b.CreateConstantInt(1)
	d := b.CreateConstantDouble(1)
	st := b.CreateStore(f.CreateSlot("x", types.Int), i)

	g := m.CreateFunction("g", types.Void, nil)
	other := g.CreateBlock(util.LabelEntry).CreateConstantInt(2)

	expectPanic(t, "mixed arithmetic", func() { b.CreateArithmetic(types.Add, i, d) })
	expectPanic(t, "store as operand", func() { b.CreateNeg(st) })
	expectPanic(t, "nil operand", func() { b.CreateCopy(nil) })
	expectPanic(t, "foreign operand", func() { b.CreateCopy(other) })
	expectPanic(t, "store type", func() { b.CreateStore(0, d) })
	expectPanic(t, "undefined slot", func() { b.CreateLoad(4) })
	expectPanic(t, "parameter", func() { b.CreateParam(1) })
	expectPanic(t, "return type", func() { b.CreateReturn(d) })
	expectPanic(t, "void return", func() { b.CreateReturn(nil) })
	expectPanic(t, "not int", func() { b.CreateNot(i) })
	expectPanic(t, "array size", func() { b.CreateNewArray(types.Int, 1, []*Instruction{d}) })
	expectPanic(t, "unary in binary", func() { b.CreateArithmetic(types.Neg, i, i) })
	expectPanic(t, "void slot", func() { f.CreateSlot("v", types.Void) })
}

func TestEndToEnd(t *testing.T) {
	m := lower(t, util.Options{Threads: 1}, `int main() { int x; x = 1 + 2; return x; }`)
	f := m.GetFunction("main")
	if f == nil {
		t.Fatalf("function main not found")
	}
	if len(f.Blocks()) != 1 || f.Entry().Name() != "entry" {
		t.Fatalf("expected a single entry block, got %d blocks", len(f.Blocks()))
	}
	ret := f.Entry().Terminator()
	if ret == nil || ret.Op != types.Return || len(ret.Args) != 1 {
		t.Fatalf("expected entry block to end in a value return, got %v", ret)
	}

	iv := BuildIntervals(f)
	ld := f.Instr(ret.Args[0])
	if ld.Op != types.Load || f.Slots()[ld.Slot].Name != "x" {
		t.Fatalf("expected ret to use a load of x, got %s", ld)
	}
	if got := iv.Of(ld.Id()).Ranges(); len(got) != 1 || got[0] != (Range{ld.Index, ret.Index + 1}) {
		t.Errorf("expected x to be live over [%d,%d), got %v", ld.Index, ret.Index+1, got)
	}

	// The sum lives from its definition to the store into x.
	add := find(t, f, types.Arithmetic)
	var store *Instruction
	for _, e1 := range f.Instructions() {
		if e1.Op == types.Store && e1.Args[0] == add.Id() {
			store = e1
		}
	}
	if store == nil {
		t.Fatalf("no store of %s", add.Name())
	}
	if got := iv.Of(add.Id()).Ranges(); len(got) != 1 || got[0] != (Range{add.Index, store.Index + 1}) {
		t.Errorf("expected sum to be live over [%d,%d), got %v", add.Index, store.Index+1, got)
	}
	if iv.Of(ret.Id()) != nil {
		t.Errorf("ret defines no value")
	}
}

func TestShortCircuit(t *testing.T) {
	m := lower(t, util.Options{Threads: 1}, `
boolean both(boolean a, boolean b) { return a && b; }
boolean either(boolean a, boolean b) { return a || b; }
int main() { return 0; }`)

	for _, e1 := range []struct {
		fn, rhs string
		then    bool
	}{{"both", "and.rhs.0", true}, {"either", "or.rhs.0", false}} {
		f := m.GetFunction(e1.fn)
		if n := len(f.Blocks()); n != 3 {
			t.Fatalf("%s: expected 3 blocks, got %d", e1.fn, n)
		}
		br := f.Entry().Terminator()
		if br.Op != types.CondBranch {
			t.Fatalf("%s: expected conditional branch, got %s", e1.fn, br.Op)
		}
		rhs := br.Else
		if e1.then {
			rhs = br.Then
		}
		if rhs.Name() != e1.rhs {
			t.Errorf("%s: expected right operand in %s, got %s", e1.fn, e1.rhs, rhs.Name())
		}
		end := f.Blocks()[2]
		if end.Name() != "short.end.0" || len(end.Preds()) != 2 {
			t.Errorf("%s: expected short.end.0 with 2 predecessors", e1.fn)
		}
		if end.Terminator().Op != types.Return {
			t.Errorf("%s: expected short.end.0 to return", e1.fn)
		}
	}
}

func TestControlFlow(t *testing.T) {
	m := lower(t, util.Options{Threads: 1}, `
int sign(int x) {
  if (x < 0) return -1;
  else if (x > 0) return 1;
  else return 0;
}
void count(int n) {
  int i = 0;
  while (i < n) { printInt(i); i++; }
}
int main() { count(sign(3)); return 0; }`)

	sign := m.GetFunction("sign")
	for _, e1 := range sign.Blocks() {
		if e1.Terminator() == nil {
			t.Errorf("sign: block %s is not terminated", e1.Name())
		}
		if strings.HasPrefix(e1.Name(), "if.end") {
			t.Errorf("sign: unreachable block %s survived", e1.Name())
		}
	}

	count := m.GetFunction("count")
	names := make([]string, 0, 4)
	for _, e1 := range count.Blocks() {
		names = append(names, e1.Name())
	}
	if got := strings.Join(names, " "); got != "entry while.head.0 while.body.0 while.end.0" {
		t.Errorf("count: unexpected blocks %q", got)
	}
	if end := count.Blocks()[3].Terminator(); end.Op != types.Return || len(end.Args) != 0 {
		t.Errorf("count: expected void return at the end")
	}

	// Arguments are staged through copies.
	main := m.GetFunction("main")
	for _, e1 := range main.Instructions() {
		if e1.Op != types.Call {
			continue
		}
		for _, e2 := range e1.Args {
			if main.Instr(e2).Op != types.Copy {
				t.Errorf("call %s: argument %s is not a copy", e1.Str, main.Instr(e2).Name())
			}
		}
	}
}

func TestForEachLiveness(t *testing.T) {
	m := lower(t, util.Options{Threads: 1}, `
int main() {
  int[] a = new int[3];
  int s = 0;
  for (int x : a) s = s + x;
  return s;
}`)
	f := m.GetFunction("main")
	arr := find(t, f, types.NewArray)
	l := find(t, f, types.ArrayLen)
	elem := find(t, f, types.LoadElem)
	cmp := find(t, f, types.Compare)

	seeds := LiveSeeds(f)
	if got := seeds[cmp.Block()]; len(got) != 1 || got[0] != l.Id() {
		t.Errorf("expected head seed {%s}, got %v", l.Name(), got)
	}
	if got := seeds[elem.Block()]; len(got) != 1 || got[0] != f.Instr(elem.Args[0]).Id() {
		t.Errorf("expected body seed {array}, got %v", got)
	}

	iv := BuildIntervals(f)
	if rs := iv.Of(l.Id()); !rs.Covers(cmp.Index) || !rs.Covers(elem.Index) {
		t.Errorf("length %s must be live across the loop, got %s", l.Name(), rs)
	}
	if rs := iv.Of(elem.Args[0]); !rs.Covers(elem.Index) || !rs.Covers(cmp.Index) {
		t.Errorf("array must be live across the loop, got %s", rs)
	}
	if iv.Of(arr.Id()) == nil || iv.Of(arr.Id()).Start() != arr.Index {
		t.Errorf("new array must be live from its definition")
	}
	if !strings.Contains(iv.String(), "intervals main:") {
		t.Errorf("unexpected interval dump %q", iv.String())
	}
}

func TestBuildIntervalsPanics(t *testing.T) {
	m := CreateModule("")
	f := m.CreateFunction("f", types.Int, nil)
	b := f.CreateBlock(util.LabelEntry)
	c := b.CreateConstantInt(1)
	b.CreateReturn(c)
	buildCFG(f)
	c.b = nil
	expectPanic(t, "missing definition", func() { BuildIntervals(f) })
}

func TestGenLIRParallel(t *testing.T) {
	src := `
int a() { return 1; }
int b() { return a() + 1; }
double c(double x) { return x * 2.0; }
void d() { printString("d"); }
boolean e(int x) { return x % 2 == 0; }
int main() { d(); return b(); }`
	m := lower(t, util.Options{Threads: 4, Src: "/tmp/prog.jl"}, src)
	want := []string{"a", "b", "c", "d", "e", "main"}
	fs := m.Functions()
	if len(fs) != len(want) {
		t.Fatalf("expected %d functions, got %d", len(want), len(fs))
	}
	for i1, e1 := range fs {
		if e1.Name() != want[i1] {
			t.Errorf("function %d: expected %s, got %s", i1, want[i1], e1.Name())
		}
	}
	if m.Name != "prog.jl" {
		t.Errorf("unexpected module name %q", m.Name)
	}
	if s := m.Strings(); len(s) != 1 || s[0] != "d" {
		t.Errorf("unexpected string table %v", s)
	}
	out := m.String()
	for _, e1 := range []string{"function c(double): double {", "call void printString(", "= cmp eq"} {
		if !strings.Contains(out, e1) {
			t.Errorf("expected %q in\n%s", e1, out)
		}
	}
}
