package util

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// TestStack verifies LIFO order, nil filtering and top-down indexing of Get.
func TestStack(t *testing.T) {
	var s Stack
	if s.Pop() != nil || s.Peek() != nil {
		t.Fatal("expected <nil> from empty stack")
	}
	s.Push(1)
	s.Push(nil)
	s.Push(2)
	s.Push(3)
	if s.Size() != 3 {
		t.Fatalf("expected size 3, got %d", s.Size())
	}
	if s.Get(1) != 3 || s.Get(3) != 1 || s.Get(0) != nil || s.Get(4) != nil {
		t.Errorf("unexpected Get results: %v %v %v %v", s.Get(1), s.Get(3), s.Get(0), s.Get(4))
	}
	for _, e1 := range []int{3, 2, 1} {
		if v := s.Pop(); v != e1 {
			t.Errorf("expected %d, got %v", e1, v)
		}
	}
	if s.Size() != 0 {
		t.Errorf("expected empty stack, got size %d", s.Size())
	}
}

// TestParseArgs tests flag parsing against expected Options.
func TestParseArgs(t *testing.T) {
	tests := []struct {
		args []string
		exp  Options
		err  bool
	}{
		{args: nil, exp: Options{Threads: 1, TargetArch: Aarch64}},
		{args: []string{"-vb", "-lir", "a.jl"}, exp: Options{Src: "a.jl", Threads: 1, TargetArch: Aarch64, Verbose: true, PrintLIR: true}},
		{args: []string{"-t", "4", "-arch", "riscv64", "-o", "out.txt"}, exp: Options{Out: "out.txt", Threads: 4, TargetArch: Riscv64}},
		{args: []string{"-O", "-live", "-tree", "-ts", "-ll"}, exp: Options{Threads: 1, TargetArch: Aarch64, Optimise: true, PrintLive: true, PrintTree: true, TokenStream: true, LLVM: true}},
		{args: []string{"-t", "0"}, err: true},
		{args: []string{"-t", "x"}, err: true},
		{args: []string{"-t"}, err: true},
		{args: []string{"-o", "-vb"}, err: true},
		{args: []string{"-arch", "mips"}, err: true},
		{args: []string{"-nope"}, err: true},
		{args: []string{"a.jl", "-vb"}, err: true},
	}
	for _, e1 := range tests {
		opt, err := parseArgs(e1.args)
		if e1.err {
			if err == nil {
				t.Errorf("%v: expected error", e1.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: unexpected error: %s", e1.args, err)
			continue
		}
		if opt != e1.exp {
			t.Errorf("%v: expected %+v, got %+v", e1.args, e1.exp, opt)
		}
	}
}

// TestWriter checks that chunks flushed from parallel writers are not interleaved.
func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)
	wg := sync.WaitGroup{}
	for i1 := 0; i1 < 8; i1++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := sink.NewWriter()
			for i2 := 0; i2 < 10; i2++ {
				w.Write("%d", id)
			}
			w.WriteString("\n")
			if err := w.Flush(); err != nil {
				t.Error(err)
			}
		}(i1)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}
	for _, e1 := range lines {
		if e1 != strings.Repeat(e1[:1], 10) {
			t.Errorf("interleaved output: %q", e1)
		}
	}
}

// TestReadSourceStdin tests reading source code from a reader when no path is given.
func TestReadSourceStdin(t *testing.T) {
	s, err := ReadSource(Options{}, strings.NewReader("int main() { return 0; }"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s, "int main") {
		t.Errorf("unexpected source %q", s)
	}
	if _, err = ReadSource(Options{}, strings.NewReader("")); err == nil {
		t.Error("expected error on empty stdin")
	}
	if _, err = ReadSource(Options{Src: "does/not/exist.jl"}, nil); err == nil {
		t.Error("expected error on missing file")
	}
}

// TestPerror tests concurrent error collection.
func TestPerror(t *testing.T) {
	pe := NewPerror(0)
	wg := sync.WaitGroup{}
	for i1 := 0; i1 < 10; i1++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				pe.Append(fmt.Errorf("error %d", n))
			} else {
				pe.Append(nil)
			}
		}(i1)
	}
	wg.Wait()
	if pe.Len() != 5 || pe.First() == nil {
		t.Errorf("expected 5 errors, got %d", pe.Len())
	}
	if NewPerror(2).First() != nil {
		t.Error("expected no first error from an empty collector")
	}
}

// TestLabels tests that labels are unique per kind and that the entry label is fixed.
func TestLabels(t *testing.T) {
	var l Labels
	if s := l.NewLabel(LabelEntry); s != "entry" {
		t.Errorf("expected entry, got %s", s)
	}
	a, b := l.NewLabel(LabelIf), l.NewLabel(LabelIf)
	if a == b || a != "if.then.0" || b != "if.then.1" {
		t.Errorf("unexpected labels %s %s", a, b)
	}
	var l2 Labels
	if s := l2.NewLabel(LabelIf); s != "if.then.0" {
		t.Errorf("expected independent counters, got %s", s)
	}
}
