package lir

import (
	"fmt"
	"sort"

	"jlc/src/ir/lir/types"
)

// ---------------------
// ----- Functions -----
// ---------------------

// Number assigns every instruction of Function f a dense, increasing index starting at 0. Blocks are visited so
// that a block is numbered after all of its predecessors. If every remaining block has an unnumbered predecessor,
// which only happens on loop back edges, the first remaining block in layout order is numbered anyway.
func Number(f *Function) {
	done := make(map[*Block]bool, len(f.blocks))
	order := make([]*Block, 0, len(f.blocks))
	for len(order) < len(f.blocks) {
		var next *Block
		for _, e1 := range f.blocks {
			if done[e1] {
				continue
			}
			if next == nil {
				// Back edge fallback.
				next = e1
			}
			if allDone(e1.preds, done) {
				next = e1
				break
			}
		}
		done[next] = true
		order = append(order, next)
	}

	idx := 0
	for _, e1 := range order {
		for _, e2 := range e1.instrs {
			e2.Index = idx
			idx++
		}
	}
	f.order = order
}

// allDone returns true if every block of bs is marked in done.
func allDone(bs []*Block, done map[*Block]bool) bool {
	for _, e1 := range bs {
		if !done[e1] {
			return false
		}
	}
	return true
}

// LiveSeeds returns per block the values used in the block but not defined in it.
func LiveSeeds(f *Function) map[*Block][]int {
	res := make(map[*Block][]int, len(f.blocks))
	for _, e1 := range f.blocks {
		defs := make(map[int]bool, len(e1.instrs))
		seen := make(map[int]bool)
		seed := make([]int, 0, 4)
		for _, e2 := range e1.instrs {
			for _, e3 := range e2.Args {
				if !defs[e3] && !seen[e3] {
					seen[e3] = true
					seed = append(seed, e3)
				}
			}
			if e2.HasValue() {
				defs[e2.id] = true
			}
		}
		sort.Ints(seed)
		res[e1] = seed
	}
	return res
}

// liveIn propagates the live seeds of Function f backwards over the control flow graph until no set changes.
func liveIn(f *Function) map[*Block]map[int]bool {
	in := make(map[*Block]map[int]bool, len(f.blocks))
	defs := make(map[*Block]map[int]bool, len(f.blocks))
	for b, e1 := range LiveSeeds(f) {
		in[b] = make(map[int]bool, len(e1))
		for _, e2 := range e1 {
			in[b][e2] = true
		}
	}
	for _, e1 := range f.blocks {
		defs[e1] = make(map[int]bool, len(e1.instrs))
		for _, e2 := range e1.instrs {
			if e2.HasValue() {
				defs[e1][e2.id] = true
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for i1 := len(f.blocks) - 1; i1 >= 0; i1-- {
			b := f.blocks[i1]
			for _, e1 := range b.succs {
				for v := range in[e1] {
					if !defs[b][v] && !in[b][v] {
						in[b][v] = true
						changed = true
					}
				}
			}
		}
	}
	return in
}

// liveOut returns the union of the live in sets of the successors of Block b.
func liveOut(b *Block, in map[*Block]map[int]bool) map[int]bool {
	out := make(map[int]bool)
	for _, e1 := range b.succs {
		for v := range in[e1] {
			out[v] = true
		}
	}
	return out
}

// BuildIntervals numbers Function f and computes the live ranges of all of its values. A value live at the end of a
// block covers the block from its definition, or the block start, to the block end. A value used in a block covers
// it from its definition, or the block start, to its last use inclusive. A value whose last use in a block is a
// copy ends right before the copy. A value that is never used covers its defining instruction only.
//
// BuildIntervals panics if an operand has no definition or a block has no instructions.
func BuildIntervals(f *Function) *Intervals {
	Number(f)
	for _, e1 := range f.Instructions() {
		for _, e2 := range e1.Args {
			if e2 < 0 || e2 >= len(f.instrs) || f.instrs[e2].b == nil || !f.instrs[e2].HasValue() {
				panic(fmt.Sprintf("function %s: operand %s%d of instruction %s%d has no definition",
					f.name, labelValuePrefix, e2, labelValuePrefix, e1.id))
			}
		}
	}

	iv := newIntervals(f)
	in := liveIn(f)
	for _, e1 := range f.blocks {
		if len(e1.instrs) == 0 {
			panic(fmt.Sprintf("function %s: block %s has no instructions", f.name, e1.name))
		}
		start := e1.instrs[0].Index
		end := e1.instrs[len(e1.instrs)-1].Index + 1

		// from returns the first index of value v within the block.
		from := func(v int) int {
			if d := f.instrs[v]; d.b == e1 {
				return d.Index
			}
			return start
		}

		live := liveOut(e1, in)
		for v := range live {
			iv.add(v, Range{Start: from(v), End: end})
		}

		// Reverse scan.
		for i2 := len(e1.instrs) - 1; i2 >= 0; i2-- {
			inst := e1.instrs[i2]
			use := inst.Index + 1
			if inst.Op == types.Copy {
				// The source of a move dies at the move and does not interfere with its destination.
				use = inst.Index
			}
			for _, e3 := range inst.Args {
				if !live[e3] {
					live[e3] = true
					iv.add(e3, Range{Start: from(e3), End: use})
				}
			}
			if inst.HasValue() && !live[inst.id] {
				iv.add(inst.id, Range{Start: inst.Index, End: inst.Index + 1})
			}
		}
	}
	return iv
}
