package lir

import (
	"fmt"
)

// ---------------------
// ----- Functions -----
// ---------------------

// buildCFG removes dead code from Function f and links its basic blocks. Instructions following the first
// terminator of a block are removed, then blocks that cannot be reached from the entry block are removed. Finally
// the predecessor and successor lists of the remaining blocks are built. Removed instructions stay in the arena
// but no longer belong to a block.
//
// buildCFG panics if a reachable block has no terminator.
func buildCFG(f *Function) {
	// Strip instructions after the first terminator.
	for _, e1 := range f.blocks {
		for i2, e2 := range e1.instrs {
			if e2.IsTerminator() {
				for _, e3 := range e1.instrs[i2+1:] {
					e3.b = nil
				}
				e1.instrs = e1.instrs[:i2+1]
				break
			}
		}
	}

	// Mark blocks reachable from the entry block.
	reached := make(map[*Block]bool, len(f.blocks))
	work := []*Block{f.Entry()}
	reached[f.Entry()] = true
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		t := b.Terminator()
		if t == nil {
			panic(fmt.Sprintf("function %s: block %s is not terminated", f.name, b.name))
		}
		for _, e1 := range targets(t) {
			if !reached[e1] {
				reached[e1] = true
				work = append(work, e1)
			}
		}
	}

	// Drop unreachable and empty blocks.
	blocks := f.blocks[:0]
	for _, e1 := range f.blocks {
		if reached[e1] && len(e1.instrs) > 0 {
			blocks = append(blocks, e1)
			continue
		}
		for _, e2 := range e1.instrs {
			e2.b = nil
		}
		e1.instrs = nil
	}
	for i1 := len(blocks); i1 < len(f.blocks); i1++ {
		f.blocks[i1] = nil
	}
	f.blocks = blocks

	// Link blocks.
	for _, e1 := range f.blocks {
		e1.preds = nil
		e1.succs = nil
	}
	for _, e1 := range f.blocks {
		for _, e2 := range targets(e1.Terminator()) {
			e1.succs = append(e1.succs, e2)
			e2.preds = append(e2.preds, e1)
		}
	}
	f.order = nil
}

// targets returns the distinct branch targets of terminator t.
func targets(t *Instruction) []*Block {
	switch {
	case t.Then == nil:
		return nil
	case t.Else == nil || t.Else == t.Then:
		return []*Block{t.Then}
	default:
		return []*Block{t.Then, t.Else}
	}
}
