// Package lir assigns physical registers or spill slots to the virtual registers of the lightweight intermediate
// representation (LIR).
package lir

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"jlc/src/backend"
	"jlc/src/backend/regfile"
	"jlc/src/ir/lir"
	"jlc/src/ir/lir/types"
	"jlc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Stats summarises the allocation of a single function.
type Stats struct {
	Function  string // Name of function.
	Values    int    // Number of virtual registers.
	Coalesced int    // Number of copies joined with their source.
	Spilled   int    // Number of intervals assigned a spill slot.
}

// active is an interval currently holding a physical register.
type active struct {
	v   int              // Representative value.
	end int              // End of the interval.
	reg regfile.Register // Assigned register.
}

// ---------------------
// ----- Functions -----
// ---------------------

// AllocateRegisters uses linear scan allocation to assign every virtual register of Module m a physical register of
// the target defined by opt, or a spill slot if no register is vacant. Copies are coalesced with their source when
// their intervals do not intersect. Functions are allocated in parallel when opt.Threads is larger than 1.
func AllocateRegisters(opt util.Options, m *lir.Module) ([]Stats, error) {
	if _, err := backend.CreateRegisterFile(opt); err != nil {
		return nil, err
	}
	fs := m.Functions()
	stats := make([]Stats, len(fs))
	if len(fs) == 0 {
		return stats, nil
	}

	if opt.Threads > 1 {
		// Parallel.
		t := opt.Threads
		l := len(fs)
		if t > l {
			t = l
		}
		n := l / t
		res := l % t

		start := 0
		end := n

		// Create error listener.
		perr := util.NewPerror(t)

		// Create wait group for main go routine to wait for worker go routines.
		wg := sync.WaitGroup{}
		wg.Add(t)

		// Spawn t worker go routines.
		for i1 := 0; i1 < t; i1++ {
			if i1 < res {
				end++
			}

			// Every function gets its very own register file.
			go func(start, end int) {
				defer wg.Done()
				for i2 := start; i2 < end; i2++ {
					rf, _ := backend.CreateRegisterFile(opt)
					s, err := allocateRegisterFunc(fs[i2], rf)
					if err != nil {
						perr.Append(err)
						continue
					}
					stats[i2] = s
				}
			}(start, end)

			start = end
			end += n
		}

		// Wait for worker go routines to finish register allocation.
		wg.Wait()

		// Check for errors from worker go routines.
		if perr.Len() > 0 {
			return nil, errors.Wrapf(perr.First(), "%d error(s) during parallel register allocation", perr.Len())
		}
	} else {
		// Sequential.
		for i1, e1 := range fs {
			rf, _ := backend.CreateRegisterFile(opt)
			s, err := allocateRegisterFunc(e1, rf)
			if err != nil {
				return nil, err
			}
			stats[i1] = s
		}
	}
	return stats, nil
}

// class returns the register class of the value defined by inst.
func class(inst *lir.Instruction) regfile.Class {
	if inst.Typ == types.Double {
		return regfile.Float
	}
	return regfile.Integer
}

// allocateRegisterFunc allocates physical registers to an lir.Function's virtual registers using the free
// registers of rf.
func allocateRegisterFunc(f *lir.Function, rf regfile.RegisterFile) (Stats, error) {
	s := Stats{Function: f.Name()}
	iv := lir.BuildIntervals(f)

	// Coalesce moves.
	compatible := func(a, b int) bool {
		return class(f.Instr(a)) == class(f.Instr(b))
	}
	for _, e1 := range f.Instructions() {
		if e1.HasValue() {
			s.Values++
		}
		if e1.Op == types.Copy && iv.Join(e1.Args[0], e1.Id(), compatible) {
			s.Coalesced++
		}
	}

	// Linear scan in order of interval start. act is sorted by increasing end.
	locs := make(map[int]lir.Loc, s.Values)
	act := make([]active, 0, rf.Ki()+rf.Kf())
	spill := func(v int) {
		locs[v] = lir.Loc{Reg: -1, Spill: s.Spilled}
		s.Spilled++
	}
	for _, e1 := range iv.Values() {
		rs := iv.Of(e1)
		start, end := rs.Start(), rs.End()

		// Expire old intervals.
		keep := act[:0]
		for _, e2 := range act {
			if e2.end <= start {
				regfile.Free(rf, e2.reg)
			} else {
				keep = append(keep, e2)
			}
		}
		act = keep

		c := class(f.Instr(e1))
		reg := regfile.Next(rf, c)
		if reg == nil {
			// Spill the interval of the same class that ends last.
			victim := -1
			for i2 := len(act) - 1; i2 >= 0; i2-- {
				if act[i2].reg.Class() == c {
					victim = i2
					break
				}
			}
			if victim < 0 || act[victim].end <= end {
				spill(e1)
				continue
			}
			reg = act[victim].reg
			spill(act[victim].v)
			act = append(act[:victim], act[victim+1:]...)
		}
		locs[e1] = lir.Loc{Reg: reg.Id(), Spill: -1, Name: reg.String()}
		act = append(act, active{v: e1, end: end, reg: reg})
		sort.SliceStable(act, func(i, j int) bool { return act[i].end < act[j].end })
	}

	// Every value takes the location of its representative.
	for _, e1 := range f.Instructions() {
		if !e1.HasValue() {
			continue
		}
		loc, ok := locs[iv.Find(e1.Id())]
		if !ok {
			return s, errors.Errorf("function %s: no interval for %s", f.Name(), e1.Name())
		}
		e1.Loc = loc
	}
	return s, nil
}
