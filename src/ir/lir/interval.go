package lir

import (
	"fmt"
	"sort"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Range is the half open interval [Start, End) of instruction indices.
type Range struct {
	Start int
	End   int
}

// RangeSet is an ordered set of disjoint ranges. Ranges never overlap or touch, adding a range merges it with every
// range it overlaps or touches. The zero value is an empty set.
type RangeSet struct {
	r []Range
}

// Intervals holds the live ranges of the values of a single function. Values are identified by the arena index of
// their defining instruction. Joined values share the range set of their representative.
type Intervals struct {
	f      *Function
	sets   map[int]*RangeSet // Range sets by representative value.
	parent map[int]int       // Join pointers. A value without entry is its own representative.
}

// ---------------------
// ----- Functions -----
// ---------------------

// String returns the textual representation of Range r.
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Add inserts Range r into the set. Empty ranges are ignored.
func (rs *RangeSet) Add(r Range) {
	if r.End <= r.Start {
		return
	}

	// First range that ends at or after r.Start may touch r.
	i := sort.Search(len(rs.r), func(i int) bool { return rs.r[i].End >= r.Start })
	j := i
	for j < len(rs.r) && rs.r[j].Start <= r.End {
		if rs.r[j].Start < r.Start {
			r.Start = rs.r[j].Start
		}
		if rs.r[j].End > r.End {
			r.End = rs.r[j].End
		}
		j++
	}

	// Replace rs.r[i:j] with r.
	if i == j {
		rs.r = append(rs.r, Range{})
		copy(rs.r[i+1:], rs.r[i:])
		rs.r[i] = r
		return
	}
	rs.r[i] = r
	rs.r = append(rs.r[:i+1], rs.r[j:]...)
}

// Intersects returns true if any range of rs overlaps any range of o.
func (rs *RangeSet) Intersects(o *RangeSet) bool {
	i, j := 0, 0
	for i < len(rs.r) && j < len(o.r) {
		a, b := rs.r[i], o.r[j]
		if a.Start < b.End && b.Start < a.End {
			return true
		}
		if a.End <= b.End {
			i++
		} else {
			j++
		}
	}
	return false
}

// Union adds all ranges of o to rs.
func (rs *RangeSet) Union(o *RangeSet) {
	for _, e1 := range o.r {
		rs.Add(e1)
	}
}

// Covers returns true if index i lies within a range of rs.
func (rs *RangeSet) Covers(i int) bool {
	k := sort.Search(len(rs.r), func(k int) bool { return rs.r[k].End > i })
	return k < len(rs.r) && rs.r[k].Start <= i
}

// Start returns the first index of the set, or -1 if the set is empty.
func (rs *RangeSet) Start() int {
	if len(rs.r) == 0 {
		return -1
	}
	return rs.r[0].Start
}

// End returns the end of the last range of the set, or -1 if the set is empty.
func (rs *RangeSet) End() int {
	if len(rs.r) == 0 {
		return -1
	}
	return rs.r[len(rs.r)-1].End
}

// Ranges returns a copy of the ranges in ascending order.
func (rs *RangeSet) Ranges() []Range {
	res := make([]Range, len(rs.r))
	copy(res, rs.r)
	return res
}

// Len returns the number of disjoint ranges in the set.
func (rs *RangeSet) Len() int {
	return len(rs.r)
}

// String returns the ranges of the set separated by spaces.
func (rs *RangeSet) String() string {
	s := make([]string, len(rs.r))
	for i1, e1 := range rs.r {
		s[i1] = e1.String()
	}
	return strings.Join(s, " ")
}

// newIntervals returns an empty interval table of Function f.
func newIntervals(f *Function) *Intervals {
	return &Intervals{
		f:      f,
		sets:   make(map[int]*RangeSet),
		parent: make(map[int]int),
	}
}

// Function returns the function the intervals were computed for.
func (iv *Intervals) Function() *Function {
	return iv.f
}

// add inserts Range r into the set of value v.
func (iv *Intervals) add(v int, r Range) {
	v = iv.Find(v)
	rs, ok := iv.sets[v]
	if !ok {
		rs = &RangeSet{}
		iv.sets[v] = rs
	}
	rs.Add(r)
}

// Find returns the representative of value v by following join pointers to a fixed point.
func (iv *Intervals) Find(v int) int {
	r := v
	for {
		p, ok := iv.parent[r]
		if !ok {
			break
		}
		r = p
	}

	// Compress the path.
	for v != r {
		p := iv.parent[v]
		iv.parent[v] = r
		v = p
	}
	return r
}

// Join coalesces values a and b if their range sets are disjoint and compatible accepts the pair of
// representatives. A <nil> compatible accepts every pair. The ranges of b's representative are added to a's
// representative, which becomes the representative of both. Join returns true if both values share a
// representative afterwards.
func (iv *Intervals) Join(a, b int, compatible func(a, b int) bool) bool {
	ra, rb := iv.Find(a), iv.Find(b)
	if ra == rb {
		return true
	}
	sa, sb := iv.sets[ra], iv.sets[rb]
	if sa != nil && sb != nil && sa.Intersects(sb) {
		return false
	}
	if compatible != nil && !compatible(ra, rb) {
		return false
	}
	if sb != nil {
		if sa == nil {
			sa = &RangeSet{}
			iv.sets[ra] = sa
		}
		sa.Union(sb)
		delete(iv.sets, rb)
	}
	iv.parent[rb] = ra
	return true
}

// Of returns the range set of value v's representative, or <nil> if v has no ranges.
func (iv *Intervals) Of(v int) *RangeSet {
	return iv.sets[iv.Find(v)]
}

// Values returns the representatives that own a range set, ordered by the start of their ranges.
func (iv *Intervals) Values() []int {
	res := make([]int, 0, len(iv.sets))
	for k := range iv.sets {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool {
		si, sj := iv.sets[res[i]].Start(), iv.sets[res[j]].Start()
		if si != sj {
			return si < sj
		}
		return res[i] < res[j]
	})
	return res
}

// String returns one line per representative with its ranges and joined values.
func (iv *Intervals) String() string {
	members := make(map[int][]int)
	for k := range iv.parent {
		r := iv.Find(k)
		members[r] = append(members[r], k)
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("intervals %s:\n", iv.f.name))
	for _, e1 := range iv.Values() {
		sb.WriteString(fmt.Sprintf("\t%s%d: %s", labelValuePrefix, e1, iv.sets[e1]))
		if m := members[e1]; len(m) > 0 {
			sort.Ints(m)
			sb.WriteString(" joined")
			for _, e2 := range m {
				sb.WriteString(fmt.Sprintf(" %s%d", labelValuePrefix, e2))
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
