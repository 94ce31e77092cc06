// label.go generates basic block labels for a single function. Every function being lowered owns its own Labels,
// so worker threads never share label counters.

package util

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Labels hands out unique block labels of a given kind.
type Labels struct {
	indices [LabelForEnd + 1]int
}

// ---------------------
// ----- Constants -----
// ---------------------

// Labels for control flow blocks.
const (
	LabelEntry = iota
	LabelWhileHead
	LabelWhileBody
	LabelWhileEnd
	LabelIf
	LabelIfElse
	LabelIfEnd
	LabelAndRight
	LabelOrRight
	LabelShortEnd
	LabelForHead
	LabelForBody
	LabelForEnd
)

// -------------------
// ----- globals -----
// -------------------

// labelPrefixes stores the string literal prefixes for labels of types.
var labelPrefixes = [LabelForEnd + 1]string{
	"entry",
	"while.head",
	"while.body",
	"while.end",
	"if.then",
	"if.else",
	"if.end",
	"and.rhs",
	"or.rhs",
	"short.end",
	"for.head",
	"for.body",
	"for.end",
}

// ---------------------
// ----- functions -----
// ---------------------

// NewLabel returns a new label of type typ. The entry label is never numbered.
func (l *Labels) NewLabel(typ int) string {
	if typ < 0 || typ >= len(l.indices) {
		panic(fmt.Sprintf("unexpected label type %d", typ))
	}
	if typ == LabelEntry {
		return labelPrefixes[typ]
	}
	s := fmt.Sprintf("%s.%d", labelPrefixes[typ], l.indices[typ])
	l.indices[typ]++
	return s
}
