// This lexer is based on Rob Pike's talk on Go scanners.
// Link to the talk on YouTube: https://www.youtube.com/watch?v=HxaD_trXwRE
// Link to presentation slides: https://talks.golang.org/2011/lex.slide#1
//
// The lexer uses state functions stateFunc to define the lexer state. States allow the lexer to treat same runes
// differently. State transitions happen in the current state on the appearance of key runes. The lexer runs to
// completion on the calling goroutine and collects all items in a slice which the parser then consumes.

package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// stateFunc defines the state of the lexer.
type stateFunc func(*lexer) stateFunc

// itemType is used to differentiate different tokens scanned by the lexer. Single character tokens use the
// character itself as type.
type itemType int

// item contains a lexeme scanned by the lexer and its position in the source stream.
type item struct {
	typ  itemType // Token type to emit.
	val  string   // Value of token.
	line int      // Line of token in source stream.
	pos  int      // Start position on current line of token in source stream.
}

// lexer is a lexical type that traverse a source stream character by character and emits lexemes.
type lexer struct {
	input       string // The source stream of characters to scan for lexemes.
	start       int    // The starting position of the current token.
	pos         int    // The current position of the scanner in the source stream.
	width       int    // The width of the currently scanned rune/character in bytes.
	line        int    // The current line in the source stream. Not zero-indexed.
	startOnLine int    // The start position of the current token on the current line. Not zero-indexed.
	items       []item // Emitted items.
	err         error  // First lexical error.
}

// ---------------------
// ----- Constants -----
// ---------------------

const eof = 0 // Same as '\0' for null-terminated C strings.

const (
	itemEOF itemType = iota
	itemError
)

// Multi character tokens. Numbered above the single byte range so that they never clash with character tokens.
const (
	itemIdent itemType = iota + 256
	itemInt
	itemDouble
	itemString
	itemEq
	itemNe
	itemLe
	itemGe
	itemAnd
	itemOr
	itemInc
	itemDec
	kwInt
	kwDouble
	kwBoolean
	kwVoid
	kwTrue
	kwFalse
	kwIf
	kwElse
	kwWhile
	kwFor
	kwReturn
	kwNew
)

// -------------------
// ----- Globals -----
// -------------------

// tokNames provides print friendly names of multi character tokens.
var tokNames = map[itemType]string{
	itemEOF:    "EOF",
	itemError:  "ERROR",
	itemIdent:  "IDENTIFIER",
	itemInt:    "INTEGER",
	itemDouble: "DOUBLE",
	itemString: "STRING",
	itemEq:     "EQ",
	itemNe:     "NE",
	itemLe:     "LE",
	itemGe:     "GE",
	itemAnd:    "AND",
	itemOr:     "OR",
	itemInc:    "INC",
	itemDec:    "DEC",
	kwInt:      "INT",
	kwDouble:   "DOUBLE_TYPE",
	kwBoolean:  "BOOLEAN",
	kwVoid:     "VOID",
	kwTrue:     "TRUE",
	kwFalse:    "FALSE",
	kwIf:       "IF",
	kwElse:     "ELSE",
	kwWhile:    "WHILE",
	kwFor:      "FOR",
	kwReturn:   "RETURN",
	kwNew:      "NEW",
}

// --------------------------
// ----- Item functions -----
// --------------------------

// String returns a print friendly name of the token type.
func (t itemType) String() string {
	if s, ok := tokNames[t]; ok {
		return s
	}
	return fmt.Sprintf("'%c'", rune(t))
}

// String returns a print friendly string representation of the item.
func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return fmt.Sprintf("%s [ERROR]", i.val)
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q... (line %d:%d)", i.val, i.line, i.pos)
	}
	return fmt.Sprintf("%q (line %d:%d)", i.val, i.line, i.pos)
}

// ---------------------------
// ----- Lexer functions -----
// ---------------------------

// lex scans the whole source string and returns its items. The last item is always itemEOF unless an error is
// returned.
func lex(src string) ([]item, error) {
	l := &lexer{
		input:       src,
		line:        1,
		startOnLine: 1,
		items:       make([]item, 0, len(src)/3+1),
	}
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.items, nil
}

// emit appends an item of type typ holding the pending input.
func (l *lexer) emit(typ itemType) {
	l.emitVal(typ, l.input[l.start:l.pos])
}

// emitVal appends an item of type typ holding val, positioned at the start of the pending input.
func (l *lexer) emitVal(typ itemType, val string) {
	l.items = append(l.items, item{
		typ:  typ,
		val:  val,
		line: l.line,
		pos:  l.startOnLine,
	})
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// next returns the next rune in the input. The use of runes makes the lexer UTF-8 compatible.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// newline skips over the pending input and moves the position to the start of the next line.
func (l *lexer) newline() {
	l.start = l.pos
	l.line++
	l.startOnLine = 1
}

// backup steps back one rune. Should only be called once per call of next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// accept consumes the next rune if it's from the set of valid characters defined by the valid string.
func (l *lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a sequence of runes from the set of valid characters defined by the valid string.
func (l *lexer) acceptRun(valid string) {
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
}

// errorf records a lexical error and terminates the scan by returning a nil state.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = errors.Errorf("line %d:%d: %s", l.line, l.startOnLine, fmt.Sprintf(format, args...))
	return nil
}
