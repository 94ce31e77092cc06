package frontend

// twoCharOps maps the first and second rune of two character operators to their token type.
var twoCharOps = map[[2]rune]itemType{
	{'=', '='}: itemEq,
	{'!', '='}: itemNe,
	{'<', '='}: itemLe,
	{'>', '='}: itemGe,
	{'&', '&'}: itemAnd,
	{'|', '|'}: itemOr,
	{'+', '+'}: itemInc,
	{'-', '-'}: itemDec,
}

// lexGlobal starts the lexing process and serves as the default state.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case isAlpha(r):
			// Keyword or identifier.
			return lexWord
		case isDigit(r):
			// Number.
			return lexNumber
		case r == '\n':
			l.newline()
		case isSpace(r):
			// Ignore whitespace. Newlines are caught before whitespaces.
			l.ignore()
		case r == '"':
			return lexString
		case r == '#' || (r == '/' && l.peek() == '/'):
			// Line comments, including preprocessor lines.
			return lexLineComment
		case r == '/' && l.peek() == '*':
			l.next()
			return lexBlockComment
		case r == eof:
			// End of file: stop the state machine.
			l.emit(itemEOF)
			return nil
		default:
			if typ, ok := twoCharOps[[2]rune{r, l.peek()}]; ok {
				l.next()
				l.emit(typ)
				continue
			}
			switch r {
			case '(', ')', '{', '}', '[', ']', ';', ',', '.', ':', '=', '<', '>', '!', '+', '-', '*', '/', '%':
				// Let parser use character as is.
				l.emit(itemType(r))
			default:
				return l.errorf("unexpected character %q", r)
			}
		}
	}
}

// lexWord scans the input string for keywords and identifiers.
func lexWord(l *lexer) stateFunc {
	// We know that the currently scanned rune is an alphabetic character.
	for {
		r := l.next()
		if !isAlpha(r) && !isDigit(r) && r != '_' {
			l.backup()
			if typ, kw := isKeyword(l.input[l.start:l.pos]); kw {
				l.emit(typ)
			} else {
				l.emit(itemIdent)
			}
			return lexGlobal
		}
	}
}

// lexNumber scans the input stream for an integer or a double literal. Doubles require digits on both sides of the
// decimal point and may carry an exponent.
func lexNumber(l *lexer) stateFunc {
	// The first digit is already consumed. Negative numbers are handled by the parser as unary negation.
	l.acceptRun(digits)
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(rune(l.input[l.pos+1])) {
		l.next()
		l.acceptRun(digits)
		if l.accept("eE") {
			l.accept("+-")
			if !isDigit(l.peek()) {
				return l.errorf("malformed exponent in %q", l.input[l.start:l.pos])
			}
			l.acceptRun(digits)
		}
		l.emit(itemDouble)
		return lexGlobal
	}
	if isAlpha(l.peek()) {
		return l.errorf("malformed number %q", l.input[l.start:l.pos+1])
	}
	l.emit(itemInt)
	return lexGlobal
}

// lexString scans a string literal from the input stream. The emitted value holds the raw characters between the
// quotes; escape sequences are resolved by the parser.
func lexString(l *lexer) stateFunc {
	escaped := false
	for {
		r := l.next()
		switch {
		case r == eof || r == '\n':
			return l.errorf("unclosed string literal")
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			l.emitVal(itemString, l.input[l.start+1:l.pos-1])
			return lexGlobal
		}
	}
}

// lexLineComment skips input until the end of the line.
func lexLineComment(l *lexer) stateFunc {
	for {
		switch l.next() {
		case '\n':
			l.newline()
			return lexGlobal
		case eof:
			l.ignore()
			return lexGlobal
		}
	}
}

// lexBlockComment skips input until the closing */, keeping track of line numbers.
func lexBlockComment(l *lexer) stateFunc {
	for {
		switch l.next() {
		case '\n':
			l.newline()
		case '*':
			if l.peek() == '/' {
				l.next()
				l.ignore()
				return lexGlobal
			}
		case eof:
			return l.errorf("unclosed block comment")
		}
	}
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

const digits = "0123456789"

// isAlpha return true if rune r is an alphabetic character in the set [a-zA-Z].
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit return true if rune r is a digit in the range [0-9].
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSpace return true if rune r is a whitespace character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}
