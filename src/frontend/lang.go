package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved keywords.
// The first dimension equals the length of the word.
// The second dimension is the slice of all words of that length.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", typ: kwIf},
	},
	// Three-grams
	{
		{val: "int", typ: kwInt},
		{val: "for", typ: kwFor},
		{val: "new", typ: kwNew},
	},
	// Four-grams
	{
		{val: "else", typ: kwElse},
		{val: "void", typ: kwVoid},
		{val: "true", typ: kwTrue},
	},
	// Five-grams
	{
		{val: "while", typ: kwWhile},
		{val: "false", typ: kwFalse},
	},
	// Six-grams
	{
		{val: "double", typ: kwDouble},
		{val: "return", typ: kwReturn},
	},
	// Seven-grams
	{
		{val: "boolean", typ: kwBoolean},
	},
}

// isKeyword returns the token type of s and true if s is a reserved keyword.
func isKeyword(s string) (itemType, bool) {
	if len(s) == 0 || len(s) > len(rw) {
		return itemIdent, false
	}

	// Check if string s is a reserved word by iterating over all words in rw of length len(s).
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return e1.typ, true
		}
	}
	return itemIdent, false
}
