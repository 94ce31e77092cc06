// tree.go provides the entry points of the front end: parsing source code into a syntax tree and dumping the
// token stream.

package frontend

import (
	"fmt"
	"io"
	"text/tabwriter"

	"jlc/src/ir"
)

// Parse parses the syntax tree from the source code.
func Parse(src string) (*ir.Program, error) {
	items, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{items: items}
	return p.parseProgram()
}

// TokenStream writes the token stream of the given source string to w.
func TokenStream(src string, w io.Writer) error {
	items, err := lex(src)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 10, 20, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for _, t := range items {
		if t.typ == itemEOF {
			break
		}
		if len(t.val) > 20 {
			_, _ = fmt.Fprintf(tw, "%.17q...\t%s\tline: %d:%d\n", t.val, t.typ, t.line, t.pos)
		} else {
			_, _ = fmt.Fprintf(tw, "%q\t%s\tline: %d:%d\n", t.val, t.typ, t.line, t.pos)
		}
	}
	return tw.Flush()
}
