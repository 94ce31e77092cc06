package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	backendlir "jlc/src/backend/lir"
	"jlc/src/frontend"
	"jlc/src/ir"
	"jlc/src/ir/lir"
	"jlc/src/ir/llvm"
	"jlc/src/util"
)

func main() {
	// Parse command line arguments.
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command line argument error: %s\n", err)
		os.Exit(1)
	}

	// Write results to stdout unless an output file is given.
	if len(opt.Out) == 0 {
		if err := run(opt, os.Stdin, os.Stdout, os.Stderr); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := runToFile(opt, os.Stdin, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// runToFile runs the compiler writing results to the file opt.Out, which is created if necessary. The file is closed
// before runToFile returns.
func runToFile(opt util.Options, stdin io.Reader, diag io.Writer) error {
	f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(diag, err)
		return err
	}
	err = run(opt, stdin, f, diag)
	if cerr := f.Close(); cerr != nil {
		fmt.Fprintln(diag, cerr)
		if err == nil {
			err = errors.Wrapf(cerr, "could not close %s", opt.Out)
		}
	}
	return err
}

// run compiles the source defined by opt. Results are written to out. The verdict of the compilation, OK or ERROR
// followed by the error, is written to diag.
func run(opt util.Options, stdin io.Reader, out, diag io.Writer) error {
	err := compile(opt, stdin, util.NewSink(out))
	if err != nil {
		fmt.Fprintf(diag, "ERROR\n%s\n", err)
		return err
	}
	fmt.Fprintln(diag, "OK")
	return nil
}

// compile runs every phase of the compiler in order.
func compile(opt util.Options, stdin io.Reader, sink *util.Sink) error {
	w := sink.NewWriter()
	start := time.Now()

	// Read source code.
	src, err := util.ReadSource(opt, stdin)
	if err != nil {
		return err
	}

	// If -ts flag was passed: output token stream and exit.
	if opt.TokenStream {
		sb := strings.Builder{}
		if err = frontend.TokenStream(src, &sb); err != nil {
			return errors.Wrap(err, "syntax error")
		}
		w.WriteString(sb.String())
		return w.Flush()
	}

	// Generate syntax tree by lexing and parsing source code.
	prog, err := frontend.Parse(src)
	if err != nil {
		return errors.Wrap(err, "syntax error")
	}
	util.Logf(opt, "parsed %d functions in %s", len(prog.Funcs), time.Since(start))

	// Validate and annotate the syntax tree.
	if err = ir.TypeCheck(prog); err != nil {
		return errors.Wrap(err, "type error")
	}
	util.Logf(opt, "type checked in %s", time.Since(start))

	if opt.Optimise {
		ir.Optimise(opt, prog)
		util.Logf(opt, "folded constants in %s", time.Since(start))
	}
	if opt.PrintTree {
		w.WriteString(prog.String())
	}

	if opt.LLVM {
		ll, err := llvm.GenLLVM(opt, prog)
		if err != nil {
			return errors.Wrap(err, "error reported by LLVM")
		}
		util.Logf(opt, "generated LLVM IR in %s", time.Since(start))
		w.WriteString(ll)
		return w.Flush()
	}

	// Lower to LIR.
	m, err := lir.GenLIR(opt, prog)
	if err != nil {
		return errors.Wrap(err, "LIR generation error")
	}
	util.Logf(opt, "generated LIR in %s", time.Since(start))
	if opt.PrintLIR {
		w.WriteString(m.String())
	}

	// Allocate registers.
	stats, err := backendlir.AllocateRegisters(opt, m)
	if err != nil {
		return errors.Wrap(err, "register allocation error")
	}
	for _, e1 := range stats {
		util.Logf(opt, "%s: %d values, %d coalesced, %d spilled", e1.Function, e1.Values, e1.Coalesced, e1.Spilled)
	}
	util.Logf(opt, "allocated registers in %s", time.Since(start))

	if opt.PrintLive || !(opt.PrintTree || opt.PrintLIR) {
		sb := strings.Builder{}
		if err = m.Print(&sb, opt.PrintLive); err != nil {
			return err
		}
		w.WriteString(sb.String())
	}
	return w.Flush()
}
