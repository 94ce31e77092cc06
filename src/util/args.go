package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the compiler configuration assembled from the command line.
type Options struct {
	Src         string // Path to source file. Empty means read from stdin.
	Out         string // Path to output file. Empty means stdout.
	Threads     int    // Number of functions lowered and allocated in parallel.
	Verbose     bool   // Set true if compiler should log phase timings to stderr.
	TokenStream bool   // Set true if compiler should output token stream and exit.
	PrintTree   bool   // Set true if the type annotated syntax tree should be printed.
	PrintLIR    bool   // Set true if the lowered LIR should be printed.
	PrintLive   bool   // Set true if the live intervals and register assignment should be printed.
	Optimise    bool   // Set true if constant folding should run on the typed tree.
	LLVM        bool   // Set true if the LLVM backend should emit LLVM IR instead of LIR.
	TargetArch  int    // Register file used by the allocator.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Maximum threads allowed executing in parallel.
const appVersion = "jlc 1.0"

// Target machine architectures.
const (
	UnknownArch = iota
	Aarch64
	Riscv64
)

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments. The last argument that is not a flag is taken as the source file path.
func ParseArgs() (Options, error) {
	return parseArgs(os.Args[1:])
}

// parseArgs parses the argument slice args into an Options structure.
func parseArgs(args []string) (Options, error) {
	opt := Options{Threads: 1, TargetArch: Aarch64}
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		case "-ts":
			opt.TokenStream = true
		case "-tree":
			opt.PrintTree = true
		case "-lir":
			opt.PrintLIR = true
		case "-live":
			opt.PrintLive = true
		case "-O":
			opt.Optimise = true
		case "-ll":
			opt.LLVM = true
		case "-o", "-t", "-arch":
			if i1+1 >= len(args) {
				return opt, errors.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, errors.Errorf("expected argument to %s, got new flag %s", args[i1], args[i1+1])
			}
			switch args[i1] {
			case "-o":
				opt.Out = args[i1+1]
			case "-t":
				t, err := strconv.Atoi(args[i1+1])
				if err != nil {
					return opt, errors.Errorf("expected integer thread count, got: %s", args[i1+1])
				}
				if t < 1 || t > maxThreads {
					return opt, errors.Errorf("thread count must be integer in range [1, %d]", maxThreads)
				}
				opt.Threads = t
			case "-arch":
				switch args[i1+1] {
				case "aarch64":
					opt.TargetArch = Aarch64
				case "riscv64":
					opt.TargetArch = Riscv64
				default:
					return opt, errors.Errorf("unexpected architecture identifier: %s", args[i1+1])
				}
			}
			i1++
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, errors.Errorf("unexpected flag: %s", args[i1])
			}
			if i1 != len(args)-1 {
				return opt, errors.Errorf("source file %s must be the last argument", args[i1])
			}
			opt.Src = args[i1]
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, ' ', 0)
	_, _ = fmt.Fprintln(w, "usage: jlc [flags] [sourceFile]\tSource is read from stdin when sourceFile is omitted.")
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits the application.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print phase timings to stderr.")
	_, _ = fmt.Fprintln(w, "-ts\tOutput the tokens of the source code and exit.")
	_, _ = fmt.Fprintln(w, "-tree\tPrint the type annotated syntax tree.")
	_, _ = fmt.Fprintln(w, "-lir\tPrint the lowered LIR.")
	_, _ = fmt.Fprintln(w, "-live\tPrint live intervals and allocated locations.")
	_, _ = fmt.Fprintln(w, "-O\tFold constant expressions before lowering.")
	_, _ = fmt.Fprintln(w, "-ll\tEmit LLVM IR instead of LIR. Requires a build with the llvm tag.")
	_, _ = fmt.Fprintln(w, "-o\tPath and name of the output file.")
	_, _ = fmt.Fprintf(w, "-t\tNumber of functions processed in parallel. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-arch\tRegister file for allocation: 'aarch64' (default) or 'riscv64'.")
	_ = w.Flush()
}
