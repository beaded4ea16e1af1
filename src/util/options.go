// Package util provides the ambient plumbing shared across compiler
// phases: command-line options, a parallel error collector, a label
// allocator and source/output I/O helpers.
package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the flat set of command-line options recognised by the
// driver, grounded on util.Options (src/util/args.go).
type Options struct {
	Src         string // Path to the JSON AST snapshot the driver loads; empty when none is given.
	SourceDir   string // Directory foreign-module "use zig" paths resolve against.
	Out         string // Path to the output file; empty means stdout.
	Threads     int    // Thread count from -t; range-checked but not read by any phase.
	Verbose     bool   // Print compiler statistics and dumps to stdout.
	TargetTriple string // LLVM target triple; defaults to x86_64-unknown-linux-gnu.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64
const appVersion = "qtjirc 1.0"
const defaultTriple = "x86_64-unknown-linux-gnu"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options value using a
// hand-rolled scanner rather than a third-party flag library (see
// DESIGN.md for the standard-library justification).
func ParseArgs(argv []string) (Options, error) {
	opt := Options{Threads: 1, TargetTriple: defaultTriple}
	if len(argv) == 0 {
		return opt, nil
	}
	for i1 := 0; i1 < len(argv); i1++ {
		switch argv[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-o":
			if i1+1 >= len(argv) {
				return opt, fmt.Errorf("got flag %s but no argument", argv[i1])
			}
			opt.Out = argv[i1+1]
			i1++
		case "-src-dir":
			if i1+1 >= len(argv) {
				return opt, fmt.Errorf("got flag %s but no argument", argv[i1])
			}
			opt.SourceDir = argv[i1+1]
			i1++
		case "-triple":
			if i1+1 >= len(argv) {
				return opt, fmt.Errorf("got flag %s but no argument", argv[i1])
			}
			opt.TargetTriple = argv[i1+1]
			i1++
		case "-t":
			if i1+1 >= len(argv) {
				return opt, fmt.Errorf("got flag %s but no argument", argv[i1])
			}
			if strings.HasPrefix(argv[i1+1], "-") {
				return opt, fmt.Errorf("expected thread count, got new flag %s", argv[i1+1])
			}
			t, err := strconv.Atoi(argv[i1+1])
			if err != nil {
				return opt, fmt.Errorf("expected integer thread count, got: %s", argv[i1+1])
			}
			if t < 1 || t > maxThreads {
				return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
			}
			opt.Threads = t
			i1++
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(argv[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", argv[i1])
			}
			opt.Src = argv[i1]
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to the output LLVM IR file. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-src-dir\tDirectory 'use zig' foreign-module paths resolve against.")
	_, _ = fmt.Fprintln(w, "-triple\tLLVM target triple. Defaults to x86_64-unknown-linux-gnu.")
	_, _ = fmt.Fprintf(w, "-t\tThread count. Must be in range [1, %d]; accepted but unused, every phase runs sequentially.\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print compiler statistics to stdout.")
	_ = w.Flush()
}
