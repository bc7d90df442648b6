// Package config defines the CLI's option set and a minimal parser.
// The Cobra-based command in cmd/patitoc binds pflag directly to an
// Options value for everyday use; ParseArgs exists alongside it for
// tests and for any caller that wants flag parsing without constructing
// a Cobra command.
package config

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Options controls one invocation of the compiler/VM pipeline.
type Options struct {
	Src     string // Path to the JSON AST input file; "" or "-" means stdin.
	Out     string // Path to the output listing file; "" means stdout.
	Run     bool   // Execute the generated program after printing the listings.
	Verbose bool   // Emit structured diagnostic logging (-vb).
	Trace   bool   // Emit a per-quadruple execution trace when running.
}

const appVersion = "patitoc 1.0"

// ParseArgs parses a flag slice (typically os.Args[1:]) in a single
// left-to-right scan with no external flag library.
func ParseArgs(args []string) (Options, error) {
	opt := Options{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			if strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("expected path to output file, got new flag %s", args[i+1])
			}
			opt.Out = args[i+1]
			i++
		case "-run":
			opt.Run = true
		case "-trace":
			opt.Trace = true
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	return opt, nil
}

// printHelp prints a usage summary laid out with text/tabwriter.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to write the listing output to. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-run\tExecute the generated program after printing the listings.")
	_, _ = fmt.Fprintln(w, "-trace\tLog every executed quadruple when running (-vb is not needed for this).")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: emit structured diagnostic logging.")
	_ = w.Flush()
}
