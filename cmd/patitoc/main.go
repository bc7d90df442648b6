// Command patitoc compiles a Patito JSON AST document into quadruples,
// prints the variable, function, constant and quadruple listings, and
// optionally executes the result on the built-in virtual machine.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JosueSosa01/Patito-1/internal/config"
	"github.com/JosueSosa01/Patito-1/internal/genlog"
	"github.com/JosueSosa01/Patito-1/internal/pipeline"
)

func main() {
	opt := config.Options{}

	root := &cobra.Command{
		Use:   "patitoc [source.json]",
		Short: "Patito quadruple compiler and virtual machine",
		Args:  cobra.MaximumNArgs(1),
		// Errors are reported once, below, without a usage dump.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opt.Src = args[0]
			}
			return run(opt)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opt.Out, "out", "o", "", "path to write the listing output to (default stdout)")
	flags.BoolVar(&opt.Run, "run", false, "execute the generated program after printing the listings")
	flags.BoolVar(&opt.Trace, "trace", false, "log every executed quadruple when running")
	flags.BoolVar(&opt.Verbose, "vb", false, "emit structured diagnostic logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(opt config.Options) error {
	src, err := readSource(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source: %w", err)
	}

	log := genlog.New(opt.Verbose, opt.Trace)

	var out io.Writer = os.Stdout
	if opt.Out != "" {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return pipeline.Run(src, opt, out, log)
}

func readSource(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
