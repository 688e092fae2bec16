package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gr0040asm/pkg/asm"
	"gr0040asm/pkg/hexfile"
	"gr0040asm/pkg/utils"
)

const defaultInput = "assembly/input.asm"

// exitError carries the process exit status for a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type options struct {
	out   string
	hi    string
	lo    string
	quiet bool
	dump  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "gr0040asm [input] [output]",
		Short: "Assemble GR0040/GR0041 ISA programs into HEX files",
		Long: `gr0040asm assembles one source file (default ` + defaultInput + `) into three
hex images: the combined 16-bit words, the high bytes and the low bytes.

.include and .macro are expanded before the two assembly passes. Nothing is
written when assembly fails.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "combined 16-bit hex output (overrides positional)")
	f.StringVar(&opts.hi, "hi", hexfile.DefaultPaths.Hi, "hi-byte hex output path")
	f.StringVar(&opts.lo, "lo", hexfile.DefaultPaths.Lo, "lo-byte hex output path")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress summary output")
	f.BoolVar(&opts.dump, "dump", false, "print the symbol table to stderr")
	// glog's -v, -logtostderr, ...
	f.AddGoFlagSet(flag.CommandLine)

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func run(opts *options, args []string, stdout, stderr io.Writer) error {
	input := defaultInput
	if len(args) > 0 {
		input = args[0]
	}
	paths := hexfile.Paths{Combined: hexfile.DefaultPaths.Combined, Hi: opts.hi, Lo: opts.lo}
	if len(args) > 1 {
		paths.Combined = args[1]
	}
	if opts.out != "" {
		paths.Combined = opts.out
	}

	if !utils.IsRegularFile(input) {
		return &exitError{code: 2, err: fmt.Errorf("input file not found: %s", input)}
	}

	prog, err := asm.AssembleFile(input)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	glog.V(1).Infof("assembled %s: %d words, %d symbols", input, len(prog.Words), prog.Symbols.Len())

	if opts.dump {
		printer := pp.New()
		printer.SetOutput(stderr)
		printer.SetColoringEnabled(isTerminal(stderr))
		printer.Println(prog.Symbols.Sorted())
	}

	if err := hexfile.Write(prog.Words, paths); err != nil {
		return &exitError{code: 1, err: err}
	}

	if !opts.quiet {
		fmt.Fprintf(stdout, "Assembled %d words from %s\n", len(prog.Words), input)
		fmt.Fprintf(stdout, "  combined: %s\n", paths.Combined)
		fmt.Fprintf(stdout, "  hi bytes: %s\n", paths.Hi)
		fmt.Fprintf(stdout, "  lo bytes: %s\n", paths.Lo)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 2
	}
	return 0
}

func main() {
	code := execute(os.Args[1:], os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}
