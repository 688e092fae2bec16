// Command asmdump runs the assembler one stage at a time and prints what each
// stage produced.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"

	"gr0040asm/pkg/asm"
	"gr0040asm/pkg/hexfile"
)

const demoSource = `.equ LIMIT, 3
.macro INC reg
ADDI \reg, \reg, 1
.endm
start:
    XOR a0, a0
loop:
    INC a0
    RCMPI a0, LIMIT
    BLT loop
    BR start
`

func main() {
	flag.Parse()
	defer glog.Flush()

	src := demoSource
	path := ""
	if flag.NArg() > 0 {
		path = flag.Arg(0)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	// Includes
	lines, err := asm.ExpandIncludes(asm.SplitLines(src, path), path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "include error:", err)
		os.Exit(1)
	}

	// Macros
	expanded, macros, err := asm.ExpandMacros(lines)
	if err != nil {
		fmt.Fprintln(os.Stderr, "macro error:", err)
		os.Exit(1)
	}

	fmt.Printf("Expanded (%d lines)\n", len(expanded))
	for _, l := range expanded {
		fmt.Printf("  %-16s %s\n", l.Pos(), l.Text)
	}
	fmt.Println()

	fmt.Println("Macros")
	for _, name := range macros.Names() {
		m, _ := macros.Lookup(name)
		pp.Println(m.Name, m.Params)
	}
	fmt.Println()

	// Pass 1
	layout, err := asm.Pass1(expanded)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pass 1 error:", err)
		os.Exit(1)
	}

	fmt.Println("Symbols")
	pp.Println(layout.Symbols.Sorted())
	fmt.Println()

	fmt.Println("Layout")
	for _, cl := range layout.Lines {
		if cl.Text == "" {
			continue
		}
		fmt.Printf("  %04X  %s\n", cl.Addr*2, cl.Text)
	}
	fmt.Println()

	// Pass 2
	words, _, err := asm.Pass2(layout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pass 2 error:", err)
		os.Exit(1)
	}

	fmt.Printf("Words (%d)\n", len(words))
	fmt.Print(hexfile.Format(words))
}
