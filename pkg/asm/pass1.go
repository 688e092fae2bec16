package asm

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// CookedLine is a line after layout: the word address it starts at and the
// text left once comments and labels are removed ("" when nothing remains).
type CookedLine struct {
	Addr   int
	Text   string
	Source Line
}

// Layout is the result of pass 1.
type Layout struct {
	Lines   []CookedLine
	Symbols *SymbolTable
	// End is the word address reached after the last line.
	End int
}

// Pass1 assigns a word address to every line and builds the symbol table.
func Pass1(lines []Line) (*Layout, error) {
	syms := NewSymbolTable()
	cooked := make([]CookedLine, 0, len(lines))
	pc := 0

	for _, line := range lines {
		addr, next, text, err := layoutLine(line, pc, syms)
		if err != nil {
			return nil, atLine(line, err)
		}
		cooked = append(cooked, CookedLine{Addr: addr, Text: text, Source: line})
		glog.V(2).Infof("%s: pc=%d %q", line.Pos(), addr, text)
		pc = next
	}

	glog.V(1).Infof("pass 1: %d lines, %d symbols, %d words", len(cooked), syms.Len(), pc)
	return &Layout{Lines: cooked, Symbols: syms, End: pc}, nil
}

// layoutLine handles one line at location counter pc. It returns the address
// the line is recorded at, the counter for the following line and the
// residual text.
func layoutLine(line Line, pc int, syms *SymbolTable) (addr, next int, text string, err error) {
	text = strings.TrimSpace(stripComments(line.Text))
	if text == "" {
		return pc, pc, "", nil
	}

	if name, rest := directive(text); name == ".equ" {
		return pc, pc, "", defineConstant(rest, syms)
	}

	for {
		label, rest, ok := splitLabel(text)
		if !ok {
			break
		}
		if err := syms.Define(label, pc*2, Label); err != nil {
			return pc, pc, "", err
		}
		text = rest
	}
	if text == "" {
		return pc, pc, "", nil
	}

	switch name, rest := directive(text); name {
	case ".equ":
		return pc, pc, "", fmt.Errorf("%w: label not allowed on a .equ line", ErrSyntax)
	case ".org":
		if rest == "" {
			return pc, pc, "", fmt.Errorf("%w: .org missing operand", ErrSyntax)
		}
		target, err := Eval(rest, syms)
		if err != nil {
			return pc, pc, "", err
		}
		if target < 0 {
			return pc, pc, "", fmt.Errorf("%w: .org address is negative: %d", ErrRange, target)
		}
		if target&1 != 0 {
			return pc, pc, "", fmt.Errorf("%w: 0x%04X", ErrOddOrg, target)
		}
		return target / 2, target / 2, text, nil
	}

	// .word and instructions both take exactly one word.
	return pc, pc + 1, text, nil
}

func defineConstant(operands string, syms *SymbolTable) error {
	if operands == "" {
		return fmt.Errorf("%w: .equ missing operands", ErrSyntax)
	}
	name, expr, ok := strings.Cut(operands, ",")
	name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
	if !ok || name == "" || expr == "" {
		return fmt.Errorf("%w: .equ requires NAME, expr", ErrSyntax)
	}
	val, err := Eval(expr, syms)
	if err != nil {
		return err
	}
	return syms.Define(name, val, Constant)
}
