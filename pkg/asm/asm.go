// Package asm assembles GR0040/GR0041 programs into 16-bit words.
//
// The pipeline is: include expansion, macro expansion, pass 1 (layout and
// symbols) and pass 2 (emission). Each stage is exported so it can be run and
// inspected on its own.
package asm

import (
	"os"

	"github.com/golang/glog"
)

// Program is an assembled image.
type Program struct {
	Words   []uint16
	Symbols *SymbolTable
	Macros  MacroTable
	// SourceMap maps word addresses to the line that produced the word.
	// Gap words inserted for .org have no entry.
	SourceMap map[int]Line
}

// Assembler runs the pipeline and keeps the intermediate results of its last
// run.
type Assembler struct {
	Expanded []Line
	Macros   MacroTable
	Layout   *Layout
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble assembles in-memory source. Includes resolve against the working
// directory.
func Assemble(code string) (*Program, error) {
	return NewAssembler().Assemble(code, "")
}

// AssembleFile reads and assembles the file at path.
func AssembleFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewAssembler().Assemble(string(data), path)
}

// Preprocess expands includes and macros. path names the file code was read
// from and anchors relative includes; it may be empty.
func Preprocess(code, path string) ([]Line, MacroTable, error) {
	lines, err := ExpandIncludes(SplitLines(code, path), path)
	if err != nil {
		return nil, nil, err
	}
	glog.V(1).Infof("includes: %d lines", len(lines))

	expanded, macros, err := ExpandMacros(lines)
	if err != nil {
		return nil, nil, err
	}
	glog.V(1).Infof("macros: %d defined, %d lines after expansion", len(macros), len(expanded))
	return expanded, macros, nil
}

func (a *Assembler) Assemble(code, path string) (*Program, error) {
	expanded, macros, err := Preprocess(code, path)
	if err != nil {
		return nil, err
	}
	a.Expanded, a.Macros = expanded, macros

	layout, err := Pass1(expanded)
	if err != nil {
		return nil, err
	}
	a.Layout = layout

	words, sourceMap, err := Pass2(layout)
	if err != nil {
		return nil, err
	}
	return &Program{
		Words:     words,
		Symbols:   layout.Symbols,
		Macros:    macros,
		SourceMap: sourceMap,
	}, nil
}
