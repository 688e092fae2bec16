package asm

import (
	"fmt"

	"github.com/golang/glog"
)

// Pass2 replays a layout and emits the program words. Gaps left by .org are
// filled with NOPWord. The returned source map gives, for each emitted word
// address that came from a line, the line that produced it.
func Pass2(layout *Layout) ([]uint16, map[int]Line, error) {
	words := make([]uint16, 0, layout.End)
	sourceMap := make(map[int]Line)
	pc := 0

	for _, cl := range layout.Lines {
		for pc < cl.Addr {
			words = append(words, NOPWord)
			pc++
		}
		if cl.Text == "" {
			continue
		}
		if cl.Addr < pc {
			return nil, nil, atLine(cl.Source, fmt.Errorf("%w: 0x%04X < 0x%04X", ErrOrgBackward, cl.Addr*2, pc*2))
		}

		word, emit, err := emitLine(cl, layout.Symbols)
		if err != nil {
			return nil, nil, atLine(cl.Source, err)
		}
		if !emit {
			continue
		}
		glog.V(2).Infof("%s: %04X: %04X", cl.Source.Pos(), pc, word)
		sourceMap[pc] = cl.Source
		words = append(words, word)
		pc++
	}

	glog.V(1).Infof("pass 2: %d words", len(words))
	return words, sourceMap, nil
}

func emitLine(cl CookedLine, syms *SymbolTable) (uint16, bool, error) {
	switch name, rest := directive(cl.Text); name {
	case ".org":
		return 0, false, nil
	case ".word":
		if rest == "" {
			return 0, false, fmt.Errorf("%w: .word requires an expression", ErrSyntax)
		}
		v, err := Eval(rest, syms)
		if err != nil {
			return 0, false, err
		}
		return uint16(v & 0xFFFF), true, nil
	}

	word, err := Encode(cl.Text, cl.Addr, syms)
	if err != nil {
		return 0, false, err
	}
	return word, true, nil
}
