package asm

import (
	"fmt"
	"sort"
)

type SymbolKind int

const (
	Label SymbolKind = iota
	Constant
)

func (k SymbolKind) String() string {
	if k == Label {
		return "label"
	}
	return "constant"
}

// Symbol is a named label (byte address) or .equ constant.
type Symbol struct {
	Name  string
	Value int
	Kind  SymbolKind
}

// SymbolTable holds every symbol of a program. Names are case-sensitive and
// may only be defined once.
type SymbolTable struct {
	symbols map[string]Symbol
	order   []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Define adds a symbol, failing if the name is already taken.
func (t *SymbolTable) Define(name string, value int, kind SymbolKind) error {
	if _, exists := t.symbols[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, name)
	}
	t.symbols[name] = Symbol{Name: name, Value: value, Kind: kind}
	t.order = append(t.order, name)
	return nil
}

// Lookup returns the symbol called name. A nil table holds no symbols.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	s, ok := t.symbols[name]
	return s, ok
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// Symbols returns all symbols in definition order.
func (t *SymbolTable) Symbols() []Symbol {
	if t == nil {
		return nil
	}
	out := make([]Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.symbols[name])
	}
	return out
}

// LabelAt returns the name of a label bound to byte address addr, preferring
// the one defined first.
func (t *SymbolTable) LabelAt(addr int) (string, bool) {
	for _, s := range t.Symbols() {
		if s.Kind == Label && s.Value == addr {
			return s.Name, true
		}
	}
	return "", false
}

// Sorted returns all symbols ordered by value, then name.
func (t *SymbolTable) Sorted() []Symbol {
	out := t.Symbols()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
