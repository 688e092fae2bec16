package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// abiRegisters maps calling-convention aliases to register numbers.
var abiRegisters = map[string]int{
	"zero": 0,
	"a0":   1, "v0": 1,
	"a1": 2, "v1": 2,
	"a2": 3,
	"t0": 4, "t1": 5, "t2": 6, "t3": 7,
	"s0": 8, "s1": 9, "s2": 10, "s3": 11,
	"fp": 12,
	"sp": 13,
	"lr": 14,
	"gp": 15,
}

// ParseRegister accepts an ABI alias or r0..r15, case-insensitively.
func ParseRegister(token string) (int, error) {
	name := strings.ToLower(strings.TrimSpace(token))
	if n, ok := abiRegisters[name]; ok {
		return n, nil
	}

	if len(name) < 2 || name[0] != 'r' || !isDigits(name[1:]) {
		return 0, fmt.Errorf("%w '%s'", ErrBadRegister, token)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n > 15 {
		return 0, fmt.Errorf("%w: r%s out of range", ErrBadRegister, name[1:])
	}
	return n, nil
}

// Eval evaluates an operand expression. syms may be nil.
//
// ">>" and "&" split at their first occurrence: the left side is evaluated as
// an expression, the right side must be a plain literal. A symbol may carry a
// signed literal offset ("table+4"). Anything else is tried as a literal and
// finally as a register name.
func Eval(expr string, syms *SymbolTable) (int, error) {
	tok := strings.TrimSpace(cutComment(expr))
	tok = strings.TrimSpace(strings.TrimPrefix(tok, "#"))

	if i := strings.Index(tok, ">>"); i >= 0 {
		left, err := Eval(tok[:i], syms)
		if err != nil {
			return 0, err
		}
		right, err := parseLiteral(tok[i+2:])
		if err != nil {
			return 0, err
		}
		if right < 0 {
			return 0, fmt.Errorf("%w: negative shift count in '%s'", ErrValue, tok)
		}
		return left >> uint(right), nil
	}

	if i := strings.Index(tok, "&"); i >= 0 {
		left, err := Eval(tok[:i], syms)
		if err != nil {
			return 0, err
		}
		right, err := parseLiteral(tok[i+1:])
		if err != nil {
			return 0, err
		}
		return left & right, nil
	}

	if name, offset, ok := splitSymbolRef(tok); ok {
		if sym, found := syms.Lookup(name); found {
			if offset == "" {
				return sym.Value, nil
			}
			off, err := parseLiteral(offset)
			if err != nil {
				return 0, err
			}
			return sym.Value + off, nil
		}
	}

	if v, err := parseLiteral(tok); err == nil {
		return v, nil
	}
	if r, err := ParseRegister(tok); err == nil {
		return r, nil
	}
	return 0, fmt.Errorf("%w '%s'", ErrValue, tok)
}

// splitSymbolRef matches IDENT or IDENT followed by a +/- offset.
func splitSymbolRef(tok string) (name, offset string, ok bool) {
	if tok == "" || !isIdentStart(tok[0]) {
		return "", "", false
	}
	end := 1
	for end < len(tok) && isIdentPart(tok[end]) {
		end++
	}
	rest := tok[end:]
	if rest != "" && (len(rest) < 2 || (rest[0] != '+' && rest[0] != '-')) {
		return "", "", false
	}
	return tok[:end], rest, true
}

// parseLiteral reads a decimal or 0x-prefixed hexadecimal integer with an
// optional explicit sign.
func parseLiteral(token string) (int, error) {
	tok := strings.TrimSpace(cutComment(token))
	tok = strings.TrimSpace(strings.TrimPrefix(tok, "#"))

	digits := tok
	negative := false
	if strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		negative = digits[0] == '-'
		digits = digits[1:]
	}

	base := 10
	if len(digits) > 2 && strings.EqualFold(digits[:2], "0x") {
		base = 16
		digits = digits[2:]
		if !isHexDigits(digits) {
			return 0, fmt.Errorf("%w: malformed literal '%s'", ErrValue, tok)
		}
	} else if !isDigits(digits) {
		return 0, fmt.Errorf("%w: malformed literal '%s'", ErrValue, tok)
	}

	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: literal '%s' overflows", ErrValue, tok)
	}
	if negative {
		v = -v
	}
	return int(v), nil
}

func cutComment(s string) string {
	before, _, _ := strings.Cut(s, ";")
	return before
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
