package asm

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/golang/glog"
)

// maxMacroDepth bounds nested macro expansion.
const maxMacroDepth = 20

// Macro is a named template collected from a .macro/.endm block.
type Macro struct {
	Name   string
	Params []string
	Body   []Line
}

// MacroTable is keyed by the uppercased macro name.
type MacroTable map[string]*Macro

func (t MacroTable) Lookup(name string) (*Macro, bool) {
	m, ok := t[strings.ToUpper(name)]
	return m, ok
}

// Names returns the macro names in sorted order.
func (t MacroTable) Names() []string {
	names := make([]string, 0, len(t))
	for _, m := range t {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// ExpandMacros removes .macro definitions from lines and expands every
// invocation into plain assembly lines. A macro can only be invoked after
// its definition.
func ExpandMacros(lines []Line) ([]Line, MacroTable, error) {
	macros := make(MacroTable)
	out := make([]Line, 0, len(lines))

	var cur *Macro
	var curStart Line
	for _, line := range lines {
		name, rest := directive(strings.TrimSpace(stripComments(line.Text)))

		if cur == nil && name == ".macro" {
			m, err := parseMacroHeader(rest)
			if err != nil {
				return nil, nil, atLine(line, err)
			}
			cur, curStart = m, line
			continue
		}

		if cur != nil {
			if name != ".endm" {
				cur.Body = append(cur.Body, line)
				continue
			}
			key := strings.ToUpper(cur.Name)
			if _, exists := macros[key]; exists {
				return nil, nil, atLine(curStart, fmt.Errorf("%w: %s", ErrMacroRedefined, cur.Name))
			}
			macros[key] = cur
			glog.V(2).Infof("macro %s(%s): %d body lines", cur.Name, strings.Join(cur.Params, ", "), len(cur.Body))
			cur = nil
			continue
		}

		expanded, err := expandLine(line, macros, 0)
		if err != nil {
			return nil, nil, atLine(line, err)
		}
		out = append(out, expanded...)
	}

	if cur != nil {
		return nil, nil, atLine(curStart, fmt.Errorf("%w: %s", ErrUnterminatedMacro, cur.Name))
	}
	return out, macros, nil
}

func parseMacroHeader(rest string) (*Macro, error) {
	fields := strings.FieldsFunc(rest, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: .macro without a name", ErrSyntax)
	}
	return &Macro{Name: fields[0], Params: fields[1:]}, nil
}

// expandLine expands one line against the macro table. Lines that are not
// invocations come back unchanged. Labels in front of an invocation are
// attached to the first line the expansion produces.
func expandLine(line Line, macros MacroTable, depth int) ([]Line, error) {
	if depth > maxMacroDepth {
		return nil, fmt.Errorf("%w (limit %d)", ErrMacroRecursion, maxMacroDepth)
	}

	stripped := strings.TrimSpace(line.Text)
	if stripped == "" || strings.HasPrefix(stripped, ";") || strings.HasPrefix(stripped, "//") {
		return []Line{line}, nil
	}

	text := stripped
	labels := ""
	for {
		label, rest, ok := splitLabel(text)
		if !ok {
			break
		}
		labels += label + ": "
		if rest == "" {
			return []Line{line}, nil
		}
		text = rest
	}

	if strings.HasPrefix(text, ".") {
		return []Line{line}, nil
	}

	head, args := splitMnemonic(text)
	m, ok := macros.Lookup(head)
	if !ok {
		return []Line{line}, nil
	}

	argList := splitMacroArgs(args)
	if len(argList) != len(m.Params) {
		return nil, fmt.Errorf("%w: %s expects %d args, got %d", ErrMacroArgs, m.Name, len(m.Params), len(argList))
	}

	var out []Line
	for _, body := range m.Body {
		sub := substituteParams(body.Text, m.Params, argList)
		nested, err := expandLine(line.expandedTo(sub), macros, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	if labels != "" {
		if len(out) > 0 {
			out[0].Text = labels + strings.TrimLeft(out[0].Text, " \t")
		} else {
			out = append(out, line.expandedTo(strings.TrimRight(labels, " ")))
		}
	}
	glog.V(2).Infof("%s: expanded %s into %d lines", line.Pos(), m.Name, len(out))
	return out, nil
}

func splitMacroArgs(s string) []string {
	s = strings.TrimSpace(stripComments(s))
	if s == "" {
		return nil
	}
	var args []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return args
}

// substituteParams replaces each `\name` whose identifier is exactly a
// parameter name with the matching argument.
func substituteParams(text string, params, args []string) string {
	if len(params) == 0 || !strings.Contains(text, `\`) {
		return text
	}
	values := make(map[string]string, len(params))
	for i, p := range params {
		values[p] = args[i]
	}

	var sb strings.Builder
	n := len(text)
	for i := 0; i < n; {
		if text[i] != '\\' || i+1 >= n || !isIdentStart(text[i+1]) {
			sb.WriteByte(text[i])
			i++
			continue
		}
		start := i + 1
		end := start
		for end < n && isIdentPart(text[end]) {
			end++
		}
		if v, ok := values[text[start:end]]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(text[i:end])
		}
		i = end
	}
	return sb.String()
}
