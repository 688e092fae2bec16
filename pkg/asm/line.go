package asm

import (
	"fmt"
	"strings"
	"unicode"
)

// Line is one line of source text together with where it came from.
// Lines produced by macro expansion keep the position of the invocation.
type Line struct {
	File   string
	Number int
	Text   string
	// Raw is the invocation text for lines produced by macro expansion,
	// empty otherwise.
	Raw    string
}

// Pos renders the line's origin as "file:line", or "line N" for unnamed sources.
func (l Line) Pos() string {
	if l.File == "" {
		return fmt.Sprintf("line %d", l.Number)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Number)
}

// SplitLines breaks source text into numbered lines attributed to file.
func SplitLines(code, file string) []Line {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.TrimSuffix(code, "\n")
	if code == "" {
		return nil
	}

	raw := strings.Split(code, "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{File: file, Number: i + 1, Text: text}
	}
	return lines
}

// Texts returns the text of each line.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// Source returns the text as written in the source file.
func (l Line) Source() string {
	if l.Raw != "" {
		return l.Raw
	}
	return l.Text
}

// expandedTo returns l carrying text produced from it by macro expansion.
func (l Line) expandedTo(text string) Line {
	if l.Raw == "" {
		l.Raw = l.Text
	}
	l.Text = text
	return l
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 0 && !isIdentStart(s[i]) {
			return false
		}
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// splitLabel peels one leading "NAME:" off text. ok is false when text does
// not start with a label.
func splitLabel(text string) (label, rest string, ok bool) {
	colon := strings.IndexByte(text, ':')
	if colon <= 0 {
		return "", text, false
	}
	name := text[:colon]
	if !isIdentifier(name) {
		return "", text, false
	}
	return name, strings.TrimSpace(text[colon+1:]), true
}

// splitMnemonic splits text at its first run of whitespace.
func splitMnemonic(text string) (head, rest string) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// directive returns the lowercased first field of text when it is a
// dot-directive, and the trimmed remainder after it.
func directive(text string) (name, rest string) {
	if !strings.HasPrefix(text, ".") {
		return "", text
	}
	head, rest := splitMnemonic(text)
	return strings.ToLower(head), rest
}
