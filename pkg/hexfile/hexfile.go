// Package hexfile writes and reads assembled images as text hex files, one
// value per line.
package hexfile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Paths names the three output files of an assembly run.
type Paths struct {
	Combined string // 16-bit words
	Hi       string // high bytes
	Lo       string // low bytes
}

// DefaultPaths are the output locations used when none are given.
var DefaultPaths = Paths{
	Combined: "srcs/mem/mem.hex",
	Hi:       "srcs/mem/mem_hi.hex",
	Lo:       "srcs/mem/mem_lo.hex",
}

// Format renders each word as four uppercase hex digits on its own line.
func Format(words []uint16) string {
	return format(words, func(w uint16) string { return fmt.Sprintf("%04X", w) })
}

// FormatHigh renders the high byte of each word.
func FormatHigh(words []uint16) string {
	return format(words, func(w uint16) string { return fmt.Sprintf("%02X", w>>8&0xFF) })
}

// FormatLow renders the low byte of each word.
func FormatLow(words []uint16) string {
	return format(words, func(w uint16) string { return fmt.Sprintf("%02X", w&0xFF) })
}

// format joins the rendered words with newlines and always ends with one, so
// an empty image is a single "\n".
func format(words []uint16, render func(uint16) string) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(render(w))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Write writes the combined, high-byte and low-byte files, creating parent
// directories as needed.
func Write(words []uint16, paths Paths) error {
	files := []struct {
		path    string
		content string
	}{
		{paths.Combined, Format(words)},
		{paths.Hi, FormatHigh(words)},
		{paths.Lo, FormatLow(words)},
	}
	for _, f := range files {
		if err := writeText(f.path, f.content); err != nil {
			return err
		}
	}
	return nil
}

func writeText(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads a combined hex file. Blank lines are skipped.
func Read(path string) ([]uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes combined hex text: one 1-4 digit hex value per line.
func Parse(data []byte) ([]uint16, error) {
	var words []uint16
	sc := bufio.NewScanner(bytes.NewReader(data))
	n := 0
	for sc.Scan() {
		n++
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		if len(tok) > 4 {
			return nil, fmt.Errorf("line %d: %q is wider than 16 bits", n, tok)
		}
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad hex word %q", n, tok)
		}
		words = append(words, uint16(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
