package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gr0040asm/pkg/asm"
)

func TestLoadAndScroll(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	code := "start: ADD r1, r2\n.org 0x0400\nend: NOP\n"
	if err := os.WriteFile(src, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := load(src)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(v.words) != 0x201 || v.rows() != 65 {
		t.Fatalf("words = %d, rows = %d", len(v.words), v.rows())
	}

	// Padding is dimmed, the NOP written by the program is not.
	if !v.isGap(1) || v.isGap(0x200) {
		t.Errorf("isGap(1) = %v, isGap(0x200) = %v", v.isGap(1), v.isGap(0x200))
	}
	if name, ok := v.topLabel(); !ok || name != "start" {
		t.Errorf("topLabel() = %q, %v", name, ok)
	}

	v.scroll(1000)
	if want := v.rows() - v.visibleRows(); v.top != want {
		t.Errorf("top after scrolling past the end = %d, want %d", v.top, want)
	}
	v.scroll(-1000)
	if v.top != 0 {
		t.Errorf("top after scrolling past the start = %d", v.top)
	}

	if s := v.status(); !strings.Contains(s, "prog.asm  513 words") || !strings.Contains(s, "<start>") {
		t.Errorf("status() = %q", s)
	}
}

func TestLoadHex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mem.hex")
	if err := os.WriteFile(path, []byte("2120\nF000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(v.words) != 2 || v.words[1] != asm.NOPWord {
		t.Fatalf("words = %04X", v.words)
	}
	if !v.isGap(1) || v.isGap(0) {
		t.Error("without a source map every NOP is padding")
	}
	if _, ok := v.topLabel(); ok {
		t.Error("hex image has no labels")
	}
	// Fewer rows than the screen holds: nothing to scroll.
	v.scroll(3)
	if v.top != 0 {
		t.Errorf("top = %d", v.top)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.asm")
	if err := os.WriteFile(bad, []byte("BR nowhere\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := load(bad); err == nil {
		t.Error("load of a bad program succeeded")
	}
	if _, err := load(filepath.Join(dir, "missing.hex")); err == nil {
		t.Error("load of a missing file succeeded")
	}
}
