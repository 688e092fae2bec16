package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.asm", "ADD r1, r2\nNOP\n")
	bad := writeSource(t, dir, "bad.asm", "NOP\nFOO r1\n")

	outFlags := func(name string) []string {
		sub := filepath.Join(dir, name)
		return []string{
			"--hi", filepath.Join(sub, "hi.hex"),
			"--lo", filepath.Join(sub, "lo.hex"),
		}
	}

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
		wantFile   string
	}{
		{
			name:       "Positional Output",
			args:       append([]string{good, filepath.Join(dir, "pos", "mem.hex")}, outFlags("pos")...),
			wantStdout: "Assembled 2 words from " + good + "\n",
			wantFile:   filepath.Join(dir, "pos", "mem.hex"),
		},
		{
			name:     "Out Flag Overrides Positional",
			args:     append([]string{good, filepath.Join(dir, "ignored.hex"), "-o", filepath.Join(dir, "flag", "mem.hex")}, outFlags("flag")...),
			wantFile: filepath.Join(dir, "flag", "mem.hex"),
		},
		{
			name:       "Missing Input",
			args:       []string{filepath.Join(dir, "nope.asm")},
			wantCode:   2,
			wantStderr: "input file not found",
		},
		{
			name:       "Assembly Error",
			args:       append([]string{bad, filepath.Join(dir, "bad", "mem.hex")}, outFlags("bad")...),
			wantCode:   1,
			wantStderr: "bad.asm:2: syntax error: unknown mnemonic: FOO",
		},
		{
			name:     "Too Many Args",
			args:     []string{good, "a.hex", "b.hex"},
			wantCode: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(tc.args, &stdout, &stderr)
			if code != tc.wantCode {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tc.wantCode, stderr.String())
			}
			if !strings.HasPrefix(stdout.String(), tc.wantStdout) {
				t.Errorf("stdout = %q, want prefix %q", stdout.String(), tc.wantStdout)
			}
			if !strings.Contains(stderr.String(), tc.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tc.wantStderr)
			}
			if tc.wantFile != "" {
				data, err := os.ReadFile(tc.wantFile)
				if err != nil {
					t.Fatalf("output not written: %v", err)
				}
				if string(data) != "2120\nF000\n" {
					t.Errorf("%s = %q", tc.wantFile, data)
				}
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "bad")); !os.IsNotExist(err) {
		t.Errorf("failed assembly wrote output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ignored.hex")); !os.IsNotExist(err) {
		t.Errorf("positional output written despite -o: %v", err)
	}
}

func TestExecuteSummaryAndDump(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.asm", ".equ SIZE, 3\nentry: NOP\n")
	combined := filepath.Join(dir, "mem.hex")
	hi := filepath.Join(dir, "mem_hi.hex")
	lo := filepath.Join(dir, "mem_lo.hex")

	var stdout, stderr bytes.Buffer
	code := execute([]string{src, combined, "--hi", hi, "--lo", lo, "--dump"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr.String())
	}

	want := "Assembled 1 words from " + src + "\n" +
		"  combined: " + combined + "\n" +
		"  hi bytes: " + hi + "\n" +
		"  lo bytes: " + lo + "\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
	for _, name := range []string{"SIZE", "entry"} {
		if !strings.Contains(stderr.String(), name) {
			t.Errorf("dump is missing %s:\n%s", name, stderr.String())
		}
	}
}
