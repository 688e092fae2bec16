package hexfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFormat(t *testing.T) {
	words := []uint16{0x2120, 0xF000, 0x00AB}

	tests := []struct {
		name string
		fn   func([]uint16) string
		want string
	}{
		{"Combined", Format, "2120\nF000\n00AB\n"},
		{"High", FormatHigh, "21\nF0\n00\n"},
		{"Low", FormatLow, "20\n00\nAB\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(words); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatEmpty(t *testing.T) {
	for _, fn := range []func([]uint16) string{Format, FormatHigh, FormatLow} {
		if got := fn(nil); got != "\n" {
			t.Errorf("empty image = %q, want %q", got, "\n")
		}
	}
}

func TestWriteCreatesDirs(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Combined: filepath.Join(dir, "out", "mem.hex"),
		Hi:       filepath.Join(dir, "out", "hi", "mem_hi.hex"),
		Lo:       filepath.Join(dir, "lo.hex"),
	}
	words := []uint16{0x1234, 0xBEEF}
	if err := Write(words, paths); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := map[string]string{
		paths.Combined: "1234\nBEEF\n",
		paths.Hi:       "12\nBE\n",
		paths.Lo:       "34\nEF\n",
	}
	for path, content := range want {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != content {
			t.Errorf("%s = %q, want %q", path, data, content)
		}
	}

	got, err := Read(paths.Combined)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, words) {
		t.Errorf("Read() = %04X, want %04X", got, words)
	}
}

func TestParse(t *testing.T) {
	got, err := Parse([]byte("F000\r\n\n  1 \nab\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if want := []uint16{0xF000, 0x0001, 0x00AB}; !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %04X, want %04X", got, want)
	}

	for _, bad := range []string{"12345\n", "XYZ\n", "-1\n"} {
		if _, err := Parse([]byte(bad)); err == nil {
			t.Errorf("Parse(%q) succeeded", bad)
		}
	}
}
