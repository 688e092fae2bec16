package asm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/golang/glog"
)

var includeRe = regexp.MustCompile(`(?i)^\s*\.include\s+"([^"]+)"\s*$`)

// ExpandIncludes replaces every `.include "file"` line with the expanded
// contents of file, resolved against the directory of path (the file the
// lines were read from; "" means the working directory).
//
// Files on the active include chain may not be included again.
func ExpandIncludes(lines []Line, path string) ([]Line, error) {
	stack := make(map[string]bool)
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			stack[abs] = true
		}
	}
	return expandIncludes(lines, path, stack)
}

func expandIncludes(lines []Line, path string, stack map[string]bool) ([]Line, error) {
	baseDir := "."
	if path != "" {
		baseDir = filepath.Dir(path)
	}

	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		m := includeRe.FindStringSubmatch(line.Text)
		if m == nil {
			out = append(out, line)
			continue
		}

		incPath := filepath.Join(baseDir, m[1])
		absPath, err := filepath.Abs(incPath)
		if err != nil {
			return nil, atLine(line, err)
		}
		if stack[absPath] {
			return nil, atLine(line, fmt.Errorf("%w: %s", ErrIncludeCycle, absPath))
		}

		data, err := os.ReadFile(absPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, atLine(line, fmt.Errorf("%w: %s", ErrFileNotFound, absPath))
		}
		if err != nil {
			return nil, atLine(line, fmt.Errorf("failed to read included file %s: %w", absPath, err))
		}
		glog.V(2).Infof("including %s from %s", absPath, line.Pos())

		stack[absPath] = true
		sub, err := expandIncludes(SplitLines(string(data), incPath), incPath, stack)
		delete(stack, absPath)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
