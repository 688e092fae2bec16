package asm

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error returned by the assembler wraps exactly one of
// these, so callers can use errors.Is to classify a failure.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrStructural = errors.New("structural error")
	ErrRange      = errors.New("range error")
)

var (
	ErrValue           = fmt.Errorf("%w: bad value", ErrSyntax)
	ErrBadRegister     = fmt.Errorf("%w: bad register", ErrSyntax)
	ErrUnknownMnemonic = fmt.Errorf("%w: unknown mnemonic", ErrSyntax)
	ErrOperandCount    = fmt.Errorf("%w: wrong operand count", ErrSyntax)
	ErrMacroArgs       = fmt.Errorf("%w: wrong macro argument count", ErrSyntax)

	ErrUnterminatedMacro = fmt.Errorf("%w: unterminated .macro", ErrStructural)
	ErrMacroRedefined    = fmt.Errorf("%w: macro redefined", ErrStructural)
	ErrMacroRecursion    = fmt.Errorf("%w: macro recursion too deep", ErrStructural)
	ErrDuplicateSymbol   = fmt.Errorf("%w: symbol redefined", ErrStructural)
	ErrFileNotFound      = fmt.Errorf("%w: included file not found", ErrStructural)
	ErrIncludeCycle      = fmt.Errorf("%w: include cycle", ErrStructural)

	ErrImmRange    = fmt.Errorf("%w: immediate out of range", ErrRange)
	ErrBranchRange = fmt.Errorf("%w: branch displacement out of range", ErrRange)
	ErrUnaligned   = fmt.Errorf("%w: branch target not word aligned", ErrRange)
	ErrOddOrg      = fmt.Errorf("%w: .org address must be even", ErrRange)
	ErrOrgBackward = fmt.Errorf("%w: .org moved location counter backward", ErrRange)
)

// LineError annotates an error with the source line it was raised on.
type LineError struct {
	Line Line
	Err  error
}

func (e *LineError) Error() string {
	msg := fmt.Sprintf("%s: %v\n    %s", e.Line.Pos(), e.Err, strings.TrimRight(e.Line.Source(), "\r\n"))
	if e.Line.Raw != "" {
		msg += "\n    expanded: " + strings.TrimSpace(e.Line.Text)
	}
	return msg
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// atLine wraps err with the line's context unless it already carries one.
func atLine(line Line, err error) error {
	if err == nil {
		return nil
	}
	var le *LineError
	if errors.As(err, &le) {
		return err
	}
	return &LineError{Line: line, Err: err}
}
