package mapping

import "fmt"

// CompileError reports a malformed mapping expression. Pos is the byte
// offset into the normalized (lower-cased, trimmed) source.
type CompileError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("mapping: %s at offset %d in %q", e.Msg, e.Pos, e.Source)
}

func errorf(src string, pos int, format string, args ...any) *CompileError {
	return &CompileError{Source: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
