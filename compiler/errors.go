package compiler

import "fmt"

// CompileError describes one source error with its span. Line is 1-based;
// Start is the 0-based byte offset of the offending span and Len its
// length in bytes.
type CompileError struct {
	Line    int
	Start   int
	Len     int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
