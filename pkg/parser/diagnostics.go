package parser

import (
	"errors"
	"fmt"
)

// SyntaxError includes a message plus a best-effort source location.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
	// Incomplete is set when the input ended before the construct did, so
	// more input could make it parse.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	if e.Line <= 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Line, e.Column)
}

func unexpected(tok Token, expected string) *SyntaxError {
	return &SyntaxError{
		Message:    fmt.Sprintf("parser: syntax error: expected %s, found %s", expected, tok.describe()),
		Line:       tok.Line,
		Column:     tok.Col,
		Incomplete: tok.Type == EOF,
	}
}

// IsIncomplete reports whether err is a syntax error caused by input ending
// early.
func IsIncomplete(err error) bool {
	var syn *SyntaxError
	return errors.As(err, &syn) && syn.Incomplete
}
