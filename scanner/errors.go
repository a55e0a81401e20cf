package scanner

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfSource is returned by every read that runs past the end of the
// source. It wraps io.EOF so callers may test for either.
var ErrEndOfSource = fmt.Errorf("scanner: end of source: %w", io.EOF)

// ErrSyntax is wrapped by *SyntaxError.
var ErrSyntax = errors.New("scanner: syntax error")

// BoundsError reports a cursor move outside the readable range.
type BoundsError struct {
	Pos    int64 // cursor position when the move was requested
	Target int64 // requested position
	Limit  int64 // lowest reachable position
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("scanner: cannot move from %d to %d (lowest reachable %d)", e.Pos, e.Target, e.Limit)
}

// SyntaxError describes an unexpected byte sequence.
type SyntaxError struct {
	Pos  int64
	Want string
	Got  string
}

func (e *SyntaxError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("scanner: expected %s at offset %d", e.Want, e.Pos)
	}
	return fmt.Sprintf("scanner: expected %s at offset %d, found %q", e.Want, e.Pos, e.Got)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
