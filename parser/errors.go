package parser

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfaparser/ir/raw"
)

var (
	// ErrUnterminatedHexString is returned when the source ends inside a hex
	// string.
	ErrUnterminatedHexString = errors.New("missing closing bracket for hex string")
	// ErrStreamWithoutDict is returned when the stream keyword follows a value
	// other than a dictionary.
	ErrStreamWithoutDict = errors.New("stream not preceded by dictionary")
	// ErrCircularReference is returned when resolving an object requires the
	// object itself, for example through its own /Length.
	ErrCircularReference = errors.New("circular object reference")
	// ErrTooDeep is returned when nesting or indirection exceeds the limits.
	ErrTooDeep = errors.New("maximum depth exceeded")
)

// MalformedFileError reports a structural problem that prevents loading the
// document or one of its objects.
type MalformedFileError struct {
	Pos int64
	Err error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed PDF at offset %d: %v", e.Pos, e.Err)
}

func (e *MalformedFileError) Unwrap() error { return e.Err }

func errorf(pos int64, format string, args ...interface{}) error {
	return &MalformedFileError{Pos: pos, Err: fmt.Errorf(format, args...)}
}

// MissingLengthError is returned for a stream dictionary without /Length.
type MissingLengthError struct {
	Ref raw.ObjectRef
	Pos int64
}

func (e *MissingLengthError) Error() string {
	return fmt.Sprintf("missing length for stream %d %d at offset %d", e.Ref.Num, e.Ref.Gen, e.Pos)
}
