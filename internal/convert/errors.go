package convert

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned when the target table name is blank.
var ErrEmptyTable = errors.New("table name is required")

// ParseError reports input that is not valid JSON or whose top-level value
// is not an array.
type ParseError struct {
	Offset int64 // byte offset of the failure, 0 when unknown
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Offset > 0 {
		return fmt.Sprintf("parse json at offset %d: %s", e.Offset, msg)
	}
	return "parse json: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports an array element that is not a JSON object.
type SchemaError struct {
	Index int  // zero-based position in the input array
	Got   Kind // what the element actually is
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record %d is %s, want object", e.Index, e.Got)
}

// IOError reports a failure creating or writing the output file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
