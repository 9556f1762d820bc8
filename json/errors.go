package json

import (
	"errors"
	"fmt"

	"github.com/freekieb7/jsondoc/buffer"
)

var (
	ErrSyntax       = errors.New("json: syntax error")
	ErrTopLevelType = errors.New("json: document root is not an object")
	ErrArgument     = errors.New("json: invalid argument")
	ErrAllocation   = buffer.ErrAllocation

	ErrTooDeep      = fmt.Errorf("%w: maximum nesting depth exceeded", ErrSyntax)
	ErrUnterminated = fmt.Errorf("%w: unterminated string", ErrSyntax)
)

// ParseError reports where parsing stopped and why.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
