package query

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFilter is the root cause of every filter construction or
	// parse failure.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnsupportedComparison is returned when building EXISTS / NOT_EXISTS.
	ErrUnsupportedComparison = errors.New("unsupported comparison")
	// ErrMalformedRange marks range bounds that cannot be parsed for the item
	// type under test. It is logged, never returned from evaluation.
	ErrMalformedRange = errors.New("malformed range")
)

type defaultFilterError struct{}

func (defaultFilterError) Cause() error { return ErrInvalidFilter }

func (defaultFilterError) Unwrap() error { return ErrInvalidFilter }

// UnknownComparisonError is returned for a comparison token that names no
// operator.
type UnknownComparisonError struct {
	Name string
	defaultFilterError
}

func (e *UnknownComparisonError) Error() string {
	return fmt.Sprintf("unknown comparison %q", e.Name)
}

// UnknownOperatorError is returned for a filter set operator that is not
// AND, OR or NOT.
type UnknownOperatorError struct {
	Name string
	defaultFilterError
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown filter set operator %q", e.Name)
}

// UnknownOrderError is returned for a sort direction other than asc/desc.
type UnknownOrderError struct {
	Name string
	defaultFilterError
}

func (e *UnknownOrderError) Error() string {
	return fmt.Sprintf("unknown sort order %q", e.Name)
}
