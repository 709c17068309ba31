package synthesis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the text is empty or only whitespace.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrEmptyResult is returned when every segment was processed but no units were produced.
	ErrEmptyResult = errors.New("no study units were produced")
)

// SegmentError records which segment a run failed on.
type SegmentError struct {
	Index int
	Total int
	Err   error
}

// Error implements the error interface.
func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d of %d: %v", e.Index+1, e.Total, e.Err)
}

// Unwrap returns the underlying error.
func (e *SegmentError) Unwrap() error {
	return e.Err
}
