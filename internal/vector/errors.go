package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFoundOrSizeMismatch is returned when an array file is missing,
	// unreadable, or its byte length is not exactly rows*cols*4.
	ErrFileNotFoundOrSizeMismatch = errors.New("array file not found or size mismatch")

	// ErrInvalidShape is returned when rows or cols is not positive.
	ErrInvalidShape = errors.New("invalid array shape")

	// ErrInvalidByteOrder is returned when a byte order name is not recognized.
	ErrInvalidByteOrder = errors.New("invalid byte order")
)

// SizeError reports an array file whose length does not match its declared shape.
type SizeError struct {
	Key  string
	Rows int
	Cols int
	Want int64
	Got  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes for shape (%d, %d), got %d",
		e.Key, e.Want, e.Rows, e.Cols, e.Got)
}

// Is makes SizeError match ErrFileNotFoundOrSizeMismatch.
func (e *SizeError) Is(target error) bool {
	return target == ErrFileNotFoundOrSizeMismatch
}
