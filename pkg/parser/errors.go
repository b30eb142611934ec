package parser

import "errors"

var (
	// ErrNotArray is returned when the root JSON value is not an array.
	ErrNotArray = errors.New("parser: root value is not an array")

	// ErrContextCanceled is returned when the context is canceled.
	ErrContextCanceled = errors.New("parser: context canceled")
)
