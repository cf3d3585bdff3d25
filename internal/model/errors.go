package model

import "errors"

var (
	// ErrFileOpen is returned when the input cannot be opened or read. It aborts the run.
	ErrFileOpen = errors.New("input file unavailable")

	// ErrMalformedRecord is returned by the parser for lines that cannot become a FlowRecord.
	// Workers skip such lines and keep going.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrCapacityExceeded is returned when a per-worker IP or port limit is reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)
