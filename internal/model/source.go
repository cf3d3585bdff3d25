package model

import "context"

// LineFunc is called once per line with its zero-based index in the input.
type LineFunc func(lineNo int, line string) error

// LineSource gives read-only, random access to the lines of a flow log.
// ReadRange must be safe to call from several goroutines at once.
type LineSource interface {
	// Lines returns the total number of lines in the input.
	Lines() int

	// ReadRange calls fn for count lines starting at line start, in order.
	ReadRange(ctx context.Context, start, count int, fn LineFunc) error
}
