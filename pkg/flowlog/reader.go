package flowlog

import (
	"FlowSentry/internal/model"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const readBufferSize = 64 * 1024

// Reader gives workers independent, seekable access to a flow-log file.
// Line start offsets are indexed once on open; every ReadRange call opens its
// own file handle, so concurrent calls never share a file position.
type Reader struct {
	path    string
	offsets []int64
}

// NewReader opens and indexes the flow log at filePath.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFileOpen, err)
	}
	defer file.Close()

	offsets, err := indexLines(file)
	if err != nil {
		return nil, fmt.Errorf("%w: indexing %s: %v", model.ErrFileOpen, filePath, err)
	}
	return &Reader{path: filePath, offsets: offsets}, nil
}

// indexLines returns the byte offset of every line start. A final line without
// a trailing newline still counts.
func indexLines(r io.Reader) ([]int64, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	var offsets []int64
	var pos int64
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			offsets = append(offsets, pos)
		}
		pos += int64(len(chunk))
		// Long lines come back in several chunks; only the first one starts a line.
		for errors.Is(err, bufio.ErrBufferFull) {
			chunk, err = br.ReadSlice('\n')
			pos += int64(len(chunk))
		}
		if err == io.EOF {
			return offsets, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Path returns the path of the underlying file.
func (r *Reader) Path() string {
	return r.path
}

// Lines returns the number of lines in the file.
func (r *Reader) Lines() int {
	return len(r.offsets)
}

// ReadRange seeks to line start and calls fn for the next count lines, with
// line endings removed. It stops early when ctx is cancelled.
func (r *Reader) ReadRange(ctx context.Context, start, count int, fn model.LineFunc) error {
	if err := checkRange(start, count, len(r.offsets)); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrFileOpen, err)
	}
	defer file.Close()

	if _, err := file.Seek(r.offsets[start], io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking to line %d: %v", model.ErrFileOpen, start, err)
	}

	br := bufio.NewReaderSize(file, readBufferSize)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return fmt.Errorf("%w: reading line %d: %v", model.ErrFileOpen, start+i, err)
		}
		if err := fn(start+i, strings.TrimRight(line, "\r\n")); err != nil {
			return err
		}
	}
	return nil
}

// Memory serves flow-log lines from a pre-split in-memory buffer.
type Memory struct {
	lines []string
}

// NewMemory splits data into lines the same way Reader indexes a file.
func NewMemory(data []byte) *Memory {
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i]))
		data = data[i+1:]
	}
	return FromLines(lines)
}

// FromLines wraps an existing slice of lines.
func FromLines(lines []string) *Memory {
	return &Memory{lines: lines}
}

// Lines returns the number of buffered lines.
func (m *Memory) Lines() int {
	return len(m.lines)
}

// ReadRange calls fn for count buffered lines starting at start.
func (m *Memory) ReadRange(ctx context.Context, start, count int, fn model.LineFunc) error {
	if err := checkRange(start, count, len(m.lines)); err != nil {
		return err
	}
	for i := start; i < start+count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, strings.TrimRight(m.lines[i], "\r\n")); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(start, count, total int) error {
	if start < 0 || count < 0 || start+count > total {
		return fmt.Errorf("line range [%d, %d) outside input of %d lines", start, start+count, total)
	}
	return nil
}
