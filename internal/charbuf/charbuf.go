// Package charbuf implements a streaming character buffer over a text
// reader with unbounded look-ahead and line/column tracking.
package charbuf

import (
	"bufio"
	"io"

	mibberrors "github.com/standardbeagle/mibble-go/internal/errors"
)

const (
	blockSize     = 1024
	retainHistory = 16
)

// Buffer holds a growing window of runes fetched from an underlying reader.
// It supports unbounded forward look-ahead via Peek and bounded look-back
// via Substring. It is not safe for concurrent use.
type Buffer struct {
	file    string
	content []rune
	pos     int // index into content of the next rune to consume
	line    int // 1-based line of the next rune to consume
	col     int // 1-based column of the next rune to consume
	reader  *bufio.Reader
	err     error // sticky IoFailure, once the reader has failed
}

// New wraps r as a Buffer. file is used only to annotate errors.
func New(file string, r io.Reader) *Buffer {
	return &Buffer{
		file:   file,
		reader: bufio.NewReader(r),
		line:   1,
		col:    1,
	}
}

// Err returns the sticky I/O failure, if the underlying reader ever errored.
func (b *Buffer) Err() error { return b.err }

// fill ensures at least upto runes are buffered from pos onward, or the
// reader is exhausted. Returns false if it could not reach upto.
func (b *Buffer) fill(upto int) bool {
	for len(b.content)-b.pos < upto {
		if b.reader == nil {
			return false
		}
		r, _, err := b.reader.ReadRune()
		if err != nil {
			if err != io.EOF {
				b.err = &mibberrors.IoFailure{Underlying: err}
			}
			b.reader = nil
			return false
		}
		b.content = append(b.content, r)
	}
	return true
}

// trim drops consumed history beyond retainHistory runes once the window
// grows past blockSize, so long inputs don't retain the whole file.
func (b *Buffer) trim() {
	if b.pos <= blockSize {
		return
	}
	drop := b.pos - retainHistory
	if drop <= 0 {
		return
	}
	b.content = append([]rune(nil), b.content[drop:]...)
	b.pos -= drop
}

// Peek returns the rune at pos+offset, or -1 at end of input.
func (b *Buffer) Peek(offset int) int32 {
	if !b.fill(offset + 1) {
		if b.pos+offset >= len(b.content) {
			return -1
		}
	}
	if b.pos+offset >= len(b.content) {
		return -1
	}
	return b.content[b.pos+offset]
}

// Read consumes up to n runes starting at pos, advancing line/col, and
// returns them as a string. It returns ("", false) if no runes remain.
func (b *Buffer) Read(n int) (string, bool) {
	b.fill(n)
	avail := len(b.content) - b.pos
	if avail <= 0 {
		return "", false
	}
	if n > avail {
		n = avail
	}
	runes := b.content[b.pos : b.pos+n]
	out := string(runes)
	for _, r := range runes {
		if r == '\n' {
			b.line++
			b.col = 1
		} else {
			b.col++
		}
	}
	b.pos += n
	b.trim()
	return out, true
}

// Substring returns up to length runes of retained history/content
// starting at index, which is relative to the current pos the same way
// Peek's offset is: Substring(-k, k) looks back k runes from pos.
func (b *Buffer) Substring(index, length int) string {
	start := b.pos + index
	if start < 0 {
		start = 0
	}
	b.fill(index + length + 1)
	end := start + length
	if end > len(b.content) {
		end = len(b.content)
	}
	if start >= end {
		return ""
	}
	return string(b.content[start:end])
}

// Pos returns the current consumption index (runes consumed so far, not an
// absolute file offset once history has been trimmed).
func (b *Buffer) Pos() int { return b.pos }

// Line returns the 1-based line of the next rune to be consumed.
func (b *Buffer) Line() int { return b.line }

// Column returns the 1-based column of the next rune to be consumed.
func (b *Buffer) Column() int { return b.col }

// File returns the source name used to annotate errors.
func (b *Buffer) File() string { return b.file }

// AtEOF reports whether no further runes are available without blocking
// consumption (Peek(0) would return -1).
func (b *Buffer) AtEOF() bool {
	return b.Peek(0) == -1
}
