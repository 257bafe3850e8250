package irc

import "bytes"

// Decoder splits an incoming byte stream into protocol lines. Bytes are
// appended with Feed and complete lines extracted with NextLine; a partial
// line at the tail persists across calls until its terminator arrives.
type Decoder struct {
	buf []byte

	// skipLF is set when the last consumed line ended in a '\r' that was the
	// final buffered byte. If the matching '\n' arrives at the head of the
	// next read it belongs to that terminator, not to the next line.
	skipLF bool
}

// Feed appends p to the internal buffer without parsing.
func (d *Decoder) Feed(p []byte) {
	if d.skipLF && len(p) > 0 {
		if p[0] == '\n' {
			p = p[1:]
		}
		d.skipLF = false
	}
	d.buf = append(d.buf, p...)
}

// NextLine extracts the next complete line from the buffer.
//
// A line ends at '\r', optionally followed by '\n'; the terminator is
// consumed but not returned. A '\r' as the very last buffered byte is a
// complete terminator. When no terminator is buffered, NextLine returns
// ("", false) and leaves the buffer untouched.
//
// One network read may carry several lines, so callers must call NextLine
// repeatedly until it reports false.
func (d *Decoder) NextLine() (string, bool) {
	cr := bytes.IndexByte(d.buf, '\r')
	if cr < 0 {
		return "", false
	}

	line := string(d.buf[:cr])

	end := cr + 1
	if end < len(d.buf) {
		if d.buf[end] == '\n' {
			end++
		}
	} else {
		d.skipLF = true
	}
	d.buf = d.buf[:copy(d.buf, d.buf[end:])]

	return line, true
}

// Pending returns the number of buffered bytes not yet consumed.
func (d *Decoder) Pending() int {
	return len(d.buf)
}
