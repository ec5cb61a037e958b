package stream

import "bytes"

// LineScanner splits a byte stream into newline-terminated lines. Bytes after
// the last newline are held back until a later Feed completes them.
type LineScanner struct {
	pending []byte
}

// Feed appends chunk to the pending fragment and returns every line that is
// now complete, without its terminating newline. Returned slices may alias
// chunk and are only valid until the next call.
func (s *LineScanner) Feed(chunk []byte) [][]byte {
	var lines [][]byte
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			s.pending = append(s.pending, chunk...)
			break
		}

		line := chunk[:i]
		if len(s.pending) > 0 {
			line = append(s.pending, line...)
			s.pending = nil
		}
		lines = append(lines, line)
		chunk = chunk[i+1:]
	}

	return lines
}

// Pending returns the unterminated fragment currently held by the scanner.
func (s *LineScanner) Pending() []byte {
	return s.pending
}

// Flush returns the unterminated fragment, if any, and resets the scanner.
// Nothing calls it implicitly: a stream that ends without a trailing newline
// loses its last fragment unless the caller flushes.
func (s *LineScanner) Flush() ([]byte, bool) {
	if len(s.pending) == 0 {
		return nil, false
	}

	line := s.pending
	s.pending = nil
	return line, true
}
