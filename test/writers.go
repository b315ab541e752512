// This file is part of Fused.
//
// Fused is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Fused is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Fused.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"fmt"
	"strings"
)

// CompareWriter collects everything written to it.
type CompareWriter struct {
	strings.Builder
}

// Compare buffered output with the string.
func (w *CompareWriter) Compare(s string) bool {
	return w.String() == s
}

// Clear the buffered output.
func (w *CompareWriter) Clear() {
	w.Reset()
}

// RingWriter keeps the most recent bytes written to it, up to a fixed size.
type RingWriter struct {
	buffer  []byte
	cursor  int
	wrapped bool
}

// NewRingWriter is the preferred method of initialisation for RingWriter.
func NewRingWriter(size int) (*RingWriter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size for RingWriter (%d)", size)
	}
	return &RingWriter{buffer: make([]byte, size)}, nil
}

func (r *RingWriter) String() string {
	if r.wrapped {
		return string(r.buffer[r.cursor:]) + string(r.buffer[:r.cursor])
	}
	return string(r.buffer[:r.cursor])
}

// Reset empties the ring.
func (r *RingWriter) Reset() {
	r.cursor = 0
	r.wrapped = false
}

// Write implements the io.Writer interface.
func (r *RingWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n >= len(r.buffer) {
		copy(r.buffer, p[n-len(r.buffer):])
		r.cursor = 0
		r.wrapped = true
		return n, nil
	}

	c := copy(r.buffer[r.cursor:], p)
	if c < n {
		copy(r.buffer, p[c:])
		r.wrapped = true
	}
	r.cursor = (r.cursor + n) % len(r.buffer)
	if r.cursor == 0 && n > 0 {
		r.wrapped = true
	}

	return n, nil
}

// CappedWriter keeps the earliest bytes written to it, up to a fixed size.
// Anything beyond the capacity is silently dropped.
type CappedWriter struct {
	buffer []byte
}

// NewCappedWriter is the preferred method of initialisation for CappedWriter.
func NewCappedWriter(size int) (*CappedWriter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size for CappedWriter (%d)", size)
	}
	return &CappedWriter{buffer: make([]byte, 0, size)}, nil
}

func (c *CappedWriter) String() string {
	return string(c.buffer)
}

// Reset empties the buffer.
func (c *CappedWriter) Reset() {
	c.buffer = c.buffer[:0]
}

// Write implements the io.Writer interface.
func (c *CappedWriter) Write(p []byte) (int, error) {
	n := min(len(p), cap(c.buffer)-len(c.buffer))
	c.buffer = append(c.buffer, p[:n]...)
	return n, nil
}
