// Package binio reads and writes the little-endian records used by the map,
// region and model files.
package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Reader decodes values from a byte slice. The first failure is sticky: later
// reads return zero values and Err reports the original error.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader wraps data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decoding error.
func (r *Reader) Err() error {
	return r.err
}

// Offset is the current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Len is the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

// Seek moves the read position to off.
func (r *Reader) Seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.data) {
		r.err = fmt.Errorf("seek to %d of %d: %w", off, len(r.data), io.ErrUnexpectedEOF)
		return
	}
	r.off = off
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("read %d bytes at offset %d: %w", n, r.off, io.ErrUnexpectedEOF)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Skip advances over n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Vec3 reads three floats.
func (r *Reader) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.F32(), r.F32(), r.F32()}
}

// FixedString reads an n-byte NUL padded string.
func (r *Reader) FixedString(n int) string {
	b := r.take(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// String reads a u32 length followed by that many bytes.
func (r *Reader) String() string {
	n := r.U32()
	if r.err != nil {
		return ""
	}
	if int64(n) > int64(r.Len()) {
		r.err = fmt.Errorf("string of %d bytes at offset %d: %w", n, r.off, io.ErrUnexpectedEOF)
		return ""
	}
	return string(r.take(int(n)))
}

// Count reads a u32 element count and checks that at least elemSize*count
// bytes remain, so corrupt counts fail before allocating.
func (r *Reader) Count(elemSize int) int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	if int64(n)*int64(elemSize) > int64(r.Len()) {
		r.err = fmt.Errorf("count %d at offset %d exceeds remaining %d bytes: %w", n, r.off, r.Len(), io.ErrUnexpectedEOF)
		return 0
	}
	return int(n)
}
