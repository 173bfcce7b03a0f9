/*
Package flatbuf reads and writes flat, alignment-padded binary buffers.

Records have a fixed size and are aligned to their own size (at most 8 bytes),
arrays are prefixed by a uint32 element count, and no pointers are stored.
Because padding is determined only by the write position, a buffer written
once may be mapped read-only by several processes. Readers return views into
the backing bytes wherever the host layout permits it.

All values are stored little-endian.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package flatbuf

import (
	"encoding/binary"
	"errors"
	"math"
	"unsafe"
)

// MaxAlignment is the largest alignment a record may require.
const MaxAlignment = 8

// ErrShortBuffer is flagged when a reader runs past the end of its buffer.
var ErrShortBuffer = errors.New("flatbuf: buffer too short")

var le = binary.LittleEndian

var littleEndianHost = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

func align(pos, a int) int {
	return (pos + a - 1) &^ (a - 1)
}

// --- Writer ----------------------------------------------------------------

// Writer appends records to a growing byte slice.
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

func (w *Writer) reserve(size, a int) []byte {
	start := align(len(w.buf), a)
	for len(w.buf) < start {
		w.buf = append(w.buf, 0)
	}
	w.buf = append(w.buf, make([]byte, size)...)
	return w.buf[start : start+size]
}

// U8 writes a single byte.
func (w *Writer) U8(v uint8) {
	w.reserve(1, 1)[0] = v
}

// Bool writes a boolean as a single byte.
func (w *Writer) Bool(b bool) {
	if b {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// U16 writes a 2-byte aligned uint16.
func (w *Writer) U16(v uint16) {
	le.PutUint16(w.reserve(2, 2), v)
}

// U32 writes a 4-byte aligned uint32.
func (w *Writer) U32(v uint32) {
	le.PutUint32(w.reserve(4, 4), v)
}

// U64 writes an 8-byte aligned uint64.
func (w *Writer) U64(v uint64) {
	le.PutUint64(w.reserve(8, 8), v)
}

// F32 writes a 4-byte aligned float32.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// U8Array writes a length-prefixed byte array.
func (w *Writer) U8Array(a []uint8) {
	w.U32(uint32(len(a)))
	copy(w.reserve(len(a), 1), a)
}

// U16Array writes a length-prefixed uint16 array.
func (w *Writer) U16Array(a []uint16) {
	w.U32(uint32(len(a)))
	b := w.reserve(2*len(a), 2)
	for i, v := range a {
		le.PutUint16(b[2*i:], v)
	}
}

// U32Array writes a length-prefixed uint32 array.
func (w *Writer) U32Array(a []uint32) {
	w.U32(uint32(len(a)))
	b := w.reserve(4*len(a), 4)
	for i, v := range a {
		le.PutUint32(b[4*i:], v)
	}
}

// String writes a length-prefixed string.
func (w *Writer) String(s string) {
	w.U8Array([]byte(s))
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written buffer. The caller must not write to the
// Writer afterwards if it keeps the result.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// --- Reader ----------------------------------------------------------------

// Reader decodes records from a buffer written by Writer.
//
// Errors are sticky: after the first short read every subsequent call returns
// a zero value, and Err reports the failure.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader creates a reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(size, a int) []byte {
	if r.err != nil {
		return nil
	}
	start := align(r.pos, a)
	if size < 0 || start+size > len(r.buf) {
		r.err = ErrShortBuffer
		return nil
	}
	r.pos = start + size
	return r.buf[start:r.pos:r.pos]
}

// U8 reads a single byte.
func (r *Reader) U8() uint8 {
	if b := r.take(1, 1); b != nil {
		return b[0]
	}
	return 0
}

// Bool reads a boolean byte.
func (r *Reader) Bool() bool {
	return r.U8() != 0
}

// U16 reads a uint16.
func (r *Reader) U16() uint16 {
	if b := r.take(2, 2); b != nil {
		return le.Uint16(b)
	}
	return 0
}

// U32 reads a uint32.
func (r *Reader) U32() uint32 {
	if b := r.take(4, 4); b != nil {
		return le.Uint32(b)
	}
	return 0
}

// U64 reads a uint64.
func (r *Reader) U64() uint64 {
	if b := r.take(8, 8); b != nil {
		return le.Uint64(b)
	}
	return 0
}

// F32 reads a float32.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) count(elemSize int) int {
	n := int(r.U32())
	if r.err == nil && n*elemSize > len(r.buf)-r.pos {
		r.err = ErrShortBuffer
		return 0
	}
	return n
}

// U8Array returns a view of a length-prefixed byte array.
func (r *Reader) U8Array() []uint8 {
	n := r.count(1)
	return r.take(n, 1)
}

// U16Array reads a length-prefixed uint16 array.
func (r *Reader) U16Array() []uint16 {
	n := r.count(2)
	b := r.take(2*n, 2)
	if b == nil {
		return nil
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = le.Uint16(b[2*i:])
	}
	return out
}

// U32Array reads a length-prefixed uint32 array. On little-endian hosts with a
// suitably aligned backing buffer the result aliases the buffer and must be
// treated as read-only.
func (r *Reader) U32Array() []uint32 {
	n := r.count(4)
	b := r.take(4*n, 4)
	if b == nil || n == 0 {
		return nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%4 == 0 {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = le.Uint32(b[4*i:])
	}
	return out
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	return string(r.U8Array())
}
