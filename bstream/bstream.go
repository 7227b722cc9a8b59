// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package bstream implements the byte-level primitives of the kiwi wire
// format: variable-length unsigned integers, zigzag-encoded signed integers,
// rotated-and-packed 32-bit floats, length-prefixed byte arrays, and
// NUL-terminated strings. All multi-byte quantities are little-endian.
//
// These primitives are shared by the binary schema codec and by compiled
// schemas; they are not useful on their own for reading kiwi data without a
// schema.
package bstream

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrTruncated indicates a read past the end of the source buffer.
var ErrTruncated = errors.New("kiwi: truncated input")

// ErrInvalidString indicates an attempt to encode a string containing a NUL
// code point. Strings are NUL-terminated on the wire, so an embedded NUL
// cannot round-trip.
var ErrInvalidString = errors.New("kiwi: string contains NUL byte")

// canonicalNaN is the bit pattern written for any NaN input so that NaN
// encoding is deterministic regardless of the input's sign and payload bits.
const canonicalNaN = 0x7FC00000

// A Reader decodes wire primitives from a byte slice. The Reader never
// modifies the slice, and every decoded byte-array or string payload is an
// owned copy, so the source buffer may be reused as soon as a call returns.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current read position, in bytes from the start of the
// source buffer.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, errors.Wrapf(ErrTruncated, "offset %d", r.off)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

// ReadBool reads a single byte and interprets any non-zero value as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadUvarint reads a base-128 varint as a 32-bit unsigned value. Each byte
// carries 7 payload bits plus a continuation bit; at most 5 bytes are
// consumed, and payload bits beyond the 32nd are discarded.
func (r *Reader) ReadUvarint() (uint32, error) {
	var v uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

// ReadVarint reads a zigzag-encoded signed 32-bit value.
func (r *Reader) ReadVarint() (int32, error) {
	u, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if u&1 != 0 {
		return ^int32(u >> 1), nil
	}
	return int32(u >> 1), nil
}

// ReadUvarint64 reads a base-128 varint as a 64-bit unsigned value. At most
// 10 bytes are consumed.
func (r *Reader) ReadUvarint64() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 70; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

// ReadVarint64 reads a zigzag-encoded signed 64-bit value.
func (r *Reader) ReadVarint64() (int64, error) {
	u, err := r.ReadUvarint64()
	if err != nil {
		return 0, err
	}
	if u&1 != 0 {
		return ^int64(u >> 1), nil
	}
	return int64(u >> 1), nil
}

// ReadVarfloat reads a packed 32-bit float. A single 0x00 byte decodes to
// zero; any other leading byte begins a 4-byte little-endian rotated bit
// pattern (see Writer.PutVarfloat).
func (r *Reader) ReadVarfloat() (float32, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if first == 0 {
		return 0, nil
	}
	if r.Remaining() < 3 {
		return 0, errors.Wrapf(ErrTruncated, "offset %d", r.off)
	}
	rotated := uint32(first) |
		uint32(r.data[r.off])<<8 |
		uint32(r.data[r.off+1])<<16 |
		uint32(r.data[r.off+2])<<24
	r.off += 3
	bits := rotated<<23 | rotated>>9
	return math.Float32frombits(bits), nil
}

// ReadByteArray reads a varuint length prefix followed by that many raw
// bytes. The returned slice is a copy, never a view into the source buffer.
func (r *Reader) ReadByteArray() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Remaining()) {
		return nil, errors.Wrapf(ErrTruncated, "offset %d: byte array of length %d exceeds remaining %d", r.off, n, r.Remaining())
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:])
	r.off += int(n)
	return out, nil
}

// ReadString reads UTF-8 bytes up to (and consuming) a single 0x00
// terminator. A missing terminator is a truncation error.
func (r *Reader) ReadString() (string, error) {
	i := r.off
	for i < len(r.data) && r.data[i] != 0 {
		i++
	}
	if i == len(r.data) {
		return "", errors.Wrapf(ErrTruncated, "offset %d: unterminated string", r.off)
	}
	s := string(r.data[r.off:i])
	r.off = i + 1
	return s, nil
}

// A Writer encodes wire primitives into a growable byte buffer. The zero
// value is ready to use.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded bytes. The slice aliases the Writer's buffer and
// is invalidated by further writes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset discards all written bytes but retains the backing buffer.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// grow extends the logical buffer by n bytes, doubling the backing array as
// needed, and returns the span to fill.
func (w *Writer) grow(n int) []byte {
	l := len(w.buf)
	if l+n > cap(w.buf) {
		c := 2 * cap(w.buf)
		if c < l+n {
			c = l + n
		}
		if c < 64 {
			c = 64
		}
		buf := make([]byte, l, c)
		copy(buf, w.buf)
		w.buf = buf
	}
	w.buf = w.buf[: l+n : cap(w.buf)]
	return w.buf[l:]
}

// PutByte writes a single byte.
func (w *Writer) PutByte(b byte) {
	w.grow(1)[0] = b
}

// PutBool writes a bool as a single 0x00 or 0x01 byte.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutByte(1)
	} else {
		w.PutByte(0)
	}
}

// PutUvarint writes v as a base-128 varint, 7 payload bits per byte with
// the high bit as a continuation flag.
func (w *Writer) PutUvarint(v uint32) {
	for v >= 0x80 {
		w.PutByte(byte(v) | 0x80)
		v >>= 7
	}
	w.PutByte(byte(v))
}

// PutVarint writes v using the zigzag mapping over PutUvarint, keeping
// small magnitudes of either sign compact.
func (w *Writer) PutVarint(v int32) {
	w.PutUvarint(uint32(v<<1) ^ uint32(v>>31))
}

// PutUvarint64 is the 64-bit analogue of PutUvarint.
func (w *Writer) PutUvarint64(v uint64) {
	for v >= 0x80 {
		w.PutByte(byte(v) | 0x80)
		v >>= 7
	}
	w.PutByte(byte(v))
}

// PutVarint64 is the 64-bit analogue of PutVarint.
func (w *Writer) PutVarint64(v int64) {
	w.PutUvarint64(uint64(v<<1) ^ uint64(v>>63))
}

// PutVarfloat writes a packed 32-bit float. The float's bit pattern is
// rotated so that the sign and exponent land in the low 9 bits; if the low
// byte of the rotated pattern is zero (exactly when the exponent field is
// zero, i.e. the value is zero or subnormal) a single 0x00 byte is written
// and subnormal precision is lost. Otherwise the 4 rotated bytes are written
// little-endian. Any NaN input is replaced by the canonical quiet NaN so
// that encoding is deterministic.
func (w *Writer) PutVarfloat(f float32) {
	bits := math.Float32bits(f)
	if f != f {
		bits = canonicalNaN
	}
	rotated := bits>>23 | bits<<9
	if rotated&0xff == 0 {
		w.PutByte(0)
		return
	}
	b := w.grow(4)
	b[0] = byte(rotated)
	b[1] = byte(rotated >> 8)
	b[2] = byte(rotated >> 16)
	b[3] = byte(rotated >> 24)
}

// PutByteArray writes a varuint length prefix followed by the raw bytes.
func (w *Writer) PutByteArray(b []byte) {
	w.PutUvarint(uint32(len(b)))
	copy(w.grow(len(b)), b)
}

// PutString writes the UTF-8 bytes of s followed by a 0x00 terminator.
// A string containing a NUL code point cannot be represented and fails with
// ErrInvalidString.
func (w *Writer) PutString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return errors.Wrapf(ErrInvalidString, "%q", s)
	}
	copy(w.grow(len(s)), s)
	w.PutByte(0)
	return nil
}
