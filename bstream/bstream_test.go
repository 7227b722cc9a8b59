// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package bstream

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestUvarint(t *testing.T) {
	cases := []struct {
		v       uint32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{1 << 21, []byte{0x80, 0x80, 0x80, 0x01}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, c := range cases {
		var w Writer
		w.PutUvarint(c.v)
		require.Equal(t, c.encoded, w.Bytes(), "value %d", c.v)

		r := NewReader(w.Bytes())
		got, err := r.ReadUvarint()
		require.NoError(t, err)
		require.Equal(t, c.v, got)
		require.Equal(t, 0, r.Remaining())
	}
}

func TestVarint(t *testing.T) {
	cases := []struct {
		v       int32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x01}},
		{1, []byte{0x02}},
		{-2, []byte{0x03}},
		{63, []byte{0x7e}},
		{-64, []byte{0x7f}},
		{64, []byte{0x80, 0x01}},
		{math.MaxInt32, []byte{0xfe, 0xff, 0xff, 0xff, 0x0f}},
		{math.MinInt32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, c := range cases {
		var w Writer
		w.PutVarint(c.v)
		require.Equal(t, c.encoded, w.Bytes(), "value %d", c.v)

		r := NewReader(w.Bytes())
		got, err := r.ReadVarint()
		require.NoError(t, err)
		require.Equal(t, c.v, got)
	}
}

func TestVarint64(t *testing.T) {
	for _, v := range []int64{
		0, 1, -1, math.MaxInt32, math.MinInt32,
		math.MaxInt64, math.MinInt64, 1 << 40, -(1 << 40),
	} {
		var w Writer
		w.PutVarint64(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarint64()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	var w Writer
	w.PutUvarint64(math.MaxUint64)
	r := NewReader(w.Bytes())
	got, err := r.ReadUvarint64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got)
}

func TestVarintRandomRoundTrip(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	var w Writer
	for i := 0; i < 10000; i++ {
		w.Reset()
		u32 := rng.Uint32()
		i32 := int32(rng.Uint32())
		u64 := rng.Uint64()
		i64 := int64(rng.Uint64())
		w.PutUvarint(u32)
		w.PutVarint(i32)
		w.PutUvarint64(u64)
		w.PutVarint64(i64)

		r := NewReader(w.Bytes())
		gu32, err := r.ReadUvarint()
		require.NoError(t, err)
		gi32, err := r.ReadVarint()
		require.NoError(t, err)
		gu64, err := r.ReadUvarint64()
		require.NoError(t, err)
		gi64, err := r.ReadVarint64()
		require.NoError(t, err)
		require.Equal(t, u32, gu32)
		require.Equal(t, i32, gi32)
		require.Equal(t, u64, gu64)
		require.Equal(t, i64, gi64)
		require.Equal(t, 0, r.Remaining())
	}
}

func TestVarfloatZero(t *testing.T) {
	var w Writer
	w.PutVarfloat(0)
	require.Equal(t, []byte{0x00}, w.Bytes())

	// Negative zero and subnormals share the one-byte fast path and decode
	// as positive zero.
	w.Reset()
	w.PutVarfloat(math.Float32frombits(0x80000000))
	require.Equal(t, []byte{0x00}, w.Bytes())

	w.Reset()
	w.PutVarfloat(math.SmallestNonzeroFloat32)
	require.Equal(t, []byte{0x00}, w.Bytes())

	r := NewReader([]byte{0x00})
	got, err := r.ReadVarfloat()
	require.NoError(t, err)
	require.Equal(t, float32(0), got)
	require.Equal(t, uint32(0), math.Float32bits(got))
}

func TestVarfloatRoundTrip(t *testing.T) {
	for _, f := range []float32{
		1, -1, 0.5, 1.5, -1.5, float32(math.Pi),
		math.MaxFloat32, -math.MaxFloat32,
		float32(math.Inf(1)), float32(math.Inf(-1)),
	} {
		var w Writer
		w.PutVarfloat(f)
		require.Equal(t, 4, w.Len(), "value %v", f)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarfloat()
		require.NoError(t, err)
		require.Equal(t, math.Float32bits(f), math.Float32bits(got), "value %v", f)
	}
}

func TestVarfloatNaN(t *testing.T) {
	// Every NaN input encodes as the canonical quiet NaN 0x7FC00000, which
	// rotates to 0x800000FF.
	for _, bits := range []uint32{0x7FC00000, 0xFFC00000, 0x7F800001, 0xFF912345} {
		var w Writer
		w.PutVarfloat(math.Float32frombits(bits))
		require.Equal(t, []byte{0xff, 0x00, 0x00, 0x80}, w.Bytes(), "bits %08x", bits)

		r := NewReader(w.Bytes())
		got, err := r.ReadVarfloat()
		require.NoError(t, err)
		require.True(t, math.IsNaN(float64(got)))
	}
}

func TestVarfloatRandomRoundTrip(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	var w Writer
	for i := 0; i < 10000; i++ {
		bits := rng.Uint32()
		if bits&0x7F800000 == 0 {
			// Zero or subnormal: collapsed by the fast path.
			continue
		}
		f := math.Float32frombits(bits)
		if math.IsNaN(float64(f)) {
			continue
		}
		w.Reset()
		w.PutVarfloat(f)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarfloat()
		require.NoError(t, err)
		require.Equal(t, bits, math.Float32bits(got))
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{"", "a", "hello", "héllo \U0001f34f"} {
		var w Writer
		require.NoError(t, w.PutString(s))
		r := NewReader(w.Bytes())
		got, err := r.ReadString()
		require.NoError(t, err)
		require.Equal(t, s, got)
		require.Equal(t, 0, r.Remaining())
	}
}

func TestStringEmbeddedNUL(t *testing.T) {
	var w Writer
	err := w.PutString("a\x00b")
	require.ErrorIs(t, err, ErrInvalidString)
}

func TestStringStopsAtTerminator(t *testing.T) {
	r := NewReader([]byte{'h', 'i', 0x00, 'x'})
	got, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "hi", got)
	require.Equal(t, 1, r.Remaining())
}

func TestByteArray(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	var w Writer
	w.PutByteArray(src)
	require.Equal(t, []byte{0x05, 1, 2, 3, 4, 5}, w.Bytes())

	r := NewReader(w.Bytes())
	got, err := r.ReadByteArray()
	require.NoError(t, err)
	require.Equal(t, src, got)

	// The decoded slice is a copy, not a view into the source buffer.
	w.Bytes()[1] = 0xff
	require.Equal(t, byte(1), got[0])
}

func TestBool(t *testing.T) {
	var w Writer
	w.PutBool(true)
	w.PutBool(false)
	require.Equal(t, []byte{0x01, 0x00}, w.Bytes())

	r := NewReader(w.Bytes())
	v, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, v)
	v, err = r.ReadBool()
	require.NoError(t, err)
	require.False(t, v)
}

func TestTruncated(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		read func(*Reader) error
	}{
		{"byte", nil, func(r *Reader) error { _, err := r.ReadByte(); return err }},
		{"uvarint", []byte{0x80}, func(r *Reader) error { _, err := r.ReadUvarint(); return err }},
		{"varfloat", []byte{0x01, 0x02}, func(r *Reader) error { _, err := r.ReadVarfloat(); return err }},
		{"string", []byte{'h', 'i'}, func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"byte-array", []byte{0x05, 1, 2}, func(r *Reader) error { _, err := r.ReadByteArray(); return err }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.ErrorIs(t, c.read(NewReader(c.data)), ErrTruncated)
		})
	}
}

func TestWriterGrowth(t *testing.T) {
	var w Writer
	for i := 0; i < 1000; i++ {
		w.PutUvarint(uint32(i))
	}
	r := NewReader(w.Bytes())
	for i := 0; i < 1000; i++ {
		v, err := r.ReadUvarint()
		require.NoError(t, err)
		require.Equal(t, uint32(i), v)
	}
	require.Equal(t, 0, r.Remaining())
}
