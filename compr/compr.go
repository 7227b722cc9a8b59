// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package compr supplies ready-made decompressors for the compression
// kinds that occur inside fig containers, wrapping the klauspost/compress
// implementations. Package figfile only defines the Decompressor interface;
// embedders who do not bring their own can wire these.
package compr

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/figtools/kiwi/figfile"
)

var zstdDecoder *zstd.Decoder

func init() {
	z, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

// Zstd decompresses a zstd frame. The shared decoder is stateless in
// DecodeAll form and safe for concurrent use.
func Zstd(src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, nil)
}

// Zlib decompresses a zlib stream (0x78 header, adler32 trailer).
func Zlib(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Deflate decompresses a raw, headerless deflate stream, the form Figma
// uses for the schema chunk.
func Deflate(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	return io.ReadAll(r)
}

// Decompressors returns the full decompressor map for figfile.Parse.
func Decompressors() map[figfile.Compression]figfile.Decompressor {
	return map[figfile.Compression]figfile.Decompressor{
		figfile.Zstd:    Zstd,
		figfile.Zlib:    Zlib,
		figfile.Deflate: Deflate,
	}
}
