// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package figfile parses the chunked container format of fig files.
//
// A container is a magic header, padding up to a 4-byte boundary, and then
// up to three chunks, each a little-endian uint32 size followed by that
// many payload bytes. Chunk 0 holds a compressed binary-encoded kiwi
// schema, chunk 1 the schema-encoded message data, and an optional chunk 2
// a preview image. This package frames chunks and sniffs their compression
// but never decompresses anything itself: decompressors are injected by the
// caller (package compr supplies ready-made ones).
package figfile

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/figtools/kiwi"
	"github.com/figtools/kiwi/schema"
)

// ErrInvalidContainer indicates a bad magic header, a malformed chunk, or
// fewer than the two mandatory chunks.
var ErrInvalidContainer = errors.New("kiwi: invalid container format")

// ErrUnsupportedCompression indicates that no decompressor was supplied
// for the compression kind detected on a mandatory chunk.
var ErrUnsupportedCompression = errors.New("kiwi: unsupported compression")

const (
	// MagicKiwi is the fig file magic. A 9-byte variant with a trailing
	// 'e' also occurs in the wild and is consumed as part of the header.
	MagicKiwi = "fig-kiwi"
	// MagicJam is the sibling magic of FigJam files. The container frames
	// identically but this package does not decode the body further.
	MagicJam = "fig-jam."
)

// maxChunks caps chunk collection: schema, data, and an optional preview.
const maxChunks = 3

// Compression is the per-chunk compression kind, detected from the first
// bytes of the chunk payload.
type Compression uint8

const (
	// Unknown marks a chunk whose payload matches no known compression
	// signature.
	Unknown Compression = iota
	// Zstd payloads start with the frame magic 0x28 0xB5 0x2F 0xFD.
	Zstd
	// Zlib payloads start with 0x78 followed by 0x01, 0x9C, or 0xDA.
	Zlib
	// Deflate marks a raw, headerless deflate stream. It cannot be sniffed
	// and is assumed for the schema chunk, which Figma writes without a
	// header.
	Deflate
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case Zlib:
		return "zlib"
	case Deflate:
		return "deflate"
	}
	return "unknown"
}

// A Decompressor inflates a chunk payload. Implementations are supplied by
// the embedding application; this package performs no decompression.
type Decompressor func(data []byte) ([]byte, error)

// Header describes the container's magic.
type Header struct {
	Magic string
}

// A Chunk is one length-prefixed span of the container.
type Chunk struct {
	// Offset is the position of the payload within the container, after
	// the 4-byte size prefix.
	Offset int
	// Data aliases the container buffer.
	Data []byte
	// Compression is the sniffed compression kind of the payload.
	Compression Compression
}

// Structure is the framing of a container: the header and the located
// chunks, before any decompression or decoding.
type Structure struct {
	Header Header
	Chunks []Chunk
}

// A File is a fully parsed container.
type File struct {
	// Schema is the decoded schema from chunk 0.
	Schema *schema.Schema
	// Compiled is Schema compiled for decoding, reusable for any further
	// message decoding the caller wants to do.
	Compiled *kiwi.CompiledSchema
	// Message is chunk 1 decoded as the schema's "Message" type.
	Message *kiwi.Record
	// Preview is the raw, optional third chunk.
	Preview []byte
}

// rootType names the message type every fig schema encodes its document
// as.
const rootType = "Message"

// ParseStructure frames a container without decompressing or decoding
// anything, for lightweight inspection. Chunk data aliases data.
//
// Chunk collection stops at the first zero size, at a size overrunning the
// buffer, when fewer than 4 bytes remain, or after three chunks. Fewer
// than two chunks is an error: the schema and data chunks are mandatory.
func ParseStructure(data []byte) (*Structure, error) {
	if len(data) < len(MagicKiwi) {
		return nil, errors.Wrapf(ErrInvalidContainer, "%d-byte input is shorter than the magic", len(data))
	}
	magic := string(data[:8])
	off := 8
	switch magic {
	case MagicKiwi:
		if len(data) > off && data[off] == 'e' {
			magic += "e"
			off++
		}
	case MagicJam:
	default:
		return nil, errors.Wrapf(ErrInvalidContainer, "bad magic %q", magic)
	}
	off = (off + 3) &^ 3

	var chunks []Chunk
	for len(chunks) < maxChunks && len(data)-off >= 4 {
		size := binary.LittleEndian.Uint32(data[off:])
		if size == 0 {
			break
		}
		off += 4
		if uint64(size) > uint64(len(data)-off) {
			break
		}
		payload := data[off : off+int(size)]
		chunks = append(chunks, Chunk{
			Offset:      off,
			Data:        payload,
			Compression: sniffCompression(len(chunks), payload),
		})
		off += int(size)
	}
	if len(chunks) < 2 {
		return nil, errors.Wrapf(ErrInvalidContainer, "found %d chunks, need schema and data chunks", len(chunks))
	}
	return &Structure{Header: Header{Magic: magic}, Chunks: chunks}, nil
}

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// sniffCompression inspects at most the first 4 payload bytes. The schema
// chunk (index 0) defaults to raw deflate: Figma never writes a header on
// it, so there is nothing to sniff.
func sniffCompression(index int, payload []byte) Compression {
	if bytes.HasPrefix(payload, zstdMagic) {
		return Zstd
	}
	if len(payload) >= 2 && payload[0] == 0x78 &&
		(payload[1] == 0x01 || payload[1] == 0x9C || payload[1] == 0xDA) {
		return Zlib
	}
	if index == 0 {
		return Deflate
	}
	return Unknown
}

// Parse parses a complete fig container: it frames the chunks, inflates
// the schema and data chunks with the matching caller-supplied
// decompressors, decodes the binary schema, compiles it, and decodes the
// data chunk as the schema's "Message" type.
func Parse(data []byte, decompressors map[Compression]Decompressor) (*File, error) {
	st, err := ParseStructure(data)
	if err != nil {
		return nil, err
	}
	if st.Header.Magic == MagicJam {
		return nil, errors.Wrapf(ErrInvalidContainer, "%q containers are recognized but not decoded", MagicJam)
	}

	inflated := make([][]byte, 2)
	for i := 0; i < 2; i++ {
		chunk := st.Chunks[i]
		d := decompressors[chunk.Compression]
		if d == nil {
			return nil, errors.Wrapf(ErrUnsupportedCompression, "chunk %d is %s", i, chunk.Compression)
		}
		if inflated[i], err = d(chunk.Data); err != nil {
			return nil, errors.Wrapf(err, "inflating chunk %d (%s)", i, chunk.Compression)
		}
	}

	s, err := schema.DecodeBinary(inflated[0])
	if err != nil {
		return nil, errors.Wrap(err, "decoding schema chunk")
	}
	compiled := kiwi.Compile(s)
	msg, err := compiled.Decode(rootType, inflated[1])
	if err != nil {
		return nil, errors.Wrap(err, "decoding data chunk")
	}

	f := &File{Schema: s, Compiled: compiled, Message: msg}
	if len(st.Chunks) > 2 {
		f.Preview = st.Chunks[2].Data
	}
	return f, nil
}
