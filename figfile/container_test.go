// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package figfile_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/figtools/kiwi"
	"github.com/figtools/kiwi/compr"
	"github.com/figtools/kiwi/figfile"
	"github.com/figtools/kiwi/schema"
)

const documentText = `
enum NodeType {
  Document = 0;
  Canvas = 1;
  Frame = 2;
}

struct Color {
  float r;
  float g;
  float b;
  float a;
}

message Node {
  uint id = 1;
  NodeType type = 2;
  string name = 3;
  Color background = 4;
  Node[] children = 5;
}

message Message {
  uint version = 1;
  Node root = 2;
}
`

func documentRecord() *kiwi.Record {
	background := kiwi.NewRecord().
		Set("r", kiwi.Float(0.25)).
		Set("g", kiwi.Float(0.5)).
		Set("b", kiwi.Float(0.75)).
		Set("a", kiwi.Float(1))
	child := kiwi.NewRecord().
		Set("id", kiwi.Uint(2)).
		Set("type", kiwi.String("Frame")).
		Set("name", kiwi.String("Frame 1"))
	root := kiwi.NewRecord().
		Set("id", kiwi.Uint(1)).
		Set("type", kiwi.String("Document")).
		Set("background", background).
		Set("children", kiwi.Array{child})
	return kiwi.NewRecord().
		Set("version", kiwi.Uint(42)).
		Set("root", root)
}

func deflateCompress(t *testing.T, src []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(src)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibCompress(t *testing.T, src []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(src)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdCompress(t *testing.T, src []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(src, nil)
}

// buildContainer assembles a fig container from pre-compressed chunks.
func buildContainer(t *testing.T, magic string, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(magic)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	for _, c := range chunks {
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(c)))
		buf.Write(size[:])
		buf.Write(c)
	}
	return buf.Bytes()
}

func TestParseEndToEnd(t *testing.T) {
	s, err := schema.Parse(documentText)
	require.NoError(t, err)
	schemaBin, err := schema.EncodeBinary(s)
	require.NoError(t, err)

	msg := documentRecord()
	msgBin, err := kiwi.Compile(s).Encode("Message", msg)
	require.NoError(t, err)

	preview := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	container := buildContainer(t, figfile.MagicKiwi,
		deflateCompress(t, schemaBin),
		zlibCompress(t, msgBin),
		preview,
	)

	f, err := figfile.Parse(container, compr.Decompressors())
	require.NoError(t, err)
	if diff := pretty.Diff(s.Definitions, f.Schema.Definitions); len(diff) > 0 {
		t.Fatalf("schema mismatch:\n%s", strings.Join(diff, "\n"))
	}
	require.Equal(t, msg, f.Message)
	require.Equal(t, preview, f.Preview)

	// The compiled schema is reusable for further decoding.
	again, err := f.Compiled.Encode("Message", f.Message)
	require.NoError(t, err)
	require.Equal(t, msgBin, again)
}

func TestParseZstdDataChunk(t *testing.T) {
	s, err := schema.Parse(documentText)
	require.NoError(t, err)
	schemaBin, err := schema.EncodeBinary(s)
	require.NoError(t, err)
	msgBin, err := kiwi.Compile(s).Encode("Message", documentRecord())
	require.NoError(t, err)

	container := buildContainer(t, figfile.MagicKiwi,
		deflateCompress(t, schemaBin),
		zstdCompress(t, msgBin),
	)
	f, err := figfile.Parse(container, compr.Decompressors())
	require.NoError(t, err)
	require.Equal(t, documentRecord(), f.Message)
	require.Nil(t, f.Preview)
}

func TestParseKiwieMagic(t *testing.T) {
	s, err := schema.Parse(documentText)
	require.NoError(t, err)
	schemaBin, err := schema.EncodeBinary(s)
	require.NoError(t, err)
	msgBin, err := kiwi.Compile(s).Encode("Message", documentRecord())
	require.NoError(t, err)

	container := buildContainer(t, figfile.MagicKiwi+"e",
		deflateCompress(t, schemaBin),
		zlibCompress(t, msgBin),
	)
	f, err := figfile.Parse(container, compr.Decompressors())
	require.NoError(t, err)
	require.Equal(t, documentRecord(), f.Message)
}

func TestParseMissingDecompressor(t *testing.T) {
	s, err := schema.Parse(documentText)
	require.NoError(t, err)
	schemaBin, err := schema.EncodeBinary(s)
	require.NoError(t, err)
	msgBin, err := kiwi.Compile(s).Encode("Message", documentRecord())
	require.NoError(t, err)

	container := buildContainer(t, figfile.MagicKiwi,
		deflateCompress(t, schemaBin),
		zlibCompress(t, msgBin),
	)
	_, err = figfile.Parse(container, map[figfile.Compression]figfile.Decompressor{
		figfile.Zlib: compr.Zlib,
	})
	require.ErrorIs(t, err, figfile.ErrUnsupportedCompression)
	require.Contains(t, err.Error(), "chunk 0")
}

func TestParseJamNotDecoded(t *testing.T) {
	container := buildContainer(t, figfile.MagicJam,
		[]byte{0xaa}, []byte{0xbb},
	)
	_, err := figfile.Parse(container, compr.Decompressors())
	require.ErrorIs(t, err, figfile.ErrInvalidContainer)
}
