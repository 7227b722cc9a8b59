// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/figtools/kiwi/bstream"
)

// The binary schema format is self-hosted on the wire primitives:
//
//	varuint definitionCount
//	per definition:
//	  string  name
//	  byte    kind (0 enum, 1 struct, 2 message)
//	  varuint fieldCount
//	  per field:
//	    string  name
//	    varint  typeCode
//	    byte    flags (bit 0: isArray)
//	    varuint id
//
// A negative typeCode is the bitwise complement of an index into the native
// type table; a non-negative typeCode is a 0-based index into the
// definitions array, which permits self- and forward-references. Enum
// members carry a placeholder typeCode of 0 that decoding ignores.

// EncodeBinary encodes the schema in the binary schema format. The package
// name has no binary representation and is dropped.
func EncodeBinary(s *Schema) ([]byte, error) {
	index := make(map[string]int, len(s.Definitions))
	for i := range s.Definitions {
		index[s.Definitions[i].Name] = i
	}

	var w bstream.Writer
	w.PutUvarint(uint32(len(s.Definitions)))
	for i := range s.Definitions {
		d := &s.Definitions[i]
		if err := w.PutString(d.Name); err != nil {
			return nil, err
		}
		w.PutByte(byte(d.Kind))
		w.PutUvarint(uint32(len(d.Fields)))
		for fi := range d.Fields {
			f := &d.Fields[fi]
			if err := w.PutString(f.Name); err != nil {
				return nil, err
			}
			code, err := typeCode(d, f, index)
			if err != nil {
				return nil, err
			}
			w.PutVarint(code)
			var flags byte
			if f.IsArray {
				flags |= 1
			}
			w.PutByte(flags)
			w.PutUvarint(f.ID)
		}
	}
	return w.Bytes(), nil
}

func typeCode(d *Definition, f *Field, index map[string]int) (int32, error) {
	if d.Kind == EnumKind {
		return 0, nil
	}
	if n := nativeTypeIndex(f.Type); n >= 0 {
		return ^int32(n), nil
	}
	i, ok := index[f.Type]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownType, "%s.%s references undefined type %q", d.Name, f.Name, f.Type)
	}
	return int32(i), nil
}

// DecodeBinary decodes a binary-encoded schema. Decoding is two-pass: the
// first pass materializes every definition and field with its raw type
// code, and the second resolves each code against the now-complete
// definitions array. Binary schemas are not run through the text
// verifier.
func DecodeBinary(data []byte) (*Schema, error) {
	r := bstream.NewReader(data)
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}

	// The definition and field counts are read from untrusted input, so the
	// slices grow as bytes are actually consumed rather than being sized up
	// front.
	var defs []Definition
	var codes [][]int32
	for i := uint32(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if kind > byte(MessageKind) {
			return nil, errors.Wrapf(ErrUnknownType, "offset %d: invalid definition kind %d", r.Offset()-1, kind)
		}
		fieldCount, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		def := Definition{Name: name, Kind: Kind(kind)}
		var defCodes []int32
		for fi := uint32(0); fi < fieldCount; fi++ {
			var f Field
			if f.Name, err = r.ReadString(); err != nil {
				return nil, err
			}
			code, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			flags, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			f.IsArray = flags&1 != 0
			if f.ID, err = r.ReadUvarint(); err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, f)
			defCodes = append(defCodes, code)
		}
		defs = append(defs, def)
		codes = append(codes, defCodes)
	}

	for di := range defs {
		d := &defs[di]
		if d.Kind == EnumKind {
			continue
		}
		for fi := range d.Fields {
			code := codes[di][fi]
			if code < 0 {
				idx := int(^code)
				if idx >= len(nativeTypes) {
					return nil, errors.Wrapf(ErrUnknownType, "%s.%s: native type index %d out of range", d.Name, d.Fields[fi].Name, idx)
				}
				d.Fields[fi].Type = nativeTypes[idx]
			} else {
				if int(code) >= len(defs) {
					return nil, errors.Wrapf(ErrUnknownType, "%s.%s: type index %d out of range", d.Name, d.Fields[fi].Name, code)
				}
				d.Fields[fi].Type = defs[code].Name
			}
		}
	}
	return &Schema{Definitions: defs}, nil
}
