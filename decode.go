// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package kiwi

import (
	"github.com/cockroachdb/errors"

	"github.com/figtools/kiwi/bstream"
	"github.com/figtools/kiwi/schema"
)

// Decode decodes data as the named struct or message. Decoding is a single
// streaming pass: values are materialized directly into the result record
// as the cursor advances, so memory scales with the payload, not with any
// auxiliary structure. Decoded strings and byte arrays are owned copies;
// data may be reused as soon as Decode returns.
//
// Signed and 64-bit integer fields decode as Int, unsigned ones (including
// byte) as Uint, enum fields as the member name String.
func (c *CompiledSchema) Decode(typeName string, data []byte) (*Record, error) {
	def, err := c.codecDef(typeName)
	if err != nil {
		return nil, err
	}
	return c.decodeRecord(bstream.NewReader(data), def)
}

func (c *CompiledSchema) decodeRecord(r *bstream.Reader, def *schema.Definition) (*Record, error) {
	rec := NewRecord()
	switch def.Kind {
	case schema.StructKind:
		for i := range def.Fields {
			f := &def.Fields[i]
			v, err := c.decodeField(r, def, f)
			if err != nil {
				return nil, err
			}
			rec.Set(f.Name, v)
		}
	case schema.MessageKind:
		fields := c.byID[def.Name]
		for {
			id, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			if id == 0 {
				break
			}
			f, ok := fields[id]
			if !ok {
				return nil, errors.Wrapf(ErrUnknownField, "offset %d: message %s has no field id %d", r.Offset(), def.Name, id)
			}
			v, err := c.decodeField(r, def, f)
			if err != nil {
				return nil, err
			}
			// A deprecated field's payload is still decoded in full to
			// advance the cursor, but it is omitted from the result.
			if !f.IsDeprecated {
				rec.Set(f.Name, v)
			}
		}
	}
	return rec, nil
}

func (c *CompiledSchema) decodeField(r *bstream.Reader, def *schema.Definition, f *schema.Field) (Value, error) {
	if f.IsArray {
		if f.Type == "byte" {
			b, err := r.ReadByteArray()
			if err != nil {
				return nil, err
			}
			return Bytes(b), nil
		}
		n, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		// The count comes from untrusted input; grow as elements decode.
		arr := Array{}
		for i := uint32(0); i < n; i++ {
			el, err := c.decodeScalar(r, def, f)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
		return arr, nil
	}
	return c.decodeScalar(r, def, f)
}

func (c *CompiledSchema) decodeScalar(r *bstream.Reader, def *schema.Definition, f *schema.Field) (Value, error) {
	switch f.Type {
	case "bool":
		v, err := r.ReadBool()
		return Bool(v), err
	case "byte":
		v, err := r.ReadByte()
		return Uint(v), err
	case "int":
		v, err := r.ReadVarint()
		return Int(v), err
	case "uint":
		v, err := r.ReadUvarint()
		return Uint(v), err
	case "int64":
		v, err := r.ReadVarint64()
		return Int(v), err
	case "uint64":
		v, err := r.ReadUvarint64()
		return Uint(v), err
	case "float":
		v, err := r.ReadVarfloat()
		return Float(v), err
	case "string":
		v, err := r.ReadString()
		return String(v), err
	}
	if t, ok := c.enums[f.Type]; ok {
		offset := r.Offset()
		ord, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		name, ok := t.byOrdinal[ord]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEnum, "offset %d: enum %s has no member with ordinal %d", offset, f.Type, ord)
		}
		return String(name), nil
	}
	sub, ok := c.defs[f.Type]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s.%s references undefined type %q", def.Name, f.Name, f.Type)
	}
	return c.decodeRecord(r, sub)
}
