// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package kiwi

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/figtools/kiwi/bstream"
	"github.com/figtools/kiwi/schema"
)

// Encode encodes rec as the named struct or message. For a message, fields
// absent from the record (or set to Null) are skipped and a zero terminator
// tag ends the encoding; for a struct, every declared field is required and
// written positionally.
func (c *CompiledSchema) Encode(typeName string, rec *Record) ([]byte, error) {
	def, err := c.codecDef(typeName)
	if err != nil {
		return nil, err
	}
	var w bstream.Writer
	if err := c.encodeRecord(&w, def, rec); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (c *CompiledSchema) encodeRecord(w *bstream.Writer, def *schema.Definition, rec *Record) error {
	switch def.Kind {
	case schema.StructKind:
		for i := range def.Fields {
			f := &def.Fields[i]
			v, ok := rec.Get(f.Name)
			if !ok || isNull(v) {
				return errors.Wrapf(ErrMissingField, "%s.%s", def.Name, f.Name)
			}
			if err := c.encodeField(w, def, f, v); err != nil {
				return err
			}
		}
	case schema.MessageKind:
		for i := range def.Fields {
			f := &def.Fields[i]
			v, ok := rec.Get(f.Name)
			if !ok || isNull(v) {
				continue
			}
			w.PutUvarint(f.ID)
			if err := c.encodeField(w, def, f, v); err != nil {
				return err
			}
		}
		w.PutUvarint(0)
	}
	return nil
}

func (c *CompiledSchema) encodeField(w *bstream.Writer, def *schema.Definition, f *schema.Field, v Value) error {
	if f.IsArray {
		if f.Type == "byte" {
			b, ok := v.(Bytes)
			if !ok {
				return typeMismatch(def, f, v, "byte[]")
			}
			w.PutByteArray(b)
			return nil
		}
		arr, ok := v.(Array)
		if !ok {
			return typeMismatch(def, f, v, f.Type+"[]")
		}
		w.PutUvarint(uint32(len(arr)))
		for _, el := range arr {
			if err := c.encodeScalar(w, def, f, el); err != nil {
				return err
			}
		}
		return nil
	}
	return c.encodeScalar(w, def, f, v)
}

func (c *CompiledSchema) encodeScalar(w *bstream.Writer, def *schema.Definition, f *schema.Field, v Value) error {
	switch f.Type {
	case "bool":
		b, ok := v.(Bool)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutBool(bool(b))
	case "byte":
		u, ok := asUint(v, math.MaxUint8)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutByte(byte(u))
	case "int":
		i, ok := asInt(v, math.MinInt32, math.MaxInt32)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutVarint(int32(i))
	case "uint":
		u, ok := asUint(v, math.MaxUint32)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutUvarint(uint32(u))
	case "int64":
		i, ok := asInt(v, math.MinInt64, math.MaxInt64)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutVarint64(i)
	case "uint64":
		u, ok := asUint(v, math.MaxUint64)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutUvarint64(u)
	case "float":
		fv, ok := asFloat(v)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		w.PutVarfloat(float32(fv))
	case "string":
		s, ok := v.(String)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		return w.PutString(string(s))
	default:
		if t, ok := c.enums[f.Type]; ok {
			name, ok := v.(String)
			if !ok {
				return typeMismatch(def, f, v, f.Type)
			}
			ord, ok := t.byName[string(name)]
			if !ok {
				return errors.Wrapf(ErrInvalidEnum, "%s.%s: enum %s has no member %q", def.Name, f.Name, f.Type, string(name))
			}
			w.PutUvarint(ord)
			return nil
		}
		sub, ok := c.defs[f.Type]
		if !ok {
			return errors.Wrapf(ErrNotFound, "%s.%s references undefined type %q", def.Name, f.Name, f.Type)
		}
		rec, ok := v.(*Record)
		if !ok {
			return typeMismatch(def, f, v, f.Type)
		}
		return c.encodeRecord(w, sub, rec)
	}
	return nil
}

func isNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

func typeMismatch(def *schema.Definition, f *schema.Field, v Value, want string) error {
	return errors.Errorf("kiwi: %s.%s: cannot encode %T as %s", def.Name, f.Name, v, want)
}

// asInt extracts an integer in [lo, hi] from an Int or Uint value.
func asInt(v Value, lo, hi int64) (int64, bool) {
	switch v := v.(type) {
	case Int:
		return int64(v), v >= Int(lo) && v <= Int(hi)
	case Uint:
		return int64(v), v <= Uint(hi)
	}
	return 0, false
}

// asUint extracts an unsigned integer no greater than hi from an Int or
// Uint value.
func asUint(v Value, hi uint64) (uint64, bool) {
	switch v := v.(type) {
	case Uint:
		return uint64(v), v <= Uint(hi)
	case Int:
		return uint64(v), v >= 0 && uint64(v) <= hi
	}
	return 0, false
}

func asFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case Float:
		return float64(v), true
	case Int:
		return float64(v), true
	case Uint:
		return float64(v), true
	}
	return 0, false
}
