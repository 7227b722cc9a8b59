// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package kiwi implements a compact, schema-driven binary serialization
// format with forward and backward compatibility: the format used inside
// Figma's fig files.
//
// A schema (package schema) declares enums, structs, and messages. Compile
// turns a schema into an immutable CompiledSchema whose Encode and Decode
// methods translate between wire bytes and dynamic Records. A
// CompiledSchema is built once and may be shared by any number of
// concurrent Encode and Decode calls.
//
// Package figfile layers the fig container file format on top: a magic
// header followed by length-prefixed chunks holding a binary-encoded schema
// and schema-encoded message data.
package kiwi

import (
	"github.com/cockroachdb/errors"

	"github.com/figtools/kiwi/schema"
)

// ErrNotFound indicates that a type name passed to Encode or Decode does
// not name a struct or message in the compiled schema.
var ErrNotFound = errors.New("kiwi: type not found")

// ErrMissingField indicates a struct encode with an absent field. Struct
// fields are all required; only message fields are optional.
var ErrMissingField = errors.New("kiwi: missing required field")

// ErrUnknownField indicates that message data carries a field id the
// schema does not declare.
var ErrUnknownField = errors.New("kiwi: unknown field id")

// ErrInvalidEnum indicates an unknown enum member name on encode, or an
// unknown ordinal on decode.
var ErrInvalidEnum = errors.New("kiwi: invalid enum value")

// CompiledSchema holds the lookup tables built from a schema: definitions
// by name, message fields by wire id, and enum members by name and by
// ordinal. It is immutable after Compile and safe for concurrent use.
type CompiledSchema struct {
	schema *schema.Schema
	defs   map[string]*schema.Definition
	byID   map[string]map[uint32]*schema.Field
	enums  map[string]*enumTables
}

type enumTables struct {
	byName    map[string]uint32
	byOrdinal map[uint32]string
}

// Compile builds the runtime lookup tables for a schema. The schema must
// not be mutated afterwards; the compiled form aliases it.
func Compile(s *schema.Schema) *CompiledSchema {
	c := &CompiledSchema{
		schema: s,
		defs:   make(map[string]*schema.Definition, len(s.Definitions)),
		byID:   make(map[string]map[uint32]*schema.Field),
		enums:  make(map[string]*enumTables),
	}
	for i := range s.Definitions {
		d := &s.Definitions[i]
		c.defs[d.Name] = d
		switch d.Kind {
		case schema.EnumKind:
			t := &enumTables{
				byName:    make(map[string]uint32, len(d.Fields)),
				byOrdinal: make(map[uint32]string, len(d.Fields)),
			}
			for fi := range d.Fields {
				f := &d.Fields[fi]
				t.byName[f.Name] = f.ID
				t.byOrdinal[f.ID] = f.Name
			}
			c.enums[d.Name] = t
		case schema.MessageKind:
			m := make(map[uint32]*schema.Field, len(d.Fields))
			for fi := range d.Fields {
				m[d.Fields[fi].ID] = &d.Fields[fi]
			}
			c.byID[d.Name] = m
		}
	}
	return c
}

// Schema returns the schema this CompiledSchema was built from.
func (c *CompiledSchema) Schema() *schema.Schema { return c.schema }

// EnumOrdinal returns the wire ordinal of the named member of the named
// enum.
func (c *CompiledSchema) EnumOrdinal(enum, member string) (uint32, bool) {
	t, ok := c.enums[enum]
	if !ok {
		return 0, false
	}
	ord, ok := t.byName[member]
	return ord, ok
}

// EnumName returns the member name of the named enum with the given wire
// ordinal.
func (c *CompiledSchema) EnumName(enum string, ordinal uint32) (string, bool) {
	t, ok := c.enums[enum]
	if !ok {
		return "", false
	}
	name, ok := t.byOrdinal[ordinal]
	return name, ok
}

// codecDef resolves typeName to a struct or message definition for Encode
// and Decode.
func (c *CompiledSchema) codecDef(typeName string) (*schema.Definition, error) {
	def, ok := c.defs[typeName]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "no definition named %q", typeName)
	}
	if def.Kind == schema.EnumKind {
		return nil, errors.Wrapf(ErrNotFound, "%q is an enum, not a struct or message", typeName)
	}
	return def, nil
}
