// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package schema defines the kiwi schema model and the three ways of
// producing one: parsing the human-authored text form, decoding the binary
// self-description embedded in fig files, and constructing it directly.
//
// A Schema is built once and is immutable thereafter. Compiling it (package
// kiwi) produces the lookup tables used by the generic encoder and decoder.
package schema

import (
	"github.com/cockroachdb/errors"
)

// ErrSyntax indicates that schema text failed to tokenize or parse. The
// error detail carries a 1-based line:column location.
var ErrSyntax = errors.New("kiwi: schema syntax error")

// ErrSemantic indicates that schema text parsed but violates a semantic
// rule: duplicate or reserved names, unresolved type references, bad field
// ids, recursive struct nesting, or deprecation outside a message.
var ErrSemantic = errors.New("kiwi: schema semantic error")

// ErrUnknownType indicates that a binary-encoded schema references a type
// index outside the native table and the definitions array.
var ErrUnknownType = errors.New("kiwi: unknown type")

// Kind discriminates the three definition kinds. The constant values are
// part of the binary schema format.
type Kind uint8

const (
	// EnumKind definitions map names to integer values; on the wire an enum
	// value is a varuint ordinal.
	EnumKind Kind = iota
	// StructKind definitions encode every field positionally with no tags;
	// all fields are required and the layout is not extensible.
	StructKind
	// MessageKind definitions tag every field with an explicit id and
	// terminate with a zero tag; fields may be omitted, added, or
	// deprecated without breaking old readers.
	MessageKind
)

func (k Kind) String() string {
	switch k {
	case EnumKind:
		return "enum"
	case StructKind:
		return "struct"
	case MessageKind:
		return "message"
	}
	return "unknown"
}

// nativeTypes lists the native type names in binary wire-index order: a
// negative type code in the binary schema format is the bitwise complement
// of an index into this table.
var nativeTypes = [...]string{"bool", "byte", "int", "uint", "float", "string", "int64", "uint64"}

// nativeTypeIndex returns the wire index of a native type name, or -1.
func nativeTypeIndex(name string) int {
	for i, n := range nativeTypes {
		if n == name {
			return i
		}
	}
	return -1
}

// IsNativeType reports whether name is one of the built-in scalar types.
func IsNativeType(name string) bool { return nativeTypeIndex(name) >= 0 }

// reservedNames may not be used as definition names.
var reservedNames = map[string]bool{
	"package": true,
	"enum":    true,
	"struct":  true,
	"message": true,
}

// Field is a single member of a definition.
type Field struct {
	Name string
	// Type is the referenced type name: a native type or the name of
	// another definition. Empty for enum members.
	Type    string
	IsArray bool
	// IsDeprecated marks a message field whose wire payload is still
	// decoded (to advance the cursor) but omitted from decoded records.
	IsDeprecated bool
	// ID is the explicit wire tag for message fields, the 1-based
	// declaration ordinal for struct fields (not written on the wire), and
	// the integer value for enum members.
	ID uint32
}

// Definition is a named enum, struct, or message.
type Definition struct {
	Name   string
	Kind   Kind
	Fields []Field
}

// Field returns the field with the given name, or nil.
func (d *Definition) Field(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// Schema is an ordered set of definitions, optionally carrying a package
// name from the text form. The binary form has no package clause.
type Schema struct {
	Package     string
	Definitions []Definition
}

// Definition returns the definition with the given name, or nil.
func (s *Schema) Definition(name string) *Definition {
	for i := range s.Definitions {
		if s.Definitions[i].Name == name {
			return &s.Definitions[i]
		}
	}
	return nil
}
