// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package kiwi

// Value is the dynamic representation of kiwi data. A Value is one of
//
//	Null, Bool, Int, Uint, Float, String, Bytes, Array, *Record
//
// The schema, not the Value, decides how a value is written: an Int may be
// encoded as any of the integer wire types, and an enum member travels as a
// String naming it.
type Value interface {
	// isValue restricts implementations to this package.
	isValue()
}

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Int(0)
	_ Value = Uint(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = Bytes(nil)
	_ Value = Array(nil)
	_ Value = &Record{}
)

// Null is the explicit null value. A message field set to Null is skipped
// during encoding exactly like an absent field; a struct field set to Null
// fails with ErrMissingField.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Int is a signed integer value. It satisfies fields of any integer wire
// type, subject to a range check at encode time.
type Int int64

// Uint is an unsigned integer value. It satisfies fields of any integer
// wire type, subject to a range check at encode time.
type Uint uint64

// Float is a floating-point value. The float wire type is 32-bit, so
// encoding rounds to float32.
type Float float64

// String is a string value. It also names enum members: a field of enum
// type holds the member name as a String.
type String string

// Bytes is a raw byte array, the value of a byte[] field.
type Bytes []byte

// Array is an ordered sequence of values.
type Array []Value

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Uint) isValue()    {}
func (Float) isValue()   {}
func (String) isValue()  {}
func (Bytes) isValue()   {}
func (Array) isValue()   {}
func (*Record) isValue() {}

// A Record is an ordered collection of named values: the dynamic form of a
// struct or message. Field order is insertion order; decoding inserts
// fields in wire order.
type Record struct {
	fields []recordField
}

type recordField struct {
	name  string
	value Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Set stores a value under name, replacing any existing value. It returns
// the record to allow call chaining when building test or call-site data.
func (r *Record) Set(name string, v Value) *Record {
	for i := range r.fields {
		if r.fields[i].name == name {
			r.fields[i].value = v
			return r
		}
	}
	r.fields = append(r.fields, recordField{name: name, value: v})
	return r
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	for i := range r.fields {
		if r.fields[i].name == name {
			return r.fields[i].value, true
		}
	}
	return nil, false
}

// Len returns the number of fields in the record.
func (r *Record) Len() int { return len(r.fields) }

// At returns the name and value at position i, in insertion order.
func (r *Record) At(i int) (string, Value) {
	return r.fields[i].name, r.fields[i].value
}
