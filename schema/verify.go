// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package schema

// verify checks the semantic rules over a complete parse tree. Running
// after the whole schema is parsed allows forward references between
// definitions.
//
// Binary-decoded schemas are not passed through verify; in particular the
// field-id upper bound below is enforced for text schemas only.
func verify(s *Schema, sites []defSite) error {
	byName := make(map[string]int, len(s.Definitions))
	for i := range s.Definitions {
		d := &s.Definitions[i]
		if IsNativeType(d.Name) || reservedNames[d.Name] {
			return semanticErrAt(sites[i].name, "%q is a reserved type name", d.Name)
		}
		if _, ok := byName[d.Name]; ok {
			return semanticErrAt(sites[i].name, "%q is defined twice", d.Name)
		}
		byName[d.Name] = i
	}

	for i := range s.Definitions {
		d := &s.Definitions[i]
		fieldNames := make(map[string]bool, len(d.Fields))
		fieldIDs := make(map[uint32]bool, len(d.Fields))
		for fi := range d.Fields {
			f := &d.Fields[fi]
			fp := sites[i].fields[fi]
			if fieldNames[f.Name] {
				return semanticErrAt(fp, "field %q is defined twice", f.Name)
			}
			fieldNames[f.Name] = true
			if f.IsDeprecated && d.Kind != MessageKind {
				return semanticErrAt(fp, "[deprecated] is only valid on message fields")
			}
			if d.Kind == EnumKind {
				if fieldIDs[f.ID] {
					return semanticErrAt(fp, "enum value %d is used twice", f.ID)
				}
				fieldIDs[f.ID] = true
				continue
			}
			if !IsNativeType(f.Type) {
				if _, ok := byName[f.Type]; !ok {
					return semanticErrAt(fp, "%q is not defined", f.Type)
				}
			}
			if d.Kind == MessageKind {
				if f.ID == 0 {
					return semanticErrAt(fp, "field id must be positive")
				}
				if f.ID > uint32(len(d.Fields)) {
					return semanticErrAt(fp, "field id %d exceeds the field count %d", f.ID, len(d.Fields))
				}
				if fieldIDs[f.ID] {
					return semanticErrAt(fp, "field id %d is used twice", f.ID)
				}
				fieldIDs[f.ID] = true
			}
		}
	}
	return checkStructNesting(s, sites, byName)
}

// checkStructNesting rejects structs that contain themselves, directly or
// transitively, through non-array struct fields. Array fields break the
// cycle, and message definitions are exempt. The walk is an iterative
// three-color depth-first search so that a deep or adversarial schema
// cannot exhaust the call stack.
func checkStructNesting(s *Schema, sites []defSite, byName map[string]int) error {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // fully explored
	)
	colors := make([]uint8, len(s.Definitions))

	type frame struct {
		def  int
		next int
	}
	for i := range s.Definitions {
		if s.Definitions[i].Kind != StructKind || colors[i] != white {
			continue
		}
		stack := []frame{{def: i}}
		colors[i] = grey
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			d := &s.Definitions[f.def]
			if f.next == len(d.Fields) {
				colors[f.def] = black
				stack = stack[:len(stack)-1]
				continue
			}
			fld := &d.Fields[f.next]
			fp := sites[f.def].fields[f.next]
			f.next++
			if fld.IsArray {
				continue
			}
			j, ok := byName[fld.Type]
			if !ok || s.Definitions[j].Kind != StructKind {
				continue
			}
			switch colors[j] {
			case white:
				colors[j] = grey
				stack = append(stack, frame{def: j})
			case grey:
				return semanticErrAt(fp, "recursive nesting of struct %q", fld.Type)
			}
		}
	}
	return nil
}
