// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package schema

import (
	"fmt"
	"strings"
)

// String renders the schema in canonical text form. Parsing the result
// yields a schema equal to s, so String is the inverse of Parse up to
// formatting. Enum members are always printed with explicit values.
func (s *Schema) String() string {
	var b strings.Builder
	if s.Package != "" {
		fmt.Fprintf(&b, "package %s;\n", s.Package)
	}
	for i := range s.Definitions {
		if i > 0 || s.Package != "" {
			b.WriteByte('\n')
		}
		s.Definitions[i].print(&b)
	}
	return b.String()
}

func (d *Definition) print(b *strings.Builder) {
	fmt.Fprintf(b, "%s %s {\n", d.Kind, d.Name)
	for i := range d.Fields {
		f := &d.Fields[i]
		b.WriteString("  ")
		switch d.Kind {
		case EnumKind:
			fmt.Fprintf(b, "%s = %d", f.Name, f.ID)
		case StructKind:
			fmt.Fprintf(b, "%s %s", f.typeString(), f.Name)
		case MessageKind:
			fmt.Fprintf(b, "%s %s = %d", f.typeString(), f.Name, f.ID)
		}
		if f.IsDeprecated {
			b.WriteString(" [deprecated]")
		}
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
}

func (f *Field) typeString() string {
	if f.IsArray {
		return f.Type + "[]"
	}
	return f.Type
}
