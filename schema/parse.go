// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package schema

import (
	"fmt"
	"math"
	"strconv"
)

// Parse parses schema text and verifies it. Syntax failures return
// ErrSyntax and semantic failures ErrSemantic, both carrying a 1-based
// line:column location.
//
// The grammar:
//
//	schema     := ("package" ident ";")? definition*
//	definition := ("enum" | "struct" | "message") ident "{" field* "}"
//	enum field    := ident ("=" integer)? ";"
//	struct field  := type ident ";"
//	message field := type ident "=" integer ("[deprecated]")? ";"
//	type       := ident ("[]")?
//
// An enum member without an explicit value is assigned the previous value
// plus one, starting at zero.
func Parse(text string) (*Schema, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	s, sites, err := p.parseSchema()
	if err != nil {
		return nil, err
	}
	if err := verify(s, sites); err != nil {
		return nil, err
	}
	return s, nil
}

// defSite records where a definition and each of its fields appear in the
// source text, for semantic diagnostics after the parse tree is complete.
type defSite struct {
	name   pos
	fields []pos
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) cur() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if t := p.cur(); t.kind != kind {
		return token{}, syntaxErrAt(t.pos, "expected %s, found %s", kind, describe(t))
	}
	return p.advance(), nil
}

func describe(t token) string {
	switch t.kind {
	case tokIdent, tokInt:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return t.kind.String()
}

func (p *parser) parseSchema() (*Schema, []defSite, error) {
	s := &Schema{}
	var sites []defSite

	if t := p.cur(); t.kind == tokIdent && t.text == "package" {
		p.advance()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(tokSemi); err != nil {
			return nil, nil, err
		}
		s.Package = name.text
	}

	for p.cur().kind != tokEOF {
		def, site, err := p.parseDefinition()
		if err != nil {
			return nil, nil, err
		}
		s.Definitions = append(s.Definitions, def)
		sites = append(sites, site)
	}
	return s, sites, nil
}

func (p *parser) parseDefinition() (Definition, defSite, error) {
	kw, err := p.expect(tokIdent)
	if err != nil {
		return Definition{}, defSite{}, err
	}
	var kind Kind
	switch kw.text {
	case "enum":
		kind = EnumKind
	case "struct":
		kind = StructKind
	case "message":
		kind = MessageKind
	default:
		return Definition{}, defSite{}, syntaxErrAt(kw.pos,
			`expected "enum", "struct", or "message", found %q`, kw.text)
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return Definition{}, defSite{}, err
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return Definition{}, defSite{}, err
	}

	def := Definition{Name: name.text, Kind: kind}
	site := defSite{name: name.pos}
	var nextEnumValue uint32
	for p.cur().kind != tokRBrace {
		if p.cur().kind == tokEOF {
			return Definition{}, defSite{}, syntaxErrAt(p.cur().pos,
				`expected "}" closing %s %q, found end of input`, kind, def.Name)
		}
		f, fp, err := p.parseField(kind, len(def.Fields)+1, nextEnumValue)
		if err != nil {
			return Definition{}, defSite{}, err
		}
		nextEnumValue = f.ID + 1
		def.Fields = append(def.Fields, f)
		site.fields = append(site.fields, fp)
	}
	p.advance()
	return def, site, nil
}

// parseField parses one field. ordinal is the 1-based declaration position,
// used as the implicit id of struct fields; nextEnumValue is the value
// assigned to an enum member that declares none.
func (p *parser) parseField(kind Kind, ordinal int, nextEnumValue uint32) (Field, pos, error) {
	if kind == EnumKind {
		name, err := p.expect(tokIdent)
		if err != nil {
			return Field{}, pos{}, err
		}
		f := Field{Name: name.text, ID: nextEnumValue}
		if p.cur().kind == tokEquals {
			p.advance()
			t, err := p.expect(tokInt)
			if err != nil {
				return Field{}, pos{}, err
			}
			if f.ID, err = parseFieldValue(t); err != nil {
				return Field{}, pos{}, err
			}
		}
		if p.cur().kind == tokDeprecated {
			p.advance()
			f.IsDeprecated = true
		}
		if _, err := p.expect(tokSemi); err != nil {
			return Field{}, pos{}, err
		}
		return f, name.pos, nil
	}

	typeTok, err := p.expect(tokIdent)
	if err != nil {
		return Field{}, pos{}, err
	}
	f := Field{Type: typeTok.text, ID: uint32(ordinal)}
	if p.cur().kind == tokArray {
		p.advance()
		f.IsArray = true
	}
	name, err := p.expect(tokIdent)
	if err != nil {
		return Field{}, pos{}, err
	}
	f.Name = name.text
	if kind == MessageKind {
		if _, err := p.expect(tokEquals); err != nil {
			return Field{}, pos{}, err
		}
		t, err := p.expect(tokInt)
		if err != nil {
			return Field{}, pos{}, err
		}
		if f.ID, err = parseFieldValue(t); err != nil {
			return Field{}, pos{}, err
		}
	}
	if p.cur().kind == tokDeprecated {
		p.advance()
		f.IsDeprecated = true
	}
	if _, err := p.expect(tokSemi); err != nil {
		return Field{}, pos{}, err
	}
	return f, name.pos, nil
}

func parseFieldValue(t token) (uint32, error) {
	v, err := strconv.ParseInt(t.text, 10, 64)
	if err != nil {
		return 0, syntaxErrAt(t.pos, "invalid integer %q", t.text)
	}
	if v < 0 || v > math.MaxUint32 {
		return 0, semanticErrAt(t.pos, "field value %d out of range", v)
	}
	return uint32(v), nil
}
