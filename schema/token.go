// Copyright 2026 The Kiwi-Go Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokLBrace
	tokRBrace
	tokSemi
	tokEquals
	tokArray      // "[]"
	tokDeprecated // "[deprecated]"
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokLBrace:
		return `"{"`
	case tokRBrace:
		return `"}"`
	case tokSemi:
		return `";"`
	case tokEquals:
		return `"="`
	case tokArray:
		return `"[]"`
	case tokDeprecated:
		return `"[deprecated]"`
	}
	return "unknown token"
}

// pos is a 1-based line and column within schema text.
type pos struct {
	line, col int
}

type token struct {
	kind tokenKind
	text string
	pos  pos
}

func syntaxErrAt(p pos, format string, args ...interface{}) error {
	return errors.Wrapf(ErrSyntax, "%d:%d: "+format, append([]interface{}{p.line, p.col}, args...)...)
}

func semanticErrAt(p pos, format string, args ...interface{}) error {
	return errors.Wrapf(ErrSemantic, "%d:%d: "+format, append([]interface{}{p.line, p.col}, args...)...)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// tokenize splits schema text into tokens, skipping whitespace and //
// comments. Every token carries its 1-based line and byte column.
func tokenize(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	i := 0
	for i < len(src) {
		c := src[i]
		p := pos{line, col}
		switch {
		case c == '\n':
			line++
			col = 1
			i++
		case c == ' ' || c == '\t' || c == '\r':
			col++
			i++
		case c == '/':
			if i+1 >= len(src) || src[i+1] != '/' {
				return nil, syntaxErrAt(p, "unexpected character %q", rune(c))
			}
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentCont(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], p})
			col += i - start
		case c == '-' || isDigit(c):
			start := i
			i++
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if src[start] == '-' && i == start+1 {
				return nil, syntaxErrAt(p, `unexpected character "-"`)
			}
			toks = append(toks, token{tokInt, src[start:i], p})
			col += i - start
		case c == '{':
			toks = append(toks, token{tokLBrace, "{", p})
			col++
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}", p})
			col++
			i++
		case c == ';':
			toks = append(toks, token{tokSemi, ";", p})
			col++
			i++
		case c == '=':
			toks = append(toks, token{tokEquals, "=", p})
			col++
			i++
		case c == '[':
			if strings.HasPrefix(src[i:], "[]") {
				toks = append(toks, token{tokArray, "[]", p})
				col += 2
				i += 2
			} else if strings.HasPrefix(src[i:], "[deprecated]") {
				toks = append(toks, token{tokDeprecated, "[deprecated]", p})
				col += len("[deprecated]")
				i += len("[deprecated]")
			} else {
				return nil, syntaxErrAt(p, `expected "[]" or "[deprecated]"`)
			}
		default:
			return nil, syntaxErrAt(p, "unexpected character %q", rune(c))
		}
	}
	toks = append(toks, token{tokEOF, "", pos{line, col}})
	return toks, nil
}
