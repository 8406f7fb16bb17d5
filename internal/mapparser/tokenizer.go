/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import "mapreader/internal/lex"

// Token kinds produced by the map tokenizer.
const (
	KindInteger lex.Kind = 1 << iota
	KindDecimal
	KindString
	KindWord
	KindOParen
	KindCParen
	KindOBrace
	KindCBrace
	KindOBracket
	KindCBracket
	KindComment
	KindEOL
	KindEOF

	KindNumber = KindInteger | KindDecimal
)

var kindNames = lex.NameTable{
	"integer", "decimal", "string", "word",
	"'('", "')'", "'{'", "'}'", "'['", "']'",
	"comment", "end of line", "end of file",
}

const (
	numberDelims   = lex.Whitespace + ")"
	quotedHack     = "\n}"
	lineTerminator = "\n\r"
)

// Tokenizer classifies map source text.
//
// Line comments start with "//" or ";". A line starting "/// " produces a
// Comment token that introduces extra attributes. Line breaks are skipped
// unless SetSkipEol(false) is in effect.
type Tokenizer struct {
	*lex.Tokenizer
	emitter *mapEmitter
}

func NewTokenizer(src string) *Tokenizer {
	e := &mapEmitter{skipEol: true}
	t := &Tokenizer{emitter: e}
	t.Tokenizer = lex.NewTokenizer(src, lex.Options{Names: kindNames, EOF: KindEOF, Escape: '\\'}, e)
	e.tz = t.Tokenizer
	return t
}

// SetSkipEol controls whether line breaks are discarded as whitespace.
func (t *Tokenizer) SetSkipEol(skip bool) { t.emitter.skipEol = skip }

type mapEmitter struct {
	tz      *lex.Tokenizer
	skipEol bool
}

func (e *mapEmitter) Emit(s *lex.Scanner) (lex.Token, error) {
	for !s.EOF() {
		line, col, start := s.Line(), s.Column(), s.Offset()
		c := s.CurChar()
		switch c {
		case '/':
			if s.LookAhead(1) == '/' {
				if s.LookAhead(2) == '/' && s.LookAhead(3) == ' ' {
					_ = s.Advance(3)
					return e.tz.Token(KindComment, start, s.Offset(), line, col), nil
				}
				s.DiscardUntil(lineTerminator)
				continue
			}
		case ';':
			s.DiscardUntil(lineTerminator)
			continue
		case '{', '}', '(', ')', '[', ']':
			_ = s.Advance(1)
			return e.tz.Token(punctuation(c), start, s.Offset(), line, col), nil
		case '"':
			_ = s.Advance(1)
			begin := s.Offset()
			end, err := s.ReadQuotedString('"', quotedHack)
			if err != nil {
				return lex.Token{}, err
			}
			return e.tz.Token(KindString, begin, end, line, col), nil
		case '\n', '\r', ' ', '\t':
			if !e.skipEol && (c == '\n' || c == '\r') {
				n := 1
				if c == '\r' && s.LookAhead(1) == '\n' {
					n = 2
				}
				_ = s.Advance(n)
				return e.tz.Token(KindEOL, start, s.Offset(), line, col), nil
			}
			if e.skipEol {
				s.DiscardWhile(lex.Whitespace)
			} else {
				s.DiscardWhile(" \t")
			}
			continue
		}
		if c < 0x20 || c == 0x7f {
			return lex.Token{}, lex.Errorf(line, col, "unexpected character %q", c)
		}
		if end, ok := s.ReadInteger(numberDelims); ok {
			return e.tz.Token(KindInteger, start, end, line, col), nil
		}
		if end, ok := s.ReadDecimal(numberDelims); ok {
			return e.tz.Token(KindDecimal, start, end, line, col), nil
		}
		end := s.ReadUntil(lex.Whitespace)
		return e.tz.Token(KindWord, start, end, line, col), nil
	}
	off := s.Offset()
	return e.tz.Token(KindEOF, off, off, s.Line(), s.Column()), nil
}

func punctuation(c byte) lex.Kind {
	switch c {
	case '{':
		return KindOBrace
	case '}':
		return KindCBrace
	case '(':
		return KindOParen
	case ')':
		return KindCParen
	case '[':
		return KindOBracket
	default:
		return KindCBracket
	}
}
