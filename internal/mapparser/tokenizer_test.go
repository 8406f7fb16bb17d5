/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import (
	"errors"
	"testing"

	"mapreader/internal/lex"
)

func collect(t *testing.T, tz *Tokenizer) []lex.Token {
	t.Helper()
	var out []lex.Token
	for {
		tok, err := tz.Next(0)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out
		}
	}
}

func kindsOf(toks []lex.Token) []lex.Kind {
	out := make([]lex.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func sameKinds(t *testing.T, got, want []lex.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kind[%d] = %s, want %s", i, kindNames.Name(got[i]), kindNames.Name(want[i]))
		}
	}
}

func TestTokenizerKinds(t *testing.T) {
	toks := collect(t, NewTokenizer(`{ ( 1 -2.5 ) [ ] "quoted str" word_1 }`))
	sameKinds(t, kindsOf(toks), []lex.Kind{
		KindOBrace, KindOParen, KindInteger, KindDecimal, KindCParen,
		KindOBracket, KindCBracket, KindString, KindWord, KindCBrace, KindEOF,
	})
	str := toks[7]
	if str.Data != "quoted str" || str.Start != 18 || str.Column != 18 {
		t.Fatalf("string token = %+v, want content without quotes starting at 18", str)
	}
	if toks[3].Data != "-2.5" {
		t.Fatalf("decimal = %q, want -2.5", toks[3].Data)
	}
}

func TestTokenizerNumberBoundaries(t *testing.T) {
	cases := []struct {
		in   string
		kind lex.Kind
		data string
	}{
		{"12)", KindInteger, "12"},
		{".5 ", KindDecimal, ".5"},
		{"1e3", KindDecimal, "1e3"},
		{"1.5e ", KindWord, "1.5e"},
		{"- ", KindWord, "-"},
		{"12abc", KindWord, "12abc"},
		{"/textures/x", KindWord, "/textures/x"},
	}
	for _, c := range cases {
		tok, err := NewTokenizer(c.in).Next(0)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if tok.Kind != c.kind || tok.Data != c.data {
			t.Fatalf("%q = %s %q, want %s %q", c.in, kindNames.Name(tok.Kind), tok.Data, kindNames.Name(c.kind), c.data)
		}
	}
}

func TestTokenizerComments(t *testing.T) {
	src := "// line comment\n; semicolon comment\n////////\n/// x 1\n{"
	toks := collect(t, NewTokenizer(src))
	sameKinds(t, kindsOf(toks), []lex.Kind{KindComment, KindWord, KindInteger, KindOBrace, KindEOF})
	if toks[0].Line != 4 || toks[0].Data != "///" {
		t.Fatalf("comment token = %+v, want /// on line 4", toks[0])
	}
}

func TestTokenizerEol(t *testing.T) {
	tz := NewTokenizer("a 1\r\nb\n")
	tz.SetSkipEol(false)
	toks := collect(t, tz)
	sameKinds(t, kindsOf(toks), []lex.Kind{KindWord, KindInteger, KindEOL, KindWord, KindEOL, KindEOF})
	if toks[2].Data != "\r\n" {
		t.Fatalf("eol data = %q, want CRLF", toks[2].Data)
	}
	if toks[3].Line != 2 {
		t.Fatalf("b on line %d, want 2", toks[3].Line)
	}

	tz = NewTokenizer("a\r\nb")
	toks = collect(t, tz)
	sameKinds(t, kindsOf(toks), []lex.Kind{KindWord, KindWord, KindEOF})
}

func TestTokenizerTrailingBackslash(t *testing.T) {
	toks := collect(t, NewTokenizer("\"path\" \"c:\\a\\b\\c\\\"\n}"))
	if toks[1].Kind != KindString || toks[1].Data != `c:\a\b\c\` {
		t.Fatalf("path = %+v, want c:\\a\\b\\c\\", toks[1])
	}
	if toks[2].Kind != KindCBrace {
		t.Fatalf("after path got %s, want '}'", kindNames.Name(toks[2].Kind))
	}
}

func TestTokenizerErrors(t *testing.T) {
	_, err := NewTokenizer(`"never closed`).Next(0)
	if !errors.Is(err, lex.ErrUnexpectedEOF) {
		t.Fatalf("unterminated string: err = %v, want ErrUnexpectedEOF", err)
	}
	_, err = NewTokenizer("\x01").Next(0)
	var le *lex.Error
	if !errors.As(err, &le) || le.Line != 1 || le.Column != 1 {
		t.Fatalf("control character: err = %v, want located lex.Error", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	tz := NewTokenizer("( 1 2 3 )")
	a, _ := tz.Peek(0)
	b, _ := tz.Peek(0)
	c, _ := tz.Next(0)
	if a != b || b != c {
		t.Fatalf("peek/peek/next = %+v %+v %+v", a, b, c)
	}
}
