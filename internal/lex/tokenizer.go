/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lex

import "fmt"

// Emitter classifies the next token at the scanner position. Once input is
// exhausted it must keep returning a token of the end-of-input kind.
type Emitter interface {
	Emit(s *Scanner) (Token, error)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(s *Scanner) (Token, error)

func (f EmitterFunc) Emit(s *Scanner) (Token, error) { return f(s) }

// Options configure a Tokenizer.
type Options struct {
	// Names is used to render kinds in error messages.
	Names NameTable
	// EOF is the kind emitted at end of input. It is never skipped.
	EOF Kind
	// Escape is the escape byte; 0 disables escape tracking.
	Escape byte
}

// Tokenizer layers skip masks, peeking and expectation checks over an Emitter.
type Tokenizer struct {
	*Scanner
	emitter Emitter
	names   NameTable
	eof     Kind
}

func NewTokenizer(src string, opts Options, e Emitter) *Tokenizer {
	return &Tokenizer{
		Scanner: NewScanner(src, opts.Escape),
		emitter: e,
		names:   opts.Names,
		eof:     opts.EOF,
	}
}

// Names returns the kind name table.
func (t *Tokenizer) Names() NameTable { return t.names }

// Token builds a token spanning [start, end) with the given start location.
func (t *Tokenizer) Token(k Kind, start, end, line, column int) Token {
	return Token{Kind: k, Data: t.Source()[start:end], Start: start, End: end, Offset: start, Line: line, Column: column}
}

// Next returns the next token whose kind is not in skip.
func (t *Tokenizer) Next(skip Kind) (Token, error) {
	skip &^= t.eof
	for {
		tok, err := t.emitter.Emit(t.Scanner)
		if err != nil {
			return Token{}, err
		}
		if !tok.Kind.Has(skip) {
			return tok, nil
		}
	}
}

// Peek returns what Next would return without consuming anything.
func (t *Tokenizer) Peek(skip Kind) (Token, error) {
	snap := t.Snapshot()
	tok, err := t.Next(skip)
	t.Restore(snap)
	return tok, err
}

// NextExpect is Next followed by Expect.
func (t *Tokenizer) NextExpect(skip, expected Kind) (Token, error) {
	tok, err := t.Next(skip)
	if err != nil {
		return tok, err
	}
	return tok, t.Expect(expected, tok)
}

// PeekExpect is Peek followed by Expect.
func (t *Tokenizer) PeekExpect(skip, expected Kind) (Token, error) {
	tok, err := t.Peek(skip)
	if err != nil {
		return tok, err
	}
	return tok, t.Expect(expected, tok)
}

// Expect returns a located error unless tok is one of the expected kinds.
func (t *Tokenizer) Expect(expected Kind, tok Token) error {
	if tok.Kind.Has(expected) {
		return nil
	}
	e := Errorf(tok.Line, tok.Column, "expected %s, but got %s", t.names.Describe(expected), t.Describe(tok))
	if tok.Kind == t.eof {
		e.Err = ErrUnexpectedEOF
	}
	return e
}

// Describe renders a token for messages, e.g. "word 'patchDef2'".
func (t *Tokenizer) Describe(tok Token) string {
	if tok.Kind == t.eof {
		return t.names.Name(tok.Kind)
	}
	return fmt.Sprintf("%s '%s'", t.names.Name(tok.Kind), tok.Data)
}
