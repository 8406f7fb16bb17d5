/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import (
	"fmt"
	"sort"
	"strings"

	"mapreader/internal/lex"
)

type faceDecoder func(p *Parser) error

type objectDecoder func(p *Parser, open lex.Token) error

// Parser reads one map source in a fixed dialect and reports what it finds to
// a Builder. A Parser is not safe for concurrent use.
type Parser struct {
	tok     *Tokenizer
	source  Dialect
	target  Dialect
	faces   faceDecoder
	objects map[string]objectDecoder

	b  Builder
	st Status
}

// NewParser prepares a parser for src. An Unknown source dialect is detected
// from the text; an Unknown target defaults to the source dialect.
func NewParser(src string, source, target Dialect) *Parser {
	if source == Unknown {
		source = DetectString(src)
	}
	if target == Unknown {
		target = source
	}
	return &Parser{
		tok:     NewTokenizer(src),
		source:  source,
		target:  target,
		faces:   faceDecoderFor(source),
		objects: objectDecodersFor(source),
	}
}

func (p *Parser) Source() Dialect { return p.source }
func (p *Parser) Target() Dialect { return p.target }

func (p *Parser) bind(b Builder, st Status) {
	if st == nil {
		st = NopStatus
	}
	p.b, p.st = b, st
}

func (p *Parser) progress() {
	n := p.tok.Len()
	if n == 0 {
		p.st.Progress(1)
		return
	}
	p.st.Progress(float64(p.tok.Offset()) / float64(n))
}

func (p *Parser) warnf(line, column int, format string, args ...any) {
	p.st.Warn(line, column, fmt.Sprintf(format, args...))
}

// ParseEntities reads a whole document: an optional version header followed
// by any number of entities.
func (p *Parser) ParseEntities(b Builder, st Status) error {
	p.bind(b, st)
	if err := p.parseVersion(); err != nil {
		return err
	}
	for {
		tok, err := p.tok.Next(KindComment)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindEOF:
			p.st.Progress(1)
			return nil
		case KindOBrace:
			if err := p.parseEntity(tok); err != nil {
				return err
			}
			p.progress()
		default:
			return p.tok.Expect(KindOBrace|KindEOF, tok)
		}
	}
}

// ParseBrushesOrPatches reads a sequence of brush or patch blocks that are not
// wrapped in an entity.
func (p *Parser) ParseBrushesOrPatches(b Builder, st Status) error {
	p.bind(b, st)
	for {
		tok, err := p.tok.Next(KindComment)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindEOF:
			p.st.Progress(1)
			return nil
		case KindOBrace:
			if err := p.parseObject(tok); err != nil {
				return err
			}
			p.progress()
		default:
			return p.tok.Expect(KindOBrace|KindEOF, tok)
		}
	}
}

// ParseBrushFaces reads a bare list of faces.
func (p *Parser) ParseBrushFaces(b Builder, st Status) error {
	p.bind(b, st)
	for {
		tok, err := p.tok.Peek(KindComment)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindEOF:
			p.st.Progress(1)
			return nil
		case KindOParen:
			if err := p.faces(p); err != nil {
				return err
			}
		default:
			return p.tok.Expect(KindOParen|KindEOF, tok)
		}
	}
}

func (p *Parser) parseVersion() error {
	if !p.source.IsDoom3() {
		return nil
	}
	tok, err := p.tok.Peek(KindComment)
	if err != nil {
		return err
	}
	if tok.Kind != KindWord || !strings.EqualFold(tok.Data, "Version") {
		return nil
	}
	if _, err := p.tok.Next(KindComment); err != nil {
		return err
	}
	_, err = p.tok.NextExpect(KindComment, KindInteger)
	return err
}

func (p *Parser) parseEntity(open lex.Token) error {
	startLine := open.Line
	var (
		props []EntityProperty
		extra []ExtraAttribute
		seen  = make(map[string]bool)
		begun bool
	)
	begin := func() {
		if !begun {
			p.b.BeginEntity(startLine, props, extra)
			begun = true
		}
	}
	for {
		tok, err := p.tok.Next(0)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindComment:
			if extra, err = p.parseExtraAttributes(extra); err != nil {
				return err
			}
		case KindString, KindWord:
			value, err := p.tok.NextExpect(0, KindString|KindWord|KindNumber)
			if err != nil {
				return err
			}
			switch {
			case begun:
				p.warnf(tok.Line, tok.Column, "Ignoring entity property '%s' after brush or patch", tok.Data)
			case seen[tok.Data]:
				p.warnf(tok.Line, tok.Column, "Ignoring duplicate entity property '%s'", tok.Data)
			default:
				seen[tok.Data] = true
				props = append(props, EntityProperty{Key: tok.Data, Value: value.Data})
			}
		case KindOBrace:
			begin()
			if err := p.parseObject(tok); err != nil {
				return err
			}
		case KindCBrace:
			begin()
			p.b.EndEntity(startLine, tok.Line-startLine)
			return nil
		default:
			return p.tok.Expect(KindComment|KindString|KindWord|KindOBrace|KindCBrace, tok)
		}
	}
}

// parseObject is called after the opening brace of a brush or patch.
func (p *Parser) parseObject(open lex.Token) error {
	tok, err := p.tok.Peek(0)
	if err != nil {
		return err
	}
	if tok.Kind != KindWord {
		return p.parseBrush(open, p.faces)
	}
	dec, ok := p.objects[tok.Data]
	if !ok {
		return p.unexpectedIntroducer(tok)
	}
	if _, err := p.tok.Next(0); err != nil {
		return err
	}
	return dec(p, open)
}

func (p *Parser) unexpectedIntroducer(tok lex.Token) error {
	if len(p.objects) == 0 {
		return p.tok.Expect(KindComment|KindOParen|KindCBrace, tok)
	}
	names := make([]string, 0, len(p.objects)+2)
	for k := range p.objects {
		names = append(names, "'"+k+"'")
	}
	sort.Strings(names)
	names = append(names, "'('", "'}'")
	return lex.Errorf(tok.Line, tok.Column, "expected %s or %s, but got %s",
		strings.Join(names[:len(names)-1], ", "), names[len(names)-1], p.tok.Describe(tok))
}

// parseBrush reads faces up to and including the closing brace. BeginBrush is
// deferred until the first face so that a brush made only of comments still
// produces a single begin/end pair.
func (p *Parser) parseBrush(open lex.Token, decode faceDecoder) error {
	var extra []ExtraAttribute
	begun := false
	for {
		tok, err := p.tok.Peek(0)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindComment:
			if _, err := p.tok.Next(0); err != nil {
				return err
			}
			if extra, err = p.parseExtraAttributes(extra); err != nil {
				return err
			}
		case KindOParen:
			if !begun {
				p.b.BeginBrush(open.Line)
				begun = true
			}
			if err := decode(p); err != nil {
				return err
			}
		case KindCBrace:
			if _, err := p.tok.Next(0); err != nil {
				return err
			}
			if !begun {
				p.b.BeginBrush(open.Line)
			}
			p.b.EndBrush(open.Line, tok.Line-open.Line, extra)
			return nil
		default:
			return p.tok.Expect(KindComment|KindOParen|KindCBrace, tok)
		}
	}
}

// parseExtraAttributes reads "name value" pairs up to the end of the line that
// follows a comment token.
func (p *Parser) parseExtraAttributes(extra []ExtraAttribute) ([]ExtraAttribute, error) {
	p.tok.SetSkipEol(false)
	defer p.tok.SetSkipEol(true)

	const nameKinds = KindString | KindWord | KindEOL | KindEOF
	tok, err := p.tok.NextExpect(0, nameKinds)
	for err == nil && !tok.Kind.Has(KindEOL|KindEOF) {
		var value lex.Token
		value, err = p.tok.NextExpect(0, KindString|KindWord|KindInteger)
		if err != nil {
			break
		}
		typ := ExtraString
		if value.Kind == KindInteger {
			typ = ExtraInteger
		}
		extra = append(extra, ExtraAttribute{Name: tok.Data, Value: value.Data, Type: typ, Line: tok.Line, Column: tok.Column})
		tok, err = p.tok.NextExpect(0, nameKinds)
	}
	return extra, err
}
