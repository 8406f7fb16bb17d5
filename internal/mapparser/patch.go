/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import (
	"mapreader/internal/lex"
	"mapreader/internal/vector"
)

// parseBezierPatch reads a Quake 3 patchDef2 block:
//
//	patchDef2 { TEXTURE ( rows cols 0 0 0 ) ( ( (x y z u v) ... ) ... ) } }
//
// Dimensions must be odd and at least 3; anything else is replaced by 3.
func (p *Parser) parseBezierPatch(open lex.Token) error {
	if _, err := p.tok.NextExpect(KindComment, KindOBrace); err != nil {
		return err
	}
	name, err := p.parseMaterialName()
	if err != nil {
		return err
	}
	header, err := p.tok.NextExpect(0, KindOParen)
	if err != nil {
		return err
	}
	rows, err := p.parseBezierDim("height")
	if err != nil {
		return err
	}
	cols, err := p.parseBezierDim("width")
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := p.tok.NextExpect(0, KindInteger); err != nil {
			return err
		}
	}
	if _, err := p.tok.NextExpect(0, KindCParen); err != nil {
		return err
	}
	points, err := p.parsePatchGrid(header, rows, cols)
	if err != nil {
		return err
	}
	closing, err := p.tok.NextExpect(KindComment, KindCBrace)
	if err != nil {
		return err
	}
	p.b.Patch(open.Line, closing.Line-open.Line, p.target, rows, cols, points, name)
	_, err = p.tok.NextExpect(KindComment, KindCBrace)
	return err
}

func (p *Parser) parseBezierDim(what string) (int, error) {
	tok, err := p.tok.NextExpect(0, KindInteger)
	if err != nil {
		return 0, err
	}
	n, err := tok.Int()
	if err != nil {
		return 0, err
	}
	if n < 3 || n%2 != 1 {
		p.warnf(tok.Line, tok.Column, "Invalid patch %s, assuming 3", what)
		n = 3
	}
	return n, nil
}

// minPatchPointLen is the length of the shortest control point, "(0 0 0 0 0)".
const minPatchPointLen = 11

// checkPatchSize rejects a rows x cols grid that the rest of the input
// cannot hold. The product is never computed before it is known to fit.
func (p *Parser) checkPatchSize(header lex.Token, rows, cols int) error {
	if rows == 0 || cols == 0 {
		return nil
	}
	room := (p.tok.Len() - p.tok.Offset()) / minPatchPointLen
	if cols > room || rows > room/cols {
		return lex.Errorf(header.Line, header.Column, "invalid patch size %dx%d", rows, cols)
	}
	return nil
}

// parsePatchGrid reads rows groups of cols (x y z u v) tuples, all wrapped in
// one more pair of parentheses. Points are returned row-major.
func (p *Parser) parsePatchGrid(header lex.Token, rows, cols int) ([]PatchPoint, error) {
	if err := p.checkPatchSize(header, rows, cols); err != nil {
		return nil, err
	}
	if _, err := p.tok.NextExpect(0, KindOParen); err != nil {
		return nil, err
	}
	points := make([]PatchPoint, 0, rows*cols)
	for i := 0; i < rows; i++ {
		if _, err := p.tok.NextExpect(0, KindOParen); err != nil {
			return nil, err
		}
		for j := 0; j < cols; j++ {
			t, err := p.parseTuple(KindOParen, KindCParen, 5)
			if err != nil {
				return nil, err
			}
			points = append(points, PatchPoint{Position: vector.V3(t[0], t[1], t[2]), U: t[3], V: t[4]})
		}
		if _, err := p.tok.NextExpect(0, KindCParen); err != nil {
			return nil, err
		}
	}
	if _, err := p.tok.NextExpect(0, KindCParen); err != nil {
		return nil, err
	}
	return points, nil
}

func (p *Parser) parseGridPatch(open lex.Token) error { return p.skipGridPatch(open, "patchDef2", 3) }

func (p *Parser) parseGridPatchExplicit(open lex.Token) error {
	return p.skipGridPatch(open, "patchDef3", 5)
}

// skipGridPatch consumes a Doom 3 subdivision patch. The header holds width
// and height followed by extra numeric fields (subdivisions for patchDef3,
// then contents, flags and value). The body is validated and dropped.
func (p *Parser) skipGridPatch(open lex.Token, intro string, extraFields int) error {
	if _, err := p.tok.NextExpect(KindComment, KindOBrace); err != nil {
		return err
	}
	if _, err := p.parseMaterialName(); err != nil {
		return err
	}
	header, err := p.tok.NextExpect(0, KindOParen)
	if err != nil {
		return err
	}
	width, err := p.parseGridDim()
	if err != nil {
		return err
	}
	height, err := p.parseGridDim()
	if err != nil {
		return err
	}
	for i := 0; i < extraFields; i++ {
		if _, err := p.parseFloat(); err != nil {
			return err
		}
	}
	if _, err := p.tok.NextExpect(0, KindCParen); err != nil {
		return err
	}
	if _, err := p.parsePatchGrid(header, width, height); err != nil {
		return err
	}
	if _, err := p.tok.NextExpect(KindComment, KindCBrace); err != nil {
		return err
	}
	p.warnf(open.Line, open.Column, "Skipping %s: subdivision patches are not supported", intro)
	_, err = p.tok.NextExpect(KindComment, KindCBrace)
	return err
}

func (p *Parser) parseGridDim() (int, error) {
	tok, err := p.tok.NextExpect(0, KindInteger)
	if err != nil {
		return 0, err
	}
	n, err := tok.Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, lex.Errorf(tok.Line, tok.Column, "invalid patch size %d", n)
	}
	return n, nil
}
