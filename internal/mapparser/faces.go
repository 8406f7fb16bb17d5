/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import (
	"strings"

	"mapreader/internal/lex"
	"mapreader/internal/vector"
)

// faceDecoderFor picks the decoder for faces that appear directly in a brush
// block, i.e. not inside a brushDef/brushDef3 introducer.
func faceDecoderFor(d Dialect) faceDecoder {
	switch d {
	case Standard:
		return (*Parser).parseQuakeFace
	case Valve220:
		return (*Parser).parseValveFace
	case Quake2Valve, Quake3Valve, Doom3Valve:
		return (*Parser).parseQuake2ValveFace
	case Hexen2:
		return (*Parser).parseHexen2Face
	case Daikatana:
		return (*Parser).parseDaikatanaFace
	default:
		return (*Parser).parseQuake2Face
	}
}

func objectDecodersFor(d Dialect) map[string]objectDecoder {
	switch {
	case d == Quake3BrushPrimitive:
		return map[string]objectDecoder{
			"brushDef":  (*Parser).parseBrushDef,
			"patchDef2": (*Parser).parseBezierPatch,
		}
	case d.IsQuake3():
		return map[string]objectDecoder{
			"patchDef2": (*Parser).parseBezierPatch,
		}
	case d.IsDoom3():
		return map[string]objectDecoder{
			"brushDef3": (*Parser).parseBrushDef3,
			"patchDef2": (*Parser).parseGridPatch,
			"patchDef3": (*Parser).parseGridPatchExplicit,
		}
	default:
		return nil
	}
}

func (p *Parser) parseBrushDef(open lex.Token) error {
	return p.parseWrappedBrush(open, (*Parser).parsePrimitiveFace)
}

func (p *Parser) parseBrushDef3(open lex.Token) error {
	return p.parseWrappedBrush(open, (*Parser).parseDoom3PrimitiveFace)
}

// parseWrappedBrush reads "{ faces } }" after an introducer keyword.
func (p *Parser) parseWrappedBrush(open lex.Token, decode faceDecoder) error {
	if _, err := p.tok.NextExpect(KindComment, KindOBrace); err != nil {
		return err
	}
	if err := p.parseBrush(open, decode); err != nil {
		return err
	}
	_, err := p.tok.NextExpect(KindComment, KindCBrace)
	return err
}

func (p *Parser) parseFloat() (float64, error) {
	tok, err := p.tok.NextExpect(0, KindNumber)
	if err != nil {
		return 0, err
	}
	return tok.Float()
}

func (p *Parser) parseInt() (int, error) {
	tok, err := p.tok.NextExpect(0, KindInteger)
	if err != nil {
		return 0, err
	}
	return tok.Int()
}

// parseTuple reads n numbers enclosed by the given delimiter kinds.
func (p *Parser) parseTuple(open, close lex.Kind, n int) ([]float64, error) {
	if _, err := p.tok.NextExpect(0, open); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		f, err := p.parseFloat()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	if _, err := p.tok.NextExpect(0, close); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseVec3() (vector.Vec3, error) {
	v, err := p.parseTuple(KindOParen, KindCParen, 3)
	if err != nil {
		return vector.Null, err
	}
	return vector.V3(v[0], v[1], v[2]), nil
}

// parseFacePoints reads three parenthesized points and returns the token of
// the first opening parenthesis for location reporting.
func (p *Parser) parseFacePoints() (lex.Token, [3]vector.Vec3, error) {
	var pts [3]vector.Vec3
	first, err := p.tok.PeekExpect(0, KindOParen)
	if err != nil {
		return first, pts, err
	}
	for i := range pts {
		if pts[i], err = p.parseVec3(); err != nil {
			return first, pts, err
		}
	}
	return first, pts, nil
}

// parseMaterialName reads the texture name raw so that it may contain
// characters the tokenizer would otherwise split on. Quoted names are
// unescaped for '"' and '\'.
func (p *Parser) parseMaterialName() (string, error) {
	name, quoted, err := p.tok.ReadAnyString(lex.Whitespace)
	if err != nil {
		return "", err
	}
	if quoted {
		return unescape(name, `"\`), nil
	}
	return name, nil
}

func unescape(s, chars string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(chars, s[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// parseStandardUV reads "x-offset y-offset rotation x-scale y-scale".
func (p *Parser) parseStandardUV(a *FaceAttributes) error {
	dst := []*float64{&a.XOffset, &a.YOffset, &a.Rotation, &a.XScale, &a.YScale}
	for _, d := range dst {
		f, err := p.parseFloat()
		if err != nil {
			return err
		}
		*d = f
	}
	return nil
}

// parseValveUV reads "[ ux uy uz uoff ] [ vx vy vz voff ] rotation x-scale y-scale".
func (p *Parser) parseValveUV(a *FaceAttributes) (u, v vector.Vec3, err error) {
	ut, err := p.parseTuple(KindOBracket, KindCBracket, 4)
	if err != nil {
		return u, v, err
	}
	vt, err := p.parseTuple(KindOBracket, KindCBracket, 4)
	if err != nil {
		return u, v, err
	}
	u, a.XOffset = vector.V3(ut[0], ut[1], ut[2]), ut[3]
	v, a.YOffset = vector.V3(vt[0], vt[1], vt[2]), vt[3]
	for _, d := range []*float64{&a.Rotation, &a.XScale, &a.YScale} {
		if *d, err = p.parseFloat(); err != nil {
			return u, v, err
		}
	}
	return u, v, nil
}

// hasMoreFields reports whether another field follows on the current face.
func (p *Parser) hasMoreFields() (bool, error) {
	tok, err := p.tok.Peek(0)
	if err != nil {
		return false, err
	}
	return !tok.Kind.Has(KindOParen | KindCBrace | KindEOF | KindComment), nil
}

// parseSurfaceAttributes reads the optional "contents flags value" triple.
func (p *Parser) parseSurfaceAttributes(a *FaceAttributes) error {
	more, err := p.hasMoreFields()
	if err != nil || !more {
		return err
	}
	contents, err := p.parseInt()
	if err != nil {
		return err
	}
	flags, err := p.parseInt()
	if err != nil {
		return err
	}
	value, err := p.parseFloat()
	if err != nil {
		return err
	}
	a.SurfaceContents, a.SurfaceFlags, a.SurfaceValue = &contents, &flags, &value
	return nil
}

func (p *Parser) emitStandardFace(first lex.Token, pts [3]vector.Vec3, a FaceAttributes) {
	if p.degenerate(first, pts) {
		return
	}
	p.b.StandardFace(first.Line, p.target, pts[0], pts[1], pts[2], a)
}

func (p *Parser) emitValveFace(first lex.Token, pts [3]vector.Vec3, a FaceAttributes, u, v vector.Vec3) {
	if p.degenerate(first, pts) {
		return
	}
	p.b.ValveFace(first.Line, p.target, pts[0], pts[1], pts[2], a, u, v)
}

func (p *Parser) degenerate(first lex.Token, pts [3]vector.Vec3) bool {
	if vector.PlaneNormal(pts[0], pts[1], pts[2]).IsNull() {
		p.warnf(first.Line, first.Column, "Skipping face: face points are colinear")
		return true
	}
	return false
}

func (p *Parser) parseQuakeFace() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	if err := p.parseStandardUV(&a); err != nil {
		return err
	}
	p.emitStandardFace(first, pts, a)
	return nil
}

func (p *Parser) parseQuake2Face() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	if err := p.parseStandardUV(&a); err != nil {
		return err
	}
	if err := p.parseSurfaceAttributes(&a); err != nil {
		return err
	}
	p.emitStandardFace(first, pts, a)
	return nil
}

func (p *Parser) parseHexen2Face() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	if err := p.parseStandardUV(&a); err != nil {
		return err
	}
	// Hexen 2 writes one extra field that carries no information.
	more, err := p.hasMoreFields()
	if err != nil {
		return err
	}
	if more {
		if _, err := p.tok.Next(0); err != nil {
			return err
		}
	}
	p.emitStandardFace(first, pts, a)
	return nil
}

func (p *Parser) parseDaikatanaFace() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	if err := p.parseStandardUV(&a); err != nil {
		return err
	}
	tok, err := p.tok.Peek(0)
	if err != nil {
		return err
	}
	if tok.Kind == KindInteger {
		if err := p.parseSurfaceAttributes(&a); err != nil {
			return err
		}
		if tok, err = p.tok.Peek(0); err != nil {
			return err
		}
		if tok.Kind == KindInteger {
			var rgb [3]uint8
			for i := range rgb {
				c, err := p.parseInt()
				if err != nil {
					return err
				}
				rgb[i] = uint8(max(0, min(255, c)))
			}
			a.Color = &Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		}
	}
	p.emitStandardFace(first, pts, a)
	return nil
}

func (p *Parser) parseValveFace() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	u, v, err := p.parseValveUV(&a)
	if err != nil {
		return err
	}
	p.emitValveFace(first, pts, a, u, v)
	return nil
}

func (p *Parser) parseQuake2ValveFace() error {
	first, pts, a, err := p.parseFaceHead()
	if err != nil {
		return err
	}
	u, v, err := p.parseValveUV(&a)
	if err != nil {
		return err
	}
	if err := p.parseSurfaceAttributes(&a); err != nil {
		return err
	}
	p.emitValveFace(first, pts, a, u, v)
	return nil
}

// parseFaceHead reads the three points and the material name.
func (p *Parser) parseFaceHead() (lex.Token, [3]vector.Vec3, FaceAttributes, error) {
	var a FaceAttributes
	first, pts, err := p.parseFacePoints()
	if err != nil {
		return first, pts, a, err
	}
	a.TextureName, err = p.parseMaterialName()
	return first, pts, a, err
}
