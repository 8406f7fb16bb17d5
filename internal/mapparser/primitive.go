/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import (
	"math"

	"mapreader/internal/lex"
	"mapreader/internal/vector"
)

const (
	// texMatrixZero is the column length below which a texture matrix is singular.
	texMatrixZero = 1e-6
	// texMatrixSkew is the largest tolerated cosine between the matrix columns.
	texMatrixSkew = 1e-3
)

// texMatrixUV is a texture matrix expressed as offsets, rotation and scales.
type texMatrixUV struct {
	xOffset, yOffset float64
	rotation         float64
	xScale, yScale   float64
	flipU, flipV     bool
	singular         bool
	skewed           bool
}

// decodeTexMatrix converts the rows [a b c] and [d e f] of a brush-primitive
// texture matrix. The scales are the lengths of the columns (a, d) and (b, e),
// the offsets are -c and f, and the rotation is the angle of (|a|, d). A
// negative a or e mirrors the corresponding texture axis.
func decodeTexMatrix(m vector.Mat3) texMatrixUV {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	uv := texMatrixUV{
		xOffset: -c,
		yOffset: f,
		xScale:  m.Col(0).Length(),
		yScale:  m.Col(1).Length(),
		flipU:   a < 0,
		flipV:   e < 0,
	}
	switch {
	case math.Abs(a) >= texMatrixZero:
		uv.rotation = math.Atan2(d, math.Abs(a)) * 180 / math.Pi
	case d <= -texMatrixZero:
		uv.rotation = -90
	case d >= texMatrixZero:
		uv.rotation = 90
	}
	if uv.xScale < texMatrixZero || uv.yScale < texMatrixZero {
		uv.singular = true
	} else if math.Abs(a*b+d*e)/(uv.xScale*uv.yScale) > texMatrixSkew {
		uv.skewed = true
	}
	return uv
}

// parseTexMatrix reads "( ( a b c ) ( d e f ) )".
func (p *Parser) parseTexMatrix() (vector.Mat3, error) {
	if _, err := p.tok.NextExpect(0, KindOParen); err != nil {
		return vector.Mat3{}, err
	}
	r0, err := p.parseTuple(KindOParen, KindCParen, 3)
	if err != nil {
		return vector.Mat3{}, err
	}
	r1, err := p.parseTuple(KindOParen, KindCParen, 3)
	if err != nil {
		return vector.Mat3{}, err
	}
	if _, err := p.tok.NextExpect(0, KindCParen); err != nil {
		return vector.Mat3{}, err
	}
	return vector.TexMatrix([3]float64(r0), [3]float64(r1)), nil
}

// parsePrimitiveFace reads a Quake 3 brushDef face:
// ( p1 ) ( p2 ) ( p3 ) ( ( a b c ) ( d e f ) ) TEXTURE [contents flags value]
func (p *Parser) parsePrimitiveFace() error {
	first, pts, err := p.parseFacePoints()
	if err != nil {
		return err
	}
	return p.parsePrimitiveTail(first, pts)
}

// parseDoom3PrimitiveFace reads a brushDef3 face, which stores the plane as
// ( a b c d ) instead of three points.
func (p *Parser) parseDoom3PrimitiveFace() error {
	first, err := p.tok.PeekExpect(0, KindOParen)
	if err != nil {
		return err
	}
	plane, err := p.parseTuple(KindOParen, KindCParen, 4)
	if err != nil {
		return err
	}
	return p.parsePrimitiveTail(first, planePoints([4]float64(plane)))
}

func (p *Parser) parsePrimitiveTail(first lex.Token, pts [3]vector.Vec3) error {
	m, err := p.parseTexMatrix()
	if err != nil {
		return err
	}
	var a FaceAttributes
	if a.TextureName, err = p.parseMaterialName(); err != nil {
		return err
	}
	if err := p.parseSurfaceAttributes(&a); err != nil {
		return err
	}
	p.emitPrimitiveFace(first, pts, m, a)
	return nil
}

// planePoints turns the plane equation a*x + b*y + c*z + d = 0 into three
// points wound so that PlaneNormal yields (a, b, c) normalized.
func planePoints(pl [4]float64) [3]vector.Vec3 {
	n := vector.V3(pl[0], pl[1], pl[2])
	l := n.Length()
	if l <= vector.AlmostZero {
		return [3]vector.Vec3{}
	}
	n = n.Scale(1 / l)
	p0 := n.Scale(-pl[3] / l)
	right, up := vector.Basis(n)
	return [3]vector.Vec3{p0, p0.Add(right), p0.Add(up)}
}

func (p *Parser) emitPrimitiveFace(first lex.Token, pts [3]vector.Vec3, m vector.Mat3, a FaceAttributes) {
	n := vector.PlaneNormal(pts[0], pts[1], pts[2])
	if n.IsNull() {
		p.warnf(first.Line, first.Column, "Skipping face: face points are colinear")
		return
	}
	uv := decodeTexMatrix(m)
	switch {
	case uv.singular:
		p.warnf(first.Line, first.Column, "Brush primitive texture matrix is singular")
	case uv.skewed:
		p.warnf(first.Line, first.Column, "Brush primitive texture matrix is not orthogonal")
	}
	uAxis, vAxis := vector.Basis(n)
	if uv.flipU {
		uAxis = uAxis.Neg()
	}
	if uv.flipV {
		vAxis = vAxis.Neg()
	}
	a.XOffset, a.YOffset = uv.xOffset, uv.yOffset
	a.Rotation = uv.rotation
	a.XScale, a.YScale = uv.xScale, uv.yScale
	a.BrushPrimitiveMatrix = &m
	p.b.ValveFace(first.Line, p.target, pts[0], pts[1], pts[2], a, uAxis, vAxis)
}
