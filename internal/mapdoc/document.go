/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mapdoc assembles parse events into an in-memory map document.
package mapdoc

import (
	"mapreader/internal/mapparser"
	"mapreader/internal/vector"
)

// Document is the result of building a parsed map. Brushes and patches that
// were parsed outside of an entity are kept in the Loose entity.
type Document struct {
	Entities []*Entity
	Loose    Entity
}

type Entity struct {
	Line       int
	LineCount  int
	Properties []mapparser.EntityProperty
	Extra      []mapparser.ExtraAttribute
	Brushes    []*Brush
	Patches    []*Patch
}

// Property returns the value of the first property named key.
func (e *Entity) Property(key string) (string, bool) {
	for _, p := range e.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Classname returns the "classname" property or an empty string.
func (e *Entity) Classname() string {
	v, _ := e.Property("classname")
	return v
}

type Brush struct {
	Line      int
	LineCount int
	Faces     []Face
	Extra     []mapparser.ExtraAttribute
}

// Face is one brush plane. UAxis and VAxis are only set for Valve faces.
type Face struct {
	Line       int
	Target     mapparser.Dialect
	Points     [3]vector.Vec3
	Attributes mapparser.FaceAttributes
	Valve      bool
	UAxis      vector.Vec3
	VAxis      vector.Vec3
}

// Normal returns the unit plane normal.
func (f Face) Normal() vector.Vec3 {
	return vector.PlaneNormal(f.Points[0], f.Points[1], f.Points[2])
}

type Patch struct {
	Line      int
	LineCount int
	Target    mapparser.Dialect
	Rows      int
	Cols      int
	Points    []mapparser.PatchPoint
	Texture   string
}

// Builder implements mapparser.Builder.
type Builder struct {
	doc    Document
	entity *Entity
	brush  *Brush
	snap   int
}

// snapEpsilon is the largest distance a coordinate is moved by SnapPoints.
const snapEpsilon = 1e-3

var _ mapparser.Builder = (*Builder)(nil)

func NewBuilder() *Builder { return &Builder{snap: -1} }

// SnapPoints makes the builder round face points and patch control points that
// lie within 0.001 of a value with the given number of decimal places. A
// negative count keeps points exactly as parsed.
func (b *Builder) SnapPoints(places int) *Builder {
	b.snap = places
	return b
}

func (b *Builder) point(v vector.Vec3) vector.Vec3 { return v.Correct(b.snap, snapEpsilon) }

// Document returns the document built so far.
func (b *Builder) Document() *Document { return &b.doc }

func (b *Builder) current() *Entity {
	if b.entity != nil {
		return b.entity
	}
	return &b.doc.Loose
}

func (b *Builder) BeginEntity(line int, props []mapparser.EntityProperty, extra []mapparser.ExtraAttribute) {
	b.entity = &Entity{Line: line, Properties: props, Extra: extra}
	b.doc.Entities = append(b.doc.Entities, b.entity)
}

func (b *Builder) EndEntity(startLine, lineCount int) {
	if b.entity != nil {
		b.entity.LineCount = lineCount
	}
	b.entity = nil
}

func (b *Builder) BeginBrush(line int) {
	b.brush = &Brush{Line: line}
}

func (b *Builder) EndBrush(startLine, lineCount int, extra []mapparser.ExtraAttribute) {
	if b.brush == nil {
		return
	}
	b.brush.LineCount = lineCount
	b.brush.Extra = extra
	e := b.current()
	e.Brushes = append(e.Brushes, b.brush)
	b.brush = nil
}

func (b *Builder) addFace(f Face) {
	if b.brush == nil {
		// bare face lists have no enclosing brush
		b.brush = &Brush{Line: f.Line}
	}
	b.brush.Faces = append(b.brush.Faces, f)
}

func (b *Builder) StandardFace(line int, target mapparser.Dialect, p1, p2, p3 vector.Vec3, attrs mapparser.FaceAttributes) {
	b.addFace(Face{Line: line, Target: target, Points: [3]vector.Vec3{b.point(p1), b.point(p2), b.point(p3)}, Attributes: attrs})
}

func (b *Builder) ValveFace(line int, target mapparser.Dialect, p1, p2, p3 vector.Vec3, attrs mapparser.FaceAttributes, uAxis, vAxis vector.Vec3) {
	b.addFace(Face{Line: line, Target: target, Points: [3]vector.Vec3{b.point(p1), b.point(p2), b.point(p3)}, Attributes: attrs, Valve: true, UAxis: uAxis, VAxis: vAxis})
}

func (b *Builder) Patch(startLine, lineCount int, target mapparser.Dialect, rows, cols int, points []mapparser.PatchPoint, textureName string) {
	if b.snap >= 0 {
		snapped := make([]mapparser.PatchPoint, len(points))
		for i, pt := range points {
			pt.Position = b.point(pt.Position)
			snapped[i] = pt
		}
		points = snapped
	}
	e := b.current()
	e.Patches = append(e.Patches, &Patch{
		Line: startLine, LineCount: lineCount, Target: target,
		Rows: rows, Cols: cols, Points: points, Texture: textureName,
	})
}

// Flush closes a brush that was opened by a bare face list.
func (b *Builder) Flush() {
	if b.brush != nil {
		b.EndBrush(b.brush.Line, 0, nil)
	}
}
