/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import "mapreader/internal/vector"

// EntityProperty is a key/value pair as written in the source. Values are not
// unescaped.
type EntityProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExtraType tells how an extra attribute value was written.
type ExtraType int

const (
	ExtraString ExtraType = iota
	ExtraInteger
)

// ExtraAttribute is a name/value pair from a "/// name value" comment line.
type ExtraAttribute struct {
	Name   string
	Value  string
	Type   ExtraType
	Line   int
	Column int
}

// Color is a per-face color. Components are clamped to 0..255 on read.
type Color struct{ R, G, B uint8 }

// FaceAttributes carries the texture parameters of a face. Optional fields
// are nil when the source did not contain them.
type FaceAttributes struct {
	TextureName string
	XOffset     float64
	YOffset     float64
	Rotation    float64
	XScale      float64
	YScale      float64

	SurfaceContents *int
	SurfaceFlags    *int
	SurfaceValue    *float64
	Color           *Color

	// BrushPrimitiveMatrix is set for faces decoded from a texture matrix.
	BrushPrimitiveMatrix *vector.Mat3
}

// HasSurfaceAttributes reports whether the trailing contents/flags/value
// triple was present.
func (a FaceAttributes) HasSurfaceAttributes() bool {
	return a.SurfaceContents != nil && a.SurfaceFlags != nil && a.SurfaceValue != nil
}

// PatchPoint is a control point with texture coordinates.
type PatchPoint struct {
	Position vector.Vec3
	U, V     float64
}

// Builder receives the structural events of a parse in source order.
//
// Between BeginEntity and EndEntity there may be any number of brush or patch
// groups; faces only occur between BeginBrush and EndBrush.
type Builder interface {
	BeginEntity(line int, props []EntityProperty, extra []ExtraAttribute)
	EndEntity(startLine, lineCount int)
	BeginBrush(line int)
	EndBrush(startLine, lineCount int, extra []ExtraAttribute)
	StandardFace(line int, target Dialect, p1, p2, p3 vector.Vec3, attrs FaceAttributes)
	ValveFace(line int, target Dialect, p1, p2, p3 vector.Vec3, attrs FaceAttributes, uAxis, vAxis vector.Vec3)
	Patch(startLine, lineCount int, target Dialect, rows, cols int, points []PatchPoint, textureName string)
}

// Warning is a located, non-fatal parse diagnostic.
type Warning struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Status receives warnings and progress reports. Progress values are in
// [0, 1] and never decrease.
type Status interface {
	Warn(line, column int, msg string)
	Progress(fraction float64)
}

type nopStatus struct{}

func (nopStatus) Warn(int, int, string) {}
func (nopStatus) Progress(float64)      {}

// NopStatus discards everything.
var NopStatus Status = nopStatus{}

// warningBuffer holds warnings until a parse has succeeded and forwards
// progress immediately.
type warningBuffer struct {
	next     Status
	warnings []Warning
}

func (b *warningBuffer) Warn(line, column int, msg string) {
	b.warnings = append(b.warnings, Warning{Line: line, Column: column, Message: msg})
}

func (b *warningBuffer) Progress(f float64) { b.next.Progress(f) }

func (b *warningBuffer) flush() {
	for _, w := range b.warnings {
		b.next.Warn(w.Line, w.Column, w.Message)
	}
}
