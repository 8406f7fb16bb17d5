/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import "mapreader/internal/vector"

// EventKind enumerates Builder callbacks.
type EventKind int

const (
	EventBeginEntity EventKind = iota + 1
	EventEndEntity
	EventBeginBrush
	EventEndBrush
	EventStandardFace
	EventValveFace
	EventPatch
)

var eventKindNames = [...]string{
	EventBeginEntity:  "BeginEntity",
	EventEndEntity:    "EndEntity",
	EventBeginBrush:   "BeginBrush",
	EventEndBrush:     "EndBrush",
	EventStandardFace: "StandardFace",
	EventValveFace:    "ValveFace",
	EventPatch:        "Patch",
}

func (k EventKind) String() string {
	if k <= 0 || int(k) >= len(eventKindNames) {
		return "Event(?)"
	}
	return eventKindNames[k]
}

// Event is one recorded Builder callback. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind       EventKind
	Line       int
	LineCount  int
	Target     Dialect
	Properties []EntityProperty
	Extra      []ExtraAttribute
	Points     [3]vector.Vec3
	Attributes FaceAttributes
	UAxis      vector.Vec3
	VAxis      vector.Vec3
	Rows       int
	Cols       int
	Control    []PatchPoint
	Texture    string
}

// Recorder is a Builder that stores events for later replay.
type Recorder struct {
	Events []Event
}

func (r *Recorder) BeginEntity(line int, props []EntityProperty, extra []ExtraAttribute) {
	r.Events = append(r.Events, Event{Kind: EventBeginEntity, Line: line, Properties: props, Extra: extra})
}

func (r *Recorder) EndEntity(startLine, lineCount int) {
	r.Events = append(r.Events, Event{Kind: EventEndEntity, Line: startLine, LineCount: lineCount})
}

func (r *Recorder) BeginBrush(line int) {
	r.Events = append(r.Events, Event{Kind: EventBeginBrush, Line: line})
}

func (r *Recorder) EndBrush(startLine, lineCount int, extra []ExtraAttribute) {
	r.Events = append(r.Events, Event{Kind: EventEndBrush, Line: startLine, LineCount: lineCount, Extra: extra})
}

func (r *Recorder) StandardFace(line int, target Dialect, p1, p2, p3 vector.Vec3, attrs FaceAttributes) {
	r.Events = append(r.Events, Event{Kind: EventStandardFace, Line: line, Target: target, Points: [3]vector.Vec3{p1, p2, p3}, Attributes: attrs})
}

func (r *Recorder) ValveFace(line int, target Dialect, p1, p2, p3 vector.Vec3, attrs FaceAttributes, uAxis, vAxis vector.Vec3) {
	r.Events = append(r.Events, Event{Kind: EventValveFace, Line: line, Target: target, Points: [3]vector.Vec3{p1, p2, p3}, Attributes: attrs, UAxis: uAxis, VAxis: vAxis})
}

func (r *Recorder) Patch(startLine, lineCount int, target Dialect, rows, cols int, points []PatchPoint, textureName string) {
	r.Events = append(r.Events, Event{Kind: EventPatch, Line: startLine, LineCount: lineCount, Target: target, Rows: rows, Cols: cols, Control: points, Texture: textureName})
}

// Kinds returns the kind of every recorded event.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Replay delivers the recorded events to b in order.
func (r *Recorder) Replay(b Builder) {
	for _, e := range r.Events {
		switch e.Kind {
		case EventBeginEntity:
			b.BeginEntity(e.Line, e.Properties, e.Extra)
		case EventEndEntity:
			b.EndEntity(e.Line, e.LineCount)
		case EventBeginBrush:
			b.BeginBrush(e.Line)
		case EventEndBrush:
			b.EndBrush(e.Line, e.LineCount, e.Extra)
		case EventStandardFace:
			b.StandardFace(e.Line, e.Target, e.Points[0], e.Points[1], e.Points[2], e.Attributes)
		case EventValveFace:
			b.ValveFace(e.Line, e.Target, e.Points[0], e.Points[1], e.Points[2], e.Attributes, e.UAxis, e.VAxis)
		case EventPatch:
			b.Patch(e.Line, e.LineCount, e.Target, e.Rows, e.Cols, e.Control, e.Texture)
		}
	}
}
