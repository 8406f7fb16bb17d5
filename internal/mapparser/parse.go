/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mapparser reads brush-based level map sources in the Quake family of
// dialects and reports entities, brushes, faces and patches to a Builder.
package mapparser

// Mode selects what kind of text a parse expects.
type Mode int

const (
	// ModeEntities reads a complete map document.
	ModeEntities Mode = iota
	// ModeObjects reads brush and patch blocks without an entity wrapper.
	ModeObjects
	// ModeFaces reads a bare list of faces.
	ModeFaces
)

// Options configure Parse. Zero values request detection of the source
// dialect and a target equal to the source.
type Options struct {
	Source Dialect
	Target Dialect
	Mode   Mode
}

// Result describes a successful parse.
type Result struct {
	Source   Dialect
	Target   Dialect
	Warnings []Warning
}

// Parse reads src and delivers its events to b. Either the whole input is
// accepted and every event is delivered, or an error is returned and b sees
// nothing. Warnings are passed to st after the events and are also returned
// in the Result. st may be nil.
func Parse(src string, opts Options, b Builder, st Status) (Result, error) {
	if st == nil {
		st = NopStatus
	}
	p := NewParser(src, opts.Source, opts.Target)
	rec := &Recorder{}
	buf := &warningBuffer{next: st}

	var err error
	switch opts.Mode {
	case ModeObjects:
		err = p.ParseBrushesOrPatches(rec, buf)
	case ModeFaces:
		err = p.ParseBrushFaces(rec, buf)
	default:
		err = p.ParseEntities(rec, buf)
	}
	if err != nil {
		return Result{}, err
	}
	rec.Replay(b)
	buf.flush()
	return Result{Source: p.Source(), Target: p.Target(), Warnings: buf.warnings}, nil
}
