/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapdoc

import (
	"sort"
	"time"

	"mapreader/internal/mapparser"
)

// Summary is a flat, serializable overview of a parsed document.
type Summary struct {
	Path         string              `json:"path"`
	SourceFormat string              `json:"sourceFormat"`
	TargetFormat string              `json:"targetFormat"`
	ParsedAt     time.Time           `json:"parsedAt"`
	Entities     int                 `json:"entities"`
	Brushes      int                 `json:"brushes"`
	Faces        int                 `json:"faces"`
	Patches      int                 `json:"patches"`
	Classnames   map[string]int      `json:"classnames"`
	Textures     []TextureUse        `json:"textures"`
	Warnings     []mapparser.Warning `json:"warnings"`
}

// TextureUse counts faces and patches using one texture.
type TextureUse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summarize counts what doc contains. Textures are sorted by descending use,
// then by name.
func Summarize(path string, doc *Document, res mapparser.Result) Summary {
	s := Summary{
		Path:         path,
		SourceFormat: res.Source.String(),
		TargetFormat: res.Target.String(),
		ParsedAt:     time.Now().UTC(),
		Classnames:   map[string]int{},
		Warnings:     res.Warnings,
	}
	if s.Warnings == nil {
		s.Warnings = []mapparser.Warning{}
	}
	textures := map[string]int{}
	count := func(e *Entity) {
		s.Brushes += len(e.Brushes)
		s.Patches += len(e.Patches)
		for _, b := range e.Brushes {
			s.Faces += len(b.Faces)
			for _, f := range b.Faces {
				textures[f.Attributes.TextureName]++
			}
		}
		for _, p := range e.Patches {
			textures[p.Texture]++
		}
	}
	for _, e := range doc.Entities {
		s.Entities++
		if cn := e.Classname(); cn != "" {
			s.Classnames[cn]++
		}
		count(e)
	}
	count(&doc.Loose)

	s.Textures = make([]TextureUse, 0, len(textures))
	for name, n := range textures {
		s.Textures = append(s.Textures, TextureUse{Name: name, Count: n})
	}
	sort.Slice(s.Textures, func(i, j int) bool {
		if s.Textures[i].Count != s.Textures[j].Count {
			return s.Textures[i].Count > s.Textures[j].Count
		}
		return s.Textures[i].Name < s.Textures[j].Name
	})
	return s
}
