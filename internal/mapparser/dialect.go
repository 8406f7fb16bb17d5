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
	"strings"
)

// Dialect identifies a map-file flavor. The zero value requests detection.
type Dialect int

const (
	Unknown Dialect = iota
	Standard
	Quake2
	Quake2Valve
	Valve220
	Hexen2
	Daikatana
	Quake3Legacy
	Quake3Valve
	Quake3BrushPrimitive
	Doom3Standard
	Doom3Valve
	Doom3BrushPrimitive
)

// DefaultDialect is assumed when detection cannot decide.
const DefaultDialect = Standard

var dialectNames = [...]string{
	Unknown:              "Unknown",
	Standard:             "Standard",
	Quake2:               "Quake2",
	Quake2Valve:          "Quake2 (Valve)",
	Valve220:             "Valve",
	Hexen2:               "Hexen2",
	Daikatana:            "Daikatana",
	Quake3Legacy:         "Quake3 (legacy)",
	Quake3Valve:          "Quake3 (Valve)",
	Quake3BrushPrimitive: "Quake3",
	Doom3Standard:        "Doom3 (legacy)",
	Doom3Valve:           "Doom3 (Valve)",
	Doom3BrushPrimitive:  "Doom3",
}

// Dialects lists every concrete dialect in declaration order.
func Dialects() []Dialect {
	out := make([]Dialect, 0, len(dialectNames)-1)
	for d := Standard; d <= Doom3BrushPrimitive; d++ {
		out = append(out, d)
	}
	return out
}

func (d Dialect) String() string {
	if d < 0 || int(d) >= len(dialectNames) {
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
	return dialectNames[d]
}

// ParseDialect resolves a dialect by display name or by its identifier,
// ignoring case. "auto" and "" resolve to Unknown.
func ParseDialect(name string) (Dialect, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.EqualFold(n, "auto") {
		return Unknown, nil
	}
	for d, s := range dialectNames {
		if strings.EqualFold(s, n) {
			return Dialect(d), nil
		}
	}
	if d, ok := dialectIdents[strings.ToLower(n)]; ok {
		return d, nil
	}
	return Unknown, fmt.Errorf("unknown map format %q", name)
}

var dialectIdents = map[string]Dialect{
	"standard":             Standard,
	"quake":                Standard,
	"quake2":               Quake2,
	"quake2valve":          Quake2Valve,
	"valve":                Valve220,
	"valve220":             Valve220,
	"hexen2":               Hexen2,
	"daikatana":            Daikatana,
	"quake3legacy":         Quake3Legacy,
	"quake3valve":          Quake3Valve,
	"quake3":               Quake3BrushPrimitive,
	"quake3brushprimitive": Quake3BrushPrimitive,
	"doom3standard":        Doom3Standard,
	"doom3legacy":          Doom3Standard,
	"doom3valve":           Doom3Valve,
	"doom3":                Doom3BrushPrimitive,
	"doom3brushprimitive":  Doom3BrushPrimitive,
}

// IsQuake3 reports whether d accepts brushDef and patchDef2 blocks.
func (d Dialect) IsQuake3() bool {
	return d == Quake3Legacy || d == Quake3Valve || d == Quake3BrushPrimitive
}

// IsDoom3 reports whether d accepts brushDef3, patchDef2/3 and a Version header.
func (d Dialect) IsDoom3() bool {
	return d == Doom3Standard || d == Doom3Valve || d == Doom3BrushPrimitive
}
