/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package report renders a parse Summary as JSON (checked against an embedded
// JSON schema) or as a printable PDF.
package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"mapreader/internal/mapdoc"
)

//go:embed summary.schema.json
var summarySchema []byte

// Schema returns the JSON schema that WriteJSON output conforms to.
func Schema() []byte { return summarySchema }

// ErrInvalid is returned (wrapped) when a document fails schema validation.
var ErrInvalid = errors.New("summary does not conform to schema")

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s mapdoc.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// Validate checks a JSON document against the summary schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(summarySchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Format selects an output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "json" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want json or pdf)", s)
	}
}

// FileName derives the report file name for a map path,
// e.g. "maps/e1m1.map" -> "e1m1.summary.json".
func FileName(mapPath string, f Format) string {
	base := strings.TrimSuffix(filepath.Base(mapPath), filepath.Ext(mapPath))
	if base == "" || base == "." {
		base = "map"
	}
	return base + ".summary." + string(f)
}

// WriteFile renders s into dir in format f and returns the written path. JSON
// output is validated before it is written.
func WriteFile(dir string, s mapdoc.Summary, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(s.Path, f))
	switch f {
	case FormatPDF:
		if err := WritePDF(path, s); err != nil {
			return "", err
		}
	case FormatJSON:
		var sb strings.Builder
		if err := WriteJSON(&sb, s); err != nil {
			return "", err
		}
		data := []byte(sb.String())
		if err := Validate(data); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write report: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown report format %q", f)
	}
	return path, nil
}
