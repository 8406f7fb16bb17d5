/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"mapreader/internal/mapdoc"
)

// Units are points; A4 portrait with built-in Helvetica so no fonts are embedded.
const (
	pdfMargin    = 40.0
	pdfLine      = 14.0
	pdfMaxRows   = 40 // per table; the rest is summarized in one line
	pdfLabelCol  = 160.0
	pdfNumberCol = 80.0
)

// WritePDF renders s as a PDF document at path.
func WritePDF(path string, s mapdoc.Summary) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", SizeStr: "A4"})
	pdf.SetTitle("Map summary: "+filepath.Base(s.Path), false)
	pdf.SetAuthor("mapreader", false)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 24, "Map summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	pairs := [][2]string{
		{"File", s.Path},
		{"Source format", s.SourceFormat},
		{"Target format", s.TargetFormat},
		{"Parsed at", s.ParsedAt.UTC().Format(time.RFC3339)},
		{"Entities", fmt.Sprint(s.Entities)},
		{"Brushes", fmt.Sprint(s.Brushes)},
		{"Faces", fmt.Sprint(s.Faces)},
		{"Patches", fmt.Sprint(s.Patches)},
		{"Warnings", fmt.Sprint(len(s.Warnings))},
	}
	for _, p := range pairs {
		pdf.CellFormat(pdfLabelCol, pdfLine, p[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, pdfLine, p[1], "", 1, "L", false, 0, "")
	}

	classnames := make([]string, 0, len(s.Classnames))
	for cn := range s.Classnames {
		classnames = append(classnames, cn)
	}
	sort.Strings(classnames)
	rows := make([][2]string, 0, len(classnames))
	for _, cn := range classnames {
		rows = append(rows, [2]string{cn, fmt.Sprint(s.Classnames[cn])})
	}
	table(pdf, "Entity classes", "Classname", "Count", rows)

	rows = rows[:0]
	for _, t := range s.Textures {
		rows = append(rows, [2]string{t.Name, fmt.Sprint(t.Count)})
	}
	table(pdf, "Textures", "Name", "Uses", rows)

	rows = rows[:0]
	for _, w := range s.Warnings {
		rows = append(rows, [2]string{fmt.Sprintf("%d:%d", w.Line, w.Column), w.Message})
	}
	table(pdf, "Warnings", "Location", "Message", rows)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func table(pdf *gofpdf.Fpdf, title, left, right string, rows [][2]string) {
	if len(rows) == 0 {
		return
	}
	pdf.Ln(pdfLine)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 18, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(pdfLabelCol+pdfNumberCol, pdfLine, left, "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, pdfLine, right, "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, r := range rows {
		if i == pdfMaxRows {
			pdf.CellFormat(0, pdfLine, fmt.Sprintf("... and %d more", len(rows)-pdfMaxRows), "", 1, "L", false, 0, "")
			break
		}
		pdf.CellFormat(pdfLabelCol+pdfNumberCol, pdfLine, r[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, pdfLine, r[1], "1", 1, "L", false, 0, "")
	}
}
