/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"mapreader/internal/mapparser"
)

func TestLogStatusWritesWarnings(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st := NewLogStatus(l, "e1m1.map")
	st.Warn(12, 3, "Skipping face: face points are colinear")
	out := buf.String()
	for _, want := range []string{"level=WARN", "line=12", "column=3", "file=e1m1.map", "colinear"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestLogStatusThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st := NewLogStatus(l, "x.map")
	for _, f := range []float64{0.01, 0.02, 0.05, 0.2, 0.21, 1} {
		st.Progress(f)
	}
	if n := strings.Count(buf.String(), "parse progress"); n != 3 {
		t.Fatalf("progress lines = %d, want 3:\n%s", n, buf.String())
	}
}

func TestLogStatusWithParse(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	src := "{\n\"a\" \"1\"\n\"a\" \"2\"\n}\n"
	res, err := mapparser.Parse(src, mapparser.Options{Source: mapparser.Standard}, &mapparser.Recorder{}, NewLogStatus(l, "dup.map"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Line != 3 {
		t.Fatalf("warnings = %+v, want one on line 3", res.Warnings)
	}
	out := buf.String()
	for _, want := range []string{"Ignoring duplicate entity property 'a'", "line=3", "percent=100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}
