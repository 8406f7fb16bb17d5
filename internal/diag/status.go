/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package diag provides the parse status sink used by the command line tool.
package diag

import (
	"log/slog"

	"mapreader/internal/mapparser"
)

// LogStatus forwards warnings to a slog logger at WARN level and progress at
// DEBUG level, in steps of at least one tenth.
type LogStatus struct {
	l    *slog.Logger
	path string
	last float64
}

var _ mapparser.Status = (*LogStatus)(nil)

// NewLogStatus returns a status that tags every record with the map path.
func NewLogStatus(l *slog.Logger, path string) *LogStatus {
	return &LogStatus{l: l, path: path, last: -1}
}

func (s *LogStatus) Warn(line, column int, msg string) {
	s.l.Warn(msg, "file", s.path, "line", line, "column", column)
}

func (s *LogStatus) Progress(f float64) {
	if f < 1 && f-s.last < 0.1 {
		return
	}
	s.last = f
	s.l.Debug("parse progress", "file", s.path, "percent", int(f*100))
}
