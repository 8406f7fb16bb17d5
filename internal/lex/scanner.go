/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lex

import "strings"

// Position is a complete scanner state. Restoring a Position rewinds the
// cursor, the line and column counters and the escape flag together.
type Position struct {
	Cursor  int
	Line    int
	Column  int
	Escaped bool
}

// Scanner walks a source string byte by byte, tracking line and column.
// A "\r\n" pair counts as a single line break.
type Scanner struct {
	src    string
	escape byte
	pos    Position
}

// NewScanner returns a scanner positioned at line 1, column 1. A zero escape
// byte disables escape tracking.
func NewScanner(src string, escape byte) *Scanner {
	return &Scanner{src: src, escape: escape, pos: Position{Line: 1, Column: 1}}
}

// Source returns the whole input.
func (s *Scanner) Source() string { return s.src }

// Len is the input length in bytes.
func (s *Scanner) Len() int { return len(s.src) }

// Offset is the byte index of the cursor.
func (s *Scanner) Offset() int { return s.pos.Cursor }

// Line is the 1-based line of the cursor.
func (s *Scanner) Line() int { return s.pos.Line }

// Column is the 1-based column of the cursor.
func (s *Scanner) Column() int { return s.pos.Column }

// Escaped reports whether the byte under the cursor is escaped.
func (s *Scanner) Escaped() bool { return s.pos.Escaped }

// EOF reports whether the cursor is past the last byte.
func (s *Scanner) EOF() bool { return s.pos.Cursor >= len(s.src) }

// Snapshot captures the current state.
func (s *Scanner) Snapshot() Position { return s.pos }

// Restore rewinds to a previously captured state.
func (s *Scanner) Restore(p Position) { s.pos = p }

// CurChar returns the byte under the cursor, or 0 at end of input.
func (s *Scanner) CurChar() byte { return s.LookAhead(0) }

// LookAhead returns the byte n positions past the cursor, or 0 past the end.
func (s *Scanner) LookAhead(n int) byte {
	if i := s.pos.Cursor + n; i >= 0 && i < len(s.src) {
		return s.src[i]
	}
	return 0
}

// Advance moves the cursor forward by n bytes.
func (s *Scanner) Advance(n int) error {
	for i := 0; i < n; i++ {
		if s.EOF() {
			return s.eofError("")
		}
		s.step()
	}
	return nil
}

// step consumes one byte. The caller guarantees the scanner is not at EOF.
func (s *Scanner) step() {
	c := s.src[s.pos.Cursor]
	switch {
	case c == '\r' && s.LookAhead(1) == '\n':
		s.pos.Column++
		s.pos.Escaped = false
	case c == '\n' || c == '\r':
		s.pos.Line++
		s.pos.Column = 1
		s.pos.Escaped = false
	case s.escape != 0 && c == s.escape:
		s.pos.Column++
		s.pos.Escaped = !s.pos.Escaped
	default:
		s.pos.Column++
		s.pos.Escaped = false
	}
	s.pos.Cursor++
}

func (s *Scanner) eofError(context string) *Error {
	msg := ErrUnexpectedEOF.Error()
	if context != "" {
		msg += " " + context
	}
	return &Error{Line: s.pos.Line, Column: s.pos.Column, Message: msg, Err: ErrUnexpectedEOF}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *Scanner) isDelim(delims string) bool {
	return s.EOF() || strings.IndexByte(delims, s.CurChar()) >= 0
}

func (s *Scanner) skipDigits() int {
	n := 0
	for !s.EOF() && isDigit(s.CurChar()) {
		s.step()
		n++
	}
	return n
}

// ReadInteger consumes an optionally signed run of digits that is followed by
// a delimiter or end of input. It returns the end offset of the number. On
// failure nothing is consumed.
func (s *Scanner) ReadInteger(delims string) (int, bool) {
	c := s.CurChar()
	if s.EOF() || (c != '+' && c != '-' && !isDigit(c)) {
		return 0, false
	}
	prev := s.pos
	if c == '+' || c == '-' {
		s.step()
	}
	if s.skipDigits() > 0 && s.isDelim(delims) {
		return s.pos.Cursor, true
	}
	s.pos = prev
	return 0, false
}

// ReadDecimal consumes an optionally signed decimal number with an optional
// fraction and exponent, followed by a delimiter or end of input. At least one
// digit must appear in the mantissa. On failure nothing is consumed.
func (s *Scanner) ReadDecimal(delims string) (int, bool) {
	c := s.CurChar()
	if s.EOF() || (c != '+' && c != '-' && c != '.' && !isDigit(c)) {
		return 0, false
	}
	prev := s.pos
	if c == '+' || c == '-' {
		s.step()
	}
	digits := s.skipDigits()
	if s.CurChar() == '.' {
		s.step()
		digits += s.skipDigits()
	}
	if digits == 0 {
		s.pos = prev
		return 0, false
	}
	if c := s.CurChar(); c == 'e' || c == 'E' {
		s.step()
		if c := s.CurChar(); c == '+' || c == '-' {
			s.step()
		}
		if s.skipDigits() == 0 {
			s.pos = prev
			return 0, false
		}
	}
	if s.isDelim(delims) {
		return s.pos.Cursor, true
	}
	s.pos = prev
	return 0, false
}

// ReadUntil consumes at least one byte and then everything up to the next
// delimiter. It returns the end offset.
func (s *Scanner) ReadUntil(delims string) int {
	if !s.EOF() {
		s.step()
	}
	for !s.EOF() && strings.IndexByte(delims, s.CurChar()) < 0 {
		s.step()
	}
	return s.pos.Cursor
}

// DiscardWhile skips bytes contained in set.
func (s *Scanner) DiscardWhile(set string) {
	for !s.EOF() && strings.IndexByte(set, s.CurChar()) >= 0 {
		s.step()
	}
}

// DiscardUntil skips bytes up to, but not including, the first byte in set.
func (s *Scanner) DiscardUntil(set string) {
	for !s.EOF() && strings.IndexByte(set, s.CurChar()) < 0 {
		s.step()
	}
}

// ReadQuotedString expects the cursor on the first byte after the opening
// delimiter. It consumes up to and including the first unescaped closing
// delimiter and returns the offset where the content ends.
//
// If hack is not empty, an escaped delimiter whose successor is one of the
// hack bytes also terminates the string. This accepts Windows paths such as
// "c:\maps\" that end in a backslash.
func (s *Scanner) ReadQuotedString(delim byte, hack string) (int, error) {
	for !s.EOF() && (s.CurChar() != delim || s.pos.Escaped) {
		if hack != "" && s.CurChar() == delim && s.pos.Escaped {
			if next := s.LookAhead(1); next != 0 && strings.IndexByte(hack, next) >= 0 {
				break
			}
		}
		s.step()
	}
	if s.EOF() {
		return 0, s.eofError("in quoted string")
	}
	end := s.pos.Cursor
	s.step()
	return end, nil
}

// ReadAnyString skips leading whitespace and reads either a quoted string or a
// bare run up to the next delimiter. The content is returned raw, together
// with whether it was quoted.
func (s *Scanner) ReadAnyString(delims string) (string, bool, error) {
	s.DiscardWhile(Whitespace)
	if s.EOF() {
		return "", false, s.eofError("while reading a string")
	}
	if s.CurChar() == '"' {
		s.step()
		start := s.pos.Cursor
		end, err := s.ReadQuotedString('"', "")
		if err != nil {
			return "", true, err
		}
		return s.src[start:end], true, nil
	}
	start := s.pos.Cursor
	end := s.ReadUntil(delims)
	return s.src[start:end], false, nil
}
