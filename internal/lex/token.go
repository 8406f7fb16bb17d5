/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package lex provides a small, allocation-light scanner and a tokenizer shell
// that concrete grammars plug a classifier into.
package lex

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Whitespace is the default delimiter set used by word-style reads.
const Whitespace = " \t\n\r"

// Kind is a bitmask. Every concrete token kind occupies exactly one bit, so a
// set of acceptable kinds can be tested with a single AND.
type Kind uint32

// Has reports whether k shares at least one bit with mask.
func (k Kind) Has(mask Kind) bool { return k&mask != 0 }

// NameTable maps single-bit kinds to display names. Index i names the kind 1<<i.
type NameTable []string

// Name returns the display name for a single kind.
func (t NameTable) Name(k Kind) string {
	if k == 0 {
		return "nothing"
	}
	idx := bits.TrailingZeros32(uint32(k))
	if idx >= len(t) || t[idx] == "" {
		return fmt.Sprintf("token(%#x)", uint32(k))
	}
	return t[idx]
}

// Describe renders every kind contained in mask, lowest bit first.
func (t NameTable) Describe(mask Kind) string {
	var names []string
	for m := uint32(mask); m != 0; m &= m - 1 {
		names = append(names, t.Name(Kind(m&-m)))
	}
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

// Token is a classified span of the source. Data aliases the source text.
type Token struct {
	Kind   Kind
	Data   string
	Start  int
	End    int
	Offset int
	Line   int
	Column int
}

// HasKind reports whether the token matches any kind in mask.
func (t Token) HasKind(mask Kind) bool { return t.Kind.Has(mask) }

// Len is the length of the token text in bytes.
func (t Token) Len() int { return t.End - t.Start }

// Float converts the token text to a float64.
func (t Token) Float() (float64, error) {
	f, err := strconv.ParseFloat(t.Data, 64)
	if err != nil {
		return 0, t.errorf("invalid number '%s'", t.Data)
	}
	return f, nil
}

// Int converts the token text to an int.
func (t Token) Int() (int, error) {
	i, err := strconv.Atoi(t.Data)
	if err != nil {
		return 0, t.errorf("invalid integer '%s'", t.Data)
	}
	return i, nil
}

func (t Token) errorf(format string, args ...any) *Error {
	return &Error{Line: t.Line, Column: t.Column, Message: fmt.Sprintf(format, args...)}
}
