/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mapparser

import "mapreader/internal/lex"

// Detect guesses the dialect of the text at the tokenizer position by looking
// at the first face. It never fails: when the input ends early or does not
// look like a face, DefaultDialect is returned. The tokenizer position is
// restored before returning.
func Detect(t *Tokenizer) Dialect {
	snap := t.Snapshot()
	defer t.Restore(snap)
	if d, ok := detectFace(t); ok {
		return d
	}
	return DefaultDialect
}

// DetectString runs Detect on a fresh tokenizer over src.
func DetectString(src string) Dialect {
	return Detect(NewTokenizer(src))
}

func detectFace(t *Tokenizer) (Dialect, bool) {
	for {
		tok, err := t.Next(0)
		if err != nil {
			return Unknown, false
		}
		if tok.Kind == KindEOF {
			return DefaultDialect, true
		}
		if tok.Kind == KindOParen {
			break
		}
	}
	for i := 0; i < 3; i++ {
		if i > 0 && !detectExpect(t, KindOParen) {
			return Unknown, false
		}
		for j := 0; j < 3; j++ {
			if !detectExpect(t, KindNumber) {
				return Unknown, false
			}
		}
		if !detectExpect(t, KindCParen) {
			return Unknown, false
		}
	}
	if _, _, err := t.ReadAnyString(lex.Whitespace); err != nil {
		return Unknown, false
	}
	tok, err := t.Next(0)
	if err != nil {
		return Unknown, false
	}
	if tok.Kind == KindOBracket {
		return Valve220, true
	}
	if !tok.Kind.Has(KindNumber) {
		return Unknown, false
	}
	// y offset, rotation, x scale, y scale
	for i := 0; i < 4; i++ {
		if !detectExpect(t, KindNumber) {
			return Unknown, false
		}
	}
	if tok, err = t.Next(0); err != nil {
		return Unknown, false
	}
	if tok.Kind.Has(KindOParen | KindCBrace) {
		return Standard, true
	}
	if !tok.Kind.Has(KindNumber) {
		return Unknown, false
	}
	if tok, err = t.Next(0); err != nil {
		return Unknown, false
	}
	if tok.Kind.Has(KindOParen | KindCBrace) {
		return Hexen2, true
	}
	return Quake2, true
}

func detectExpect(t *Tokenizer, k lex.Kind) bool {
	tok, err := t.Next(0)
	return err == nil && tok.Kind.Has(k)
}
