/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestCrossAndDot(t *testing.T) {
	c := PosX.Cross(PosY)
	if c != PosZ {
		t.Fatalf("X cross Y = %+v, want %+v", c, PosZ)
	}
	if d := V3(1, 2, 3).Dot(V3(4, 5, 6)); d != 32 {
		t.Fatalf("dot = %v, want 32", d)
	}
}

func TestNormalizeNull(t *testing.T) {
	if n := (Vec3{}).Normalize(); n != Null {
		t.Fatalf("Normalize(0) = %+v, want Null", n)
	}
	n := V3(0, 3, 4).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Fatalf("normalized length = %v", n.Length())
	}
}

func TestPlaneNormalWinding(t *testing.T) {
	// Floor face as written by map editors: normal points up.
	n := PlaneNormal(V3(-64, -64, 16), V3(-64, -63, 16), V3(-63, -64, 16))
	if !n.ApproxEqual(PosZ, 1e-9) {
		t.Fatalf("normal = %+v, want +Z", n)
	}
	if !PlaneNormal(V3(0, 0, 0), V3(1, 1, 1), V3(2, 2, 2)).IsNull() {
		t.Fatalf("colinear points must yield a null normal")
	}
}

func TestBasisIsOrthonormal(t *testing.T) {
	for _, n := range []Vec3{PosX, PosY, PosZ, PosZ.Neg(), V3(1, 1, 1).Normalize(), V3(0.2, -0.9, 0.1).Normalize()} {
		right, up := Basis(n)
		if math.Abs(right.Length()-1) > 1e-9 || math.Abs(up.Length()-1) > 1e-9 {
			t.Fatalf("basis for %+v not unit: %+v %+v", n, right, up)
		}
		if math.Abs(right.Dot(n)) > 1e-9 || math.Abs(up.Dot(n)) > 1e-9 || math.Abs(up.Dot(right)) > 1e-9 {
			t.Fatalf("basis for %+v not orthogonal", n)
		}
		if got := up.Cross(right); !got.ApproxEqual(n, 1e-9) {
			t.Fatalf("up x right = %+v, want %+v", got, n)
		}
	}
}

func TestCorrect(t *testing.T) {
	v := V3(1.0000001, 2.5, -3.9999999).Correct(0, 1e-5)
	if v != V3(1, 2.5, -4) {
		t.Fatalf("Correct = %+v", v)
	}
}

func TestFloatRound(t *testing.T) {
	if got := FloatRound(1.23456, 2); got != 1.23 {
		t.Fatalf("FloatRound = %v, want 1.23", got)
	}
	if got := FloatRound(1.5, -1); got != 1.5 {
		t.Fatalf("FloatRound negative places = %v, want 1.5", got)
	}
}

func TestMat3(t *testing.T) {
	m := TexMatrix([3]float64{2, 0, 5}, [3]float64{0, 3, 7})
	if got := m.Col(0); got != V3(2, 0, 0) {
		t.Fatalf("Col(0) = %+v", got)
	}
	if got := m.Col(2); got != V3(5, 7, 1) {
		t.Fatalf("Col(2) = %+v", got)
	}
}
