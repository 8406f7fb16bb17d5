/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 3D vector math for plane points, normals and texture axes.
// Values use float64 so that parsed coordinates round-trip without loss.

import "math"

// AlmostZero is the length below which a vector is treated as null.
const AlmostZero = 1e-12

// Vec3 is a 3D vector or point.
type Vec3 struct{ X, Y, Z float64 }

// V3 builds a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Null is the zero vector; PosX, PosY and PosZ are the unit axes.
var (
	Null  = Vec3{}
	PosX  = Vec3{X: 1}
	PosY  = Vec3{Y: 1}
	PosZ  = Vec3{Z: 1}
	axes3 = [3]Vec3{PosX, PosY, PosZ}
)

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale multiplies every component by f.
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot is the scalar product.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Length is the Euclidean norm.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// IsNull reports whether v is shorter than AlmostZero.
func (v Vec3) IsNull() bool { return v.Length() <= AlmostZero }

// Component returns X, Y or Z for i = 0, 1, 2.
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Cross returns the right-handed cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector in the direction of v, or Null if v is null.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l <= AlmostZero {
		return Null
	}
	return v.Scale(1 / l)
}

// ApproxEqual compares component-wise within eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

// Correct snaps every component that lies within eps of its value rounded to
// the given number of decimal places.
func (v Vec3) Correct(places int, eps float64) Vec3 {
	snap := func(f float64) float64 {
		if r := FloatRound(f, places); math.Abs(r-f) <= eps {
			return r
		}
		return f
	}
	return Vec3{snap(v.X), snap(v.Y), snap(v.Z)}
}

// PlaneNormal returns the unit normal of the plane through p1, p2, p3 using
// the map-file winding, or Null if the points are colinear.
func PlaneNormal(p1, p2, p3 Vec3) Vec3 {
	return p3.Sub(p1).Cross(p2.Sub(p1)).Normalize()
}

// Basis returns two unit vectors spanning the plane with unit normal n such
// that up.Cross(right) == n. The reference axis is the world axis least
// aligned with n.
func Basis(n Vec3) (right, up Vec3) {
	ref := axes3[0]
	best := math.Abs(n.X)
	for i := 1; i < 3; i++ {
		if c := math.Abs(n.Component(i)); c < best {
			best = c
			ref = axes3[i]
		}
	}
	right = n.Cross(ref).Normalize()
	up = right.Cross(n)
	return right, up
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
