/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Mat3 is a row-major 3x3 matrix. Brush-primitive texture matrices are stored
// as the first two rows with the third row left at (0, 0, 1).
type Mat3 [3][3]float64

// TexMatrix builds a Mat3 from the two stored rows of a texture matrix.
func TexMatrix(r0, r1 [3]float64) Mat3 {
	return Mat3{r0, r1, {0, 0, 1}}
}

// Col returns column j. For a texture matrix, columns 0 and 1 are the texture
// axes expressed in plane space.
func (m Mat3) Col(j int) Vec3 { return Vec3{m[0][j], m[1][j], m[2][j]} }
