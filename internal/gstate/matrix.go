// Package gstate implements the graphics-state record and its bounded
// save/restore stack, plus the affine matrix type the interpreter and
// device share.
package gstate

// Matrix is a 2D affine transform in PDF's row-vector convention:
// [x' y' 1] = [x y 1] * [[A B 0] [C D 0] [E F 1]].
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translation returns a pure translation matrix.
func Translation(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Multiply returns m concatenated with n, i.e. applying m first then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// Transform maps a point through the matrix.
func (m Matrix) Transform(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// TransformDelta maps a vector (ignoring translation) through the matrix.
func (m Matrix) TransformDelta(dx, dy float64) (float64, float64) {
	return m.A*dx + m.C*dy, m.B*dx + m.D*dy
}
