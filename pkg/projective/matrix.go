package projective

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/math/f64"
)

// Matrix3 is a 2D projective transform in homogeneous coordinates, row-major:
// m[3*r+c] is the element in row r and column c. Points are column vectors,
// so (x', y', w') = M · (x, y, 1).
type Matrix3 f64.Mat3

// Matrix4 is a 3D transform, row-major with column vectors like [Matrix3].
// Matrices produced by this package embed a Matrix3 and pass z through:
//
//	| h0 h1 0 h2 |
//	| h3 h4 0 h5 |
//	| 0  0  1 0  |
//	| h6 h7 0 h8 |
type Matrix4 f64.Mat4

// Identity3 returns the 3x3 identity.
func Identity3() Matrix3 {
	return Matrix3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Identity4 returns the 4x4 identity.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Adjugate returns the transposed cofactor matrix of m. For invertible m it
// equals det(m)·m⁻¹, which is all a projective transform needs.
func (m Matrix3) Adjugate() Matrix3 {
	return Matrix3{
		m[4]*m[8] - m[5]*m[7],
		m[2]*m[7] - m[1]*m[8],
		m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8],
		m[0]*m[8] - m[2]*m[6],
		m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6],
		m[1]*m[6] - m[0]*m[7],
		m[0]*m[4] - m[1]*m[3],
	}
}

// Determinant returns det(m).
func (m Matrix3) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Mul returns m · n, the transform that applies n first, then m.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	return Matrix3{
		m[0]*n[0] + m[1]*n[3] + m[2]*n[6],
		m[0]*n[1] + m[1]*n[4] + m[2]*n[7],
		m[0]*n[2] + m[1]*n[5] + m[2]*n[8],
		m[3]*n[0] + m[4]*n[3] + m[5]*n[6],
		m[3]*n[1] + m[4]*n[4] + m[5]*n[7],
		m[3]*n[2] + m[4]*n[5] + m[5]*n[8],
		m[6]*n[0] + m[7]*n[3] + m[8]*n[6],
		m[6]*n[1] + m[7]*n[4] + m[8]*n[7],
		m[6]*n[2] + m[7]*n[5] + m[8]*n[8],
	}
}

// MulVec returns m · v.
func (m Matrix3) MulVec(v f64.Vec3) f64.Vec3 {
	return f64.Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Scale returns m with every coefficient multiplied by k. A projective
// transform scaled by a nonzero k is the same transform.
func (m Matrix3) Scale(k float64) Matrix3 {
	for i := range m {
		m[i] *= k
	}
	return m
}

// ApplyHomogeneous maps p to homogeneous coordinates (x, y, w) without
// dividing by w.
func (m Matrix3) ApplyHomogeneous(p Point) (x, y, w float64) {
	v := m.MulVec(f64.Vec3{p.X, p.Y, 1})
	return v[0], v[1], v[2]
}

// Apply maps p through m. It fails with ErrDegenerateGeometry when p is sent
// to the line at infinity.
func (m Matrix3) Apply(p Point) (Point, error) {
	x, y, w := m.ApplyHomogeneous(p)
	if math.Abs(w) <= Epsilon*math.Max(1, math.Max(math.Abs(x), math.Abs(y))) {
		return Point{}, fmt.Errorf("%w: point (%g, %g) maps to infinity", ErrDegenerateGeometry, p.X, p.Y)
	}
	return Point{x / w, y / w}, nil
}

// IsAffine reports whether m has no perspective component.
func (m Matrix3) IsAffine() bool {
	return m[6] == 0 && m[7] == 0
}

// Embed lifts m into a 4x4 matrix with an identity z row and column.
func (m Matrix3) Embed() Matrix4 {
	return Matrix4{
		m[0], m[1], 0, m[2],
		m[3], m[4], 0, m[5],
		0, 0, 1, 0,
		m[6], m[7], 0, m[8],
	}
}

// Homography extracts the 2D projective part of an embedded matrix.
func (m Matrix4) Homography() Matrix3 {
	return Matrix3{
		m[0], m[1], m[3],
		m[4], m[5], m[7],
		m[12], m[13], m[15],
	}
}

// Apply maps a point of the z=0 plane through m.
func (m Matrix4) Apply(p Point) (Point, error) {
	return m.Homography().Apply(p)
}

// IsAffine reports whether the embedded homography has no perspective
// component.
func (m Matrix4) IsAffine() bool {
	return m.Homography().IsAffine()
}

// Rows returns m as four rows.
func (m Matrix4) Rows() [4][4]float64 {
	var rows [4][4]float64
	for r := range rows {
		copy(rows[r][:], m[4*r:4*r+4])
	}
	return rows
}

// CSS formats m as a CSS matrix3d() function. CSS lists the coefficients
// column by column, so the output is the transpose of the storage order.
func (m Matrix4) CSS() string {
	parts := make([]string, 0, 16)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			parts = append(parts, formatCoef(m[4*r+c]))
		}
	}
	return "matrix3d(" + strings.Join(parts, ", ") + ")"
}

func formatCoef(v float64) string {
	if v == 0 {
		return "0" // also folds -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
