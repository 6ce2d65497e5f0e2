package projective

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Epsilon is the relative tolerance below which areas and the homogeneous
// scale term count as zero.
const Epsilon = 1e-10

// triples lists every way to pick three of four corners.
var triples = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}

// SolveHomography returns the projective transform H with
// H · src[i] ≈ dst[i] (up to scale) for i in 0..3, normalised so H[8] == 1.
func SolveHomography(src, dst []Point) (Matrix3, error) {
	if len(src) != 4 || len(dst) != 4 {
		return Matrix3{}, fmt.Errorf("%w: need 4 source and 4 destination points, got %d and %d",
			ErrInvalidInput, len(src), len(dst))
	}
	if err := checkGeneralPosition("source", src); err != nil {
		return Matrix3{}, err
	}
	if err := checkGeneralPosition("destination", dst); err != nil {
		return Matrix3{}, err
	}

	s := basisToPoints(src)
	d := basisToPoints(dst)
	return Normalize(d.Mul(s.Adjugate()))
}

// RectToQuad returns the 4x4 transform mapping the rectangle (0,0)-(w,h)
// onto dst. Source corners are (0,0), (w,0), (0,h), (w,h), matching the
// [Quad] corner order. A zero width or height is degenerate.
func RectToQuad(w, h float64, dst Quad) (Matrix4, error) {
	src := RectQuad(0, 0, w, h)
	m, err := SolveHomography(src[:], dst[:])
	if err != nil {
		return Matrix4{}, err
	}
	return m.Embed(), nil
}

// Normalize divides raw by its bottom-right coefficient. It fails with
// ErrDegenerateGeometry when that coefficient is zero relative to the rest of
// the matrix, or when raw is not finite.
func Normalize(raw Matrix3) (Matrix3, error) {
	var scale float64
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix3{}, fmt.Errorf("%w: non-finite coefficient", ErrDegenerateGeometry)
		}
		scale = math.Max(scale, math.Abs(v))
	}
	d := raw[8]
	if scale == 0 || math.Abs(d) <= Epsilon*scale {
		return Matrix3{}, fmt.Errorf("%w: homogeneous scale term is zero", ErrDegenerateGeometry)
	}

	var m Matrix3
	for i, v := range raw {
		m[i] = v / d
	}
	m[8] = 1
	return m, nil
}

// basisToPoints returns the matrix mapping (1,0,0), (0,1,0), (0,0,1) and
// (1,1,1) onto p[0..3] in homogeneous coordinates.
func basisToPoints(p []Point) Matrix3 {
	m := Matrix3{
		p[0].X, p[1].X, p[2].X,
		p[0].Y, p[1].Y, p[2].Y,
		1, 1, 1,
	}
	v := m.Adjugate().MulVec(f64.Vec3{p[3].X, p[3].Y, 1})
	return m.Mul(Matrix3{
		v[0], 0, 0,
		0, v[1], 0,
		0, 0, v[2],
	})
}

// checkGeneralPosition rejects non-finite points and any three collinear
// points. Areas are compared against the squared extent of the points so the
// test does not depend on the coordinate scale.
func checkGeneralPosition(name string, p []Point) error {
	for i := range p {
		if !p[i].finite() {
			return fmt.Errorf("%w: %s corner %d is not finite", ErrInvalidInput, name, i)
		}
	}

	q := Quad{p[0], p[1], p[2], p[3]}
	lo, hi := q.Bounds()
	extent := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if extent == 0 {
		return fmt.Errorf("%w: %s corners coincide", ErrDegenerateGeometry, name)
	}

	limit := Epsilon * extent * extent
	for _, t := range triples {
		a, b, c := p[t[0]], p[t[1]], p[t[2]]
		if math.Abs(b.Sub(a).Cross(c.Sub(a))) <= limit {
			return fmt.Errorf("%w: %s corners %d, %d and %d are collinear",
				ErrDegenerateGeometry, name, t[0], t[1], t[2])
		}
	}
	return nil
}
