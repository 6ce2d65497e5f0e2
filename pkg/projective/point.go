package projective

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a 2D coordinate in the layout space of the mapped element.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Cross returns the z component of the cross product of p and q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Corner indices of a Quad.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// Quad holds four corners in diagonal-adjacent order: top-left, top-right,
// bottom-left, bottom-right. See the package documentation.
type Quad [4]Point

// RectQuad returns the corners of the axis-aligned rectangle at (x, y) with
// the given width and height.
func RectQuad(x, y, w, h float64) Quad {
	return Quad{
		{x, y},
		{x + w, y},
		{x, y + h},
		{x + w, y + h},
	}
}

// FromRing builds a Quad from corners listed clockwise from the top-left.
func FromRing(tl, tr, br, bl Point) Quad {
	return Quad{tl, tr, bl, br}
}

// Ring returns the corners clockwise from the top-left, the order needed to
// draw the outline.
func (q Quad) Ring() [4]Point {
	return [4]Point{q[TopLeft], q[TopRight], q[BottomRight], q[BottomLeft]}
}

// Bounds returns the minimum and maximum corners of the bounding box.
func (q Quad) Bounds() (lo, hi Point) {
	lo, hi = q[0], q[0]
	for _, p := range q[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Translate returns q moved by (dx, dy).
func (q Quad) Translate(dx, dy float64) Quad {
	for i := range q {
		q[i].X += dx
		q[i].Y += dy
	}
	return q
}

// Floats flattens q into x1, y1, ..., x4, y4.
func (q Quad) Floats() [8]float64 {
	var out [8]float64
	for i, p := range q {
		out[2*i] = p.X
		out[2*i+1] = p.Y
	}
	return out
}

// String formats q as eight comma-separated numbers, the format read by
// [ParseQuad].
func (q Quad) String() string {
	vals := q.Floats()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// QuadFromFloats builds a Quad from exactly eight numbers x1, y1, ..., x4, y4.
func QuadFromFloats(vals []float64) (Quad, error) {
	if len(vals) != 8 {
		return Quad{}, fmt.Errorf("%w: need 8 coordinates, got %d", ErrInvalidInput, len(vals))
	}
	var q Quad
	for i := range q {
		q[i] = Point{vals[2*i], vals[2*i+1]}
		if !q[i].finite() {
			return Quad{}, fmt.Errorf("%w: corner %d is not finite", ErrInvalidInput, i)
		}
	}
	return q, nil
}

// ParseQuad parses eight comma-separated numbers. Surrounding whitespace
// around each number is ignored.
func ParseQuad(s string) (Quad, error) {
	fields := strings.Split(s, ",")
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Quad{}, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, strings.TrimSpace(f))
		}
		vals = append(vals, v)
	}
	return QuadFromFloats(vals)
}
