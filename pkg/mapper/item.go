package mapper

import (
	"fmt"
	"math"

	"github.com/matzehuels/cornerpin/pkg/projective"
)

// Rect is an element's layout box in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Quad returns the rectangle's corners.
func (r Rect) Quad() projective.Quad {
	return projective.RectQuad(r.X, r.Y, r.W, r.H)
}

// Origin returns the top-left corner.
func (r Rect) Origin() projective.Point {
	return projective.Pt(r.X, r.Y)
}

func (r Rect) validate() error {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite layout box", ErrInvalidElement)
		}
	}
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidElement, r.W, r.H)
	}
	return nil
}

// Element describes the element to map.
type Element struct {
	ID   string
	Tag  string
	Rect Rect
}

// Options configures Attach.
type Options struct {
	// Key overrides the storage key.
	Key string

	// InitialPoints is used when nothing is stored under the key.
	InitialPoints *projective.Quad
}

// Item is a snapshot of one mapped element.
type Item struct {
	Key     string
	Element Element

	// Points are the corner positions in page coordinates.
	Points projective.Quad

	// Matrix maps the element's layout box onto Points.
	Matrix projective.Matrix4

	// HandleIDs are indexed by corner.
	HandleIDs [4]string
}

// Style holds the CSS properties that apply the transform.
type Style struct {
	Transform       string
	TransformOrigin string
	TransformStyle  string
}

// String returns the properties as CSS declarations.
func (s Style) String() string {
	return fmt.Sprintf("transform: %s; transform-origin: %s; transform-style: %s;",
		s.Transform, s.TransformOrigin, s.TransformStyle)
}

// Style returns the CSS for the element's current transform.
func (it Item) Style() Style {
	return Style{
		Transform:       it.Matrix.CSS(),
		TransformOrigin: "0 0",
		TransformStyle:  "preserve-3d",
	}
}

// Handle is a snapshot of one corner handle.
type Handle struct {
	ID       string
	Key      string
	Corner   int
	Position projective.Point
	Selected bool
	Dragging bool
}

// HandleRef identifies a handle and the corner it controls.
type HandleRef struct {
	ID     string
	Key    string
	Corner int
}

// CornerName returns a short name for a corner index.
func CornerName(corner int) string {
	switch corner {
	case projective.TopLeft:
		return "top-left"
	case projective.TopRight:
		return "top-right"
	case projective.BottomLeft:
		return "bottom-left"
	case projective.BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("corner(%d)", corner)
	}
}
