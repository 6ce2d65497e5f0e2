package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

const svgMargin = 20

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	grid    int
	handles bool
	label   string
}

// WithGrid draws n divisions of the element in each direction.
func WithGrid(n int) SVGOption { return func(r *svgRenderer) { r.grid = n } }

// WithHandles draws a numbered handle on each corner.
func WithHandles() SVGOption { return func(r *svgRenderer) { r.handles = true } }

// WithLabel sets the document title and the caption above the quad.
func WithLabel(s string) SVGOption {
	return func(r *svgRenderer) { r.label = s }
}

// RenderSVG draws the w×h element warped onto q: the grid of the element
// rectangle projected through the transform, the quad outline and,
// optionally, numbered handles. Coordinates are those of q.
func RenderSVG(w, h float64, q projective.Quad, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{grid: 8}
	for _, opt := range opts {
		opt(&r)
	}

	m, err := projective.RectToQuad(w, h, q)
	if err != nil {
		return nil, err
	}
	hom := m.Homography()

	lo, hi := q.Bounds()
	minX, minY := lo.X-svgMargin, lo.Y-svgMargin
	vw, vh := hi.X-lo.X+2*svgMargin, hi.Y-lo.Y+2*svgMargin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		formatNum(minX), formatNum(minY), vw, vh, vw, vh)

	if r.label != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.label))
	}

	renderGrid(&buf, hom, w, h, r.grid)
	renderOutline(&buf, q)
	if r.handles {
		renderHandles(&buf, q)
	}
	if r.label != "" {
		fmt.Fprintf(&buf, `  <text x="%s" y="%s" font-family="sans-serif" font-size="12" fill="#333">%s</text>`+"\n",
			formatNum(lo.X), formatNum(lo.Y-6), html.EscapeString(r.label))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// renderGrid projects grid lines of the source rectangle. Projective maps
// keep lines straight, so mapping the endpoints is enough.
func renderGrid(buf *bytes.Buffer, hom projective.Matrix3, w, h float64, n int) {
	if n <= 0 {
		return
	}
	buf.WriteString(`  <g class="grid" stroke="#9ab" stroke-width="0.5" fill="none">` + "\n")
	for i := 1; i < n; i++ {
		x := w * float64(i) / float64(n)
		y := h * float64(i) / float64(n)
		renderLine(buf, hom, projective.Pt(x, 0), projective.Pt(x, h))
		renderLine(buf, hom, projective.Pt(0, y), projective.Pt(w, y))
	}
	buf.WriteString("  </g>\n")
}

func renderLine(buf *bytes.Buffer, hom projective.Matrix3, a, b projective.Point) {
	pa, err := hom.Apply(a)
	if err != nil {
		return
	}
	pb, err := hom.Apply(b)
	if err != nil {
		return
	}
	fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
		formatNum(pa.X), formatNum(pa.Y), formatNum(pb.X), formatNum(pb.Y))
}

func renderOutline(buf *bytes.Buffer, q projective.Quad) {
	buf.WriteString(`  <polygon class="outline" fill="none" stroke="#333" stroke-width="1.5" points="`)
	for i, p := range q.Ring() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%s,%s", formatNum(p.X), formatNum(p.Y))
	}
	buf.WriteString(`"/>` + "\n")
}

func renderHandles(buf *bytes.Buffer, q projective.Quad) {
	for i, p := range q {
		fmt.Fprintf(buf, `  <circle class="%s" data-corner="%s" cx="%s" cy="%s" r="5" fill="red" stroke="white"/>`+"\n",
			HandleClass, mapper.CornerName(i), formatNum(p.X), formatNum(p.Y))
		fmt.Fprintf(buf, `  <text x="%s" y="%s" font-family="sans-serif" font-size="10">%d</text>`+"\n",
			formatNum(p.X+7), formatNum(p.Y-7), i+1)
	}
}

// formatNum prints coordinates with at most three decimals.
func formatNum(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
