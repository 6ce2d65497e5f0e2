package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// ToDOT converts a quad to Graphviz DOT. Each corner is a node pinned at its
// position and the quad sides are edges, so the neato engine draws the quad
// as laid out. The y axis is flipped because Graphviz points up.
func ToDOT(q projective.Quad, label string) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=false;\n")
	if label != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", label)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=red, fontcolor=white, fontsize=10, width=0.3, fixedsize=true];\n")
	buf.WriteString("\n")

	for corner, p := range q {
		fmt.Fprintf(&buf, "  %q [label=\"%d\", tooltip=%q, pos=\"%s,%s!\"];\n",
			mapper.CornerName(corner), corner+1, fmt.Sprintf("%s,%s", formatNum(p.X), formatNum(p.Y)),
			formatNum(p.X), formatNum(-p.Y))
	}

	buf.WriteString("\n")
	ring := []int{projective.TopLeft, projective.TopRight, projective.BottomRight, projective.BottomLeft}
	for i, c := range ring {
		next := ring[(i+1)%len(ring)]
		fmt.Fprintf(&buf, "  %q -- %q;\n", mapper.CornerName(c), mapper.CornerName(next))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOTSVG renders DOT produced by ToDOT to SVG with the neato engine,
// which honours the pinned node positions.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
