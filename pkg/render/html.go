package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// HTMLOptions configures RenderHTML.
type HTMLOptions struct {
	// Title is used for the page title and the element caption.
	Title string

	// HideHandles renders the handles with the hidden class.
	HideHandles bool
}

// RenderHTML writes a standalone page showing a w×h element, positioned at
// the origin and warped onto q, with a fixed-position handle on each corner.
func RenderHTML(w, h float64, q projective.Quad, opts HTMLOptions) ([]byte, error) {
	m, err := projective.RectToQuad(w, h, q)
	if err != nil {
		return nil, err
	}
	it := mapper.Item{
		Key:     opts.Title,
		Element: mapper.Element{Rect: mapper.Rect{W: w, H: h}},
		Points:  q,
		Matrix:  m,
	}
	title := opts.Title
	if title == "" {
		title = "cornerpin"
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&buf, "<style>\nbody { margin: 0; }\n.cornerpin__element { position: absolute; left: 0; top: 0; width: %spx; height: %spx; %s\n"+
		"  background: repeating-linear-gradient(45deg, #eef 0 10px, #dde 10px 20px); font: 24px sans-serif; display: flex; align-items: center; justify-content: center; }\n%s</style>\n",
		formatNum(w), formatNum(h), CSS(it), HandleStylesheet)
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<div class=\"cornerpin__element\">%s</div>\n", html.EscapeString(title))

	for corner, p := range q {
		hd := mapper.Handle{Corner: corner, Position: p}
		fmt.Fprintf(&buf, "<div class=\"%s\" data-corner=\"%s\" style=\"%s\"></div>\n",
			HandleClasses(hd, !opts.HideHandles), mapper.CornerName(corner), HandleCSS(hd))
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
