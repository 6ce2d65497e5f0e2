package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cornerpin/pkg/mapper"
)

// Class names used for handles.
const (
	HandleClass   = "cornerpin__handle"
	SelectedClass = "cornerpin__handle--selected"
	HiddenClass   = "cornerpin--hidden"
)

// HandleStylesheet styles the corner handles. Handles are fixed-position
// dots centered on their corner point.
const HandleStylesheet = `.cornerpin__handle {
  position: fixed;
  width: 10px;
  height: 10px;
  background: red;
  border: 1px solid white;
  border-radius: 50%;
  cursor: move;
  z-index: 100;
  transform: translate(-50%, -50%);
}
.cornerpin__handle:hover {
  background: blue;
}
.cornerpin__handle--selected {
  background: orange;
}
.cornerpin--hidden {
  display: none;
}
`

// CSS returns the declarations that apply the item's transform.
func CSS(it mapper.Item) string {
	return it.Style().String()
}

// HandleCSS returns the inline position of a handle.
func HandleCSS(h mapper.Handle) string {
	return fmt.Sprintf("left: %spx; top: %spx;", formatNum(h.Position.X), formatNum(h.Position.Y))
}

// HandleClasses returns the class attribute value for a handle.
func HandleClasses(h mapper.Handle, visible bool) string {
	classes := []string{HandleClass}
	if h.Selected {
		classes = append(classes, SelectedClass)
	}
	if !visible {
		classes = append(classes, HiddenClass)
	}
	return strings.Join(classes, " ")
}
