package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// Canvas size in terminal cells.
const (
	canvasCols = 56
	canvasRows = 18

	// canvasTop is the screen row of the first canvas line; see View.
	canvasTop = 3

	// grabRadius is how close, in cells, a click must land to grab a corner.
	grabRadius = 1.5
)

var (
	canvasEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	canvasCornerStyle   = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	canvasSelectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// =============================================================================
// EditorModel - Interactive corner editing
// =============================================================================

// EditorModel is the bubbletea model for moving the corners of one element.
// Every change goes through the mapper tool, which persists the points.
type EditorModel struct {
	ctx  context.Context
	tool *mapper.Tool
	key  string

	Step    float64
	BigStep float64

	// Status is the last message shown under the table.
	Status string
	// Err is the last error from the tool, cleared by the next success.
	Err error

	ShowCanvas bool
	Quitting   bool

	// frozen is the canvas mapping held from press to release.
	frozen *viewport
}

// NewEditorModel creates an editor for the element attached under key and
// selects its top-left corner.
func NewEditorModel(ctx context.Context, tool *mapper.Tool, key string, step, bigStep float64) (EditorModel, error) {
	it, ok := tool.Item(key)
	if !ok {
		return EditorModel{}, fmt.Errorf("%w: %q", mapper.ErrUnknownItem, key)
	}
	if err := tool.Select(it.HandleIDs[projective.TopLeft]); err != nil {
		return EditorModel{}, err
	}
	return EditorModel{
		ctx:        ctx,
		tool:       tool,
		key:        key,
		Step:       step,
		BigStep:    bigStep,
		ShowCanvas: true,
	}, nil
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "tab":
		if ref, ok := m.tool.SelectNext(); ok {
			m.Status = "selected " + mapper.CornerName(ref.Corner)
			m.Err = nil
		}
	case "1", "2", "3", "4":
		m = m.selectCorner(int(key[0] - '1'))
	case "up", "k":
		m = m.nudge(0, -m.Step)
	case "down", "j":
		m = m.nudge(0, m.Step)
	case "left", "h":
		m = m.nudge(-m.Step, 0)
	case "right", "l":
		m = m.nudge(m.Step, 0)
	case "shift+up", "K":
		m = m.nudge(0, -m.BigStep)
	case "shift+down", "J":
		m = m.nudge(0, m.BigStep)
	case "shift+left", "H":
		m = m.nudge(-m.BigStep, 0)
	case "shift+right", "L":
		m = m.nudge(m.BigStep, 0)
	case "v":
		if m.tool.ToggleHandles() {
			m.Status = "handles shown"
		} else {
			m.Status = "handles hidden"
		}
	case "c":
		m.ShowCanvas = !m.ShowCanvas
	case "r":
		if _, err := m.tool.Reset(m.ctx, m.key); err != nil {
			m.Err = err
		} else {
			m.Status, m.Err = "reset to element bounds", nil
		}
	case "s":
		if err := m.tool.Save(m.ctx, m.key); err != nil {
			m.Err = err
		} else {
			m.Status, m.Err = "saved", nil
		}
	}
	return m, nil
}

func (m EditorModel) selectCorner(corner int) EditorModel {
	it, ok := m.tool.Item(m.key)
	if !ok {
		m.Err = fmt.Errorf("%w: %q", mapper.ErrUnknownItem, m.key)
		return m
	}
	if err := m.tool.Select(it.HandleIDs[corner]); err != nil {
		m.Err = err
		return m
	}
	m.Status, m.Err = "selected "+mapper.CornerName(corner), nil
	return m
}

func (m EditorModel) nudge(dx, dy float64) EditorModel {
	if !m.tool.HandlesVisible() {
		m.Status = "handles hidden, press v to show"
		return m
	}
	it, err := m.tool.Nudge(m.ctx, dx, dy)
	if err != nil {
		m.Err = err
		return m
	}
	ref, _ := m.tool.Selected()
	p := it.Points[ref.Corner]
	m.Status = fmt.Sprintf("%s → %s, %s", mapper.CornerName(ref.Corner), formatFloat(p.X), formatFloat(p.Y))
	m.Err = nil
	return m
}

// handleMouse drags corners on the canvas.
func (m EditorModel) handleMouse(msg tea.MouseMsg) EditorModel {
	if !m.ShowCanvas || !m.tool.HandlesVisible() {
		return m
	}
	it, ok := m.tool.Item(m.key)
	if !ok {
		return m
	}
	vp := m.viewport(it)
	col, row := float64(msg.X), float64(msg.Y-canvasTop)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		corner := nearestCorner(vp, it.Points, col, row)
		if corner < 0 {
			return m
		}
		if err := m.tool.BeginDrag(m.ctx, it.HandleIDs[corner]); err != nil {
			m.Err = err
			return m
		}
		m.frozen = &vp
		m.Status, m.Err = "dragging "+mapper.CornerName(corner), nil
	case msg.Action == tea.MouseActionMotion:
		if _, dragging := m.tool.Dragging(); !dragging {
			return m
		}
		p := vp.toWorld(col, row)
		if _, err := m.tool.DragTo(m.ctx, p.X, p.Y); err != nil {
			m.Err = err
			return m
		}
		m.Err = nil
	case msg.Action == tea.MouseActionRelease:
		m.frozen = nil
		ref, dragging := m.tool.Dragging()
		if !dragging {
			return m
		}
		if err := m.tool.EndDrag(m.ctx); err != nil {
			m.Err = err
			return m
		}
		m.Status, m.Err = "moved "+mapper.CornerName(ref.Corner), nil
	}
	return m
}

func (m EditorModel) View() string {
	if m.Quitting {
		return ""
	}
	it, ok := m.tool.Item(m.key)
	if !ok {
		return StyleError.Render("element " + m.key + " is not attached")
	}
	selected := -1
	if ref, ok := m.tool.Selected(); ok && ref.Key == m.key && m.tool.HandlesVisible() {
		selected = ref.Corner
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Corner Pin") + "  " + StyleHighlight.Render(m.key))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab/1-4 select  arrows/hjkl move " + formatFloat(m.Step) + "  shift " + formatFloat(m.BigStep) + "  v handles  c canvas  r reset  s save  q quit"))
	b.WriteString("\n\n")

	if m.ShowCanvas {
		b.WriteString(renderCanvas(m.viewport(it), it, selected))
		b.WriteString("\n")
	}

	b.WriteString(cornersTable(it.Points, selected))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("transform: ") + StyleValue.Render(it.Matrix.CSS()))
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(errors.UserMessage(errors.Classify(m.Err))))
	case m.Status != "":
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.Status)
	}
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Canvas
// =============================================================================

// viewport maps world coordinates onto canvas cells.
type viewport struct {
	lo     projective.Point
	sx, sy float64
}

// viewport returns the frozen mapping during a drag, otherwise one fitted
// to the item.
func (m EditorModel) viewport(it mapper.Item) viewport {
	if m.frozen != nil {
		return *m.frozen
	}
	return newViewport(it)
}

// newViewport fits the element box and its current points onto the canvas
// with a margin on every side.
func newViewport(it mapper.Item) viewport {
	lo, hi := it.Points.Bounds()
	box := it.Element.Rect
	lo.X, lo.Y = math.Min(lo.X, box.X), math.Min(lo.Y, box.Y)
	hi.X, hi.Y = math.Max(hi.X, box.X+box.W), math.Max(hi.Y, box.Y+box.H)

	padX, padY := (hi.X-lo.X)*0.1+1, (hi.Y-lo.Y)*0.1+1
	lo = lo.Sub(projective.Pt(padX, padY))
	hi = hi.Add(projective.Pt(padX, padY))

	return viewport{
		lo: lo,
		sx: float64(canvasCols-1) / (hi.X - lo.X),
		sy: float64(canvasRows-1) / (hi.Y - lo.Y),
	}
}

func (v viewport) toCell(p projective.Point) (col, row float64) {
	return (p.X - v.lo.X) * v.sx, (p.Y - v.lo.Y) * v.sy
}

func (v viewport) toWorld(col, row float64) projective.Point {
	return projective.Pt(v.lo.X+col/v.sx, v.lo.Y+row/v.sy)
}

// nearestCorner returns the corner within grabRadius of the cell, or -1.
func nearestCorner(v viewport, q projective.Quad, col, row float64) int {
	best, bestDist := -1, grabRadius
	for corner, p := range q {
		c, r := v.toCell(p)
		if d := math.Hypot(c-col, r-row); d <= bestDist {
			best, bestDist = corner, d
		}
	}
	return best
}

// renderCanvas draws the element outline and numbered corners.
func renderCanvas(v viewport, it mapper.Item, selected int) string {
	grid := make([][]string, canvasRows)
	for r := range grid {
		grid[r] = make([]string, canvasCols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	set := func(col, row float64, s string) {
		c, r := int(math.Round(col)), int(math.Round(row))
		if r >= 0 && r < canvasRows && c >= 0 && c < canvasCols {
			grid[r][c] = s
		}
	}

	ring := it.Points.Ring()
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		ac, ar := v.toCell(a)
		bc, br := v.toCell(b)
		steps := int(math.Max(math.Abs(bc-ac), math.Abs(br-ar))) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			set(ac+(bc-ac)*t, ar+(br-ar)*t, canvasEdgeStyle.Render("·"))
		}
	}
	for corner, p := range it.Points {
		style := canvasCornerStyle
		if corner == selected {
			style = canvasSelectedStyle
		}
		c, r := v.toCell(p)
		set(c, r, style.Render(fmt.Sprint(corner+1)))
	}

	lines := make([]string, canvasRows)
	for r, row := range grid {
		lines[r] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}
