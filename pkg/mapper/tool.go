package mapper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cornerpin/pkg/observability"
	"github.com/matzehuels/cornerpin/pkg/projective"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// Tool tracks mapped elements, their handles and the current interaction.
type Tool struct {
	mu sync.Mutex

	points *store.Points
	logger *log.Logger
	newID  func() string

	items       map[string]*Item
	order       []string
	handles     map[string]HandleRef
	handleOrder []string

	drag     *dragState
	selected string
	visible  bool
}

type dragState struct {
	ref   HandleRef
	moves int
}

// New creates a Tool. points may be nil to keep points in memory only; a nil
// logger uses log.Default().
func New(points *store.Points, logger *log.Logger) *Tool {
	if logger == nil {
		logger = log.Default()
	}
	return &Tool{
		points:  points,
		logger:  logger,
		newID:   uuid.NewString,
		items:   make(map[string]*Item),
		handles: make(map[string]HandleRef),
		visible: true,
	}
}

// ResolveKey returns the storage key for el: opts.Key, else el.ID, else el.Tag.
func ResolveKey(el Element, opts Options) string {
	switch {
	case opts.Key != "":
		return opts.Key
	case el.ID != "":
		return el.ID
	default:
		return el.Tag
	}
}

// Attach starts mapping el and creates its four handles.
func (t *Tool) Attach(ctx context.Context, el Element, opts Options) (Item, error) {
	key := ResolveKey(el, opts)
	if key == "" {
		return Item{}, fmt.Errorf("%w: element has no key, id or tag", ErrInvalidElement)
	}
	if err := el.Rect.validate(); err != nil {
		return Item{}, err
	}

	t.mu.Lock()
	_, exists := t.items[key]
	t.mu.Unlock()
	if exists {
		return Item{}, fmt.Errorf("%w: %q", ErrAttached, key)
	}

	start, source := t.startingPoints(ctx, key, el, opts)

	it := &Item{Key: key, Element: el}
	m, rep := solve(it, start)
	rep.send(ctx)
	if rep.err != nil && source != "bounds" {
		t.logger.Warn("starting points are degenerate, using element bounds", "key", key, "source", source, "err", rep.err)
		start = el.Rect.Quad()
		m, rep = solve(it, start)
		rep.send(ctx)
	}
	if rep.err != nil {
		return Item{}, rep.err
	}
	it.Points = start
	it.Matrix = m

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.items[key]; exists {
		return Item{}, fmt.Errorf("%w: %q", ErrAttached, key)
	}
	for corner := range it.HandleIDs {
		id := t.newID()
		it.HandleIDs[corner] = id
		t.handles[id] = HandleRef{ID: id, Key: key, Corner: corner}
		t.handleOrder = append(t.handleOrder, id)
	}
	t.items[key] = it
	t.order = append(t.order, key)

	t.logger.Debug("attached", "key", key, "points", start.String(), "source", source)
	return *it, nil
}

// startingPoints picks stored points, then the initial points, then the
// element bounds. Storage failures fall through to the next source.
func (t *Tool) startingPoints(ctx context.Context, key string, el Element, opts Options) (projective.Quad, string) {
	if t.points != nil {
		q, ok, err := t.points.Get(ctx, key)
		if err != nil {
			t.logger.Warn("could not load stored points", "key", key, "err", err)
		} else if ok {
			return q, "stored"
		}
	}
	if opts.InitialPoints != nil {
		return *opts.InitialPoints, "initial"
	}
	return el.Rect.Quad(), "bounds"
}

// solveReport carries one solve to the mapper hooks. Hooks run after t.mu
// is released so they may call back into the Tool.
type solveReport struct {
	key string
	dur time.Duration
	err error
}

func (r solveReport) send(ctx context.Context) {
	observability.Mapper().OnSolve(ctx, r.key, r.dur, r.err)
}

// solve computes the transform for points, which are in page coordinates.
func solve(it *Item, points projective.Quad) (projective.Matrix4, solveReport) {
	r := it.Element.Rect
	o := r.Origin()
	start := time.Now()
	m, err := projective.RectToQuad(r.W, r.H, points.Translate(-o.X, -o.Y))
	return m, solveReport{key: it.Key, dur: time.Since(start), err: err}
}

// Detach stops mapping the element under key and removes its handles.
func (t *Tool) Detach(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	it, ok := t.items[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	for _, id := range it.HandleIDs {
		delete(t.handles, id)
		if t.selected == id {
			t.selected = ""
		}
		if t.drag != nil && t.drag.ref.ID == id {
			t.drag = nil
		}
	}
	t.handleOrder = removeAll(t.handleOrder, it.HandleIDs[:]...)
	t.order = removeAll(t.order, key)
	delete(t.items, key)
	return nil
}

// Item returns a snapshot of the element under key.
func (t *Tool) Item(key string) (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[key]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Items returns snapshots of all elements in attach order.
func (t *Tool) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := make([]Item, 0, len(t.order))
	for _, key := range t.order {
		items = append(items, *t.items[key])
	}
	return items
}

// Handles returns the four handles of the element under key, by corner.
func (t *Tool) Handles(key string) ([]Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	handles := make([]Handle, 4)
	for corner, id := range it.HandleIDs {
		handles[corner] = Handle{
			ID:       id,
			Key:      key,
			Corner:   corner,
			Position: it.Points[corner],
			Selected: t.selected == id,
			Dragging: t.drag != nil && t.drag.ref.ID == id,
		}
	}
	return handles, nil
}

// Lookup returns the element and corner a handle controls.
func (t *Tool) Lookup(handleID string) (HandleRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.handles[handleID]
	return ref, ok
}

// MoveCorner moves one corner of the element under key to p and persists the
// new points. If the result is degenerate the element is left unchanged.
func (t *Tool) MoveCorner(ctx context.Context, key string, corner int, p projective.Point) (Item, error) {
	it, err := t.move(ctx, key, corner, p)
	if err != nil {
		return it, err
	}
	return it, t.save(ctx, it)
}

// move updates a corner without persisting.
func (t *Tool) move(ctx context.Context, key string, corner int, p projective.Point) (Item, error) {
	if corner < 0 || corner > 3 {
		return Item{}, fmt.Errorf("%w: corner %d", ErrUnknownHandle, corner)
	}

	t.mu.Lock()
	it, ok := t.items[key]
	if !ok {
		t.mu.Unlock()
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	next := it.Points
	next[corner] = p
	m, rep := solve(it, next)
	if rep.err == nil {
		it.Points = next
		it.Matrix = m
	}
	snapshot := *it
	t.mu.Unlock()

	rep.send(ctx)
	if rep.err != nil {
		t.logger.Debug("rejected corner move", "key", key, "corner", CornerName(corner), "x", p.X, "y", p.Y, "err", rep.err)
		return snapshot, rep.err
	}
	return snapshot, nil
}

func (t *Tool) save(ctx context.Context, it Item) error {
	if t.points == nil {
		return nil
	}
	if err := t.points.Set(ctx, it.Key, it.Points); err != nil {
		t.logger.Warn("could not save points", "key", it.Key, "err", err)
		return err
	}
	return nil
}

// Save persists the current points of the element under key.
func (t *Tool) Save(ctx context.Context, key string) error {
	it, ok := t.Item(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	return t.save(ctx, it)
}

// Reset moves the element back to its layout box and forgets stored points.
func (t *Tool) Reset(ctx context.Context, key string) (Item, error) {
	t.mu.Lock()
	it, ok := t.items[key]
	if !ok {
		t.mu.Unlock()
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}
	q := it.Element.Rect.Quad()
	m, rep := solve(it, q)
	if rep.err == nil {
		it.Points = q
		it.Matrix = m
	}
	snapshot := *it
	t.mu.Unlock()

	rep.send(ctx)
	if rep.err != nil {
		return snapshot, rep.err
	}
	if t.points != nil {
		if err := t.points.Delete(ctx, key); err != nil {
			return snapshot, err
		}
	}
	return snapshot, nil
}

// BeginDrag starts dragging a handle and selects it.
func (t *Tool) BeginDrag(ctx context.Context, handleID string) error {
	t.mu.Lock()
	ref, ok := t.handles[handleID]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownHandle, handleID)
	}
	t.drag = &dragState{ref: ref}
	t.selected = handleID
	t.mu.Unlock()

	observability.Mapper().OnDragStart(ctx, ref.Key, ref.Corner)
	return nil
}

// DragTo moves the dragged handle to (x, y). Points are persisted by EndDrag.
func (t *Tool) DragTo(ctx context.Context, x, y float64) (Item, error) {
	t.mu.Lock()
	if t.drag == nil {
		t.mu.Unlock()
		return Item{}, ErrNotDragging
	}
	t.drag.moves++
	ref := t.drag.ref
	t.mu.Unlock()

	return t.move(ctx, ref.Key, ref.Corner, projective.Pt(x, y))
}

// EndDrag finishes the current drag and persists the points. Without a
// drag in progress it does nothing.
func (t *Tool) EndDrag(ctx context.Context) error {
	t.mu.Lock()
	d := t.drag
	t.drag = nil
	var it Item
	if d != nil {
		if cur, ok := t.items[d.ref.Key]; ok {
			it = *cur
		}
	}
	t.mu.Unlock()

	if d == nil || it.Key == "" {
		return nil
	}
	observability.Mapper().OnDragEnd(ctx, d.ref.Key, d.ref.Corner, d.moves)
	return t.save(ctx, it)
}

// Dragging returns the handle being dragged, if any.
func (t *Tool) Dragging() (HandleRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drag == nil {
		return HandleRef{}, false
	}
	return t.drag.ref, true
}

// Select makes handleID the target of Nudge.
func (t *Tool) Select(handleID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handles[handleID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHandle, handleID)
	}
	t.selected = handleID
	return nil
}

// SelectNext selects the handle after the current one, across all elements
// in attach order, wrapping around. It reports false when no handles exist.
func (t *Tool) SelectNext() (HandleRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.handleOrder) == 0 {
		return HandleRef{}, false
	}
	next := 0
	for i, id := range t.handleOrder {
		if id == t.selected {
			next = (i + 1) % len(t.handleOrder)
			break
		}
	}
	t.selected = t.handleOrder[next]
	return t.handles[t.selected], true
}

// Selected returns the selected handle, if any.
func (t *Tool) Selected() (HandleRef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.handles[t.selected]
	return ref, ok
}

// Nudge moves the selected handle by (dx, dy) and persists the points.
func (t *Tool) Nudge(ctx context.Context, dx, dy float64) (Item, error) {
	t.mu.Lock()
	ref, ok := t.handles[t.selected]
	var p projective.Point
	if ok {
		p = t.items[ref.Key].Points[ref.Corner]
	}
	t.mu.Unlock()

	if !ok {
		return Item{}, ErrNoSelection
	}
	return t.MoveCorner(ctx, ref.Key, ref.Corner, p.Add(projective.Pt(dx, dy)))
}

// ShowHandles makes the handles visible.
func (t *Tool) ShowHandles() { t.setVisible(true) }

// HideHandles hides the handles. Elements keep their transforms.
func (t *Tool) HideHandles() { t.setVisible(false) }

// ToggleHandles flips handle visibility and returns the new state.
func (t *Tool) ToggleHandles() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = !t.visible
	return t.visible
}

// HandlesVisible reports whether handles are shown.
func (t *Tool) HandlesVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

func (t *Tool) setVisible(v bool) {
	t.mu.Lock()
	t.visible = v
	t.mu.Unlock()
}

// Close releases the point store.
func (t *Tool) Close() error {
	if t.points == nil {
		return nil
	}
	return t.points.Close()
}

func removeAll(s []string, drop ...string) []string {
	out := s[:0]
outer:
	for _, v := range s {
		for _, d := range drop {
			if v == d {
				continue outer
			}
		}
		out = append(out, v)
	}
	return out
}
