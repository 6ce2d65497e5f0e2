// Package mapper manages corner handles for perspective-mapped elements.
//
// A [Tool] owns every mapped element of one session. Each element gets four
// handles, one per corner, whose positions are the element's corner points
// in page coordinates. Moving a handle re-solves the element's transform
// with [projective.RectToQuad]; the points are relative to the element's
// layout origin so an unmoved element keeps the identity transform.
//
// # Attaching
//
// [Tool.Attach] resolves a storage key (explicit key, else element ID, else
// tag name) and picks the starting points in this order:
//
//  1. points previously saved under the key
//  2. [Options.InitialPoints]
//  3. the element's bounding box corners
//
// # Interaction
//
// Pointer dragging goes through [Tool.BeginDrag], [Tool.DragTo] and
// [Tool.EndDrag]. Keyboard editing uses [Tool.Select], [Tool.SelectNext] and
// [Tool.Nudge]. Every edit funnels into [Tool.MoveCorner]. When a move makes
// the corners degenerate, the element keeps its last valid points and
// transform and the error is returned to the caller.
//
// Points are persisted when a drag ends, after a nudge, and after a direct
// corner move. A Tool created without a store keeps points in memory only.
//
// # Concurrency
//
// All Tool methods are safe for concurrent use. [Item] and [Handle] values are
// snapshots and do not change after they are returned.
package mapper
