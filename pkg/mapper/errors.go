package mapper

import "errors"

var (
	// ErrUnknownItem is returned when no element is attached under a key.
	ErrUnknownItem = errors.New("unknown item")

	// ErrUnknownHandle is returned for a handle ID the tool did not create.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrAttached is returned when attaching a second element under a key.
	ErrAttached = errors.New("already attached")

	// ErrInvalidElement is returned for elements without a usable key or size.
	ErrInvalidElement = errors.New("invalid element")

	// ErrNotDragging is returned by DragTo outside a drag.
	ErrNotDragging = errors.New("no drag in progress")

	// ErrNoSelection is returned by Nudge when no handle is selected.
	ErrNoSelection = errors.New("no handle selected")
)
