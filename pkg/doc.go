// Package pkg provides the core libraries for Cornerpin projection mapping.
//
// # Overview
//
// Cornerpin warps a rectangular element onto four arbitrary points with a
// perspective transform, the way a projector image is pinned to a wall. The
// pkg directory is organized into these areas:
//
//  1. [projective] - Points, quads, matrices and the homography solver
//  2. [mapper] - Attached elements, corner handles, dragging and selection
//  3. [store] - Persistence of corner points (memory, file, Redis, MongoDB)
//  4. [render] - CSS, SVG, HTML and Graphviz output
//  5. [config] - The TOML configuration file
//  6. [errors] - Structured error codes shared by the CLI and HTTP API
//
// # Architecture
//
// The typical data flow through Cornerpin:
//
//	Element layout box + stored points
//	         ↓
//	    [mapper.Tool.Attach]
//	         ↓
//	  [projective.RectToQuad]  →  matrix3d(...)
//	         ↓
//	 handle moves / drags / nudges
//	         ↓
//	    [store.Points.Set]
//
// # Corner Order
//
// Quads are listed top-left, top-right, bottom-left, bottom-right. Use
// [projective.FromRing] to convert from clockwise order.
//
// [projective]: github.com/matzehuels/cornerpin/pkg/projective
// [mapper]: github.com/matzehuels/cornerpin/pkg/mapper
// [store]: github.com/matzehuels/cornerpin/pkg/store
// [render]: github.com/matzehuels/cornerpin/pkg/render
// [config]: github.com/matzehuels/cornerpin/pkg/config
// [errors]: github.com/matzehuels/cornerpin/pkg/errors
// [mapper.Tool.Attach]: github.com/matzehuels/cornerpin/pkg/mapper#Tool.Attach
// [projective.RectToQuad]: github.com/matzehuels/cornerpin/pkg/projective#RectToQuad
// [store.Points.Set]: github.com/matzehuels/cornerpin/pkg/store#Points.Set
// [projective.FromRing]: github.com/matzehuels/cornerpin/pkg/projective#FromRing
package pkg
