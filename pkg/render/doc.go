// Package render turns mapped quads into CSS, HTML previews, SVG and
// Graphviz diagrams.
//
// Renderers are pure: they take the element size and its corner points,
// solve the transform with [projective.RectToQuad] where needed and write
// bytes. Nothing here mutates a [mapper.Tool].
//
// # Output Formats
//
//   - [CSS]: the transform declarations for one element
//   - [HandleStylesheet]: the stylesheet for corner handles
//   - [RenderHTML]: a standalone page with the warped element and handles
//   - [RenderSVG]: the element grid projected through the transform
//   - [ToDOT] and [RenderDOTSVG]: the handles as a pinned Graphviz graph
//   - [ToPDF] and [ToPNG]: SVG conversion via rsvg-convert
//
// PDF and PNG output requires librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
package render
