// Package projective computes the perspective transforms behind cornerpin.
//
// # Overview
//
// A corner-pin warps an element's rectangular content so that its four
// corners land on four arbitrary points. The mapping between the rectangle
// and the target quadrilateral is a 2D projective transform (homography),
// represented here as a 3x3 matrix in homogeneous coordinates. For rendering
// it is embedded into a 4x4 matrix that leaves the z axis untouched, ready to
// be applied as a 3D transform on a flat plane.
//
// The package has two layers:
//
//   - [SolveHomography] computes the unique 3x3 matrix carrying four source
//     points onto four destination points.
//   - [RectToQuad] specialises the solver to the rectangle (0,0)-(w,h) and
//     returns the embedded [Matrix4].
//
// # Corner Order
//
// A [Quad] is ordered top-left, top-right, bottom-left, bottom-right. Index 3
// is diagonal to index 0; this is not a ring order. Corner i of the source is
// always mapped to corner i of the destination, so a quad built in ring order
// (clockwise around the outline) produces a twisted, self-intersecting warp.
// Use [FromRing] to convert ring-ordered input.
//
// # Algorithm
//
// The solver uses the closed-form construction that maps the projective basis
// (1,0,0), (0,1,0), (0,0,1), (1,1,1) onto four points. For both point sets it
// builds that basis-to-points matrix B; the homography is then
//
//	H = Bdst · adj(Bsrc)
//
// where adj is the 3x3 adjugate, written out as nine 2x2 determinants. No
// general matrix inversion or pivoting is involved. H is finally divided by
// its bottom-right coefficient so that H[8] == 1.
//
// # Errors
//
// Collinear or coincident points have no unique projective mapping and fail
// with [ErrDegenerateGeometry]; wrong point counts or non-finite coordinates
// fail with [ErrInvalidInput]. Errors never leave NaN or Inf in a result.
//
// # Concurrency
//
// Every function is pure: values in, values out, no shared state. All of them
// are safe to call concurrently and cost a few dozen multiply-adds each, so
// they can run on every pointer-move event.
//
// # Usage
//
//	box := projective.Quad{{10, 10}, {210, 20}, {0, 120}, {220, 110}}
//	m, err := projective.RectToQuad(200, 100, box)
//	if errors.Is(err, projective.ErrDegenerateGeometry) {
//	    // keep the previous transform
//	}
//	style := "transform: " + m.CSS()
package projective
