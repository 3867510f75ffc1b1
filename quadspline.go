package pathfx

import "iter"

// QuadSpline is a quadratic B-spline as stored by TrueType outlines and
// qcurve runs of UFO glyphs: [P₁, C₁, C₂, ..., Cₙ, P₂]. Only the first and last
// on-curve points are explicit. The on-curve point between Cᵢ and Cᵢ₊₁ is
// implied at their midpoint.
type QuadSpline []Point

// Quads returns an iterator over the implied quadratic Bézier segments. They
// are G1 continuous.
func (q QuadSpline) Quads() iter.Seq[QuadBez] {
	return func(yield func(QuadBez) bool) {
		for i := 0; len(q[i:]) >= 3; i++ {
			p0, p1, p2 := q[i], q[i+1], q[i+2]
			if i != 0 {
				p0 = p0.Midpoint(p1)
			}
			if i+2 < len(q)-1 {
				p2 = p1.Midpoint(p2)
			}
			if !yield(QuadBez{p0, p1, p2}) {
				return
			}
		}
	}
}

// QuadSplineTo draws the quadratic spline from the current point through the
// control points ctrl to p. Without control points it draws a line.
func (b *ContourBuilder) QuadSplineTo(p Point, ctrl ...Point) *ContourBuilder {
	if len(ctrl) == 0 {
		return b.LineTo(p)
	}
	spline := make(QuadSpline, 0, len(ctrl)+2)
	spline = append(append(append(spline, b.cur), ctrl...), p)
	for q := range spline.Quads() {
		b.QuadTo(q.P1, q.P2)
	}
	return b
}
