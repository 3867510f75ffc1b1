package pathfx

import (
	"math"
	"sort"
)

// CubicBez is a cubic Bézier segment. It is the only segment type of a
// [Contour]: lines are cubics with their handles on the anchors, quadratic
// segments are raised to cubics when they enter the engine.
type CubicBez struct {
	P0 Point
	P1 Point
	P2 Point
	P3 Point
}

// LineSeg returns the cubic representation of the straight line from p0 to
// p1. Both handles sit on their anchors, which is how font editors store
// lines.
func LineSeg(p0, p1 Point) CubicBez {
	return CubicBez{p0, p0, p1, p1}
}

func (c CubicBez) IsInf() bool {
	return c.P0.IsInf() || c.P1.IsInf() || c.P2.IsInf() || c.P3.IsInf()
}

func (c CubicBez) IsNaN() bool {
	return c.P0.IsNaN() || c.P1.IsNaN() || c.P2.IsNaN() || c.P3.IsNaN()
}

// Eval evaluates the cubic at parameter t ∈ [0, 1].
func (c CubicBez) Eval(t float64) Point {
	mt := 1.0 - t
	a := Vec2(c.P0).Mul(mt * mt * mt)
	b := Vec2(c.P1).Mul(mt * mt * 3.0)
	cc := Vec2(c.P2).Mul(mt * 3.0)
	d := Vec2(c.P3)
	return Point(a.Add(b.Add(cc.Add(d.Mul(t)).Mul(t)).Mul(t)))
}

// Deriv returns the first derivative at t.
func (c CubicBez) Deriv(t float64) Vec2 {
	return Vec2(c.Differentiate().Eval(t))
}

// Deriv2 returns the second derivative at t.
func (c CubicBez) Deriv2(t float64) Vec2 {
	q := c.Differentiate()
	return q.P1.Sub(q.P0).Lerp(q.P2.Sub(q.P1), t).Mul(2)
}

// Differentiate returns the derivative of the cubic, which is a quadratic
// hodograph.
func (c CubicBez) Differentiate() QuadBez {
	return QuadBez{
		Point(c.P1.Sub(c.P0).Mul(3)),
		Point(c.P2.Sub(c.P1).Mul(3)),
		Point(c.P3.Sub(c.P2).Mul(3)),
	}
}

// Split subdivides the cubic at t using de Casteljau's algorithm.
func (c CubicBez) Split(t float64) (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	pm := p012.Lerp(p123, t)
	return CubicBez{c.P0, p01, p012, pm}, CubicBez{pm, p123, p23, c.P3}
}

// Subdivide subdivides the cubic into halves.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	return c.Split(0.5)
}

// Subsegment returns the part of the cubic between t0 and t1.
func (c CubicBez) Subsegment(t0, t1 float64) CubicBez {
	p0 := c.Eval(t0)
	p3 := c.Eval(t1)
	d := c.Differentiate()
	scale := (t1 - t0) * (1.0 / 3.0)
	p1 := p0.Translate(Vec2(d.Eval(t0)).Mul(scale))
	p2 := p3.Translate(Vec2(d.Eval(t1)).Mul(scale).Negate())
	return CubicBez{p0, p1, p2, p3}
}

// Reverse returns the same curve traversed from P3 to P0.
func (c CubicBez) Reverse() CubicBez {
	return CubicBez{c.P3, c.P2, c.P1, c.P0}
}

func (c CubicBez) Transform(aff Affine) CubicBez {
	return CubicBez{
		P0: c.P0.Transform(aff),
		P1: c.P1.Transform(aff),
		P2: c.P2.Transform(aff),
		P3: c.P3.Transform(aff),
	}
}

// withStart moves the start of c to p, keeping a handle that sits on the
// anchor there.
func (c CubicBez) withStart(p Point) CubicBez {
	if c.P1 == c.P0 {
		c.P1 = p
	}
	c.P0 = p
	return c
}

// withEnd moves the end of c to p, keeping a handle that sits on the anchor
// there.
func (c CubicBez) withEnd(p Point) CubicBez {
	if c.P2 == c.P3 {
		c.P2 = p
	}
	c.P3 = p
	return c
}

// IsPoint reports whether all four control points coincide.
func (c CubicBez) IsPoint() bool {
	return c.P0 == c.P1 && c.P0 == c.P2 && c.P0 == c.P3
}

// HasLineHandles reports whether both handles sit on their anchors.
func (c CubicBez) HasLineHandles() bool {
	return c.P1 == c.P0 && c.P2 == c.P3
}

// ControlPolygonLength returns the summed length of the three control polygon
// legs. It is an upper bound on the arc length.
func (c CubicBez) ControlPolygonLength() float64 {
	return c.P1.Sub(c.P0).Hypot() + c.P2.Sub(c.P1).Hypot() + c.P3.Sub(c.P2).Hypot()
}

// Flatness returns the difference between the control polygon length and the
// chord length. It is zero exactly for straight, monotone segments.
func (c CubicBez) Flatness() float64 {
	return c.ControlPolygonLength() - c.P3.Sub(c.P0).Hypot()
}

// Arclen returns the arclength of the cubic.
//
// This is an adaptive subdivision approach using Legendre-Gauss quadrature.
func (c CubicBez) Arclen(accuracy float64) float64 {
	return c.arclen(accuracy, 0)
}

func (c CubicBez) arclen(accuracy float64, depth int) float64 {
	d03 := c.P3.Sub(c.P0)
	d01 := c.P1.Sub(c.P0)
	d12 := c.P2.Sub(c.P1)
	d23 := c.P3.Sub(c.P2)
	lplc := d01.Hypot() + d12.Hypot() + d23.Hypot() - d03.Hypot()
	dd1 := d12.Sub(d01)
	dd2 := d23.Sub(d12)
	// These values don't have the factor of 3 for the first derivative.
	dm := d01.Add(d23).Mul(0.25).Add(d12.Mul(0.5)) // first derivative at midpoint
	dm1 := dd2.Add(dd1).Mul(0.5)                   // second derivative at midpoint
	dm2 := dd2.Sub(dd1).Mul(0.25)                  // 0.5 * (third derivative at midpoint)

	var est float64
	for _, coeff := range gaussLegendreCoeffs8 {
		wi, xi := coeff[0], coeff[1]
		dNorm2 := dm.Add(dm1.Mul(xi)).Add(dm2.Mul(xi * xi)).Hypot2()
		ddNorm2 := dm1.Add(dm2.Mul(2.0 * xi)).Hypot2()
		est += wi * ddNorm2 / dNorm2
	}
	if math.IsNaN(est) {
		// dNorm2 is 0 as c approaches a singularity
		est = 0
	}

	if min(math.Pow(est, 3)*2.5e-6, 3e-2)*lplc < accuracy {
		return arclenQuadrature(gaussLegendreCoeffs8Half[:], dm, dm1, dm2)
	}
	if min(math.Pow(est, 6)*1.5e-11, 9e-3)*lplc < accuracy {
		return arclenQuadrature(gaussLegendreCoeffs16Half[:], dm, dm1, dm2)
	}
	if min(math.Pow(est, 9)*3.5e-16, 3.5e-3)*lplc < accuracy || depth >= 20 {
		return arclenQuadrature(gaussLegendreCoeffs24Half[:], dm, dm1, dm2)
	}
	c0, c1 := c.Subdivide()
	return c0.arclen(accuracy*0.5, depth+1) + c1.arclen(accuracy*0.5, depth+1)
}

func arclenQuadrature(coeffs [][2]float64, dm Vec2, dm1 Vec2, dm2 Vec2) float64 {
	var sum float64
	for _, coeff := range coeffs {
		wi, xi := coeff[0], coeff[1]
		d := dm.Add(dm2.Mul(xi * xi))
		dpx := d.Add(dm1.Mul(xi)).Hypot()
		dmx := d.Sub(dm1.Mul(xi)).Hypot()
		sum += 1.5 * wi * (dpx + dmx)
	}
	return sum
}

// Tangents returns unnormalized tangent directions at the start and the end of
// the cubic. When a handle sits on its anchor, the direction towards the next
// distinct control point is used instead, so only a segment collapsed to a
// point yields zero vectors.
func (c CubicBez) Tangents() (Vec2, Vec2) {
	const epsilon = 1e-12
	var d0, d1 Vec2
	if d01 := c.P1.Sub(c.P0); d01.Hypot2() > epsilon {
		d0 = d01
	} else if d02 := c.P2.Sub(c.P0); d02.Hypot2() > epsilon {
		d0 = d02
	} else {
		d0 = c.P3.Sub(c.P0)
	}
	if d23 := c.P3.Sub(c.P2); d23.Hypot2() > epsilon {
		d1 = d23
	} else if d13 := c.P3.Sub(c.P1); d13.Hypot2() > epsilon {
		d1 = d13
	} else {
		d1 = c.P3.Sub(c.P0)
	}
	return d0, d1
}

// Extrema returns the parameters in (0, 1) at which x or y has a local
// extremum, in increasing order.
func (c CubicBez) Extrema() ([4]float64, int) {
	var out [4]float64
	var outN int
	oneCoord := func(d0, d1, d2 float64) {
		a := d0 - 2*d1 + d2
		b := 2 * (d1 - d0)
		roots, n := SolveQuadratic(d0, b, a)
		for _, t := range roots[:n] {
			if t > 0.0 && t < 1.0 {
				out[outN] = t
				outN++
			}
		}
	}
	d0 := c.P1.Sub(c.P0)
	d1 := c.P2.Sub(c.P1)
	d2 := c.P3.Sub(c.P2)
	oneCoord(d0.X, d1.X, d2.X)
	oneCoord(d0.Y, d1.Y, d2.Y)
	sort.Float64s(out[:outN])
	return out, outN
}

// BoundingBox returns the tight axis-aligned bounding box of the curve.
func (c CubicBez) BoundingBox() Rect {
	bbox := NewRectFromPoints(c.P0, c.P3)
	ex, n := c.Extrema()
	for _, t := range ex[:n] {
		bbox = bbox.UnionPoint(c.Eval(t))
	}
	return bbox
}

// Nearest finds the parameter of the point on the curve nearest to pt and the
// squared distance to it.
//
// The cubic is approximated by quadratics within accuracy, each of which is
// solved analytically.
func (c CubicBez) Nearest(pt Point, accuracy float64) (distSq, t float64) {
	// The error of approximating the cubic by a quadratic is proportional to
	// the third derivative, which is constant. Subdividing evenly into n parts
	// reduces it by n³. The magic number is the square of 36 / sqrt(3).
	maxHypot2 := 432.0 * accuracy * accuracy
	p1x2 := Vec2(c.P1).Mul(3).Sub(Vec2(c.P0))
	p2x2 := Vec2(c.P2).Mul(3).Sub(Vec2(c.P3))
	err := p2x2.Sub(p1x2).Hypot2()
	n := max(int(math.Ceil(math.Sqrt(math.Cbrt(err/maxHypot2)))), 1)
	n = min(n, 64)

	var best option[float64]
	for i := range n {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)
		seg := c.Subsegment(t0, t1)
		p1x2 := Vec2(seg.P1).Mul(3).Sub(Vec2(seg.P0))
		p2x2 := Vec2(seg.P2).Mul(3).Sub(Vec2(seg.P3))
		q := QuadBez{seg.P0, Point(p1x2.Add(p2x2).Mul(1.0 / 4.0)), seg.P3}
		qDistSq, qT := q.Nearest(pt)
		if !best.isSet || qDistSq < best.value {
			t = t0 + qT*(t1-t0)
			best.set(qDistSq)
		}
	}
	return best.value, t
}

// regularize preprocesses a cubic Bézier to ease numerical robustness.
//
// If the cubic has zero or near-zero derivatives, the control points are
// perturbed by up to dimension so that offsetting does not divide by zero.
func (c CubicBez) regularize(dimension float64) CubicBez {
	out := c
	dim2 := dimension * dimension
	if out.P0.DistanceSquared(out.P1) < dim2 {
		d02 := out.P0.DistanceSquared(out.P2)
		if d02 >= dim2 {
			out.P1 = out.P0.Lerp(out.P2, math.Sqrt(dim2/d02))
		} else {
			out.P1 = out.P0.Lerp(out.P3, 1.0/3.0)
			out.P2 = out.P3.Lerp(out.P0, 1.0/3.0)
			return out
		}
	}
	if out.P3.DistanceSquared(out.P2) < dim2 {
		d13 := out.P1.DistanceSquared(out.P3)
		if d13 >= dim2 {
			out.P2 = out.P3.Lerp(out.P1, math.Sqrt(dim2/d13))
		} else {
			out.P1 = out.P0.Lerp(out.P3, 1.0/3.0)
			out.P2 = out.P3.Lerp(out.P0, 1.0/3.0)
			return out
		}
	}
	if cuspType, ok := c.detectCusp(dimension); ok {
		d01 := out.P1.Sub(out.P0)
		d01h := d01.Hypot()
		d23 := out.P3.Sub(out.P2)
		d23h := d23.Hypot()
		switch cuspType {
		case cuspLoop:
			out.P1 = out.P1.Translate(d01.Mul(dimension / d01h))
			out.P2 = out.P2.Translate(d23.Mul(dimension / d23h).Negate())
		case cuspDoubleInflection:
			// Don't make the control distance smaller than dimension.
			if d01h > 2.0*dimension {
				out.P1 = out.P1.Translate(d01.Mul(dimension / d01h).Negate())
			}
			if d23h > 2.0*dimension {
				out.P2 = out.P2.Translate(d23.Mul(dimension / d23h))
			}
		}
	}
	return out
}

type cuspType int

const (
	cuspLoop cuspType = iota + 1
	cuspDoubleInflection
)

// detectCusp reports whether the cubic has a cusp with curvature greater than
// the reciprocal of dimension, and classifies it.
func (c CubicBez) detectCusp(dimension float64) (cuspType, bool) {
	d01 := c.P1.Sub(c.P0)
	d02 := c.P2.Sub(c.P0)
	d03 := c.P3.Sub(c.P0)
	d12 := c.P2.Sub(c.P1)
	d23 := c.P3.Sub(c.P2)
	det012 := d01.Cross(d02)
	det123 := d12.Cross(d23)
	det013 := d01.Cross(d03)
	det023 := d02.Cross(d03)
	if det012*det123 > 0.0 && det012*det013 < 0.0 && det012*det023 < 0.0 {
		q := c.Differentiate()
		nearestDist, nearestT := q.Nearest(Point{})
		// Does curvature at the minimum derivative exceed 1/dimension?
		// Checked without division.
		d := q.Eval(nearestT)
		d2 := q.Differentiate().Eval(nearestT)
		cross := Vec2(d).Cross(Vec2(d2))
		if nearestDist*nearestDist*nearestDist <= cross*dimension*cross*dimension {
			a := 3.0*det012 + det023 - 2.0*det013
			b := -3.0*det012 + det013
			disc := b*b - 4.0*a*det012
			if disc > 0.0 {
				return cuspDoubleInflection, true
			}
			return cuspLoop, true
		}
	}
	return 0, false
}
