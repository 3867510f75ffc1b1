package pathfx

import (
	"math"
)

// cubicOffset represents the [offset curve] of a cubic Bézier at signed
// distance d, positive to the left of the direction of travel.
//
// See the [Parallel curves of cubic Béziers] blog post for a discussion of the
// cusp detection used here.
//
// [Parallel curves of cubic Béziers]: https://raphlinus.github.io/curves/2022/09/09/parallel-beziers.html
// [offset curve]: https://en.wikipedia.org/wiki/Parallel_curve
type cubicOffset struct {
	c  CubicBez
	q  QuadBez
	d  float64
	c0 float64
	c1 float64
	c2 float64
}

// newCubicOffset creates the offset of c, which must already be regularized.
func newCubicOffset(c CubicBez, d float64) cubicOffset {
	q := c.Differentiate()
	d0 := Vec2(q.P0)
	d1 := q.P1.Sub(q.P0).Mul(2)
	d2 := Vec2(q.P0).Sub(Vec2(q.P1).Mul(2)).Add(Vec2(q.P2))
	return cubicOffset{
		c:  c,
		q:  q,
		d:  d,
		c0: d * d1.Cross(d0),
		c1: d * 2.0 * d2.Cross(d0),
		c2: d * d2.Cross(d1),
	}
}

func (co *cubicOffset) evalOffset(t float64) Vec2 {
	dp := Vec2(co.q.Eval(t))
	h := dp.Hypot()
	if h == 0 {
		// Only reachable for curves that collapse to a point at t; use the
		// control polygon.
		d0, d1 := co.c.Tangents()
		dp = d0.Lerp(d1, t)
		h = dp.Hypot()
		if h == 0 {
			return Vec2{}
		}
	}
	return dp.Perp().Mul(co.d / h)
}

// eval returns the exact offset point at t.
func (co *cubicOffset) eval(t float64) Point {
	return co.c.Eval(t).Translate(co.evalOffset(t))
}

// evalDeriv returns the derivative of the offset curve, which is the source
// derivative scaled by 1 - dκ.
func (co *cubicOffset) evalDeriv(t float64) Vec2 {
	return Vec2(co.q.Eval(t)).Mul(co.cuspSign(t))
}

// cuspSign computes 1 - dκ, which has a zero-crossing at cusps of the offset
// and is positive at low curvatures on the source curve.
func (co *cubicOffset) cuspSign(t float64) float64 {
	ds2 := Vec2(co.q.Eval(t)).Hypot2()
	v := ((co.c2*t+co.c1)*t+co.c0)/(ds2*math.Sqrt(ds2)) + 1.0
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}

// direction returns the unit tangent of the offset curve at t, approached from
// the inside of [t0, t1]. At a cusp the derivative vanishes, so the sign is
// taken from a point slightly inside the range.
func (co *cubicOffset) direction(t, t0, t1 float64) Vec2 {
	const cuspEpsilon = 1e-8
	tan := Vec2(co.q.Eval(t))
	if tan.Hypot2() == 0 {
		d0, d1 := co.c.Tangents()
		tan = d0.Lerp(d1, t)
	}
	cusp := co.cuspSign(t)
	if math.Abs(cusp) < cuspEpsilon {
		near := t + 1e-6*(t1-t0)
		if t == t1 {
			near = t - 1e-6*(t1-t0)
		}
		cusp = co.cuspSign(near)
	}
	if math.Signbit(cusp) {
		tan = tan.Negate()
	}
	return tan.Normalize()
}

// breakCusp finds a cusp of the offset in [start, end] by locating a sign
// change of cuspSign with the ITP method.
func (co *cubicOffset) breakCusp(start, end float64) (float64, bool) {
	const cuspEpsilon = 1e-8
	// When an endpoint is on (or very near) a cusp, move just far enough
	// away from the cusp that we're confident we have the right sign.
	breakCuspHelper := func(x, d float64) (float64, float64) {
		cusp := co.cuspSign(x)
		for math.Abs(cusp) < cuspEpsilon && math.Abs(d) < 1.0 {
			x += d
			oldCusp := cusp
			cusp = co.cuspSign(x)
			if math.Abs(cusp) > math.Abs(oldCusp) {
				break
			}
			d *= 2.0
		}
		return x, cusp
	}
	a, cusp0 := breakCuspHelper(start, 1e-12)
	b, cusp1 := breakCuspHelper(end, -1e-12)
	if a >= b || cusp0*cusp1 >= 0.0 {
		return 0, false
	}
	s := sign(cusp1)
	f := func(t float64) float64 {
		return s * co.cuspSign(t)
	}
	k1 := 0.2 / (b - a)
	const itpEpsilon = 1e-12
	x := SolveITP(f, a, b, itpEpsilon, 1, k1, s*cusp0, s*cusp1)
	if x <= start || x >= end {
		return 0, false
	}
	return x, true
}

func sign(x float64) float64 {
	if math.Signbit(x) {
		return -1
	} else {
		return 1
	}
}

// checkFit returns the largest deviation of the distance between cand and the
// source curve from |d|, over n points of cand. Across a cusp the distance is
// not constant, so nothing is checked there.
func (co *cubicOffset) checkFit(t0, t1 float64, cand CubicBez, n int, accuracy float64) float64 {
	if co.cuspSign(t0) <= 0 || co.cuspSign(t1) <= 0 {
		return 0
	}
	src := co.c.Subsegment(t0, t1)
	ad := math.Abs(co.d)
	var worst float64
	for i := range n {
		u := (float64(i) + 0.5) / float64(n)
		distSq, _ := src.Nearest(cand.Eval(u), accuracy)
		worst = max(worst, math.Abs(math.Sqrt(distSq)-ad))
	}
	return worst
}
