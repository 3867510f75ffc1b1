package pathfx

// QuadBez is a quadratic Bézier segment. Quadratics only occur at the edges of
// the engine: TrueType outlines and qcurve points are raised to cubics, and
// the hodograph of a cubic is a quadratic.
type QuadBez struct {
	P0 Point
	P1 Point
	P2 Point
}

// Raise raises the order by 1.
//
// Returns a cubic Bézier segment that exactly represents this quadratic.
func (q QuadBez) Raise() CubicBez {
	return CubicBez{
		q.P0,
		q.P0.Translate(q.P1.Sub(q.P0).Mul(2.0 / 3.0)),
		q.P2.Translate(q.P1.Sub(q.P2).Mul(2.0 / 3.0)),
		q.P2,
	}
}

func (q QuadBez) Eval(t float64) Point {
	mt := 1.0 - t
	a := Vec2(q.P0).Mul(mt * mt)
	b := Vec2(q.P1).Mul(mt * 2.0)
	c := Vec2(q.P2).Mul(t)
	d := b.Add(c)
	return Point(a.Add(d.Mul(t)))
}

func (q QuadBez) Differentiate() Line {
	return Line{
		Point(q.P1.Sub(q.P0).Mul(2)),
		Point(q.P2.Sub(q.P1).Mul(2)),
	}
}

func (q QuadBez) Transform(aff Affine) QuadBez {
	return QuadBez{
		P0: q.P0.Transform(aff),
		P1: q.P1.Transform(aff),
		P2: q.P2.Transform(aff),
	}
}

// Nearest finds the parameter of the point on the quadratic nearest to pt,
// and the squared distance to it. The minimum is found analytically by
// solving the cubic that the derivative of the squared distance forms.
func (q QuadBez) Nearest(pt Point) (distSq, t float64) {
	var rBest option[float64]
	tBest := 0.0
	evalT := func(t float64, p Point) {
		r := p.Sub(pt).Hypot2()
		if !rBest.isSet || r < rBest.value {
			rBest.set(r)
			tBest = t
		}
	}

	d0 := q.P1.Sub(q.P0)
	d1 := Vec2(q.P0).Add(Vec2(q.P2)).Sub(Vec2(q.P1).Mul(2.0))
	d := q.P0.Sub(pt)
	c0 := d.Dot(d0)
	c1 := 2.0*d0.Hypot2() + d.Dot(d1)
	c2 := 3.0 * d1.Dot(d0)
	c3 := d1.Hypot2()
	roots, n := SolveCubic(c0, c1, c2, c3)
	needEnds := n == 0
	for _, t := range roots[:n] {
		if !(t >= 0.0 && t <= 1.0) {
			needEnds = true
			continue
		}
		evalT(t, q.Eval(t))
	}
	if needEnds {
		evalT(0.0, q.P0)
		evalT(1.0, q.P2)
	}
	return rBest.value, tBest
}
