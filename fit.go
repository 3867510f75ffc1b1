package pathfx

import (
	"math"
)

// fitSource describes a curve in a way useful for approximating it with
// cubics. The curve is sampled for its position and derivative; cusps and
// corners, where the derivative vanishes or jumps, are reported separately.
type fitSource interface {
	// eval returns the point at parameter t.
	eval(t float64) Point
	// evalDeriv returns the derivative at t. It may vanish at cusps.
	evalDeriv(t float64) Vec2
	// direction returns the unit tangent at t, approached from the inside of
	// [t0, t1].
	direction(t, t0, t1 float64) Vec2
	// breakCusp returns a cusp or corner strictly inside (start, end). Cusps
	// at the ends of the range must not be reported, as that would subdivide
	// forever.
	breakCusp(start, end float64) (float64, bool)
}

// fitChecker is implemented by sources that can measure the distance of a
// candidate from the curve themselves, in addition to the distance of the
// curve's samples from the candidate. It catches bulges of the candidate
// between samples.
type fitChecker interface {
	checkFit(t0, t1 float64, cand CubicBez, n int, accuracy float64) float64
}

const (
	// fitMaxDepth caps the recursive refinement of a single fit.
	fitMaxDepth = 12
	// fitSamples is the number of interior samples used to measure the error
	// of a candidate.
	fitSamples = 16
)

// curveFitter approximates curves with cubics.
type curveFitter struct {
	tolerance float64
	// capped counts pieces accepted at fitMaxDepth above tolerance.
	capped int
}

// fit appends cubics approximating src over [t0, t1] to out. The range is
// split at cusps first, then in half until a candidate is within tolerance.
func (f *curveFitter) fit(src fitSource, t0, t1 float64, depth int, out []CubicBez) []CubicBez {
	if depth < fitMaxDepth {
		if tc, ok := src.breakCusp(t0, t1); ok {
			out = f.fit(src, t0, tc, depth+1, out)
			return f.fit(src, tc, t1, depth+1, out)
		}
	}
	cand, err := f.candidate(src, t0, t1)
	if err <= f.tolerance || depth >= fitMaxDepth {
		if err > f.tolerance {
			f.capped++
		}
		return append(out, cand)
	}
	tm := 0.5 * (t0 + t1)
	out = f.fit(src, t0, tm, depth+1, out)
	return f.fit(src, tm, t1, depth+1, out)
}

// candidate returns the better of two cubics for src over [t0, t1] and its
// error: the Hermite interpolant of the endpoints and derivatives, and the
// same endpoints with handle lengths found by least squares.
func (f *curveFitter) candidate(src fitSource, t0, t1 float64) (CubicBez, float64) {
	dt := t1 - t0
	p0 := src.eval(t0)
	p3 := src.eval(t1)
	hermite := CubicBez{
		p0,
		p0.Translate(src.evalDeriv(t0).Mul(dt / 3.0)),
		p3.Translate(src.evalDeriv(t1).Mul(-dt / 3.0)),
		p3,
	}

	var samples [fitSamples]Point
	var params [fitSamples]float64
	for i := range samples {
		u := float64(i+1) / float64(fitSamples+1)
		params[i] = u
		samples[i] = src.eval(t0 + u*dt)
	}

	best := hermite
	bestErr := f.measure(src, t0, t1, hermite, samples[:])
	if bestErr <= f.tolerance {
		return best, bestErr
	}
	u0 := src.direction(t0, t0, t1)
	u1 := src.direction(t1, t0, t1)
	if ls, ok := leastSquaresHandles(p0, p3, u0, u1, params[:], samples[:]); ok {
		if err := f.measure(src, t0, t1, ls, samples[:]); err < bestErr {
			best, bestErr = ls, err
		}
	}
	return best, bestErr
}

// measure returns the largest distance from the samples of src to the
// candidate, or the deviation reported by the source's own check if that is
// larger.
func (f *curveFitter) measure(src fitSource, t0, t1 float64, cand CubicBez, samples []Point) float64 {
	if cand.IsNaN() || cand.IsInf() {
		return math.Inf(1)
	}
	accuracy := f.tolerance * 0.1
	var worst float64
	for _, p := range samples {
		distSq, _ := cand.Nearest(p, accuracy)
		worst = max(worst, math.Sqrt(distSq))
	}
	if fc, ok := src.(fitChecker); ok {
		worst = max(worst, fc.checkFit(t0, t1, cand, len(samples), accuracy))
	}
	return worst
}

// leastSquaresHandles fits the handle lengths a and b of the cubic
// p0, p0+a·u0, p3−b·u1, p3 to the samples taken at params.
func leastSquaresHandles(p0, p3 Point, u0, u1 Vec2, params []float64, samples []Point) (CubicBez, bool) {
	var aa, ab, bb, ar, br float64
	for i, u := range params {
		mt := 1 - u
		b0 := mt * mt * mt
		b1 := 3 * mt * mt * u
		b2 := 3 * mt * u * u
		b3 := u * u * u
		base := Vec2(p0).Mul(b0 + b1).Add(Vec2(p3).Mul(b2 + b3))
		r := Vec2(samples[i]).Sub(base)
		va := u0.Mul(b1)
		vb := u1.Mul(-b2)
		aa += va.Dot(va)
		ab += va.Dot(vb)
		bb += vb.Dot(vb)
		ar += va.Dot(r)
		br += vb.Dot(r)
	}
	det := aa*bb - ab*ab
	if math.Abs(det) < 1e-12*aa*bb || det == 0 {
		return CubicBez{}, false
	}
	a := (ar*bb - br*ab) / det
	b := (aa*br - ab*ar) / det
	// Negative or runaway handles make loops, which the error measure may not
	// see between samples.
	chord := p3.Sub(p0).Hypot()
	if a < 0 || b < 0 || a > 2*chord || b > 2*chord {
		return CubicBez{}, false
	}
	return CubicBez{p0, p0.Translate(u0.Mul(a)), p3.Translate(u1.Mul(-b)), p3}, true
}
