package pathfx

import (
	"fmt"
	"math"
	"slices"
)

// Simplify refits contours with fewer cubics.
//
// A contour is cut into runs at its corners, the joints where the tangents of
// adjoining segments differ by more than AngleThresh. Every run of two or
// more segments is refitted, and replaced if the fit has fewer segments.
// Corners, the ends of open contours and the winding direction are kept.
//
// The fit matches the run with G1 continuity at every subdivision point, so
// noisy input gives poor results.
type Simplify struct {
	// Accuracy is the maximum distance of the result from the input.
	Accuracy float64
	// AngleThresh is the ratio of the cross to the dot product of adjoining
	// tangents above which a joint is a corner.
	AngleThresh float64
}

var DefaultSimplify = Simplify{
	Accuracy:    0.1,
	AngleThresh: 1e-3,
}

func (s Simplify) WithAccuracy(accuracy float64) Simplify { s.Accuracy = accuracy; return s }

func (s Simplify) Name() string { return "simplify" }

func (s Simplify) Validate() error {
	switch {
	case !(s.Accuracy > 0) || math.IsInf(s.Accuracy, 0):
		return paramError("accuracy", "must be positive, got %g", s.Accuracy)
	case !(s.AngleThresh >= 0) || math.IsInf(s.AngleThresh, 0):
		return paramError("angle-thresh", "must not be negative, got %g", s.AngleThresh)
	}
	return nil
}

// Apply simplifies c.
func (s Simplify) Apply(c Contour) (EffectResult, error) {
	if err := s.Validate(); err != nil {
		return EffectResult{}, err
	}
	if err := c.Validate(); err != nil {
		return EffectResult{}, err
	}
	out, capped := s.simplify(c)
	res := EffectResult{Contours: []Contour{out}}
	if capped > 0 {
		res.Warnings = append(res.Warnings, fmt.Errorf("%w: %d simplified pieces above accuracy %g",
			ErrSubdivisionDepthExceeded, capped, s.Accuracy))
	}
	return res, nil
}

// simplify returns the simplified contour and the number of pieces the
// fitter accepted above accuracy.
func (s Simplify) simplify(c Contour) (Contour, int) {
	segs := make([]CubicBez, 0, len(c.Segments))
	for _, seg := range c.Segments {
		if !seg.IsPoint() {
			segs = append(segs, seg)
		}
	}
	if len(segs) < 2 {
		return c.Clone(), 0
	}
	corner := func(a, b CubicBez) bool {
		_, t0 := a.Tangents()
		t1, _ := b.Tangents()
		return math.Abs(t0.Cross(t1)) > math.Abs(t0.Dot(t1))*s.AngleThresh || t0.Dot(t1) <= 0
	}

	if c.Kind == Closed {
		// Start at a corner, so that no run crosses the seam. Without corners
		// the whole contour is one run.
		for i := range segs {
			if corner(segs[(i+len(segs)-1)%len(segs)], segs[i]) {
				segs = slices.Concat(segs[i:], segs[:i])
				break
			}
		}
	}

	f := curveFitter{tolerance: s.Accuracy}
	out := make([]CubicBez, 0, len(segs))
	start := 0
	for i := 1; i <= len(segs); i++ {
		if i < len(segs) && !corner(segs[i-1], segs[i]) {
			continue
		}
		out = s.fitRun(&f, segs[start:i], out)
		start = i
	}
	// Snap the pieces together; fitted ends match the run ends only within
	// rounding.
	for i := 1; i < len(out); i++ {
		out[i] = out[i].withStart(out[i-1].P3)
	}
	if c.Kind == Closed {
		out[len(out)-1] = out[len(out)-1].withEnd(out[0].P0)
		return Contour{Kind: Closed, Segments: out}, f.capped
	}
	return Contour{Kind: Open, Segments: out}, f.capped
}

// fitRun appends the refit of run to out, or run itself if the refit is not
// shorter.
func (s Simplify) fitRun(f *curveFitter, run []CubicBez, out []CubicBez) []CubicBez {
	if len(run) < 2 {
		return append(out, run...)
	}
	capped := f.capped
	src := segmentRun(run)
	fitted := f.fit(&src, 0, 1, 0, nil)
	if len(fitted) >= len(run) || f.capped > capped {
		f.capped = capped
		return append(out, run...)
	}
	return append(out, fitted...)
}

// segmentRun is a sequence of G1 continuous segments, parameterized over
// [0, 1] with every segment taking an equal share.
type segmentRun []CubicBez

// scale returns the segment at t and the parameter within it.
func (r *segmentRun) scale(t float64) (int, float64) {
	n := len(*r)
	ts := t * float64(n)
	i := int(math.Floor(ts))
	switch {
	case i < 0:
		return 0, 0
	case i >= n:
		return n - 1, 1
	}
	return i, ts - float64(i)
}

func (r *segmentRun) eval(t float64) Point {
	i, u := r.scale(t)
	return (*r)[i].Eval(u)
}

func (r *segmentRun) evalDeriv(t float64) Vec2 {
	i, u := r.scale(t)
	return (*r)[i].Deriv(u).Mul(float64(len(*r)))
}

func (r *segmentRun) direction(t, t0, t1 float64) Vec2 {
	i, u := r.scale(t)
	if u == 0 && t == t1 && i > 0 {
		// Approach the joint from the segment before it.
		i, u = i-1, 1
	}
	seg := (*r)[i]
	d := seg.Deriv(u)
	if d.Hypot2() < tangentEpsilon {
		d0, d1 := seg.Tangents()
		if u < 0.5 {
			d = d0
		} else {
			d = d1
		}
	}
	return d.Normalize()
}

// breakCusp reports nothing, as runs are cut at corners.
func (r *segmentRun) breakCusp(start, end float64) (float64, bool) {
	return 0, false
}

// checkFit returns the largest distance of n points of cand from the run
// over [t0, t1].
func (r *segmentRun) checkFit(t0, t1 float64, cand CubicBez, n int, accuracy float64) float64 {
	i0, u0 := r.scale(t0)
	i1, u1 := r.scale(t1)
	if u1 == 0 && i1 > i0 {
		i1, u1 = i1-1, 1
	}
	var worst float64
	for k := range n {
		p := cand.Eval((float64(k) + 0.5) / float64(n))
		best := math.Inf(1)
		for i := i0; i <= i1; i++ {
			lo, hi := 0.0, 1.0
			if i == i0 {
				lo = u0
			}
			if i == i1 {
				hi = u1
			}
			distSq, _ := (*r)[i].Subsegment(lo, hi).Nearest(p, accuracy)
			best = min(best, distSq)
		}
		worst = max(worst, math.Sqrt(best))
	}
	return worst
}
