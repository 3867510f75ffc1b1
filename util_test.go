package pathfx

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// approx compares floats within an absolute tolerance.
func approx(eps float64) cmp.Option {
	return cmpopts.EquateApprox(0, eps)
}

// distanceToContour returns the distance from pt to the nearest point of c.
func distanceToContour(c Contour, pt Point) float64 {
	best := math.Inf(1)
	for _, seg := range c.Segments {
		d, _ := seg.Nearest(pt, 1e-6)
		best = min(best, d)
	}
	return math.Sqrt(best)
}

// circleContour returns a closed counter-clockwise circle made of four cubics.
func circleContour(center Point, r float64) Contour {
	const k = 0.5519150244935105707435627
	c := Vec2(center)
	pt := func(x, y float64) Point { return Point(c.Add(Vec2{x, y})) }
	return NewClosedContour(
		CubicBez{pt(r, 0), pt(r, k*r), pt(k*r, r), pt(0, r)},
		CubicBez{pt(0, r), pt(-k*r, r), pt(-r, k*r), pt(-r, 0)},
		CubicBez{pt(-r, 0), pt(-r, -k*r), pt(-k*r, -r), pt(0, -r)},
		CubicBez{pt(0, -r), pt(k*r, -r), pt(r, -k*r), pt(r, 0)},
	)
}

// checkConnected fails if the segments of c are not continuous.
func checkConnected(t *testing.T, c Contour) {
	t.Helper()
	if err := c.Validate(); err != nil {
		t.Errorf("invalid contour: %v", err)
	}
	for i, seg := range c.Segments {
		if seg.IsNaN() || seg.IsInf() {
			t.Errorf("segment %d is not finite: %v", i, seg)
		}
	}
}
