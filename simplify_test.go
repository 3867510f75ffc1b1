package pathfx

import (
	"errors"
	"math"
	"testing"
)

func TestSimplifyMergesSmoothRuns(t *testing.T) {
	orig := CubicBez{Pt(0, 0), Pt(30, 60), Pt(70, 60), Pt(100, 0)}
	var segs []CubicBez
	for i := range 4 {
		segs = append(segs, orig.Subsegment(float64(i)/4, float64(i+1)/4))
	}
	// The line leaves at a corner, which is kept.
	segs = append(segs, LineSeg(Pt(100, 0), Pt(100, -50)))
	c := NewOpenContour(segs...)

	res, err := DefaultSimplify.Apply(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	out := res.Contours[0]
	if out.IsClosed() || out.Len() != 2 {
		t.Fatalf("got %d segments, closed %t; want 2, open", out.Len(), out.IsClosed())
	}
	diff(t, orig, out.Segments[0], approx(1e-9))
	diff(t, segs[4], out.Segments[1], approx(1e-9))
	for i := range 17 {
		pt := out.Evaluate(float64(i) / 16 * 2)
		if d := distanceToContour(c, pt); d > DefaultSimplify.Accuracy {
			t.Errorf("point %v is %v from the input", pt, d)
		}
	}
}

func TestSimplifyKeepsCorners(t *testing.T) {
	rect := rectContour(0, 0, 100, 50)
	res, err := DefaultSimplify.Apply(rect)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []Contour{rect}, res.Contours)
}

func TestSimplifyClosed(t *testing.T) {
	var segs []CubicBez
	for _, seg := range circleContour(Pt(0, 0), 100).Segments {
		a, b := seg.Subdivide()
		a0, a1 := a.Subdivide()
		b0, b1 := b.Subdivide()
		segs = append(segs, a0, a1, b0, b1)
	}
	circle := NewClosedContour(segs...)

	res, err := DefaultSimplify.Apply(circle)
	if err != nil {
		t.Fatal(err)
	}
	out := res.Contours[0]
	checkConnected(t, out)
	if !out.IsClosed() {
		t.Fatal("closed contour became open")
	}
	if out.Len() >= circle.Len() {
		t.Errorf("got %d segments, want fewer than %d", out.Len(), circle.Len())
	}
	if got, want := out.SignedArea(), circle.SignedArea(); math.Abs(got-want) > 1e-3*want {
		t.Errorf("got area %v, want %v", got, want)
	}
	for _, seg := range out.Segments {
		for i := range 9 {
			pt := seg.Eval(float64(i) / 8)
			if d := pt.Distance(Pt(0, 0)); math.Abs(d-100) > 2*DefaultSimplify.Accuracy {
				t.Errorf("point %v at radius %v", pt, d)
			}
		}
	}
}

func TestSimplifyDropsPoints(t *testing.T) {
	c := NewOpenContour(
		LineSeg(Pt(0, 0), Pt(10, 0)),
		LineSeg(Pt(10, 0), Pt(10, 0)),
		LineSeg(Pt(10, 0), Pt(10, 10)),
	)
	res, err := DefaultSimplify.Apply(c)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []CubicBez{c.Segments[0], c.Segments[2]}, res.Contours[0].Segments)
}

func TestSimplifyErrors(t *testing.T) {
	src := NewOpenContour(LineSeg(Pt(0, 0), Pt(10, 0)))
	tests := []struct {
		s     Simplify
		param string
	}{
		{DefaultSimplify.WithAccuracy(0), "accuracy"},
		{DefaultSimplify.WithAccuracy(math.Inf(1)), "accuracy"},
		{Simplify{Accuracy: 1, AngleThresh: -1}, "angle-thresh"},
	}
	for _, tt := range tests {
		_, err := tt.s.Apply(src)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%+v: got %v, want ErrInvalidParameter", tt.s, err)
			continue
		}
		var e *Error
		if !errors.As(err, &e) || e.Param != tt.param {
			t.Errorf("%+v: got %v, want parameter %q", tt.s, err, tt.param)
		}
	}

	point := NewOpenContour(LineSeg(Pt(1, 1), Pt(1, 1)))
	if _, err := DefaultSimplify.Apply(point); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("got %v, want ErrDegenerateInput", err)
	}
}
