package pathfx

import (
	"errors"
	"math"
	"testing"
)

func TestContourEvaluate(t *testing.T) {
	var b ContourBuilder
	open := b.MoveTo(Pt(0, 0)).LineTo(Pt(10, 0)).LineTo(Pt(10, 10)).Open()
	if open.Len() != 2 || open.IsClosed() {
		t.Fatalf("got %d segments, closed %t", open.Len(), open.IsClosed())
	}
	diff(t, Pt(10, 0), open.Evaluate(1))
	diff(t, Pt(10, 5), open.Evaluate(1.5))
	// Open contours clamp.
	diff(t, Pt(0, 0), open.Evaluate(-1))
	diff(t, Pt(10, 10), open.Evaluate(2))
	diff(t, Pt(10, 10), open.Evaluate(7))

	closed := b.MoveTo(Pt(0, 0)).LineTo(Pt(10, 0)).LineTo(Pt(10, 10)).Close()
	if closed.Len() != 3 || !closed.IsClosed() {
		t.Fatalf("got %d segments, closed %t", closed.Len(), closed.IsClosed())
	}
	// Closed contours wrap.
	diff(t, closed.Evaluate(0.5), closed.Evaluate(3.5), approx(1e-12))
	diff(t, closed.Evaluate(2.5), closed.Evaluate(-0.5), approx(1e-12))
	diff(t, Pt(0, 0), closed.Evaluate(3))
}

func TestContourEvaluateNaN(t *testing.T) {
	open := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	closed := rectContour(0, 0, 10, 10)
	for _, c := range []Contour{open, closed} {
		diff(t, c.Start(), c.Evaluate(math.NaN()))
		c.Deriv(math.NaN())
		c.Curvature(math.NaN())
		if _, err := c.Tangent(math.NaN()); err != nil && !errors.Is(err, ErrDegenerateTangent) {
			t.Errorf("Tangent(NaN): %v", err)
		}
	}
	diff(t, closed.Start(), closed.Evaluate(math.Inf(-1)))
	diff(t, open.End(), open.Evaluate(math.Inf(1)))
}

func TestContourTangent(t *testing.T) {
	c := NewOpenContour(LineSeg(Pt(0, 0), Pt(10, 0)))
	// Both handles sit on the anchors, so the derivative vanishes at the ends.
	if _, err := c.Tangent(0); !errors.Is(err, ErrDegenerateTangent) {
		t.Errorf("got %v, want ErrDegenerateTangent", err)
	}
	tan, err := c.SecantTangent(0, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, Vec(1, 0), tan, approx(1e-12))

	tan, err = c.Tangent(0.5)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, Vec(1, 0), tan, approx(1e-12))

	d, ok := c.direction(1)
	if !ok {
		t.Fatal("no direction at the end of a line")
	}
	diff(t, Vec(1, 0), d, approx(1e-9))
}

func TestContourCurvature(t *testing.T) {
	const r = 50.0
	c := circleContour(Pt(0, 0), r)
	for i := range 8 {
		k := c.Curvature(float64(i) / 2)
		// The cubic approximation of a circle is off by a few percent at the
		// anchors.
		if math.Abs(k*r-1) > 0.05 {
			t.Errorf("curvature %v at %v, want %v", k, float64(i)/2, 1/r)
		}
	}
	if k := c.Reverse().Curvature(0.5); k >= 0 {
		t.Errorf("clockwise circle has curvature %v", k)
	}
	if k := NewOpenContour(LineSeg(Pt(0, 0), Pt(1, 1))).Curvature(0.5); k != 0 {
		t.Errorf("line has curvature %v", k)
	}
}

func TestContourValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Contour
		want error
	}{
		{"empty", Contour{}, ErrDegenerateInput},
		{"point", NewOpenContour(LineSeg(Pt(3, 3), Pt(3, 3))), ErrDegenerateInput},
		{"gap", NewOpenContour(LineSeg(Pt(0, 0), Pt(1, 0)), LineSeg(Pt(2, 0), Pt(3, 0))), ErrInvalidParameter},
		{"nan", NewOpenContour(LineSeg(Pt(0, 0), Pt(math.NaN(), 0))), ErrInvalidParameter},
		{"unclosed", Contour{Kind: Closed, Segments: []CubicBez{LineSeg(Pt(0, 0), Pt(1, 0))}}, ErrInvalidParameter},
		{"kind", Contour{Kind: 7, Segments: []CubicBez{LineSeg(Pt(0, 0), Pt(1, 0))}}, ErrInvalidParameter},
		{"ok", NewOpenContour(LineSeg(Pt(0, 0), Pt(1, 0))), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestContourReverseAndArea(t *testing.T) {
	c := circleContour(Pt(0, 0), 10)
	area := c.SignedArea()
	if math.Abs(area-math.Pi*100) > 0.1 {
		t.Errorf("got area %v, want about %v", area, math.Pi*100)
	}
	r := c.Reverse()
	diff(t, -area, r.SignedArea(), approx(1e-9))
	diff(t, c.Start(), r.End())
	// Reversing doesn't touch the receiver.
	diff(t, circleContour(Pt(0, 0), 10), c)
}

func TestNewClosedContourAddsClosingLine(t *testing.T) {
	c := NewClosedContour(LineSeg(Pt(0, 0), Pt(10, 0)), LineSeg(Pt(10, 0), Pt(10, 10)))
	if c.Len() != 3 {
		t.Fatalf("got %d segments, want 3", c.Len())
	}
	diff(t, LineSeg(Pt(10, 10), Pt(0, 0)), c.Segments[2])
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestContourBuilderQuad(t *testing.T) {
	var b ContourBuilder
	c := b.MoveTo(Pt(0, 0)).QuadTo(Pt(5, 10), Pt(10, 0)).Close()
	q := QuadBez{Pt(0, 0), Pt(5, 10), Pt(10, 0)}
	diff(t, q.Eval(0.3), c.Evaluate(0.3), approx(1e-12))
	diff(t, Rect{0, 0, 10, 5}, c.BoundingBox(), approx(1e-12))
}

func TestContourTransformClone(t *testing.T) {
	c := NewOpenContour(CubicBez{Pt(0, 0), Pt(1, 2), Pt(3, 2), Pt(4, 0)})
	clone := c.Clone()
	clone.Segments[0].P1 = Pt(100, 100)
	diff(t, Pt(1, 2), c.Segments[0].P1)

	moved := c.Transform(Translate(Vec(10, 0)))
	diff(t, Pt(11, 2), moved.Segments[0].P1)
	diff(t, Pt(1, 2), c.Segments[0].P1)
}
