package pathfx

import (
	"errors"
	"math"
	"testing"
)

func rectContour(x0, y0, x1, y1 float64) Contour {
	var b ContourBuilder
	return b.MoveTo(Pt(x0, y0)).LineTo(Pt(x1, y0)).LineTo(Pt(x1, y1)).LineTo(Pt(x0, y1)).Close()
}

func applyPattern(t *testing.T, p Pattern, target Contour) []Contour {
	t.Helper()
	res, err := p.Apply(target)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range res.Contours {
		checkConnected(t, c)
		if !c.IsClosed() {
			t.Fatal("got open stamp")
		}
	}
	return res.Contours
}

func TestPatternCircles(t *testing.T) {
	target := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	p := DefaultPattern.WithDonor(circleContour(Pt(300, 300), 10)).WithSpacing(20)
	stamps := applyPattern(t, p, target)
	if len(stamps) != 5 {
		t.Fatalf("got %d stamps, want 5", len(stamps))
	}
	for i, s := range stamps {
		diff(t, Pt(20*float64(i), 0), s.BoundingBox().Center(), approx(2*DefaultTolerance))
		if s.SignedArea() <= 0 {
			t.Errorf("stamp %d changed its winding", i)
		}
		if i > 0 {
			prev := stamps[i-1].BoundingBox()
			if cur := s.BoundingBox(); cur.X0 < prev.X1-0.05 {
				t.Errorf("stamps %d and %d overlap: %v, %v", i-1, i, prev, cur)
			}
		}
	}
}

func TestPatternPlacements(t *testing.T) {
	line := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	circle := circleContour(Pt(0, 0), 50)
	donor := rectContour(-5, -1, 5, 1)

	centers := func(pls []Placement) []float64 {
		out := make([]float64, len(pls))
		for i, pl := range pls {
			out[i] = pl.Center
		}
		return out
	}

	tests := []struct {
		name   string
		p      Pattern
		target Contour
		want   []float64
	}{
		{"round down", DefaultPattern.WithSpacing(30), line, []float64{0, 100.0 / 3, 200.0 / 3}},
		{"round up", DefaultPattern.WithSpacing(28), line, []float64{0, 25, 50, 75}},
		{"nearest count", DefaultPattern.WithSpacing(45), line, []float64{0, 50}},
		{"longer than target", DefaultPattern.WithSpacing(500), line, []float64{0}},
		{"end anchor", DefaultPattern.WithSpacing(30).WithEndAnchor(true), line, []float64{0, 50, 100}},
		{"end anchor minimum", DefaultPattern.WithSpacing(500).WithEndAnchor(true), line, []float64{0, 100}},
		{"single", DefaultPattern.WithCopies(Single), line, []float64{50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pls, err := tt.p.WithDonor(donor).Placements(tt.target)
			if err != nil {
				t.Fatal(err)
			}
			diff(t, tt.want, centers(pls), approx(1e-9))
		})
	}

	// On closed targets the stamps divide the whole length evenly, with no
	// gap at the seam, and end anchoring does not apply.
	tbl, err := NewArcLengthTable(circle, DefaultArcLengthOptions)
	if err != nil {
		t.Fatal(err)
	}
	L := tbl.Length()
	for _, anchored := range []bool{false, true} {
		pls, err := DefaultPattern.WithDonor(donor).WithSpacing(L / 10).WithEndAnchor(anchored).Placements(circle)
		if err != nil {
			t.Fatal(err)
		}
		if len(pls) != 10 {
			t.Fatalf("got %d placements, want 10", len(pls))
		}
		var sum float64
		for i := range pls {
			next := L
			if i+1 < len(pls) {
				next = pls[i+1].Center
			}
			sum += next - pls[i].Center
		}
		diff(t, L, sum, approx(1e-9))
	}
}

func TestPatternStretch(t *testing.T) {
	target := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	p := DefaultPattern.WithDonor(circleContour(Pt(0, 0), 10)).WithSpacing(30).WithStretch(true)
	stamps := applyPattern(t, p, target)
	if len(stamps) != 3 {
		t.Fatalf("got %d stamps, want 3", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		prev, cur := stamps[i-1].BoundingBox(), stamps[i].BoundingBox()
		// Stretched stamps abut.
		diff(t, prev.X1, cur.X0, approx(0.05))
		diff(t, 100.0/3, cur.Width(), approx(1e-6))
		diff(t, 20.0, cur.Height(), approx(1e-6))
	}
}

func TestPatternOrientation(t *testing.T) {
	donor := rectContour(-5, -1, 5, 1)
	up := NewOpenContour(LineSeg(Pt(0, 0), Pt(0, 100)))
	stamps := applyPattern(t, DefaultPattern.WithDonor(donor).WithCopies(Single), up)
	bbox := stamps[0].BoundingBox()
	// The donor's x axis follows the path.
	diff(t, Rect{-1, 45, 1, 55}, bbox, approx(2*DefaultTolerance))

	// An upright donor laid along a horizontal path.
	upright := rectContour(-1, -5, 1, 5)
	across := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	stamps = applyPattern(t, DefaultPattern.WithDonor(upright).WithCopies(Single).WithVertical(true), across)
	diff(t, Rect{45, -1, 55, 1}, stamps[0].BoundingBox(), approx(2*DefaultTolerance))
}

func TestPatternOffsetsAndScale(t *testing.T) {
	target := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	donor := rectContour(10, 10, 20, 20)
	p := DefaultPattern.WithDonor(donor).WithCopies(Single).WithOffsets(5, 3).WithScale(2, 0.5)
	stamps := applyPattern(t, p, target)
	diff(t, Rect{43, 2.5, 63, 7.5}, stamps[0].BoundingBox(), approx(2*DefaultTolerance))

	// Without centering the donor's origin goes on the path.
	p = DefaultPattern.WithDonor(donor).WithCopies(Single).WithCenter(false)
	stamps = applyPattern(t, p, target)
	diff(t, Rect{60, 10, 70, 20}, stamps[0].BoundingBox(), approx(2*DefaultTolerance))

	// Mirroring keeps the winding.
	p = DefaultPattern.WithDonor(donor).WithCopies(Single).WithScale(1, -1)
	stamps = applyPattern(t, p, target)
	if stamps[0].SignedArea() <= 0 {
		t.Errorf("mirrored stamp has area %v", stamps[0].SignedArea())
	}
}

func TestPatternWarp(t *testing.T) {
	const r = 50.0
	target := circleContour(Pt(0, 0), r)
	donor := rectContour(-5, -1, 5, 1)
	for _, subdivide := range []int{0, 2} {
		p := DefaultPattern.WithDonor(donor).WithSpacing(40).WithWarp(true, subdivide)
		stamps := applyPattern(t, p, target)
		if len(stamps) != 8 {
			t.Fatalf("got %d stamps, want 8", len(stamps))
		}
		for _, s := range stamps {
			if s.Len() != 4<<subdivide {
				t.Errorf("got %d segments, want %d", s.Len(), 4<<subdivide)
			}
			for _, seg := range s.Segments {
				// The left normal of a counter-clockwise circle points inward.
				d := seg.P0.Distance(Pt(0, 0))
				if math.Abs(d-(r-1)) > 0.05 && math.Abs(d-(r+1)) > 0.05 {
					t.Errorf("warped anchor at radius %v", d)
				}
			}
			if s.SignedArea() <= 0 {
				t.Errorf("warped stamp has area %v", s.SignedArea())
			}
		}
	}
}

func TestPatternWarpSimplify(t *testing.T) {
	const r = 50.0
	target := circleContour(Pt(0, 0), r)
	donor := rectContour(-5, -1, 5, 1)
	p := DefaultPattern.WithDonor(donor).WithSpacing(40).WithWarp(true, 2).WithSimplify(true)
	stamps := applyPattern(t, p, target)
	if len(stamps) != 8 {
		t.Fatalf("got %d stamps, want 8", len(stamps))
	}
	for _, s := range stamps {
		// Each side of the rectangle merges back into one segment.
		if s.Len() != 4 {
			t.Errorf("got %d segments, want 4", s.Len())
		}
		for _, seg := range s.Segments {
			d := seg.P0.Distance(Pt(0, 0))
			if math.Abs(d-(r-1)) > 0.05 && math.Abs(d-(r+1)) > 0.05 {
				t.Errorf("simplified anchor at radius %v", d)
			}
		}
		if s.SignedArea() <= 0 {
			t.Errorf("simplified stamp has area %v", s.SignedArea())
		}
	}
}

func TestPatternWarpOpenEnds(t *testing.T) {
	// The first stamp of an open target hangs over its start and is laid along
	// the extended tangent.
	target := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	p := DefaultPattern.WithDonor(rectContour(-5, -1, 5, 1)).WithSpacing(50).WithWarp(true, 0)
	stamps := applyPattern(t, p, target)
	diff(t, Rect{-5, -1, 5, 1}, stamps[0].BoundingBox(), approx(2*DefaultTolerance))
}

func TestPatternDoesNotModifyInput(t *testing.T) {
	target := NewOpenContour(CubicBez{Pt(0, 0), Pt(30, 60), Pt(70, 60), Pt(100, 0)})
	donor := circleContour(Pt(0, 0), 3)
	origTarget, origDonor := target.Clone(), donor.Clone()
	p := DefaultPattern.WithDonor(donor).WithSpacing(10)
	if _, err := p.Apply(target); err != nil {
		t.Fatal(err)
	}
	if _, err := p.WithWarp(true, 1).Apply(target); err != nil {
		t.Fatal(err)
	}
	diff(t, origTarget, target)
	diff(t, origDonor, donor)
}

func TestPatternErrors(t *testing.T) {
	target := NewOpenContour(LineSeg(Pt(0, 0), Pt(100, 0)))
	donor := circleContour(Pt(0, 0), 10)
	tests := []struct {
		name  string
		p     Pattern
		want  error
		param string
	}{
		{"no donor", DefaultPattern.WithSpacing(10), ErrInvalidDonor, "donor"},
		{"open donor", DefaultPattern.WithDonor(target).WithSpacing(10), ErrInvalidDonor, "donor"},
		{"zero spacing", DefaultPattern.WithDonor(donor), ErrInvalidParameter, "spacing"},
		{"negative spacing", DefaultPattern.WithDonor(donor).WithSpacing(-1), ErrInvalidParameter, "spacing"},
		{"zero scale", DefaultPattern.WithDonor(donor).WithSpacing(10).WithScale(0, 1), ErrInvalidParameter, "sx"},
		{"subdivide", DefaultPattern.WithDonor(donor).WithSpacing(10).WithWarp(true, 20), ErrInvalidParameter, "subdivide"},
		{"copies", DefaultPattern.WithDonor(donor).WithCopies(Copies(5)), ErrInvalidParameter, "repeat-mode"},
		{"flat stretch", DefaultPattern.WithDonor(rectContour(0, 0, 0, 10)).WithSpacing(10).WithStretch(true), ErrInvalidDonor, "donor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Apply(target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var e *Error
			if !errors.As(err, &e) || e.Param != tt.param {
				t.Errorf("got %v, want parameter %q", err, tt.param)
			}
		})
	}

	// A single stamp needs no spacing.
	if _, err := DefaultPattern.WithDonor(donor).WithCopies(Single).Apply(target); err != nil {
		t.Error(err)
	}

	point := NewOpenContour(LineSeg(Pt(1, 1), Pt(1, 1)))
	if _, err := DefaultPattern.WithDonor(donor).WithSpacing(10).Apply(point); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("got %v, want ErrDegenerateInput", err)
	}
}
