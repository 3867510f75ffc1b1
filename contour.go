package pathfx

import (
	"fmt"
	"math"
	"slices"
)

// ContourKind distinguishes open and closed contours. The two are handled by
// explicit branches in every algorithm: open contours get caps and clamp their
// parameter, closed contours get a seam join and wrap around.
type ContourKind uint8

const (
	Open ContourKind = iota
	Closed
)

func (k ContourKind) String() string {
	switch k {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("ContourKind(%d)", k)
	}
}

// continuityEpsilon is how far the end of one segment may be from the start
// of the next in a valid contour.
const continuityEpsilon = 1e-6

// Contour is an ordered sequence of cubic segments where each segment starts
// where the previous one ends. A closed contour's last segment ends at the
// first segment's start.
//
// Contours are values; operations return new contours and never modify the
// receiver's segments.
type Contour struct {
	Kind     ContourKind
	Segments []CubicBez
}

// NewOpenContour returns an open contour of a copy of segs.
func NewOpenContour(segs ...CubicBez) Contour {
	return Contour{Kind: Open, Segments: slices.Clone(segs)}
}

// NewClosedContour returns a closed contour of a copy of segs. If the last
// segment doesn't end at the start of the first, a closing line is appended.
func NewClosedContour(segs ...CubicBez) Contour {
	out := Contour{Kind: Closed, Segments: slices.Clone(segs)}
	if len(segs) > 0 {
		first, last := segs[0].P0, segs[len(segs)-1].P3
		if !first.ApproxEqual(last, continuityEpsilon) {
			out.Segments = append(out.Segments, LineSeg(last, first))
		} else {
			out.Segments[len(out.Segments)-1] = out.Segments[len(out.Segments)-1].withEnd(first)
		}
	}
	return out
}

func (c Contour) IsClosed() bool { return c.Kind == Closed }

// Len returns the number of segments, which is also the upper end of the
// contour's parameter range.
func (c Contour) Len() int { return len(c.Segments) }

func (c Contour) Start() Point { return c.Segments[0].P0 }
func (c Contour) End() Point   { return c.Segments[len(c.Segments)-1].P3 }

// Clone returns a deep copy of the contour.
func (c Contour) Clone() Contour {
	return Contour{Kind: c.Kind, Segments: slices.Clone(c.Segments)}
}

// Reverse returns the contour traversed in the opposite direction.
func (c Contour) Reverse() Contour {
	out := Contour{Kind: c.Kind, Segments: make([]CubicBez, len(c.Segments))}
	for i, seg := range c.Segments {
		out.Segments[len(c.Segments)-1-i] = seg.Reverse()
	}
	return out
}

// Transform applies aff to every control point.
func (c Contour) Transform(aff Affine) Contour {
	out := Contour{Kind: c.Kind, Segments: make([]CubicBez, len(c.Segments))}
	for i, seg := range c.Segments {
		out.Segments[i] = seg.Transform(aff)
	}
	return out
}

// BoundingBox returns the tight bounding box of the contour's curves.
func (c Contour) BoundingBox() Rect {
	if len(c.Segments) == 0 {
		return Rect{}
	}
	bbox := c.Segments[0].BoundingBox()
	for _, seg := range c.Segments[1:] {
		bbox = bbox.Union(seg.BoundingBox())
	}
	return bbox
}

// SignedArea returns the area enclosed by the contour, positive for
// counter-clockwise contours in the y-up glyph coordinate system. Open
// contours are treated as if closed by a straight line.
func (c Contour) SignedArea() float64 {
	var area float64
	for _, seg := range c.Segments {
		area += seg.signedArea()
	}
	if c.Kind == Open && len(c.Segments) > 0 {
		area += Vec2(c.End()).Cross(Vec2(c.Start())) * 0.5
	}
	return area
}

func (c CubicBez) signedArea() float64 {
	return (c.P0.X*(6.0*c.P1.Y+3.0*c.P2.Y+c.P3.Y) +
		3.0*(c.P1.X*(-2.0*c.P0.Y+c.P2.Y+c.P3.Y)-
			c.P2.X*(c.P0.Y+c.P1.Y-2.0*c.P3.Y)) -
		c.P3.X*(c.P0.Y+3.0*c.P1.Y+6.0*c.P2.Y)) *
		(1.0 / 20.0)
}

// Validate checks the structural invariants of the contour. Empty contours and
// contours whose control points all coincide fail with ErrDegenerateInput;
// non-finite coordinates and broken continuity fail with ErrInvalidParameter.
func (c Contour) Validate() error {
	if len(c.Segments) == 0 {
		return fmt.Errorf("%w: contour has no segments", ErrDegenerateInput)
	}
	if c.Kind != Open && c.Kind != Closed {
		return fmt.Errorf("%w: unknown contour kind %d", ErrInvalidParameter, c.Kind)
	}
	var poly float64
	for i, seg := range c.Segments {
		if seg.IsNaN() || seg.IsInf() {
			return fmt.Errorf("%w: segment %d has non-finite coordinates", ErrInvalidParameter, i)
		}
		if i > 0 && !c.Segments[i-1].P3.ApproxEqual(seg.P0, continuityEpsilon) {
			return fmt.Errorf("%w: segment %d does not start where segment %d ends", ErrInvalidParameter, i, i-1)
		}
		poly += seg.ControlPolygonLength()
	}
	if c.Kind == Closed && !c.End().ApproxEqual(c.Start(), continuityEpsilon) {
		return fmt.Errorf("%w: closed contour does not end at its start", ErrInvalidParameter)
	}
	if poly <= continuityEpsilon {
		return fmt.Errorf("%w: contour has zero length", ErrDegenerateInput)
	}
	return nil
}

// locate maps a global parameter to a segment index and a local parameter.
// Closed contours wrap t modulo Len(); open contours clamp it to [0, Len()].
// NaN maps to the start.
func (c Contour) locate(t float64) (int, float64) {
	n := float64(len(c.Segments))
	switch c.Kind {
	case Closed:
		t = math.Mod(t, n)
		if t < 0 {
			t += n
		}
	default:
		t = min(max(t, 0), n)
	}
	if math.IsNaN(t) {
		// NaN, or infinite t on a closed contour.
		t = 0
	}
	i := int(t)
	if i >= len(c.Segments) {
		return len(c.Segments) - 1, 1
	}
	return i, t - float64(i)
}

// Evaluate returns the position at global parameter t. The integer part of t
// selects the segment and the fraction is the parameter within it.
func (c Contour) Evaluate(t float64) Point {
	i, u := c.locate(t)
	return c.Segments[i].Eval(u)
}

// Deriv returns the unnormalized first derivative at global parameter t.
func (c Contour) Deriv(t float64) Vec2 {
	i, u := c.locate(t)
	return c.Segments[i].Deriv(u)
}

// tangentEpsilon is the squared derivative magnitude below which a tangent is
// considered undefined.
const tangentEpsilon = 1e-18

// Tangent returns the unit tangent at global parameter t. It fails with
// ErrDegenerateTangent where the derivative vanishes, which happens at the
// ends of segments whose handle sits on the anchor. Callers fall back to
// [Contour.SecantTangent].
func (c Contour) Tangent(t float64) (Vec2, error) {
	d := c.Deriv(t)
	if d.Hypot2() <= tangentEpsilon || d.IsNaN() {
		return Vec2{}, ErrDegenerateTangent
	}
	return d.Normalize(), nil
}

// SecantTangent returns the unit direction of the secant between the points
// at t-h and t+h. On open contours the samples are clamped to the parameter
// range.
func (c Contour) SecantTangent(t, h float64) (Vec2, error) {
	d := c.Evaluate(t + h).Sub(c.Evaluate(t - h))
	if d.Hypot2() <= tangentEpsilon {
		return Vec2{}, ErrDegenerateTangent
	}
	return d.Normalize(), nil
}

// direction returns the unit tangent at t, falling back to secants of growing
// width and finally to the control polygon of the segment.
func (c Contour) direction(t float64) (Vec2, bool) {
	if d, err := c.Tangent(t); err == nil {
		return d, true
	}
	for _, h := range [...]float64{1e-6, 1e-4, 1e-2, 1e-1} {
		if d, err := c.SecantTangent(t, h); err == nil {
			return d, true
		}
	}
	i, u := c.locate(t)
	d0, d1 := c.Segments[i].Tangents()
	d := d0.Lerp(d1, u)
	if d.Hypot2() <= tangentEpsilon {
		return Vec2{}, false
	}
	return d.Normalize(), true
}

// Curvature returns the signed curvature at global parameter t. Positive
// curvature turns to the left. It is zero where the tangent is undefined.
func (c Contour) Curvature(t float64) float64 {
	i, u := c.locate(t)
	seg := c.Segments[i]
	d1 := seg.Deriv(u)
	h2 := d1.Hypot2()
	if h2 <= tangentEpsilon {
		return 0
	}
	return d1.Cross(seg.Deriv2(u)) / (h2 * math.Sqrt(h2))
}

// ContourBuilder builds a contour from drawing commands. Lines and quadratics
// are stored as cubics.
type ContourBuilder struct {
	start Point
	cur   Point
	segs  []CubicBez
}

// MoveTo discards any segments and starts a new contour at p.
func (b *ContourBuilder) MoveTo(p Point) *ContourBuilder {
	b.start, b.cur = p, p
	b.segs = b.segs[:0]
	return b
}

func (b *ContourBuilder) LineTo(p Point) *ContourBuilder {
	b.segs = append(b.segs, LineSeg(b.cur, p))
	b.cur = p
	return b
}

func (b *ContourBuilder) QuadTo(p1, p2 Point) *ContourBuilder {
	b.segs = append(b.segs, QuadBez{b.cur, p1, p2}.Raise())
	b.cur = p2
	return b
}

func (b *ContourBuilder) CubicTo(p1, p2, p3 Point) *ContourBuilder {
	b.segs = append(b.segs, CubicBez{b.cur, p1, p2, p3})
	b.cur = p3
	return b
}

// Current returns the current point.
func (b *ContourBuilder) Current() Point { return b.cur }

// Empty reports whether no segments have been added since the last MoveTo.
func (b *ContourBuilder) Empty() bool { return len(b.segs) == 0 }

// Open returns the segments drawn so far as an open contour.
func (b *ContourBuilder) Open() Contour {
	return NewOpenContour(b.segs...)
}

// Close returns the segments drawn so far as a closed contour, adding a line
// back to the start point if needed.
func (b *ContourBuilder) Close() Contour {
	return NewClosedContour(b.segs...)
}
