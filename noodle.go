package pathfx

import (
	"fmt"
	"math"
	"strings"
)

// Join defines the connection between two segments of a noodle.
type Join int

const (
	// A straight line connecting the segments.
	BevelJoin Join = iota
	// The segments are extended to their natural intersection point.
	MiterJoin
	// An arc between the segments.
	RoundJoin
)

var joinNames = [...]string{
	BevelJoin: "bevel",
	MiterJoin: "miter",
	RoundJoin: "round",
}

func (j Join) String() string {
	if j >= 0 && int(j) < len(joinNames) {
		return joinNames[j]
	}
	return fmt.Sprintf("Join(%d)", int(j))
}

// ParseJoin parses the name of a join style. "circle" is accepted as an alias
// of "round".
func ParseJoin(s string) (Join, error) {
	if strings.EqualFold(s, "circle") {
		return RoundJoin, nil
	}
	for j, name := range joinNames {
		if strings.EqualFold(s, name) {
			return Join(j), nil
		}
	}
	return 0, paramError("join", "unknown join style %q", s)
}

func (j Join) MarshalText() ([]byte, error) { return []byte(j.String()), nil }

func (j *Join) UnmarshalText(b []byte) error {
	v, err := ParseJoin(string(b))
	if err != nil {
		return err
	}
	*j = v
	return nil
}

// Cap defines the shape drawn at the ends of a noodle made from an open
// contour.
type Cap int

const (
	// Flat cap.
	ButtCap Cap = iota
	// Square cap extending the noodle by half its width.
	SquareCap
	// Rounded cap with radius equal to half the noodle width.
	RoundCap
)

var capNames = [...]string{
	ButtCap:   "butt",
	SquareCap: "square",
	RoundCap:  "round",
}

func (c Cap) String() string {
	if c >= 0 && int(c) < len(capNames) {
		return capNames[c]
	}
	return fmt.Sprintf("Cap(%d)", int(c))
}

// ParseCap parses the name of a cap style. "circle" is accepted as an alias
// of "round".
func ParseCap(s string) (Cap, error) {
	if strings.EqualFold(s, "circle") {
		return RoundCap, nil
	}
	for c, name := range capNames {
		if strings.EqualFold(s, name) {
			return Cap(c), nil
		}
	}
	return 0, paramError("cap", "unknown cap style %q", s)
}

func (c Cap) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cap) UnmarshalText(b []byte) error {
	v, err := ParseCap(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Noodle turns a contour into a constant-width outline.
//
// An open contour becomes one closed contour: the right rail forward, the end
// cap, the left rail backward and the start cap, winding counter-clockwise. A
// closed contour becomes two closed contours, the right rail and the reversed
// left rail, which is an annulus for counter-clockwise input.
//
// Rails that cross each other, for example where the width exceeds the radius
// of curvature, are emitted as is. Filling with the nonzero rule still gives
// the intended shape.
type Noodle struct {
	// Width of the noodle.
	Width float64
	// Style for capping the start of an open contour.
	StartCap Cap
	// Style for capping the end of an open contour.
	EndCap Cap
	// Style for connecting segments.
	Join Join
	// Limit for miter joins, as a ratio of miter length to width.
	MiterLimit float64
	// Tolerance is the maximum distance of the output from the exact offset.
	Tolerance float64
}

var DefaultNoodle = Noodle{
	Width:      10,
	StartCap:   RoundCap,
	EndCap:     RoundCap,
	Join:       RoundJoin,
	MiterLimit: 4.0,
	Tolerance:  DefaultTolerance,
}

func (n Noodle) WithWidth(width float64) Noodle      { n.Width = width; return n }
func (n Noodle) WithJoin(join Join) Noodle           { n.Join = join; return n }
func (n Noodle) WithMiterLimit(limit float64) Noodle { n.MiterLimit = limit; return n }
func (n Noodle) WithStartCap(cap Cap) Noodle         { n.StartCap = cap; return n }
func (n Noodle) WithEndCap(cap Cap) Noodle           { n.EndCap = cap; return n }
func (n Noodle) WithCaps(cap Cap) Noodle             { n.StartCap, n.EndCap = cap, cap; return n }
func (n Noodle) WithTolerance(tol float64) Noodle    { n.Tolerance = tol; return n }

// Validate checks the parameters of the noodle.
func (n Noodle) Validate() error {
	switch {
	case !(n.Width > 0) || math.IsInf(n.Width, 0):
		return paramError("width", "must be positive, got %g", n.Width)
	case !(n.MiterLimit >= 1) || math.IsInf(n.MiterLimit, 0):
		return paramError("miter-limit", "must be at least 1, got %g", n.MiterLimit)
	case !(n.Tolerance > 0) || math.IsInf(n.Tolerance, 0):
		return paramError("tolerance", "must be positive, got %g", n.Tolerance)
	case n.StartCap < ButtCap || n.StartCap > RoundCap:
		return paramError("start-cap", "unknown cap style %d", int(n.StartCap))
	case n.EndCap < ButtCap || n.EndCap > RoundCap:
		return paramError("end-cap", "unknown cap style %d", int(n.EndCap))
	case n.Join < BevelJoin || n.Join > RoundJoin:
		return paramError("join", "unknown join style %d", int(n.Join))
	}
	return nil
}

func (n Noodle) Name() string { return "noodle" }

// Apply strokes c. The result holds one contour for open input and two for
// closed input.
func (n Noodle) Apply(c Contour) (EffectResult, error) {
	if err := n.Validate(); err != nil {
		return EffectResult{}, err
	}
	if err := c.Validate(); err != nil {
		return EffectResult{}, err
	}
	pieces := strokePieces(c, n.Tolerance)
	if len(pieces) == 0 {
		return EffectResult{}, fmt.Errorf("%w: contour has zero length", ErrDegenerateInput)
	}

	ctx := noodleCtx{
		style:      n,
		halfWidth:  0.5 * n.Width,
		joinThresh: 2.0 * n.Tolerance / n.Width,
		fitter:     curveFitter{tolerance: n.Tolerance},
		closed:     c.Kind == Closed,
	}
	right := ctx.rail(pieces, -ctx.halfWidth)
	left := ctx.rail(pieces, ctx.halfWidth)

	var res EffectResult
	if ctx.closed {
		res.Contours = []Contour{
			NewClosedContour(right...),
			NewClosedContour(left...).Reverse(),
		}
	} else {
		res.Contours = []Contour{ctx.outline(pieces, right, left)}
	}
	if ctx.fitter.capped > 0 {
		res.Warnings = append(res.Warnings, fmt.Errorf("%w: %d offset pieces above tolerance %g",
			ErrSubdivisionDepthExceeded, ctx.fitter.capped, n.Tolerance))
	}
	return res, nil
}

// strokePiece is a part of the source contour that is offset as a unit.
type strokePiece struct {
	c CubicBez
	// linear pieces are straight lines and are offset exactly.
	linear bool
	// cusp marks a piece that starts by reversing the direction of a
	// straight segment. It is always joined round.
	cusp bool
	// Unit tangents at the start and the end.
	tan0, tan1 Vec2
}

// strokePieces splits c into pieces. Straight segments that reverse direction
// are split at the reversal; segments of zero length are dropped.
func strokePieces(c Contour, tolerance float64) []strokePiece {
	// A tuning parameter for regularization. A value too large may distort the
	// curve, while a value too small may fail to generate smooth curves.
	const dimTune = 0.25
	dimension := tolerance * dimTune
	minLength := tolerance * 1e-3

	var out []strokePiece
	addLine := func(p0, p1 Point, cusp bool) {
		d := p1.Sub(p0)
		if d.Hypot() <= minLength {
			return
		}
		tan := d.Normalize()
		out = append(out, strokePiece{c: LineSeg(p0, p1), linear: true, cusp: cusp, tan0: tan, tan1: tan})
	}
	for _, seg := range c.Segments {
		if seg.ControlPolygonLength() <= minLength {
			continue
		}
		if pts, ok := linearStops(seg, tolerance); ok {
			for i := 1; i < len(pts); i++ {
				addLine(pts[i-1], pts[i], i > 1)
			}
			continue
		}
		rc := seg.regularize(dimension)
		t0, t1 := rc.Tangents()
		out = append(out, strokePiece{c: rc, tan0: t0.Normalize(), tan1: t1.Normalize()})
	}
	// Keep pieces connected when a dropped piece left a gap.
	for i := 1; i < len(out); i++ {
		out[i].c = out[i].c.withStart(out[i-1].c.P3)
	}
	return out
}

// linearStops reports whether the control points of c are nearly collinear
// and, if so, returns the start, the points where the curve reverses
// direction, and the end.
func linearStops(c CubicBez, tolerance float64) ([]Point, bool) {
	// Ordinarily, this is the direction of the chord, but if the chord is very
	// short, we take the longer control arm.
	chord := c.P3.Sub(c.P0)
	chordRef := chord
	chordRefHypot2 := chordRef.Hypot2()
	d01 := c.P1.Sub(c.P0)
	if d01.Hypot2() > chordRefHypot2 {
		chordRef = d01
		chordRefHypot2 = chordRef.Hypot2()
	}
	d23 := c.P3.Sub(c.P2)
	if d23.Hypot2() > chordRefHypot2 {
		chordRef = d23
		chordRefHypot2 = chordRef.Hypot2()
	}
	x01 := d01.Cross(chordRef)
	x23 := d23.Cross(chordRef)
	x03 := chord.Cross(chordRef)
	thresh := tolerance * tolerance * chordRefHypot2
	if x01*x01 >= thresh || x23*x23 >= thresh || x03*x03 >= thresh {
		return nil, false
	}

	// Project Bézier onto chord and find where the projection turns around.
	p0 := Vec2(c.P0).Dot(chordRef)
	p1 := Vec2(c.P1).Dot(chordRef)
	p2 := Vec2(c.P2).Dot(chordRef)
	p3 := Vec2(c.P3).Dot(chordRef)
	c0 := p1 - p0
	c1 := 2.0*p2 - 4.0*p1 + 2.0*p0
	c2 := p3 - 3.0*p2 + 3.0*p1 - p0
	roots, n := SolveQuadratic(c0, c1, c2)
	out := []Point{c.P0}
	// discard reversals right at endpoints
	const epsilon = 1e-6
	for _, t := range roots[:n] {
		if t > epsilon && t < 1.0-epsilon {
			out = append(out, c.Eval(t))
		}
	}
	return append(out, c.P3), true
}

type noodleCtx struct {
	style     Noodle
	halfWidth float64
	// If hypot < (hypot + dot) * joinThresh omit join altogether.
	joinThresh float64
	fitter     curveFitter
	closed     bool
}

// rail builds the offset of all pieces at signed distance d, joined at every
// vertex. On closed contours the seam is joined too.
func (ctx *noodleCtx) rail(pieces []strokePiece, d float64) []CubicBez {
	var out []CubicBez
	for i, p := range pieces {
		if i > 0 {
			out = ctx.join(out, pieces[i-1], p, d)
		}
		start := len(out)
		out = ctx.offsetPiece(out, p, d)
		if start > 0 {
			out[start] = out[start].withStart(out[start-1].P3)
		}
	}
	if ctx.closed {
		out = ctx.join(out, pieces[len(pieces)-1], pieces[0], d)
		out[len(out)-1] = out[len(out)-1].withEnd(out[0].P0)
	}
	return out
}

func (ctx *noodleCtx) offsetPiece(out []CubicBez, p strokePiece, d float64) []CubicBez {
	if p.linear {
		off := p.tan0.Perp().Mul(d)
		return append(out, LineSeg(p.c.P0.Translate(off), p.c.P3.Translate(off)))
	}
	co := newCubicOffset(p.c, d)
	start := len(out)
	out = ctx.fitter.fit(&co, 0, 1, 0, out)
	// The fitted pieces share their endpoints exactly.
	for i := start + 1; i < len(out); i++ {
		out[i] = out[i].withStart(out[i-1].P3)
	}
	return out
}

// join appends the geometry connecting the offset of prev to the offset of
// next at signed distance d.
func (ctx *noodleCtx) join(out []CubicBez, prev, next strokePiece, d float64) []CubicBez {
	p0 := next.c.P0
	ab := prev.tan1
	cd := next.tan0
	from := p0.Translate(ab.Perp().Mul(d))
	to := p0.Translate(cd.Perp().Mul(d))
	if len(out) > 0 {
		from = out[len(out)-1].P3
	}

	cross := ab.Cross(cd)
	dot := ab.Dot(cd)
	hypot := math.Hypot(cross, dot)
	if dot > 0.0 && math.Abs(cross) < hypot*ctx.joinThresh {
		return connect(out, from, to)
	}

	// The outer side of the turn is to the right when turning left.
	outer := cross*d < 0 || (cross == 0 && d < 0)
	if !outer {
		return connect(out, from, to)
	}
	join := ctx.style.Join
	if next.cusp {
		// Model the reversal as the limit of finite curvature.
		join = RoundJoin
	}
	switch join {
	case MiterJoin:
		limit := ctx.style.MiterLimit
		if 2.0*hypot < (hypot+dot)*limit*limit {
			l0 := Line{from, from.Translate(ab)}
			l1 := Line{to, to.Translate(cd)}
			if miterPt, ok := l0.CrossingPoint(l1); ok {
				out = connect(out, from, miterPt)
				return connect(out, miterPt, to)
			}
		}
		return connect(out, from, to)
	case RoundJoin:
		angle := math.Atan2(cross, dot)
		if cross == 0 {
			angle = math.Copysign(math.Pi, -d)
		}
		return ctx.arc(out, p0, from, to, angle)
	default:
		return connect(out, from, to)
	}
}

// arc appends a circular arc around center from from to to, sweeping angle.
// The arc's ends are snapped to from and to so that the rail stays connected.
func (ctx *noodleCtx) arc(out []CubicBez, center, from, to Point, angle float64) []CubicBez {
	start := from.Sub(center).Angle()
	a := CircularArc(center, ctx.halfWidth, start, angle)
	first := len(out)
	for seg := range a.Segments(ctx.style.Tolerance) {
		out = append(out, seg)
	}
	if len(out) == first {
		return connect(out, from, to)
	}
	out[first] = out[first].withStart(from)
	out[len(out)-1] = out[len(out)-1].withEnd(to)
	return out
}

// connect appends a straight line from from to to, unless they coincide.
func connect(out []CubicBez, from, to Point) []CubicBez {
	if from.ApproxEqual(to, continuityEpsilon) {
		if len(out) > 0 {
			out[len(out)-1] = out[len(out)-1].withEnd(to)
		}
		return out
	}
	return append(out, LineSeg(from, to))
}

// outline closes the rails of an open contour with caps.
func (ctx *noodleCtx) outline(pieces []strokePiece, right, left []CubicBez) Contour {
	first, last := pieces[0], pieces[len(pieces)-1]
	var out []CubicBez
	out = append(out, right...)
	out = ctx.cap(out, ctx.style.EndCap, last.c.P3, last.tan1, right[len(right)-1].P3, left[len(left)-1].P3)
	for i := len(left) - 1; i >= 0; i-- {
		out = append(out, left[i].Reverse())
	}
	out = ctx.cap(out, ctx.style.StartCap, first.c.P0, first.tan0.Negate(), left[0].P0, right[0].P0)
	return NewClosedContour(out...)
}

// cap appends a cap at p, where the noodle leaves in direction tan, from the
// rail end from to the rail end to. from is on the right of tan.
func (ctx *noodleCtx) cap(out []CubicBez, style Cap, p Point, tan Vec2, from, to Point) []CubicBez {
	switch style {
	case SquareCap:
		ext := tan.Mul(ctx.halfWidth)
		out = connect(out, from, from.Translate(ext))
		out = connect(out, from.Translate(ext), to.Translate(ext))
		return connect(out, to.Translate(ext), to)
	case RoundCap:
		return ctx.arc(out, p, from, to, math.Pi)
	default:
		return connect(out, from, to)
	}
}
