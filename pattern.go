package pathfx

import (
	"fmt"
	"math"
	"strings"
)

// Copies selects how many stamps a pattern places.
type Copies int

const (
	// Repeated stamps fill the target at the requested spacing.
	Repeated Copies = iota
	// Single places one stamp in the middle of the target.
	Single
)

func (c Copies) String() string {
	switch c {
	case Repeated:
		return "repeated"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("Copies(%d)", int(c))
	}
}

// ParseCopies parses "single" or "repeated".
func ParseCopies(s string) (Copies, error) {
	switch strings.ToLower(s) {
	case "repeated":
		return Repeated, nil
	case "single":
		return Single, nil
	default:
		return 0, paramError("repeat-mode", "unknown mode %q", s)
	}
}

func (c Copies) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Copies) UnmarshalText(b []byte) error {
	v, err := ParseCopies(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// maxSubdivide caps Pattern.Subdivide.
const maxSubdivide = 8

// Pattern places copies of a donor shape along a target contour.
//
// The instance count is n = max(1, round(L/s)) for a target of length L and
// spacing s, rounding halves away from zero, and the stamps are spread
// evenly at s' = L/n with centers at arc lengths 0, s', 2s', …. On closed
// targets this leaves no gap at the seam.
type Pattern struct {
	// Donor is the stamp. All contours must be closed.
	Donor []Contour
	// Spacing is the requested center-to-center arc length between stamps.
	Spacing float64
	// Stretch scales every stamp along the path to fill its slot exactly,
	// replacing ScaleX.
	Stretch bool
	// Copies selects a single stamp or repeated stamps.
	Copies Copies
	// EndAnchor pins the first and last stamp of an open target to its
	// endpoints.
	EndAnchor bool
	// Vertical rotates the donor by 90° clockwise first, for donors drawn
	// upright.
	Vertical bool
	// Center moves the center of the donor's bounding box to the path.
	// Otherwise the donor's origin is placed on the path.
	Center bool
	// Scale of the donor along and across the path.
	ScaleX, ScaleY float64
	// Offsets of the stamps along the normal and the tangent of the path.
	NormalOffset, TangentOffset float64
	// Warp bends each stamp along the path instead of placing it rigidly.
	Warp bool
	// Subdivide halves every donor segment this many times before warping.
	Subdivide int
	// Simplify refits every stamp with DefaultSimplify, merging the segments
	// that warping and subdivision leave behind.
	Simplify bool
	// Tolerance of the arc length table.
	Tolerance float64
}

var DefaultPattern = Pattern{
	Copies:    Repeated,
	Center:    true,
	ScaleX:    1,
	ScaleY:    1,
	Tolerance: DefaultTolerance,
}

func (p Pattern) WithDonor(donor ...Contour) Pattern  { p.Donor = donor; return p }
func (p Pattern) WithSpacing(s float64) Pattern        { p.Spacing = s; return p }
func (p Pattern) WithStretch(stretch bool) Pattern     { p.Stretch = stretch; return p }
func (p Pattern) WithCopies(c Copies) Pattern          { p.Copies = c; return p }
func (p Pattern) WithEndAnchor(anchor bool) Pattern    { p.EndAnchor = anchor; return p }
func (p Pattern) WithVertical(vertical bool) Pattern   { p.Vertical = vertical; return p }
func (p Pattern) WithCenter(center bool) Pattern       { p.Center = center; return p }
func (p Pattern) WithScale(sx, sy float64) Pattern     { p.ScaleX, p.ScaleY = sx, sy; return p }
func (p Pattern) WithOffsets(normal, tangent float64) Pattern {
	p.NormalOffset, p.TangentOffset = normal, tangent
	return p
}
func (p Pattern) WithWarp(warp bool, subdivide int) Pattern {
	p.Warp, p.Subdivide = warp, subdivide
	return p
}
func (p Pattern) WithSimplify(simplify bool) Pattern { p.Simplify = simplify; return p }
func (p Pattern) WithTolerance(tol float64) Pattern   { p.Tolerance = tol; return p }

func (p Pattern) Name() string { return "pattern" }

// Validate checks the parameters and the donor of the pattern.
func (p Pattern) Validate() error {
	if len(p.Donor) == 0 {
		return &Error{Contour: -1, Param: "donor", Err: fmt.Errorf("%w: no donor contours", ErrInvalidDonor)}
	}
	for i, c := range p.Donor {
		if c.Kind != Closed {
			return &Error{Contour: -1, Param: "donor", Err: fmt.Errorf("%w: donor contour %d is open", ErrInvalidDonor, i)}
		}
		if err := c.Validate(); err != nil {
			return &Error{Contour: -1, Param: "donor", Err: fmt.Errorf("%w: donor contour %d: %w", ErrInvalidDonor, i, err)}
		}
	}
	switch {
	case p.Copies == Repeated && (!(p.Spacing > 0) || math.IsInf(p.Spacing, 0)):
		return paramError("spacing", "must be positive, got %g", p.Spacing)
	case p.Copies != Repeated && p.Copies != Single:
		return paramError("repeat-mode", "unknown mode %d", int(p.Copies))
	case p.ScaleX == 0 || !isFinite(p.ScaleX):
		return paramError("sx", "must be finite and non-zero, got %g", p.ScaleX)
	case p.ScaleY == 0 || !isFinite(p.ScaleY):
		return paramError("sy", "must be finite and non-zero, got %g", p.ScaleY)
	case !isFinite(p.NormalOffset):
		return paramError("noffset", "must be finite, got %g", p.NormalOffset)
	case !isFinite(p.TangentOffset):
		return paramError("toffset", "must be finite, got %g", p.TangentOffset)
	case p.Subdivide < 0 || p.Subdivide > maxSubdivide:
		return paramError("subdivide", "must be in [0, %d], got %d", maxSubdivide, p.Subdivide)
	case !(p.Tolerance > 0) || math.IsInf(p.Tolerance, 0):
		return paramError("tolerance", "must be positive, got %g", p.Tolerance)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Placement locates one stamp on the target.
type Placement struct {
	// Center is the arc length of the stamp's center along the target.
	Center float64
	// Param is the global contour parameter at Center.
	Param float64
	// Position is the point of the target at Center.
	Position Point
	// Angle is the direction of the target's tangent at Center.
	Angle float64
	// Offset is the stamp's displacement in the path's frame: X along the
	// tangent, Y along the left normal.
	Offset Vec2
	// Scale of the stamp along and across the path.
	ScaleX, ScaleY float64
}

// Affine returns the transform from donor space, with the donor's anchor at
// the origin and its length along the x axis, to glyph space.
func (pl Placement) Affine() Affine {
	return Translate(Vec2(pl.Position)).
		Mul(Rotate(pl.Angle)).
		Mul(Translate(pl.Offset)).
		Mul(Scale(pl.ScaleX, pl.ScaleY))
}

// patternCtx holds what is computed once per target.
type patternCtx struct {
	target Contour
	tbl    *ArcLengthTable
	// prep maps the donor into its stamp frame.
	prep   Affine
	extent float64
}

func (p Pattern) prepare(target Contour) (*patternCtx, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tbl, err := NewArcLengthTable(target, ArcLengthOptions{Tolerance: p.Tolerance})
	if err != nil {
		return nil, err
	}
	prep := Identity
	bbox := p.Donor[0].BoundingBox()
	for _, c := range p.Donor[1:] {
		bbox = bbox.Union(c.BoundingBox())
	}
	if p.Center {
		prep = Translate(Vec2(bbox.Center()).Negate())
	}
	if p.Vertical {
		prep = prep.ThenRotate(-math.Pi / 2)
	}
	extent := bbox.Width()
	if p.Vertical {
		extent = bbox.Height()
	}
	if p.Stretch && extent <= continuityEpsilon {
		return nil, &Error{Contour: -1, Param: "donor", Err: fmt.Errorf("%w: donor has no extent along the path", ErrInvalidDonor)}
	}
	return &patternCtx{target: target, tbl: tbl, prep: prep, extent: extent}, nil
}

// Placements computes where the stamps go on target.
func (p Pattern) Placements(target Contour) ([]Placement, error) {
	ctx, err := p.prepare(target)
	if err != nil {
		return nil, err
	}
	return p.placements(ctx)
}

func (p Pattern) placements(ctx *patternCtx) ([]Placement, error) {
	L := ctx.tbl.Length()
	var centers []float64
	var slot float64
	switch {
	case p.Copies == Single:
		slot = L
		centers = []float64{0.5 * L}
	case p.EndAnchor && ctx.target.Kind == Open:
		n := max(2, int(math.Round(L/p.Spacing)))
		slot = L / float64(n-1)
		centers = make([]float64, n)
		for i := range centers {
			centers[i] = slot * float64(i)
		}
		centers[n-1] = L
	default:
		n := max(1, int(math.Round(L/p.Spacing)))
		slot = L / float64(n)
		centers = make([]float64, n)
		for i := range centers {
			centers[i] = slot * float64(i)
		}
	}

	sx := p.ScaleX
	if p.Stretch {
		sx = slot / ctx.extent
	}
	out := make([]Placement, len(centers))
	for i, s := range centers {
		t := ctx.tbl.ParamAtLengthClamped(s)
		tan, ok := ctx.target.direction(t)
		if !ok {
			return nil, fmt.Errorf("%w: no direction at arc length %g", ErrDegenerateInput, s)
		}
		out[i] = Placement{
			Center:   s,
			Param:    t,
			Position: ctx.target.Evaluate(t),
			Angle:    tan.Angle(),
			Offset:   Vec2{p.TangentOffset, p.NormalOffset},
			ScaleX:   sx,
			ScaleY:   p.ScaleY,
		}
	}
	return out, nil
}

// Apply places the stamps along target. The result holds one copy of every
// donor contour per stamp, stamp by stamp.
func (p Pattern) Apply(target Contour) (EffectResult, error) {
	ctx, err := p.prepare(target)
	if err != nil {
		return EffectResult{}, err
	}
	placements, err := p.placements(ctx)
	if err != nil {
		return EffectResult{}, err
	}
	res := EffectResult{
		Contours: make([]Contour, 0, len(placements)*len(p.Donor)),
		Warnings: ctx.tbl.Warnings(),
	}
	for _, pl := range placements {
		if p.Warp {
			res.Contours = append(res.Contours, p.warp(ctx, pl)...)
			continue
		}
		aff := pl.Affine().Mul(ctx.prep)
		for _, c := range p.Donor {
			stamp := c.Transform(aff)
			if aff.Determinant() < 0 {
				// Keep the donor's winding direction.
				stamp = stamp.Reverse()
			}
			res.Contours = append(res.Contours, stamp)
		}
	}
	if p.Simplify {
		var capped int
		for i, c := range res.Contours {
			var n int
			res.Contours[i], n = DefaultSimplify.simplify(c)
			capped += n
		}
		if capped > 0 {
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: %d simplified pieces above accuracy %g",
				ErrSubdivisionDepthExceeded, capped, DefaultSimplify.Accuracy))
		}
	}
	return res, nil
}

// warp bends every donor contour along the target. A donor point at x along
// and y across the path lands at y along the normal of the target at arc
// length Center + x. Handles keep their direction relative to the path frame
// at their anchor, so smooth points stay smooth.
func (p Pattern) warp(ctx *patternCtx, pl Placement) []Contour {
	local := Translate(pl.Offset).Mul(Scale(pl.ScaleX, pl.ScaleY)).Mul(ctx.prep)
	mirrored := local.Determinant() < 0
	out := make([]Contour, 0, len(p.Donor))
	for _, c := range p.Donor {
		c = c.Transform(local)
		segs := subdivideSegments(c.Segments, p.Subdivide)
		warped := make([]CubicBez, len(segs))
		for i, seg := range segs {
			p0, f0 := ctx.frameAt(pl.Center, seg.P0)
			p3, f3 := ctx.frameAt(pl.Center, seg.P3)
			warped[i] = CubicBez{
				P0: p0,
				P1: p0.Translate(rotateVec(seg.P1.Sub(seg.P0), f0)),
				P2: p3.Translate(rotateVec(seg.P2.Sub(seg.P3), f3)),
				P3: p3,
			}
		}
		// Shared anchors are warped identically, so neighbours stay
		// connected.
		stamp := NewClosedContour(warped...)
		if mirrored {
			stamp = stamp.Reverse()
		}
		out = append(out, stamp)
	}
	return out
}

// frameAt maps a point of the stamp frame to glyph space and returns the unit
// tangent of the path there. Beyond the ends of an open target the path is
// extended along its end tangents; closed targets wrap.
func (ctx *patternCtx) frameAt(center float64, pt Point) (Point, Vec2) {
	L := ctx.tbl.Length()
	s := center + pt.X
	var overshoot float64
	switch {
	case ctx.target.Kind == Closed:
		s = math.Mod(s, L)
		if s < 0 {
			s += L
		}
	case s < 0:
		overshoot, s = s, 0
	case s > L:
		overshoot, s = s-L, L
	}
	t := ctx.tbl.ParamAtLengthClamped(s)
	tan, ok := ctx.target.direction(t)
	if !ok {
		tan = Vec2{1, 0}
	}
	base := ctx.target.Evaluate(t).Translate(tan.Mul(overshoot))
	return base.Translate(tan.Perp().Mul(pt.Y)), tan
}

// rotateVec rotates v from the x axis frame into the frame with x axis tan.
func rotateVec(v, tan Vec2) Vec2 {
	return tan.Mul(v.X).Add(tan.Perp().Mul(v.Y))
}

// subdivideSegments halves every segment n times.
func subdivideSegments(segs []CubicBez, n int) []CubicBez {
	for range n {
		next := make([]CubicBez, 0, 2*len(segs))
		for _, seg := range segs {
			a, b := seg.Subdivide()
			next = append(next, a, b)
		}
		segs = next
	}
	return segs
}
