package pathfx

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// DefaultTolerance is the default geometric tolerance of the engine, in font
// units. At typical glyph sizes of 1000 units per em it is far below a pixel.
const DefaultTolerance = 0.01

// ArcLengthOptions controls the density of an [ArcLengthTable]. Zero fields
// take the values of [DefaultArcLengthOptions].
type ArcLengthOptions struct {
	// Tolerance bounds both the flatness of every leaf and the error of
	// interpolating length linearly within it.
	Tolerance float64
	// MinDepth is the number of times every segment is halved regardless of
	// its flatness.
	MinDepth int
	// MaxDepth caps the recursion. Leaves at the cap are accepted with a
	// warning.
	MaxDepth int
}

var DefaultArcLengthOptions = ArcLengthOptions{
	Tolerance: DefaultTolerance,
	MinDepth:  2,
	MaxDepth:  16,
}

func (opts ArcLengthOptions) withDefaults() ArcLengthOptions {
	if opts.Tolerance <= 0 || math.IsNaN(opts.Tolerance) {
		opts.Tolerance = DefaultArcLengthOptions.Tolerance
	}
	if opts.MinDepth <= 0 {
		opts.MinDepth = DefaultArcLengthOptions.MinDepth
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultArcLengthOptions.MaxDepth
	}
	opts.MinDepth = min(opts.MinDepth, opts.MaxDepth)
	return opts
}

// ArcSample is one entry of an [ArcLengthTable]: the global parameter T of a
// contour and the arc length S from the start of the contour to it.
type ArcSample struct {
	T float64
	S float64
}

// ArcLengthTable converts between global contour parameters and arc lengths.
// It is built once per contour and never modified afterwards, so it is safe
// for concurrent reads.
type ArcLengthTable struct {
	kind     ContourKind
	n        int
	samples  []ArcSample
	warnings []error
}

// NewArcLengthTable builds the table for c by adaptive subdivision of every
// segment. A segment is halved until it is at least MinDepth deep, its control
// polygon deviates from its chord by at most the tolerance and both halves
// have equal length within the tolerance. Leaf lengths come from Gauss-Legendre
// quadrature.
func NewArcLengthTable(c Contour, opts ArcLengthOptions) (*ArcLengthTable, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	tbl := &ArcLengthTable{
		kind:    c.Kind,
		n:       len(c.Segments),
		samples: make([]ArcSample, 1, len(c.Segments)*(1<<opts.MinDepth)+1),
	}
	b := tableBuilder{tbl: tbl, opts: opts, accuracy: opts.Tolerance * 1e-3}
	for i, seg := range c.Segments {
		b.subdivide(seg, float64(i), float64(i+1), 0, seg.Arclen(b.accuracy))
	}
	if b.capped > 0 {
		tbl.warnings = append(tbl.warnings, fmt.Errorf("%w: %d arc length leaves at depth %d",
			ErrSubdivisionDepthExceeded, b.capped, opts.MaxDepth))
	}
	if tbl.Length() <= continuityEpsilon {
		return nil, fmt.Errorf("%w: contour has zero length", ErrDegenerateInput)
	}
	return tbl, nil
}

type tableBuilder struct {
	tbl      *ArcLengthTable
	opts     ArcLengthOptions
	accuracy float64
	capped   int
}

func (b *tableBuilder) subdivide(seg CubicBez, t0, t1 float64, depth int, length float64) {
	left, right := seg.Subdivide()
	ll := left.Arclen(b.accuracy)
	rl := right.Arclen(b.accuracy)
	// Interpolating linearly, the midpoint is off by half the difference of
	// the halves.
	done := seg.Flatness() <= b.opts.Tolerance && math.Abs(ll-rl) <= 2*b.opts.Tolerance
	if depth >= b.opts.MinDepth && (done || depth >= b.opts.MaxDepth) {
		if !done {
			b.capped++
		}
		last := b.tbl.samples[len(b.tbl.samples)-1]
		b.tbl.samples = append(b.tbl.samples, ArcSample{T: t1, S: last.S + length})
		return
	}
	mid := 0.5 * (t0 + t1)
	b.subdivide(left, t0, mid, depth+1, ll)
	b.subdivide(right, mid, t1, depth+1, rl)
}

// Length returns the total arc length of the contour.
func (tbl *ArcLengthTable) Length() float64 {
	return tbl.samples[len(tbl.samples)-1].S
}

// Samples returns a copy of the table's samples. T and S are both strictly
// increasing, except that S stays constant across leaves of zero length.
func (tbl *ArcLengthTable) Samples() []ArcSample {
	return slices.Clone(tbl.samples)
}

// Warnings returns the precision warnings recorded while building the table.
func (tbl *ArcLengthTable) Warnings() []error {
	return slices.Clone(tbl.warnings)
}

// LengthAtParam returns the arc length from the start of the contour to global
// parameter t. Closed contours wrap t into [0, Len()]; open contours clamp it.
// NaN is treated as 0.
func (tbl *ArcLengthTable) LengthAtParam(t float64) float64 {
	n := float64(tbl.n)
	if tbl.kind == Closed && (t < 0 || t > n) {
		t = math.Mod(t, n)
		if t < 0 {
			t += n
		}
	}
	if math.IsNaN(t) {
		// NaN, or infinite t on a closed contour.
		t = 0
	}
	t = min(max(t, 0), n)
	i, found := slices.BinarySearchFunc(tbl.samples, t, func(a ArcSample, t float64) int {
		return cmp.Compare(a.T, t)
	})
	if found {
		return tbl.samples[i].S
	}
	a, b := tbl.samples[i-1], tbl.samples[i]
	return a.S + (b.S-a.S)*(t-a.T)/(b.T-a.T)
}

// ParamAtLength returns the global parameter at arc length s. It fails with
// ErrOutOfRange unless 0 ≤ s ≤ Length().
func (tbl *ArcLengthTable) ParamAtLength(s float64) (float64, error) {
	if !(s >= 0 && s <= tbl.Length()) {
		return 0, fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfRange, s, tbl.Length())
	}
	return tbl.paramAtLength(s), nil
}

// ParamAtLengthClamped is like ParamAtLength but clamps s to [0, Length()].
func (tbl *ArcLengthTable) ParamAtLengthClamped(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return tbl.paramAtLength(min(max(s, 0), tbl.Length()))
}

func (tbl *ArcLengthTable) paramAtLength(s float64) float64 {
	// Find the first sample at or past s. Ties resolve to the earliest sample
	// so that zero-length leaves map to their start.
	i, found := slices.BinarySearchFunc(tbl.samples, s, func(a ArcSample, s float64) int {
		return cmp.Compare(a.S, s)
	})
	if found {
		return tbl.samples[i].T
	}
	a, b := tbl.samples[i-1], tbl.samples[i]
	return a.T + (b.T-a.T)*(s-a.S)/(b.S-a.S)
}
