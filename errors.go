package pathfx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDegenerateInput is returned for contours of zero length or a single
	// point.
	ErrDegenerateInput = errors.New("pathfx: degenerate input contour")
	// ErrInvalidParameter is returned for non-positive widths or spacings,
	// unknown cap and join styles, and out of range indices.
	ErrInvalidParameter = errors.New("pathfx: invalid parameter")
	// ErrInvalidDonor is returned when a pattern donor is missing or has open
	// contours.
	ErrInvalidDonor = errors.New("pathfx: invalid pattern donor")
	// ErrDegenerateTangent is returned by [Contour.Tangent] where the
	// direction is undefined. The effects recover from it with a secant and
	// never surface it.
	ErrDegenerateTangent = errors.New("pathfx: degenerate tangent")
	// ErrSubdivisionDepthExceeded reports that adaptive subdivision hit its
	// depth cap. The current approximation is accepted, so it only ever
	// appears as a warning.
	ErrSubdivisionDepthExceeded = errors.New("pathfx: subdivision depth exceeded")
	// ErrOutOfRange is returned by [ArcLengthTable.ParamAtLength] for lengths
	// outside [0, Length()].
	ErrOutOfRange = errors.New("pathfx: arc length out of range")
)

// Error adds the originating glyph, contour and parameter to one of the
// sentinel errors. Use errors.Is to test for the sentinel.
type Error struct {
	// Glyph is the name of the glyph, if known.
	Glyph string
	// Contour is the index of the contour within the glyph, or -1.
	Contour int
	// Param names the offending parameter, if any.
	Param string
	Err   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Glyph != "" {
		fmt.Fprintf(&sb, "glyph %q: ", e.Glyph)
	}
	if e.Contour >= 0 {
		fmt.Fprintf(&sb, "contour %d: ", e.Contour)
	}
	if e.Param != "" {
		fmt.Fprintf(&sb, "%s: ", e.Param)
	}
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// paramError returns an ErrInvalidParameter naming param.
func paramError(param string, format string, args ...any) error {
	return &Error{
		Contour: -1,
		Param:   param,
		Err:     fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...)),
	}
}

// tagError attaches glyph and contour identity to err. Context already
// present on an *Error is kept.
func tagError(err error, glyph string, contour int) error {
	var e *Error
	if errors.As(err, &e) {
		out := *e
		if out.Glyph == "" {
			out.Glyph = glyph
		}
		if out.Contour < 0 {
			out.Contour = contour
		}
		return &out
	}
	return &Error{Glyph: glyph, Contour: contour, Err: err}
}
