package pathfx

import (
	"errors"
	"fmt"
	"slices"
)

// Anchor is a named point of a glyph, used for mark attachment.
type Anchor struct {
	Name string
	Pt   Point
}

// Glyph is the in-memory glyph model the effects operate on. Adapters fill it
// from font sources and write it back.
type Glyph struct {
	Name     string
	Advance  float64
	Unicodes []rune
	Anchors  []Anchor
	Contours []Contour
}

// Clone returns a deep copy of g.
func (g Glyph) Clone() Glyph {
	out := g
	out.Unicodes = slices.Clone(g.Unicodes)
	out.Anchors = slices.Clone(g.Anchors)
	out.Contours = make([]Contour, len(g.Contours))
	for i, c := range g.Contours {
		out.Contours[i] = c.Clone()
	}
	if g.Contours == nil {
		out.Contours = nil
	}
	return out
}

// ReplaceContour returns a copy of g in which the contour at index is
// replaced by the contours of res, which may be none or several: a noodled
// closed contour is two contours, the outer and inner rails of an annulus.
// All other contours and the metadata are copied, so the result shares no
// memory with g.
func ReplaceContour(g Glyph, index int, res EffectResult) (Glyph, error) {
	if index < 0 || index >= len(g.Contours) {
		return Glyph{}, &Error{
			Glyph:   g.Name,
			Contour: index,
			Param:   "index",
			Err:     fmt.Errorf("%w: contour index %d out of range [0, %d)", ErrInvalidParameter, index, len(g.Contours)),
		}
	}
	out := g
	out.Unicodes = slices.Clone(g.Unicodes)
	out.Anchors = slices.Clone(g.Anchors)
	out.Contours = make([]Contour, 0, len(g.Contours)-1+len(res.Contours))
	for _, c := range g.Contours[:index] {
		out.Contours = append(out.Contours, c.Clone())
	}
	for _, c := range res.Contours {
		out.Contours = append(out.Contours, c.Clone())
	}
	for _, c := range g.Contours[index+1:] {
		out.Contours = append(out.Contours, c.Clone())
	}
	return out, nil
}

// A Selector decides whether an effect applies to the contour at index i.
type Selector func(i int, c Contour) bool

// OpenContours selects open contours. It is the default selector.
func OpenContours(_ int, c Contour) bool { return c.Kind == Open }

// AllContours selects every contour.
func AllContours(int, Contour) bool { return true }

// ContourIndices selects the contours at the given indices.
func ContourIndices(indices ...int) Selector {
	return func(i int, _ Contour) bool {
		return slices.Contains(indices, i)
	}
}

// ProcessGlyph applies fx to every contour of g chosen by sel, which defaults
// to OpenContours. Each chosen contour is replaced as by [ReplaceContour], so
// the glyph may gain contours. A contour the effect fails on is kept unchanged and the
// failure is reported, tagged with the glyph name and the contour index, in
// the joined error. The returned glyph is always valid.
func ProcessGlyph(g Glyph, fx Effect, sel Selector) (Glyph, []error, error) {
	if sel == nil {
		sel = OpenContours
	}
	log := Logger().With("glyph", g.Name, "effect", fx.Name())

	out := g.Clone()
	out.Contours = out.Contours[:0:0]
	var (
		errs     []error
		warnings []error
	)
	for i, c := range g.Contours {
		if !sel(i, c) {
			out.Contours = append(out.Contours, c.Clone())
			continue
		}
		res, err := fx.Apply(c)
		if err != nil {
			err = tagError(err, g.Name, i)
			log.Debug("effect failed, keeping contour", "contour", i, "err", err)
			errs = append(errs, err)
			out.Contours = append(out.Contours, c.Clone())
			continue
		}
		for _, w := range res.Warnings {
			w = tagError(w, g.Name, i)
			log.Warn("precision warning", "contour", i, "warning", w)
			warnings = append(warnings, w)
		}
		log.Debug("contour processed", "contour", i, "kind", c.Kind, "out", len(res.Contours))
		out.Contours = append(out.Contours, res.Contours...)
	}
	log.Debug("glyph processed", "in", len(g.Contours), "out", len(out.Contours), "errors", len(errs))
	return out, warnings, errors.Join(errs...)
}
