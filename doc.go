// Package pathfx applies path effects to the outline contours of font glyphs.
//
// Two effects are provided:
//
//   - [Noodle] turns a contour into a constant-width outline with caps and
//     joins, like a pen of fixed width drawn along it.
//   - [Pattern] places copies of a donor shape along a contour, optionally
//     stretched to fill the path or bent along it.
//
// [Simplify] cleans up the output of either by refitting smooth runs of
// segments with fewer cubics.
//
// All implement [Effect] and are applied to glyphs with [ProcessGlyph],
// [ReplaceContour] or, for many glyphs at once, [Batch].
//
// # Contours
//
// A [Contour] is a sequence of cubic Béziers ([CubicBez]), either [Open] or
// [Closed]. Lines are cubics whose handles sit on their anchors, which is how
// font editors store them; quadratics are raised to cubics by
// [ContourBuilder.QuadTo]. Contours are evaluated at a global parameter
// t ∈ [0, N] for N segments: the integer part selects the segment and the
// fraction is the parameter within it. Closed contours wrap t around.
//
// Glyph space is y-up, in font units. Outer contours wind counter-clockwise,
// and so does the output of the effects.
//
// # Arc length
//
// [ArcLengthTable] converts between global parameters and distances along a
// contour. Patterns use it to space their stamps evenly.
//
// # Offset curves
//
// The offset of a cubic Bézier is not itself a cubic. [Noodle] approximates
// it by fitting cubics to the exact offset and refining them until they are
// within tolerance, splitting at cusps of the offset. See
// [Parallel curves of cubic Béziers] for the underlying analysis.
//
// # Errors
//
// Failures are reported with the sentinels in errors.go, wrapped in [*Error]
// to identify the glyph, the contour and the parameter. Precision problems
// that don't invalidate the output are returned as warnings in
// [EffectResult]. Logging goes through [SetLogger] and is off by default.
//
// [Parallel curves of cubic Béziers]: https://raphlinus.github.io/curves/2022/09/09/parallel-beziers.html
package pathfx
