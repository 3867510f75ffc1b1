package pathfx

// Effect is a path effect that replaces one contour by zero or more contours.
// [Noodle], [Pattern] and [Simplify] are the implementations. Noodle turns a
// closed contour into two.
//
// Apply must not modify its argument, and must not retain it or return
// contours sharing memory with it.
type Effect interface {
	// Name returns the name used to select the effect, such as "noodle".
	Name() string
	Apply(c Contour) (EffectResult, error)
}

var (
	_ Effect = Noodle{}
	_ Effect = Pattern{}
	_ Effect = Simplify{}
)

// EffectResult is the output of an effect for one contour.
type EffectResult struct {
	Contours []Contour
	// Warnings are recoverable precision problems, such as
	// ErrSubdivisionDepthExceeded. The contours are usable regardless.
	Warnings []error
}
