package pathfx

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch applies an effect to many glyphs in parallel.
type Batch struct {
	Effect Effect
	// Selector chooses the contours to process; nil selects open contours.
	Selector Selector
	// Workers limits the number of glyphs processed at once. Zero or less
	// uses GOMAXPROCS.
	Workers int
	// FailFast stops at the first glyph with an error. Otherwise every glyph
	// is processed and all errors are reported.
	FailFast bool
}

// GlyphResult is the outcome for one glyph of a batch.
type GlyphResult struct {
	// Glyph is the processed glyph. Contours the effect failed on are kept
	// unchanged. It is the zero Glyph for glyphs skipped after a failure in
	// fail-fast mode.
	Glyph    Glyph
	Warnings []error
	Err      error
}

// Run processes glyphs and returns one result per glyph, in input order
// regardless of completion order. Every task works on its own copy of its
// glyph.
//
// Without FailFast, the returned error joins the errors of all glyphs in input
// order. With FailFast, it is the first error encountered, and glyphs not yet
// started are skipped.
func (b Batch) Run(ctx context.Context, glyphs []Glyph) ([]GlyphResult, error) {
	if b.Effect == nil {
		return nil, paramError("effect", "no effect")
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := Logger().With("effect", b.Effect.Name())
	log.Info("batch started", "glyphs", len(glyphs), "workers", workers)

	results := make([]GlyphResult, len(glyphs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range glyphs {
		glyph := glyphs[i].Clone()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			out, warnings, err := ProcessGlyph(glyph, b.Effect, b.Selector)
			results[i] = GlyphResult{Glyph: out, Warnings: warnings, Err: err}
			if err != nil && b.FailFast {
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	if b.FailFast {
		if err != nil {
			log.Info("batch stopped", "err", err)
		}
		return results, err
	}
	if err != nil {
		// Only cancellation of ctx gets here.
		return results, err
	}
	errs := make([]error, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	log.Info("batch finished", "glyphs", len(glyphs), "failed", len(errs))
	return results, errors.Join(errs...)
}
