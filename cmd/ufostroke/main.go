// Command ufostroke applies path effects to the glyphs of a UFO font.
//
//	ufostroke -i Font.ufo -o Stroked.ufo noodle -size 20 -capstart square
//	ufostroke -i Font.ufo pattern -p dot -spacing 10
//
// The noodle effect turns every open contour into an outline of constant
// width. The pattern effect places copies of a pattern glyph along it. Only
// glyphs with at least one open contour are rewritten, and every contour of
// such a glyph, open or closed, goes through the effect. Pass -all to
// rewrite the other glyphs as well.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"honnef.co/go/pathfx"
	"honnef.co/go/pathfx/fontfile"
	"honnef.co/go/pathfx/ufo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and returns the exit status.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cmd, cfg, err := loadConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "ufostroke:", err)
		return 2
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	pathfx.SetLogger(log)
	defer pathfx.SetLogger(nil)

	if err := stroke(ctx, cmd, cfg, log); err != nil {
		log.Error("ufostroke failed", "err", err)
		return 1
	}
	return 0
}

// stroke applies the effect of cmd to the UFO named by cfg.
func stroke(ctx context.Context, cmd string, cfg Config, log *slog.Logger) error {
	var (
		font *ufo.Font
		err  error
	)
	if cfg.Output != "" {
		log.Info("copying UFO", "from", cfg.Input, "to", cfg.Output)
		font, err = ufo.Copy(cfg.Input, cfg.Output)
	} else {
		font, err = ufo.Open(cfg.Input)
	}
	if err != nil {
		return err
	}

	var fx pathfx.Effect
	switch cmd {
	case "noodle":
		fx, err = noodleEffect(cfg.Noodle, log)
	case "pattern":
		fx, err = patternEffect(cfg.Pattern, font, log)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	var (
		glifs   []*ufo.Glif
		glyphs  []pathfx.Glyph
		skipped []error
	)
	for _, name := range font.GlyphNames() {
		g, err := font.ReadGlif(name)
		if err == nil && !cfg.AllGlyphs && !g.HasOpenContours() {
			continue
		}
		var glyph pathfx.Glyph
		if err == nil {
			glyph, err = g.Glyph()
		}
		if err != nil {
			if cfg.FailFast {
				return err
			}
			log.Warn("skipping glyph", "glyph", name, "err", err)
			skipped = append(skipped, err)
			continue
		}
		glifs = append(glifs, g)
		glyphs = append(glyphs, glyph)
	}
	log.Info("applying effect", "effect", fx.Name(), "glyphs", len(glyphs))

	batch := pathfx.Batch{
		Effect:   fx,
		Selector: pathfx.AllContours,
		Workers:  cfg.Workers,
		FailFast: cfg.FailFast,
	}
	results, runErr := batch.Run(ctx, glyphs)
	if runErr != nil && (cfg.FailFast || ctx.Err() != nil) {
		return runErr
	}
	// Contours the effect failed on are kept as they were, so every glyph
	// can still be written.
	for i, r := range results {
		if r.Err != nil {
			log.Warn("glyph partly processed", "glyph", r.Glyph.Name, "err", r.Err)
		}
		glifs[i].SetContours(r.Glyph.Contours)
		if err := font.WriteGlif(glifs[i]); err != nil {
			return err
		}
		log.Debug("glyph written", "glyph", r.Glyph.Name, "contours", len(r.Glyph.Contours))
	}
	return errors.Join(append(skipped, runErr)...)
}

func noodleEffect(c NoodleConfig, log *slog.Logger) (pathfx.Effect, error) {
	if c.Angle != 0 {
		log.Warn("noodle angle is not supported, ignoring it", "angle", c.Angle)
	}
	fx := pathfx.DefaultNoodle.
		WithWidth(2 * c.Size).
		WithStartCap(c.CapStart).
		WithEndCap(c.CapEnd).
		WithJoin(c.Join).
		WithMiterLimit(c.MiterLimit)
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return fx, nil
}

func patternEffect(c PatternConfig, font *ufo.Font, log *slog.Logger) (pathfx.Effect, error) {
	donor, err := loadDonor(c, font)
	if err != nil {
		return nil, err
	}
	if len(donor.Contours) == 0 {
		return nil, fmt.Errorf("pattern glyph %q has no contours", c.Glyph)
	}
	log.Info("pattern glyph loaded", "glyph", donor.Name, "contours", len(donor.Contours))

	// The copies are spaced by their extent along the path plus the padding.
	bbox := donor.Contours[0].BoundingBox()
	for _, dc := range donor.Contours[1:] {
		bbox = bbox.Union(dc.BoundingBox())
	}
	extent := bbox.Width()
	if c.Vertical {
		extent = bbox.Height()
	}
	spacing := extent*c.ScaleX + c.Spacing

	fx := pathfx.DefaultPattern.
		WithDonor(donor.Contours...).
		WithSpacing(spacing).
		WithStretch(c.Stretch).
		WithCopies(c.RepeatMode).
		WithEndAnchor(c.EndAnchor).
		WithVertical(c.Vertical).
		WithCenter(c.Center).
		WithScale(c.ScaleX, c.ScaleY).
		WithOffsets(c.NormalOffset, c.TangentOffset).
		WithWarp(c.Warp, c.Subdivide).
		WithSimplify(c.Simplify)
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return fx, nil
}

// loadDonor reads the pattern glyph from the font file, if one is given, or
// from the UFO.
func loadDonor(c PatternConfig, font *ufo.Font) (pathfx.Glyph, error) {
	if c.Font != "" {
		f, err := fontfile.Open(c.Font)
		if err != nil {
			return pathfx.Glyph{}, err
		}
		return f.Glyph(c.Glyph)
	}
	if !font.HasGlyph(c.Glyph) {
		return pathfx.Glyph{}, fmt.Errorf("glyph %q not found in font", c.Glyph)
	}
	return font.ReadGlyph(c.Glyph)
}
