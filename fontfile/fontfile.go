// Package fontfile loads glyph outlines from OpenType and TrueType fonts, for
// use as pattern donors.
//
// Outlines are returned in font units with the y axis pointing up, the
// coordinate system of UFO sources.
package fontfile

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"honnef.co/go/pathfx"
)

var (
	// ErrGlyphNotFound is returned for glyph names and runes the font has no
	// glyph for.
	ErrGlyphNotFound = errors.New("fontfile: glyph not found")
	// ErrNoGlyphNames is returned by name lookups in fonts without a post
	// table.
	ErrNoGlyphNames = errors.New("fontfile: font has no glyph names")
)

// Font is a parsed font. It is safe for concurrent use.
type Font struct {
	font *sfnt.Font

	mu     sync.Mutex
	buffer sfnt.Buffer
	names  map[string]sfnt.GlyphIndex
}

// Parse parses an OpenType or TrueType font. Only the first font of a
// collection is used.
func Parse(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fontfile: %w", err)
	}
	pathfx.Logger().Debug("font parsed", "glyphs", f.NumGlyphs(), "upem", f.UnitsPerEm())
	return &Font{font: f}, nil
}

// Open reads and parses the font file at path.
func Open(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fontfile: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return f, nil
}

// UnitsPerEm returns the size of the em square in font units.
func (f *Font) UnitsPerEm() int { return int(f.font.UnitsPerEm()) }

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.font.NumGlyphs() }

// ppem is the scale at which sfnt reports raw 26.6 values equal to font
// units.
func (f *Font) ppem() fixed.Int26_6 { return fixed.Int26_6(f.font.UnitsPerEm()) }

// GlyphIndex returns the glyph index of the named glyph.
func (f *Font) GlyphIndex(name string) (sfnt.GlyphIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.names == nil {
		if err := f.loadNames(); err != nil {
			return 0, err
		}
	}
	x, ok := f.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrGlyphNotFound, name)
	}
	return x, nil
}

func (f *Font) loadNames() error {
	n := f.font.NumGlyphs()
	names := make(map[string]sfnt.GlyphIndex, n)
	for i := range n {
		x := sfnt.GlyphIndex(i)
		name, err := f.font.GlyphName(&f.buffer, x)
		if err != nil {
			return fmt.Errorf("fontfile: glyph %d: %w", i, err)
		}
		if name == "" {
			continue
		}
		if _, ok := names[name]; !ok {
			names[name] = x
		}
	}
	if len(names) == 0 {
		// No post table, or a version without names.
		return ErrNoGlyphNames
	}
	f.names = names
	return nil
}

// RuneIndex returns the glyph index of the glyph the cmap maps r to.
func (f *Font) RuneIndex(r rune) (sfnt.GlyphIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, err := f.font.GlyphIndex(&f.buffer, r)
	if err != nil {
		return 0, fmt.Errorf("fontfile: %w", err)
	}
	if x == 0 {
		return 0, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}
	return x, nil
}

// Contours returns the outline of the glyph at index x as closed contours.
// Glyphs without outlines, like the space, have no contours.
func (f *Font) Contours(x sfnt.GlyphIndex) ([]pathfx.Contour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	segs, err := f.font.LoadGlyph(&f.buffer, x, f.ppem(), nil)
	if err != nil {
		return nil, fmt.Errorf("fontfile: glyph %d: %w", x, err)
	}
	return contours(segs), nil
}

// Advance returns the advance width of the glyph at index x in font units.
func (f *Font) Advance(x sfnt.GlyphIndex) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	adv, err := f.font.GlyphAdvance(&f.buffer, x, f.ppem(), font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("fontfile: glyph %d: %w", x, err)
	}
	return float64(adv), nil
}

// Glyph returns the named glyph in the glyph model. Its name is the one
// asked for and it carries no unicodes.
func (f *Font) Glyph(name string) (pathfx.Glyph, error) {
	x, err := f.GlyphIndex(name)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	return f.glyph(name, x)
}

// RuneGlyph returns the glyph of r in the glyph model, named after the font's
// glyph name if it has one.
func (f *Font) RuneGlyph(r rune) (pathfx.Glyph, error) {
	x, err := f.RuneIndex(r)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	f.mu.Lock()
	name, err := f.font.GlyphName(&f.buffer, x)
	f.mu.Unlock()
	if err != nil || name == "" {
		name = fmt.Sprintf("glyph%05d", x)
	}
	g, err := f.glyph(name, x)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	g.Unicodes = []rune{r}
	return g, nil
}

func (f *Font) glyph(name string, x sfnt.GlyphIndex) (pathfx.Glyph, error) {
	cs, err := f.Contours(x)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	adv, err := f.Advance(x)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	return pathfx.Glyph{Name: name, Advance: adv, Contours: cs}, nil
}

// pt converts a point of a glyph loaded at ppem = units per em. sfnt's y axis
// points down.
func pt(p fixed.Point26_6) pathfx.Point {
	return pathfx.Pt(float64(p.X), -float64(p.Y))
}

// contours splits sfnt segments into closed contours at each MoveTo.
func contours(segs sfnt.Segments) []pathfx.Contour {
	var (
		out []pathfx.Contour
		b   pathfx.ContourBuilder
	)
	flush := func() {
		if !b.Empty() {
			out = append(out, b.Close())
		}
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			b.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			b.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			b.QuadTo(pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			b.CubicTo(pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	flush()
	return out
}
