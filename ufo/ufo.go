// Package ufo reads and writes the glyphs of fonts in the Unified Font
// Object format, version 2 and 3.
//
// Only the default layer is used. Glyphs are read from and written to the
// .glif files named by the layer's contents.plist; everything else in the UFO
// is left alone.
package ufo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	cp "github.com/otiai10/copy"
	"honnef.co/go/pathfx"
)

var (
	// ErrInvalidUFO is returned for UFOs with missing or malformed property
	// lists.
	ErrInvalidUFO = errors.New("ufo: invalid UFO")
	// ErrInvalidGlif is returned for malformed outlines.
	ErrInvalidGlif = errors.New("ufo: invalid glif")
	// ErrGlyphNotFound is returned for glyph names not in the default layer.
	ErrGlyphNotFound = errors.New("ufo: glyph not found")
)

const defaultLayerName = "public.default"

// Font is an open UFO.
type Font struct {
	path     string
	layerDir string
	// contents maps glyph names to .glif file names.
	contents map[string]string
}

// Open opens the UFO directory at path and reads the glyph list of its
// default layer.
func Open(path string) (*Font, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidUFO, path)
	}
	layerDir, err := defaultLayer(path)
	if err != nil {
		return nil, err
	}
	var contents map[string]string
	if err := readPlist(filepath.Join(path, layerDir, "contents.plist"), &contents); err != nil {
		return nil, err
	}
	f := &Font{path: path, layerDir: layerDir, contents: contents}
	pathfx.Logger().Debug("UFO opened", "path", path, "layer", layerDir, "glyphs", len(f.contents))
	return f, nil
}

// defaultLayer returns the directory of the default layer. UFO 2 fonts
// without layercontents.plist use "glyphs".
func defaultLayer(path string) (string, error) {
	var layers [][]string
	err := readPlist(filepath.Join(path, "layercontents.plist"), &layers)
	if errors.Is(err, fs.ErrNotExist) {
		return "glyphs", nil
	}
	if err != nil {
		return "", err
	}
	if len(layers) == 0 {
		return "", fmt.Errorf("%w: layercontents.plist has no layers", ErrInvalidUFO)
	}
	for i, l := range layers {
		if len(l) != 2 {
			return "", fmt.Errorf("%w: layercontents.plist: malformed layer %d", ErrInvalidUFO, i)
		}
	}
	for _, l := range layers {
		if l[1] == "glyphs" || l[0] == defaultLayerName {
			return l[1], nil
		}
	}
	return layers[0][1], nil
}

// Path returns the directory of the UFO.
func (f *Font) Path() string { return f.path }

// GlyphNames returns the names of the glyphs in the default layer, sorted.
func (f *Font) GlyphNames() []string {
	names := make([]string, 0, len(f.contents))
	for name := range f.contents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasGlyph reports whether the default layer contains the named glyph.
func (f *Font) HasGlyph(name string) bool {
	_, ok := f.contents[name]
	return ok
}

func (f *Font) glifPath(name string) (string, error) {
	file, ok := f.contents[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrGlyphNotFound, name)
	}
	return filepath.Join(f.path, f.layerDir, file), nil
}

// ReadGlif reads the named glyph.
func (f *Font) ReadGlif(name string) (*Glif, error) {
	path, err := f.glifPath(name)
	if err != nil {
		return nil, err
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	g, err := ParseGlif(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadGlyph reads the named glyph and converts it to the glyph model.
func (f *Font) ReadGlyph(name string) (pathfx.Glyph, error) {
	g, err := f.ReadGlif(name)
	if err != nil {
		return pathfx.Glyph{}, err
	}
	return g.Glyph()
}

// WriteGlif replaces the .glif file of g, which must already be in the
// layer.
func (f *Font) WriteGlif(g *Glif) (err error) {
	path, err := f.glifPath(g.Name)
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = g.WriteTo(w)
	return err
}

// Copy copies the UFO at src to dst, which must not exist yet, and opens the
// copy.
func Copy(src, dst string) (*Font, error) {
	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("ufo: %s already exists", dst)
	}
	if err := cp.Copy(src, dst); err != nil {
		return nil, fmt.Errorf("ufo: copying %s: %w", src, err)
	}
	return Open(dst)
}
