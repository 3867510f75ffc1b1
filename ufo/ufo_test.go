package ufo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/pathfx"
)

const layerContents = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
  <array>
    <string>public.default</string>
    <string>glyphs</string>
  </array>
  <array>
    <string>public.background</string>
    <string>glyphs.public.background</string>
  </array>
</array>
</plist>
`

const contents = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>a</key>
  <string>a.glif</string>
  <key>dot</key>
  <string>dot.glif</string>
  <key>o</key>
  <string>o.glif</string>
</dict>
</plist>
`

// An open stroke with a line and a cubic, plus elements that must survive a
// rewrite.
const glifA = `<?xml version="1.0" encoding="UTF-8"?>
<glyph name="a" format="2">
  <advance width="500"/>
  <unicode hex="0061"/>
  <guideline x="10" y="20" angle="45"/>
  <anchor x="250" y="700" name="top"/>
  <outline>
    <contour>
      <point x="0" y="0" type="move"/>
      <point x="100" y="0" type="line"/>
      <point x="150" y="0"/>
      <point x="200" y="50"/>
      <point x="200" y="100" type="curve" smooth="yes"/>
    </contour>
    <component base="dot" xOffset="100"/>
  </outline>
  <lib>
    <dict>
      <key>com.example.note</key>
      <string>keep me</string>
    </dict>
  </lib>
</glyph>
`

// A closed TrueType circle of four quadratic runs without on-curve points.
const glifO = `<?xml version="1.0" encoding="UTF-8"?>
<glyph name="o" format="1">
  <advance width="600"/>
  <outline>
    <contour>
      <point x="100" y="0"/>
      <point x="100" y="100"/>
      <point x="0" y="100"/>
      <point x="0" y="0"/>
    </contour>
    <contour>
      <point x="50" y="50" type="move" name="center"/>
    </contour>
  </outline>
</glyph>
`

const glifDot = `<?xml version="1.0" encoding="UTF-8"?>
<glyph name="dot" format="2">
  <outline>
    <contour>
      <point x="-10" y="-10" type="line"/>
      <point x="10" y="-10" type="line"/>
      <point x="10" y="10" type="line"/>
      <point x="-10" y="10" type="line"/>
    </contour>
  </outline>
</glyph>
`

func writeTestUFO(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Test.ufo")
	files := map[string]string{
		"layercontents.plist":   layerContents,
		"glyphs/contents.plist": contents,
		"glyphs/a.glif":         glifA,
		"glyphs/o.glif":         glifO,
		"glyphs/dot.glif":       glifDot,
	}
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}
	return dir
}

func TestOpen(t *testing.T) {
	f, err := Open(writeTestUFO(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "dot", "o"}, f.GlyphNames())
	assert.True(t, f.HasGlyph("o"))
	assert.False(t, f.HasGlyph("b"))

	_, err = f.ReadGlif("b")
	assert.ErrorIs(t, err, ErrGlyphNotFound)
}

func TestOpenUFO2(t *testing.T) {
	dir := writeTestUFO(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "layercontents.plist")))
	f, err := Open(dir)
	require.NoError(t, err)
	assert.Len(t, f.GlyphNames(), 3)
}

func TestOpenInvalid(t *testing.T) {
	dir := writeTestUFO(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glyphs", "contents.plist"), []byte("<plist><array/></plist>"), 0o644))
	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrInvalidUFO)

	_, err = Open(filepath.Join(dir, "missing.ufo"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir = writeTestUFO(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layercontents.plist"),
		[]byte("<plist><array><array><string>public.default</string></array></array></plist>"), 0o644))
	_, err = Open(dir)
	assert.ErrorIs(t, err, ErrInvalidUFO)
}

func TestOpenLayerByName(t *testing.T) {
	dir := writeTestUFO(t)
	require.NoError(t, os.Rename(filepath.Join(dir, "glyphs"), filepath.Join(dir, "glyphs.default")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layercontents.plist"), []byte(`<plist><array>
  <array><string>sketch</string><string>glyphs.sketch</string></array>
  <array><string>public.default</string><string>glyphs.default</string></array>
</array></plist>`), 0o644))
	f, err := Open(dir)
	require.NoError(t, err)
	assert.Len(t, f.GlyphNames(), 3)
}

func TestReadGlyph(t *testing.T) {
	f, err := Open(writeTestUFO(t))
	require.NoError(t, err)

	a, err := f.ReadGlyph("a")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, 500.0, a.Advance)
	assert.Equal(t, []rune{'a'}, a.Unicodes)
	assert.Equal(t, []pathfx.Anchor{{Name: "top", Pt: pathfx.Pt(250, 700)}}, a.Anchors)
	require.Len(t, a.Contours, 1)
	c := a.Contours[0]
	assert.False(t, c.IsClosed())
	assert.Equal(t, []pathfx.CubicBez{
		pathfx.LineSeg(pathfx.Pt(0, 0), pathfx.Pt(100, 0)),
		{P0: pathfx.Pt(100, 0), P1: pathfx.Pt(150, 0), P2: pathfx.Pt(200, 50), P3: pathfx.Pt(200, 100)},
	}, c.Segments)

	o, err := f.ReadGlyph("o")
	require.NoError(t, err)
	require.Len(t, o.Contours, 1)
	// The single named point is a format 1 anchor.
	assert.Equal(t, []pathfx.Anchor{{Name: "center", Pt: pathfx.Pt(50, 50)}}, o.Anchors)
	c = o.Contours[0]
	assert.True(t, c.IsClosed())
	assert.Len(t, c.Segments, 4)
	require.NoError(t, c.Validate())
	// Implied on-curve points sit halfway between the control points.
	assert.Equal(t, pathfx.Pt(50, 0), c.Start())
	assert.Equal(t, pathfx.Pt(100, 50), c.Segments[0].P3)
}

func TestContourFromPointsErrors(t *testing.T) {
	_, err := contourFromPoints(nil)
	assert.ErrorIs(t, err, ErrInvalidGlif)

	_, err = contourFromPoints([]Point{
		{X: 0, Y: 0, Type: "move"},
		{X: 1, Y: 0, Type: "bogus"},
	})
	assert.ErrorIs(t, err, ErrInvalidGlif)

	_, err = contourFromPoints([]Point{
		{X: 0, Y: 0, Type: "move"},
		{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
		{X: 4, Y: 0, Type: "curve"},
	})
	assert.ErrorIs(t, err, ErrInvalidGlif)
}

func TestWriteGlifPreservesElements(t *testing.T) {
	f, err := Open(writeTestUFO(t))
	require.NoError(t, err)
	g, err := f.ReadGlif("a")
	require.NoError(t, err)
	assert.True(t, g.HasOpenContours())

	glyph, err := g.Glyph()
	require.NoError(t, err)
	res, err := pathfx.DefaultNoodle.WithCaps(pathfx.ButtCap).Apply(glyph.Contours[0])
	require.NoError(t, err)
	g.SetContours(res.Contours)
	require.NoError(t, f.WriteGlif(g))

	data, err := os.ReadFile(filepath.Join(f.Path(), "glyphs", "a.glif"))
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `<advance width="500"></advance>`)
	assert.Contains(t, s, `<unicode hex="0061"></unicode>`)
	assert.Contains(t, s, `<string>keep me</string>`)
	assert.Contains(t, s, `<guideline x="10" y="20" angle="45"></guideline>`)
	assert.Contains(t, s, `<component base="dot" xOffset="100"></component>`)
	assert.NotContains(t, s, `type="move"`)

	again, err := f.ReadGlyph("a")
	require.NoError(t, err)
	assert.False(t, again.Contours[0].Kind == pathfx.Open)
	assert.Len(t, again.Contours, 1)
	assert.InDelta(t, res.Contours[0].SignedArea(), again.Contours[0].SignedArea(), 1)
}

func TestStrayPointsSurviveRewrite(t *testing.T) {
	const src = `<?xml version="1.0" encoding="UTF-8"?>
<glyph name="a" format="2">
  <outline>
    <contour>
      <point x="0" y="0" type="move"/>
      <point x="100" y="0" type="line"/>
    </contour>
    <contour>
      <point x="50" y="50" type="move"/>
    </contour>
    <contour>
      <point x="10" y="10" type="move"/>
      <point x="20" y="20"/>
    </contour>
    <contour>
      <point x="70" y="70" type="line"/>
    </contour>
  </outline>
</glyph>
`
	g, err := ParseGlif(strings.NewReader(src))
	require.NoError(t, err)
	glyph, err := g.Glyph()
	require.NoError(t, err)
	// Contours without segments stay out of the glyph model.
	require.Len(t, glyph.Contours, 2)

	out, _, err := pathfx.ProcessGlyph(glyph, pathfx.DefaultNoodle, pathfx.AllContours)
	// The single point contour is degenerate and kept.
	assert.ErrorIs(t, err, pathfx.ErrDegenerateInput)
	require.Len(t, out.Contours, 2)
	out.Contours = append(out.Contours, pathfx.Contour{Kind: pathfx.Open})
	g.SetContours(out.Contours)

	var buf bytes.Buffer
	_, err = g.WriteTo(&buf)
	require.NoError(t, err)
	again, err := ParseGlif(&buf)
	require.NoError(t, err)
	require.Len(t, again.Outline.Contours, 4)
	assert.Equal(t, []Point{{X: 50, Y: 50, Type: "move"}}, again.Outline.Contours[0].Points)
	assert.Equal(t, []Point{{X: 10, Y: 10, Type: "move"}, {X: 20, Y: 20}}, again.Outline.Contours[1].Points)
	assert.True(t, again.Outline.Contours[2].Points[0].Type != "move")
	assert.Equal(t, []Point{{X: 70, Y: 70, Type: "line"}}, again.Outline.Contours[3].Points)
}

func TestPointsFromContour(t *testing.T) {
	var b pathfx.ContourBuilder
	c := b.MoveTo(pathfx.Pt(0, 0)).
		LineTo(pathfx.Pt(100, 0)).
		CubicTo(pathfx.Pt(150, 0), pathfx.Pt(200, 50), pathfx.Pt(200, 100)).
		Open()
	pts := pointsFromContour(c)
	assert.Equal(t, []Point{
		{X: 0, Y: 0, Type: "move"},
		{X: 100, Y: 0, Type: "line", Smooth: "yes"},
		{X: 150, Y: 0},
		{X: 200, Y: 50},
		{X: 200, Y: 100, Type: "curve"},
	}, pts)

	back, err := contourFromPoints(pts)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestCoordFormat(t *testing.T) {
	var buf bytes.Buffer
	g := &Glif{Name: "x", Format: "2", Anchors: []Anchor{{X: 1e7, Y: -0.00001, Name: "far"}, {X: 1.23456, Y: -2.5}}}
	_, err := g.WriteTo(&buf)
	require.NoError(t, err)
	s := buf.String()
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `x="10000000" y="0"`)
	assert.Contains(t, s, `x="1.235" y="-2.5"`)
}

func TestCopy(t *testing.T) {
	src := writeTestUFO(t)
	dst := filepath.Join(t.TempDir(), "Out.ufo")
	f, err := Copy(src, dst)
	require.NoError(t, err)
	assert.Equal(t, dst, f.Path())
	assert.Equal(t, []string{"a", "dot", "o"}, f.GlyphNames())

	want, err := os.ReadFile(filepath.Join(src, "glyphs", "o.glif"))
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dst, "glyphs", "o.glif"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Copy(src, dst)
	assert.Error(t, err)

	// Data outside the glyph layers comes along.
	require.NoError(t, os.MkdirAll(filepath.Join(src, "data", "com.example"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "data", "com.example", "notes.txt"), []byte("hi"), 0o644))
	dst2 := filepath.Join(t.TempDir(), "Out2.ufo")
	_, err = Copy(src, dst2)
	require.NoError(t, err)
	got, err = os.ReadFile(filepath.Join(dst2, "data", "com.example", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}
