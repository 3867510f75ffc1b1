package ufo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
	"honnef.co/go/pathfx"
)

// Glif is a parsed .glif file. Elements the path effects don't touch, such as
// guidelines, images, notes and the lib, are kept verbatim and written back
// unchanged.
type Glif struct {
	XMLName     xml.Name  `xml:"glyph"`
	Name        string    `xml:"name,attr"`
	Format      string    `xml:"format,attr"`
	FormatMinor string    `xml:"formatMinor,attr,omitempty"`
	Advance     *Advance  `xml:"advance"`
	Unicodes    []Unicode `xml:"unicode"`
	Anchors     []Anchor  `xml:"anchor"`
	Outline     *Outline  `xml:"outline"`
	Other       []element `xml:",any"`
}

type Advance struct {
	Width  Coord `xml:"width,attr,omitempty"`
	Height Coord `xml:"height,attr,omitempty"`
}

type Unicode struct {
	Hex string `xml:"hex,attr"`
}

type Anchor struct {
	X          Coord  `xml:"x,attr"`
	Y          Coord  `xml:"y,attr"`
	Name       string `xml:"name,attr,omitempty"`
	Color      string `xml:"color,attr,omitempty"`
	Identifier string `xml:"identifier,attr,omitempty"`
}

type Outline struct {
	Contours   []Contour   `xml:"contour"`
	Components []Component `xml:"component"`
}

type Contour struct {
	Identifier string  `xml:"identifier,attr,omitempty"`
	Points     []Point `xml:"point"`
}

type Point struct {
	X          Coord  `xml:"x,attr"`
	Y          Coord  `xml:"y,attr"`
	Type       string `xml:"type,attr,omitempty"`
	Smooth     string `xml:"smooth,attr,omitempty"`
	Name       string `xml:"name,attr,omitempty"`
	Identifier string `xml:"identifier,attr,omitempty"`
}

// IsOffCurve reports whether p is a control point.
func (p Point) IsOffCurve() bool { return p.Type == "" || p.Type == "offcurve" }

type Component struct {
	Base       string `xml:"base,attr"`
	XScale     string `xml:"xScale,attr,omitempty"`
	XYScale    string `xml:"xyScale,attr,omitempty"`
	YXScale    string `xml:"yxScale,attr,omitempty"`
	YScale     string `xml:"yScale,attr,omitempty"`
	XOffset    string `xml:"xOffset,attr,omitempty"`
	YOffset    string `xml:"yOffset,attr,omitempty"`
	Identifier string `xml:"identifier,attr,omitempty"`
}

// element is an element kept as is.
type element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

// Coord is a coordinate. It is written without an exponent and with at most
// three decimals.
type Coord float64

func (c Coord) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	v := math.Round(float64(c)*1000) / 1000
	if v == 0 {
		// Avoid "-0".
		v = 0
	}
	return xml.Attr{Name: name, Value: strconv.FormatFloat(v, 'f', -1, 64)}, nil
}

func (c *Coord) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64)
	if err != nil {
		return fmt.Errorf("ufo: attribute %s: %w", attr.Name.Local, err)
	}
	*c = Coord(v)
	return nil
}

// ParseGlif decodes a .glif file.
func ParseGlif(r io.Reader) (*Glif, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	var g Glif
	if err := d.Decode(&g); err != nil {
		return nil, fmt.Errorf("ufo: parsing glif: %w", err)
	}
	if g.Format == "" {
		g.Format = "1"
	}
	return &g, nil
}

// WriteTo encodes g as a .glif file.
func (g *Glif) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(g); err != nil {
		return 0, fmt.Errorf("ufo: encoding glif %q: %w", g.Name, err)
	}
	buf.WriteByte('\n')
	return buf.WriteTo(w)
}

// Glyph converts g into the glyph model of the path effects. Format 1
// anchors, which are single-point contours, become anchors.
func (g *Glif) Glyph() (pathfx.Glyph, error) {
	out := pathfx.Glyph{Name: g.Name}
	if g.Advance != nil {
		out.Advance = float64(g.Advance.Width)
	}
	for _, u := range g.Unicodes {
		r, err := strconv.ParseUint(u.Hex, 16, 32)
		if err != nil {
			return pathfx.Glyph{}, fmt.Errorf("ufo: glyph %q: unicode %q: %w", g.Name, u.Hex, err)
		}
		out.Unicodes = append(out.Unicodes, rune(r))
	}
	for _, a := range g.Anchors {
		out.Anchors = append(out.Anchors, pathfx.Anchor{Name: a.Name, Pt: pathfx.Pt(float64(a.X), float64(a.Y))})
	}
	if g.Outline == nil {
		return out, nil
	}
	for i, c := range g.Outline.Contours {
		if c.isAnchor() {
			p := c.Points[0]
			out.Anchors = append(out.Anchors, pathfx.Anchor{Name: p.Name, Pt: pathfx.Pt(float64(p.X), float64(p.Y))})
			continue
		}
		if c.isBare() {
			continue
		}
		pc, err := contourFromPoints(c.Points)
		if err != nil {
			return pathfx.Glyph{}, fmt.Errorf("ufo: glyph %q: contour %d: %w", g.Name, i, err)
		}
		out.Contours = append(out.Contours, pc)
	}
	return out, nil
}

// isAnchor reports whether c is a format 1 anchor: a single named move point.
func (c Contour) isAnchor() bool {
	return len(c.Points) == 1 && c.Points[0].Type == "move" && c.Points[0].Name != ""
}

// isBare reports whether c has no segments: it is empty, or an open contour
// made of a move point and nothing but control points. Bare contours are not
// part of the glyph model and are written back as they were.
func (c Contour) isBare() bool {
	if len(c.Points) == 0 {
		return true
	}
	if c.Points[0].Type != "move" {
		return false
	}
	for _, p := range c.Points[1:] {
		if !p.IsOffCurve() {
			return false
		}
	}
	return true
}

// HasOpenContours reports whether any contour of g is an open contour with at
// least one segment.
func (g *Glif) HasOpenContours() bool {
	if g.Outline == nil {
		return false
	}
	for _, c := range g.Outline.Contours {
		if !c.isBare() && c.Points[0].Type == "move" {
			return true
		}
	}
	return false
}

// SetContours replaces the outline contours of g. Components, anchors and
// everything else are kept.
func (g *Glif) SetContours(contours []pathfx.Contour) {
	if g.Outline == nil {
		g.Outline = &Outline{}
	}
	var kept []Contour
	for _, c := range g.Outline.Contours {
		// Format 1 anchors and stray points live among the contours.
		if c.isAnchor() || c.isBare() {
			kept = append(kept, c)
		}
	}
	g.Outline.Contours = kept
	for _, c := range contours {
		if c.Len() == 0 {
			continue
		}
		g.Outline.Contours = append(g.Outline.Contours, Contour{Points: pointsFromContour(c)})
	}
}

func pt(p Point) pathfx.Point { return pathfx.Pt(float64(p.X), float64(p.Y)) }

// contourFromPoints converts GLIF points into a contour. Quadratic runs with
// several control points get the implied on-curve points between them.
func contourFromPoints(pts []Point) (pathfx.Contour, error) {
	if len(pts) == 0 {
		return pathfx.Contour{}, fmt.Errorf("%w: empty contour", ErrInvalidGlif)
	}
	var b pathfx.ContourBuilder
	open := pts[0].Type == "move"
	if open {
		b.MoveTo(pt(pts[0]))
		var offs []pathfx.Point
		for _, p := range pts[1:] {
			if err := addPoint(&b, &offs, p); err != nil {
				return pathfx.Contour{}, err
			}
		}
		// Trailing control points of an open contour are ignored.
		return b.Open(), nil
	}

	// Closed contours start at an on-curve point, the segment to which
	// comes last.
	start := -1
	for i, p := range pts {
		if !p.IsOffCurve() {
			start = i
			break
		}
	}
	if start == -1 {
		// TrueType contour without on-curve points.
		n := len(pts)
		mid := pt(pts[n-1]).Midpoint(pt(pts[0]))
		pts = append([]Point{{X: Coord(mid.X), Y: Coord(mid.Y), Type: "qcurve"}}, pts...)
		start = 0
	}
	b.MoveTo(pt(pts[start]))
	var offs []pathfx.Point
	for i := 1; i <= len(pts); i++ {
		p := pts[(start+i)%len(pts)]
		if err := addPoint(&b, &offs, p); err != nil {
			return pathfx.Contour{}, err
		}
	}
	return b.Close(), nil
}

func addPoint(b *pathfx.ContourBuilder, offs *[]pathfx.Point, p Point) error {
	if p.IsOffCurve() {
		*offs = append(*offs, pt(p))
		return nil
	}
	to := pt(p)
	cps := *offs
	*offs = (*offs)[:0]
	switch p.Type {
	case "line":
		b.LineTo(to)
	case "curve":
		switch len(cps) {
		case 0:
			b.LineTo(to)
		case 1:
			b.QuadTo(cps[0], to)
		case 2:
			b.CubicTo(cps[0], cps[1], to)
		default:
			return fmt.Errorf("%w: curve with %d control points", ErrInvalidGlif, len(cps))
		}
	case "qcurve":
		b.QuadSplineTo(to, cps...)
	case "move":
		return fmt.Errorf("%w: move point inside a contour", ErrInvalidGlif)
	default:
		return fmt.Errorf("%w: unknown point type %q", ErrInvalidGlif, p.Type)
	}
	return nil
}

// smoothAngle is the largest angle between the incoming and outgoing tangent
// at a point marked smooth.
const smoothAngle = 1e-3

// pointsFromContour converts a contour into GLIF points. Straight segments
// become line points, all others cubic curves.
func pointsFromContour(c pathfx.Contour) []Point {
	if c.Len() == 0 {
		return nil
	}
	var out []Point
	p := func(q pathfx.Point, typ string) Point {
		return Point{X: Coord(q.X), Y: Coord(q.Y), Type: typ}
	}
	if !c.IsClosed() {
		out = append(out, p(c.Start(), "move"))
	}
	for i, seg := range c.Segments {
		if seg.HasLineHandles() {
			out = append(out, p(seg.P3, "line"))
		} else {
			out = append(out, p(seg.P1, ""), p(seg.P2, ""), p(seg.P3, "curve"))
		}
		var next pathfx.CubicBez
		switch {
		case i+1 < len(c.Segments):
			next = c.Segments[i+1]
		case c.IsClosed():
			next = c.Segments[0]
		default:
			continue
		}
		_, in := seg.Tangents()
		outTan, _ := next.Tangents()
		if in.Hypot2() > 0 && outTan.Hypot2() > 0 && in.Dot(outTan) > 0 &&
			math.Abs(math.Atan2(in.Cross(outTan), in.Dot(outTan))) < smoothAngle &&
			!(seg.HasLineHandles() && next.HasLineHandles()) {
			out[len(out)-1].Smooth = "yes"
		}
	}
	return out
}
