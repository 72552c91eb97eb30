package reel

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontStyle selects the slanted variants of a font family.
type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique // rendered with the italic face
)

// LineJoin controls the corner shape of text strokes.
type LineJoin uint8

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// TextStyle holds every styling attribute of a text node. Family is an index
// into the registered font families; 0 is the built-in Go family.
type TextStyle struct {
	Weight        float64 // CSS weight, 600 and above selects the bold face
	Style         FontStyle
	Size          float64
	Family        int
	Fill          Color
	Align         TextAlign
	LineHeight    float64 // multiple of Size
	Wrap          bool
	WrapWidth     float64
	LetterSpacing float64

	Stroke          Color
	StrokeThickness float64
	StrokeJoin      LineJoin

	DropShadow         bool
	DropShadowColor    Color
	DropShadowOpacity  float64
	DropShadowAngle    float64 // radians
	DropShadowDistance float64
	DropShadowBlur     float64
}

// DefaultTextStyle returns the style a text node renders with until one of
// its style properties is written.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		Weight:             400,
		Size:               24,
		Fill:               ColorWhite,
		LineHeight:         1.2,
		Wrap:               true,
		WrapWidth:          200,
		Stroke:             Color{0, 0, 0, 1},
		DropShadowColor:    Color{0, 0, 0, 1},
		DropShadowOpacity:  0.5,
		DropShadowAngle:    math.Pi / 6,
		DropShadowDistance: 5,
	}
}

var defaultTextStyle = DefaultTextStyle()

// --- TextBlock ---

// TextBlock holds text content, its lazily created style and the cached
// layout and rendered image.
type TextBlock struct {
	Content string

	style *TextStyle

	// Cached layout (unexported)
	dirty     bool
	lines     []textLine
	measuredW float64
	measuredH float64
	pad       float64

	// Rendering cache
	img      *ebiten.Image
	imgDirty bool
	shadow   *ebiten.Image
	blur     kawaseBlur
}

type textLine struct {
	text  string
	width float64
}

// Style returns the block's style for writing, creating it from
// DefaultTextStyle on first use. Callers are expected to mutate the
// returned style, so the layout is invalidated.
func (tb *TextBlock) Style() *TextStyle {
	if tb.style == nil {
		s := DefaultTextStyle()
		tb.style = &s
	}
	tb.dirty = true
	return tb.style
}

// HasStyle reports whether a style has been created.
func (tb *TextBlock) HasStyle() bool {
	return tb.style != nil
}

// peekStyle returns the current style without creating one.
func (tb *TextBlock) peekStyle() *TextStyle {
	if tb.style == nil {
		return &defaultTextStyle
	}
	return tb.style
}

// SetContent replaces the text and invalidates the layout.
func (tb *TextBlock) SetContent(s string) {
	if tb.Content == s {
		return
	}
	tb.Content = s
	tb.dirty = true
}

// measure returns the laid-out width and height.
func (tb *TextBlock) measure() (w, h float64) {
	tb.layout()
	return tb.measuredW, tb.measuredH
}

// layout recomputes line breaks and measurements if dirty.
func (tb *TextBlock) layout() {
	if !tb.dirty {
		return
	}
	tb.dirty = false
	tb.imgDirty = true

	st := tb.peekStyle()
	face := st.face()
	spacing := st.LetterSpacing

	tb.lines = tb.lines[:0]
	var maxW float64
	for _, para := range strings.Split(tb.Content, "\n") {
		if st.Wrap && st.WrapWidth > 0 {
			tb.lines = wrapParagraph(tb.lines, para, face, spacing, st.WrapWidth)
		} else {
			tb.lines = append(tb.lines, textLine{text: para, width: lineWidth(para, face, spacing)})
		}
	}
	for _, l := range tb.lines {
		maxW = math.Max(maxW, l.width)
	}
	if st.Wrap && st.WrapWidth > 0 {
		maxW = math.Max(maxW, st.WrapWidth)
	}

	tb.measuredW = maxW
	tb.measuredH = float64(len(tb.lines)) * st.lineHeightPx()
	tb.pad = st.StrokeThickness
	if st.DropShadow {
		tb.pad += st.DropShadowDistance + st.DropShadowBlur
	}
}

// wrapParagraph greedily breaks one paragraph at spaces so that each line
// fits maxW. A single word wider than maxW gets a line of its own.
func wrapParagraph(lines []textLine, para string, face text.Face, spacing, maxW float64) []textLine {
	words := strings.Fields(para)
	if len(words) == 0 {
		return append(lines, textLine{})
	}
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if lineWidth(candidate, face, spacing) > maxW {
			lines = append(lines, textLine{text: cur, width: lineWidth(cur, face, spacing)})
			cur = w
			continue
		}
		cur = candidate
	}
	return append(lines, textLine{text: cur, width: lineWidth(cur, face, spacing)})
}

// lineWidth measures s including letter spacing between runes.
func lineWidth(s string, face text.Face, spacing float64) float64 {
	w := text.Advance(s, face)
	if spacing != 0 {
		if n := len([]rune(s)); n > 1 {
			w += spacing * float64(n-1)
		}
	}
	return w
}

// render returns the cached image of the block, redrawing it when the
// layout or style changed. The image origin is offset by tb.pad.
func (tb *TextBlock) render() *ebiten.Image {
	tb.layout()
	if !tb.imgDirty && tb.img != nil {
		return tb.img
	}
	tb.imgDirty = false
	if tb.measuredW == 0 || tb.measuredH == 0 {
		tb.release()
		return nil
	}

	w := int(math.Ceil(tb.measuredW+2*tb.pad)) + 1
	h := int(math.Ceil(tb.measuredH+2*tb.pad)) + 1
	if tb.img != nil {
		b := tb.img.Bounds()
		if b.Dx() != w || b.Dy() != h {
			tb.img.Deallocate()
			tb.img = nil
		} else {
			tb.img.Clear()
		}
	}
	if tb.img == nil {
		tb.img = ebiten.NewImage(w, h)
	}

	st := tb.peekStyle()
	face := st.face()

	if st.DropShadow {
		tb.drawShadow(face, st, w, h)
	}
	if st.StrokeThickness > 0 {
		for _, off := range strokeOffsets(st.StrokeJoin, st.StrokeThickness) {
			tb.drawLines(tb.img, face, st, off[0], off[1], st.Stroke)
		}
	}
	tb.drawLines(tb.img, face, st, 0, 0, st.Fill)
	return tb.img
}

// drawShadow draws the drop shadow pass. A blurred shadow is drawn into a
// scratch image first and blurred onto the block image.
func (tb *TextBlock) drawShadow(face text.Face, st *TextStyle, w, h int) {
	c := st.DropShadowColor
	c.A *= clamp01(st.DropShadowOpacity)
	dx := math.Cos(st.DropShadowAngle) * st.DropShadowDistance
	dy := math.Sin(st.DropShadowAngle) * st.DropShadowDistance
	if st.DropShadowBlur <= 0 {
		tb.drawLines(tb.img, face, st, dx, dy, c)
		return
	}
	if tb.shadow != nil && tb.shadow.Bounds() != tb.img.Bounds() {
		tb.shadow.Deallocate()
		tb.shadow = nil
	}
	if tb.shadow == nil {
		tb.shadow = ebiten.NewImage(w, h)
	} else {
		tb.shadow.Clear()
	}
	tb.drawLines(tb.shadow, face, st, dx, dy, c)
	tb.blur.apply(tb.shadow, tb.img, st.DropShadowBlur)
}

// drawLines draws every laid-out line onto dst shifted by (dx, dy) in color c.
func (tb *TextBlock) drawLines(dst *ebiten.Image, face text.Face, st *TextStyle, dx, dy float64, c Color) {
	lh := st.lineHeightPx()
	for i, l := range tb.lines {
		var offsetX float64
		switch st.Align {
		case TextAlignCenter:
			offsetX = (tb.measuredW - l.width) / 2
		case TextAlignRight:
			offsetX = tb.measuredW - l.width
		}
		x := tb.pad + offsetX + dx
		y := tb.pad + float64(i)*lh + dy
		drawRunes(dst, l.text, face, st.LetterSpacing, x, y, c)
	}
}

func drawRunes(dst *ebiten.Image, s string, face text.Face, spacing, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	if spacing == 0 {
		op.GeoM.Translate(x, y)
		text.Draw(dst, s, face, op)
		return
	}
	for _, r := range s {
		g := string(r)
		op.GeoM.Reset()
		op.GeoM.Translate(x, y)
		text.Draw(dst, g, face, op)
		x += text.Advance(g, face) + spacing
	}
}

// strokeOffsets returns the copies drawn behind the fill to fake a stroke.
func strokeOffsets(join LineJoin, t float64) [][2]float64 {
	switch join {
	case LineJoinRound:
		offs := make([][2]float64, 16)
		for i := range offs {
			sin, cos := math.Sincos(float64(i) * math.Pi / 8)
			offs[i] = [2]float64{cos * t, sin * t}
		}
		return offs
	case LineJoinBevel:
		d := t * math.Sqrt2 / 2
		return [][2]float64{{-t, 0}, {t, 0}, {0, -t}, {0, t}, {-d, -d}, {d, -d}, {-d, d}, {d, d}}
	}
	return [][2]float64{{-t, 0}, {t, 0}, {0, -t}, {0, t}, {-t, -t}, {t, -t}, {-t, t}, {t, t}}
}

// release frees the cached images.
func (tb *TextBlock) release() {
	if tb.img != nil {
		tb.img.Deallocate()
		tb.img = nil
	}
	if tb.shadow != nil {
		tb.shadow.Deallocate()
		tb.shadow = nil
	}
	tb.blur.release()
}

func (st *TextStyle) lineHeightPx() float64 {
	lh := st.LineHeight
	if lh <= 0 {
		lh = 1
	}
	return lh * st.Size
}

// face builds the text/v2 face for this style.
func (st *TextStyle) face() text.Face {
	fams := fontFamilies()
	fam := fams[0]
	if st.Family > 0 && st.Family < len(fams) {
		fam = fams[st.Family]
	}
	size := st.Size
	if size <= 0 {
		size = 1
	}
	return &text.GoTextFace{
		Source: fam.source(st.Weight >= 600, st.Style != FontStyleNormal),
		Size:   size,
	}
}

// --- Font families ---

// FontFamily groups the faces of one typeface.
type FontFamily struct {
	Name       string
	regular    *text.GoTextFaceSource
	bold       *text.GoTextFaceSource
	italic     *text.GoTextFaceSource
	boldItalic *text.GoTextFaceSource
}

func (f *FontFamily) source(bold, italic bool) *text.GoTextFaceSource {
	var s *text.GoTextFaceSource
	switch {
	case bold && italic:
		s = f.boldItalic
	case bold:
		s = f.bold
	case italic:
		s = f.italic
	}
	if s == nil {
		return f.regular
	}
	return s
}

var (
	fontsOnce sync.Once
	fonts     []*FontFamily
)

// fontFamilies returns the registered families, loading the built-in Go
// family as index 0 on first use.
func fontFamilies() []*FontFamily {
	fontsOnce.Do(func() {
		fam, err := newFontFamily("Go", goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF)
		if err != nil {
			panic(err)
		}
		fonts = append(fonts, fam)
	})
	return fonts
}

// RegisterFontFamily parses TTF/OTF data and appends a font family, returning
// its index for TextStyle.Family. Only regular is required; missing variants
// fall back to it. Register families at startup, before rendering begins.
func RegisterFontFamily(name string, regular, bold, italic, boldItalic []byte) (int, error) {
	fams := fontFamilies()
	fam, err := newFontFamily(name, regular, bold, italic, boldItalic)
	if err != nil {
		return 0, err
	}
	fonts = append(fams, fam)
	return len(fonts) - 1, nil
}

// FontFamilyIndex returns the index of the named family.
func FontFamilyIndex(name string) (int, bool) {
	for i, f := range fontFamilies() {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return 0, false
}

func newFontFamily(name string, regular, bold, italic, boldItalic []byte) (*FontFamily, error) {
	parse := func(data []byte) (*text.GoTextFaceSource, error) {
		if len(data) == 0 {
			return nil, nil
		}
		src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reel: failed to parse font %q: %w", name, err)
		}
		return src, nil
	}
	fam := &FontFamily{Name: name}
	var err error
	if fam.regular, err = parse(regular); err != nil {
		return nil, err
	}
	if fam.regular == nil {
		return nil, fmt.Errorf("reel: font family %q has no regular face", name)
	}
	if fam.bold, err = parse(bold); err != nil {
		return nil, err
	}
	if fam.italic, err = parse(italic); err != nil {
		return nil, err
	}
	if fam.boldItalic, err = parse(boldItalic); err != nil {
		return nil, err
	}
	return fam, nil
}
