package reel

import (
	"math"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func newTextBlock(content string) *TextBlock {
	return NewText("t", content).Text
}

func TestTextBlockUsesDefaultStyleLazily(t *testing.T) {
	tb := newTextBlock("hello")
	if tb.HasStyle() {
		t.Fatal("style should not exist before first write")
	}
	_, h := tb.measure()
	want := DefaultTextStyle().Size * DefaultTextStyle().LineHeight
	assertNear(t, "height", h, want)
	if tb.HasStyle() {
		t.Error("measuring must not create a style")
	}
	tb.Style().Size = 10
	if !tb.HasStyle() {
		t.Error("Style() should create the style")
	}
}

func TestTextBlockWrapsEveryWordWhenNarrow(t *testing.T) {
	tb := newTextBlock("one two three")
	st := tb.Style()
	st.WrapWidth = 1
	tb.layout()
	if len(tb.lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(tb.lines))
	}
	if tb.lines[1].text != "two" {
		t.Errorf("line 1 = %q, want two", tb.lines[1].text)
	}
	assertNear(t, "height", tb.measuredH, 3*st.Size*st.LineHeight)
}

func TestTextBlockKeepsShortLineAndPadsToWrapWidth(t *testing.T) {
	tb := newTextBlock("hi there")
	st := tb.Style()
	st.WrapWidth = 5000
	w, _ := tb.measure()
	if len(tb.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(tb.lines))
	}
	assertNear(t, "width", w, 5000)
}

func TestTextBlockExplicitNewlinesWithoutWrap(t *testing.T) {
	tb := newTextBlock("first line\n\nthird")
	tb.Style().Wrap = false
	tb.layout()
	if len(tb.lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(tb.lines))
	}
	if tb.lines[1].width != 0 {
		t.Errorf("empty line width = %v", tb.lines[1].width)
	}
	if tb.measuredW != math.Max(tb.lines[0].width, tb.lines[2].width) {
		t.Errorf("width = %v, want widest line", tb.measuredW)
	}
}

func TestTextBlockContentChangeInvalidatesLayout(t *testing.T) {
	tb := newTextBlock("a")
	tb.Style().Wrap = false
	w1, _ := tb.measure()
	tb.SetContent("a much longer piece of text")
	w2, _ := tb.measure()
	if w2 <= w1 {
		t.Errorf("width did not grow: %v then %v", w1, w2)
	}
}

func TestTextBlockPadding(t *testing.T) {
	tb := newTextBlock("x")
	st := tb.Style()
	st.StrokeThickness = 3
	tb.layout()
	assertNear(t, "stroke pad", tb.pad, 3)

	st = tb.Style()
	st.DropShadow = true
	st.DropShadowDistance = 4
	st.DropShadowBlur = 2
	tb.layout()
	assertNear(t, "shadow pad", tb.pad, 9)
}

func TestLineWidthLetterSpacing(t *testing.T) {
	st := DefaultTextStyle()
	face := st.face()
	base := lineWidth("abc", face, 0)
	assertNear(t, "spaced", lineWidth("abc", face, 2), base+4)
	assertNear(t, "single rune", lineWidth("a", face, 5), lineWidth("a", face, 0))
}

func TestBoldFaceDiffersFromRegular(t *testing.T) {
	st := DefaultTextStyle()
	regular := lineWidth("Wide words", st.face(), 0)
	st.Weight = 700
	bold := lineWidth("Wide words", st.face(), 0)
	if bold == regular {
		t.Error("weight 700 should select the bold face")
	}
}

func TestStrokeOffsets(t *testing.T) {
	tests := []struct {
		join LineJoin
		n    int
	}{
		{LineJoinMiter, 8},
		{LineJoinBevel, 8},
		{LineJoinRound, 16},
	}
	for _, tt := range tests {
		offs := strokeOffsets(tt.join, 2)
		if len(offs) != tt.n {
			t.Errorf("join %d: %d offsets, want %d", tt.join, len(offs), tt.n)
		}
		for _, o := range offs {
			if math.Hypot(o[0], o[1]) > 2*math.Sqrt2+1e-9 {
				t.Errorf("join %d: offset %v too far", tt.join, o)
			}
		}
	}
}

func TestFontFamilies(t *testing.T) {
	if i, ok := FontFamilyIndex("go"); !ok || i != 0 {
		t.Errorf("FontFamilyIndex(go) = %d, %v; want 0, true", i, ok)
	}
	idx, err := RegisterFontFamily("Custom", goregular.TTF, nil, nil, nil)
	if err != nil {
		t.Fatalf("RegisterFontFamily: %v", err)
	}
	if i, ok := FontFamilyIndex("custom"); !ok || i != idx {
		t.Errorf("FontFamilyIndex(custom) = %d, %v; want %d", i, ok, idx)
	}
	if _, err := RegisterFontFamily("Broken", []byte("not a font"), nil, nil, nil); err == nil {
		t.Error("expected an error for invalid font data")
	}
	if _, ok := FontFamilyIndex("nope"); ok {
		t.Error("unknown family should not resolve")
	}
}

func TestTextRenderCachesImage(t *testing.T) {
	tb := newTextBlock("cache me")
	img := tb.render()
	if img == nil {
		t.Fatal("render returned nil")
	}
	if tb.render() != img {
		t.Error("unchanged block should reuse its image")
	}
	tb.release()
	if tb.img != nil {
		t.Error("release should drop the image")
	}
}

func TestBlurPasses(t *testing.T) {
	tests := []struct {
		radius float64
		want   int
	}{
		{0.5, 1}, {1, 1}, {2, 1}, {3, 2}, {8, 3}, {9, 4},
	}
	for _, tt := range tests {
		if got := blurPasses(tt.radius); got != tt.want {
			t.Errorf("blurPasses(%v) = %d, want %d", tt.radius, got, tt.want)
		}
	}
}

func TestBlurredShadowUsesScratchImage(t *testing.T) {
	tb := newTextBlock("shadow")
	st := tb.Style()
	st.DropShadow = true
	st.DropShadowBlur = 6
	img := tb.render()
	if img == nil || tb.shadow == nil {
		t.Fatal("blurred shadow should render through a scratch image")
	}
	if tb.shadow.Bounds() != img.Bounds() {
		t.Errorf("scratch bounds %v, want %v", tb.shadow.Bounds(), img.Bounds())
	}
	if len(tb.blur.temps) != blurPasses(6) {
		t.Errorf("blur temps = %d, want %d", len(tb.blur.temps), blurPasses(6))
	}
	tb.release()
	if tb.shadow != nil || tb.blur.temps != nil {
		t.Error("release should free the shadow buffers")
	}
}
