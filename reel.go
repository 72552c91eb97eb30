package reel

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// ColorFromPacked converts a 0xRRGGBB number, the representation automation
// uses for color properties, into an opaque Color. Fractions are truncated
// and out-of-range values are clamped.
func ColorFromPacked(v float64) Color {
	p := uint32(math.Max(0, math.Min(0xffffff, v)))
	return Color{
		R: float64(p>>16&0xff) / 255,
		G: float64(p>>8&0xff) / 255,
		B: float64(p&0xff) / 255,
		A: 1,
	}
}

// Packed returns the 0xRRGGBB form of c, ignoring alpha.
func (c Color) Packed() float64 {
	r := uint32(clamp01(c.R)*255 + 0.5)
	g := uint32(clamp01(c.G)*255 + 0.5)
	b := uint32(clamp01(c.B)*255 + 0.5)
	return float64(r<<16 | g<<8 | b)
}

// Hex returns c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c.Packed()))
}

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("reel: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("reel: invalid color %q: %w", s, err)
	}
	return ColorFromPacked(float64(v)), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendBelow                     // destination-over (draw behind existing content)
	BlendNone                      // opaque copy (skip blending)
	blendModeCount
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendBelow:
		return ebiten.BlendDestinationOver
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// ItemKind tags a timeline item. It decides which node the factory builds
// and which property families may be bound to the item.
type ItemKind uint8

const (
	KindContainer  ItemKind = iota // group node with no visual output
	KindGraphics                   // solid vector shape
	KindSprite                     // renders an image resource
	KindImage                      // alias of sprite used by image presets
	KindVideo                      // renders the current frame of a video resource
	KindText                       // renders styled text
	KindSound                      // audio only, no node
	KindNotes                      // editor annotation, no node
	KindAutomation                 // automation clip, no node
)

var kindNames = [...]string{
	KindContainer:  "container",
	KindGraphics:   "graphics",
	KindSprite:     "sprite",
	KindImage:      "image",
	KindVideo:      "video",
	KindText:       "text",
	KindSound:      "sound",
	KindNotes:      "notes",
	KindAutomation: "automation",
}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseItemKind maps a kind name to its ItemKind.
func ParseItemKind(s string) (ItemKind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return ItemKind(k), nil
		}
	}
	return 0, fmt.Errorf("reel: unknown item kind %q", s)
}

// Visual reports whether items of this kind get a live node.
func (k ItemKind) Visual() bool {
	return k <= KindText
}

// TextAlign controls horizontal text alignment within a TextBlock.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align text to the left edge (default)
	TextAlignCenter                  // center text horizontally
	TextAlignRight                   // align text to the right edge
)
