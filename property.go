package reel

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// PropertySetter writes an automated value to a property of an item. Setters
// of node-bound properties are no-ops while the item has no live node.
type PropertySetter func(it *Item, v float64)

// PropertyGetter reads the current value of a property: the live value when
// one exists, else the saved value from the item's data bag, else the
// property's default.
type PropertyGetter func(it *Item) float64

type propertyScope uint8

const (
	scopeNode propertyScope = iota // transform and rendering of any visual node
	scopeText                      // text style, text nodes only
	scopeItem                      // item fields, no node needed
)

// property is one registry entry. Exactly one setter/getter pair matching
// scope is set. Colors travel as packed 0xRRGGBB numbers, booleans as 1/0
// and enumerations as their index.
type property struct {
	name  string
	scope propertyScope
	def   float64
	color bool
	enum  []string

	nodeSet func(n *Node, v float64)
	nodeGet func(n *Node) float64
	textSet func(st *TextStyle, v float64)
	textGet func(st *TextStyle) float64
	itemSet func(it *Item, v float64)
	itemGet func(it *Item) float64

	set PropertySetter
	get PropertyGetter
}

// registry is built once in init and only read afterwards.
var registry map[string]*property

// Setter returns the setter registered for name.
func Setter(name string) (PropertySetter, bool) {
	p, ok := registry[name]
	if !ok {
		return nil, false
	}
	return p.set, true
}

// Getter returns the getter registered for name.
func Getter(name string) (PropertyGetter, bool) {
	p, ok := registry[name]
	if !ok {
		return nil, false
	}
	return p.get, true
}

// SetterFor returns the setter for name if the property is legal on items of
// the given kind: text style properties need a text item, node properties a
// visual item, item properties apply to every kind.
func SetterFor(kind ItemKind, name string) (PropertySetter, bool) {
	p, ok := registry[name]
	if !ok || !p.legalOn(kind) {
		return nil, false
	}
	return p.set, true
}

// PropertyDefault returns the documented default of a property.
func PropertyDefault(name string) (float64, bool) {
	p, ok := registry[name]
	if !ok {
		return 0, false
	}
	return p.def, true
}

// Properties returns every registered property name, sorted.
func Properties() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SavedValue returns the saved value of a property from the item's data bag,
// or the property default when nothing usable was saved. Unknown names yield
// 0.
func SavedValue(it *Item, name string) float64 {
	p, ok := registry[name]
	if !ok {
		return 0
	}
	if v, ok := p.saved(it); ok {
		return v
	}
	return p.def
}

func (p *property) legalOn(kind ItemKind) bool {
	switch p.scope {
	case scopeText:
		return kind == KindText
	case scopeNode:
		return kind.Visual()
	}
	return true
}

func (p *property) saved(it *Item) (float64, bool) {
	if it == nil || it.Data == nil {
		return 0, false
	}
	raw, ok := it.Data[p.name]
	if !ok {
		return 0, false
	}
	return p.convert(raw)
}

// convert turns a data bag value into the property's numeric form.
func (p *property) convert(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		return boolf(v), true
	case string:
		return p.parse(v)
	}
	return 0, false
}

func (p *property) parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if p.color && strings.HasPrefix(s, "#") {
		c, err := ParseHexColor(s)
		if err != nil {
			return 0, false
		}
		return c.Packed(), true
	}
	for i, name := range p.enum {
		if strings.EqualFold(s, name) {
			return float64(i), true
		}
	}
	if p.name == "textStyleFontFamily" {
		if i, ok := FontFamilyIndex(s); ok {
			return float64(i), true
		}
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return boolf(b), true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}

// bind derives the public setter and getter from the scope-specific pair.
func (p *property) bind() {
	switch p.scope {
	case scopeNode:
		p.set = func(it *Item, v float64) {
			if it.node != nil {
				p.nodeSet(it.node, v)
			}
		}
		p.get = func(it *Item) float64 {
			if it.node != nil {
				return p.nodeGet(it.node)
			}
			if v, ok := p.saved(it); ok {
				return v
			}
			return p.def
		}
	case scopeText:
		p.set = func(it *Item, v float64) {
			if it.node == nil || it.node.Text == nil {
				return
			}
			tb := it.node.Text
			if tb.HasStyle() && p.textGet(tb.peekStyle()) == v {
				return // unchanged, keep the cached layout
			}
			p.textSet(tb.Style(), v)
		}
		p.get = func(it *Item) float64 {
			if it.node != nil && it.node.Text != nil && it.node.Text.HasStyle() {
				return p.textGet(it.node.Text.peekStyle())
			}
			if v, ok := p.saved(it); ok {
				return v
			}
			return p.def
		}
	case scopeItem:
		p.set = p.itemSet
		p.get = p.itemGet
	}
}

// applySavedProperties pushes every saved property in the data bag onto the
// freshly created node.
func applySavedProperties(it *Item) {
	for name := range it.Data {
		p, ok := registry[name]
		if !ok || p.scope == scopeItem || !p.legalOn(it.Kind) {
			continue
		}
		if v, ok := p.saved(it); ok {
			p.set(it, v)
		}
	}
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// enumIndex rounds v to an index in [0, n).
func enumIndex(v float64, n int) int {
	i := int(math.Round(v))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// withAlpha keeps the alpha of old when a packed color replaces it.
func withAlpha(v float64, old Color) Color {
	c := ColorFromPacked(v)
	c.A = old.A
	return c
}

var (
	blendNames    = []string{"normal", "add", "multiply", "screen", "erase", "below", "none"}
	fontStyles    = []string{"normal", "italic", "oblique"}
	alignNames    = []string{"left", "center", "right"}
	lineJoinNames = []string{"miter", "round", "bevel"}
)

func nodeProp(name string, def float64, set func(*Node, float64), get func(*Node) float64) *property {
	return &property{name: name, scope: scopeNode, def: def, nodeSet: set, nodeGet: get}
}

func textProp(name string, def float64, set func(*TextStyle, float64), get func(*TextStyle) float64) *property {
	return &property{name: name, scope: scopeText, def: def, textSet: set, textGet: get}
}

func itemProp(name string, def float64, set func(*Item, float64), get func(*Item) float64) *property {
	return &property{name: name, scope: scopeItem, def: def, itemSet: set, itemGet: get}
}

func init() {
	ts := DefaultTextStyle()
	props := []*property{
		// Transform
		nodeProp("positionX", 0, func(n *Node, v float64) { n.X = v }, func(n *Node) float64 { return n.X }),
		nodeProp("positionY", 0, func(n *Node, v float64) { n.Y = v }, func(n *Node) float64 { return n.Y }),
		nodeProp("scaleX", 1, func(n *Node, v float64) { n.ScaleX = v }, func(n *Node) float64 { return n.ScaleX }),
		nodeProp("scaleY", 1, func(n *Node, v float64) { n.ScaleY = v }, func(n *Node) float64 { return n.ScaleY }),
		nodeProp("skewX", 0, func(n *Node, v float64) { n.SkewX = v }, func(n *Node) float64 { return n.SkewX }),
		nodeProp("skewY", 0, func(n *Node, v float64) { n.SkewY = v }, func(n *Node) float64 { return n.SkewY }),
		nodeProp("anchorX", 0, func(n *Node, v float64) { n.AnchorX = v }, func(n *Node) float64 { return n.AnchorX }),
		nodeProp("anchorY", 0, func(n *Node, v float64) { n.AnchorY = v }, func(n *Node) float64 { return n.AnchorY }),
		nodeProp("rotation", 0, func(n *Node, v float64) { n.Rotation = v }, func(n *Node) float64 { return n.Rotation }),

		// Rendering
		nodeProp("visible", 1, func(n *Node, v float64) { n.Visible = v > 0 }, func(n *Node) float64 { return boolf(n.Visible) }),
		nodeProp("opacity", 1, func(n *Node, v float64) { n.Alpha = v }, func(n *Node) float64 { return n.Alpha }),
		nodeProp("tint", 0xffffff, func(n *Node, v float64) { n.Color = withAlpha(v, n.Color) }, func(n *Node) float64 { return n.Color.Packed() }),
		nodeProp("blendMode", 0, func(n *Node, v float64) { n.BlendMode = BlendMode(enumIndex(v, int(blendModeCount))) },
			func(n *Node) float64 { return float64(n.BlendMode) }),

		// Text style
		textProp("textStyleWeight", ts.Weight, func(st *TextStyle, v float64) { st.Weight = v }, func(st *TextStyle) float64 { return st.Weight }),
		textProp("textStyleStyle", 0, func(st *TextStyle, v float64) { st.Style = FontStyle(enumIndex(v, len(fontStyles))) },
			func(st *TextStyle) float64 { return float64(st.Style) }),
		textProp("textStyleFontSize", ts.Size, func(st *TextStyle, v float64) { st.Size = v }, func(st *TextStyle) float64 { return st.Size }),
		textProp("textStyleFontFamily", 0, func(st *TextStyle, v float64) { st.Family = enumIndex(v, len(fontFamilies())) },
			func(st *TextStyle) float64 { return float64(st.Family) }),
		textProp("textStyleFill", ts.Fill.Packed(), func(st *TextStyle, v float64) { st.Fill = withAlpha(v, st.Fill) },
			func(st *TextStyle) float64 { return st.Fill.Packed() }),
		textProp("textStyleAlignment", 0, func(st *TextStyle, v float64) { st.Align = TextAlign(enumIndex(v, len(alignNames))) },
			func(st *TextStyle) float64 { return float64(st.Align) }),
		textProp("textStyleLineHeight", ts.LineHeight, func(st *TextStyle, v float64) { st.LineHeight = v },
			func(st *TextStyle) float64 { return st.LineHeight }),
		textProp("textStyleWrap", boolf(ts.Wrap), func(st *TextStyle, v float64) { st.Wrap = v > 0 },
			func(st *TextStyle) float64 { return boolf(st.Wrap) }),
		textProp("textStyleWrapWidth", ts.WrapWidth, func(st *TextStyle, v float64) { st.WrapWidth = v },
			func(st *TextStyle) float64 { return st.WrapWidth }),
		textProp("textStyleLetterSpacing", 0, func(st *TextStyle, v float64) { st.LetterSpacing = v },
			func(st *TextStyle) float64 { return st.LetterSpacing }),
		textProp("textStyleStroke", 0, func(st *TextStyle, v float64) { st.Stroke = withAlpha(v, st.Stroke) },
			func(st *TextStyle) float64 { return st.Stroke.Packed() }),
		textProp("textStyleStrokeThickness", 0, func(st *TextStyle, v float64) { st.StrokeThickness = math.Max(0, v) },
			func(st *TextStyle) float64 { return st.StrokeThickness }),
		textProp("textStyleStrokeLinejoin", 0, func(st *TextStyle, v float64) { st.StrokeJoin = LineJoin(enumIndex(v, len(lineJoinNames))) },
			func(st *TextStyle) float64 { return float64(st.StrokeJoin) }),
		textProp("textStyleDropShadow", 0, func(st *TextStyle, v float64) { st.DropShadow = v > 0 },
			func(st *TextStyle) float64 { return boolf(st.DropShadow) }),
		textProp("textStyleDropShadowColor", 0, func(st *TextStyle, v float64) { st.DropShadowColor = withAlpha(v, st.DropShadowColor) },
			func(st *TextStyle) float64 { return st.DropShadowColor.Packed() }),
		textProp("textStyleDropShadowOpacity", ts.DropShadowOpacity, func(st *TextStyle, v float64) { st.DropShadowOpacity = v },
			func(st *TextStyle) float64 { return st.DropShadowOpacity }),
		textProp("textStyleDropShadowAngle", ts.DropShadowAngle, func(st *TextStyle, v float64) { st.DropShadowAngle = v },
			func(st *TextStyle) float64 { return st.DropShadowAngle }),
		textProp("textStyleDropShadowDistance", ts.DropShadowDistance, func(st *TextStyle, v float64) { st.DropShadowDistance = v },
			func(st *TextStyle) float64 { return st.DropShadowDistance }),
		textProp("textStyleDropShadowBlur", 0, func(st *TextStyle, v float64) { st.DropShadowBlur = math.Max(0, v) },
			func(st *TextStyle) float64 { return st.DropShadowBlur }),

		// Item fields
		itemProp("tileColor", 0xffffff, func(it *Item, v float64) { it.TileColor = withAlpha(v, it.TileColor) },
			func(it *Item) float64 { return it.TileColor.Packed() }),
		itemProp("clipDuration", 0, func(it *Item, v float64) { it.Duration = math.Max(0, v) },
			func(it *Item) float64 { return it.Duration }),
		itemProp("clipStartTime", 0, func(it *Item, v float64) { it.Start = v },
			func(it *Item) float64 { return it.Start }),
	}

	registry = make(map[string]*property, len(props))
	for _, p := range props {
		switch p.name {
		case "tint", "textStyleFill", "textStyleStroke", "textStyleDropShadowColor", "tileColor":
			p.color = true
		case "blendMode":
			p.enum = blendNames
		case "textStyleStyle":
			p.enum = fontStyles
		case "textStyleAlignment":
			p.enum = alignNames
		case "textStyleStrokeLinejoin":
			p.enum = lineJoinNames
		}
		p.bind()
		registry[p.name] = p
	}
}
