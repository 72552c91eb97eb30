package reel

// Item is one clip on the timeline. Its serializable fields describe the clip
// and its saved property values; the live node and the stale flag are
// runtime-only.
type Item struct {
	ID    string
	Kind  ItemKind
	Label string

	// Row is the timeline lane; it orders rendering when ZIndex is nil.
	Row    int
	ZIndex *int

	Start    float64
	Duration float64

	// The zero value renders.
	Disabled bool
	Hidden   bool

	TileColor Color

	// Source references the resource bound to sprite, image and video items.
	Source string

	// Parent is the id of a container item this item is drawn inside. The
	// container's transform and opacity compose with the item's own. Empty
	// or unresolvable ids draw the item at the top level.
	Parent string

	// Data holds the last explicitly saved value of each property, keyed by
	// property name. Values may be numbers, booleans or strings (hex colors,
	// enumeration names). "textContent" holds the text of text items.
	Data map[string]any

	// Animations are embedded sub-clips evaluated within this item's window.
	Animations []*Automation

	// Automation is set on KindAutomation items.
	Automation *Automation

	node  *Node
	stale bool
}

// NewItem creates an item of the given kind.
func NewItem(id string, kind ItemKind) *Item {
	it := &Item{ID: id, Kind: kind, TileColor: ColorWhite, Data: make(map[string]any)}
	if kind == KindAutomation {
		it.Automation = NewAutomation()
	}
	return it
}

// Node returns the live node, or nil if it has not been created yet.
func (it *Item) Node() *Node {
	return it.node
}

// End returns the exclusive end time of the item.
func (it *Item) End() float64 {
	return it.Start + it.Duration
}

// Contains reports whether t falls inside [Start, Start+Duration).
func (it *Item) Contains(t float64) bool {
	return t >= it.Start && t < it.End()
}

// SetZIndex sets an explicit render order that overrides Row.
func (it *Item) SetZIndex(z int) {
	it.ZIndex = &z
}

// MarkStale flags the bound resource for an asynchronous refresh on the
// next frame that renders the item.
func (it *Item) MarkStale() {
	it.stale = true
}

// Stale reports whether a resource refresh is pending.
func (it *Item) Stale() bool {
	return it.stale
}

// SaveProperty records v as the saved value of a property. The live node is
// not touched; use the registry setter for that.
func (it *Item) SaveProperty(name string, v any) {
	if it.Data == nil {
		it.Data = make(map[string]any)
	}
	it.Data[name] = v
}

// sortKey returns the render order key.
func (it *Item) sortKey() int {
	if it.ZIndex != nil {
		return *it.ZIndex
	}
	return it.Row
}

// ensureNode creates the live node through f on first need and applies the
// saved properties to it. Returns nil when the kind has no node or creation
// failed.
func (it *Item) ensureNode(f NodeFactory) *Node {
	if it.node != nil {
		return it.node
	}
	if f == nil || !it.Kind.Visual() {
		return nil
	}
	n := f.CreateNode(it)
	if n == nil {
		return nil
	}
	it.node = n
	n.owner = it
	applySavedProperties(it)
	return n
}

// releaseNode disposes the live node so the next frame rebuilds it.
func (it *Item) releaseNode() {
	if it.node != nil {
		it.node.Dispose()
		it.node = nil
	}
}
