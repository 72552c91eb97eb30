package reel

import (
	"fmt"
)

// NodeFactory creates the live node of an item. It returns nil for kinds
// without a node or when creation fails.
type NodeFactory interface {
	CreateNode(it *Item) *Node
}

// NodeFactoryFunc adapts a function to NodeFactory.
type NodeFactoryFunc func(it *Item) *Node

// CreateNode implements NodeFactory.
func (f NodeFactoryFunc) CreateNode(it *Item) *Node { return f(it) }

// DefaultFactory builds nodes by item kind. Image-backed nodes start on a
// placeholder and mark the item stale so the bound resource gets loaded.
type DefaultFactory struct{}

// Default size of graphics items without "width"/"height" in their data.
const (
	defaultGraphicsWidth  = 100
	defaultGraphicsHeight = 100
)

// CreateNode implements NodeFactory.
func (DefaultFactory) CreateNode(it *Item) *Node {
	name := it.Label
	if name == "" {
		name = it.ID
	}
	switch it.Kind {
	case KindContainer:
		return NewContainer(name)
	case KindGraphics:
		w := int(dataNumber(it, "width", defaultGraphicsWidth))
		h := int(dataNumber(it, "height", defaultGraphicsHeight))
		return NewGraphics(name, w, h)
	case KindSprite, KindImage, KindVideo:
		n := NewSprite(name, it.Kind, placeholderImage())
		if it.Source != "" {
			it.MarkStale()
		}
		return n
	case KindText:
		return NewText(name, dataString(it, "textContent", ""))
	}
	return nil
}

func dataNumber(it *Item, key string, def float64) float64 {
	switch v := it.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func dataString(it *Item, key, def string) string {
	v, ok := it.Data[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
