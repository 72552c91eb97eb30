package reel

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// --- ID counter ---

// nodeIDCounter is only touched by the render thread.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the live backend object of a timeline item. A single flat struct
// is used for all kinds to avoid interface dispatch on the hot path; Kind
// decides which content fields are meaningful.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Kind ItemKind

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Anchor is normalized to the content size:
	// (0, 0) is the top-left corner and (1, 1) the bottom-right.
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64 // radians
	SkewX, SkewY float64 // radians
	AnchorX      float64
	AnchorY      float64

	// Computed during rendering
	worldTransform [6]float64
	worldAlpha     float64

	// Rendering
	Alpha     float64
	Visible   bool
	Color     Color // tint
	BlendMode BlendMode

	// Content (sprite, image, video, graphics)
	image *ebiten.Image

	// Text fields (KindText)
	Text *TextBlock

	owner    *Item
	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Kind: KindContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a node of the given image-backed kind. A nil image
// renders nothing until SetImage is called.
func NewSprite(name string, kind ItemKind, img *ebiten.Image) *Node {
	n := &Node{Name: name, Kind: kind, image: img}
	nodeDefaults(n)
	return n
}

// NewGraphics creates a solid white rectangle of w x h pixels. Its fill is
// the node tint. Non-positive sizes yield a 1x1 rectangle.
func NewGraphics(name string, w, h int) *Node {
	return NewSprite(name, KindGraphics, solidRect(w, h))
}

// NewText creates a text node with the given content. Its style is created
// lazily on first write.
func NewText(name string, content string) *Node {
	n := &Node{
		Name: name,
		Kind: KindText,
		Text: &TextBlock{Content: content, dirty: true},
	}
	nodeDefaults(n)
	return n
}

// Image returns the node's current image, or nil.
func (n *Node) Image() *ebiten.Image {
	return n.image
}

// SetImage replaces the image rendered by an image-backed node.
func (n *Node) SetImage(img *ebiten.Image) {
	n.image = img
}

// contentSize returns the untransformed size used to resolve the anchor.
func (n *Node) contentSize() (w, h float64) {
	switch {
	case n.Text != nil:
		return n.Text.measure()
	case n.image != nil:
		b := n.image.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	}
	return 0, 0
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("reel: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("reel: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("reel: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.owner = nil
	n.image = nil
	if n.Text != nil {
		n.Text.release()
		n.Text = nil
	}
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
