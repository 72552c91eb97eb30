package reel

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constructor defaults ---

func TestNewContainerDefaults(t *testing.T) {
	n := NewContainer("test")
	assertNodeDefaults(t, n, "test", KindContainer)
}

func TestNewSpriteDefaults(t *testing.T) {
	img := ebiten.NewImage(32, 32)
	n := NewSprite("spr", KindSprite, img)
	assertNodeDefaults(t, n, "spr", KindSprite)
	if n.Image() != img {
		t.Error("Image() should return the constructor image")
	}
}

func TestNewGraphicsSize(t *testing.T) {
	n := NewGraphics("box", 40, 20)
	assertNodeDefaults(t, n, "box", KindGraphics)
	w, h := n.contentSize()
	if w != 40 || h != 20 {
		t.Errorf("contentSize = (%v, %v), want (40, 20)", w, h)
	}
}

func TestNewGraphicsZeroSizeUsesWhitePixel(t *testing.T) {
	n := NewGraphics("dot", 0, 0)
	if n.Image() != WhitePixel() {
		t.Error("zero size graphics should use the shared white pixel")
	}
}

func TestNewTextDefaults(t *testing.T) {
	n := NewText("text", "hello")
	assertNodeDefaults(t, n, "text", KindText)
	if n.Text == nil || n.Text.Content != "hello" {
		t.Fatal("text block not initialized")
	}
	if n.Text.HasStyle() {
		t.Error("style should be created lazily")
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, kind ItemKind) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Kind != kind {
		t.Errorf("Kind = %v, want %v", n.Kind, kind)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 {
		t.Errorf("Alpha = %v, want 1", n.Alpha)
	}
	if n.Color != (Color{1, 1, 1, 1}) {
		t.Errorf("Color = %v, want white", n.Color)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
}

// --- Unique IDs ---

func TestUniqueIDs(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewSprite("c", KindSprite, nil)
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Errorf("IDs should be unique: %d, %d, %d", a.ID, b.ID, c.ID)
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if len(parent.Children()) != 1 || parent.Children()[0] != child {
		t.Errorf("Children = %v, want [child]", parent.Children())
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")

	p1.AddChild(child)
	p2.AddChild(child)
	if len(p1.Children()) != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if len(p2.Children()) != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent != p2 {
		t.Error("child.Parent should be p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent)
}

func TestAddChildNilPanic(t *testing.T) {
	n := NewContainer("n")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	n.AddChild(nil)
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	parent.AddChild(a)
	parent.AddChild(b)

	parent.RemoveChild(a)
	if a.Parent != nil {
		t.Error("removed child should have nil parent")
	}
	if len(parent.Children()) != 1 || parent.Children()[0] != b {
		t.Errorf("Children = %v, want [b]", parent.Children())
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewContainer("orphan")
	n.RemoveFromParent()
	if n.Parent != nil {
		t.Error("orphan should stay parentless")
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewText("grandchild", "x")
	parent.AddChild(child)
	child.AddChild(grandchild)

	child.Dispose()

	if !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("child and grandchild should be disposed")
	}
	if len(parent.Children()) != 0 {
		t.Error("parent should have no children")
	}
	if grandchild.Text != nil {
		t.Error("text block should be released")
	}
	if child.ID != 0 {
		t.Errorf("ID = %d, want 0 after dispose", child.ID)
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewContainer("n")
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("node should be disposed")
	}
}
