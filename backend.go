package reel

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Backend receives the live nodes of a frame. Clear is called once per frame
// before any Render; Render draws one node subtree on top of what is already
// there and must not clear.
type Backend interface {
	Clear()
	Render(n *Node)
}

// ImageBackend renders node subtrees onto an *ebiten.Image.
type ImageBackend struct {
	// Target is the image drawn onto. Nil disables drawing.
	Target     *ebiten.Image
	ClearColor Color

	op    ebiten.DrawImageOptions
	draws int
}

// NewImageBackend creates a backend drawing onto target with a black clear
// color.
func NewImageBackend(target *ebiten.Image) *ImageBackend {
	return &ImageBackend{Target: target, ClearColor: Color{0, 0, 0, 1}}
}

// Clear implements Backend.
func (b *ImageBackend) Clear() {
	b.draws = 0
	if b.Target == nil {
		return
	}
	b.Target.Fill(b.ClearColor.toRGBA())
}

// Render implements Backend.
func (b *ImageBackend) Render(n *Node) {
	b.traverse(n, identityTransform, 1)
}

// DrawCount returns the number of draw calls since the last Clear.
func (b *ImageBackend) DrawCount() int {
	return b.draws
}

// traverse walks the subtree depth-first, updating world transforms and
// drawing every visible node with content.
func (b *ImageBackend) traverse(n *Node, parentTransform [6]float64, parentAlpha float64) {
	if n == nil || n.disposed || !n.Visible {
		return
	}
	n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
	n.worldAlpha = parentAlpha * n.Alpha

	if b.Target != nil && n.worldAlpha > 0 {
		switch {
		case n.Text != nil:
			if img := n.Text.render(); img != nil {
				pad := n.Text.pad
				m := n.worldTransform
				m[4] -= m[0]*pad + m[2]*pad
				m[5] -= m[1]*pad + m[3]*pad
				b.draw(img, m, n)
			}
		case n.image != nil:
			b.draw(n.image, n.worldTransform, n)
		}
	}

	for _, child := range n.children {
		b.traverse(child, n.worldTransform, n.worldAlpha)
	}
}

func (b *ImageBackend) draw(img *ebiten.Image, m [6]float64, n *Node) {
	op := &b.op
	op.GeoM = affineGeoM(m)
	op.ColorScale.Reset()
	a := float32(n.Color.A * n.worldAlpha)
	op.ColorScale.Scale(float32(n.Color.R)*a, float32(n.Color.G)*a, float32(n.Color.B)*a, a)
	op.Blend = n.BlendMode.EbitenBlend()
	b.Target.DrawImage(img, op)
	b.draws++
}

// affineGeoM converts a [6]float64 affine matrix into an ebiten.GeoM.
func affineGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// --- Shared images ---

// whitePixelImage and magentaImage are lazy singletons (no sync.Once; images
// are only created on the render thread).
var (
	whitePixelImage *ebiten.Image
	magentaImage    *ebiten.Image
)

// WhitePixel returns a shared 1x1 white image.
func WhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// placeholderImage returns the shared magenta image shown while a resource
// loads or after it failed to load.
func placeholderImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(16, 16)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// solidRect creates a white w x h image.
func solidRect(w, h int) *ebiten.Image {
	if w <= 0 || h <= 0 {
		return WhitePixel()
	}
	img := ebiten.NewImage(w, h)
	img.Fill(color.White)
	return img
}
