package reel

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// kawaseBlur blurs an image with a chain of half-size downscales followed by
// the matching upscales. Bilinear filtering during DrawImage does the work.
// The scratch images are kept between calls and resized as needed.
type kawaseBlur struct {
	temps []*ebiten.Image
	op    ebiten.DrawImageOptions
}

// blurPasses returns the number of halvings for a blur radius: log2(radius),
// at least 1.
func blurPasses(radius float64) int {
	if radius <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(radius)))
}

// apply draws src blurred by radius pixels onto dst, which must have the
// same size as src. A radius of 0 copies src unchanged.
func (b *kawaseBlur) apply(src, dst *ebiten.Image, radius float64) {
	if radius <= 0 {
		b.op.GeoM.Reset()
		b.op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, &b.op)
		return
	}

	passes := blurPasses(radius)
	for len(b.temps) < passes {
		b.temps = append(b.temps, nil)
	}
	for i := passes; i < len(b.temps); i++ {
		if b.temps[i] != nil {
			b.temps[i].Deallocate()
			b.temps[i] = nil
		}
	}
	b.temps = b.temps[:passes]

	size := src.Bounds().Size()
	cur := src
	for i := range b.temps {
		size.X = max(size.X/2, 1)
		size.Y = max(size.Y/2, 1)
		if t := b.temps[i]; t == nil || t.Bounds().Size() != size {
			if t != nil {
				t.Deallocate()
			}
			b.temps[i] = ebiten.NewImage(size.X, size.Y)
		} else {
			t.Clear()
		}
		b.scaleInto(cur, b.temps[i])
		cur = b.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		b.temps[i].Clear()
		b.scaleInto(cur, b.temps[i])
		cur = b.temps[i]
	}
	b.scaleInto(cur, dst)
}

// scaleInto stretches src over the whole of dst with linear filtering.
func (b *kawaseBlur) scaleInto(src, dst *ebiten.Image) {
	sb, db := src.Bounds(), dst.Bounds()
	b.op.GeoM.Reset()
	b.op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	b.op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, &b.op)
}

func (b *kawaseBlur) release() {
	for _, t := range b.temps {
		if t != nil {
			t.Deallocate()
		}
	}
	b.temps = nil
}
