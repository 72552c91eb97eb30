package reel

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// AssetLoader fetches and decodes the resource an item refers to. It is
// called off the render thread.
type AssetLoader interface {
	LoadAsset(ctx context.Context, ref string) (image.Image, error)
}

// AssetLoaderFunc adapts a function to AssetLoader.
type AssetLoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// LoadAsset implements AssetLoader.
func (f AssetLoaderFunc) LoadAsset(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}

// FileAssets loads images from the file system. Relative references are
// resolved against Root. Images larger than MaxWidth x MaxHeight are scaled
// down to fit, preserving the aspect ratio; zero disables the limit.
type FileAssets struct {
	Root      string
	MaxWidth  int
	MaxHeight int
}

// LoadAsset implements AssetLoader.
func (fa *FileAssets) LoadAsset(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := ref
	if !filepath.IsAbs(path) && fa.Root != "" {
		path = filepath.Join(fa.Root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reel: failed to open asset %q: %w", ref, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reel: failed to decode asset %q: %w", ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fitImage(img, fa.MaxWidth, fa.MaxHeight), nil
}

// fitImage scales img down to fit within maxW x maxH using Catmull-Rom.
// Images that already fit are returned unchanged.
func fitImage(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return img
	}
	if maxW <= 0 {
		maxW = width
	}
	if maxH <= 0 {
		maxH = height
	}
	if width <= maxW && height <= maxH {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxW)/float64(maxH) > ratio {
		// Height is the limiting factor
		width = int(float64(maxH) * ratio)
		height = maxH
	} else {
		height = int(float64(maxW) / ratio)
		width = maxW
	}
	width = max(width, 1)
	height = max(height, 1)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
