package reel

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Snapshot queues a PNG capture of the next rendered frame. The file is
// written to Config.SnapshotDir as "<label>_<time>.png", where time is the
// playback position in milliseconds.
func (p *Player) Snapshot(label string) {
	p.snapshots = append(p.snapshots, label)
	p.redraw = true
}

// flushSnapshots writes every queued snapshot of screen. Failures are traced
// and dropped.
func (p *Player) flushSnapshots(screen *ebiten.Image) {
	if len(p.snapshots) == 0 {
		return
	}
	defer func() { p.snapshots = p.snapshots[:0] }()

	dir := p.cfg.SnapshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tracer().Errorf("reel: snapshot: %v", err)
		return
	}

	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	img := unpremultiply(pix, b.Dx(), b.Dy())

	ms := int(p.current * 1000)
	for _, label := range p.snapshots {
		path := filepath.Join(dir, fmt.Sprintf("%s_%06d.png", sanitizeLabel(label), ms))
		if err := writePNG(path, img); err != nil {
			tracer().Errorf("reel: snapshot: %v", err)
			continue
		}
		tracer().Infof("reel: snapshot written to %s", path)
	}
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything else
// with '_' and names empty labels "frame".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
