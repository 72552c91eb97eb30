package reel

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) step(d time.Duration) { c.t = c.t.Add(d) }

func newTestPlayer(cfg *Config, length float64) (*Player, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	comp := NewComposition(NewMemoryTimeline(), &recordingBackend{})
	p := NewPlayer(comp, NewImageBackend(nil), cfg, length)
	p.now = clock.now
	return p, clock
}

func TestPlayerAdvancesWhilePlaying(t *testing.T) {
	p, clock := newTestPlayer(nil, 0)

	clock.step(time.Second)
	_ = p.Update()
	assertNear(t, "paused", p.Time(), 0)

	p.Play()
	clock.step(1500 * time.Millisecond)
	_ = p.Update()
	assertNear(t, "playing", p.Time(), 1.5)

	p.Pause()
	clock.step(time.Second)
	_ = p.Update()
	assertNear(t, "paused again", p.Time(), 1.5)
}

func TestPlayerLoops(t *testing.T) {
	p, _ := newTestPlayer(nil, 4)
	p.playing = true
	p.advance(5)
	assertNear(t, "looped", p.Time(), 1)
	if !p.Playing() {
		t.Error("looping player should keep playing")
	}
}

func TestPlayerStopsAtEndWithoutLoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Loop = false
	p, _ := newTestPlayer(cfg, 4)
	p.playing = true
	p.advance(5)
	assertNear(t, "clamped", p.Time(), 4)
	if p.Playing() {
		t.Error("player should stop at the end")
	}
}

func TestPlayerLastFrameStillShowsEndingItems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Loop = false
	last := clipItem("last", KindGraphics, 0, 2, 2)
	tl := NewMemoryTimeline(last)
	comp, _ := newTestComposition(last)
	p := NewPlayer(comp, NewImageBackend(nil), cfg, tl.End())
	p.playing = true
	p.advance(10)

	if p.Time() >= tl.End() {
		t.Fatalf("stopped at %v, want just before %v", p.Time(), tl.End())
	}
	comp.RenderAtTime(p.Time())
	assertIDs(t, renderedIDs(comp), "last")
}

func TestPlayerSelectPinsItem(t *testing.T) {
	box := clipItem("box", KindGraphics, 0, 0, 2)
	box.Data["width"] = 10.0
	box.Data["height"] = 10.0
	comp := newImageComposition(box)
	p := NewPlayer(comp, NewImageBackend(nil), nil, 10)
	comp.RenderAtTime(1)

	if it := p.Select(5, 5); it != box || comp.Editing() != box {
		t.Fatalf("Select = %v, editing = %v", it, comp.Editing())
	}
	comp.RenderAtTime(5)
	assertIDs(t, renderedIDs(comp), "box")

	if it := p.Select(50, 50); it != nil || comp.Editing() != nil {
		t.Errorf("Select on empty space = %v, editing = %v", it, comp.Editing())
	}
}

func TestPlayerSeek(t *testing.T) {
	p, _ := newTestPlayer(nil, 10)
	p.Seek(-3)
	assertNear(t, "clamped seek", p.Time(), 0)
	p.Seek(7)
	assertNear(t, "seek", p.Time(), 7)
}

func TestPlayerFrameRateCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = 10
	p, clock := newTestPlayer(cfg, 0)

	if !p.dueFrame() {
		t.Fatal("first frame should render")
	}
	clock.step(50 * time.Millisecond)
	if p.dueFrame() {
		t.Error("frame before the interval should be skipped")
	}
	clock.step(60 * time.Millisecond)
	if !p.dueFrame() {
		t.Error("frame after the interval should render")
	}
	p.Seek(1)
	if !p.dueFrame() {
		t.Error("seek should force a frame")
	}
}

func TestPlayerUncappedRendersEveryTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = 0
	p, _ := newTestPlayer(cfg, 0)
	for i := 0; i < 3; i++ {
		if !p.dueFrame() {
			t.Fatalf("tick %d skipped", i)
		}
	}
}

func TestPlayerLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 320, 200
	p, _ := newTestPlayer(cfg, 0)
	w, h := p.Layout(1000, 1000)
	if w != 320 || h != 200 {
		t.Errorf("Layout = %dx%d", w, h)
	}
}
