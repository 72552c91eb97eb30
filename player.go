package reel

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Player runs a Composition as an ebiten.Game. It owns the playback clock
// and caps rendering to Config.FrameRate; ebiten never runs Draw twice at
// once, so at most one frame is in flight.
type Player struct {
	comp    *Composition
	backend *ImageBackend
	cfg     *Config

	length  float64
	current float64
	playing bool

	now        func() time.Time
	lastTick   time.Time
	lastRender time.Time
	redraw     bool

	snapshots []string
}

// NewPlayer creates a paused player at time 0. length is the playback
// duration used for looping; 0 plays forever.
func NewPlayer(comp *Composition, backend *ImageBackend, cfg *Config, length float64) *Player {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	backend.ClearColor = cfg.clearColor()
	comp.SetDebugMode(cfg.Debug)
	return &Player{
		comp:    comp,
		backend: backend,
		cfg:     cfg,
		length:  length,
		now:     time.Now,
		redraw:  true,
	}
}

// Play starts or resumes playback.
func (p *Player) Play() {
	if !p.playing {
		p.playing = true
		p.lastTick = p.now()
	}
}

// Pause stops the clock.
func (p *Player) Pause() {
	p.playing = false
}

// Playing reports whether the clock is running.
func (p *Player) Playing() bool {
	return p.playing
}

// Time returns the playback position in seconds.
func (p *Player) Time() float64 {
	return p.current
}

// Seek moves the playback position and forces the next frame to render.
func (p *Player) Seek(t float64) {
	p.current = math.Max(0, t)
	p.redraw = true
}

// advance moves the clock by dt seconds, looping or stopping at the end. A
// stopped clock rests just before length so the last frame still intersects
// the items ending there.
func (p *Player) advance(dt float64) {
	p.current += dt
	if p.length <= 0 || p.current < p.length {
		return
	}
	if p.cfg.Loop {
		p.current = math.Mod(p.current, p.length)
		return
	}
	p.current = math.Nextafter(p.length, 0)
	p.playing = false
}

// Update implements ebiten.Game. Space toggles playback, Home rewinds and
// F12 queues a snapshot.
func (p *Player) Update() error {
	p.handleKeys()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		p.Select(float64(x), float64(y))
	}
	if !p.playing {
		return nil
	}
	now := p.now()
	p.advance(now.Sub(p.lastTick).Seconds())
	p.lastTick = now
	return nil
}

// Draw implements ebiten.Game. With a frame rate cap, ticks between frames
// leave the screen untouched.
func (p *Player) Draw(screen *ebiten.Image) {
	if !p.dueFrame() {
		return
	}
	p.backend.Target = screen
	p.comp.RenderAtTime(p.current)
	p.flushSnapshots(screen)
}

func (p *Player) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if p.playing {
			p.Pause()
		} else {
			p.Play()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		p.Seek(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		p.Snapshot(p.cfg.Title)
	}
}

// Select makes the item drawn at screen point (x, y) the editing item, so it
// stays on screen while scrubbing. Selecting empty space clears it.
func (p *Player) Select(x, y float64) *Item {
	it := p.comp.ItemAt(x, y)
	p.comp.SetEditing(it)
	if it != nil {
		tracer().Infof("reel: selected %s", it.ID)
	}
	p.redraw = true
	return it
}

// dueFrame reports whether a frame should be rendered now.
func (p *Player) dueFrame() bool {
	now := p.now()
	if !p.redraw && p.cfg.FrameRate > 0 &&
		now.Sub(p.lastRender).Seconds() < 1/p.cfg.FrameRate {
		return false
	}
	p.redraw = false
	p.lastRender = now
	return true
}

// Layout implements ebiten.Game.
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.cfg.Width, p.cfg.Height
}

// Run opens a window and blocks until it is closed.
func (p *Player) Run() error {
	ebiten.SetWindowSize(p.cfg.Width, p.cfg.Height)
	ebiten.SetWindowTitle(p.cfg.Title)
	ebiten.SetScreenClearedEveryFrame(false)
	defer p.comp.Close()
	return ebiten.RunGame(p)
}
