package reel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("title: demo\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.Title != "demo" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Width != def.Width || cfg.Height != def.Height || cfg.FrameRate != def.FrameRate || !cfg.Loop {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
width: 640
height: 360
frame_rate: 0
clear_color: "#102030"
max_asset_size: 512
loop: false
debug: true
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 360 || cfg.FrameRate != 0 || cfg.MaxAssetSize != 512 || cfg.Loop || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.clearColor().Hex(); got != "#102030" {
		t.Errorf("clear color = %s", got)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	for _, doc := range []string{
		"width: 0",
		"height: -1",
		"frame_rate: -5",
		"clear_color: nope",
		"width: [",
	} {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("ParseConfig(%q) succeeded", doc)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reel.yaml")
	if err := os.WriteFile(path, []byte("title: file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Title != "file" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if _, err := LoadConfig(path + ".missing"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
