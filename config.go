package reel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the player settings.
type Config struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// FrameRate caps rendering; 0 renders every tick.
	FrameRate  float64 `yaml:"frame_rate"`
	ClearColor string  `yaml:"clear_color"`
	AssetRoot  string  `yaml:"asset_root"`
	// MaxAssetSize bounds both sides of loaded images; 0 disables scaling.
	MaxAssetSize int    `yaml:"max_asset_size"`
	SnapshotDir  string `yaml:"snapshot_dir"`
	Debug        bool   `yaml:"debug"`
	Loop         bool   `yaml:"loop"`
}

// DefaultConfig returns the settings used for missing fields.
func DefaultConfig() *Config {
	return &Config{
		Title:       "reel",
		Width:       1280,
		Height:      720,
		FrameRate:   30,
		ClearColor:  "#000000",
		AssetRoot:   ".",
		SnapshotDir: "snapshots",
		Loop:        true,
	}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reel: failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("reel: failed to parse config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("reel: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate < 0 {
		return fmt.Errorf("reel: invalid frame rate %v", cfg.FrameRate)
	}
	if _, err := ParseHexColor(cfg.ClearColor); err != nil {
		return err
	}
	return nil
}

// clearColor returns the parsed clear color, black on error.
func (cfg *Config) clearColor() Color {
	c, err := ParseHexColor(cfg.ClearColor)
	if err != nil {
		return Color{0, 0, 0, 1}
	}
	return c
}
