package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// GeneratorConfig holds the output dimensions applied to every render.
type GeneratorConfig struct {
	Width              int     `toml:"width"`
	Height             int     `toml:"height"`
	FPS                int     `toml:"fps"`
	MaxDurationSeconds float64 `toml:"max_duration"`
}

// MaxDuration returns MaxDurationSeconds as a time.Duration.
func (g GeneratorConfig) MaxDuration() time.Duration {
	return time.Duration(g.MaxDurationSeconds * float64(time.Second))
}

// CaptionSettings controls caption layout.
type CaptionSettings struct {
	MaxLineChars int     `toml:"max_line_chars"`
	FontPath     string  `toml:"font_path"`
	FontSize     float64 `toml:"font_size"`
	Margin       int     `toml:"margin"`
}

// SpeechConfig selects and configures the text-to-speech backend.
type SpeechConfig struct {
	Engine     string `toml:"engine"`
	Language   string `toml:"language"`
	Slow       bool   `toml:"slow"`
	Voice      string `toml:"voice"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	APIKey     string `toml:"-"`
	EdgeBin    string `toml:"edge_bin"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// Config holds the full application configuration.
type Config struct {
	GeneratorConfig
	Caption CaptionSettings `toml:"caption"`
	Speech  SpeechConfig    `toml:"speech"`

	Color1          string `toml:"color1"`
	Color2          string `toml:"color2"`
	OutputDir       string `toml:"output_dir"`
	TempDir         string `toml:"temp_dir"`
	MaxConcurrent   int    `toml:"max_concurrent"`
	RateLimitPerMin int    `toml:"rate_limit"`
	FFmpegBin       string `toml:"ffmpeg_bin"`
	FFprobeBin      string `toml:"ffprobe_bin"`
}

// Default returns a Config with hardcoded defaults.
func Default() *Config {
	return &Config{
		GeneratorConfig: GeneratorConfig{
			Width:              1080,
			Height:             1920,
			FPS:                30,
			MaxDurationSeconds: 15,
		},
		Caption: CaptionSettings{
			MaxLineChars: 35,
			FontSize:     70,
			Margin:       200,
		},
		Speech: SpeechConfig{
			Engine:     "gtts",
			Language:   "en",
			Model:      "tts-1",
			EdgeBin:    "edge-tts",
			TimeoutSec: 60,
		},
		Color1:          "#1a1a2e",
		Color2:          "#16213e",
		OutputDir:       "output",
		MaxConcurrent:   1,
		RateLimitPerMin: 30,
		FFmpegBin:       "ffmpeg",
		FFprobeBin:      "ffprobe",
	}
}

// Load overlays the TOML file at path on top of the defaults.
// The file is only read; nothing is ever written back.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that every render depends on.
func (c *Config) Validate() error {
	if err := c.GeneratorConfig.Validate(); err != nil {
		return err
	}
	if c.Caption.MaxLineChars < 1 {
		return fmt.Errorf("max line chars must be positive, got %d", c.Caption.MaxLineChars)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.RateLimitPerMin < 1 {
		return fmt.Errorf("rate limit must be at least 1 start per minute, got %d", c.RateLimitPerMin)
	}
	return nil
}

// Validate checks dimensions, frame rate and duration cap.
func (g GeneratorConfig) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("dimensions must be positive, got %dx%d", g.Width, g.Height)
	}
	if g.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", g.FPS)
	}
	if g.MaxDurationSeconds <= 0 {
		return fmt.Errorf("max duration must be positive, got %g", g.MaxDurationSeconds)
	}
	return nil
}
