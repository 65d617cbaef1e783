package render

import (
	"fmt"
	"path/filepath"
	"time"

	"noface/internal/background"
	"noface/internal/config"
)

// Request is one validated render. Build it with NewRequest.
type Request struct {
	Quote       string
	OutputPath  string
	Color1      string
	Color2      string
	Width       int
	Height      int
	FPS         int
	MaxDuration time.Duration
}

// NewRequest validates its inputs and returns a Request with an absolute output path.
func NewRequest(quote, outputPath, color1, color2 string, cfg config.GeneratorConfig) (Request, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Request{}, fmt.Errorf("%w: %dx%d", background.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return Request{}, fmt.Errorf("%w: fps must be positive, got %d", background.ErrInvalidDimensions, cfg.FPS)
	}
	if cfg.MaxDurationSeconds <= 0 {
		return Request{}, fmt.Errorf("%w: max duration must be positive, got %g", background.ErrInvalidDimensions, cfg.MaxDurationSeconds)
	}
	if _, err := background.ParseColor(color1); err != nil {
		return Request{}, err
	}
	if _, err := background.ParseColor(color2); err != nil {
		return Request{}, err
	}
	if outputPath == "" {
		return Request{}, fmt.Errorf("output path is required")
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return Request{}, fmt.Errorf("resolve output path: %w", err)
	}

	return Request{
		Quote:       quote,
		OutputPath:  abs,
		Color1:      color1,
		Color2:      color2,
		Width:       cfg.Width,
		Height:      cfg.Height,
		FPS:         cfg.FPS,
		MaxDuration: cfg.MaxDuration(),
	}, nil
}

// Result is the outcome of one item of a batch.
type Result struct {
	Index      int
	Quote      string
	OutputPath string
	Succeeded  bool
	Err        error
}
