// Package speech turns quote text into narration audio through a
// text-to-speech backend and measures the result.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// ErrSynthesisUnavailable is returned when the speech backend cannot produce audio.
var ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")

// Narration is a synthesized audio file and its playable duration.
type Narration struct {
	Path     string
	Duration time.Duration
}

// Backend writes spoken text as an audio file.
type Backend interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// DurationProber measures audio files.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Synthesizer pairs a Backend with a DurationProber.
type Synthesizer struct {
	backend Backend
	prober  DurationProber
}

// NewSynthesizer returns a Synthesizer using backend and prober.
func NewSynthesizer(backend Backend, prober DurationProber) *Synthesizer {
	return &Synthesizer{backend: backend, prober: prober}
}

// Synthesize writes narration for text to outputPath and returns its duration.
// Backend and measurement failures are wrapped with ErrSynthesisUnavailable.
// No retries are made.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPath string) (Narration, error) {
	start := time.Now()
	if err := s.backend.Synthesize(ctx, text, outputPath); err != nil {
		if errors.Is(err, ErrSynthesisUnavailable) {
			return Narration{}, err
		}
		return Narration{}, fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return Narration{}, fmt.Errorf("%w: stat output: %w", ErrSynthesisUnavailable, err)
	}
	if info.Size() == 0 {
		return Narration{}, fmt.Errorf("%w: backend wrote an empty file", ErrSynthesisUnavailable)
	}

	dur, err := s.prober.Duration(ctx, outputPath)
	if err != nil {
		return Narration{}, fmt.Errorf("%w: measure narration: %w", ErrSynthesisUnavailable, err)
	}

	slog.Debug("narration synthesized",
		"bytes", info.Size(),
		"duration", dur.Round(time.Millisecond).String(),
		"elapsed", time.Since(start).Round(time.Millisecond).String())

	return Narration{Path: outputPath, Duration: dur}, nil
}
