package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"noface/internal/config"
	"noface/internal/ffmpeg"
	"noface/internal/render"
	"noface/internal/speech"
)

// buildRenderer wires the speech backend, ffprobe and ffmpeg into a Renderer.
func buildRenderer(cfg *config.Config) (*render.Renderer, *ffmpeg.Prober, error) {
	if !ffmpeg.Available(cfg.FFmpegBin) {
		slog.Warn("ffmpeg not found in PATH, encoding will fail", "bin", cfg.FFmpegBin)
	}
	if !ffmpeg.Available(cfg.FFprobeBin) {
		slog.Warn("ffprobe not found in PATH, narration cannot be measured", "bin", cfg.FFprobeBin)
	}

	backend, err := speech.NewBackend(cfg.Speech)
	if err != nil {
		return nil, nil, fmt.Errorf("speech backend: %w", err)
	}
	slog.Debug("speech backend ready", "engine", cfg.Speech.Engine, "lang", cfg.Speech.Language, "voice", cfg.Speech.VoiceFor())

	prober := ffmpeg.NewProber(cfg.FFprobeBin)
	encoder := ffmpeg.NewEncoder(cfg.FFmpegBin)
	encoder.Progress = func(done, total time.Duration) {
		pct := 100.0
		if total > 0 {
			pct = min(done.Seconds()/total.Seconds()*100, 100)
		}
		slog.Debug("encoding progress", "percent", fmt.Sprintf("%.1f%%", pct))
	}

	narrator := speech.NewSynthesizer(backend, prober)
	return render.New(narrator, encoder, render.OptionsFromConfig(cfg)), prober, nil
}
