// Package render composes one vertical video from a quote: gradient frame,
// wrapped caption, narration and the final encode.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"noface/internal/background"
	"noface/internal/caption"
	"noface/internal/config"
	"noface/internal/ffmpeg"
	"noface/internal/speech"
)

// Padding is the silence added after the narration before the video ends.
const Padding = time.Second

const (
	narrationFile = "narration.mp3"
	frameFile     = "frame.png"
)

// Narrator produces narration audio for text.
type Narrator interface {
	Synthesize(ctx context.Context, text, outputPath string) (speech.Narration, error)
}

// Encoder muxes a still frame and narration into a video file.
type Encoder interface {
	Encode(ctx context.Context, job ffmpeg.EncodeJob) error
}

// Options configures caption layout and the workspace location.
type Options struct {
	MaxLineChars int
	Caption      caption.DrawOptions
	// TempDir is where workspaces are created; empty means os.TempDir().
	TempDir string
}

// OptionsFromConfig maps the application config onto renderer options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxLineChars: cfg.Caption.MaxLineChars,
		Caption: caption.DrawOptions{
			FontPath: cfg.Caption.FontPath,
			FontSize: cfg.Caption.FontSize,
			Margin:   cfg.Caption.Margin,
		},
		TempDir: cfg.TempDir,
	}
}

// Renderer turns quotes into finished videos. It is safe for concurrent use
// when its Narrator and Encoder are.
type Renderer struct {
	narrator Narrator
	encoder  Encoder
	opts     Options
}

// New returns a Renderer.
func New(narrator Narrator, encoder Encoder, opts Options) *Renderer {
	if opts.MaxLineChars < 1 {
		opts.MaxLineChars = config.Default().Caption.MaxLineChars
	}
	return &Renderer{narrator: narrator, encoder: encoder, opts: opts}
}

// RenderOne renders quote into outputPath and returns the path written.
// All intermediate files live in a private workspace that is removed on
// return, and a failed render leaves no output file behind.
func (r *Renderer) RenderOne(ctx context.Context, quote, outputPath, color1, color2 string, cfg config.GeneratorConfig) (string, error) {
	req, err := NewRequest(quote, outputPath, color1, color2, cfg)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	log := slog.With("render_id", id)
	start := time.Now()

	var written string
	err = withWorkspace(r.opts.TempDir, id[:8], func(ws *Workspace) error {
		capt := caption.Wrap(req.Quote, r.opts.MaxLineChars)
		if len(capt) == 0 {
			return fmt.Errorf("%w: quote has no words", ErrAssetMissing)
		}
		log.Debug("caption wrapped", "lines", len(capt))

		bg, err := background.Synthesize(req.Width, req.Height, req.Color1, req.Color2)
		if err != nil {
			return err
		}

		narration, err := r.narrator.Synthesize(ctx, req.Quote, ws.Path(narrationFile))
		if err != nil {
			return err
		}
		log.Debug("narration ready", "duration", narration.Duration.Round(time.Millisecond).String())

		written, err = r.Render(ctx, req, ws, bg, capt, narration)
		return err
	})
	if err != nil {
		return "", err
	}

	log.Debug("render finished", "output", written, "elapsed", time.Since(start).Round(time.Millisecond).String())
	return written, nil
}

// Render draws the caption onto bg, writes the frame into ws and encodes it
// with the narration. The video runs for the narration plus Padding, capped
// at the request's maximum duration. On failure the output file is removed.
func (r *Renderer) Render(ctx context.Context, req Request, ws *Workspace, bg *image.RGBA, capt caption.Caption, narration speech.Narration) (string, error) {
	if err := checkAssets(req, bg, capt, narration); err != nil {
		return "", err
	}

	if err := caption.Draw(bg, capt, r.opts.Caption); err != nil {
		return "", fmt.Errorf("draw caption: %w", err)
	}
	framePath := ws.Path(frameFile)
	if err := background.WritePNG(framePath, bg); err != nil {
		return "", err
	}

	job := ffmpeg.EncodeJob{
		ImagePath:  framePath,
		AudioPath:  narration.Path,
		OutputPath: req.OutputPath,
		FPS:        req.FPS,
		Duration:   renderDuration(narration.Duration, req.MaxDuration),
		WorkDir:    ws.Dir(),
	}
	if err := r.encoder.Encode(ctx, job); err != nil {
		removeOutput(req.OutputPath)
		if errors.Is(err, ffmpeg.ErrEncodingFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ffmpeg.ErrEncodingFailed, err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil || info.Size() == 0 {
		removeOutput(req.OutputPath)
		return "", fmt.Errorf("%w: encoder produced no output at %s", ffmpeg.ErrEncodingFailed, req.OutputPath)
	}
	return req.OutputPath, nil
}

func checkAssets(req Request, bg *image.RGBA, capt caption.Caption, narration speech.Narration) error {
	if len(capt) == 0 {
		return fmt.Errorf("%w: empty caption", ErrAssetMissing)
	}
	if bg == nil {
		return fmt.Errorf("%w: no background", ErrAssetMissing)
	}
	if b := bg.Bounds(); b.Dx() != req.Width || b.Dy() != req.Height {
		return fmt.Errorf("%w: background is %dx%d, want %dx%d", ErrAssetMissing, b.Dx(), b.Dy(), req.Width, req.Height)
	}
	if narration.Duration <= 0 {
		return fmt.Errorf("%w: narration has no duration", ErrAssetMissing)
	}
	info, err := os.Stat(narration.Path)
	if err != nil {
		return fmt.Errorf("%w: narration: %w", ErrAssetMissing, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: narration file is empty", ErrAssetMissing)
	}
	return nil
}

// renderDuration returns narration+Padding, capped at limit.
func renderDuration(narration, limit time.Duration) time.Duration {
	return min(narration+Padding, limit)
}

func removeOutput(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not remove partial output", "path", path, "err", err)
	}
}
