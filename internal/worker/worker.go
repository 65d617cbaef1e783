// Package worker renders batches of quotes with per-item failure isolation.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"noface/internal/config"
	"noface/internal/render"
)

// ItemRenderer renders a single quote to a video file.
type ItemRenderer interface {
	RenderOne(ctx context.Context, quote, outputPath, color1, color2 string, cfg config.GeneratorConfig) (string, error)
}

// Options configures the batch run. RateLimitPerMin caps item starts per
// minute when MaxConcurrent > 1.
type Options struct {
	OutputDir       string
	Color1          string
	Color2          string
	MaxConcurrent   int
	RateLimitPerMin int
}

// OutputName returns the file name for the item at zero-based index i.
func OutputName(i int) string {
	return fmt.Sprintf("motivational_video_%d.mp4", i+1)
}

// RenderBatch renders every quote into opts.OutputDir and returns one
// Result per quote in input order. A failed item never stops the batch.
// Items not started before ctx is done fail with the context error.
func RenderBatch(ctx context.Context, r ItemRenderer, quotes []string, cfg config.GeneratorConfig, opts Options) []render.Result {
	results := make([]render.Result, len(quotes))
	for i, q := range quotes {
		results[i] = render.Result{
			Index:      i,
			Quote:      q,
			OutputPath: filepath.Join(opts.OutputDir, OutputName(i)),
		}
	}
	if len(quotes) == 0 {
		return results
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		err = fmt.Errorf("create output dir: %w", err)
		slog.Error("batch aborted", "dir", opts.OutputDir, "err", err)
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	start := time.Now()
	if opts.MaxConcurrent > 1 && len(quotes) > 1 {
		processConcurrent(ctx, r, results, cfg, opts)
	} else {
		processSequential(ctx, r, results, cfg, opts)
	}

	ok, failed := Summarize(results)
	slog.Info("batch finished",
		"succeeded", ok,
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return results
}

// Summarize counts succeeded and failed results.
func Summarize(results []render.Result) (succeeded, failed int) {
	for _, res := range results {
		if res.Succeeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// renderItem runs one item and records the outcome in res.
func renderItem(ctx context.Context, r ItemRenderer, res *render.Result, total int, cfg config.GeneratorConfig, opts Options) {
	item := fmt.Sprintf("%d/%d", res.Index+1, total)
	slog.Info("rendering video", "item", item, "output", filepath.Base(res.OutputPath))

	path, err := r.RenderOne(ctx, res.Quote, res.OutputPath, opts.Color1, opts.Color2, cfg)
	if err != nil {
		res.Err = err
		slog.Error("video failed", "item", item, "kind", render.Kind(err), "err", err)
		return
	}

	res.OutputPath = path
	res.Succeeded = true
	slog.Info("video completed", "item", item, "path", path)
}

func cancelResult(res *render.Result, err error) {
	res.Err = fmt.Errorf("not started: %w", err)
}
