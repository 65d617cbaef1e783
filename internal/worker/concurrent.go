package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"noface/internal/config"
	"noface/internal/render"
)

// processConcurrent renders items with bounded parallelism and a start-rate
// limit. Each goroutine owns exactly one slot of results.
func processConcurrent(ctx context.Context, r ItemRenderer, results []render.Result, cfg config.GeneratorConfig, opts Options) {
	slog.Info("starting concurrent rendering",
		"items", len(results),
		"max_concurrent", opts.MaxConcurrent,
		"starts_per_min", opts.RateLimitPerMin)

	limit := rate.Inf
	if opts.RateLimitPerMin > 0 {
		// One token per item start; tokens per second = starts per minute / 60.
		limit = rate.Limit(float64(opts.RateLimitPerMin) / 60.0)
	}
	limiter := rate.NewLimiter(limit, 1)

	// Item goroutines never return an error, so gctx only ends with ctx.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrent)

	for i := range results {
		res := &results[i]
		if err := ctx.Err(); err != nil {
			cancelResult(res, err)
			continue
		}
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				cancelResult(res, err)
				return nil
			}
			renderItem(gctx, r, res, len(results), cfg, opts)
			return nil
		})
	}
	g.Wait()
}
