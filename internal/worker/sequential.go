package worker

import (
	"context"

	"noface/internal/config"
	"noface/internal/render"
)

// processSequential renders items one at a time.
func processSequential(ctx context.Context, r ItemRenderer, results []render.Result, cfg config.GeneratorConfig, opts Options) {
	for i := range results {
		if err := ctx.Err(); err != nil {
			cancelResult(&results[i], err)
			continue
		}
		renderItem(ctx, r, &results[i], len(results), cfg, opts)
	}
}
