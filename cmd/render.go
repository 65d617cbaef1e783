package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <quote>",
	Short: "Render a single quote to a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var (
	renFlags  renderFlags
	renderOut string
)

func init() {
	renFlags.register(renderCmd.Flags())
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "video.mp4", "output MP4 path")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := renFlags.resolve(cmd)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(renderOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	renderer, prober, err := buildRenderer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := renderer.RenderOne(ctx, args[0], renderOut, cfg.Color1, cfg.Color2, cfg.GeneratorConfig)
	if err != nil {
		return err
	}
	prober.LogMediaInfo(ctx, path)

	if !quiet {
		slog.Info("done", "path", path)
	}
	return nil
}
