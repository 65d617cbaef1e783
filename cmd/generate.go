package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"noface/internal/config"
	"noface/internal/render"
	"noface/internal/worker"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of videos from a quotes file",
	Long: `Generate picks quotes at random from a file with one quote per line and
renders each into outputDir/motivational_video_<n>.mp4. A failing video is
reported and skipped; the command fails only when every video failed.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	genFlags      renderFlags
	numVideos     int
	quotesFile    string
	outputDir     string
	maxConcurrent int
	rateLimit     int
)

func init() {
	defaults := config.Default()

	genFlags.register(generateCmd.Flags())
	generateCmd.Flags().IntVarP(&numVideos, "num-videos", "n", 1, "number of videos to generate")
	generateCmd.Flags().StringVarP(&quotesFile, "quotes-file", "f", "quotes.txt", "file with one quote per line")
	generateCmd.Flags().StringVarP(&outputDir, "output-dir", "o", defaults.OutputDir, "output directory for videos")
	generateCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrent, "videos rendered in parallel")
	generateCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.RateLimitPerMin, "video starts per minute when parallel")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if numVideos < 1 {
		return fmt.Errorf("--num-videos must be at least 1, got %d", numVideos)
	}

	cfg, err := genFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent = maxConcurrent
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimitPerMin = rateLimit
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	quotes, err := loadQuotes(quotesFile)
	if err != nil {
		return err
	}
	slog.Info("quotes loaded", "count", len(quotes), "file", quotesFile)

	selected := selectQuotes(quotes, numVideos, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	renderer, prober, err := buildRenderer(cfg)
	if err != nil {
		return err
	}

	// Setup signal handling for graceful cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("generating videos", "count", len(selected), "output_dir", cfg.OutputDir)
	results := worker.RenderBatch(ctx, renderer, selected, cfg.GeneratorConfig, worker.Options{
		OutputDir:       cfg.OutputDir,
		Color1:          cfg.Color1,
		Color2:          cfg.Color2,
		MaxConcurrent:   cfg.MaxConcurrent,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	for _, res := range results {
		if res.Succeeded {
			prober.LogMediaInfo(ctx, res.OutputPath)
		}
	}
	printSummary(cmd, results)

	if ok, _ := worker.Summarize(results); ok == 0 {
		return fmt.Errorf("all %d videos failed", len(results))
	}
	return nil
}

// loadQuotes reads the non-empty, trimmed lines of path.
func loadQuotes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quotes file: %w", err)
	}
	defer f.Close()

	var quotes []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			quotes = append(quotes, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read quotes file: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quotes in %s", path)
	}
	return quotes, nil
}

// selectQuotes samples n quotes: without replacement when n fits in the
// pool, with replacement otherwise.
func selectQuotes(quotes []string, n int, rng *rand.Rand) []string {
	selected := make([]string, n)
	if n > len(quotes) {
		for i := range selected {
			selected[i] = quotes[rng.IntN(len(quotes))]
		}
		return selected
	}
	for i, j := range rng.Perm(len(quotes))[:n] {
		selected[i] = quotes[j]
	}
	return selected
}

func printSummary(cmd *cobra.Command, results []render.Result) {
	if quiet {
		return
	}
	ok, failed := worker.Summarize(results)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nGenerated %d/%d videos", ok, len(results))
	if failed > 0 {
		fmt.Fprintf(out, " (%d failed)", failed)
	}
	fmt.Fprintln(out)
	for _, res := range results {
		if res.Succeeded {
			fmt.Fprintf(out, "  ok    %s\n", res.OutputPath)
		} else {
			fmt.Fprintf(out, "  FAIL  %s  [%s] %v\n", res.OutputPath, render.Kind(res.Err), res.Err)
		}
	}
}
