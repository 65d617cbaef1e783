package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Edge synthesizes speech with the edge-tts command line tool.
type Edge struct {
	Bin     string
	Voice   string
	Timeout time.Duration
}

// NewEdge returns a backend running bin with voice.
func NewEdge(bin, voice string, timeout time.Duration) *Edge {
	if bin == "" {
		bin = "edge-tts"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Edge{Bin: bin, Voice: voice, Timeout: timeout}
}

// Synthesize runs edge-tts once; the caller owns any retry policy.
func (e *Edge) Synthesize(ctx context.Context, text, outputPath string) error {
	bin, err := exec.LookPath(e.Bin)
	if err != nil {
		return fmt.Errorf("%w: %s not found: %w", ErrSynthesisUnavailable, e.Bin, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	// Joined form so a quote starting with "-" is not parsed as an option.
	args := []string{"--text=" + text, "--write-media", outputPath}
	if e.Voice != "" {
		args = append(args, "--voice", e.Voice)
	}

	output, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: edge-tts timed out after %s", ErrSynthesisUnavailable, e.Timeout)
		}
		return fmt.Errorf("%w: edge-tts failed: %w, output: %s", ErrSynthesisUnavailable, err, string(output))
	}
	return nil
}
