package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// MediaInfo holds duration and stream information from ffprobe.
type MediaInfo struct {
	Duration time.Duration
	Codec    string
	Width    int
	Height   int
}

// Available returns true if bin is on the PATH.
func Available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func parseProbe(out []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err)
	}

	info := &MediaInfo{
		Duration: time.Duration(secs * float64(time.Second)),
		Codec:    "N/A",
	}
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width, info.Height = s.Width, s.Height
			}
		case "audio":
			if info.Codec == "N/A" && s.CodecName != "" {
				info.Codec = s.CodecName
			}
		}
	}
	return info, nil
}

// Prober measures media files with ffprobe.
type Prober struct {
	Bin string
}

// NewProber returns a Prober using the given ffprobe binary.
func NewProber(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{Bin: bin}
}

// Probe returns duration and stream information for path.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	bin, err := exec.LookPath(p.Bin)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		bin,
		"-v", "error",
		"-show_entries", "stream=codec_type,codec_name,width,height:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

// Duration returns the playable duration of path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	info, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// LogMediaInfo logs file size and media information for a rendered file.
func (p *Prober) LogMediaInfo(ctx context.Context, path string) *MediaInfo {
	stat, err := os.Stat(path)
	if err != nil {
		slog.Warn("cannot stat file", "path", path, "err", err)
		return nil
	}

	attrs := []any{
		"file", filepath.Base(path),
		"size_mb", fmt.Sprintf("%.2f", float64(stat.Size())/(1024*1024)),
	}

	info, err := p.Probe(ctx, path)
	if err == nil {
		attrs = append(attrs,
			"duration", info.Duration.Round(time.Millisecond).String(),
			"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height),
			"audio_codec", info.Codec)
	}

	slog.Info("video written", attrs...)
	return info
}
