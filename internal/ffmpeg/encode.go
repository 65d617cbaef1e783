package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// ErrEncodingFailed is returned when ffmpeg is missing or exits non-zero.
var ErrEncodingFailed = errors.New("encoding failed")

// ProgressFunc receives the encoded position and the target duration.
type ProgressFunc func(done, total time.Duration)

// EncodeJob describes one still-image-plus-narration encode.
type EncodeJob struct {
	ImagePath  string
	AudioPath  string
	OutputPath string
	FPS        int
	Duration   time.Duration
	// WorkDir is ffmpeg's working directory; empty keeps the caller's.
	WorkDir string
}

// Encoder runs ffmpeg to produce H.264/AAC MP4 files.
type Encoder struct {
	Bin      string
	Progress ProgressFunc
}

// NewEncoder returns an Encoder using the given ffmpeg binary.
func NewEncoder(bin string) *Encoder {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Encoder{Bin: bin}
}

// Args returns the ffmpeg arguments for job, without the program name.
func (e *Encoder) Args(job EncodeJob) []string {
	secs := strconv.FormatFloat(job.Duration.Seconds(), 'f', 3, 64)

	image := ffmpeggo.Input(job.ImagePath, ffmpeggo.KwArgs{
		"loop":      1,
		"framerate": job.FPS,
	})
	audio := ffmpeggo.Input(job.AudioPath)

	stream := ffmpeggo.Output([]*ffmpeggo.Stream{image, audio}, job.OutputPath, ffmpeggo.KwArgs{
		"c:v":      "libx264",
		"tune":     "stillimage",
		"pix_fmt":  "yuv420p",
		"r":        job.FPS,
		"vf":       "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"c:a":      "aac",
		"b:a":      "192k",
		"t":        secs,
		"movflags": "+faststart",
	})

	if e.Progress != nil {
		stream = stream.GlobalArgs("-progress", "pipe:1", "-nostats")
	}
	// GlobalArgs returns a fresh stream, so -y is requested on the final one.
	return stream.OverWriteOutput().GetArgs()
}

// Encode runs ffmpeg for job. Failures wrap ErrEncodingFailed.
func (e *Encoder) Encode(ctx context.Context, job EncodeJob) error {
	bin, err := exec.LookPath(e.Bin)
	if err != nil {
		return fmt.Errorf("%w: %s not found: %v", ErrEncodingFailed, e.Bin, err)
	}

	cmd := exec.CommandContext(ctx, bin, e.Args(job)...)
	cmd.Dir = job.WorkDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if e.Progress != nil {
		cmd.Stdout = &progressWriter{total: job.Duration, callback: e.Progress}
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v\n%s", ErrEncodingFailed, err, tail(stderr.String(), 20))
	}
	return nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// progressWriter parses ffmpeg's -progress key=value stream.
type progressWriter struct {
	total    time.Duration
	callback ProgressFunc
	partial  []byte
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.partial = append(pw.partial, p...)
	for {
		i := bytes.IndexByte(pw.partial, '\n')
		if i < 0 {
			break
		}
		pw.handleLine(string(bytes.TrimSpace(pw.partial[:i])))
		pw.partial = pw.partial[i+1:]
	}
	return len(p), nil
}

func (pw *progressWriter) handleLine(line string) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return
	}
	switch key {
	// Both keys carry microseconds.
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return
		}
		done := time.Duration(us) * time.Microsecond
		if done > pw.total {
			done = pw.total
		}
		pw.callback(done, pw.total)
	case "progress":
		if value == "end" {
			pw.callback(pw.total, pw.total)
		}
	}
}
