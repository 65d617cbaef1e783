package render

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"noface/internal/background"
	"noface/internal/caption"
	"noface/internal/config"
	"noface/internal/ffmpeg"
	"noface/internal/speech"
)

type fakeNarrator struct {
	duration time.Duration
	err      error
	calls    int
}

func (n *fakeNarrator) Synthesize(_ context.Context, text, outputPath string) (speech.Narration, error) {
	n.calls++
	if n.err != nil {
		return speech.Narration{}, n.err
	}
	if err := os.WriteFile(outputPath, []byte("ID3 "+text), 0o644); err != nil {
		return speech.Narration{}, err
	}
	return speech.Narration{Path: outputPath, Duration: n.duration}, nil
}

type encodeCall struct {
	job         ffmpeg.EncodeJob
	frameWidth  int
	frameHeight int
}

type fakeEncoder struct {
	mu    sync.Mutex
	calls []encodeCall
	err   error
	// partial writes a truncated output before failing.
	partial bool
}

func (e *fakeEncoder) Encode(_ context.Context, job ffmpeg.EncodeJob) error {
	call := encodeCall{job: job}
	f, err := os.Open(job.ImagePath)
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return err
	}
	call.frameWidth, call.frameHeight = img.Bounds().Dx(), img.Bounds().Dy()

	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()

	if e.err != nil {
		if e.partial {
			os.WriteFile(job.OutputPath, []byte("partial"), 0o644)
		}
		return e.err
	}
	return os.WriteFile(job.OutputPath, []byte(fmt.Sprintf("mp4 %dfps %s", job.FPS, job.Duration)), 0o644)
}

func testConfig() config.GeneratorConfig {
	return config.GeneratorConfig{Width: 108, Height: 192, FPS: 10, MaxDurationSeconds: 5}
}

func newTestRenderer(t *testing.T, n Narrator, e Encoder) (*Renderer, string) {
	t.Helper()
	tmp := t.TempDir()
	return New(n, e, Options{MaxLineChars: 35, Caption: caption.DrawOptions{FontSize: 70, Margin: 200}, TempDir: tmp}), tmp
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("%s has %d leftover entries, first %q", dir, len(entries), entries[0].Name())
	}
}

func TestRenderOne(t *testing.T) {
	n := &fakeNarrator{duration: 2 * time.Second}
	e := &fakeEncoder{}
	r, tmp := newTestRenderer(t, n, e)
	out := filepath.Join(t.TempDir(), "video.mp4")

	got, err := r.RenderOne(context.Background(), "Stay hungry, stay foolish.", out, "#000000", "#FFFFFF", testConfig())
	if err != nil {
		t.Fatalf("RenderOne: %v", err)
	}
	if got != out {
		t.Errorf("RenderOne returned %q, want %q", got, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if len(e.calls) != 1 {
		t.Fatalf("encoder called %d times, want 1", len(e.calls))
	}
	c := e.calls[0]
	if c.job.Duration != 3*time.Second {
		t.Errorf("duration = %v, want 3s", c.job.Duration)
	}
	if c.job.FPS != 10 {
		t.Errorf("fps = %d, want 10", c.job.FPS)
	}
	if c.frameWidth != 108 || c.frameHeight != 192 {
		t.Errorf("frame = %dx%d, want 108x192", c.frameWidth, c.frameHeight)
	}
	assertEmptyDir(t, tmp)
}

func TestRenderOneCapsDuration(t *testing.T) {
	e := &fakeEncoder{}
	r, _ := newTestRenderer(t, &fakeNarrator{duration: 20 * time.Second}, e)
	out := filepath.Join(t.TempDir(), "long.mp4")

	if _, err := r.RenderOne(context.Background(), "A very long speech.", out, "#000", "#fff", testConfig()); err != nil {
		t.Fatalf("RenderOne: %v", err)
	}
	if got := e.calls[0].job.Duration; got != 5*time.Second {
		t.Errorf("duration = %v, want 5s", got)
	}
}

func TestRenderOneDeterministicShape(t *testing.T) {
	e := &fakeEncoder{}
	r, _ := newTestRenderer(t, &fakeNarrator{duration: 1500 * time.Millisecond}, e)
	dir := t.TempDir()

	for i := range 2 {
		out := filepath.Join(dir, fmt.Sprintf("v%d.mp4", i))
		if _, err := r.RenderOne(context.Background(), "Same quote", out, "#123456", "#654321", testConfig()); err != nil {
			t.Fatalf("RenderOne #%d: %v", i, err)
		}
	}
	a, b := e.calls[0], e.calls[1]
	if a.job.Duration != b.job.Duration || a.frameWidth != b.frameWidth || a.frameHeight != b.frameHeight {
		t.Errorf("renders differ: %+v vs %+v", a, b)
	}
}

func TestRenderOneEncodingFailure(t *testing.T) {
	e := &fakeEncoder{err: fmt.Errorf("%w: exit status 1", ffmpeg.ErrEncodingFailed), partial: true}
	r, tmp := newTestRenderer(t, &fakeNarrator{duration: time.Second}, e)
	out := filepath.Join(t.TempDir(), "broken.mp4")

	_, err := r.RenderOne(context.Background(), "Doomed", out, "#000", "#fff", testConfig())
	if !errors.Is(err, ffmpeg.ErrEncodingFailed) {
		t.Fatalf("err = %v, want ErrEncodingFailed", err)
	}
	if Kind(err) != "EncodingFailed" {
		t.Errorf("Kind = %q, want EncodingFailed", Kind(err))
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial output left behind: %v", err)
	}
	assertEmptyDir(t, tmp)
}

func TestRenderOneWrapsForeignEncoderError(t *testing.T) {
	e := &fakeEncoder{err: errors.New("boom")}
	r, _ := newTestRenderer(t, &fakeNarrator{duration: time.Second}, e)

	_, err := r.RenderOne(context.Background(), "x", filepath.Join(t.TempDir(), "x.mp4"), "#000", "#fff", testConfig())
	if !errors.Is(err, ffmpeg.ErrEncodingFailed) {
		t.Errorf("err = %v, want ErrEncodingFailed", err)
	}
}

func TestRenderOneSynthesisFailure(t *testing.T) {
	n := &fakeNarrator{err: fmt.Errorf("%w: offline", speech.ErrSynthesisUnavailable)}
	e := &fakeEncoder{}
	r, tmp := newTestRenderer(t, n, e)
	out := filepath.Join(t.TempDir(), "silent.mp4")

	_, err := r.RenderOne(context.Background(), "Hello", out, "#000", "#fff", testConfig())
	if !errors.Is(err, speech.ErrSynthesisUnavailable) {
		t.Fatalf("err = %v, want ErrSynthesisUnavailable", err)
	}
	if len(e.calls) != 0 {
		t.Errorf("encoder called %d times after synthesis failure", len(e.calls))
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output exists after failure")
	}
	assertEmptyDir(t, tmp)
}

func TestRenderOneAssetMissing(t *testing.T) {
	tests := []struct {
		name     string
		quote    string
		duration time.Duration
	}{
		{"empty quote", "", time.Second},
		{"whitespace quote", "  \n\t ", time.Second},
		{"zero narration", "Hello", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &fakeEncoder{}
			r, tmp := newTestRenderer(t, &fakeNarrator{duration: tt.duration}, e)
			_, err := r.RenderOne(context.Background(), tt.quote, filepath.Join(t.TempDir(), "v.mp4"), "#000", "#fff", testConfig())
			if !errors.Is(err, ErrAssetMissing) {
				t.Errorf("err = %v, want ErrAssetMissing", err)
			}
			if len(e.calls) != 0 {
				t.Errorf("encoder called %d times", len(e.calls))
			}
			assertEmptyDir(t, tmp)
		})
	}
}

func TestRenderOneInvalidRequest(t *testing.T) {
	good := testConfig()
	zeroWidth := good
	zeroWidth.Width = 0
	zeroFPS := good
	zeroFPS.FPS = 0

	tests := []struct {
		name   string
		color1 string
		cfg    config.GeneratorConfig
		want   error
	}{
		{"bad color", "#GGGGGG", good, background.ErrInvalidColorFormat},
		{"zero width", "#000", zeroWidth, background.ErrInvalidDimensions},
		{"zero fps", "#000", zeroFPS, background.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNarrator{duration: time.Second}
			e := &fakeEncoder{}
			r, tmp := newTestRenderer(t, n, e)
			_, err := r.RenderOne(context.Background(), "Hi", filepath.Join(t.TempDir(), "v.mp4"), tt.color1, "#fff", tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if n.calls != 0 || len(e.calls) != 0 {
				t.Errorf("pipeline ran on invalid request: narrator=%d encoder=%d", n.calls, len(e.calls))
			}
			assertEmptyDir(t, tmp)
		})
	}
}

func TestRenderChecksAssets(t *testing.T) {
	r, _ := newTestRenderer(t, &fakeNarrator{}, &fakeEncoder{})
	req, err := NewRequest("q", filepath.Join(t.TempDir(), "v.mp4"), "#000", "#fff", testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ws := &Workspace{dir: t.TempDir()}
	bg, err := background.Synthesize(108, 192, "#000", "#fff")
	if err != nil {
		t.Fatal(err)
	}
	wrongSize, err := background.Synthesize(10, 10, "#000", "#fff")
	if err != nil {
		t.Fatal(err)
	}
	audio := ws.Path("a.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := ws.Path("empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		capt      caption.Caption
		bgSize    bool
		narration speech.Narration
	}{
		{"no caption", nil, true, speech.Narration{Path: audio, Duration: time.Second}},
		{"wrong background", caption.Caption{"q"}, false, speech.Narration{Path: audio, Duration: time.Second}},
		{"missing audio", caption.Caption{"q"}, true, speech.Narration{Path: ws.Path("nope.mp3"), Duration: time.Second}},
		{"empty audio", caption.Caption{"q"}, true, speech.Narration{Path: empty, Duration: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := bg
			if !tt.bgSize {
				img = wrongSize
			}
			if _, err := r.Render(context.Background(), req, ws, img, tt.capt, tt.narration); !errors.Is(err, ErrAssetMissing) {
				t.Errorf("Render err = %v, want ErrAssetMissing", err)
			}
		})
	}
}

func TestRenderDuration(t *testing.T) {
	tests := []struct {
		narration, limit, want time.Duration
	}{
		{2 * time.Second, 15 * time.Second, 3 * time.Second},
		{14 * time.Second, 15 * time.Second, 15 * time.Second},
		{20 * time.Second, 15 * time.Second, 15 * time.Second},
		{500 * time.Millisecond, 15 * time.Second, 1500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := renderDuration(tt.narration, tt.limit); got != tt.want {
			t.Errorf("renderDuration(%v, %v) = %v, want %v", tt.narration, tt.limit, got, tt.want)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: x", background.ErrInvalidColorFormat), "InvalidColorFormat"},
		{fmt.Errorf("%w: x", background.ErrInvalidDimensions), "InvalidDimensions"},
		{fmt.Errorf("%w: x", speech.ErrSynthesisUnavailable), "SynthesisUnavailable"},
		{fmt.Errorf("%w: x", ffmpeg.ErrEncodingFailed), "EncodingFailed"},
		{fmt.Errorf("%w: x", ErrAssetMissing), "AssetMissing"},
		{context.Canceled, "Canceled"},
		{errors.New("other"), "Unknown"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewRequestAbsolutePath(t *testing.T) {
	req, err := NewRequest("q", "out/v.mp4", "#000", "#fff", testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(req.OutputPath) {
		t.Errorf("OutputPath = %q, want absolute", req.OutputPath)
	}
	if req.MaxDuration != 5*time.Second {
		t.Errorf("MaxDuration = %v, want 5s", req.MaxDuration)
	}
}
