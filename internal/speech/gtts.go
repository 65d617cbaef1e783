package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"noface/internal/caption"
)

const (
	translateTTSURL = "https://translate.google.com/translate_tts"
	// translate_tts refuses text longer than this per request.
	maxChunkChars  = 100
	requestTimeout = 30 * time.Second
)

// GoogleTranslate synthesizes MP3 speech through the Google Translate TTS endpoint.
type GoogleTranslate struct {
	BaseURL  string
	Language string
	Slow     bool
	Client   *http.Client
}

// NewGoogleTranslate returns a backend speaking lang.
func NewGoogleTranslate(lang string, slow bool) *GoogleTranslate {
	if lang == "" {
		lang = "en"
	}
	return &GoogleTranslate{
		BaseURL:  translateTTSURL,
		Language: lang,
		Slow:     slow,
		Client:   &http.Client{Timeout: requestTimeout},
	}
}

// Synthesize splits text at word boundaries into request-sized chunks and
// writes the concatenated MP3 payloads to outputPath.
func (g *GoogleTranslate) Synthesize(ctx context.Context, text, outputPath string) error {
	chunks := caption.Wrap(text, maxChunkChars)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no text to speak", ErrSynthesisUnavailable)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}

	for i, chunk := range chunks {
		if err := g.fetch(ctx, f, chunk, i, len(chunks)); err != nil {
			f.Close()
			os.Remove(outputPath)
			return fmt.Errorf("%w: chunk %d/%d: %w", ErrSynthesisUnavailable, i+1, len(chunks), err)
		}
	}
	return f.Close()
}

func (g *GoogleTranslate) fetch(ctx context.Context, w io.Writer, chunk string, idx, total int) error {
	speed := "1"
	if g.Slow {
		speed = "0.3"
	}
	q := url.Values{
		"ie":       {"UTF-8"},
		"client":   {"tw-ob"},
		"q":        {chunk},
		"tl":       {g.Language},
		"ttsspeed": {speed},
		"total":    {strconv.Itoa(total)},
		"idx":      {strconv.Itoa(idx)},
		"textlen":  {strconv.Itoa(utf8.RuneCountInString(chunk))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = browserHeaders(g.Language)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("translate_tts returned status %d: %s", resp.StatusCode, string(body))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("translate_tts returned an empty body")
	}
	return nil
}
