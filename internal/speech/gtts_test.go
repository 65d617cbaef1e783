package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestGoogleTranslate_SingleChunk(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Write([]byte("MP3DATA"))
	}))
	defer srv.Close()

	g := NewGoogleTranslate("en", false)
	g.BaseURL = srv.URL
	out := filepath.Join(t.TempDir(), "speech.mp3")

	if err := g.Synthesize(context.Background(), "Believe you can and you're halfway there.", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "MP3DATA" {
		t.Errorf("file = %q, want MP3DATA", data)
	}
	if gotQuery["q"] != "Believe you can and you're halfway there." || gotQuery["tl"] != "en" {
		t.Errorf("unexpected query %v", gotQuery)
	}
	if gotQuery["ttsspeed"] != "1" || gotQuery["total"] != "1" || gotQuery["idx"] != "0" {
		t.Errorf("unexpected query %v", gotQuery)
	}
}

func TestGoogleTranslate_SplitsLongText(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, q.Get("q"))
		mu.Unlock()
		w.Write([]byte("[" + q.Get("idx") + "]"))
	}))
	defer srv.Close()

	text := strings.Repeat("motivation is what gets you started and habit keeps you going ", 4)
	g := NewGoogleTranslate("en", true)
	g.BaseURL = srv.URL
	out := filepath.Join(t.TempDir(), "speech.mp3")

	if err := g.Synthesize(context.Background(), text, out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if len(queries) < 3 {
		t.Fatalf("expected text to be split into several requests, got %d", len(queries))
	}
	for _, q := range queries {
		if len(q) > maxChunkChars {
			t.Errorf("chunk longer than %d chars: %q", maxChunkChars, q)
		}
	}
	if strings.Join(strings.Fields(strings.Join(queries, " ")), " ") != strings.Join(strings.Fields(text), " ") {
		t.Error("chunks do not reproduce the input text")
	}

	data, _ := os.ReadFile(out)
	if !strings.HasPrefix(string(data), "[0][1][2]") {
		t.Errorf("payloads not concatenated in order: %q", data)
	}
}

func TestGoogleTranslate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleTranslate("en", false)
	g.BaseURL = srv.URL
	out := filepath.Join(t.TempDir(), "speech.mp3")

	err := g.Synthesize(context.Background(), "hello", out)
	if !errors.Is(err, ErrSynthesisUnavailable) {
		t.Fatalf("got %v, want ErrSynthesisUnavailable", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("partial audio file left behind")
	}
}

func TestGoogleTranslate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGoogleTranslate("en", false)
	g.BaseURL = url
	err := g.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "x.mp3"))
	if !errors.Is(err, ErrSynthesisUnavailable) {
		t.Errorf("got %v, want ErrSynthesisUnavailable", err)
	}
}

func TestGoogleTranslate_EmptyText(t *testing.T) {
	g := NewGoogleTranslate("en", false)
	err := g.Synthesize(context.Background(), "   ", filepath.Join(t.TempDir(), "x.mp3"))
	if !errors.Is(err, ErrSynthesisUnavailable) {
		t.Errorf("got %v, want ErrSynthesisUnavailable", err)
	}
}
