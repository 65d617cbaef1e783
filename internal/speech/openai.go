package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAI synthesizes speech through an OpenAI-compatible /audio/speech endpoint.
type OpenAI struct {
	BaseURL string
	APIKey  string
	Model   string
	Voice   string
	Speed   float64
	Client  *http.Client
}

// NewOpenAI returns a backend for the given key. An empty baseURL selects api.openai.com.
func NewOpenAI(baseURL, apiKey, model, voice string) *OpenAI {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &OpenAI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Voice:   voice,
		Speed:   1.0,
		Client:  &http.Client{Timeout: requestTimeout},
	}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// Synthesize posts text and writes the returned MP3 to outputPath.
func (o *OpenAI) Synthesize(ctx context.Context, text, outputPath string) error {
	if o.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY not configured", ErrSynthesisUnavailable)
	}

	body, err := json.Marshal(speechRequest{
		Model:          o.Model,
		Input:          text,
		Voice:          o.Voice,
		ResponseFormat: "mp3",
		Speed:          o.Speed,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: HTTP request failed: %w", ErrSynthesisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: speech API returned status %d: %s", ErrSynthesisUnavailable, resp.StatusCode, string(msg))
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(outputPath)
		return fmt.Errorf("%w: read audio: %w", ErrSynthesisUnavailable, err)
	}
	return outFile.Close()
}
