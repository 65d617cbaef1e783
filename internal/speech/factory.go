package speech

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"noface/internal/config"
)

// Engine names accepted by NewBackend.
const (
	EngineGoogle = "gtts"
	EngineOpenAI = "openai"
	EngineEdge   = "edge"
)

// NewBackend returns the Backend selected by cfg.Engine.
func NewBackend(cfg config.SpeechConfig) (Backend, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	switch cfg.Engine {
	case EngineGoogle, "":
		g := NewGoogleTranslate(cfg.Language, cfg.Slow)
		if cfg.BaseURL != "" {
			g.BaseURL = cfg.BaseURL
		}
		if timeout > 0 {
			g.Client = &http.Client{Timeout: timeout}
		}
		return g, nil
	case EngineOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		o := NewOpenAI(cfg.BaseURL, key, cfg.Model, cfg.VoiceFor())
		if timeout > 0 {
			o.Client = &http.Client{Timeout: timeout}
		}
		return o, nil
	case EngineEdge:
		return NewEdge(cfg.EdgeBin, cfg.VoiceFor(), timeout), nil
	default:
		return nil, fmt.Errorf("unsupported speech engine %q (want %s, %s or %s)", cfg.Engine, EngineGoogle, EngineOpenAI, EngineEdge)
	}
}
