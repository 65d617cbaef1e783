package speech

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
)

// translate_tts rejects obvious non-browser clients.
var browserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// Headers a browser sends when an <audio> element loads translate_tts.
var audioFetchHeaders = map[string]string{
	"accept":         "audio/webm,audio/ogg,audio/wav,audio/*;q=0.9,application/ogg;q=0.7,video/*;q=0.6,*/*;q=0.5",
	"referer":        "https://translate.google.com/",
	"sec-fetch-dest": "audio",
	"sec-fetch-mode": "no-cors",
	"sec-fetch-site": "same-origin",
}

// acceptLanguage builds an Accept-Language value preferring lang, with
// English as the fallback ("pt-BR" -> "pt-BR,pt;q=0.9,en;q=0.8").
func acceptLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "en-US,en;q=0.9"
	}
	primary, _, hasRegion := strings.Cut(lang, "-")
	primary = strings.ToLower(primary)

	parts := []string{lang}
	if hasRegion {
		parts = append(parts, primary+";q=0.9")
	}
	if primary != "en" {
		parts = append(parts, fmt.Sprintf("en;q=%.1f", 0.9-0.1*float64(len(parts)-1)))
	}
	return strings.Join(parts, ",")
}

// browserHeaders returns headers for one translate_tts request in lang,
// with a User-Agent picked at random.
func browserHeaders(lang string) http.Header {
	h := make(http.Header)
	for k, v := range audioFetchHeaders {
		h.Set(k, v)
	}
	h.Set("User-Agent", browserAgents[rand.IntN(len(browserAgents))])
	h.Set("Accept-Language", acceptLanguage(lang))
	return h
}
