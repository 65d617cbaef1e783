package config

import "strings"

// Default edge-tts neural voices keyed by the primary language subtag.
var edgeVoices = map[string]string{
	"en": "en-US-GuyNeural",
	"es": "es-ES-AlvaroNeural",
	"fr": "fr-FR-HenriNeural",
	"de": "de-DE-ConradNeural",
	"it": "it-IT-DiegoNeural",
	"pt": "pt-BR-AntonioNeural",
	"ja": "ja-JP-KeitaNeural",
	"ko": "ko-KR-InJoonNeural",
	"zh": "zh-CN-YunxiNeural",
}

// primaryTag returns the lowercase primary subtag of a language code ("en-GB" -> "en").
func primaryTag(langCode string) string {
	langCode = strings.ToLower(strings.TrimSpace(langCode))
	if i := strings.IndexAny(langCode, "-_"); i >= 0 {
		langCode = langCode[:i]
	}
	return langCode
}

// EdgeVoiceForLang returns the default edge-tts voice for the given language,
// falling back to the English voice.
func EdgeVoiceForLang(langCode string) string {
	if v, ok := edgeVoices[primaryTag(langCode)]; ok {
		return v
	}
	return edgeVoices["en"]
}

// VoiceFor returns the configured voice, or the engine's default for the language.
func (s SpeechConfig) VoiceFor() string {
	if s.Voice != "" {
		return s.Voice
	}
	switch s.Engine {
	case "edge":
		return EdgeVoiceForLang(s.Language)
	case "openai":
		return "alloy"
	}
	return ""
}
