package render

import (
	"context"
	"errors"

	"noface/internal/background"
	"noface/internal/ffmpeg"
	"noface/internal/speech"
)

// ErrAssetMissing reports inconsistent inputs between pipeline stages,
// such as an empty caption or a zero-length narration.
var ErrAssetMissing = errors.New("asset missing")

// Kind names the error category of err for logs and summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, background.ErrInvalidColorFormat):
		return "InvalidColorFormat"
	case errors.Is(err, background.ErrInvalidDimensions):
		return "InvalidDimensions"
	case errors.Is(err, speech.ErrSynthesisUnavailable):
		return "SynthesisUnavailable"
	case errors.Is(err, ffmpeg.ErrEncodingFailed):
		return "EncodingFailed"
	case errors.Is(err, ErrAssetMissing):
		return "AssetMissing"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	default:
		return "Unknown"
	}
}
