// Package background synthesizes the gradient raster that sits behind every caption.
package background

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrInvalidColorFormat is returned when a color string is not a hex color.
	ErrInvalidColorFormat = errors.New("invalid color format")
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// ParseColor parses "#rrggbb", "rrggbb", "#rgb" or "rgb".
func ParseColor(s string) (colorful.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
		}
	}

	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorFormat, s, err)
	}
	return c, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Synthesize returns a width x height raster blending color1 (top row) into
// color2 (bottom row). The output depends only on its inputs.
func Synthesize(width, height int, color1, color2 string) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	top, err := ParseColor(color1)
	if err != nil {
		return nil, err
	}
	bottom, err := ParseColor(color2)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowBytes := width * 4

	for y := 0; y < height; y++ {
		f := 0.0
		if height > 1 {
			f = float64(y) / float64(height-1)
		}
		r, g, b := top.BlendRgb(bottom, f).RGB255()

		row := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		row[0], row[1], row[2], row[3] = r, g, b, 0xff
		// Fill the rest of the row by doubling the filled prefix.
		for filled := 4; filled < rowBytes; filled *= 2 {
			copy(row[filled:], row[:filled])
		}
	}

	return img, nil
}

// WritePNG encodes img as PNG at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
