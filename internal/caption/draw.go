package caption

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// ReferenceWidth is the frame width that FontSize and Margin are expressed against.
const ReferenceWidth = 1080.0

const (
	lineSpacing = 1.25
	minFontSize = 8.0
)

// DrawOptions controls caption rasterization.
type DrawOptions struct {
	// FontPath is a TrueType file; empty means the embedded Go Bold face.
	FontPath string
	// FontSize in points at ReferenceWidth.
	FontSize float64
	// Margin is the total horizontal inset of the text box at ReferenceWidth.
	Margin int
	// Color defaults to white.
	Color color.Color
}

var embeddedFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gobold.TTF)
})

func loadFont(path string) (*truetype.Font, error) {
	if path == "" {
		return embeddedFont()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// BoxWidth returns the caption box width for a frame of the given width,
// scaling margin proportionally from ReferenceWidth.
func BoxWidth(frameWidth, margin int) int {
	inset := int(math.Round(float64(margin) * float64(frameWidth) / ReferenceWidth))
	if w := frameWidth - inset; w > 0 {
		return w
	}
	return frameWidth
}

// Draw renders the caption onto dst: each line centered horizontally and the
// whole block centered vertically inside the inset text box. The font size is
// reduced until the widest line fits the box and the block fits the frame.
func Draw(dst *image.RGBA, c Caption, opts DrawOptions) error {
	if len(c) == 0 {
		return nil
	}

	f, err := loadFont(opts.FontPath)
	if err != nil {
		return err
	}

	bounds := dst.Bounds()
	scale := float64(bounds.Dx()) / ReferenceWidth
	boxWidth := BoxWidth(bounds.Dx(), opts.Margin)

	size := opts.FontSize * scale
	if size < minFontSize {
		size = minFontSize
	}
	face := fitFace(f, c, size, boxWidth, bounds.Dy())
	defer face.Close()
	size = face.size

	col := opts.Color
	if col == nil {
		col = color.White
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetClip(bounds)
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(col))
	ctx.SetHinting(font.HintingFull)

	lineHeight := int(math.Ceil(size * lineSpacing))
	ascent := face.Metrics().Ascent.Ceil()
	blockHeight := lineHeight * len(c)
	top := bounds.Min.Y + (bounds.Dy()-blockHeight)/2

	for i, line := range c {
		width := font.MeasureString(face, line).Ceil()
		x := bounds.Min.X + (bounds.Dx()-width)/2
		y := top + i*lineHeight + ascent
		if _, err := ctx.DrawString(line, freetype.Pt(x, y)); err != nil {
			return fmt.Errorf("draw line %d: %w", i+1, err)
		}
	}
	return nil
}

type sizedFace struct {
	font.Face
	size float64
}

// fitFace shrinks the font until the caption fits inside maxWidth x maxHeight.
func fitFace(f *truetype.Font, c Caption, size float64, maxWidth, maxHeight int) sizedFace {
	for {
		face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
		if size <= minFontSize || fits(face, c, size, maxWidth, maxHeight) {
			return sizedFace{Face: face, size: size}
		}
		face.Close()
		size = math.Max(minFontSize, size*0.9)
	}
}

func fits(face font.Face, c Caption, size float64, maxWidth, maxHeight int) bool {
	if int(math.Ceil(size*lineSpacing))*len(c) > maxHeight {
		return false
	}
	for _, line := range c {
		if font.MeasureString(face, line).Ceil() > maxWidth {
			return false
		}
	}
	return true
}
