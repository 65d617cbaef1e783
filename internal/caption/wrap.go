// Package caption lays out quote text into lines and rasterizes it onto a frame.
package caption

import (
	"strings"
	"unicode/utf8"
)

// Caption is an ordered sequence of display lines.
type Caption []string

// String joins the lines with newlines.
func (c Caption) String() string {
	return strings.Join(c, "\n")
}

// Words returns the words of all lines in order.
func (c Caption) Words() []string {
	var words []string
	for _, line := range c {
		words = append(words, strings.Fields(line)...)
	}
	return words
}

// Wrap greedily fills lines with the words of text so that no line is longer
// than maxLineWidth runes. A word longer than the budget is emitted alone on
// its own line and never split. Empty text yields no lines.
func Wrap(text string, maxLineWidth int) Caption {
	if maxLineWidth < 1 {
		maxLineWidth = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		lines     Caption
		current   strings.Builder
		curLength int
	)

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		if curLength > 0 && curLength+1+wordLen <= maxLineWidth {
			current.WriteByte(' ')
			current.WriteString(word)
			curLength += 1 + wordLen
			continue
		}

		if curLength > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		current.WriteString(word)
		curLength = wordLen
	}

	if curLength > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
