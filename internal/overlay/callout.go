package overlay

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Comment callout box metrics, in pixels.
const (
	CalloutMaxWidth   = 320
	CalloutPadding    = 8
	CalloutLineHeight = 20
)

var calloutFace font.Face = basicfont.Face7x13

// LayoutCallout wraps text into lines that fit the callout and returns the
// box size. Explicit newlines are kept.
func LayoutCallout(text string) (lines []string, width, height float64) {
	limit := CalloutMaxWidth - 2*CalloutPadding
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrap(para, limit)...)
	}

	widest := 0
	for _, l := range lines {
		widest = max(widest, font.MeasureString(calloutFace, l).Ceil())
	}
	width = float64(min(widest+2*CalloutPadding, CalloutMaxWidth))
	height = float64(len(lines)*CalloutLineHeight + 2*CalloutPadding)
	return lines, width, height
}

// wrap breaks s on spaces so each line measures at most limit pixels. A
// single word wider than limit gets a line of its own.
func wrap(s string, limit int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if font.MeasureString(calloutFace, candidate).Ceil() <= limit {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}
