package strip

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// wrapText breaks text into lines using greedy line-breaking: words
// accumulate until adding the next one would exceed maxWidth, then the line
// flushes. Breaks happen only at word boundaries; a caption that fits yields
// exactly one line.
func wrapText(face font.Face, text string, maxWidth fixed.Int26_6) []string {
	words := strings.Split(text, " ")
	var lines []string
	line := ""

	for n, word := range words {
		test := line + word + " "
		if font.MeasureString(face, test) > maxWidth && n > 0 {
			lines = append(lines, strings.TrimRight(line, " "))
			line = word + " "
		} else {
			line = test
		}
	}
	return append(lines, strings.TrimRight(line, " "))
}
