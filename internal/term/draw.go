package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// drawText writes s starting at column x, one grapheme cluster per cell
// run, and returns the column after the last cluster drawn. Text past the
// right edge is clipped.
func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) int {
	width, _ := s.Size()
	state := -1
	for text != "" {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		runes := []rune(cluster)
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// drawCentered writes text centered on row y.
func drawCentered(s tcell.Screen, y int, text string, style tcell.Style) {
	width, _ := s.Size()
	x := (width - uniseg.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	drawText(s, x, y, text, style)
}
