package app

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return ansi.Truncate(text, width-1, "") + "…"
}

// padToWidth pads plain text with spaces up to width display cells.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.FillRight(text, width)
}
