// Package textfit picks a font size that keeps a label inside a given width.
package textfit

import "unicode/utf8"

const (
	// DefaultSize is returned for empty text. It is never rendered.
	DefaultSize = 6.0
	MinSize     = 3.0
	MaxSize     = 6.0

	// CharWidthFactor is the advance of one bold monospace glyph relative
	// to the font size, with a safety margin.
	CharWidthFactor = 0.8
)

// Fit returns the largest size in [MinSize, MaxSize] at which text spans at
// most width millimetres. Below MinSize the text overflows rather than
// becoming unreadable.
func Fit(text string, width float64) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return DefaultSize
	}
	size := width / (float64(n) * CharWidthFactor)
	return max(MinSize, min(size, MaxSize))
}

// FitShared returns one size for a top and a bottom label so both render
// alike. With both present the larger fitted size wins.
func FitShared(top, bottom string, width float64) float64 {
	switch {
	case top != "" && bottom != "":
		return max(Fit(top, width), Fit(bottom, width))
	case top != "":
		return Fit(top, width)
	default:
		return Fit(bottom, width)
	}
}

// Width estimates the rendered width of text at size.
func Width(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * CharWidthFactor * size
}
