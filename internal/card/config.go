package card

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Base physical constants in millimetres, before size scaling.
const (
	BaseCardWidth      = 55.0
	BaseRectangleWidth = 54.0

	MaxTextLength = 20
	Font          = "Liberation Mono:style=Bold"
)

// Config is the full parameter set for one generation. It is a value: the
// With* helpers return modified copies and nothing mutates it in place.
type Config struct {
	Mode Mode `json:"mode"`

	CardHeight   float64 `json:"card_height"`
	QRMargin     float64 `json:"qr_margin"`
	QRRelief     float64 `json:"qr_relief"`
	CornerRadius float64 `json:"corner_radius"`
	SizeScale    float64 `json:"size_scale"`

	HoleDiameter float64 `json:"hole_diameter"`
	HoleFromTop  float64 `json:"hole_from_top"`
	TopMargin    float64 `json:"top_margin"`

	TextBottom   string  `json:"text"`
	TextTop      string  `json:"text_top"`
	TextHeight   float64 `json:"text_height"`
	TextMargin   float64 `json:"text_margin"`
	TextRotation int     `json:"text_rotation"`
}

// DefaultConfig returns the thin, medium-sized square card.
func DefaultConfig() Config {
	return Config{
		Mode:         Square,
		CardHeight:   0.5,
		QRMargin:     2.0,
		QRRelief:     0.5,
		CornerRadius: 2,
		SizeScale:    1.0,
		HoleDiameter: 5,
		HoleFromTop:  6,
		TopMargin:    8,
		TextHeight:   1.0,
		TextMargin:   2,
	}
}

func (c Config) WithMode(m Mode) Config {
	c.Mode = m
	return c
}

func (c Config) WithText(bottom, top string) Config {
	c.TextBottom = bottom
	c.TextTop = top
	return c
}

func (c Config) WithRotation(deg int) Config {
	c.TextRotation = deg
	return c
}

func (c Config) WithScale(s float64) Config {
	c.SizeScale = s
	return c
}

// WithThickness sets card height and relief together, the way the thickness
// presets do. Text relief follows the QR relief.
func (c Config) WithThickness(cardHeight, relief float64) Config {
	c.CardHeight = cardHeight
	c.QRRelief = relief
	c.TextHeight = relief
	return c
}

// HasBottomText reports whether a bottom label will be rendered.
func (c Config) HasBottomText() bool {
	return c.TextBottom != "" && c.Mode.HasBottomText()
}

// HasTopText reports whether a top label will be rendered.
func (c Config) HasTopText() bool {
	return c.TextTop != "" && c.Mode.HasTopText()
}

// Normalize validates the config at the input boundary. Fatal problems are
// returned as errors; text supplied for a mode that cannot render it is
// dropped and reported as a Warning.
func (c Config) Normalize() (Config, []Warning, error) {
	if !c.Mode.Valid() {
		return c, nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, int(c.Mode))
	}

	c.TextBottom = strings.TrimSpace(c.TextBottom)
	c.TextTop = strings.TrimSpace(c.TextTop)
	if n := utf8.RuneCountInString(c.TextBottom); n > MaxTextLength {
		return c, nil, fmt.Errorf("%w: %d characters, maximum is %d", ErrTextTooLong, n, MaxTextLength)
	}
	if n := utf8.RuneCountInString(c.TextTop); n > MaxTextLength {
		return c, nil, fmt.Errorf("%w: top text has %d characters, maximum is %d", ErrTextTooLong, n, MaxTextLength)
	}
	if c.TextRotation != 0 && c.TextRotation != 180 {
		return c, nil, fmt.Errorf("%w: got %d", ErrInvalidRotation, c.TextRotation)
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"card_height", c.CardHeight},
		{"qr_relief", c.QRRelief},
		{"size_scale", c.SizeScale},
		{"hole_diameter", c.HoleDiameter},
		{"text_height", c.TextHeight},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return c, nil, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"qr_margin", c.QRMargin},
		{"corner_radius", c.CornerRadius},
		{"hole_from_top", c.HoleFromTop},
		{"top_margin", c.TopMargin},
		{"text_margin", c.TextMargin},
	}
	for _, p := range nonNegative {
		if !(p.v >= 0) {
			return c, nil, fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidParameter, p.name, p.v)
		}
	}

	var warnings []Warning
	if c.TextBottom != "" && !c.Mode.HasBottomText() {
		warnings = append(warnings, Warning{
			Field:   "text",
			Message: fmt.Sprintf("ignored for mode %q, use a text mode", c.Mode),
		})
		c.TextBottom = ""
	}
	if c.TextTop != "" && !c.Mode.HasTopText() {
		warnings = append(warnings, Warning{
			Field:   "text_top",
			Message: fmt.Sprintf("ignored for mode %q, only %q supports top text", c.Mode, RectangleText2x),
		})
		c.TextTop = ""
	}

	return c, warnings, nil
}
