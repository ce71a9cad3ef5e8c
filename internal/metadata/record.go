// Package metadata builds, writes and reads the JSON record stored next to
// every generated model.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"qr3d/internal/bitmap"
	"qr3d/internal/card"
	"qr3d/internal/layout"
)

// Version is written into every record.
const Version = "0.1.0"

// Record is the on-disk metadata document.
type Record struct {
	GeneratedAt string     `json:"generated_at"`
	Version     string     `json:"version"`
	Mode        card.Mode  `json:"mode"`
	QRInput     string     `json:"qr_input"`
	Dimensions  Dimensions `json:"dimensions"`
	Parameters  Parameters `json:"parameters"`
	Pendant     *Pendant   `json:"pendant,omitempty"`
	Text        *Text      `json:"text,omitempty"`
}

type Dimensions struct {
	CardWidth  float64 `json:"card_width_mm"`
	CardLength float64 `json:"card_length_mm"`
	CardHeight float64 `json:"card_height_mm"`
	QRSize     float64 `json:"qr_size_mm"`
	PixelSize  float64 `json:"qr_pixel_size_mm"`
	Grid       string  `json:"qr_grid"`
}

type Parameters struct {
	QRMargin     float64 `json:"qr_margin_mm"`
	QRRelief     float64 `json:"qr_relief_mm"`
	CornerRadius float64 `json:"corner_radius_mm"`
	SizeScale    float64 `json:"size_scale"`
}

type Pendant struct {
	HoleDiameter float64 `json:"hole_diameter_mm"`
	HoleFromTop  float64 `json:"hole_from_top_mm"`
	TopMargin    float64 `json:"top_margin_mm"`
}

// Text describes the labels. Single-label modes use Content; the 2x mode
// uses ContentTop and ContentBottom.
type Text struct {
	Content       string  `json:"content,omitempty"`
	ContentTop    string  `json:"content_top,omitempty"`
	ContentBottom string  `json:"content_bottom,omitempty"`
	Size          float64 `json:"size_mm"`
	Height        float64 `json:"height_mm"`
	Margin        float64 `json:"margin_mm"`
	Rotation      int     `json:"rotation_deg"`
	Font          string  `json:"font"`
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Build assembles the record for one generation. Parameters are the
// unscaled config values; dimensions are the laid-out ones.
func Build(res layout.Result, cfg card.Config, bm *bitmap.Bitmap, source string, now time.Time) Record {
	rec := Record{
		GeneratedAt: now.Format(time.RFC3339),
		Version:     Version,
		Mode:        cfg.Mode,
		QRInput:     source,
		Dimensions: Dimensions{
			CardWidth:  round3(res.CardWidth),
			CardLength: round3(res.CardLength),
			CardHeight: round3(cfg.CardHeight),
			QRSize:     round3(res.QRSize),
			PixelSize:  round3(res.PixelSize),
			Grid:       fmt.Sprintf("%dx%d", bm.Cols(), bm.Rows()),
		},
		Parameters: Parameters{
			QRMargin:     round3(cfg.QRMargin),
			QRRelief:     round3(cfg.QRRelief),
			CornerRadius: round3(cfg.CornerRadius),
			SizeScale:    round3(cfg.SizeScale),
		},
	}

	if cfg.Mode.HasHole() {
		rec.Pendant = &Pendant{
			HoleDiameter: round3(cfg.HoleDiameter),
			HoleFromTop:  round3(cfg.HoleFromTop),
			TopMargin:    round3(cfg.TopMargin),
		}
	}

	if !res.Bottom.Present && !res.Top.Present {
		return rec
	}
	t := &Text{
		Size:     round3(res.FontSize),
		Height:   round3(cfg.TextHeight),
		Margin:   round3(cfg.TextMargin),
		Rotation: res.Bottom.Rotation,
		Font:     card.Font,
	}
	if cfg.Mode == card.RectangleText2x {
		if res.Bottom.Present {
			t.ContentBottom = cfg.TextBottom
		}
		if res.Top.Present {
			t.ContentTop = cfg.TextTop
		}
		t.Rotation = 180
	} else {
		t.Content = cfg.TextBottom
	}
	rec.Text = t
	return rec
}

// Marshal encodes rec as indented JSON without HTML escaping, so labels
// like "A&B" stay readable.
func Marshal(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores rec at path.
func Write(path string, rec Record) error {
	data, err := Marshal(rec)
	if err != nil {
		return fmt.Errorf("metadata: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("metadata: write %s: %w", path, err)
	}
	return nil
}

// Read loads a record written by Write.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("metadata: read %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("metadata: parse %s: %w", path, err)
	}
	return rec, nil
}

// Config rebuilds the generation parameters from a record. Absent sections
// mean the feature was off, so those fields keep their defaults and the
// labels stay empty. The fitted font size is derived again at layout time.
func (r Record) Config() (card.Config, error) {
	if !r.Mode.Valid() {
		return card.Config{}, fmt.Errorf("metadata: %w: %v", card.ErrUnsupportedMode, r.Mode)
	}

	cfg := card.DefaultConfig().WithMode(r.Mode)
	if r.Dimensions.CardHeight > 0 {
		cfg.CardHeight = r.Dimensions.CardHeight
	}
	if r.Parameters.QRRelief > 0 {
		cfg.QRRelief = r.Parameters.QRRelief
	}
	cfg.QRMargin = r.Parameters.QRMargin
	cfg.CornerRadius = r.Parameters.CornerRadius

	switch {
	case r.Parameters.SizeScale > 0:
		cfg.SizeScale = r.Parameters.SizeScale
	case r.Dimensions.CardWidth > 0:
		// Records written before size_scale existed: infer from the width.
		cfg.SizeScale = inferScale(r.Dimensions.CardWidth)
	}

	if p := r.Pendant; p != nil {
		cfg.HoleDiameter = p.HoleDiameter
		cfg.HoleFromTop = p.HoleFromTop
		cfg.TopMargin = p.TopMargin
	}

	if t := r.Text; t != nil {
		bottom := t.Content
		if bottom == "" {
			bottom = t.ContentBottom
		}
		cfg = cfg.WithText(bottom, t.ContentTop)
		if t.Height > 0 {
			cfg.TextHeight = t.Height
		}
		cfg.TextMargin = t.Margin
		cfg.TextRotation = t.Rotation
	}
	return cfg, nil
}

func inferScale(width float64) float64 {
	switch {
	case width <= 28:
		return 0.5
	case width >= 100:
		return 2.0
	default:
		return 1.0
	}
}
