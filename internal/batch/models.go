package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"qr3d/internal/card"
)

// Defaults applied when neither the model nor global_params set a value.
const (
	DefaultCardHeight   = 1.25
	DefaultQRMargin     = 0.5
	DefaultQRRelief     = 1.0
	DefaultCornerRadius = 2.0
	DefaultSizeScale    = 1.0
)

var errMissingFields = errors.New("missing required fields")

// Params are the shared generation parameters of a batch file. A nil field
// is unset.
type Params struct {
	CardHeight   *float64 `json:"card_height,omitempty"`
	QRMargin     *float64 `json:"qr_margin,omitempty"`
	QRRelief     *float64 `json:"qr_relief,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	SizeScale    *float64 `json:"size_scale,omitempty"`
}

// Model is one entry of a batch file. URL may also be an image path.
type Model struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Mode         string `json:"mode"`
	Text         string `json:"text,omitempty"`
	TextTop      string `json:"text_top,omitempty"`
	TextRotation *int   `json:"text_rotation,omitempty"`
	Params
}

// File is a batch configuration document.
type File struct {
	GlobalParams Params  `json:"global_params"`
	Models       []Model `json:"models"`
}

// LoadFile reads a batch file. Individual models are not validated here so
// one bad entry does not reject the whole batch.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("batch: read %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("batch: parse %s: %w", path, err)
	}
	if len(f.Models) == 0 {
		return File{}, fmt.Errorf("batch: %s: no models defined", path)
	}
	return f, nil
}

func pick(model, global *float64, def float64) float64 {
	if model != nil {
		return *model
	}
	if global != nil {
		return *global
	}
	return def
}

// Config resolves the card config for m: model value, then global_params,
// then the batch default. Text relief follows the QR relief.
func (f File) Config(m Model) (card.Config, error) {
	if m.Name == "" || m.URL == "" || m.Mode == "" {
		return card.Config{}, errMissingFields
	}
	mode, err := card.ParseMode(m.Mode)
	if err != nil {
		return card.Config{}, err
	}

	g := f.GlobalParams
	cfg := card.DefaultConfig().
		WithMode(mode).
		WithThickness(
			pick(m.CardHeight, g.CardHeight, DefaultCardHeight),
			pick(m.QRRelief, g.QRRelief, DefaultQRRelief),
		).
		WithScale(pick(m.SizeScale, g.SizeScale, DefaultSizeScale)).
		WithText(m.Text, m.TextTop)
	cfg.QRMargin = pick(m.QRMargin, g.QRMargin, DefaultQRMargin)
	cfg.CornerRadius = pick(m.CornerRadius, g.CornerRadius, DefaultCornerRadius)

	rot := card.DefaultRotation(mode)
	if m.TextRotation != nil {
		rot = *m.TextRotation
	}
	return cfg.WithRotation(rot), nil
}

func ptr[T any](v T) *T { return &v }

// Template returns an example batch file covering the common modes.
func Template() File {
	return File{
		GlobalParams: Params{
			CardHeight:   ptr(1.25),
			QRMargin:     ptr(2.0),
			QRRelief:     ptr(1.0),
			CornerRadius: ptr(2.0),
		},
		Models: []Model{
			{Name: "example-square", URL: "https://example.com", Mode: "square"},
			{Name: "github-pendant", URL: "https://github.com", Mode: "pendant"},
			{Name: "custom-text", URL: "https://mysite.com", Mode: "rectangle-text", Text: "CUSTOM TEXT", TextRotation: ptr(0)},
			{Name: "pendant-text-example", URL: "https://wikipedia.org", Mode: "pendant-text", Text: "WIKI",
				Params: Params{CardHeight: ptr(1.5)}},
		},
	}
}

// WriteTemplate writes Template to path, creating the parent directory.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: mkdir %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(Template(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
