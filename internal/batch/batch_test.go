package batch

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"qr3d/internal/card"
	"qr3d/internal/generator"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestFileConfig_Precedence(t *testing.T) {
	path := writeFile(t, t.TempDir(), `{
		"global_params": {"card_height": 1.5, "qr_relief": 0.8},
		"models": [
			{"name": "a", "url": "https://a.example.com", "mode": "square"},
			{"name": "b", "url": "https://b.example.com", "mode": "pendant-text", "text": "HI", "qr_relief": 1.2, "qr_margin": 1},
			{"name": "c", "url": "https://c.example.com", "mode": "rectangle-text", "text": "HI", "text_rotation": 180}
		]
	}`)
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	a, err := f.Config(f.Models[0])
	if err != nil {
		t.Fatalf("Config(a): %v", err)
	}
	if a.CardHeight != 1.5 || a.QRRelief != 0.8 || a.TextHeight != 0.8 || a.QRMargin != DefaultQRMargin || a.CornerRadius != DefaultCornerRadius {
		t.Fatalf("a=%+v", a)
	}

	b, err := f.Config(f.Models[1])
	if err != nil {
		t.Fatalf("Config(b): %v", err)
	}
	if b.QRRelief != 1.2 || b.TextHeight != 1.2 || b.QRMargin != 1 || b.TextRotation != 180 || b.Mode != card.PendantText {
		t.Fatalf("b=%+v", b)
	}

	c, err := f.Config(f.Models[2])
	if err != nil {
		t.Fatalf("Config(c): %v", err)
	}
	if c.TextRotation != 180 || c.TextBottom != "HI" {
		t.Fatalf("c=%+v", c)
	}
}

func TestFileConfig_Invalid(t *testing.T) {
	f := File{}
	if _, err := f.Config(Model{Name: "x", URL: "https://x.com"}); !errors.Is(err, errMissingFields) {
		t.Fatalf("missing mode err=%v", err)
	}
	if _, err := f.Config(Model{Name: "x", URL: "https://x.com", Mode: "circle"}); !errors.Is(err, card.ErrUnsupportedMode) {
		t.Fatalf("bad mode err=%v", err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "none.json")); err == nil {
		t.Fatalf("missing file: expected error")
	}
	if _, err := LoadFile(writeFile(t, dir, `{"models": [`)); err == nil {
		t.Fatalf("bad json: expected error")
	}
	if _, err := LoadFile(writeFile(t, dir, `{"models": []}`)); err == nil {
		t.Fatalf("no models: expected error")
	}
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := File{Models: []Model{
		{Name: "ok-square", URL: "https://example.com", Mode: "square"},
		{Name: "no-mode", URL: "https://example.com"},
		{Name: "ok-text", URL: "https://example.org", Mode: "rectangle-text-2x", Text: "BOTTOM", TextTop: "TOP"},
		{Name: "bad-image", URL: filepath.Join(out, "missing.png"), Mode: "square"},
		{Name: "ok-square", URL: "https://example.net", Mode: "square"},
	}}

	results := Run(Config{OutputDir: out, Workers: 3, Logger: logger}, generator.New(logger), f)
	if len(results) != len(f.Models) {
		t.Fatalf("results=%d; want %d", len(results), len(f.Models))
	}

	wantOK := []bool{true, false, true, false, true}
	for i, r := range results {
		if r.Success != wantOK[i] {
			t.Fatalf("result %d (%s): success=%v err=%q", i, r.Name, r.Success, r.Error)
		}
	}
	if results[1].Error != errMissingFields.Error() {
		t.Fatalf("no-mode error=%q", results[1].Error)
	}

	// Two models share a name: both directories exist, one versioned.
	for _, d := range []string{"ok-square-medium-medium", "ok-square-medium-medium (1)"} {
		if _, err := os.Stat(filepath.Join(out, d)); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("manifest has %d entries; want 3", len(entries))
	}
	if filepath.IsAbs(entries[0].SCAD) || filepath.Ext(entries[0].SCAD) != ".scad" {
		t.Fatalf("scad path=%q", entries[0].SCAD)
	}
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch", "config.json")
	if err := WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	for _, m := range f.Models {
		if _, err := f.Config(m); err != nil {
			t.Fatalf("template model %s: %v", m.Name, err)
		}
	}
}
