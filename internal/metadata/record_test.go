package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"qr3d/internal/bitmap"
	"qr3d/internal/card"
	"qr3d/internal/layout"
)

var stamp = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

func grid(rows, cols int) *bitmap.Bitmap {
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
		cells[r][0] = true
	}
	return bitmap.FromRows(cells)
}

func record(t *testing.T, cfg card.Config, bm *bitmap.Bitmap) Record {
	t.Helper()
	cfg, _, err := cfg.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	res, err := layout.Compute(cfg, bm.Dim())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return Build(res, cfg, bm, "https://example.com", stamp)
}

func TestBuild_Square(t *testing.T) {
	rec := record(t, card.DefaultConfig(), grid(29, 29))

	if rec.Pendant != nil || rec.Text != nil {
		t.Fatalf("square record has optional sections: %+v %+v", rec.Pendant, rec.Text)
	}
	if rec.GeneratedAt != "2025-03-01T12:30:00Z" || rec.Version != Version {
		t.Fatalf("header=%q %q", rec.GeneratedAt, rec.Version)
	}
	// 51/29 = 1.758620...
	if rec.Dimensions.PixelSize != 1.759 || rec.Dimensions.CardWidth != 55 {
		t.Fatalf("dimensions=%+v", rec.Dimensions)
	}

	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, absent := range []string{`"pendant"`, `"text"`} {
		if strings.Contains(s, absent) {
			t.Fatalf("square JSON contains %s:\n%s", absent, s)
		}
	}
	if !strings.Contains(s, `"mode": "square"`) {
		t.Fatalf("mode not written by name:\n%s", s)
	}
}

func TestBuild_GridIsColsByRows(t *testing.T) {
	rec := record(t, card.DefaultConfig(), grid(20, 50))
	if rec.Dimensions.Grid != "50x20" {
		t.Fatalf("grid=%q; want 50x20", rec.Dimensions.Grid)
	}
}

func TestBuild_TextSections(t *testing.T) {
	single := record(t, card.DefaultConfig().WithMode(card.PendantText).WithText("A&B", "").WithRotation(180), grid(29, 29))
	if single.Pendant == nil || single.Text == nil {
		t.Fatalf("pendant-text record missing sections")
	}
	if single.Text.Content != "A&B" || single.Text.ContentBottom != "" || single.Text.Rotation != 180 {
		t.Fatalf("text=%+v", single.Text)
	}

	data, err := Marshal(single)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"content": "A&B"`) {
		t.Fatalf("label was escaped:\n%s", data)
	}

	// A text mode without text has no text section at all.
	empty := record(t, card.DefaultConfig().WithMode(card.RectangleText2x), grid(29, 29))
	if empty.Text != nil {
		t.Fatalf("empty 2x record has text: %+v", empty.Text)
	}
}

func TestRoundTrip_2xBottomOnly(t *testing.T) {
	cfg := card.DefaultConfig().WithMode(card.RectangleText2x).WithText("BOTTOM", "").WithScale(0.5)
	rec := record(t, cfg, grid(29, 29))

	path := filepath.Join(t.TempDir(), "model.json")
	if err := Write(path, rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, err := back.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if got.TextTop != "" || got.TextBottom != "BOTTOM" {
		t.Fatalf("text=(%q,%q); want (BOTTOM, \"\")", got.TextBottom, got.TextTop)
	}
	if got.Mode != card.RectangleText2x || got.SizeScale != 0.5 || got.TextRotation != 180 {
		t.Fatalf("config=%+v", got)
	}
}

func TestRecordConfig_MissingSectionsKeepDefaults(t *testing.T) {
	rec := record(t, card.DefaultConfig().WithMode(card.Pendant), grid(25, 25))
	rec.Pendant = nil
	rec.Parameters.SizeScale = 0

	got, err := rec.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	def := card.DefaultConfig()
	if got.HoleDiameter != def.HoleDiameter || got.TopMargin != def.TopMargin {
		t.Fatalf("pendant fields=%+v", got)
	}
	// Width 55 infers the medium scale.
	if got.SizeScale != 1.0 {
		t.Fatalf("scale=%v; want 1", got.SizeScale)
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Read(filepath.Join(dir, "none.json")); err == nil {
		t.Fatalf("missing file: expected error")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"mode":"hexagon"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(bad); err == nil {
		t.Fatalf("unknown mode: expected error")
	}
}
