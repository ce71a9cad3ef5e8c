package preview

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"

	"qr3d/internal/bitmap"
)

func TestRender(t *testing.T) {
	bm := bitmap.FromRows([][]bool{
		{true, false},
		{false, true},
		{true, true},
	})
	img := Render(bm, 4)

	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 20 {
		t.Fatalf("bounds=%v; want 16x20", b)
	}

	tcs := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0xff},   // border
		{4, 4, 0},      // cell (0,0)
		{7, 7, 0},      // far corner of cell (0,0)
		{8, 4, 0xff},   // cell (0,1)
		{8, 8, 0},      // cell (1,1)
		{4, 12, 0},     // cell (2,0)
		{15, 19, 0xff}, // border
	}
	for _, tc := range tcs {
		if got := img.GrayAt(tc.x, tc.y).Y; got != tc.want {
			t.Fatalf("GrayAt(%d,%d)=%d; want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestRender_DefaultCell(t *testing.T) {
	img := Render(bitmap.FromRows([][]bool{{true}}), 0)
	if img.Bounds().Dx() != 3*DefaultCell {
		t.Fatalf("width=%d; want %d", img.Bounds().Dx(), 3*DefaultCell)
	}
}

func TestWriteWebP(t *testing.T) {
	img := Render(bitmap.FromRows([][]bool{{true, false}, {false, true}}), 5)
	path := filepath.Join(t.TempDir(), "p.webp")
	if err := WriteWebP(path, img); err != nil {
		t.Fatalf("WriteWebP: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	back, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Bounds().Dx() != 20 || back.Bounds().Dy() != 20 {
		t.Fatalf("bounds=%v; want 20x20", back.Bounds())
	}
	// Lossless: a dark cell reads back dark.
	if r, _, _, _ := back.At(6, 6).RGBA(); r > 0x1000 {
		t.Fatalf("cell (0,0) not dark after round trip: %#x", r)
	}

	if err := WritePNG(filepath.Join(t.TempDir(), "p.png"), img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
}
