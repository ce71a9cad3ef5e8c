package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"qr3d/internal/card"
)

// minSVGSide is the smallest raster side an SVG is drawn at, so one QR
// module covers several pixels before sampling.
const minSVGSide = 500

type decoder struct {
	magic  string // '?' matches any byte
	decode func(io.Reader) (image.Image, error)
}

// Decoders are chosen by magic bytes rather than through image.Decode so the
// header-less TGA format cannot shadow the others.
var decoders = []decoder{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8", gif.Decode},
	{"BM", bmp.Decode},
	{"II*\x00", tiff.Decode},
	{"MM\x00*", tiff.Decode},
	{"RIFF????WEBP", webp.Decode},
}

// Load reads the QR image at path and samples it.
func Load(path string) (*Bitmap, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return Sample(img), nil
}

// Decode reads and decodes an image file of any supported format.
func Decode(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("bitmap: %w: %s", card.ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("bitmap: read %s: %w", path, err)
	}

	img, err := decodeBytes(raw, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("bitmap: %w: %s: %v", card.ErrImageDecode, path, err)
	}
	return img, nil
}

func decodeBytes(raw []byte, ext string) (image.Image, error) {
	for _, d := range decoders {
		if matchMagic(d.magic, raw) {
			return d.decode(bytes.NewReader(raw))
		}
	}

	switch {
	case ext == ".svg" || looksLikeSVG(raw):
		return rasterizeSVG(bytes.NewReader(raw))
	case ext == ".tga":
		return tga.Decode(bytes.NewReader(raw))
	}
	return nil, errors.New("unknown image format")
}

func matchMagic(magic string, b []byte) bool {
	if len(b) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != b[i] {
			return false
		}
	}
	return true
}

func looksLikeSVG(raw []byte) bool {
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// rasterizeSVG draws the icon onto a white canvas; transparent areas would
// otherwise read as black ink.
func rasterizeSVG(r io.Reader) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, err
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has empty viewBox %.0fx%.0f", w, h)
	}
	if side := max(w, h); side < minSVGSide {
		k := float64(int(minSVGSide/side) + 1)
		w, h = w*k, h*k
	}

	iw, ih := int(w), int(h)
	icon.SetTarget(0, 0, float64(iw), float64(ih))
	canvas := image.NewRGBA(image.Rect(0, 0, iw, ih))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(iw, ih, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(iw, ih, scanner), 1)
	return canvas, nil
}
