// Package preview draws a flat top-down image of the sampled QR grid, the
// pattern that will be raised on the printed card.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"qr3d/internal/bitmap"
)

// DefaultCell is the preview size of one grid cell in pixels.
const DefaultCell = 8

// Render draws bm one pixel per cell with a one-cell white border, then
// scales it up with nearest-neighbour filtering so edges stay hard.
func Render(bm *bitmap.Bitmap, cell int) *image.Gray {
	if cell < 1 {
		cell = DefaultCell
	}
	rows, cols := bm.Rows(), bm.Cols()

	small := image.NewGray(image.Rect(0, 0, cols+2, rows+2))
	for i := range small.Pix {
		small.Pix[i] = 0xff
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if bm.At(r, c) {
				small.Pix[small.PixOffset(c+1, r+1)] = 0
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, (cols+2)*cell, (rows+2)*cell))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst
}

// WriteWebP saves img as lossless WebP.
func WriteWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("preview: webp encode %s: %w", path, err)
	}
	return f.Close()
}

// WritePNG saves img as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("preview: png encode %s: %w", path, err)
	}
	return f.Close()
}
