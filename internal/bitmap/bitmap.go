package bitmap

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// TargetGrid bounds the sampled grid so the emitted model stays around
	// 800-1200 cubes. High error-correction QR codes survive the loss.
	TargetGrid = 50
	// Threshold is the luminance cutoff; darker samples are ink.
	Threshold = 128
)

// Bitmap is an immutable grid of QR cells, row 0 at the top. True is ink.
type Bitmap struct {
	rows, cols int
	cells      []bool
}

// FromRows builds a Bitmap from row slices. Short rows are padded with
// blank cells so the grid stays rectangular.
func FromRows(rows [][]bool) *Bitmap {
	b := &Bitmap{rows: len(rows)}
	for _, r := range rows {
		if len(r) > b.cols {
			b.cols = len(r)
		}
	}
	b.cells = make([]bool, b.rows*b.cols)
	for y, r := range rows {
		copy(b.cells[y*b.cols:], r)
	}
	return b
}

func (b *Bitmap) Rows() int { return b.rows }
func (b *Bitmap) Cols() int { return b.cols }

// Dim is the larger grid side, used as the layout grid dimension.
func (b *Bitmap) Dim() int {
	if b.rows > b.cols {
		return b.rows
	}
	return b.cols
}

// At reports whether the cell at (row, col) is ink. Out of range is blank.
func (b *Bitmap) At(row, col int) bool {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return false
	}
	return b.cells[row*b.cols+col]
}

// InkCount returns the number of raised cells.
func (b *Bitmap) InkCount() int {
	n := 0
	for _, c := range b.cells {
		if c {
			n++
		}
	}
	return n
}

// SampleRate is the pixel stride used for an image of the given size.
func SampleRate(width, height int) int {
	rate := max(width, height) / TargetGrid
	if rate < 1 {
		rate = 1
	}
	return rate
}

// Sample converts img to luminance and keeps every SampleRate-th pixel on
// both axes, thresholded at Threshold. The result is
// ceil(h/rate) x ceil(w/rate).
func Sample(img image.Image) *Bitmap {
	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w == 0 || h == 0 {
		return &Bitmap{}
	}

	rate := SampleRate(w, h)
	b := &Bitmap{
		rows: (h + rate - 1) / rate,
		cols: (w + rate - 1) / rate,
	}
	b.cells = make([]bool, b.rows*b.cols)

	for r := 0; r < b.rows; r++ {
		y := r * rate
		for c := 0; c < b.cols; c++ {
			x := c * rate
			// imaging.Grayscale writes the same luminance to R, G and B.
			lum := gray.Pix[y*gray.Stride+x*4]
			b.cells[r*b.cols+c] = lum < Threshold
		}
	}
	return b
}
