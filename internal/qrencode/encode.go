// Package qrencode turns text and URLs into QR code rasters.
package qrencode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	bqr "github.com/boombuler/barcode/qr"
	skip2 "github.com/skip2/go-qrcode"
	yqr "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	rscqr "rsc.io/qr"
)

const (
	// ModulePixels is the raster size of one QR module.
	ModulePixels = 10
	// Border is the quiet zone in modules. The printed card adds its own
	// margin, so one module is enough.
	Border = 1
)

// Backend names an encoder library.
type Backend string

const (
	Skip2     Backend = "skip2"
	Boombuler Backend = "boombuler"
	RSC       Backend = "rsc"
	Yeqown    Backend = "yeqown"
)

// DefaultBackend is used when no backend is named.
const DefaultBackend = Skip2

var (
	ErrUnknownEncoder = errors.New("unknown QR encoder")
	ErrInvalidPlaceID = errors.New("invalid place ID")
)

var urlPattern = regexp.MustCompile(`^(https?://|www\.)[A-Za-z0-9.-]+\.[A-Za-z]{2,}([/?].*)?$`)

// IsURL reports whether s looks like a web address rather than a file path.
func IsURL(s string) bool {
	return urlPattern.MatchString(s)
}

// Backends lists the available encoders.
func Backends() []Backend {
	return []Backend{Skip2, Boombuler, RSC, Yeqown}
}

// ParseBackend maps a name to a Backend; empty selects the default.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return DefaultBackend, nil
	}
	for _, b := range Backends() {
		if string(b) == strings.ToLower(name) {
			return b, nil
		}
	}
	return "", fmt.Errorf("qrencode: %w: %q", ErrUnknownEncoder, name)
}

// Encode renders text at the highest error correction level.
func Encode(text string, backend Backend) (image.Image, error) {
	m, err := Matrix(text, backend)
	if err != nil {
		return nil, err
	}
	return Paint(m, ModulePixels, Border), nil
}

// Matrix returns the module grid for text, true meaning dark, without a
// quiet zone.
func Matrix(text string, backend Backend) ([][]bool, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	var (
		m   [][]bool
		err error
	)
	switch backend {
	case Skip2:
		m, err = skip2Matrix(text)
	case Boombuler:
		m, err = boombulerMatrix(text)
	case RSC:
		m, err = rscMatrix(text)
	case Yeqown:
		m, err = yeqownMatrix(text)
	default:
		return nil, fmt.Errorf("qrencode: %w: %q", ErrUnknownEncoder, backend)
	}
	if err != nil {
		return nil, fmt.Errorf("qrencode: %s: %w", backend, err)
	}
	return m, nil
}

func skip2Matrix(text string) ([][]bool, error) {
	q, err := skip2.New(text, skip2.Highest)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

func boombulerMatrix(text string) ([][]bool, error) {
	code, err := bqr.Encode(text, bqr.H, bqr.Auto)
	if err != nil {
		return nil, err
	}
	b := code.Bounds()
	m := make([][]bool, b.Dy())
	for y := range m {
		m[y] = make([]bool, b.Dx())
		for x := range m[y] {
			m[y][x] = dark(code.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return m, nil
}

func rscMatrix(text string) ([][]bool, error) {
	code, err := rscqr.Encode(text, rscqr.H)
	if err != nil {
		return nil, err
	}
	m := make([][]bool, code.Size)
	for y := range m {
		m[y] = make([]bool, code.Size)
		for x := range m[y] {
			m[y][x] = code.Black(x, y)
		}
	}
	return m, nil
}

// yeqownMatrix draws the code one pixel per module into a scratch PNG and
// reads the modules back.
func yeqownMatrix(text string) ([][]bool, error) {
	qrc, err := yqr.NewWith(text, yqr.WithErrorCorrectionLevel(yqr.ErrorCorrectionHighest))
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "qr3d-*.png")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	w, err := standard.New(tmpPath,
		standard.WithQRWidth(1),
		standard.WithBorderWidth(0),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err != nil {
		return nil, err
	}
	if err := qrc.Save(w); err != nil {
		return nil, err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	m := make([][]bool, b.Dy())
	for y := range m {
		m[y] = make([]bool, b.Dx())
		for x := range m[y] {
			m[y][x] = dark(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return m, nil
}

func dark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}

// Paint draws a module grid with the given module size and quiet zone,
// black on white.
func Paint(m [][]bool, module, border int) *image.Gray {
	n := len(m)
	side := (n + 2*border) * module
	img := image.NewGray(image.Rect(0, 0, side, side))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y, row := range m {
		for x, on := range row {
			if !on {
				continue
			}
			x0 := (x + border) * module
			y0 := (y + border) * module
			for py := y0; py < y0+module; py++ {
				off := py * img.Stride
				for px := x0; px < x0+module; px++ {
					img.Pix[off+px] = 0
				}
			}
		}
	}
	return img
}

// WritePNG saves img to path, creating the parent directory.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("qrencode: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("qrencode: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("qrencode: encode %s: %w", path, err)
	}
	return f.Close()
}

// ReviewURL returns the Google review link for a place ID. Valid IDs start
// with "ChIJ" or "EI" and are 10 to 50 characters long.
func ReviewURL(placeID string) (string, error) {
	id := strings.TrimSpace(placeID)
	if !strings.HasPrefix(id, "ChIJ") && !strings.HasPrefix(id, "EI") {
		return "", fmt.Errorf("qrencode: %w: %q must start with ChIJ or EI", ErrInvalidPlaceID, placeID)
	}
	if len(id) < 10 || len(id) > 50 {
		return "", fmt.Errorf("qrencode: %w: %q has %d characters, want 10 to 50", ErrInvalidPlaceID, placeID, len(id))
	}
	return "https://search.google.com/local/writereview?placeid=" + id, nil
}
