// Package layout computes the physical placement of every part of a card:
// outline, QR pattern, labels and the pendant hole. All lengths are in
// millimetres, Y growing from the hole edge of the card towards the labels.
package layout

import (
	"fmt"

	"qr3d/internal/card"
	"qr3d/internal/textfit"
)

// textSafety is subtracted from the usable label width on top of the margins.
const textSafety = 4.0

const eps = 1e-9

// Result is the computed layout for one card.
type Result struct {
	Mode card.Mode

	CardWidth    float64
	CardLength   float64
	CornerRadius float64

	Grid      int
	PixelSize float64
	QROffsetX float64
	QROffsetY float64
	QRSize    float64

	// FontSize is shared by both labels.
	FontSize float64
	Bottom   TextBlock
	Top      TextBlock

	Hole Hole
}

// TextBlock anchors one label. X is the horizontal centre; Y is the anchor of
// a bottom-aligned text run before rotation.
type TextBlock struct {
	Present  bool
	X, Y     float64
	Rotation int
}

// Hole is the chain hole drilled through pendant cards.
type Hole struct {
	Present  bool
	X, Y     float64
	Diameter float64
}

// Compute lays out cfg for a QR grid of grid x grid cells. cfg is expected to
// have passed card.Config.Normalize.
func Compute(cfg card.Config, grid int) (Result, error) {
	if grid < 1 {
		return Result{}, fmt.Errorf("layout: %w: grid %d", card.ErrEmptyBitmap, grid)
	}

	s := cfg.SizeScale
	m := cfg.QRMargin
	hasBottom := cfg.HasBottomText()
	hasTop := cfg.HasTopText()

	r := Result{
		Mode:         cfg.Mode,
		Grid:         grid,
		CornerRadius: cfg.CornerRadius * s,
		FontSize:     textfit.DefaultSize,
	}

	textArea := func(present bool) float64 {
		if !present {
			return 0
		}
		return r.FontSize + cfg.TextMargin + m
	}

	var avail float64
	switch cfg.Mode {
	case card.Square:
		r.CardWidth = card.BaseCardWidth * s
		avail = r.CardWidth - 2*m
		r.QROffsetY = m
		r.CardLength = r.CardWidth

	case card.Pendant:
		r.CardWidth = card.BaseCardWidth * s
		avail = r.CardWidth - 2*m
		r.QROffsetY = cfg.TopMargin * s
		r.CardLength = avail + m + r.QROffsetY

	case card.RectangleText:
		r.CardWidth = card.BaseRectangleWidth * s
		avail = r.CardWidth - 2*m
		if hasBottom {
			r.FontSize = textfit.Fit(cfg.TextBottom, r.CardWidth-2*m-textSafety)
		}
		r.QROffsetY = m
		tail := m
		if hasBottom {
			tail = textArea(true)
		}
		r.CardLength = r.QROffsetY + avail + tail

	case card.PendantText:
		r.CardWidth = card.BaseCardWidth * s
		avail = r.CardWidth - 2*m
		if hasBottom {
			r.FontSize = textfit.Fit(cfg.TextBottom, r.CardWidth-2*m-textSafety)
		}
		r.QROffsetY = cfg.TopMargin * s
		r.CardLength = avail + m + r.QROffsetY + textArea(hasBottom)

	case card.RectangleText2x:
		r.CardWidth = card.BaseRectangleWidth * s
		avail = r.CardWidth - 2*m
		var top, bottom string
		if hasTop {
			top = cfg.TextTop
		}
		if hasBottom {
			bottom = cfg.TextBottom
		}
		r.FontSize = textfit.FitShared(top, bottom, r.CardWidth-2*m-textSafety)
		r.QROffsetY = textArea(hasTop)
		r.CardLength = textArea(hasTop) + avail + textArea(hasBottom)

	default:
		return Result{}, fmt.Errorf("layout: %w: %v", card.ErrUnsupportedMode, cfg.Mode)
	}

	if avail <= 0 {
		return Result{}, fmt.Errorf("layout: %w: qr margin %.3f leaves no room on a %.3f mm card",
			card.ErrLayoutOverlap, m, r.CardWidth)
	}

	// Both axes get the same space, so pixels stay square.
	availW, availH := avail, avail
	r.PixelSize = min(availW, availH) / float64(grid)
	r.QROffsetX = m
	r.QRSize = r.PixelSize * float64(grid)

	centre := r.CardWidth / 2
	r.Bottom = TextBlock{X: centre, Rotation: cfg.TextRotation}
	r.Top = TextBlock{X: centre, Rotation: 180}
	if cfg.Mode == card.RectangleText2x {
		r.Bottom.Rotation = 180
	}

	if hasBottom {
		base := r.QROffsetY + r.QRSize + cfg.TextMargin
		r.Bottom.Present = true
		r.Bottom.Y = base
		// Rotated text grows towards -Y from its anchor; push the anchor
		// down by one text height so the run stays clear of the QR code.
		if r.Bottom.Rotation == 180 {
			r.Bottom.Y = base + r.FontSize
		}
	}
	if hasTop {
		r.Top.Present = true
		r.Top.Y = m + r.FontSize
	}

	if cfg.Mode.HasHole() {
		r.Hole = Hole{
			Present:  true,
			X:        centre,
			Y:        cfg.HoleFromTop * s,
			Diameter: cfg.HoleDiameter * s,
		}
	}

	if err := r.validate(); err != nil {
		return Result{}, err
	}
	return r, nil
}

// BottomBand returns the Y extent occupied by the bottom label.
func (r Result) BottomBand() (y0, y1 float64) {
	return band(r.Bottom, r.FontSize)
}

// TopBand returns the Y extent occupied by the top label.
func (r Result) TopBand() (y0, y1 float64) {
	return band(r.Top, r.FontSize)
}

func band(b TextBlock, size float64) (float64, float64) {
	if b.Rotation == 180 {
		return b.Y - size, b.Y
	}
	return b.Y, b.Y + size
}

// Warnings reports labels that run past the card edges at FontSize. They are
// still emitted; the printer clips them.
func (r Result) Warnings(cfg card.Config) []card.Warning {
	labels := []struct {
		field string
		block TextBlock
		text  string
	}{
		{"text", r.Bottom, cfg.TextBottom},
		{"text_top", r.Top, cfg.TextTop},
	}
	var out []card.Warning
	for _, l := range labels {
		if !l.block.Present {
			continue
		}
		if w := textfit.Width(l.text, r.FontSize); w > r.CardWidth+eps {
			out = append(out, card.Warning{
				Field:   l.field,
				Message: fmt.Sprintf("%.3f mm wide at size %.1f, card is %.3f mm", w, r.FontSize, r.CardWidth),
			})
		}
	}
	return out
}

// validate checks the placements against each other instead of trusting the
// offset arithmetic.
func (r Result) validate() error {
	qrTop := r.QROffsetY + r.QRSize
	if r.QROffsetX < -eps || r.QROffsetX+r.QRSize > r.CardWidth+eps ||
		r.QROffsetY < -eps || qrTop > r.CardLength+eps {
		return fmt.Errorf("layout: %w: qr code %.3f mm at (%.3f, %.3f) exceeds card %.3fx%.3f",
			card.ErrLayoutOverlap, r.QRSize, r.QROffsetX, r.QROffsetY, r.CardWidth, r.CardLength)
	}

	labels := []struct {
		name  string
		block TextBlock
	}{
		{"bottom text", r.Bottom},
		{"top text", r.Top},
	}
	for _, l := range labels {
		if !l.block.Present {
			continue
		}
		y0, y1 := band(l.block, r.FontSize)
		if y0 < qrTop-eps && y1 > r.QROffsetY+eps {
			return fmt.Errorf("layout: %w: %s [%.3f, %.3f] overlaps qr code [%.3f, %.3f]",
				card.ErrLayoutOverlap, l.name, y0, y1, r.QROffsetY, qrTop)
		}
		if y0 < -eps || y1 > r.CardLength+eps {
			return fmt.Errorf("layout: %w: %s [%.3f, %.3f] leaves card length %.3f",
				card.ErrLayoutOverlap, l.name, y0, y1, r.CardLength)
		}
	}

	if r.Hole.Present {
		rad := r.Hole.Diameter / 2
		if r.Hole.Y-rad < -eps || r.Hole.X-rad < -eps || r.Hole.X+rad > r.CardWidth+eps {
			return fmt.Errorf("layout: %w: hole d=%.3f at (%.3f, %.3f) leaves the card",
				card.ErrLayoutOverlap, r.Hole.Diameter, r.Hole.X, r.Hole.Y)
		}
		// The rim may touch the quiet zone; the centre must stay out of the code.
		if r.Hole.Y >= r.QROffsetY {
			return fmt.Errorf("layout: %w: hole centre %.3f is inside the qr code starting at %.3f",
				card.ErrLayoutOverlap, r.Hole.Y, r.QROffsetY)
		}
	}
	return nil
}
