// Package generator runs one QR-to-model generation: encode or load the QR
// image, sample it, lay out the card and write every output file.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"qr3d/internal/bitmap"
	"qr3d/internal/card"
	"qr3d/internal/layout"
	"qr3d/internal/metadata"
	"qr3d/internal/naming"
	"qr3d/internal/preview"
	"qr3d/internal/qrencode"
	"qr3d/internal/scad"
)

// Request describes one generation.
type Request struct {
	// Input is a URL, free text (with ForceText) or an image path.
	Input string
	// Name overrides the derived base name.
	Name      string
	OutputDir string
	Encoder   qrencode.Backend
	// ForceText encodes Input even when it does not look like a URL.
	ForceText bool
	Config    card.Config
}

// Result lists what was written.
type Result struct {
	Dir          string
	Name         string
	ImagePath    string
	SCADPath     string
	MetadataPath string
	PreviewPath  string

	Layout   layout.Result
	Bitmap   *bitmap.Bitmap
	Metadata metadata.Record
	Warnings []card.Warning
}

// Generator is safe for concurrent use. Calls for the same base name are
// serialized so two of them never pick the same output directory.
type Generator struct {
	Logger *logrus.Logger
	// Now stamps metadata records.
	Now func() time.Time

	locks naming.Locker
}

// New returns a Generator logging to logger, or to the standard logger when
// logger is nil.
func New(logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator{Logger: logger, Now: time.Now}
}

var std = New(nil)

// Generate runs req with the package default Generator.
func Generate(req Request) (Result, error) {
	return std.Generate(req)
}

// Generate validates req, then writes <name>.png, <name>.json, <name>.scad
// and <name>.webp into a fresh directory under req.OutputDir.
func (g *Generator) Generate(req Request) (Result, error) {
	log := g.Logger.WithField("input", req.Input)

	cfg, warnings, err := req.Config.Normalize()
	if err != nil {
		return Result{}, err
	}
	for _, w := range warnings {
		log.WithField("field", w.Field).Warn(w.Message)
	}

	if strings.TrimSpace(req.Input) == "" {
		return Result{}, fmt.Errorf("generator: %w: empty input", card.ErrInvalidParameter)
	}
	isText := req.ForceText || qrencode.IsURL(req.Input)

	var img image.Image
	if isText {
		log.WithField("encoder", req.Encoder).Debug("encoding QR code")
		img, err = qrencode.Encode(req.Input, req.Encoder)
	} else {
		log.Debug("loading QR image")
		img, err = bitmap.Decode(req.Input)
	}
	if err != nil {
		return Result{}, err
	}

	bm := bitmap.Sample(img)
	if bm.Dim() == 0 {
		return Result{}, fmt.Errorf("generator: %w: %s", card.ErrEmptyBitmap, req.Input)
	}
	log.Debugf("sampled %dx%d grid", bm.Cols(), bm.Rows())

	res, err := layout.Compute(cfg, bm.Dim())
	if err != nil {
		return Result{}, err
	}
	log.Debugf("card %.2fx%.2fx%.2f mm", res.CardWidth, res.CardLength, cfg.CardHeight)
	for _, w := range res.Warnings(cfg) {
		log.WithField("field", w.Field).Warn(w.Message)
		warnings = append(warnings, w)
	}

	// Names may come from HTTP clients; they never carry path elements.
	base := naming.BaseName(req.Name, true)
	if base == "" {
		base = naming.BaseName(req.Input, isText)
	}
	source := req.Input
	if !isText {
		source = filepath.Base(req.Input)
	}

	unlock := g.locks.Lock(base)
	defer unlock()

	dir, err := naming.UniqueDir(req.OutputDir, base, cfg.CardHeight, cfg.SizeScale)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("generator: mkdir %s: %w", dir, err)
	}
	name := filepath.Base(dir)
	log = log.WithField("dir", dir)

	out := Result{
		Dir:          dir,
		Name:         name,
		ImagePath:    filepath.Join(dir, name+".png"),
		SCADPath:     filepath.Join(dir, name+".scad"),
		MetadataPath: filepath.Join(dir, name+".json"),
		PreviewPath:  filepath.Join(dir, name+".webp"),
		Layout:       res,
		Bitmap:       bm,
		Warnings:     warnings,
	}

	if !isText && strings.EqualFold(filepath.Ext(req.Input), ".png") {
		err = copyFile(req.Input, out.ImagePath)
	} else {
		err = qrencode.WritePNG(out.ImagePath, img)
	}
	if err != nil {
		return Result{}, err
	}

	// Metadata goes first so a failure later still leaves a usable record.
	out.Metadata = metadata.Build(res, cfg, bm, source, g.Now())
	if err := metadata.Write(out.MetadataPath, out.Metadata); err != nil {
		return Result{}, err
	}
	log.Debug("metadata written")

	if err := os.WriteFile(out.SCADPath, scad.Emit(bm, res, cfg, source), 0644); err != nil {
		return Result{}, fmt.Errorf("generator: write %s: %w", out.SCADPath, err)
	}
	log.Debug("openscad program written")

	if err := preview.WriteWebP(out.PreviewPath, preview.Render(bm, preview.DefaultCell)); err != nil {
		return Result{}, err
	}

	log.WithField("mode", cfg.Mode).Info("model generated")
	return out, nil
}

// copyFile copies src to dst; the caller's file is left in place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("generator: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("generator: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("generator: copy %s: %w", src, err)
	}
	return out.Close()
}
