package main

import (
	"fmt"
	"math"
	"os"

	"qr3d/internal/layout"
	"qr3d/internal/metadata"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: inspect <model.json>")
		os.Exit(2)
	}
	path := os.Args[1]
	rec, err := metadata.Read(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	d := rec.Dimensions
	fmt.Printf("Generated: %s (v%s)\n", rec.GeneratedAt, rec.Version)
	fmt.Printf("Input: %s\n", rec.QRInput)
	fmt.Printf("Mode: %s\n", rec.Mode)
	fmt.Printf("  Card: %.3f x %.3f x %.3f mm\n", d.CardWidth, d.CardLength, d.CardHeight)
	fmt.Printf("  QR: %.3f mm, grid %s, pixel %.3f mm\n", d.QRSize, d.Grid, d.PixelSize)
	p := rec.Parameters
	fmt.Printf("  Margin %.3f, relief %.3f, corner %.3f, scale %.3f\n", p.QRMargin, p.QRRelief, p.CornerRadius, p.SizeScale)
	if ph := rec.Pendant; ph != nil {
		fmt.Printf("  Hole: d=%.3f at %.3f from top, top margin %.3f\n", ph.HoleDiameter, ph.HoleFromTop, ph.TopMargin)
	}
	if t := rec.Text; t != nil {
		if t.Content != "" {
			fmt.Printf("  Text: %q\n", t.Content)
		}
		if t.ContentTop != "" {
			fmt.Printf("  Top text: %q\n", t.ContentTop)
		}
		if t.ContentBottom != "" {
			fmt.Printf("  Bottom text: %q\n", t.ContentBottom)
		}
		fmt.Printf("    size %.3f, height %.3f, margin %.3f, rotation %d, font %s\n", t.Size, t.Height, t.Margin, t.Rotation, t.Font)
	}

	// Rebuild the config and lay it out again to check the record.
	cfg, err := rec.Config()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	var cols, rows int
	if _, err := fmt.Sscanf(d.Grid, "%dx%d", &cols, &rows); err != nil {
		fmt.Printf("Error: bad qr_grid %q: %v\n", d.Grid, err)
		os.Exit(1)
	}
	cfg, _, err = cfg.Normalize()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	res, err := layout.Compute(cfg, max(cols, rows))
	if err != nil {
		fmt.Printf("Relayout: %v\n", err)
		os.Exit(1)
	}

	ok := true
	check := func(name string, got, want float64) {
		if math.Abs(got-want) > 0.0005 {
			fmt.Printf("  MISMATCH %s: record %.3f, relayout %.3f\n", name, want, got)
			ok = false
		}
	}
	check("card_width_mm", res.CardWidth, d.CardWidth)
	check("card_length_mm", res.CardLength, d.CardLength)
	check("qr_size_mm", res.QRSize, d.QRSize)
	check("qr_pixel_size_mm", res.PixelSize, d.PixelSize)
	if ok {
		fmt.Println("Relayout: matches record")
		return
	}
	os.Exit(1)
}
