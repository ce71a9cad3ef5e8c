package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"qr3d/internal/batch"
	"qr3d/internal/card"
	"qr3d/internal/config"
	"qr3d/internal/generator"
	"qr3d/internal/qrencode"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: ~/qr-codes)")
	encoder := flag.String("encoder", "", "QR encoder: skip2, boombuler, rsc, yeqown (default: skip2)")
	workers := flag.Int("workers", 0, "Batch worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default: info)")

	batchFile := flag.String("batch", "", "Generate every model of a batch JSON file")
	initBatch := flag.String("init-batch", "", "Write an example batch JSON file to this path and exit")

	name := flag.String("name", "", "Output base name (default: derived from the input)")
	modeName := flag.String("mode", "", "square, pendant, rectangle-text, pendant-text, rectangle-text-2x")
	text := flag.String("text", "", "Label below the QR code (text modes, max 20 characters)")
	textTop := flag.String("text-top", "", "Label above the QR code (rectangle-text-2x only)")
	rotation := flag.Int("rotation", -1, "Text rotation 0 or 180 (default: 180 for pendant-text and rectangle-text-2x, else 0)")
	height := flag.Float64("height", 0, "Card thickness in mm")
	relief := flag.Float64("relief", 0, "QR and text relief in mm")
	margin := flag.Float64("margin", -1, "Margin around the QR code in mm")
	corner := flag.Float64("corner", -1, "Corner radius in mm")
	scale := flag.Float64("scale", 0, "Size scale: 0.5 small, 1 medium, 2 large")
	forceText := flag.Bool("text-input", false, "Encode the input as text even if it is not a URL")
	placeID := flag.String("review", "", "Google place ID; encodes its review link instead of an input")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qr3d [flags] <image|url>\n       qr3d -batch models.json\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *initBatch != "" {
		if err := batch.WriteTemplate(*initBatch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Batch template written: %s\n", *initBatch)
		return
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Encoder:   *encoder,
		Workers:   *workers,
		LogLevel:  *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gen := generator.New(cfg.Logger())

	if *batchFile != "" {
		os.Exit(runBatch(cfg, gen, *batchFile))
	}

	input := flag.Arg(0)
	if *placeID != "" {
		u, err := qrencode.ReviewURL(*placeID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		input = u
	}
	if input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cardCfg, err := cfg.CardConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *modeName != "" {
		m, err := card.ParseMode(*modeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cardCfg = cardCfg.WithMode(m).WithRotation(card.DefaultRotation(m))
	}
	if *height > 0 {
		cardCfg.CardHeight = *height
	}
	if *relief > 0 {
		cardCfg = cardCfg.WithThickness(cardCfg.CardHeight, *relief)
	}
	if *margin >= 0 {
		cardCfg.QRMargin = *margin
	}
	if *corner >= 0 {
		cardCfg.CornerRadius = *corner
	}
	if *scale > 0 {
		cardCfg.SizeScale = *scale
	}
	if *rotation >= 0 {
		cardCfg.TextRotation = *rotation
	}
	cardCfg = cardCfg.WithText(*text, *textTop)

	if !*forceText && *placeID == "" && !qrencode.IsURL(input) {
		if _, err := os.Stat(input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: image file not found: %s\n", input)
			os.Exit(1)
		}
	}

	fmt.Printf("Processing: %s\n", input)
	fmt.Printf("Mode: %s\n", cardCfg.Mode)

	res, err := gen.Generate(generator.Request{
		Input:     input,
		Name:      *name,
		OutputDir: cfg.OutputDir,
		Encoder:   cfg.Backend(),
		ForceText: *forceText,
		Config:    cardCfg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	fmt.Printf("QR grid: %dx%d\n", res.Bitmap.Cols(), res.Bitmap.Rows())
	fmt.Printf("Model size: %.2fx%.2fx%.2fmm\n", res.Layout.CardWidth, res.Layout.CardLength, cardCfg.CardHeight)
	fmt.Printf("  %s\n  %s\n  %s\n  %s\n", res.ImagePath, res.MetadataPath, res.SCADPath, res.PreviewPath)
	fmt.Printf("Done! All files in: %s\n", res.Dir)
}

func runBatch(cfg config.Config, gen *generator.Generator, path string) int {
	f, err := batch.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading batch: %v\n", err)
		return 1
	}

	fmt.Printf("QR → OpenSCAD batch\n")
	fmt.Printf("Models: %d, Workers: %d\n", len(f.Models), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Encoder:   cfg.Backend(),
		Workers:   cfg.Workers,
		Logger:    gen.Logger,
	}, gen, f)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Printf("Generated: %d/%d\n", success, len(results))

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errs[:min(len(errs), 20)] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		return 1
	}
	return 0
}
