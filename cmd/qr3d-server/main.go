package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qr3d/internal/config"
	"qr3d/internal/generator"
	"qr3d/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	listen := flag.String("listen", "", "Listen address (default: :8080, or $PORT)")
	outputDir := flag.String("output", "", "Output directory (default: ~/qr-codes)")
	encoder := flag.String("encoder", "", "Default QR encoder")
	logLevel := flag.String("log-level", "", "Log level (default: info)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	addr := *listen
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		Encoder:    *encoder,
		LogLevel:   *logLevel,
		ListenAddr: addr,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := cfg.Logger()
	defaults, err := cfg.CardConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatal(err)
	}

	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), server.RequestLogger(log))

	server.New(server.Options{
		OutputDir: cfg.OutputDir,
		Encoder:   cfg.Backend(),
		Defaults:  defaults,
		Generator: generator.New(log),
		Logger:    log,
	}).Routes(r)

	log.Infof("starting server on %s, writing to %s", cfg.ListenAddr, cfg.OutputDir)
	if err := r.Run(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
