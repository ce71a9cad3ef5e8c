// Package server exposes the generator over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qr3d/internal/card"
	"qr3d/internal/generator"
	"qr3d/internal/qrencode"
)

// Options configures a Server.
type Options struct {
	OutputDir string
	Encoder   qrencode.Backend
	// Defaults seeds every generate request before its own fields apply.
	Defaults  card.Config
	Generator *generator.Generator
	Logger    *logrus.Logger
}

// Server holds the handlers' shared state.
type Server struct {
	opts Options
	log  *logrus.Logger
	gen  *generator.Generator
	pngs *pngCache
}

// New returns a Server. A nil Logger or Generator gets a default.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	gen := opts.Generator
	if gen == nil {
		gen = generator.New(log)
	}
	if opts.Encoder == "" {
		opts.Encoder = qrencode.DefaultBackend
	}
	if opts.Defaults == (card.Config{}) {
		opts.Defaults = card.DefaultConfig()
	}
	return &Server{opts: opts, log: log, gen: gen, pngs: newPNGCache()}
}

// Routes registers the API on r.
func (s *Server) Routes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/modes", s.modes)
		api.GET("/qr", s.qr)
		api.GET("/review-url", s.reviewURL)
		api.POST("/generate", s.generate)
	}
}

// RequestLogger logs one line per request at Info, or Warn for 4xx/5xx.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= 400 {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}
