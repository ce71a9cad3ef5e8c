package server

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"qr3d/internal/batch"
	"qr3d/internal/card"
	"qr3d/internal/generator"
	"qr3d/internal/qrencode"
)

const (
	defaultQRSize = 400
	minQRSize     = 64
	maxQRSize     = 2048
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) modes(c *gin.Context) {
	names := make([]string, 0, len(card.Modes()))
	for _, m := range card.Modes() {
		names = append(names, m.String())
	}
	c.JSON(http.StatusOK, gin.H{"modes": names})
}

// qr returns a PNG of the QR code for the "text" query param, scaled to
// "size" pixels with hard module edges.
func (s *Server) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	size := defaultQRSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be an integer"})
			return
		}
		size = min(max(n, minQRSize), maxQRSize)
	}
	backend := s.opts.Encoder
	if v := c.Query("encoder"); v != "" {
		b, err := qrencode.ParseBackend(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		backend = b
	}

	data, err := s.pngs.get(cacheKey(text, size, backend), func() ([]byte, error) {
		img, err := qrencode.Encode(text, backend)
		if err != nil {
			return nil, err
		}
		scaled := imaging.Resize(img, size, size, imaging.NearestNeighbor)

		var buf bytes.Buffer
		if err := png.Encode(&buf, scaled); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) reviewURL(c *gin.Context) {
	url, err := qrencode.ReviewURL(c.Query("place_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// generateRequest is a batch model plus per-request encoder choice. The
// input is always encoded; the server never reads local image files.
type generateRequest struct {
	batch.Model
	Encoder string `json:"encoder"`
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	cfg, err := s.requestConfig(req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	backend := s.opts.Encoder
	if req.Encoder != "" {
		if backend, err = qrencode.ParseBackend(req.Encoder); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := s.gen.Generate(generator.Request{
		Input:     req.URL,
		Name:      req.Name,
		OutputDir: s.opts.OutputDir,
		Encoder:   backend,
		ForceText: true,
		Config:    cfg,
	})
	if err != nil {
		s.log.WithError(err).WithField("url", req.URL).Warn("generate failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.String()
	}
	c.JSON(http.StatusCreated, gin.H{
		"name": res.Name,
		"dir":  res.Dir,
		"files": gin.H{
			"image":    res.ImagePath,
			"metadata": res.MetadataPath,
			"scad":     res.SCADPath,
			"preview":  res.PreviewPath,
		},
		"metadata": res.Metadata,
		"warnings": warnings,
	})
}

// requestConfig applies m on top of the server defaults.
func (s *Server) requestConfig(m batch.Model) (card.Config, error) {
	cfg := s.opts.Defaults
	if m.Mode != "" {
		mode, err := card.ParseMode(m.Mode)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithMode(mode).WithRotation(card.DefaultRotation(mode))
	}
	if m.CardHeight != nil {
		cfg.CardHeight = *m.CardHeight
	}
	if m.QRRelief != nil {
		cfg = cfg.WithThickness(cfg.CardHeight, *m.QRRelief)
	}
	if m.QRMargin != nil {
		cfg.QRMargin = *m.QRMargin
	}
	if m.CornerRadius != nil {
		cfg.CornerRadius = *m.CornerRadius
	}
	if m.SizeScale != nil {
		cfg.SizeScale = *m.SizeScale
	}
	if m.TextRotation != nil {
		cfg.TextRotation = *m.TextRotation
	}
	return cfg.WithText(m.Text, m.TextTop), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, card.ErrLayoutOverlap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, card.ErrTextTooLong),
		errors.Is(err, card.ErrInvalidRotation),
		errors.Is(err, card.ErrInvalidParameter),
		errors.Is(err, card.ErrUnsupportedMode),
		errors.Is(err, qrencode.ErrUnknownEncoder):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
