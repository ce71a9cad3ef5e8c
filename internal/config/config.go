package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"qr3d/internal/card"
	"qr3d/internal/qrencode"
)

// Config holds output paths, service settings and generation defaults.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir"`

	// Generation settings
	Encoder  string    `json:"encoder"`
	Workers  int       `json:"workers"`
	Defaults *Defaults `json:"defaults,omitempty"`

	// Service settings
	LogLevel   string `json:"log_level"`
	ListenAddr string `json:"listen_addr"`
}

// Defaults overrides card.DefaultConfig for every generation. Unset fields
// keep the built-in value.
type Defaults struct {
	Mode         string   `json:"mode,omitempty"`
	CardHeight   *float64 `json:"card_height,omitempty"`
	QRMargin     *float64 `json:"qr_margin,omitempty"`
	QRRelief     *float64 `json:"qr_relief,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	SizeScale    *float64 `json:"size_scale,omitempty"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Encoder != "" {
		c.Encoder = flags.Encoder
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}

	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir()
	} else {
		c.OutputDir = expandHome(c.OutputDir)
	}
	if c.Encoder == "" {
		c.Encoder = string(qrencode.DefaultBackend)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	Encoder    string
	Workers    int
	LogLevel   string
	ListenAddr string
}

// Validate checks the values Resolve cannot default.
func (c Config) Validate() error {
	if _, err := qrencode.ParseBackend(c.Encoder); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.CardConfig(); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	return nil
}

// Backend returns the configured encoder, falling back to the default.
func (c Config) Backend() qrencode.Backend {
	b, err := qrencode.ParseBackend(c.Encoder)
	if err != nil {
		return qrencode.DefaultBackend
	}
	return b
}

// Logger builds a logrus logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// CardConfig returns card.DefaultConfig with the file's defaults applied.
func (c Config) CardConfig() (card.Config, error) {
	cfg := card.DefaultConfig()
	d := c.Defaults
	if d == nil {
		return cfg, nil
	}
	if d.Mode != "" {
		m, err := card.ParseMode(d.Mode)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithMode(m).WithRotation(card.DefaultRotation(m))
	}
	if d.CardHeight != nil {
		cfg.CardHeight = *d.CardHeight
	}
	if d.QRRelief != nil {
		cfg = cfg.WithThickness(cfg.CardHeight, *d.QRRelief)
	}
	if d.QRMargin != nil {
		cfg.QRMargin = *d.QRMargin
	}
	if d.CornerRadius != nil {
		cfg.CornerRadius = *d.CornerRadius
	}
	if d.SizeScale != nil {
		cfg.SizeScale = *d.SizeScale
	}
	return cfg, nil
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "qr-codes"
	}
	return filepath.Join(home, "qr-codes")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
