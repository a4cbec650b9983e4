package service

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pressops/docsmith/acquire"
)

// Limits bounds upload sizes per tool, in bytes.
type Limits struct {
	// DefaultBytes applies to every tool without a dedicated budget.
	DefaultBytes int64 `yaml:"default_bytes"`

	// CompressBytes applies to compress-pdf, which tolerates larger inputs.
	CompressBytes int64 `yaml:"compress_bytes"`

	// AbsoluteBytes is the hard request-body cap, enforced before any
	// per-tool check.
	AbsoluteBytes int64 `yaml:"absolute_bytes"`
}

// ForTool returns the upload budget for a tool name.
func (l Limits) ForTool(tool string) int64 {
	if tool == "compress-pdf" {
		return l.CompressBytes
	}
	return l.DefaultBytes
}

// Tools locates the external binaries the converters shell out to.
// Empty values resolve via $PATH.
type Tools struct {
	Soffice     string        `yaml:"soffice"`
	Ghostscript string        `yaml:"ghostscript"`
	Pdftoppm    string        `yaml:"pdftoppm"`
	Pdfinfo     string        `yaml:"pdfinfo"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Config configures the conversion service.
type Config struct {
	Listen          string `yaml:"listen"`
	TempDir         string `yaml:"temp_dir"`
	ObservabilityDB string `yaml:"observability_db"`

	// OCRLanguage is passed to Tesseract ("eng", "fra", "eng+fra", ...).
	OCRLanguage string `yaml:"ocr_language"`

	// PDFToJPGDPI is the rasterization resolution for pdf-to-jpg output.
	// Distinct from the OCR DPI, which lives in Acquire.
	PDFToJPGDPI int `yaml:"pdf_to_jpg_dpi"`

	Limits  Limits         `yaml:"limits"`
	Tools   Tools          `yaml:"tools"`
	Acquire acquire.Config `yaml:"acquire"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8086"
	}
	if c.ObservabilityDB == "" {
		c.ObservabilityDB = "db/observability.db"
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.PDFToJPGDPI <= 0 {
		c.PDFToJPGDPI = 140
	}
	if c.Limits.DefaultBytes <= 0 {
		c.Limits.DefaultBytes = 25 * 1024 * 1024
	}
	if c.Limits.CompressBytes <= 0 {
		c.Limits.CompressBytes = 50 * 1024 * 1024
	}
	if c.Limits.AbsoluteBytes <= 0 {
		c.Limits.AbsoluteBytes = 200 * 1024 * 1024
	}
	if c.Tools.Soffice == "" {
		c.Tools.Soffice = "libreoffice"
	}
	if c.Tools.Ghostscript == "" {
		c.Tools.Ghostscript = "gs"
	}
	if c.Tools.Pdftoppm == "" {
		c.Tools.Pdftoppm = "pdftoppm"
	}
	if c.Tools.Pdfinfo == "" {
		c.Tools.Pdfinfo = "pdfinfo"
	}
	if c.Tools.Timeout <= 0 {
		c.Tools.Timeout = 120 * time.Second
	}
}

// LoadConfigFile reads a YAML config. A missing file is not an error; the
// zero Config filled with defaults is returned instead, so the service runs
// on env vars alone.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.defaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.defaults()
	return &cfg, nil
}
