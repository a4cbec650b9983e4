// CLAUDE:SUMMARY Two-tier text acquisition: native PDF text layer first, rasterize+OCR fallback, explicit per-page results.
// Package acquire obtains the raw line stream for a document through a
// two-tier strategy: the embedded text layer is read first, page by page;
// only when no page yields any non-blank text does the fallback rasterize
// the pages and run optical character recognition on each image.
//
// Per-page failures never abort a document — a failed page contributes an
// empty string and its error is logged by the aggregator. Only two
// conditions are fatal: the document cannot be opened at all
// (ErrUnreadable), or the rasterizer cannot produce a single page image
// (ErrRasterize).
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Errors surfaced to the caller as a single structured failure.
var (
	// ErrUnreadable marks a source document that cannot be opened or
	// parsed at all. No fallback is attempted.
	ErrUnreadable = errors.New("acquire: unreadable document")

	// ErrRasterize marks a fallback that could not produce any page
	// images. Nothing partial is returned.
	ErrRasterize = errors.New("acquire: rasterization failed")
)

// Path names the acquisition tier that produced a result.
type Path string

const (
	PathText Path = "text" // embedded text layer
	PathOCR  Path = "ocr"  // rasterize + recognize fallback
)

// PageText is the outcome of extracting or recognizing one page.
// A page that failed carries its error here and an empty Text; swallowing
// it is the aggregator's decision, not the extractor's.
type PageText struct {
	Page int // 1-based page index
	Text string
	Err  error
}

// PageImage is one rasterized page. The page index is attached at
// rasterization time so ordering is a data property, never an artifact of
// file naming.
type PageImage struct {
	Page int
	Data []byte
}

// TextExtractor reads the embedded text layer page by page, in page order.
// An individual page without text is a valid empty result, never an error
// for the whole document. A document that cannot be opened must be reported
// by wrapping ErrUnreadable.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]PageText, error)
}

// Rasterizer renders document pages to images at the given resolution.
// At most maxPages images are produced (maxPages <= 0 means no cap); pages
// beyond the cap are silently dropped. A rasterizer that cannot produce any
// image returns an error.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi, maxPages int) ([]PageImage, error)
}

// Recognizer performs optical character recognition on a single page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config tunes the fallback path.
type Config struct {
	// DPI for page rasterization. Default 150.
	DPI int `yaml:"dpi"`

	// MaxOCRPages caps how many pages the fallback recognizes. Pages
	// beyond the cap are dropped, not errored. Default 30.
	MaxOCRPages int `yaml:"max_ocr_pages"`

	// Workers bounds parallel page recognition. Default 1 (sequential).
	Workers int `yaml:"workers"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.DPI <= 0 {
		c.DPI = 150
	}
	if c.MaxOCRPages <= 0 {
		c.MaxOCRPages = 30
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is the outcome of one acquisition.
type Result struct {
	Path    Path     `json:"path"`
	Lines   []string `json:"-"`
	Quality *Quality `json:"quality,omitempty"`
}

// Acquirer orchestrates the two tiers. Each call is independent; the
// strategy runs exactly once per document, with no retries.
type Acquirer struct {
	text   TextExtractor
	raster Rasterizer
	recog  Recognizer
	cfg    Config
}

// New creates an Acquirer over the given collaborators.
func New(text TextExtractor, raster Rasterizer, recog Recognizer, cfg Config) *Acquirer {
	cfg.defaults()
	return &Acquirer{text: text, raster: raster, recog: recog, cfg: cfg}
}

// Acquire returns the document's lines via the text layer, or via OCR when
// the text layer is empty across all pages. Page order is preserved on both
// paths; the fallback OCR pool may run pages out of order but concatenates
// by page index.
func (a *Acquirer) Acquire(ctx context.Context, path string) (*Result, error) {
	pages, err := a.text.ExtractPages(ctx, path)
	if err != nil {
		if errors.Is(err, ErrUnreadable) {
			return nil, err
		}
		// Extractor broke past opening the document: treat as a textless
		// document and let the fallback decide.
		a.cfg.Logger.Warn("text layer extraction failed", "path", path, "error", err)
		pages = nil
	}

	hasText := false
	for _, p := range pages {
		if p.Err != nil {
			a.cfg.Logger.Warn("page text extraction failed", "page", p.Page, "error", p.Err)
			continue
		}
		if strings.TrimSpace(p.Text) != "" {
			hasText = true
		}
	}

	if hasText {
		lines := concatPages(pages)
		return &Result{
			Path:    PathText,
			Lines:   lines,
			Quality: ComputeQuality(pages),
		}, nil
	}

	return a.fallback(ctx, path)
}

// fallback rasterizes the document and recognizes each page independently.
func (a *Acquirer) fallback(ctx context.Context, path string) (*Result, error) {
	images, err := a.raster.Rasterize(ctx, path, a.cfg.DPI, a.cfg.MaxOCRPages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no page images produced", ErrRasterize)
	}

	pages := make([]PageText, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, img := range images {
		g.Go(func() error {
			text, err := a.recog.Recognize(gctx, img.Data)
			// A failed page contributes an empty string; the document
			// continues.
			pages[i] = PageText{Page: img.Page, Text: text, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range pages {
		if p.Err != nil {
			a.cfg.Logger.Warn("ocr failed on page", "page", p.Page, "error", p.Err)
		}
	}

	return &Result{
		Path:    PathOCR,
		Lines:   concatPages(pages),
		Quality: ComputeQuality(pages),
	}, nil
}

// concatPages flattens per-page text into a single line sequence in page
// order. Page boundaries are not retained; failed pages contribute nothing.
func concatPages(pages []PageText) []string {
	var lines []string
	for _, p := range pages {
		if p.Err != nil || p.Text == "" {
			continue
		}
		for _, ln := range strings.Split(p.Text, "\n") {
			lines = append(lines, ln)
		}
	}
	return lines
}
