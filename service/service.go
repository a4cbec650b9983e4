// CLAUDE:SUMMARY Conversion service orchestrator: collaborator interfaces, constructor, chi route registration.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pressops/docsmith/acquire"
	"github.com/pressops/docsmith/convert"
	"github.com/pressops/docsmith/observability"
	"github.com/pressops/docsmith/ocr"
	"github.com/pressops/docsmith/reflow"
)

// Acquirer turns a PDF on disk into text lines, via text layer or OCR.
type Acquirer interface {
	Acquire(ctx context.Context, path string) (*acquire.Result, error)
}

// OfficeConverter renders word processor and presentation files to PDF.
type OfficeConverter interface {
	WordToPDF(ctx context.Context, in, outDir string) (string, error)
	SlidesToPDF(ctx context.Context, in, outDir string) (string, error)
}

// Compressor shrinks a PDF in place on disk.
type Compressor interface {
	Available() bool
	Compress(ctx context.Context, in, out string) error
}

// Rasterizer renders PDF pages to images with explicit page indices.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi, maxPages int) ([]acquire.PageImage, error)
}

// EventSink receives per-request conversion outcomes.
type EventSink interface {
	LogConversion(ctx context.Context, event observability.ConversionEvent)
}

// Service is the conversion orchestrator behind the HTTP and MCP surfaces.
type Service struct {
	cfg       *Config
	logger    *slog.Logger
	formatter *reflow.Formatter
	acquirer  Acquirer
	office    OfficeConverter
	gs        Compressor
	raster    Rasterizer
	events    EventSink
	metrics   *observability.MetricsManager
}

// Option overrides a Service collaborator.
type Option func(*Service)

// WithAcquirer replaces the text acquisition pipeline.
func WithAcquirer(a Acquirer) Option {
	return func(s *Service) { s.acquirer = a }
}

// WithOffice replaces the LibreOffice converter.
func WithOffice(o OfficeConverter) Option {
	return func(s *Service) { s.office = o }
}

// WithCompressor replaces the Ghostscript compressor.
func WithCompressor(c Compressor) Option {
	return func(s *Service) { s.gs = c }
}

// WithRasterizer replaces the pdf-to-jpg rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(s *Service) { s.raster = r }
}

// WithEvents wires a conversion event sink.
func WithEvents(e EventSink) Option {
	return func(s *Service) { s.events = e }
}

// WithMetrics wires a metrics recorder.
func WithMetrics(m *observability.MetricsManager) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service with real collaborators built from cfg. Options may
// replace any of them (tests substitute stubs).
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	ocrRaster := &acquire.PopplerRasterizer{
		PdftoppmPath: cfg.Tools.Pdftoppm,
		PdfinfoPath:  cfg.Tools.Pdfinfo,
		Timeout:      cfg.Tools.Timeout,
		Logger:       logger,
	}
	jpgRaster := &acquire.PopplerRasterizer{
		PdftoppmPath: cfg.Tools.Pdftoppm,
		PdfinfoPath:  cfg.Tools.Pdfinfo,
		Format:       "jpeg",
		Timeout:      cfg.Tools.Timeout,
		Logger:       logger,
	}

	acq := cfg.Acquire
	acq.Logger = logger

	svc := &Service{
		cfg:       cfg,
		logger:    logger,
		formatter: reflow.New(reflow.Rules{}),
		acquirer:  acquire.New(acquire.PDFText{}, ocrRaster, ocr.New(cfg.OCRLanguage), acq),
		office: &convert.Office{
			Binary:  cfg.Tools.Soffice,
			Timeout: cfg.Tools.Timeout,
			Logger:  logger,
		},
		gs: &convert.Ghostscript{
			Binary:  cfg.Tools.Ghostscript,
			Timeout: cfg.Tools.Timeout,
			Logger:  logger,
		},
		raster: jpgRaster,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register mounts all conversion endpoints on r.
func (s *Service) Register(r chi.Router) {
	r.Use(s.maxBody)

	r.Get("/", s.handleHome)
	r.Post("/extract-text", s.handleExtractText)
	r.Post("/pdf-to-word", s.handlePDFToWord)
	r.Post("/word-to-pdf", s.handleWordToPDF)
	r.Post("/ppt-to-pdf", s.handlePPTToPDF)
	r.Post("/jpg-to-pdf", s.handleJPGToPDF)
	r.Post("/pdf-to-jpg", s.handlePDFToJPG)
	r.Post("/merge-pdf", s.handleMergePDF)
	r.Post("/split-pdf", s.handleSplitPDF)
	r.Post("/rotate-pdf", s.handleRotatePDF)
	r.Post("/compress-pdf", s.handleCompressPDF)
	r.Post("/protect-pdf", s.handleProtectPDF)
	r.Post("/unlock-pdf", s.handleUnlockPDF)
}

// maxBody enforces the absolute request-body cap regardless of tool.
func (s *Service) maxBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.AbsoluteBytes)
		next.ServeHTTP(w, r)
	})
}

// record finalizes and ships a conversion event plus a duration metric.
func (s *Service) record(ctx context.Context, ev observability.ConversionEvent, start time.Time, opErr error) {
	ev.DurationMs = time.Since(start).Milliseconds()
	ev.Success = opErr == nil
	if opErr != nil {
		ev.ErrorMessage = opErr.Error()
	}
	if s.events != nil {
		s.events.LogConversion(ctx, ev)
	}
	if s.metrics != nil {
		s.metrics.Record(&observability.Metric{
			Name:      observability.MetricConversionDurationMs,
			Timestamp: time.Now(),
			Value:     float64(ev.DurationMs),
			Labels:    map[string]string{"operation": ev.Operation},
			Unit:      "milliseconds",
		})
	}
}
