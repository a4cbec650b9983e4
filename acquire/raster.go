// CLAUDE:SUMMARY Poppler-based page rasterizer — pdftoppm per page with explicit numeric indices, pdfinfo page count.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PopplerRasterizer renders PDF pages to images by invoking pdftoppm once
// per page. Each invocation uses -singlefile with a per-page output prefix,
// so every image carries its page number explicitly instead of relying on
// how the tool pads and sorts file names.
type PopplerRasterizer struct {
	// PdftoppmPath and PdfinfoPath locate the poppler binaries.
	// Empty values resolve via $PATH.
	PdftoppmPath string
	PdfinfoPath  string

	// Format is the output image format: "png" (default) or "jpeg".
	Format string

	// Timeout bounds each subprocess invocation. Default 120s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (r *PopplerRasterizer) pdftoppm() string {
	if r.PdftoppmPath != "" {
		return r.PdftoppmPath
	}
	return "pdftoppm"
}

func (r *PopplerRasterizer) pdfinfo() string {
	if r.PdfinfoPath != "" {
		return r.PdfinfoPath
	}
	return "pdfinfo"
}

func (r *PopplerRasterizer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *PopplerRasterizer) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 120 * time.Second
}

// Rasterize implements Rasterizer. Pages beyond maxPages are silently
// dropped (maxPages <= 0 means no cap). A page that fails to render is
// skipped; failing to render every page is an error.
func (r *PopplerRasterizer) Rasterize(ctx context.Context, path string, dpi, maxPages int) ([]PageImage, error) {
	total, err := r.PageCount(ctx, path)
	if err != nil {
		return nil, err
	}
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	tmpDir, err := os.MkdirTemp("", "raster-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	format, ext := "-png", "png"
	if r.Format == "jpeg" || r.Format == "jpg" {
		format, ext = "-jpeg", "jpg"
	}

	var (
		images  []PageImage
		lastErr error
	)
	for page := 1; page <= total; page++ {
		prefix := filepath.Join(tmpDir, fmt.Sprintf("page_%d", page))
		cctx, cancel := context.WithTimeout(ctx, r.timeout())
		cmd := exec.CommandContext(cctx, r.pdftoppm(),
			"-f", strconv.Itoa(page),
			"-l", strconv.Itoa(page),
			"-r", strconv.Itoa(dpi),
			format,
			"-singlefile",
			path,
			prefix,
		)
		err := cmd.Run()
		cancel()
		if err != nil {
			r.logger().Warn("pdftoppm failed on page", "page", page, "error", err)
			lastErr = err
			continue
		}

		data, err := os.ReadFile(prefix + "." + ext)
		if err != nil {
			r.logger().Warn("rasterized page missing", "page", page, "error", err)
			lastErr = err
			continue
		}
		images = append(images, PageImage{Page: page, Data: data})
	}

	if len(images) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("pdftoppm: %w", lastErr)
		}
		return nil, fmt.Errorf("pdftoppm produced no images for %s", path)
	}
	return images, nil
}

// PageCount reads the page count with pdfinfo.
func (r *PopplerRasterizer) PageCount(ctx context.Context, path string) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	out, err := exec.CommandContext(cctx, r.pdfinfo(), path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil && n > 0 {
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("pdfinfo: could not determine page count for %s", path)
}
