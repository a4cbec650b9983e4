package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Ghostscript compresses PDFs through the pdfwrite device.
type Ghostscript struct {
	// Binary is the gs executable. Empty resolves via $PATH.
	Binary string

	// Timeout bounds each invocation. Default 120s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (g *Ghostscript) binary() string {
	if g.Binary != "" {
		return g.Binary
	}
	return "gs"
}

func (g *Ghostscript) timeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return 120 * time.Second
}

// Available reports whether the gs binary can be found.
func (g *Ghostscript) Available() bool {
	_, err := exec.LookPath(g.binary())
	return err == nil
}

// Compress rewrites the PDF with the /ebook quality profile.
func (g *Ghostscript) Compress(ctx context.Context, in, out string) error {
	cctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	cmd := exec.CommandContext(cctx, g.binary(),
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile="+out,
		in,
	)
	combined, err := cmd.CombinedOutput()
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("ghostscript failed", "error", err, "output", string(combined))
		}
		return fmt.Errorf("convert: ghostscript: %w", err)
	}
	return nil
}
