// CLAUDE:SUMMARY LibreOffice headless call-through: Word→PDF (via ODT) and slides→PDF.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Office converts office documents by driving a headless LibreOffice.
type Office struct {
	// Binary is the soffice executable. Empty resolves via $PATH.
	Binary string

	// Timeout bounds each LibreOffice invocation. Default 120s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (o *Office) binary() string {
	if o.Binary != "" {
		return o.Binary
	}
	return "libreoffice"
}

func (o *Office) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 120 * time.Second
}

func (o *Office) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// WordToPDF renders a .doc/.docx to PDF in outDir and returns the output
// path. Conversion is two-step: Word → ODT, then ODT → PDF with the writer
// export filter (embedded standard fonts, full-resolution images).
func (o *Office) WordToPDF(ctx context.Context, in, outDir string) (string, error) {
	if err := o.run(ctx, in, outDir, "odt"); err != nil {
		return "", fmt.Errorf("convert: word to odt: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	odt := filepath.Join(outDir, base+".odt")
	if _, err := os.Stat(odt); err != nil {
		return "", fmt.Errorf("convert: intermediate odt not produced: %w", err)
	}

	filter := "pdf:writer_pdf_Export:EmbedStandardFonts=true;ReduceImageResolution=false"
	if err := o.run(ctx, odt, outDir, filter); err != nil {
		return "", fmt.Errorf("convert: odt to pdf: %w", err)
	}
	out := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("convert: output pdf not produced: %w", err)
	}
	return out, nil
}

// SlidesToPDF renders a .ppt/.pptx to PDF in outDir and returns the output
// path.
func (o *Office) SlidesToPDF(ctx context.Context, in, outDir string) (string, error) {
	if err := o.run(ctx, in, outDir, "pdf:impress_pdf_Export"); err != nil {
		return "", fmt.Errorf("convert: slides to pdf: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	out := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("convert: output pdf not produced: %w", err)
	}
	return out, nil
}

func (o *Office) run(ctx context.Context, in, outDir, filter string) error {
	cctx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()

	cmd := exec.CommandContext(cctx, o.binary(),
		"--headless", "--norestore", "--nologo", "--invisible",
		"--convert-to", filter,
		"--outdir", outDir,
		in,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		o.logger().Error("libreoffice failed", "filter", filter, "error", err, "output", string(out))
		return err
	}
	return nil
}
