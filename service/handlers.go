// CLAUDE:SUMMARY HTTP handlers for all conversion endpoints: uploads, limits, attachment downloads, error mapping.
package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pressops/docsmith/acquire"
	"github.com/pressops/docsmith/convert"
	"github.com/pressops/docsmith/observability"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Service) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "docsmith conversion service running")
}

// --- Extraction ---

func (s *Service) handleExtractText(w http.ResponseWriter, r *http.Request) {
	const tool = "extract-text"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	res, err := s.acquirer.Acquire(r.Context(), up.path)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		s.acquireError(w, err)
		return
	}
	ev.Source = string(res.Path)
	if res.Quality != nil {
		ev.Pages = res.Quality.PageCount
	}

	formatted := s.formatter.FormatLines(res.Lines)
	s.record(r.Context(), ev, start, nil)
	writeJSON(w, 200, map[string]string{
		"text":   formatted,
		"source": string(res.Path),
	})
}

func (s *Service) handlePDFToWord(w http.ResponseWriter, r *http.Request) {
	const tool = "pdf-to-word"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	res, err := s.acquirer.Acquire(r.Context(), up.path)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		s.acquireError(w, err)
		return
	}
	ev.Source = string(res.Path)

	var buf bytes.Buffer
	if err := convert.WriteDocx(&buf, s.formatter, s.formatter.Blocks(res.Lines)); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, err)
		return
	}
	ev.OutputBytes = int64(buf.Len())
	s.record(r.Context(), ev, start, nil)

	w.Header().Set("Content-Type", docxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="output.docx"`)
	w.Write(buf.Bytes())
}

// --- Office conversions ---

func (s *Service) handleWordToPDF(w http.ResponseWriter, r *http.Request) {
	s.officeToPDF(w, r, "word-to-pdf", []string{".doc", ".docx"}, s.office.WordToPDF)
}

func (s *Service) handlePPTToPDF(w http.ResponseWriter, r *http.Request) {
	s.officeToPDF(w, r, "ppt-to-pdf", []string{".ppt", ".pptx"}, s.office.SlidesToPDF)
}

func (s *Service) officeToPDF(w http.ResponseWriter, r *http.Request, tool string, exts []string,
	render func(ctx context.Context, in, outDir string) (string, error)) {

	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	if !hasExt(up.filename, exts) {
		writeError(w, 400, fmt.Errorf("unsupported file type, expected %v", exts))
		return
	}

	outPDF, err := render(r.Context(), up.path, f.dir)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, outPDF, "output.pdf", "application/pdf")
}

// --- Image conversions ---

func (s *Service) handleJPGToPDF(w http.ResponseWriter, r *http.Request) {
	const tool = "jpg-to-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	ups := f.files["files"]
	if len(ups) == 0 {
		writeError(w, 400, errNoFile)
		return
	}
	paths := make([]string, 0, len(ups))
	for _, up := range ups {
		paths = append(paths, up.path)
		ev.InputBytes += up.size
	}
	ev.Filename = ups[0].filename
	ev.Pages = len(ups)

	out := filepath.Join(f.dir, "output.pdf")
	if err := convert.ImagesToPDF(paths, out); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 400, fmt.Errorf("no valid images uploaded: %w", err))
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "output.pdf", "application/pdf")
}

func (s *Service) handlePDFToJPG(w http.ResponseWriter, r *http.Request) {
	const tool = "pdf-to-jpg"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	images, err := s.raster.Rasterize(r.Context(), up.path, s.cfg.PDFToJPGDPI, 0)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, fmt.Errorf("failed to rasterize PDF: %w", err))
		return
	}

	if pagesParam := f.value("pages"); pagesParam != "" {
		wanted := convert.ParsePageRanges(pagesParam, len(images))
		if len(wanted) == 0 {
			writeError(w, 400, errors.New("no valid pages requested"))
			return
		}
		keep := make(map[int]bool, len(wanted))
		for _, p := range wanted {
			keep[p] = true
		}
		filtered := images[:0]
		for _, img := range images {
			if keep[img.Page] {
				filtered = append(filtered, img)
			}
		}
		images = filtered
	}
	ev.Pages = len(images)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="images.zip"`)
	if err := convert.ZipPages(w, images, "jpg"); err != nil {
		// Headers are gone; log and record, nothing else to do.
		s.logger.Error("zip write failed", "tool", tool, "error", err)
		s.record(r.Context(), ev, start, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
}

// --- PDF operations ---

func (s *Service) handleMergePDF(w http.ResponseWriter, r *http.Request) {
	const tool = "merge-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	ups := f.files["files"]
	if len(ups) == 0 {
		writeError(w, 400, errNoFile)
		return
	}
	paths := make([]string, 0, len(ups))
	for _, up := range ups {
		if !hasExt(up.filename, []string{".pdf"}) {
			writeError(w, 400, errors.New("all files must be PDF"))
			return
		}
		paths = append(paths, up.path)
		ev.InputBytes += up.size
	}
	ev.Filename = ups[0].filename

	out := filepath.Join(f.dir, "merged.pdf")
	if err := convert.Merge(paths, out); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "merged.pdf", "application/pdf")
}

func (s *Service) handleSplitPDF(w http.ResponseWriter, r *http.Request) {
	const tool = "split-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ranges := f.value("ranges")
	if ranges == "" {
		writeError(w, 400, errors.New("missing ranges parameter"))
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	total, err := convert.PageCount(up.path)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 400, fmt.Errorf("unable to open PDF: %w", err))
		return
	}
	pages := convert.ParsePageRanges(ranges, total)
	if len(pages) == 0 {
		writeError(w, 400, errors.New("no valid pages derived from ranges"))
		return
	}
	ev.Pages = len(pages)

	outDir := filepath.Join(f.dir, "split")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		writeError(w, 500, err)
		return
	}
	parts, err := convert.SplitPages(up.path, pages, outDir)
	if err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="split.zip"`)
	if err := zipFiles(w, parts); err != nil {
		s.logger.Error("zip write failed", "tool", tool, "error", err)
		s.record(r.Context(), ev, start, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
}

func (s *Service) handleRotatePDF(w http.ResponseWriter, r *http.Request) {
	const tool = "rotate-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	angle := 90
	if v := f.value("angle"); v != "" {
		angle, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, 400, errors.New("invalid angle"))
			return
		}
	}

	out := filepath.Join(f.dir, "rotated.pdf")
	if err := convert.Rotate(up.path, out, angle); err != nil {
		s.record(r.Context(), ev, start, err)
		if errors.Is(err, convert.ErrBadAngle) {
			writeError(w, 400, err)
			return
		}
		writeError(w, 500, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "rotated.pdf", "application/pdf")
}

func (s *Service) handleCompressPDF(w http.ResponseWriter, r *http.Request) {
	const tool = "compress-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	if !s.gs.Available() {
		writeError(w, 500, errors.New("ghostscript not installed"))
		return
	}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	out := filepath.Join(f.dir, "compressed.pdf")
	if err := s.gs.Compress(r.Context(), up.path, out); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, fmt.Errorf("ghostscript compression failed: %w", err))
		return
	}
	if st, err := os.Stat(out); err == nil {
		ev.OutputBytes = st.Size()
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "compressed.pdf", "application/pdf")
}

func (s *Service) handleProtectPDF(w http.ResponseWriter, r *http.Request) {
	const tool = "protect-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	password := f.value("password")
	if !ok || password == "" {
		writeError(w, 400, errors.New("missing file or password"))
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	out := filepath.Join(f.dir, "protected.pdf")
	if err := convert.Encrypt(up.path, out, password); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 500, err)
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "protected.pdf", "application/pdf")
}

func (s *Service) handleUnlockPDF(w http.ResponseWriter, r *http.Request) {
	const tool = "unlock-pdf"
	start := time.Now()
	ev := observability.ConversionEvent{Operation: tool}

	f, err := s.parseForm(r, s.cfg.Limits.ForTool(tool))
	if err != nil {
		s.uploadError(w, err)
		return
	}
	defer f.cleanup()

	up, ok := f.file("file")
	if !ok {
		writeError(w, 400, errNoFile)
		return
	}
	ev.Filename = up.filename
	ev.InputBytes = up.size

	out := filepath.Join(f.dir, "unlocked.pdf")
	if err := convert.Decrypt(up.path, out, f.value("password")); err != nil {
		s.record(r.Context(), ev, start, err)
		writeError(w, 400, fmt.Errorf("unable to unlock: %w", err))
		return
	}
	s.record(r.Context(), ev, start, nil)
	s.sendFile(w, out, "unlocked.pdf", "application/pdf")
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// uploadError maps parse failures to 413 (limit) or 400 (anything else).
func (s *Service) uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	writeError(w, 400, err)
}

// acquireError maps acquisition sentinels onto HTTP status codes:
// unreadable input is the client's fault, a dead rasterizer is ours.
func (s *Service) acquireError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, acquire.ErrUnreadable):
		writeError(w, 400, fmt.Errorf("unable to open PDF: %w", err))
	case errors.Is(err, acquire.ErrRasterize):
		writeError(w, 500, fmt.Errorf("failed to rasterize PDF: %w", err))
	default:
		writeError(w, 500, err)
	}
}

func (s *Service) sendFile(w http.ResponseWriter, path, downloadName, mime string) {
	file, err := os.Open(path)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	if st, err := file.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(st.Size(), 10))
	}
	io.Copy(w, file)
}

func hasExt(filename string, exts []string) bool {
	got := filepath.Ext(filename)
	for _, e := range exts {
		if strings.EqualFold(got, e) {
			return true
		}
	}
	return false
}

// zipFiles streams the given files into a zip archive, named by base name.
func zipFiles(w io.Writer, paths []string) error {
	zw := zip.NewWriter(w)
	for _, p := range paths {
		entry, err := zw.Create(filepath.Base(p))
		if err != nil {
			return err
		}
		file, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, file)
		file.Close()
		if err != nil {
			return err
		}
	}
	return zw.Close()
}
