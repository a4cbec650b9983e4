package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pressops/docsmith/acquire"
)

// --- Stub collaborators ---

type stubAcquirer struct {
	res *acquire.Result
	err error
}

func (s *stubAcquirer) Acquire(_ context.Context, _ string) (*acquire.Result, error) {
	return s.res, s.err
}

type stubOffice struct {
	fail bool
}

func (s *stubOffice) WordToPDF(_ context.Context, _, outDir string) (string, error) {
	return s.render(outDir)
}

func (s *stubOffice) SlidesToPDF(_ context.Context, _, outDir string) (string, error) {
	return s.render(outDir)
}

func (s *stubOffice) render(outDir string) (string, error) {
	if s.fail {
		return "", errors.New("soffice failed")
	}
	out := filepath.Join(outDir, "rendered.pdf")
	if err := os.WriteFile(out, []byte("%PDF-stub"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type stubCompressor struct {
	installed bool
}

func (s *stubCompressor) Available() bool { return s.installed }

func (s *stubCompressor) Compress(_ context.Context, in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

type stubRaster struct {
	pages int
	err   error
}

func (s *stubRaster) Rasterize(_ context.Context, _ string, _, _ int) ([]acquire.PageImage, error) {
	if s.err != nil {
		return nil, s.err
	}
	imgs := make([]acquire.PageImage, s.pages)
	for i := range imgs {
		imgs[i] = acquire.PageImage{Page: i + 1, Data: []byte(fmt.Sprintf("img-%d", i+1))}
	}
	return imgs, nil
}

// --- Harness ---

func newTestRouter(t *testing.T, cfg *Config, opts ...Option) chi.Router {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	svc := New(cfg, nil, opts...)
	r := chi.NewRouter()
	svc.Register(r)
	return r
}

type filePart struct {
	field string
	name  string
	data  []byte
}

func multipartBody(t *testing.T, parts []filePart, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, r chi.Router, path string, parts []filePart, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, parts, fields)
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body not JSON: %v (%q)", err, rec.Body.String())
	}
	return resp["error"]
}

// --- Tests ---

func TestHome(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "docsmith") {
		t.Fatalf("body: got %q", rec.Body.String())
	}
}

func TestExtractText(t *testing.T) {
	acq := &stubAcquirer{res: &acquire.Result{
		Path: acquire.PathText,
		Lines: []string{
			"REPORT TITLE",
			"This is a line.",
			"that continues.",
		},
	}}
	r := newTestRouter(t, nil, WithAcquirer(acq))

	rec := post(t, r, "/extract-text", []filePart{{"file", "doc.pdf", []byte("%PDF-fake")}}, nil)
	if rec.Code != 200 {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := "REPORT TITLE\n\nThis is a line. that continues."
	if resp["text"] != want {
		t.Fatalf("text: got %q, want %q", resp["text"], want)
	}
	if resp["source"] != "text" {
		t.Fatalf("source: got %q", resp["source"])
	}
}

func TestExtractText_NoFile(t *testing.T) {
	r := newTestRouter(t, nil, WithAcquirer(&stubAcquirer{}))
	rec := post(t, r, "/extract-text", nil, map[string]string{"other": "x"})
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestExtractText_TooLarge(t *testing.T) {
	cfg := &Config{Limits: Limits{DefaultBytes: 64}}
	r := newTestRouter(t, cfg, WithAcquirer(&stubAcquirer{}))

	big := bytes.Repeat([]byte("x"), 4096)
	rec := post(t, r, "/extract-text", []filePart{{"file", "doc.pdf", big}}, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestExtractText_UnreadableIs400(t *testing.T) {
	acq := &stubAcquirer{err: fmt.Errorf("open: %w", acquire.ErrUnreadable)}
	r := newTestRouter(t, nil, WithAcquirer(acq))

	rec := post(t, r, "/extract-text", []filePart{{"file", "doc.pdf", []byte("junk")}}, nil)
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
	if msg := decodeErr(t, rec); !strings.Contains(msg, "unable to open") {
		t.Fatalf("error: got %q", msg)
	}
}

func TestExtractText_RasterizeFatalIs500(t *testing.T) {
	acq := &stubAcquirer{err: fmt.Errorf("fallback: %w", acquire.ErrRasterize)}
	r := newTestRouter(t, nil, WithAcquirer(acq))

	rec := post(t, r, "/extract-text", []filePart{{"file", "doc.pdf", []byte("junk")}}, nil)
	if rec.Code != 500 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPDFToWord(t *testing.T) {
	acq := &stubAcquirer{res: &acquire.Result{
		Path:  acquire.PathOCR,
		Lines: []string{"SUMMARY", "", "- item one", "- item two"},
	}}
	r := newTestRouter(t, nil, WithAcquirer(acq))

	rec := post(t, r, "/pdf-to-word", []filePart{{"file", "scan.pdf", []byte("%PDF-fake")}}, nil)
	if rec.Code != 200 {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxMIME {
		t.Fatalf("content type: got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "output.docx") {
		t.Fatalf("disposition: got %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	var docXML string
	for _, zf := range zr.File {
		if zf.Name == "word/document.xml" {
			rc, err := zf.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			docXML = string(data)
		}
	}
	if docXML == "" {
		t.Fatal("word/document.xml missing")
	}
	if !strings.Contains(docXML, "SUMMARY") || !strings.Contains(docXML, "• item one") {
		t.Fatalf("document.xml content: %s", docXML)
	}
}

func TestWordToPDF(t *testing.T) {
	r := newTestRouter(t, nil, WithOffice(&stubOffice{}))

	rec := post(t, r, "/word-to-pdf", []filePart{{"file", "letter.docx", []byte("fake-docx")}}, nil)
	if rec.Code != 200 {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "%PDF-stub" {
		t.Fatalf("body: got %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "output.pdf") {
		t.Fatalf("disposition: got %q", cd)
	}
}

func TestWordToPDF_WrongExtension(t *testing.T) {
	r := newTestRouter(t, nil, WithOffice(&stubOffice{}))
	rec := post(t, r, "/word-to-pdf", []filePart{{"file", "letter.txt", []byte("x")}}, nil)
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPPTToPDF_ConverterFailureIs500(t *testing.T) {
	r := newTestRouter(t, nil, WithOffice(&stubOffice{fail: true}))
	rec := post(t, r, "/ppt-to-pdf", []filePart{{"file", "deck.pptx", []byte("x")}}, nil)
	if rec.Code != 500 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPDFToJPG_PageSelection(t *testing.T) {
	r := newTestRouter(t, nil, WithRasterizer(&stubRaster{pages: 5}))

	rec := post(t, r, "/pdf-to-jpg",
		[]filePart{{"file", "doc.pdf", []byte("%PDF-fake")}},
		map[string]string{"pages": "2,4"})
	if rec.Code != 200 {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	if len(names) != 2 || names[0] != "page_2.jpg" || names[1] != "page_4.jpg" {
		t.Fatalf("zip entries: got %v", names)
	}
}

func TestPDFToJPG_InvalidSelection(t *testing.T) {
	r := newTestRouter(t, nil, WithRasterizer(&stubRaster{pages: 3}))
	rec := post(t, r, "/pdf-to-jpg",
		[]filePart{{"file", "doc.pdf", []byte("%PDF-fake")}},
		map[string]string{"pages": "99"})
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestPDFToJPG_RasterFailureIs500(t *testing.T) {
	r := newTestRouter(t, nil, WithRasterizer(&stubRaster{err: errors.New("pdftoppm: boom")}))
	rec := post(t, r, "/pdf-to-jpg", []filePart{{"file", "doc.pdf", []byte("junk")}}, nil)
	if rec.Code != 500 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestMergePDF_RejectsNonPDF(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := post(t, r, "/merge-pdf", []filePart{
		{"files", "a.pdf", []byte("%PDF-fake")},
		{"files", "b.txt", []byte("nope")},
	}, nil)
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestSplitPDF_MissingRanges(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := post(t, r, "/split-pdf", []filePart{{"file", "doc.pdf", []byte("%PDF-fake")}}, nil)
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
	if msg := decodeErr(t, rec); !strings.Contains(msg, "ranges") {
		t.Fatalf("error: got %q", msg)
	}
}

func TestRotatePDF_InvalidAngle(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := post(t, r, "/rotate-pdf",
		[]filePart{{"file", "doc.pdf", []byte("%PDF-fake")}},
		map[string]string{"angle": "abc"})
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestRotatePDF_NonRightAngle(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := post(t, r, "/rotate-pdf",
		[]filePart{{"file", "doc.pdf", []byte("%PDF-fake")}},
		map[string]string{"angle": "45"})
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCompressPDF_GhostscriptMissing(t *testing.T) {
	r := newTestRouter(t, nil, WithCompressor(&stubCompressor{installed: false}))
	rec := post(t, r, "/compress-pdf", []filePart{{"file", "doc.pdf", []byte("%PDF-fake")}}, nil)
	if rec.Code != 500 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCompressPDF(t *testing.T) {
	r := newTestRouter(t, nil, WithCompressor(&stubCompressor{installed: true}))
	payload := []byte("%PDF-payload")
	rec := post(t, r, "/compress-pdf", []filePart{{"file", "doc.pdf", payload}}, nil)
	if rec.Code != 200 {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Fatalf("body: got %q", rec.Body.String())
	}
}

func TestProtectPDF_MissingPassword(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := post(t, r, "/protect-pdf", []filePart{{"file", "doc.pdf", []byte("%PDF-fake")}}, nil)
	if rec.Code != 400 {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()

	if cfg.Listen != ":8086" {
		t.Fatalf("listen: got %q", cfg.Listen)
	}
	if cfg.Limits.DefaultBytes != 25*1024*1024 {
		t.Fatalf("default limit: got %d", cfg.Limits.DefaultBytes)
	}
	if cfg.Limits.ForTool("compress-pdf") != 50*1024*1024 {
		t.Fatalf("compress limit: got %d", cfg.Limits.ForTool("compress-pdf"))
	}
	if cfg.Limits.ForTool("merge-pdf") != 25*1024*1024 {
		t.Fatalf("merge limit: got %d", cfg.Limits.ForTool("merge-pdf"))
	}
	if cfg.PDFToJPGDPI != 140 {
		t.Fatalf("jpg dpi: got %d", cfg.PDFToJPGDPI)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	yaml := `
listen: ":9000"
limits:
  default_bytes: 1048576
acquire:
  max_ocr_pages: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" {
		t.Fatalf("listen: got %q", cfg.Listen)
	}
	if cfg.Limits.DefaultBytes != 1048576 {
		t.Fatalf("default limit: got %d", cfg.Limits.DefaultBytes)
	}
	if cfg.Acquire.MaxOCRPages != 5 {
		t.Fatalf("max ocr pages: got %d", cfg.Acquire.MaxOCRPages)
	}
	// Untouched fields still get defaults.
	if cfg.Limits.CompressBytes != 50*1024*1024 {
		t.Fatalf("compress limit: got %d", cfg.Limits.CompressBytes)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8086" {
		t.Fatalf("listen: got %q", cfg.Listen)
	}
}
