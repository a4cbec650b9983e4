package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeExtractor struct {
	pages []PageText
	err   error
}

func (f *fakeExtractor) ExtractPages(_ context.Context, _ string) ([]PageText, error) {
	return f.pages, f.err
}

type fakeRasterizer struct {
	images []PageImage
	err    error
	calls  int
	gotCap int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, _, maxPages int) ([]PageImage, error) {
	f.calls++
	f.gotCap = maxPages
	if f.err != nil {
		return nil, f.err
	}
	imgs := f.images
	if maxPages > 0 && len(imgs) > maxPages {
		imgs = imgs[:maxPages]
	}
	return imgs, nil
}

type fakeRecognizer struct {
	texts map[int]string // keyed by fake page number encoded in image data
	fail  map[int]bool
	delay map[int]time.Duration
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, image []byte) (string, error) {
	f.calls++
	var page int
	fmt.Sscanf(string(image), "page-%d", &page)
	if d := f.delay[page]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[page] {
		return "", errors.New("engine error")
	}
	return f.texts[page], nil
}

func pageImages(n int) []PageImage {
	imgs := make([]PageImage, 0, n)
	for i := 1; i <= n; i++ {
		imgs = append(imgs, PageImage{Page: i, Data: []byte(fmt.Sprintf("page-%d", i))})
	}
	return imgs
}

func TestAcquireTextLayerShortCircuitsOCR(t *testing.T) {
	// Only page 3 of 5 has text — the whole document "has text" and the
	// fallback must never run.
	ext := &fakeExtractor{pages: []PageText{
		{Page: 1}, {Page: 2},
		{Page: 3, Text: "Hello from page three"},
		{Page: 4}, {Page: 5},
	}}
	ras := &fakeRasterizer{}
	rec := &fakeRecognizer{}

	res, err := New(ext, ras, rec, Config{}).Acquire(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != PathText {
		t.Fatalf("path = %s, want %s", res.Path, PathText)
	}
	if ras.calls != 0 || rec.calls != 0 {
		t.Fatalf("fallback invoked: rasterize=%d recognize=%d", ras.calls, rec.calls)
	}
	if len(res.Lines) != 1 || res.Lines[0] != "Hello from page three" {
		t.Fatalf("lines = %q", res.Lines)
	}
	if res.Quality == nil || res.Quality.PageCount != 5 {
		t.Fatalf("quality = %+v", res.Quality)
	}
}

func TestAcquireFallbackOrdered(t *testing.T) {
	ext := &fakeExtractor{pages: []PageText{{Page: 1}, {Page: 2}, {Page: 3}}}
	ras := &fakeRasterizer{images: pageImages(3)}
	rec := &fakeRecognizer{
		texts: map[int]string{1: "first page", 2: "second page", 3: "third page"},
		// Later pages finish first; output order must still follow page index.
		delay: map[int]time.Duration{1: 30 * time.Millisecond, 2: 15 * time.Millisecond},
	}

	res, err := New(ext, ras, rec, Config{Workers: 3}).Acquire(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != PathOCR {
		t.Fatalf("path = %s, want %s", res.Path, PathOCR)
	}
	want := []string{"first page", "second page", "third page"}
	if strings.Join(res.Lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", res.Lines, want)
	}
}

func TestAcquirePerPageOCRFailureContinues(t *testing.T) {
	ext := &fakeExtractor{pages: []PageText{{Page: 1}, {Page: 2}}}
	ras := &fakeRasterizer{images: pageImages(2)}
	rec := &fakeRecognizer{
		texts: map[int]string{2: "surviving text"},
		fail:  map[int]bool{1: true},
	}

	res, err := New(ext, ras, rec, Config{}).Acquire(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Lines) != 1 || res.Lines[0] != "surviving text" {
		t.Fatalf("lines = %q", res.Lines)
	}
}

func TestAcquireRasterizationFatal(t *testing.T) {
	ext := &fakeExtractor{pages: []PageText{{Page: 1}}}
	ras := &fakeRasterizer{err: errors.New("poppler exploded")}

	_, err := New(ext, ras, &fakeRecognizer{}, Config{}).Acquire(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrRasterize) {
		t.Fatalf("err = %v, want ErrRasterize", err)
	}
}

func TestAcquireEmptyRasterizationFatal(t *testing.T) {
	ext := &fakeExtractor{pages: nil}
	ras := &fakeRasterizer{images: nil}

	_, err := New(ext, ras, &fakeRecognizer{}, Config{}).Acquire(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrRasterize) {
		t.Fatalf("err = %v, want ErrRasterize", err)
	}
}

func TestAcquireUnreadableAbortsWithoutFallback(t *testing.T) {
	ext := &fakeExtractor{err: fmt.Errorf("%w: bad xref", ErrUnreadable)}
	ras := &fakeRasterizer{images: pageImages(1)}

	_, err := New(ext, ras, &fakeRecognizer{}, Config{}).Acquire(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
	if ras.calls != 0 {
		t.Fatal("fallback attempted for unreadable document")
	}
}

func TestAcquireExtractorErrorFallsBack(t *testing.T) {
	// A non-open failure in the extractor is swallowed; the fallback decides.
	ext := &fakeExtractor{err: errors.New("stream decode broke")}
	ras := &fakeRasterizer{images: pageImages(1)}
	rec := &fakeRecognizer{texts: map[int]string{1: "ocr text"}}

	res, err := New(ext, ras, rec, Config{}).Acquire(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != PathOCR || len(res.Lines) != 1 {
		t.Fatalf("res = %+v", res)
	}
}

func TestAcquirePageCapPassedThrough(t *testing.T) {
	ext := &fakeExtractor{pages: nil}
	ras := &fakeRasterizer{images: pageImages(40)}
	rec := &fakeRecognizer{texts: map[int]string{1: "x"}}

	_, err := New(ext, ras, rec, Config{MaxOCRPages: 30}).Acquire(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if ras.gotCap != 30 {
		t.Fatalf("cap = %d, want 30", ras.gotCap)
	}
	if rec.calls != 30 {
		t.Fatalf("recognize calls = %d, want 30", rec.calls)
	}
}

func TestComputeQuality(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: "normal words here"},
		{Page: 2, Text: ""},
	}
	q := ComputeQuality(pages)
	if q.PageCount != 2 {
		t.Fatalf("PageCount = %d", q.PageCount)
	}
	if q.PrintableRatio != 1.0 {
		t.Fatalf("PrintableRatio = %f", q.PrintableRatio)
	}
	if q.WordlikeRatio != 1.0 {
		t.Fatalf("WordlikeRatio = %f", q.WordlikeRatio)
	}

	garbage := []PageText{{Page: 1, Text: "ok"}}
	if g := ComputeQuality(garbage); g.PrintableRatio >= 1.0 {
		t.Fatalf("garbage PrintableRatio = %f, want < 1", g.PrintableRatio)
	}
}
