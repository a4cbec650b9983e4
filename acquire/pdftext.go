// CLAUDE:SUMMARY Native PDF text-layer extractor on pdfcpu — per-page content stream decoding.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFText reads a PDF's embedded text layer with pdfcpu. It never fails on
// an individual page: a page whose content stream cannot be read or holds
// no text operators contributes an empty PageText.
type PDFText struct{}

// ExtractPages implements TextExtractor. A document that cannot be opened
// or validated wraps ErrUnreadable.
func (PDFText) ExtractPages(ctx context.Context, path string) ([]PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: pdfcpu read: %v", ErrUnreadable, err)
	}

	pages := make([]PageText, 0, pdfCtx.PageCount)
	for nr := 1; nr <= pdfCtx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, PageText{Page: nr, Text: pageText(pdfCtx, nr)})
	}
	return pages, nil
}

// pageText decodes one page's content stream. Failures collapse to empty.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// streamText walks the content stream operators and reassembles show-text
// output. Newlines come from the ' and T* operators so the line structure
// survives for downstream reflow.
func streamText(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// (text) Tj and [(text) -100 (more)] TJ
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}

		// (text) ' — next line, then show
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteByte('\n')
					sb.WriteString(text)
				}
			}

		// Td/TD reposition the text cursor
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}

		// T* — start of next line
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return tidyStreamText(sb.String())
}

// decodePDFString resolves PDF escape sequences, including octal escapes.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// tidyStreamText collapses horizontal whitespace runs and drops
// non-printable runes while keeping line breaks intact.
func tidyStreamText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
