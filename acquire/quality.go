package acquire

import (
	"strings"
	"unicode"
)

// Quality captures metrics about an acquisition. Informational only: path
// selection depends solely on whether the text layer produced any non-blank
// text, never on these scores.
type Quality struct {
	PageCount      int     `json:"page_count"`
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
}

// ComputeQuality scores the acquired pages.
func ComputeQuality(pages []PageText) *Quality {
	var sb strings.Builder
	for _, p := range pages {
		if p.Err == nil {
			sb.WriteString(p.Text)
		}
	}
	text := sb.String()

	q := &Quality{PageCount: len(pages)}
	if q.PageCount > 0 {
		q.CharsPerPage = float64(len([]rune(text))) / float64(q.PageCount)
	}
	q.PrintableRatio = printableRatio(text)
	q.WordlikeRatio = wordlikeRatio(text)
	return q
}

// printableRatio returns the share of printable characters. Private Use
// Area runes, U+FFFD, and control characters other than \n\r\t count as
// garbage — a low ratio usually means a broken font encoding.
func printableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the share of tokens with a plausible word length
// (2-15 runes).
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
