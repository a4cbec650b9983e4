// CLAUDE:SUMMARY Heuristic text reflow engine — rebuilds paragraphs, headings, and bullet lists from flat line streams.
// Package reflow reconstructs readable structured text from a flat stream of
// lines, as produced by PDF text-layer extraction or OCR.
//
// Extracted text arrives as hard-wrapped fragments with no block structure.
// The engine classifies each line (heading, bullet item, paragraph fragment,
// blank), groups contiguous same-role lines into blocks, and renders each
// block: bullet runs one item per line with a normalized marker, headings
// verbatim, paragraph fragments joined into a single flowed paragraph.
//
// Usage:
//
//	f := reflow.New(reflow.Rules{})
//	text := f.Format(rawExtractedText)
package reflow

import (
	"regexp"
	"strings"
)

// Formatter turns flat line sequences into blank-line-separated blocks.
// All heuristics are parameterised through Rules; a Formatter holds no
// mutable state and is safe for concurrent use.
type Formatter struct {
	rules   Rules
	bullets []*regexp.Regexp
	dashes  []*regexp.Regexp
}

// New creates a Formatter with the given rules. Zero-value Rules select
// the default pattern set.
func New(rules Rules) *Formatter {
	rules.defaults()
	f := &Formatter{rules: rules}
	for _, p := range rules.BulletPatterns {
		f.bullets = append(f.bullets, regexp.MustCompile(p))
	}
	for _, p := range rules.DashPatterns {
		f.dashes = append(f.dashes, regexp.MustCompile(p))
	}
	return f
}

// Format runs the full pipeline over raw multiline text: clean, classify,
// segment, render. The result is idempotent under re-application.
func (f *Formatter) Format(text string) string {
	return f.FormatLines(strings.Split(text, "\n"))
}

// FormatLines is Format for a pre-split line sequence.
func (f *Formatter) FormatLines(lines []string) string {
	lines = cleanLines(lines)
	blocks := f.Segment(lines, f.Classify(lines))
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := f.Render(b); s != "" {
			out = append(out, s)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n\n"))
}

// Blocks cleans and segments raw lines without rendering. Callers that build
// richer outputs (docx paragraphs, JSON sections) consume the blocks directly.
func (f *Formatter) Blocks(lines []string) []Block {
	lines = cleanLines(lines)
	return f.Segment(lines, f.Classify(lines))
}

var multiSpaceRe = regexp.MustCompile(` {2,}`)

// Render produces the output string for a single block.
func (f *Formatter) Render(b Block) string {
	switch b.Kind {
	case BlockBullets:
		items := make([]string, 0, len(b.Lines))
		for _, ln := range b.Lines {
			items = append(items, f.renderBullet(ln))
		}
		return strings.Join(items, "\n")
	case BlockHeading:
		// Casing is preserved as written; all-caps headings stay all-caps.
		return strings.Join(b.Lines, "\n")
	default:
		joined := strings.Join(b.Lines, " ")
		return multiSpaceRe.ReplaceAllString(strings.TrimSpace(joined), " ")
	}
}

// renderBullet normalizes dash/glyph markers to the configured marker.
// Numbered and parenthetical markers pass through verbatim unless
// NormalizeNumbered is set.
func (f *Formatter) renderBullet(line string) string {
	for _, re := range f.dashes {
		if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
			return f.rules.Marker + line[loc[1]:]
		}
	}
	if f.rules.NormalizeNumbered {
		for _, re := range f.bullets {
			if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
				return f.rules.Marker + line[loc[1]:]
			}
		}
	}
	return line
}

// cleanLines strips trailing whitespace and collapses runs of blank lines.
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t\r")
		if ln == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, ln)
	}
	return out
}
