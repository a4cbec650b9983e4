package reflow

// Rules parameterises the classification and rendering heuristics.
// The zero value selects the defaults; tests may supply custom pattern
// sets without touching any package state.
type Rules struct {
	// BulletPatterns are prefix-anchored regexps (matched against the
	// trimmed line) that mark a line as a bullet/list item.
	BulletPatterns []string `yaml:"bullet_patterns"`

	// DashPatterns is the subset of bullet markers that get rewritten to
	// Marker during rendering. Numbered markers are not in this set and
	// pass through verbatim.
	DashPatterns []string `yaml:"dash_patterns"`

	// Marker replaces matched dash/glyph markers. Default "• ".
	Marker string `yaml:"marker"`

	// NormalizeNumbered also rewrites numbered and parenthetical markers
	// to Marker. Off by default: "1. " and "(a) " are kept as written.
	NormalizeNumbered bool `yaml:"normalize_numbered"`

	// MaxHeadingWords bounds heading detection. Default 8 (minimum is 1).
	MaxHeadingWords int `yaml:"max_heading_words"`
}

func (r *Rules) defaults() {
	if len(r.BulletPatterns) == 0 {
		r.BulletPatterns = []string{
			`^\s*[-•\x{2022}]\s+`,
			`^\s*\d+\.\s+`,
			`^\s*\([0-9A-Za-z]\)\s+`,
		}
	}
	if len(r.DashPatterns) == 0 {
		r.DashPatterns = []string{`^\s*[-•\x{2022}]\s+`}
	}
	if r.Marker == "" {
		r.Marker = "• "
	}
	if r.MaxHeadingWords <= 0 {
		r.MaxHeadingWords = 8
	}
}
