// CLAUDE:SUMMARY Line classification: bullet/heading/fragment/blank roles with casing and pattern heuristics.
package reflow

import (
	"strings"
	"unicode"
)

// LineRole tags a line with its structural role. Roles are derived per
// request, never stored.
type LineRole int

const (
	RoleBlank LineRole = iota
	RoleBullet
	RoleHeading
	RoleFragment
)

func (r LineRole) String() string {
	switch r {
	case RoleBlank:
		return "blank"
	case RoleBullet:
		return "bullet"
	case RoleHeading:
		return "heading"
	default:
		return "fragment"
	}
}

// Classify assigns a role to every line. Heading detection is computed in a
// single pass over the full list before any segmentation; no line's role
// depends on a later pass. A line matching both bullet and heading patterns
// is a bullet — the bullet check runs first.
func (f *Formatter) Classify(lines []string) []LineRole {
	roles := make([]LineRole, len(lines))
	for i, ln := range lines {
		t := strings.TrimSpace(ln)
		switch {
		case t == "":
			roles[i] = RoleBlank
		case f.IsBullet(t):
			roles[i] = RoleBullet
		case f.isHeading(t):
			roles[i] = RoleHeading
		default:
			roles[i] = RoleFragment
		}
	}
	return roles
}

// IsBullet reports whether the line carries a list marker. Matching is
// prefix-anchored after trimming leading whitespace, casing-independent.
func (f *Formatter) IsBullet(line string) bool {
	line = strings.TrimSpace(line)
	for _, re := range f.bullets {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// isHeading applies the casing heuristics: 1..MaxHeadingWords words, and
// either fully upper-case with at least one letter, or title case (every
// word starts with an upper-case letter).
func (f *Formatter) isHeading(t string) bool {
	words := strings.Fields(t)
	if len(words) < 1 || len(words) > f.rules.MaxHeadingWords {
		return false
	}
	if isAllUpper(t) {
		return true
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether s contains at least one letter and no
// lower-case letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
