package convert

import (
	"sort"
	"strconv"
	"strings"
)

// ParsePageRanges turns a selection string like "1,3,5-8" into a sorted,
// deduplicated list of 1-based page numbers clamped to [1, total].
// Malformed fragments are skipped, reversed ranges are swapped. An empty or
// fully invalid selection yields nil, which callers treat as "all pages".
func ParsePageRanges(s string, total int) []int {
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, err1 := strconv.Atoi(strings.TrimSpace(a))
			hi, err2 := strconv.Atoi(strings.TrimSpace(b))
			if err1 != nil || err2 != nil {
				continue
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for p := lo; p <= hi; p++ {
				if p >= 1 && p <= total {
					seen[p] = true
				}
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p < 1 || p > total {
			continue
		}
		seen[p] = true
	}

	if len(seen) == 0 {
		return nil
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
