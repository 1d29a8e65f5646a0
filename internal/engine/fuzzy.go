package engine

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var dmp = diffmatchpatch.New()

// PartialRatio scores 0..100 how well the shorter of a and b matches some
// substring of the longer one, ignoring case. Every equal-length window of
// the longer string is compared by Levenshtein distance and the best window
// wins.
func PartialRatio(a, b string) int {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		window := rb[i : i+len(ra)]
		dist := dmp.DiffLevenshtein(dmp.DiffMainRunes(ra, window, false))
		score := 1 - float64(dist)/float64(len(ra))
		if score > best {
			best = score
			if best == 1 {
				break
			}
		}
	}
	if best < 0 {
		best = 0
	}
	return int(best*100 + 0.5)
}
