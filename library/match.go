package library

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the Unicode case-folded form of s. A Caser keeps state, so a
// fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}
