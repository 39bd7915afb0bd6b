// Package textnorm holds the handful of text-cleanup rules shared by the
// template parser and the field extractor: collapsing
// exotic whitespace, unifying curly quotes, and folding currency markers to
// a plain '$'.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	quoteReplacer = strings.NewReplacer(
		" ", " ",
		" ", " ",
		"“", "\"", "”", "\"", "’", "'", "‘", "'",
	)
	arsMarkerRE = regexp.MustCompile(`(?i)ARS\s*`)
)

// Collapse replaces exotic spaces/quotes, folds known currency markers to
// '$', and collapses runs of horizontal whitespace to a single space while
// preserving line breaks.
func Collapse(raw string) string {
	s := quoteReplacer.Replace(raw)
	s = strings.ReplaceAll(s, "S$", "$")
	s = strings.ReplaceAll(s, "S 0", "$")
	s = arsMarkerRE.ReplaceAllString(s, "$")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		fields := strings.Fields(l)
		lines[i] = strings.Join(fields, " ")
	}
	return strings.Join(lines, "\n")
}
