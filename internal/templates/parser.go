package templates

import (
	"regexp"
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/normalize"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/textnorm"
)

var (
	dollarLedRE = regexp.MustCompile(`\$\s*([0-9][0-9.,\s\x{00A0}\x{202F}]*)`)
	cuitRE      = regexp.MustCompile(`\d{2}-?\d{8}-?\d`)
	cvuCbuRE    = regexp.MustCompile(`\d{22}`)
	deParaRE    = regexp.MustCompile(`(?i)\b(de|para)\s*:?\s*([A-Za-zÀ-ÿ .]{3,40})`)
)

// Fields is the best-effort field set a matched template can pull directly
// out of its recognized layout.
type Fields struct {
	CUIT string
	CVU  string
	From string
	To   string
}

// Match is the result of running the Template Parser over a receipt's text.
type Match struct {
	Matched  bool
	Provider string
	Amount   float64
	Fields   Fields
}

// Parse runs the Template Registry over raw text and returns the first entry
// whose fingerprint matches and yields a positive amount.
func Parse(raw string) Match {
	text := textnorm.Collapse(raw)
	for _, entry := range Registry {
		if !entry.Test.MatchString(text) {
			continue
		}
		amount, ok := bestAmountForEntry(text, entry)
		if !ok || amount <= 0 {
			continue
		}
		return Match{
			Matched:  true,
			Provider: entry.Provider,
			Amount:   amount,
			Fields:   extractFields(text),
		}
	}
	return Match{}
}

func bestAmountForEntry(text string, entry Entry) (float64, bool) {
	lines := strings.Split(text, "\n")
	best := 0.0
	found := false
	for _, line := range lines {
		if !entry.AmountLine.MatchString(line) && !strings.Contains(line, "$") {
			continue
		}
		for _, m := range dollarLedRE.FindAllStringSubmatch(line, -1) {
			if v, ok := normalize.Amount(m[1]); ok && v > best {
				best = v
				found = true
			}
		}
	}
	if found {
		return best, true
	}
	for _, m := range dollarLedRE.FindAllStringSubmatch(text, -1) {
		if v, ok := normalize.Amount(m[1]); ok && v > best {
			best = v
			found = true
		}
	}
	return best, found
}

func extractFields(text string) Fields {
	var f Fields
	if m := cuitRE.FindString(text); m != "" {
		f.CUIT = strings.ReplaceAll(m, "-", "")
	}
	if m := cvuCbuRE.FindString(text); m != "" {
		f.CVU = m
	}
	for _, m := range deParaRE.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[2])
		if strings.EqualFold(m[1], "de") && f.From == "" {
			f.From = name
		}
		if strings.EqualFold(m[1], "para") && f.To == "" {
			f.To = name
		}
	}
	return f
}
