// Package amount selects the single most plausible monetary amount out of
// noisy, multiline OCR/caption text.
package amount

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/normalize"
)

var badCtxTerms = []string{
	"cuit", "cuil", "cvu", "cbu", "coelsa", "operación", "operacion",
	"transacción", "transaccion", "identificación", "identificacion",
	"código", "codigo", "número", "numero", "referencia",
}

var keyNearTerms = []string{
	"comprobante", "transferencia", "motivo", "mercado pago", "pagaste",
	"enviaste", "de", "para", "monto", "importe", "total",
}

var (
	dollarLedRE = regexp.MustCompile(`\$\s*([0-9][0-9.,\s\x{00A0}\x{202F}]*)`)
	groupedRE   = regexp.MustCompile(`[1-9]\d{0,2}([.,\s\x{00A0}\x{202F}]\d{3})+(?:[,.]\d{1,2})?|[1-9]\d{4,}(?:[,.]\d{1,2})?`)
	bareYearRE  = regexp.MustCompile(`^(19|20)\d{2}$`)

	// GroupedThousandsRE matches a grouped-digits number (thousand separators
	// present), excluding the bare-long-digit-run alternative groupedRE also
	// accepts — the scorer's "grouped thousands" signal wants only the
	// unambiguous, human-formatted form.
	GroupedThousandsRE = regexp.MustCompile(`[1-9]\d{0,2}([.,\s\x{00A0}\x{202F}]\d{3})+(?:[,.]\d{1,2})?`)

	exoticSpaces = strings.NewReplacer(
		" ", " ",
		" ", " ",
		"“", "\"", "”", "\"", "’", "'", "‘", "'",
	)
)

type candidate struct {
	value    float64
	priority int
}

// Find returns the best-guess amount in raw, or (0, false) if none qualifies.
func Find(raw string) (float64, bool) {
	normalized := preNormalize(raw)
	lines := strings.Split(normalized, "\n")
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimSpace(l)
	}

	var candidates []candidate

	for _, l := range trimmed {
		if isBadCtx(l) {
			continue
		}
		for _, m := range dollarLedRE.FindAllStringSubmatch(l, -1) {
			if v, ok := normalize.Amount(m[1]); ok {
				candidates = append(candidates, candidate{value: v, priority: 6})
			}
		}
	}

	if len(candidates) == 0 {
		for i, l := range trimmed {
			if isBadCtx(l) {
				continue
			}
			dist := distanceToKeyNear(trimmed, i)
			for _, m := range groupedRE.FindAllString(l, -1) {
				if bareYearRE.MatchString(m) {
					continue
				}
				v, ok := normalize.Amount(m)
				if !ok {
					continue
				}
				boost := 3 - dist
				if boost < 0 {
					boost = 0
				}
				candidates = append(candidates, candidate{value: v, priority: 2 + boost})
			}
		}
	}

	var filtered []candidate
	for _, c := range candidates {
		if c.value >= 50 && c.value <= 10_000_000 {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return 0, false
	}

	hasLarge := false
	for _, c := range filtered {
		if c.value >= 1000 {
			hasLarge = true
			break
		}
	}
	if hasLarge {
		kept := filtered[:0]
		for _, c := range filtered {
			if c.value >= 1000 {
				kept = append(kept, c)
			}
		}
		filtered = kept
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].priority != filtered[j].priority {
			return filtered[i].priority > filtered[j].priority
		}
		return filtered[i].value > filtered[j].value
	})
	return filtered[0].value, true
}

// LargestGroupedAmount re-scans text for the largest grouped-digits number
// on a non-bad-context line that is either $-prefixed or near a recognized
// keyword, rejecting runs of digits that look like an account number (>=15
// digit characters, or exactly 22 — the CVU/CBU length) and clamping the
// result into [1000, 10_000_000]. It implements the receipt pipeline's
// "largest grouped amount" safety rule.
func LargestGroupedAmount(raw string) (float64, bool) {
	normalized := preNormalize(raw)
	lines := strings.Split(normalized, "\n")

	best := 0.0
	found := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if isBadCtx(trimmed) {
			continue
		}
		if !strings.Contains(trimmed, "$") && !isKeyNear(trimmed) {
			continue
		}
		for _, m := range groupedRE.FindAllString(trimmed, -1) {
			digits := onlyDigitChars(m)
			if len(digits) >= 15 || len(digits) == 22 {
				continue
			}
			v, ok := normalize.Amount(m)
			if !ok {
				continue
			}
			if v > best {
				best = v
				found = true
			}
		}
	}

	if !found {
		return 0, false
	}
	if best < 1000 {
		best = 1000
	}
	if best > 10_000_000 {
		best = 10_000_000
	}
	return best, true
}

func onlyDigitChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func preNormalize(raw string) string {
	s := exoticSpaces.Replace(raw)
	s = strings.ReplaceAll(s, "S$", "$")
	s = strings.ReplaceAll(s, "S 0", "$")
	s = regexp.MustCompile(`(?i)ARS\s*`).ReplaceAllString(s, "$")
	return s
}

func isBadCtx(line string) bool {
	low := strings.ToLower(line)
	for _, term := range badCtxTerms {
		if strings.Contains(low, term) {
			return true
		}
	}
	return false
}

func isKeyNear(line string) bool {
	low := strings.ToLower(line)
	for _, term := range keyNearTerms {
		if strings.Contains(low, term) {
			return true
		}
	}
	return false
}

func distanceToKeyNear(lines []string, idx int) int {
	best := len(lines) + 1
	for i, l := range lines {
		if !isKeyNear(l) {
			continue
		}
		d := idx - i
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
		}
	}
	return best
}
