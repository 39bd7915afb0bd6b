// Package normalize parses Argentine-format numeric literals recovered from
// noisy OCR text into plain float64 values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	groupedCommaThousandsRE = regexp.MustCompile(`^\d{1,3}(,\d{3})+(,\d{1,2})?$`)
	groupedDotThousandsRE   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(\.\d{1,2})?$`)
	tripleZeroHintRE        = regexp.MustCompile(`(?i)\.(000|00o|0o0|oo0)([^0-9]|$)`)
	looseTripleZeroRE       = regexp.MustCompile(`\.0{3,}`)
)

// HasTripleZeroHint reports whether text contains a dot-prefixed
// triple-zero hint (".000", ".00o", ".0o0", ".oo0") — OCR's way of mangling
// a thousands-separated zero run — as opposed to a bare "000" substring,
// which carries no such meaning on its own.
func HasTripleZeroHint(text string) bool {
	return tripleZeroHintRE.MatchString(strings.ToLower(text))
}

// Amount parses a raw numeric token lifted from OCR text into a float64.
// It returns (0, false) when the token cannot be interpreted as a number.
func Amount(raw string) (float64, bool) {
	// Step 1: drop NBSP/NNSP in favor of ordinary spaces, strip all whitespace,
	// then remove the currency symbol and any glyph that is not a digit,
	// separator, or the 'o'/'O' letters OCR repair needs in step 2.
	s := strings.NewReplacer(" ", " ", " ", " ").Replace(raw)
	s = stripWhitespace(s)
	preRepair := keepDigitsSeparatorsAndO(s)

	// Step 2: OCR repair — 'o'/'O' between two digits becomes '0'.
	repaired := repairOCRZeros(preRepair)
	// Drop any leftover 'o'/'O' that wasn't sitting between two digits; it
	// carries no numeric meaning once repair has had its chance.
	repaired = dropLetters(repaired)

	// Step 3: strip leading/trailing separators.
	token := strings.Trim(repaired, ".,")
	if token == "" {
		return 0, false
	}

	hasDot := strings.Contains(token, ".")
	hasComma := strings.Contains(token, ",")

	switch {
	case hasDot && hasComma:
		return parseBothSeparators(token)
	case hasComma:
		return parseCommaOnly(token)
	case hasDot:
		return parseDotOnly(token, preRepair)
	default:
		digits := onlyDigits(token)
		if digits == "" {
			return 0, false
		}
		return parseDigits(digits)
	}
}

func parseBothSeparators(token string) (float64, bool) {
	lastComma := strings.LastIndex(token, ",")
	intPart := strings.ReplaceAll(token[:lastComma], ".", "")
	fracPart := token[lastComma+1:]
	intPart = onlyDigits(intPart)
	fracPart = onlyDigits(fracPart)
	if intPart == "" {
		intPart = "0"
	}
	return parseDigits(intPart + "." + fracPart)
}

func parseCommaOnly(token string) (float64, bool) {
	if groupedCommaThousandsRE.MatchString(token) {
		groups := strings.Split(token, ",")
		last := groups[len(groups)-1]
		if len(last) <= 2 && len(groups) >= 2 {
			intPart := strings.Join(groups[:len(groups)-1], "")
			return parseDigits(intPart + "." + last)
		}
		return parseDigits(strings.Join(groups, ""))
	}
	// Otherwise ',' is the decimal separator.
	parts := strings.Split(token, ",")
	if len(parts) == 1 {
		return parseDigits(onlyDigits(parts[0]))
	}
	intPart := strings.Join(parts[:len(parts)-1], "")
	fracPart := parts[len(parts)-1]
	return parseDigits(onlyDigits(intPart) + "." + onlyDigits(fracPart))
}

func parseDotOnly(token string, preRepairToken string) (float64, bool) {
	tripleZeroLike := tripleZeroHintRE.MatchString(strings.ToLower(preRepairToken))

	if tripleZeroLike {
		return parseDigits(onlyDigits(token))
	}

	if groupedDotThousandsRE.MatchString(token) {
		groups := strings.Split(token, ".")
		last := groups[len(groups)-1]
		if len(last) <= 2 && len(groups) >= 2 {
			intPart := strings.Join(groups[:len(groups)-1], "")
			return parseDigits(intPart + "." + last)
		}
		return parseDigits(strings.Join(groups, ""))
	}

	groups := strings.Split(token, ".")
	if len(groups[len(groups)-1]) == 3 {
		return parseDigits(onlyDigits(token))
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	if v < 1000 && looseTripleZeroRE.MatchString(token) {
		v *= 1000
	}
	return v, true
}

func parseDigits(digits string) (float64, bool) {
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func keepDigitsSeparatorsAndO(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == 'o' || r == 'O':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func repairOCRZeros(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	copy(out, runes)
	for i, r := range runes {
		if r != 'o' && r != 'O' {
			continue
		}
		if i == 0 || i == len(runes)-1 {
			continue
		}
		prev, next := runes[i-1], runes[i+1]
		if isDigit(prev) && isDigit(next) {
			out[i] = '0'
		}
	}
	return string(out)
}

func dropLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == 'o' || r == 'O' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
