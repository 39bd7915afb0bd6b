// Package fields extracts the concept, operation/reference IDs, and
// origin/destination party details out of a receipt's recognized text.
package fields

import (
	"regexp"
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/amount"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/templates"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/textnorm"
)

// Party is an origin or destination account reference on a receipt.
type Party struct {
	Name    string
	CUIT    string
	Account string
	Bank    string
}

// Extracted is the full set of fields the receipt pipeline persists.
type Extracted struct {
	Amount      float64
	Provider    string
	Origin      Party
	Destination Party
	Concept     string
	Transaction string
	Reference   string
}

var (
	originKeywords      = []string{"origen", "de", "desde", "emisor", "remitente"}
	destinationKeywords = []string{"destino", "para", "a", "beneficiario", "receptor"}
	bothBoundary        = []string{"archivo", "adjunto", "comprobante", "concepto", "operacion", "operación", "referencia"}
	originBoundary      = append(append([]string{}, []string{"destino", "para"}...), bothBoundary...)
	destinationBoundary = bothBoundary

	nameLabeledRE  = regexp.MustCompile(`(?i)(nombre|titular|beneficiario)\s*:?\s*([A-Za-zÀ-ÿ .]{3,60})`)
	nameDeParaRE   = regexp.MustCompile(`(?i)\b(de|para|a)\b\s*:?\s*([A-Za-zÀ-ÿ .]{3,60})`)
	digitRunRE     = regexp.MustCompile(`\d{5,}`)
	cuitRE         = regexp.MustCompile(`\b\d{2}-?\d{8}-?\d\b`)
	twentyTwoRE    = regexp.MustCompile(`\d{22}`)
	aliasLabeledRE = regexp.MustCompile(`(?i)(alias|cvu|cbu)\s*:?\s*([a-zA-Z0-9.\-_]{6,40})`)
	aliasFreeRE    = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9.\-_]{5,30}\b`)
	bankFallbackRE = regexp.MustCompile(`(?i)banco\s+([A-Za-zÀ-ÿ]+(?:\s+[A-Za-zÀ-ÿ]+)?)`)
	conceptRE      = regexp.MustCompile(`(?i)concepto\s*:?\s*(.{1,120})`)
	transactionRE  = regexp.MustCompile(`(?i)(operaci[oó]n|transacci[oó]n|nro\.?\s*op)\s*:?\s*(\S+)`)
	referenceRE    = regexp.MustCompile(`(?i)(referencia|ref|c[oó]digo|cod)\s*:?\s*(\S+)`)
)

// Extract runs the full field extraction pipeline over raw receipt text.
func Extract(raw string) Extracted {
	text := textnorm.Collapse(raw)

	out := Extracted{}
	tm := templates.Parse(text)
	if tm.Matched {
		out.Amount = tm.Amount
		out.Provider = tm.Provider
	} else if v, ok := amount.Find(text); ok {
		out.Amount = v
	}

	originBlock := carve(text, originKeywords, originBoundary)
	destBlock := carve(text, destinationKeywords, destinationBoundary)

	out.Origin = extractParty(originBlock)
	out.Destination = extractParty(destBlock)

	applyGlobalFallbacks(&out, text, tm)

	if m := conceptRE.FindStringSubmatch(text); len(m) >= 2 {
		c := strings.TrimSpace(m[1])
		if len(c) > 120 {
			c = c[:120]
		}
		out.Concept = c
	}
	if m := transactionRE.FindStringSubmatch(text); len(m) >= 3 {
		out.Transaction = strings.TrimSpace(m[2])
	}
	if m := referenceRE.FindStringSubmatch(text); len(m) >= 3 {
		out.Reference = strings.TrimSpace(m[2])
	}

	return out
}

// carve cuts the substring from the first occurrence of any keyword in
// starters up to the next occurrence of any keyword in boundary.
func carve(text string, starters, boundary []string) string {
	low := strings.ToLower(text)
	startIdx := -1
	for _, kw := range starters {
		if idx := wordIndex(low, kw); idx >= 0 && (startIdx == -1 || idx < startIdx) {
			startIdx = idx
		}
	}
	if startIdx == -1 {
		return ""
	}
	endIdx := len(text)
	for _, kw := range boundary {
		if idx := wordIndex(low[startIdx+1:], kw); idx >= 0 {
			candidate := startIdx + 1 + idx
			if candidate < endIdx {
				endIdx = candidate
			}
		}
	}
	return text[startIdx:endIdx]
}

func wordIndex(low, keyword string) int {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	loc := re.FindStringIndex(low)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func extractParty(block string) Party {
	var p Party
	if block == "" {
		return p
	}
	if m := nameLabeledRE.FindStringSubmatch(block); len(m) >= 3 {
		p.Name = strings.TrimSpace(m[2])
	} else if m := nameDeParaRE.FindStringSubmatch(block); len(m) >= 3 {
		p.Name = strings.TrimSpace(m[2])
	} else {
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(stripLabelPrefix(line))
			if line == "" || !hasLetters(line) {
				continue
			}
			if digitRunRE.MatchString(line) {
				continue
			}
			p.Name = line
			break
		}
	}

	if m := cuitRE.FindString(block); m != "" {
		p.CUIT = strings.ReplaceAll(m, "-", "")
	}

	if m := twentyTwoRE.FindString(block); m != "" {
		p.Account = m
	} else if m := aliasLabeledRE.FindStringSubmatch(block); len(m) >= 3 {
		p.Account = m[2]
	} else {
		for _, cand := range aliasFreeRE.FindAllString(block, -1) {
			if digitRunRE.MatchString(cand) && len(digitRunRE.FindString(cand)) >= 10 {
				continue
			}
			p.Account = cand
			break
		}
	}

	p.Bank = lookupBank(block)
	if p.Bank == "" {
		if m := bankFallbackRE.FindStringSubmatch(block); len(m) >= 2 {
			p.Bank = strings.TrimSpace(m[1])
		}
	}
	return p
}

func lookupBank(block string) string {
	low := strings.ToLower(block)
	for _, name := range templates.BankNames {
		if strings.Contains(low, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

var labelPrefixRE = regexp.MustCompile(`(?i)^(origen|destino|de|desde|para|emisor|remitente|beneficiario|receptor|nombre|titular)\s*:?\s*`)

func stripLabelPrefix(line string) string {
	return labelPrefixRE.ReplaceAllString(line, "")
}

func hasLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func applyGlobalFallbacks(out *Extracted, text string, tm templates.Match) {
	cuits := cuitRE.FindAllString(text, -1)
	accounts := twentyTwoRE.FindAllString(text, -1)

	if out.Origin.CUIT == "" && len(cuits) > 0 {
		out.Origin.CUIT = strings.ReplaceAll(cuits[0], "-", "")
	}
	if out.Destination.CUIT == "" && len(cuits) > 0 {
		out.Destination.CUIT = strings.ReplaceAll(cuits[len(cuits)-1], "-", "")
	}
	if out.Origin.Account == "" && len(accounts) > 0 {
		out.Origin.Account = accounts[0]
	}
	if out.Destination.Account == "" && len(accounts) > 0 {
		out.Destination.Account = accounts[len(accounts)-1]
	}

	globalBank := lookupBank(text)
	if out.Origin.Bank == "" {
		out.Origin.Bank = globalBank
	}
	if out.Destination.Bank == "" {
		out.Destination.Bank = globalBank
	}

	if tm.Matched {
		if out.Origin.Name == "" && tm.Fields.From != "" {
			out.Origin.Name = tm.Fields.From
		}
		if out.Destination.Name == "" && tm.Fields.To != "" {
			out.Destination.Name = tm.Fields.To
		}
	}
}
