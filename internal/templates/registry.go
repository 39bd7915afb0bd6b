// Package templates classifies a receipt's provider from fingerprint
// patterns and extracts its headline amount and a handful of fields.
package templates

import "regexp"

// Entry is a provider fingerprint: test matches somewhere in the normalized
// text to identify the provider, amountLine flags the line(s) most likely to
// carry the transferred amount.
type Entry struct {
	Provider   string
	Test       *regexp.Regexp
	AmountLine *regexp.Regexp
}

// Registry is ordered; entries earlier in the list win ties. Mercado Pago
// must precede the generic "comprobante" matchers because its screenshot
// format is the noisiest of the bunch.
var Registry = []Entry{
	{
		Provider:   "Mercado Pago",
		Test:       regexp.MustCompile(`(?i)mercado\s*pago`),
		AmountLine: regexp.MustCompile(`(?i)(pagaste|enviaste|transferiste|total)`),
	},
	{
		Provider:   "Naranja X",
		Test:       regexp.MustCompile(`(?i)naranja\s*x`),
		AmountLine: regexp.MustCompile(`(?i)(monto|transferiste|enviaste)`),
	},
	{
		Provider:   "Prex",
		Test:       regexp.MustCompile(`(?i)\bprex\b`),
		AmountLine: regexp.MustCompile(`(?i)(monto|total|importe)`),
	},
	{
		Provider:   "Ualá",
		Test:       regexp.MustCompile(`(?i)ual[aá]`),
		AmountLine: regexp.MustCompile(`(?i)(monto|transferiste|enviaste)`),
	},
	{
		Provider:   "Banco Nación",
		Test:       regexp.MustCompile(`(?i)(banco\s*naci[oó]n|\bbna\b)`),
		AmountLine: regexp.MustCompile(`(?i)(importe|monto|transferencia)`),
	},
	{
		Provider:   "Santander",
		Test:       regexp.MustCompile(`(?i)santander`),
		AmountLine: regexp.MustCompile(`(?i)(importe|monto|transferencia)`),
	},
	{
		Provider:   "Galicia",
		Test:       regexp.MustCompile(`(?i)galicia`),
		AmountLine: regexp.MustCompile(`(?i)(monto|importe|comprobante)`),
	},
}

// BankNames is the explicit bank-name lookup table used by the field
// extractor's bank detection and by the scorer's "known bank" signal.
var BankNames = []string{
	"Mercado Pago", "Ualá", "Santander", "Galicia", "BBVA", "Macro", "HSBC",
	"ICBC", "Nación", "BNA", "Patagonia", "Credicoop", "Brubank", "Naranja X",
	"Prex",
}
