// Package scoring assigns a confidence score to a candidate receipt amount
// out of the combined caption/OCR text, implementing the named signal table
// the receipt pipeline's accept gate depends on.
package scoring

import (
	"regexp"
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/amount"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/templates"
)

// Weight values for each named boolean signal.
const (
	WeightComprobanteDeTransferencia = 2
	WeightEnviaste                   = 1
	WeightComprobante                = 2
	WeightTransferencia              = 2
	WeightMercadoPago                = 2
	WeightActionTerm                 = 1
	WeightKnownBank                  = 1
	WeightAmountPresent              = 3
	WeightLabeledOperationField      = 1
	WeightCounterpartyMarker         = 1
	WeightCurrencyMarker             = 1
	WeightGroupedThousandsLarge      = 2
	WeightTemplateMatchWithAmount    = 3

	// AcceptThreshold is the minimum score the receipt pipeline requires,
	// together with amount > 0, before accepting without running a
	// normalization rule (spec: score >= 4).
	AcceptThreshold = 4
)

var actionTerms = []string{
	"pagaste", "recibo", "pago realizado", "número de operación", "numero de operacion",
	"código de identificación", "codigo de identificacion",
}

var counterpartyMarkers = []string{"cuit", "cvu", "cbu", "beneficiario"}

var labeledOperationFieldRE = regexp.MustCompile(`(?i)(operaci[oó]n|transacci[oó]n|c[oó]digo|identificaci[oó]n)\s*:\s*\S+`)

// Signals are the boolean facts the scorer weighs, one per row of spec
// §4.6's signal table.
type Signals struct {
	ComprobanteDeTransferencia bool
	Enviaste                   bool
	Comprobante                bool
	Transferencia              bool
	MercadoPago                bool
	ActionTerm                 bool
	KnownBank                  bool
	AmountPresent              bool
	LabeledOperationField      bool
	CounterpartyMarker         bool
	CurrencyMarker             bool
	GroupedThousandsLarge      bool
	TemplateMatchWithAmount    bool
}

// ComputeSignals derives every scoring signal from the combined text, the
// amount the pipeline has settled on so far (0 if none), and whether the
// Template Parser matched.
func ComputeSignals(text string, amt float64, templateMatched bool) Signals {
	low := strings.ToLower(text)

	s := Signals{
		ComprobanteDeTransferencia: strings.Contains(low, "comprobante de transferencia"),
		Enviaste:                   strings.Contains(low, "enviaste"),
		Comprobante:                strings.Contains(low, "comprobante"),
		Transferencia:              strings.Contains(low, "transferencia"),
		MercadoPago:                strings.Contains(low, "mercado pago"),
		AmountPresent:              amt > 0,
		LabeledOperationField:      labeledOperationFieldRE.MatchString(text),
		CurrencyMarker:             strings.Contains(text, "$"),
		GroupedThousandsLarge:      amt >= 1000 && amount.GroupedThousandsRE.MatchString(text),
		TemplateMatchWithAmount:    templateMatched && amt > 0,
	}

	for _, term := range actionTerms {
		if strings.Contains(low, term) {
			s.ActionTerm = true
			break
		}
	}
	for _, term := range counterpartyMarkers {
		if strings.Contains(low, term) {
			s.CounterpartyMarker = true
			break
		}
	}
	for _, name := range templates.BankNames {
		if strings.Contains(low, strings.ToLower(name)) {
			s.KnownBank = true
			break
		}
	}
	return s
}

// Score sums the weights of every signal that is true.
func Score(s Signals) int {
	total := 0
	if s.ComprobanteDeTransferencia {
		total += WeightComprobanteDeTransferencia
	}
	if s.Enviaste {
		total += WeightEnviaste
	}
	if s.Comprobante {
		total += WeightComprobante
	}
	if s.Transferencia {
		total += WeightTransferencia
	}
	if s.MercadoPago {
		total += WeightMercadoPago
	}
	if s.ActionTerm {
		total += WeightActionTerm
	}
	if s.KnownBank {
		total += WeightKnownBank
	}
	if s.AmountPresent {
		total += WeightAmountPresent
	}
	if s.LabeledOperationField {
		total += WeightLabeledOperationField
	}
	if s.CounterpartyMarker {
		total += WeightCounterpartyMarker
	}
	if s.CurrencyMarker {
		total += WeightCurrencyMarker
	}
	if s.GroupedThousandsLarge {
		total += WeightGroupedThousandsLarge
	}
	if s.TemplateMatchWithAmount {
		total += WeightTemplateMatchWithAmount
	}
	return total
}

// Result is the Scorer's verdict on a piece of receipt text.
type Result struct {
	Amount   float64
	Provider string
	Score    int
	Found    bool
}

// Select runs the Template Parser and falls back to the Amount Finder,
// preferring the template's amount except when it is under 1000 and the
// Amount Finder turns up a >=1000 candidate, then scores the winner.
func Select(text string) Result {
	tm := templates.Parse(text)

	amt := 0.0
	found := false
	provider := ""
	if tm.Matched {
		amt = tm.Amount
		found = true
		provider = tm.Provider
	}

	if fallbackAmt, ok := amount.Find(text); ok {
		switch {
		case !found:
			amt = fallbackAmt
			found = true
		case amt < 1000 && fallbackAmt >= 1000:
			amt = fallbackAmt
		}
	}

	if !found {
		return Result{}
	}

	sig := ComputeSignals(text, amt, tm.Matched)
	return Result{Amount: amt, Provider: provider, Score: Score(sig), Found: true}
}
