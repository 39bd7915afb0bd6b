// Package receipt orchestrates the end-to-end recognition of a single
// payment receipt: OCR, scoring, a chain of amount-normalization rules for
// the cases plain scoring can't resolve, and field extraction.
package receipt

import (
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/amount"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/fields"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/normalize"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/ocrdriver"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/scoring"
)

// ruleBumpScore is the score a successful normalization rule assigns in
// place of the ordinary signal weights: the rule itself is the evidence.
// It is a fixed value independent of scoring.AcceptThreshold, which gates
// the unassisted scorer path.
const ruleBumpScore = 10

// mpX1000Cap is the ceiling the Mercado Pago x1000 correction must never
// cross; a multiply that would overshoot it is reverted instead.
const mpX1000Cap = 10_000_000

// Receipt is the fully processed result of one incoming attachment.
type Receipt struct {
	Text     string
	Amount   float64
	Provider string
	Score    int
	Accepted bool
	Fields   fields.Extracted
	Rule     string // which normalization rule accepted the amount, if any
}

// Process runs the full pipeline over one attachment's bytes. mpForceX1000
// gates the Mercado Pago amount-scale rule (config MP_FORCE_X1000, default
// true).
func Process(data []byte, mimeType string, mpForceX1000 bool) (Receipt, error) {
	text, err := ocrdriver.TextFromMedia(data, mimeType)
	if err != nil {
		return Receipt{}, err
	}

	res := scoring.Select(text)
	r := Receipt{
		Text:     text,
		Amount:   res.Amount,
		Provider: res.Provider,
		Score:    res.Score,
	}

	if res.Found && res.Amount > 0 && res.Score >= scoring.AcceptThreshold {
		r.Accepted = true
	} else {
		r = applyNormalizationRules(r, data, mimeType, mpForceX1000)
	}

	r.Fields = fields.Extract(text)
	if r.Fields.Provider != "" && r.Provider == "" {
		r.Provider = r.Fields.Provider
	}
	return r, nil
}

// applyNormalizationRules runs the five ordered amount-recovery rules.
// Rules 1-3 each stand alone: the first to produce a usable amount wins.
// Rules 4 and 5 are sequentially dependent — the visual fallback's result
// feeds straight into the Mercado Pago x1000 rule, since a tile-OCR'd
// headline amount is exactly the kind of cropped-thousands figure that
// rule corrects.
func applyNormalizationRules(r Receipt, data []byte, mimeType string, mpForceX1000 bool) Receipt {
	if amt, ok := ruleLargestGroupedAmount(r); ok {
		return accept(r, amt, "largest-grouped-amount")
	}
	if amt, ok := ruleTripleZeroHint(r); ok {
		return accept(r, amt, "triple-zero-hint")
	}
	if amt, ok := ruleMercadoPagoScale(r.Provider, r.Amount, mpForceX1000); ok {
		return accept(r, amt, "mercado-pago-x1000")
	}
	if amt, ok := ruleVisualFallback(r, data, mimeType); ok {
		rule := "visual-tiled-fallback"
		if scaled, ok := ruleMercadoPagoScale(r.Provider, amt, mpForceX1000); ok {
			amt = scaled
			rule = "mercado-pago-x1000-repeat"
		}
		return accept(r, amt, rule)
	}
	return r
}

func accept(r Receipt, amt float64, rule string) Receipt {
	r.Amount = amt
	r.Score = ruleBumpScore
	r.Accepted = true
	r.Rule = rule
	return r
}

// ruleLargestGroupedAmount is the safety net: when the scorer found no
// amount, or one under 1000, re-scan the text for the largest grouped
// numeric value sitting near a recognized keyword or $ marker.
func ruleLargestGroupedAmount(r Receipt) (float64, bool) {
	if r.Amount >= 1000 {
		return 0, false
	}
	return amount.LargestGroupedAmount(r.Text)
}

// ruleTripleZeroHint catches the common OCR corruption where a trailing
// thousands group is misread as ".00o"/".0o0"/".oo0" or dropped to a 2-3
// digit figure, recovering the intended magnitude.
func ruleTripleZeroHint(r Receipt) (float64, bool) {
	if r.Amount > 0 && r.Amount < 1000 && normalize.HasTripleZeroHint(r.Text) {
		return r.Amount * 1000, true
	}
	return 0, false
}

// ruleMercadoPagoScale corrects Mercado Pago screenshots where the
// thousands group is cropped out of frame, leaving an amount under 1000
// that is really in the thousands. The correction never crosses
// mpX1000Cap: when it would, the conservative choice is to revert to the
// pre-multiply value rather than produce an overstated amount.
func ruleMercadoPagoScale(provider string, amt float64, mpForceX1000 bool) (float64, bool) {
	if !mpForceX1000 || provider != "Mercado Pago" || amt <= 0 || amt >= 1000 {
		return 0, false
	}
	scaled := amt * 1000
	if scaled > mpX1000Cap {
		return amt, true
	}
	return scaled, true
}

// ruleVisualFallback is the last resort before giving up: tile the source
// image and OCR each tile independently, since a small headline amount is
// sometimes legible in isolation even when full-frame OCR garbles it. It
// only runs for Mercado Pago, whose tile coordinates are header-specific,
// and only when nothing upstream has produced a positive amount yet.
func ruleVisualFallback(r Receipt, data []byte, mimeType string) (float64, bool) {
	if r.Amount > 0 || r.Provider != "Mercado Pago" || !strings.HasPrefix(mimeType, "image/") {
		return 0, false
	}
	return ocrdriver.VisualAmountFallback(data)
}
