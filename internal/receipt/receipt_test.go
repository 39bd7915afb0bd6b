package receipt

import "testing"

func TestRuleMercadoPagoScaleCorrectsSmallAmount(t *testing.T) {
	amt, ok := ruleMercadoPagoScale("Mercado Pago", 15, true)
	if !ok || amt != 15000 {
		t.Fatalf("got amt=%v ok=%v", amt, ok)
	}
}

func TestRuleMercadoPagoScaleIgnoresOtherProviders(t *testing.T) {
	_, ok := ruleMercadoPagoScale("Galicia", 15, true)
	if ok {
		t.Fatalf("expected no correction for non-Mercado-Pago provider")
	}
}

func TestRuleMercadoPagoScaleIgnoresLargeAmount(t *testing.T) {
	_, ok := ruleMercadoPagoScale("Mercado Pago", 15000, true)
	if ok {
		t.Fatalf("expected no correction once amount is already >= 1000")
	}
}

func TestRuleMercadoPagoScaleRespectsFeatureFlag(t *testing.T) {
	_, ok := ruleMercadoPagoScale("Mercado Pago", 15, false)
	if ok {
		t.Fatalf("expected no correction when MP_FORCE_X1000 is disabled")
	}
}

func TestRuleMercadoPagoScaleCapsAtTenMillion(t *testing.T) {
	amt, ok := ruleMercadoPagoScale("Mercado Pago", 999, true)
	if !ok {
		t.Fatalf("expected the rule to apply")
	}
	if amt > mpX1000Cap {
		t.Fatalf("expected result capped at %d, got %v", mpX1000Cap, amt)
	}
}

func TestRuleTripleZeroHintScalesSmallAmountWithZeroContext(t *testing.T) {
	r := Receipt{Amount: 15, Text: "Total 15.000 pago confirmado"}
	amt, ok := ruleTripleZeroHint(r)
	if !ok || amt != 15000 {
		t.Fatalf("got amt=%v ok=%v", amt, ok)
	}
}

func TestRuleTripleZeroHintIgnoresAmountsAtOrAboveOneThousand(t *testing.T) {
	r := Receipt{Amount: 1500, Text: "Total 1.500.000 pago confirmado"}
	_, ok := ruleTripleZeroHint(r)
	if ok {
		t.Fatalf("expected no correction once amount already reaches 1000")
	}
}

func TestRuleTripleZeroHintIgnoresBareThousandSubstring(t *testing.T) {
	r := Receipt{Amount: 15, Text: "referencia 000123 pago confirmado"}
	_, ok := ruleTripleZeroHint(r)
	if ok {
		t.Fatalf("expected a bare \"000\" substring with no dot prefix not to match")
	}
}

func TestRuleLargestGroupedAmountRejectsAccountNumbers(t *testing.T) {
	r := Receipt{Amount: 0, Text: "CBU 2850590940090418135201\nEnviaste $ 12.500 a Juan"}
	amt, ok := ruleLargestGroupedAmount(r)
	if !ok || amt != 12500 {
		t.Fatalf("got amt=%v ok=%v", amt, ok)
	}
}

func TestRuleLargestGroupedAmountSkipsWhenAlreadyConfident(t *testing.T) {
	r := Receipt{Amount: 5000, Text: "Enviaste $ 12.500 a Juan"}
	_, ok := ruleLargestGroupedAmount(r)
	if ok {
		t.Fatalf("expected the rule to defer to an already-confident amount")
	}
}

func TestRuleVisualFallbackSkipsNonImageMimetypes(t *testing.T) {
	_, ok := ruleVisualFallback(Receipt{Provider: "Mercado Pago"}, []byte("pdf bytes"), "application/pdf")
	if ok {
		t.Fatalf("expected visual fallback to refuse non-image mimetypes")
	}
}

func TestRuleVisualFallbackRequiresMercadoPagoProvider(t *testing.T) {
	_, ok := ruleVisualFallback(Receipt{Provider: "Galicia"}, []byte("not a real image"), "image/png")
	if ok {
		t.Fatalf("expected visual fallback to refuse non-Mercado-Pago receipts")
	}
}

func TestRuleVisualFallbackRequiresNoPositiveAmountYet(t *testing.T) {
	_, ok := ruleVisualFallback(Receipt{Provider: "Mercado Pago", Amount: 5000}, []byte("not a real image"), "image/png")
	if ok {
		t.Fatalf("expected visual fallback to refuse once an amount is already present")
	}
}

func TestApplyNormalizationRulesMercadoPagoScaleAccepts(t *testing.T) {
	r := Receipt{Provider: "Mercado Pago", Amount: 15}
	got := applyNormalizationRules(r, nil, "", true)
	if !got.Accepted || got.Amount != 15000 || got.Rule != "mercado-pago-x1000" {
		t.Fatalf("got %+v", got)
	}
	if got.Score != ruleBumpScore {
		t.Fatalf("expected rule bump score %d, got %d", ruleBumpScore, got.Score)
	}
}

func TestApplyNormalizationRulesNoneApply(t *testing.T) {
	r := Receipt{Provider: "Galicia", Amount: 0, Text: "sin monto legible"}
	got := applyNormalizationRules(r, nil, "", true)
	if got.Accepted {
		t.Fatalf("expected rules to leave receipt unaccepted, got %+v", got)
	}
}
