package scoring

import "testing"

func TestScoreSumsAllWeights(t *testing.T) {
	s := Signals{
		ComprobanteDeTransferencia: true,
		Enviaste:                   true,
		Comprobante:                true,
		Transferencia:              true,
		MercadoPago:                true,
		ActionTerm:                 true,
		KnownBank:                  true,
		AmountPresent:              true,
		LabeledOperationField:      true,
		CounterpartyMarker:         true,
		CurrencyMarker:             true,
		GroupedThousandsLarge:      true,
		TemplateMatchWithAmount:    true,
	}
	got := Score(s)
	want := WeightComprobanteDeTransferencia + WeightEnviaste + WeightComprobante +
		WeightTransferencia + WeightMercadoPago + WeightActionTerm + WeightKnownBank +
		WeightAmountPresent + WeightLabeledOperationField + WeightCounterpartyMarker +
		WeightCurrencyMarker + WeightGroupedThousandsLarge + WeightTemplateMatchWithAmount
	if got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestScoreZeroWhenNoSignals(t *testing.T) {
	if got := Score(Signals{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestAcceptThresholdIsFour(t *testing.T) {
	if AcceptThreshold != 4 {
		t.Fatalf("spec fixes the accept threshold at score >= 4, got %d", AcceptThreshold)
	}
}

func TestSelectMercadoPagoScoresAboveThreshold(t *testing.T) {
	res := Select("Comprobante de transferencia\nMercado Pago\nPagaste\n$ 15.000,00")
	if !res.Found || res.Amount != 15000 || res.Provider != "Mercado Pago" {
		t.Fatalf("got %+v", res)
	}
	if res.Score < AcceptThreshold {
		t.Fatalf("expected score >= %d, got %d", AcceptThreshold, res.Score)
	}
}

func TestSelectNoCandidate(t *testing.T) {
	res := Select("hola que tal, aca van unas fotos")
	if res.Found {
		t.Fatalf("expected no candidate, got %+v", res)
	}
}

func TestComputeSignalsDetectsKnownBankAndCounterpartyMarker(t *testing.T) {
	s := ComputeSignals("Banco Galicia\nMonto $ 7.500,00\nCUIT: 20-12345678-3", 7500, false)
	if !s.KnownBank {
		t.Fatalf("expected KnownBank signal, got %+v", s)
	}
	if !s.CounterpartyMarker {
		t.Fatalf("expected CounterpartyMarker signal, got %+v", s)
	}
	if !s.CurrencyMarker {
		t.Fatalf("expected CurrencyMarker signal, got %+v", s)
	}
	if !s.GroupedThousandsLarge {
		t.Fatalf("expected GroupedThousandsLarge signal, got %+v", s)
	}
	if !s.AmountPresent {
		t.Fatalf("expected AmountPresent signal, got %+v", s)
	}
}

func TestComputeSignalsDetectsNamedPhrasesAndLabeledField(t *testing.T) {
	s := ComputeSignals("Comprobante de transferencia\nEnviaste a Juan\nOperación: 123456789", 500, false)
	if !s.ComprobanteDeTransferencia {
		t.Fatalf("expected ComprobanteDeTransferencia signal, got %+v", s)
	}
	if !s.Comprobante {
		t.Fatalf("expected Comprobante signal, got %+v", s)
	}
	if !s.Transferencia {
		t.Fatalf("expected Transferencia signal, got %+v", s)
	}
	if !s.Enviaste {
		t.Fatalf("expected Enviaste signal, got %+v", s)
	}
	if !s.LabeledOperationField {
		t.Fatalf("expected LabeledOperationField signal, got %+v", s)
	}
}

func TestComputeSignalsTemplateMatchRequiresAmount(t *testing.T) {
	s := ComputeSignals("cualquier texto", 0, true)
	if s.TemplateMatchWithAmount {
		t.Fatalf("expected no TemplateMatchWithAmount signal without a positive amount")
	}
	s = ComputeSignals("cualquier texto", 100, true)
	if !s.TemplateMatchWithAmount {
		t.Fatalf("expected TemplateMatchWithAmount once template matched and amount > 0")
	}
}
