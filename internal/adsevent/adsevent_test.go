package adsevent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPhoneStripsNonDigitsAndIsDeterministic(t *testing.T) {
	a := hashPhone("+54 9 11 2345-6789")
	b := hashPhone("5491123456789")
	if a != b {
		t.Fatalf("expected same hash for equivalent numbers, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected a 64-char hex sha256, got len=%d", len(a))
	}
}

func TestBuildPayloadShapesConversionEvent(t *testing.T) {
	when := time.Unix(1_800_000_000, 0)
	p := buildPayload(ConversionEvent{Phone: "5491123456789", Amount: 15000, Currency: "ars", EventTime: when})

	if len(p.Data) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(p.Data))
	}
	d := p.Data[0]
	if d.EventName != "Purchase" || d.ActionSource != "chat" {
		t.Fatalf("got %+v", d)
	}
	if d.CustomData.Currency != "ARS" || d.CustomData.Value != 15000 {
		t.Fatalf("got custom data %+v", d.CustomData)
	}
	if d.EventID == "" {
		t.Fatalf("expected a generated event id")
	}
	if d.UserData.PhoneHash != hashPhone("5491123456789") {
		t.Fatalf("expected phone hash to match hashPhone output")
	}
}

func TestEmitPostsToConfiguredEndpoint(t *testing.T) {
	var gotBody payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("pixel123", "token456")
	c.Endpoint = srv.URL

	err := c.Emit(context.Background(), ConversionEvent{
		Phone: "5491123456789", Amount: 7500, Currency: "ARS", EventTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(gotBody.Data) != 1 || gotBody.Data[0].CustomData.Value != 7500 {
		t.Fatalf("got body %+v", gotBody)
	}
}

func TestEmitReturnsErrorOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("pixel123", "token456")
	c.Endpoint = srv.URL

	err := c.Emit(context.Background(), ConversionEvent{Phone: "123", Amount: 1, Currency: "ARS", EventTime: time.Now()})
	if err == nil {
		t.Fatalf("expected error on 400 response")
	}
}
