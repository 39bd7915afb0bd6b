package router

import (
	"context"
	"testing"
	"time"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/store"
)

func TestDispatchDedupesByMessageID(t *testing.T) {
	rows := &fakeRowStore{}
	r := New(rows, nil, nil)
	msg := IncomingMessage{MessageID: "m1", LineID: "l1", Text: "hola", Timestamp: time.Now()}

	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	seenCount := 0
	for _, row := range rows.inserted {
		if _, ok := row.(*store.SeenMessage); ok {
			seenCount++
		}
	}
	if seenCount != 1 {
		t.Fatalf("expected exactly one seen-message insert, got %d", seenCount)
	}
}

func TestDispatchPlainChatIsPersistedWithoutLeadOrAgenda(t *testing.T) {
	rows := &fakeRowStore{}
	r := New(rows, nil, nil)
	msg := IncomingMessage{MessageID: "m2", LineID: "l1", Text: "hola que tal", Timestamp: time.Now()}

	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	chatCount := 0
	for _, row := range rows.inserted {
		if _, ok := row.(*store.Chat); ok {
			chatCount++
		}
	}
	if chatCount != 1 {
		t.Fatalf("expected exactly one chat insert, got %d", chatCount)
	}
	if len(rows.upserted) != 0 {
		t.Fatalf("expected no lead/agenda upserts for a phone-less chat, got %d", len(rows.upserted))
	}
}

func TestDispatchFirstContactUpsertsLeadAndAgendaAsNew(t *testing.T) {
	rows := &fakeRowStore{}
	r := New(rows, nil, nil)
	msg := IncomingMessage{
		MessageID: "m2b",
		LineID:    "l1",
		Phone:     "5491133334444",
		Text:      "hola, tienen stock?",
		Timestamp: time.Now(),
	}

	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var lead *store.Lead
	var agenda *store.Agenda
	for _, row := range rows.upserted {
		switch v := row.(type) {
		case *store.Lead:
			lead = v
		case *store.Agenda:
			agenda = v
		}
	}
	if lead == nil || lead.Code != "" {
		t.Fatalf("expected a codeless lead row created on first contact, got %+v", lead)
	}
	if agenda == nil || agenda.Status != store.AgendaStatusNew {
		t.Fatalf("expected agenda status=new on first contact, got %+v", agenda)
	}

	// A second, non-trigger message from the same contact must not write
	// another lead/agenda row.
	rows.upserted = nil
	msg2 := msg
	msg2.MessageID = "m2c"
	msg2.Text = "alguna otra pregunta"
	if err := r.Dispatch(context.Background(), msg2); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(rows.upserted) != 0 {
		t.Fatalf("expected no repeat lead/agenda upsert on a later plain message, got %d", len(rows.upserted))
	}
}

func TestDispatchLeadTriggerUpsertsLeadWithCode(t *testing.T) {
	rows := &fakeRowStore{}
	r := New(rows, nil, nil)
	msg := IncomingMessage{
		MessageID: "m3",
		LineID:    "l1",
		Phone:     "5491100000000",
		Text:      "Hola mi codigo de descuento es: PROMO10",
		Timestamp: time.Now(),
	}

	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var lead *store.Lead
	for _, row := range rows.upserted {
		if v, ok := row.(*store.Lead); ok {
			lead = v
		}
	}
	if lead == nil {
		t.Fatalf("expected a lead upsert, got none among %d upserts", len(rows.upserted))
	}
	if lead.Code != "PROMO10" || lead.Phone != msg.Phone {
		t.Fatalf("got lead %+v", lead)
	}
}

func TestDispatchLeadTriggerAccentedVariant(t *testing.T) {
	rows := &fakeRowStore{}
	r := New(rows, nil, nil)
	msg := IncomingMessage{
		MessageID: "m4",
		LineID:    "l1",
		Phone:     "5491111111111",
		Text:      "hola mi código de descuento es ABC123",
		Timestamp: time.Now(),
	}

	if err := r.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	var lead *store.Lead
	for _, row := range rows.upserted {
		if v, ok := row.(*store.Lead); ok {
			lead = v
		}
	}
	if lead == nil || lead.Code != "ABC123" {
		t.Fatalf("got lead %+v", lead)
	}
}

func TestDispatchReceiptPropagatesPipelineErrorOnUnsupportedMedia(t *testing.T) {
	rows := &fakeRowStore{}
	objects := &fakeObjectStore{}
	r := New(rows, objects, nil)
	msg := IncomingMessage{
		MessageID: "m5",
		LineID:    "l1",
		HasMedia:  true,
		MediaData: []byte("not a real file"),
		MediaMime: "application/zip",
		Timestamp: time.Now(),
	}

	err := r.Dispatch(context.Background(), msg)
	if err == nil {
		t.Fatalf("expected an error for an unsupported attachment mimetype")
	}

	for _, row := range rows.inserted {
		if _, ok := row.(*store.Receipt); ok {
			t.Fatalf("expected no receipt row to be persisted when the pipeline fails")
		}
	}
	if objects.uploadedKey != "" {
		t.Fatalf("expected no attachment upload when the pipeline fails")
	}
}
