// Package router is the Inbound Router: it dedupes incoming WhatsApp
// events, records every message as a chat, tracks the sending contact's
// lead/agenda progression, and dispatches attachments to the receipt
// pipeline.
package router

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/adsevent"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/receipt"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/store"
)

// IncomingMessage is one event reported by a line's WhatsApp Web client.
type IncomingMessage struct {
	MessageID string
	LineID    string
	ChatID    string
	Phone     string
	Contact   string
	Name      string
	Text      string
	HasMedia  bool
	MediaData []byte
	MediaMime string
	Timestamp time.Time
}

var leadTriggerRE = regexp.MustCompile(`(?i)^\s*hola\s+mi\s+c[oó]digo\s+de\s+descuento\s+es\s*[:\-]?\s*(\S+)`)

// Router dispatches incoming messages to the receipt pipeline or the lead
// capture path, deduplicating by message id first.
type Router struct {
	rows         store.RowStore
	objects      store.ObjectStore
	ads          *adsevent.Client
	mpForceX1000 bool

	mu           sync.Mutex
	seen         map[string]struct{}
	knownContact map[string]struct{}
}

// New builds a Router. ads may be nil, in which case accepted receipts are
// persisted but no conversion event is emitted — useful for lines with no
// ad account attached. The Mercado Pago x1000 flag (config MP_FORCE_X1000)
// starts on; WithMPForceX1000 changes it.
func New(rows store.RowStore, objects store.ObjectStore, ads *adsevent.Client) *Router {
	return &Router{
		rows:         rows,
		objects:      objects,
		ads:          ads,
		mpForceX1000: true,
		seen:         make(map[string]struct{}),
		knownContact: make(map[string]struct{}),
	}
}

// WithMPForceX1000 overrides the Mercado Pago x1000 correction's feature
// flag, which New defaults to on.
func (r *Router) WithMPForceX1000(enabled bool) *Router {
	r.mpForceX1000 = enabled
	return r
}

// Dispatch processes one incoming message exactly once per message id.
func (r *Router) Dispatch(ctx context.Context, msg IncomingMessage) error {
	if r.alreadySeen(msg.MessageID) {
		return nil
	}
	r.markSeen(ctx, msg)
	r.persistChat(ctx, msg)

	code := ""
	if m := leadTriggerRE.FindStringSubmatch(msg.Text); m != nil {
		code = strings.TrimSpace(m[1])
	}
	// A single deterministic upsert per contact: the row is created on the
	// contact's first message (code empty) and the trigger phrase, whenever
	// it arrives, updates the same row's code in place — never two writes
	// under different conflict policies for the same event. The agenda row is
	// only written at AgendaStatusNew on the first contact.
	first := r.firstContact(msg.Phone)
	if code != "" || first {
		r.upsertLead(ctx, msg, code)
	}
	if first {
		r.upsertAgenda(ctx, msg, store.AgendaStatusNew)
	}

	if msg.HasMedia {
		return r.handleReceipt(ctx, msg)
	}

	return nil
}

func (r *Router) alreadySeen(messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[messageID]
	return ok
}

func (r *Router) markSeen(ctx context.Context, msg IncomingMessage) {
	r.mu.Lock()
	r.seen[msg.MessageID] = struct{}{}
	r.mu.Unlock()

	row := store.SeenMessage{MessageID: msg.MessageID, LineID: msg.LineID, CreatedAt: msg.Timestamp.Unix()}
	if err := r.rows.Insert(ctx, &row); err != nil {
		log.Printf("router: persist seen message %s: %v", msg.MessageID, err)
	}
}

// firstContact reports whether this is the first time this phone number has
// been seen by this Router instance, marking it seen as a side effect.
func (r *Router) firstContact(phone string) bool {
	if phone == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.knownContact[phone]; ok {
		return false
	}
	r.knownContact[phone] = struct{}{}
	return true
}

// persistChat records every inbound message as a chat row, independent of
// whether it is a lead trigger or carries an attachment.
func (r *Router) persistChat(ctx context.Context, msg IncomingMessage) {
	row := store.Chat{
		LineID:    msg.LineID,
		ChatID:    msg.ChatID,
		Phone:     msg.Phone,
		Contact:   msg.Contact,
		Message:   msg.Text,
		Name:      msg.Name,
		CreatedAt: msg.Timestamp.Unix(),
	}
	if err := r.rows.Insert(ctx, &row); err != nil {
		log.Printf("router: persist chat for message %s: %v", msg.MessageID, err)
	}
}

// upsertLead writes a lead row keyed by phone. code is empty except on the
// trigger-phrase match, which is the only time this call is allowed to
// overwrite an existing code.
func (r *Router) upsertLead(ctx context.Context, msg IncomingMessage, code string) {
	lead := store.Lead{
		Phone:     msg.Phone,
		Code:      code,
		LineID:    msg.LineID,
		CreatedAt: msg.Timestamp.Unix(),
	}
	if err := r.rows.Upsert(ctx, &lead, []string{"phone"}); err != nil {
		log.Printf("router: upsert lead for phone %s: %v", msg.Phone, err)
	}
}

// upsertAgenda writes the contact's agenda row. Callers must never pass
// AgendaStatusNew once a contact has converted: this call only ever runs
// once per contact at AgendaStatusNew (gated by firstContact), and
// handleReceipt is the only caller of AgendaStatusConversion, preserving the
// new -> conversion, never backwards invariant without needing the
// underlying store to special-case it.
func (r *Router) upsertAgenda(ctx context.Context, msg IncomingMessage, status string) {
	row := store.Agenda{
		LineID:    msg.LineID,
		Phone:     msg.Phone,
		Status:    status,
		CreatedAt: msg.Timestamp.Unix(),
		UpdatedAt: msg.Timestamp.Unix(),
	}
	if err := r.rows.Upsert(ctx, &row, []string{"phone"}); err != nil {
		log.Printf("router: upsert agenda for phone %s: %v", msg.Phone, err)
	}
}

// handleReceipt runs the receipt pipeline over the attachment, and on
// acceptance persists the row, uploads the raw bytes, advances the
// contact's agenda to conversion, and fires a conversion event.
func (r *Router) handleReceipt(ctx context.Context, msg IncomingMessage) error {
	rec, err := receipt.Process(msg.MediaData, msg.MediaMime, r.mpForceX1000)
	if err != nil {
		log.Printf("router: receipt pipeline failed for message %s: %v", msg.MessageID, err)
		return err
	}
	if !rec.Accepted {
		return nil
	}

	attachmentURL := ""
	if r.objects != nil {
		key := msg.LineID + "/" + msg.MessageID
		url, err := r.objects.Upload(ctx, key, msg.MediaData, msg.MediaMime)
		if err != nil {
			log.Printf("router: upload attachment for message %s: %v", msg.MessageID, err)
		} else {
			attachmentURL = url
		}
	}

	row := store.Receipt{
		LineID:        msg.LineID,
		ChatID:        msg.ChatID,
		MessageID:     msg.MessageID,
		Amount:        rec.Amount,
		Provider:      rec.Provider,
		Score:         rec.Score,
		Accepted:      rec.Accepted,
		RawText:       rec.Text,
		OriginName:    rec.Fields.Origin.Name,
		OriginCUIT:    rec.Fields.Origin.CUIT,
		DestName:      rec.Fields.Destination.Name,
		DestCUIT:      rec.Fields.Destination.CUIT,
		Concept:       rec.Fields.Concept,
		Reference:     rec.Fields.Reference,
		AttachmentURL: attachmentURL,
		CreatedAt:     msg.Timestamp.Unix(),
	}
	if err := r.rows.Insert(ctx, &row); err != nil {
		log.Printf("router: persist receipt for message %s: %v", msg.MessageID, err)
		return err
	}

	r.upsertAgenda(ctx, msg, store.AgendaStatusConversion)

	if r.ads != nil && msg.Phone != "" {
		ev := adsevent.ConversionEvent{
			Phone:     msg.Phone,
			Amount:    rec.Amount,
			Currency:  "ARS",
			EventTime: msg.Timestamp,
		}
		if err := r.ads.Emit(ctx, ev); err != nil {
			log.Printf("router: emit ad event for message %s: %v", msg.MessageID, err)
		}
	}

	return nil
}
