// Package store defines the persistence and object-storage boundaries the
// receipt pipeline depends on. Both are out-of-scope externally-owned
// systems per the interface contract; this package only states the shape a
// concrete driver must satisfy.
package store

import "context"

// RowStore is the narrow row-level persistence contract the pipeline needs:
// insert new rows, upsert on conflict, partial update by id, and a raw
// query/select escape hatch for read paths the pipeline doesn't own.
type RowStore interface {
	Insert(ctx context.Context, row any) error
	Upsert(ctx context.Context, row any, conflictColumns []string) error
	Update(ctx context.Context, row any, id any, updates map[string]any) error
	Select(ctx context.Context, dest any, query string, args ...any) error
}

// ObjectStore persists the raw receipt attachment bytes and hands back a
// URL the rest of the system (ad events, manual review) can dereference.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	GetPublicURL(ctx context.Context, key string) (string, error)
}

// Line is the persisted row for one WhatsApp line.
type Line struct {
	ID        string `gorm:"primaryKey"`
	Phone     string
	State     string
	CreatedAt int64
	UpdatedAt int64
}

// TableName pins the row to the schema's plural table name gorm would
// otherwise infer from the name with an underscore it doesn't deserve.
func (Line) TableName() string { return "lines" }

// Receipt is the persisted row for one processed receipt.
type Receipt struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	LineID      string
	ChatID      string
	MessageID   string `gorm:"uniqueIndex"`
	Amount      float64
	Provider    string
	Score       int
	Accepted    bool
	RawText     string
	OriginName  string
	OriginCUIT  string
	DestName    string
	DestCUIT    string
	Concept     string
	Reference   string
	AttachmentURL string
	CreatedAt   int64
}

func (Receipt) TableName() string { return "receipts" }

// SeenMessage records a message id the Inbound Router has already
// dispatched, so a WhatsApp client reconnect replaying history doesn't
// double-process it.
type SeenMessage struct {
	MessageID string `gorm:"primaryKey"`
	LineID    string
	CreatedAt int64
}

func (SeenMessage) TableName() string { return "seen_messages" }

// Lead is the discount-code row for a contact, keyed on phone so a later
// message from the same number updates the same row instead of creating a
// duplicate. Code is empty until the contact sends the trigger phrase.
type Lead struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Phone     string `gorm:"uniqueIndex"`
	Code      string
	LineID    string
	CreatedAt int64
}

func (Lead) TableName() string { return "leads" }

// Chat is the persisted row for one inbound chat message, independent of
// whether it carries media or a lead trigger — the record spec calls
// "Chats ... are also recorded".
type Chat struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	LineID    string
	ChatID    string
	Phone     string
	Contact   string
	Message   string
	Name      string
	CreatedAt int64
}

func (Chat) TableName() string { return "chats" }

// Agenda statuses. Status only ever moves forward, new -> conversion,
// never the other way.
const (
	AgendaStatusNew        = "new"
	AgendaStatusConversion = "conversion"
)

// Agenda tracks a contact's progression from a first-touch conversation to
// a paid conversion.
type Agenda struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	LineID    string
	Phone     string `gorm:"uniqueIndex"`
	Status    string
	CreatedAt int64
	UpdatedAt int64
}

func (Agenda) TableName() string { return "agenda" }
