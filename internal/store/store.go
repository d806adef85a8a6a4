package store

import (
	"context"
	"time"

	"github.com/docriver/gateway/internal/model"
)

// DocumentHead is the resolved state of a named document: its identity, its
// latest version and its current status (the status of the most recent
// document event).
type DocumentHead struct {
	DocumentID      uint
	LatestVersionID uint
	Status          string
}

// Active reports whether the document can still be referenced, replaced or
// deleted.
func (h *DocumentHead) Active() bool {
	return h.Status != model.StatusReplaced && h.Status != model.StatusDeleted
}

// EventRecord is one row of the realm event listing.
type EventRecord struct {
	EventTime        time.Time
	Document         string
	Status           string
	RefDocumentID    *uint
	RefTransactionID *uint
	Location         string
	Type             string
	MimeType         string
}

// Store exposes the lifecycle primitives used by the orchestrator. None of the
// methods retries internally; atomicity is scoped to the caller through
// Transaction.
type Store interface {
	// CreateTransaction inserts the transaction row and fills in its id.
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	// AppendTransactionEvent writes the per-transaction audit row.
	AppendTransactionEvent(ctx context.Context, txID uint) error
	// LookupDocument resolves a document by realm and name. Returns nil when
	// the name has never been ingested.
	LookupDocument(ctx context.Context, realm, name string) (*DocumentHead, error)
	// CreateDocument inserts the identity row for a new document name.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// CreateDocumentVersion inserts an immutable version row.
	CreateDocumentVersion(ctx context.Context, version *model.DocumentVersion) error
	// AppendDocumentEvent appends one audit row to a document's history.
	AppendDocumentEvent(ctx context.Context, event *model.DocumentEvent) error
	// CreateReference writes a reference row plus its property bag.
	CreateReference(ctx context.Context, ref *model.Reference, properties map[string]string) error
	// GetDocumentLocation resolves the latest version location and MIME type
	// of an active document. Returns empty strings when the document does not
	// exist or its current status is replaced or deleted.
	GetDocumentLocation(ctx context.Context, realm, name string) (location, mimeType string, err error)
	// ListEvents returns the realm's document events within the time window,
	// ordered by event time. Zero bounds are unbounded.
	ListEvents(ctx context.Context, realm string, from, to time.Time) ([]EventRecord, error)

	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}
