package store

import (
	"context"
	"errors"
	"time"

	"github.com/docriver/gateway/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	return g.db.WithContext(ctx).Create(tx).Error
}

func (g *GormStore) AppendTransactionEvent(ctx context.Context, txID uint) error {
	// Always INGESTION/I regardless of transaction type.
	event := &model.TransactionEvent{
		Event:         model.EventIngestion,
		Status:        model.StatusIngested,
		TransactionID: txID,
	}
	return g.db.WithContext(ctx).Create(event).Error
}

func (g *GormStore) LookupDocument(ctx context.Context, realm, name string) (*DocumentHead, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("realm = ? AND document = ?", realm, name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	head := &DocumentHead{DocumentID: doc.ID}

	var event model.DocumentEvent
	err = g.db.WithContext(ctx).Where("document_id = ?", doc.ID).Order("id desc").First(&event).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	head.Status = event.Status

	var version model.DocumentVersion
	err = g.db.WithContext(ctx).Where("document_id = ?", doc.ID).Order("id desc").First(&version).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	head.LatestVersionID = version.ID

	return head, nil
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) CreateDocumentVersion(ctx context.Context, version *model.DocumentVersion) error {
	return g.db.WithContext(ctx).Create(version).Error
}

func (g *GormStore) AppendDocumentEvent(ctx context.Context, event *model.DocumentEvent) error {
	return g.db.WithContext(ctx).Create(event).Error
}

func (g *GormStore) CreateReference(ctx context.Context, ref *model.Reference, properties map[string]string) error {
	if err := g.db.WithContext(ctx).Create(ref).Error; err != nil {
		return err
	}
	for key, value := range properties {
		property := &model.ReferenceProperty{
			ReferenceID: ref.ID,
			Key:         key,
			Value:       value,
		}
		if err := g.db.WithContext(ctx).Create(property).Error; err != nil {
			return err
		}
	}
	return nil
}

func (g *GormStore) GetDocumentLocation(ctx context.Context, realm, name string) (string, string, error) {
	head, err := g.LookupDocument(ctx, realm, name)
	if err != nil {
		return "", "", err
	}
	// Replaced-away and deleted documents are indistinguishable from
	// never-ingested ones here.
	if head == nil || !head.Active() || head.LatestVersionID == 0 {
		return "", "", nil
	}

	var version model.DocumentVersion
	if err := g.db.WithContext(ctx).First(&version, head.LatestVersionID).Error; err != nil {
		return "", "", err
	}
	return version.Location, version.MimeType, nil
}

func (g *GormStore) ListEvents(ctx context.Context, realm string, from, to time.Time) ([]EventRecord, error) {
	query := g.db.WithContext(ctx).
		Table("document_events e").
		Select("e.created_at as event_time, d.document as document, e.status as status, "+
			"e.ref_document_id as ref_document_id, e.ref_transaction_id as ref_transaction_id, "+
			"coalesce(v.location_url, '') as location, coalesce(v.type, '') as type, "+
			"coalesce(v.mime_type, '') as mime_type").
		Joins("JOIN documents d ON d.id = e.document_id").
		Joins("LEFT JOIN document_versions v ON v.document_id = e.document_id AND v.transaction_id = e.ref_transaction_id").
		Where("d.realm = ?", realm).
		Order("e.created_at, e.id")

	if !from.IsZero() {
		query = query.Where("e.created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("e.created_at <= ?", to)
	}

	var events []EventRecord
	if err := query.Scan(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
