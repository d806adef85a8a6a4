package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docriver/gateway/internal/model"
	"github.com/docriver/gateway/internal/tester"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) *GormStore {
	t.Helper()
	tester.Setup()
	return NewGormStore(tester.TestDB())
}

func ingest(t *testing.T, s *GormStore, realm, name, location string) (*model.Document, *model.Transaction) {
	t.Helper()
	ctx := context.Background()

	tx := &model.Transaction{Tx: "tx-" + name, TxType: model.TxTypeSubmit, Realm: realm, Principal: "backend"}
	assert.NoError(t, s.CreateTransaction(ctx, tx))
	assert.NoError(t, s.AppendTransactionEvent(ctx, tx.ID))

	doc := &model.Document{Name: name, Realm: realm}
	assert.NoError(t, s.CreateDocument(ctx, doc))
	assert.NoError(t, s.CreateDocumentVersion(ctx, &model.DocumentVersion{
		DocumentID:    doc.ID,
		TransactionID: tx.ID,
		Location:      location,
		MimeType:      "application/pdf",
	}))
	assert.NoError(t, s.AppendDocumentEvent(ctx, &model.DocumentEvent{
		Description:      model.EventIngestion,
		Status:           model.StatusIngested,
		DocumentID:       doc.ID,
		RefTransactionID: &tx.ID,
	}))
	return doc, tx
}

func TestLookupDocument(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	head, err := s.LookupDocument(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.Nil(t, head)

	doc, tx := ingest(t, s, "p123456", "claim-1", "minio:docs/p123456/claim-1-1.pdf")

	head, err = s.LookupDocument(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.NotNil(t, head)
	assert.Equal(t, doc.ID, head.DocumentID)
	assert.Equal(t, model.StatusIngested, head.Status)
	assert.True(t, head.Active())

	// other realms do not see the document
	head, err = s.LookupDocument(ctx, "p999999", "claim-1")
	assert.NoError(t, err)
	assert.Nil(t, head)

	// the latest event wins
	assert.NoError(t, s.AppendDocumentEvent(ctx, &model.DocumentEvent{
		Description:      model.EventDelete,
		Status:           model.StatusDeleted,
		DocumentID:       doc.ID,
		RefTransactionID: &tx.ID,
	}))
	head, err = s.LookupDocument(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.False(t, head.Active())
}

func TestGetDocumentLocation(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	location, mimeType, err := s.GetDocumentLocation(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.Empty(t, location)
	assert.Empty(t, mimeType)

	doc, tx := ingest(t, s, "p123456", "claim-1", "minio:docs:p123456/claim-1-1.pdf")

	location, mimeType, err = s.GetDocumentLocation(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.Equal(t, "minio:docs:p123456/claim-1-1.pdf", location)
	assert.Equal(t, "application/pdf", mimeType)

	assert.NoError(t, s.AppendDocumentEvent(ctx, &model.DocumentEvent{
		Description:      model.EventDelete,
		Status:           model.StatusDeleted,
		DocumentID:       doc.ID,
		RefTransactionID: &tx.ID,
	}))
	location, _, err = s.GetDocumentLocation(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.Empty(t, location)
}

func TestListEvents(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	ingest(t, s, "p123456", "claim-1", "minio:docs:p123456/claim-1-1.pdf")
	ingest(t, s, "p123456", "claim-2", "minio:docs:p123456/claim-2-1.pdf")
	ingest(t, s, "p999999", "claim-3", "minio:docs:p999999/claim-3-1.pdf")

	events, err := s.ListEvents(ctx, "p123456", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "claim-1", events[0].Document)
	assert.Equal(t, model.StatusIngested, events[0].Status)
	assert.Equal(t, "minio:docs:p123456/claim-1-1.pdf", events[0].Location)
	assert.Equal(t, "claim-2", events[1].Document)

	// a window in the past excludes everything
	events, err = s.ListEvents(ctx, "p123456", time.Time{}, time.Now().Add(-time.Hour))
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestTransactionRollback(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		doc := &model.Document{Name: "claim-1", Realm: "p123456"}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	head, err := s.LookupDocument(ctx, "p123456", "claim-1")
	assert.NoError(t, err)
	assert.Nil(t, head)
}
