package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/docriver/gateway/internal/blob"
	"github.com/docriver/gateway/internal/errs"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/docriver/gateway/internal/model"
	"github.com/docriver/gateway/internal/store"
	"github.com/docriver/gateway/internal/validate"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// objectWrite is one pending object-store upload, resolved during the
// metadata pass and executed before the transaction commits.
type objectWrite struct {
	stageFile string
	key       string
	mimeType  string
	tags      map[string]string
	metadata  map[string]string
}

// Submit runs one submission transaction end to end: validate the manifest,
// authorize, stage and check the content, then write the relational rows and
// the object bytes atomically. The relational rows are only committed after
// every object write succeeds; a failed upload rolls the rows back and leaves
// at most orphaned bytes, never a dangling location.
func (g *Gateway) Submit(ctx context.Context, realm string, m *manifest.Manifest, bearer string) (*manifest.Result, error) {
	start := time.Now()

	m.Realm = realm
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.Authorization != "" {
		bearer = m.Authorization
	}
	principal, err := g.auth.AuthorizeSubmit(realm, m, bearer)
	if err != nil {
		return nil, err
	}
	m.Principal = principal

	stageDir := filepath.Join(g.untrustedMount, uuid.NewString())
	if err := os.MkdirAll(stageDir, 0o700); err != nil {
		return nil, err
	}
	defer os.RemoveAll(stageDir)

	declared, err := g.stageDocuments(m, stageDir)
	if err != nil {
		return nil, err
	}
	if len(declared) > 0 {
		if err := validate.Documents(ctx, g.scanner, g.scanMount, stageDir, declared); err != nil {
			return nil, err
		}
	}

	err = g.store.Transaction(ctx, func(tx store.Store) error {
		writes, err := g.writeMetadata(ctx, tx, m)
		if err != nil {
			return err
		}
		return g.writeObjects(ctx, writes)
	})
	if err != nil {
		return nil, err
	}

	g.invalidate(ctx, m)
	g.publish(ctx, m, model.TxTypeSubmit)

	logrus.Infof("ingested transaction: %s - realm: %s, principal: %s, documents: %d", m.Tx, realm, principal, len(m.Documents))
	return manifest.NewResult(m, time.Since(start).Milliseconds()), nil
}

// writeMetadata inserts all relational rows for the submission and returns
// the object uploads to perform before commit.
func (g *Gateway) writeMetadata(ctx context.Context, tx store.Store, m *manifest.Manifest) ([]objectWrite, error) {
	txRow := &model.Transaction{
		Tx:        m.Tx,
		TxType:    model.TxTypeSubmit,
		Realm:     m.Realm,
		Principal: m.Principal,
	}
	if err := tx.CreateTransaction(ctx, txRow); err != nil {
		return nil, err
	}
	if err := tx.AppendTransactionEvent(ctx, txRow.ID); err != nil {
		return nil, err
	}
	m.TxID = txRow.ID

	var writes []objectWrite
	for _, document := range m.Documents {
		write, err := g.writeDocument(ctx, tx, m, document, txRow.ID)
		if err != nil {
			return nil, err
		}
		if write != nil {
			writes = append(writes, *write)
		}
	}
	return writes, nil
}

func (g *Gateway) writeDocument(ctx context.Context, tx store.Store, m *manifest.Manifest, document *manifest.Document, txID uint) (*objectWrite, error) {
	head, err := tx.LookupDocument(ctx, m.Realm, document.Name)
	if err != nil {
		return nil, err
	}

	if document.Op() == manifest.OpReference {
		if head == nil || !head.Active() {
			return nil, errs.Validationf("Document: %s not found or has been replaced", document.Name)
		}
		document.DocumentID = head.DocumentID
		document.VersionID = head.LatestVersionID
		if err := tx.AppendDocumentEvent(ctx, &model.DocumentEvent{
			Description:      model.EventReference,
			Status:           model.StatusReference,
			DocumentID:       head.DocumentID,
			RefTransactionID: &txID,
		}); err != nil {
			return nil, err
		}
		return nil, g.writeReferences(ctx, tx, m, document)
	}

	docID, err := g.resolveIdentity(ctx, tx, m, document, head)
	if err != nil {
		return nil, err
	}
	document.DocumentID = docID

	ext := filepath.Ext(document.StageFile)
	key := blob.ObjectKey(m.Realm, document.Name, document.Version, ext)
	version := &model.DocumentVersion{
		DocumentID:    docID,
		TransactionID: txID,
		Location:      blob.Location(g.bucket, key),
		Type:          document.Type,
		MimeType:      document.Content.MimeType,
	}
	if err := tx.CreateDocumentVersion(ctx, version); err != nil {
		return nil, err
	}
	document.VersionID = version.ID

	if document.Op() == manifest.OpReplace {
		if err := g.supersede(ctx, tx, m.Realm, document.Replaces, docID, txID); err != nil {
			return nil, err
		}
	}

	if err := tx.AppendDocumentEvent(ctx, &model.DocumentEvent{
		Description:      model.EventIngestion,
		Status:           model.StatusIngested,
		DocumentID:       docID,
		RefTransactionID: &txID,
	}); err != nil {
		return nil, err
	}

	if err := g.writeReferences(ctx, tx, m, document); err != nil {
		return nil, err
	}

	return &objectWrite{
		stageFile: document.StageFile,
		key:       key,
		mimeType:  document.Content.MimeType,
		tags:      document.Tags,
		metadata:  document.Properties,
	}, nil
}

// resolveIdentity finds or creates the document identity row and appends the
// lifecycle event a new version implies on the existing history.
func (g *Gateway) resolveIdentity(ctx context.Context, tx store.Store, m *manifest.Manifest, document *manifest.Document, head *store.DocumentHead) (uint, error) {
	switch document.Op() {
	case manifest.OpIngest:
		if head != nil && head.Active() {
			return 0, errs.Validationf("The document already exists")
		}
		if head != nil {
			return head.DocumentID, nil
		}
		doc := &model.Document{Name: document.Name, Realm: m.Realm}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return 0, err
		}
		return doc.ID, nil

	case manifest.OpNewVersion:
		if head == nil || !head.Active() {
			return 0, errs.Validationf("Non-existent or replaced replacement document: %s", document.Replaces)
		}
		txID := m.TxID
		if err := tx.AppendDocumentEvent(ctx, &model.DocumentEvent{
			Description:      model.EventNewVersion,
			Status:           model.StatusNewVersion,
			DocumentID:       head.DocumentID,
			RefTransactionID: &txID,
		}); err != nil {
			return 0, err
		}
		return head.DocumentID, nil

	default: // OpReplace introduces a new identity; the old one is closed later.
		if head != nil && head.Active() {
			return 0, errs.Validationf("The document already exists")
		}
		if head != nil {
			return head.DocumentID, nil
		}
		doc := &model.Document{Name: document.Name, Realm: m.Realm}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return 0, err
		}
		return doc.ID, nil
	}
}

// supersede closes the replaced document's history with a replacement event
// pointing at the successor.
func (g *Gateway) supersede(ctx context.Context, tx store.Store, realm, replaced string, successorID, txID uint) error {
	head, err := tx.LookupDocument(ctx, realm, replaced)
	if err != nil {
		return err
	}
	if head == nil || !head.Active() {
		return errs.Validationf("Non-existent or replaced replacement document: %s", replaced)
	}
	return tx.AppendDocumentEvent(ctx, &model.DocumentEvent{
		Description:      model.EventReplacement,
		Status:           model.StatusReplaced,
		DocumentID:       head.DocumentID,
		RefDocumentID:    &successorID,
		RefTransactionID: &txID,
	})
}

// writeReferences attaches the transaction-level and document-level references
// to the document's current version.
func (g *Gateway) writeReferences(ctx context.Context, tx store.Store, m *manifest.Manifest, document *manifest.Document) error {
	references := append(append([]manifest.Reference{}, m.References...), document.References...)
	for _, ref := range references {
		row := &model.Reference{
			ResourceType:      ref.ResourceType,
			ResourceID:        ref.ResourceID,
			Description:       ref.Description,
			DocumentVersionID: document.VersionID,
		}
		if err := tx.CreateReference(ctx, row, ref.Properties); err != nil {
			return err
		}
	}
	return nil
}

// writeObjects uploads the staged bytes. Runs last inside the transaction so
// an upload failure rolls back every relational row.
func (g *Gateway) writeObjects(ctx context.Context, writes []objectWrite) error {
	for _, write := range writes {
		f, err := os.Open(write.stageFile)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		err = g.blob.Put(ctx, write.key, f, info.Size(), write.mimeType, write.tags, write.metadata)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
