package service

import (
	"context"
	"time"

	"github.com/docriver/gateway/internal/errs"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/docriver/gateway/internal/model"
	"github.com/docriver/gateway/internal/store"
	"github.com/sirupsen/logrus"
)

// Delete marks every named document deleted. Deletion is logical: the version
// history and the stored bytes stay, only the current status changes.
func (g *Gateway) Delete(ctx context.Context, realm string, m *manifest.Manifest, bearer string) (*manifest.Result, error) {
	start := time.Now()

	m.Realm = realm
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.Authorization != "" {
		bearer = m.Authorization
	}
	principal, err := g.auth.AuthorizeDelete(realm, m, bearer)
	if err != nil {
		return nil, err
	}
	m.Principal = principal

	err = g.store.Transaction(ctx, func(tx store.Store) error {
		txRow := &model.Transaction{
			Tx:        m.Tx,
			TxType:    model.TxTypeDelete,
			Realm:     realm,
			Principal: principal,
		}
		if err := tx.CreateTransaction(ctx, txRow); err != nil {
			return err
		}
		if err := tx.AppendTransactionEvent(ctx, txRow.ID); err != nil {
			return err
		}
		m.TxID = txRow.ID

		for _, document := range m.Documents {
			head, err := tx.LookupDocument(ctx, realm, document.Name)
			if err != nil {
				return err
			}
			if head == nil || !head.Active() {
				return errs.Validationf("Document does not exist or has already been deleted/replaced")
			}
			document.DocumentID = head.DocumentID

			txID := txRow.ID
			if err := tx.AppendDocumentEvent(ctx, &model.DocumentEvent{
				Description:      model.EventDelete,
				Status:           model.StatusDeleted,
				DocumentID:       head.DocumentID,
				RefTransactionID: &txID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.invalidate(ctx, m)
	g.publish(ctx, m, model.TxTypeDelete)

	logrus.Infof("deleted documents: tx: %s - realm: %s, principal: %s, documents: %d", m.Tx, realm, principal, len(m.Documents))
	return manifest.NewResult(m, time.Since(start).Milliseconds()), nil
}
