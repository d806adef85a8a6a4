package service

import (
	"context"
	"testing"
	"time"

	"github.com/docriver/gateway/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGetEvents(t *testing.T) {
	gateway, _ := newGateway()
	realm := uuid.NewString()

	_, err := gateway.Submit(context.Background(), realm,
		inlineManifest("tx-1", "claim-1", "v1", "text/plain"), "")
	assert.NoError(t, err)
	_, err = gateway.Submit(context.Background(), realm,
		inlineManifest("tx-2", "claim-2", "v1", "text/plain"), "")
	assert.NoError(t, err)
	_, err = gateway.Delete(context.Background(), realm, deleteManifest("tx-3", "claim-1"), "")
	assert.NoError(t, err)

	events, err := gateway.GetEvents(context.Background(), realm, "", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 3)

	assert.Equal(t, "claim-1", events[0].Document)
	assert.Equal(t, model.StatusIngested, events[0].Status)
	assert.NotEmpty(t, events[0].Location)
	assert.Equal(t, "text/plain", events[0].MimeType)

	assert.Equal(t, "claim-2", events[1].Document)
	assert.Equal(t, model.StatusIngested, events[1].Status)

	// the deletion event carries no version of its own
	assert.Equal(t, "claim-1", events[2].Document)
	assert.Equal(t, model.StatusDeleted, events[2].Status)
	assert.Empty(t, events[2].Location)
	assert.NotNil(t, events[2].RefTransactionID)
}

func TestReplaceEventLinkage(t *testing.T) {
	gateway, _ := newGateway()
	realm := uuid.NewString()

	_, err := gateway.Submit(context.Background(), realm,
		inlineManifest("tx-1", "claim-1", "old", "text/plain"), "")
	assert.NoError(t, err)

	m := inlineManifest("tx-2", "claim-2", "new", "text/plain")
	m.Documents[0].Replaces = "claim-1"
	result, err := gateway.Submit(context.Background(), realm, m, "")
	assert.NoError(t, err)

	events, err := gateway.GetEvents(context.Background(), realm, "", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 3)

	// the replacement event on the superseded document points at its successor
	assert.Equal(t, "claim-1", events[1].Document)
	assert.Equal(t, model.StatusReplaced, events[1].Status)
	assert.NotNil(t, events[1].RefDocumentID)
	assert.Equal(t, result.Documents[0].DocumentID, *events[1].RefDocumentID)

	// the successor's only event is its own ingestion
	assert.Equal(t, "claim-2", events[2].Document)
	assert.Equal(t, model.StatusIngested, events[2].Status)
	assert.Nil(t, events[2].RefDocumentID)
}

func TestNewVersionEventPair(t *testing.T) {
	gateway, _ := newGateway()
	realm := uuid.NewString()

	result, err := gateway.Submit(context.Background(), realm,
		inlineManifest("tx-1", "claim-1", "v1", "text/plain"), "")
	assert.NoError(t, err)
	docID := result.Documents[0].DocumentID

	m := inlineManifest("tx-2", "claim-1", "v2", "text/plain")
	m.Documents[0].Replaces = "claim-1"
	result, err = gateway.Submit(context.Background(), realm, m, "")
	assert.NoError(t, err)
	// a self-replacement reuses the document identity
	assert.Equal(t, docID, result.Documents[0].DocumentID)

	events, err := gateway.GetEvents(context.Background(), realm, "", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 3)

	// history stays on one document: ingestion, then the V/I pair
	statuses := make([]string, 0, len(events))
	for _, event := range events {
		assert.Equal(t, "claim-1", event.Document)
		statuses = append(statuses, event.Status)
	}
	assert.Equal(t, []string{model.StatusIngested, model.StatusNewVersion, model.StatusIngested}, statuses)
}

func TestGetEventsWindow(t *testing.T) {
	gateway, _ := newGateway()
	realm := uuid.NewString()

	_, err := gateway.Submit(context.Background(), realm,
		inlineManifest("tx-1", "claim-1", "v1", "text/plain"), "")
	assert.NoError(t, err)

	events, err := gateway.GetEvents(context.Background(), realm, "", time.Time{}, time.Now().Add(-time.Hour))
	assert.NoError(t, err)
	assert.Empty(t, events)

	events, err = gateway.GetEvents(context.Background(), realm, "", time.Now().Add(-time.Hour), time.Time{})
	assert.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGetEventsEmptyRealm(t *testing.T) {
	gateway, _ := newGateway()

	events, err := gateway.GetEvents(context.Background(), uuid.NewString(), "", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Empty(t, events)
}
