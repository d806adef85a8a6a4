package service

import (
	"context"
	"time"
)

// Event is the wire form of one document lifecycle event.
type Event struct {
	Time             time.Time `json:"time"`
	Document         string    `json:"document"`
	Status           string    `json:"status"`
	RefDocumentID    *uint     `json:"refDocumentId,omitempty"`
	RefTransactionID *uint     `json:"refTxId,omitempty"`
	Location         string    `json:"location,omitempty"`
	Type             string    `json:"type,omitempty"`
	MimeType         string    `json:"mimeType,omitempty"`
}

// GetEvents lists the realm's document events within the window, oldest
// first. Zero bounds are unbounded.
func (g *Gateway) GetEvents(ctx context.Context, realm, bearer string, from, to time.Time) ([]Event, error) {
	if _, err := g.auth.AuthorizeGetEvents(realm, bearer); err != nil {
		return nil, err
	}

	records, err := g.store.ListEvents(ctx, realm, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		events = append(events, Event{
			Time:             record.EventTime,
			Document:         record.Document,
			Status:           record.Status,
			RefDocumentID:    record.RefDocumentID,
			RefTransactionID: record.RefTransactionID,
			Location:         record.Location,
			Type:             record.Type,
			MimeType:         record.MimeType,
		})
	}
	return events, nil
}
