package model

import "gorm.io/gorm"

// Document is the identity row for a named document within a realm. Created
// the first time a name is ingested with content and reused by replacement,
// new-version, reference and delete operations against the same name.
//
// The uniqueness index on (realm, document) closes the race where two
// concurrent submissions of the same new name both observe "not found": the
// second insert fails and is surfaced as "document already exists".
type Document struct {
	gorm.Model
	Name  string `gorm:"column:document;not null;uniqueIndex:idx_doc_realm_name"`
	Realm string `gorm:"not null;uniqueIndex:idx_doc_realm_name"`
}

// DocumentVersion is one successful content ingestion. Append-only and
// immutable; self-replacement creates a new row under the same document id.
type DocumentVersion struct {
	gorm.Model
	DocumentID    uint   `gorm:"not null;index"`
	TransactionID uint   `gorm:"not null;index"`
	Location      string `gorm:"column:location_url;not null"`
	Type          string
	MimeType      string
}

// DocumentEvent is the append-only audit trail for a document. History is
// reconstructed by scanning rows in insertion order.
type DocumentEvent struct {
	gorm.Model
	Description      string `gorm:"not null"`
	Status           string `gorm:"not null;index"`
	DocumentID       uint   `gorm:"not null;index"`
	RefDocumentID    *uint
	RefTransactionID *uint
}
