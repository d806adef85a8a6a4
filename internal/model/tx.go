package model

import "gorm.io/gorm"

// Transaction types accepted by the gateway.
const (
	TxTypeSubmit = "submit"
	TxTypeDelete = "delete"
)

// Document status codes. A document's current status is the status of its
// most recent DocumentEvent row.
const (
	StatusIngested   = "I"
	StatusReplaced   = "R"
	StatusNewVersion = "V"
	StatusReference  = "J"
	StatusDeleted    = "D"
)

// Event descriptions recorded alongside the status codes.
const (
	EventIngestion   = "INGESTION"
	EventReference   = "REFERENCE"
	EventReplacement = "REPLACEMENT"
	EventNewVersion  = "NEW_VERSION"
	EventDelete      = "DELETE"
)

// Transaction is one accepted submission or deletion request. Immutable once
// created; the caller-supplied tx id is unique per realm only by convention.
type Transaction struct {
	gorm.Model
	Tx        string `gorm:"not null;index:idx_tx_realm"`
	TxType    string `gorm:"not null"`
	Realm     string `gorm:"not null;index:idx_tx_realm"`
	Principal string
}

// TransactionEvent is the append-only audit row written once per accepted
// transaction.
type TransactionEvent struct {
	gorm.Model
	Event         string `gorm:"not null"`
	Status        string `gorm:"not null"`
	TransactionID uint   `gorm:"not null;index"`
}
