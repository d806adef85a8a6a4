package model

import "gorm.io/gorm"

// Reference links a document version to an external resource. Supplied at
// transaction level (attached to every version the transaction creates) or
// per document.
type Reference struct {
	gorm.Model
	ResourceType      string `gorm:"not null"`
	ResourceID        string `gorm:"not null"`
	Description       string
	DocumentVersionID uint `gorm:"not null;index"`
}

// ReferenceProperty is one key/value pair of a reference's property bag.
type ReferenceProperty struct {
	gorm.Model
	ReferenceID uint   `gorm:"not null;index"`
	Key         string `gorm:"column:key_name;not null"`
	Value       string
}
