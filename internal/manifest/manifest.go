// Package manifest holds the wire form of a submission or deletion request
// and the result envelope echoed back to the caller.
package manifest

import (
	"regexp"
	"strings"

	"github.com/docriver/gateway/internal/errs"
)

var (
	txPattern   = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9_/.\-]+$`)
)

// Manifest is the client-supplied description of one transaction. Fields
// prefixed dr: are stamped by the gateway and echoed in the result.
type Manifest struct {
	Tx            string       `json:"tx"`
	Authorization string       `json:"authorization,omitempty"`
	References    []Reference  `json:"references,omitempty"`
	Documents     []*Document  `json:"documents"`

	Realm     string `json:"dr:realm,omitempty"`
	Principal string `json:"dr:principal,omitempty"`
	TxID      uint   `json:"dr:txId,omitempty"`
}

// Document is one entry of a manifest. Absence of a content block means the
// entry is a pure reference to an already-ingested document.
type Document struct {
	Name       string            `json:"document"`
	Type       string            `json:"type,omitempty"`
	Replaces   string            `json:"replaces,omitempty"`
	Content    *Content          `json:"content,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	References []Reference       `json:"references,omitempty"`

	DocumentID uint  `json:"dr:documentId,omitempty"`
	VersionID  uint  `json:"dr:documentVersionId,omitempty"`
	Version    int64 `json:"dr:version,omitempty"`

	// StageFile is the staged copy of the document bytes, set while the
	// submission is in flight.
	StageFile string `json:"-"`
}

// Content carries the document bytes inline or as a path into the realm's
// shared raw-file area.
type Content struct {
	MimeType string `json:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Inline   string `json:"inline,omitempty"`
	Path     string `json:"path,omitempty"`
}

// Reference links the submission to an external resource.
type Reference struct {
	ResourceType string            `json:"resourceType"`
	ResourceID   string            `json:"resourceId"`
	Description  string            `json:"description,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Op is the operation a document entry resolves to. The wire form overloads
// the replaces field: replacing a different name supersedes that document,
// replacing the own name creates a new version of the same document.
type Op int

const (
	// OpIngest creates a brand new document with content.
	OpIngest Op = iota
	// OpNewVersion is a self-replacement: a new version under the same
	// document identity.
	OpNewVersion
	// OpReplace supersedes a different, existing document.
	OpReplace
	// OpReference attaches the transaction to an existing document without
	// new content.
	OpReference
)

// HasContent reports whether the entry carries bytes to ingest.
func (d *Document) HasContent() bool {
	return d.Content != nil && (d.Content.Inline != "" || d.Content.Path != "")
}

// Op resolves the wire form into the explicit operation variant.
func (d *Document) Op() Op {
	if !d.HasContent() {
		return OpReference
	}
	switch d.Replaces {
	case "":
		return OpIngest
	case d.Name:
		return OpNewVersion
	default:
		return OpReplace
	}
}

// Validate checks the manifest shape: tx id and document names against their
// patterns, at least one document, and content paths that stay inside the
// raw-file area.
func (m *Manifest) Validate() error {
	if m.Tx == "" || len(m.Documents) == 0 {
		return errs.Validationf("Basic validation error")
	}
	if !txPattern.MatchString(m.Tx) {
		return errs.Validationf("tx is not valid")
	}

	for _, document := range m.Documents {
		if document.Name == "" || !namePattern.MatchString(document.Name) {
			return errs.Validationf("document not found or document is not valid")
		}
		if document.Content != nil && document.Content.Path != "" {
			if !namePattern.MatchString(document.Content.Path) {
				return errs.Validationf("path is not valid")
			}
			if strings.Contains(document.Content.Path, "..") {
				return errs.Validationf("path is not valid - contains ..")
			}
		}
	}
	return nil
}

// Result is the envelope echoed back on success.
type Result struct {
	Status string `json:"dr:status"`
	Took   int64  `json:"dr:took"`
	*Manifest
}

// NewResult builds the result envelope, redacting the bearer token and any
// inline content from the echoed manifest.
func NewResult(m *Manifest, took int64) *Result {
	if m.Authorization != "" {
		m.Authorization = "<snipped>"
	}
	for _, document := range m.Documents {
		if document.Content != nil && document.Content.Inline != "" {
			document.Content.Inline = "<snipped>"
		}
	}
	return &Result{
		Status:   "ok",
		Took:     took,
		Manifest: m,
	}
}
