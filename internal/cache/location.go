package cache

import "context"

// Location is the cached resolution of a document name to its latest active
// version.
type Location struct {
	Location string `json:"location"`
	MimeType string `json:"mimeType"`
}

// LocationCache speeds up the document read path. A miss returns (nil, nil).
type LocationCache interface {
	Get(ctx context.Context, realm, name string) (*Location, error)
	Set(ctx context.Context, realm, name string, location *Location) error
	// Delete invalidates a name after a write that changes its resolution.
	Delete(ctx context.Context, realm, name string) error
}
