package service

import (
	"context"
	"testing"

	"github.com/docriver/gateway/internal/cache"
	"github.com/docriver/gateway/internal/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// memCache is an in-process LocationCache recording its traffic.
type memCache struct {
	entries map[string]*cache.Location
	hits    int
	misses  int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*cache.Location{}}
}

func (m *memCache) Get(ctx context.Context, realm, name string) (*cache.Location, error) {
	if location, ok := m.entries[realm+"/"+name]; ok {
		m.hits++
		return location, nil
	}
	m.misses++
	return nil, nil
}

func (m *memCache) Set(ctx context.Context, realm, name string, location *cache.Location) error {
	m.entries[realm+"/"+name] = location
	return nil
}

func (m *memCache) Delete(ctx context.Context, realm, name string) error {
	delete(m.entries, realm+"/"+name)
	return nil
}

func TestGetDocumentNotFound(t *testing.T) {
	gateway, _ := newGateway()

	_, _, err := gateway.GetDocument(context.Background(), uuid.NewString(), "claim-404", "")
	var docErr *errs.DocumentError
	assert.ErrorAs(t, err, &docErr)
	assert.EqualError(t, err, "Document not found")
}

func TestGetDocumentForeignBucket(t *testing.T) {
	gateway, _ := newGateway()
	locations := newMemCache()
	gateway.cache = locations
	realm := uuid.NewString()

	// a location persisted under another bucket must not resolve against the
	// bound one
	err := locations.Set(context.Background(), realm, "claim-1",
		&cache.Location{Location: "minio:archive:" + realm + "/claim-1-1.pdf", MimeType: "application/pdf"})
	assert.NoError(t, err)

	_, _, err = gateway.GetDocument(context.Background(), realm, "claim-1", "")
	assert.ErrorContains(t, err, `stored in bucket "archive"`)
}

func TestGetDocumentCached(t *testing.T) {
	gateway, _ := newGateway()
	locations := newMemCache()
	gateway.cache = locations
	realm := uuid.NewString()

	_, err := gateway.Submit(context.Background(), realm,
		inlineManifest("tx-1", "claim-1", "v1", "text/plain"), "")
	assert.NoError(t, err)

	// first read misses and fills the cache, second read hits
	readDocument(t, gateway, realm, "claim-1")
	assert.Equal(t, 1, locations.misses)
	readDocument(t, gateway, realm, "claim-1")
	assert.Equal(t, 1, locations.hits)

	// a new version invalidates the cached location
	m := inlineManifest("tx-2", "claim-1", "v2", "text/plain")
	m.Documents[0].Replaces = "claim-1"
	_, err = gateway.Submit(context.Background(), realm, m, "")
	assert.NoError(t, err)

	data, _ := readDocument(t, gateway, realm, "claim-1")
	assert.Equal(t, "v2", string(data))
}
