package service

import (
	"context"
	"fmt"
	"io"

	"github.com/docriver/gateway/internal/blob"
	"github.com/docriver/gateway/internal/cache"
	"github.com/docriver/gateway/internal/errs"
	"github.com/sirupsen/logrus"
)

// GetDocument streams back the latest version of an active document. The
// caller closes the returned reader.
func (g *Gateway) GetDocument(ctx context.Context, realm, name, bearer string) (io.ReadCloser, string, error) {
	if _, err := g.auth.AuthorizeGetDocument(realm, name, bearer); err != nil {
		return nil, "", err
	}

	location, mimeType, err := g.resolveLocation(ctx, realm, name)
	if err != nil {
		return nil, "", err
	}
	if location == "" {
		return nil, "", errs.Documentf("Document not found")
	}

	bucket, key, err := blob.ParseLocation(location)
	if err != nil {
		return nil, "", err
	}
	// the blob store is bound to one bucket; a location persisted under a
	// different bucket must not silently resolve against the bound one
	if bucket != g.bucket {
		return nil, "", fmt.Errorf("document %s/%s is stored in bucket %q, not the configured %q", realm, name, bucket, g.bucket)
	}
	r, err := g.blob.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return r, mimeType, nil
}

// resolveLocation consults the cache before the lifecycle store. Cache
// failures degrade to a store lookup, never to an error.
func (g *Gateway) resolveLocation(ctx context.Context, realm, name string) (string, string, error) {
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, realm, name)
		if err != nil {
			logrus.Warnf("location cache lookup failed for %s/%s: %v", realm, name, err)
		} else if cached != nil {
			return cached.Location, cached.MimeType, nil
		}
	}

	location, mimeType, err := g.store.GetDocumentLocation(ctx, realm, name)
	if err != nil {
		return "", "", err
	}

	if g.cache != nil && location != "" {
		if err := g.cache.Set(ctx, realm, name, &cache.Location{Location: location, MimeType: mimeType}); err != nil {
			logrus.Warnf("location cache write failed for %s/%s: %v", realm, name, err)
		}
	}
	return location, mimeType, nil
}
