// Package service orchestrates the document transaction lifecycle: staging,
// authorization, content validation, metadata writes and object-store writes.
package service

import (
	"context"
	"time"

	"github.com/docriver/gateway/internal/auth"
	"github.com/docriver/gateway/internal/blob"
	"github.com/docriver/gateway/internal/cache"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/docriver/gateway/internal/queue"
	"github.com/docriver/gateway/internal/store"
	"github.com/docriver/gateway/internal/validate"
	"github.com/sirupsen/logrus"
)

// Options wires a Gateway. Store, Blob, Scanner and Auth are required; Cache
// and Queue are optional.
type Options struct {
	Store   store.Store
	Blob    blob.Store
	Scanner validate.Scanner
	Auth    *auth.Authorizer
	Cache   cache.LocationCache
	Queue   queue.Queue

	// Bucket names the object-store bucket recorded in location URLs.
	Bucket string
	// UntrustedMount is where per-transaction staging directories live.
	UntrustedMount string
	// RawMount is the shared raw-file area path-based content is read from.
	RawMount string
	// ScanMount is UntrustedMount as seen by the scanner.
	ScanMount string
}

// Gateway is the submission transaction orchestrator. Safe for concurrent
// use; each operation runs on its caller's goroutine against pooled
// collaborators.
type Gateway struct {
	store   store.Store
	blob    blob.Store
	scanner validate.Scanner
	auth    *auth.Authorizer
	cache   cache.LocationCache
	queue   queue.Queue

	bucket         string
	untrustedMount string
	rawMount       string
	scanMount      string
}

func NewGateway(opts Options) *Gateway {
	q := opts.Queue
	if q == nil {
		q = queue.NewNoop()
	}
	return &Gateway{
		store:          opts.Store,
		blob:           opts.Blob,
		scanner:        opts.Scanner,
		auth:           opts.Auth,
		cache:          opts.Cache,
		queue:          q,
		bucket:         opts.Bucket,
		untrustedMount: opts.UntrustedMount,
		rawMount:       opts.RawMount,
		scanMount:      opts.ScanMount,
	}
}

// invalidate drops cached locations for every name the transaction touched.
func (g *Gateway) invalidate(ctx context.Context, m *manifest.Manifest) {
	if g.cache == nil {
		return
	}
	for _, document := range m.Documents {
		if err := g.cache.Delete(ctx, m.Realm, document.Name); err != nil {
			logrus.Warnf("cache invalidation failed for %s/%s: %v", m.Realm, document.Name, err)
		}
		if document.Replaces != "" && document.Replaces != document.Name {
			if err := g.cache.Delete(ctx, m.Realm, document.Replaces); err != nil {
				logrus.Warnf("cache invalidation failed for %s/%s: %v", m.Realm, document.Replaces, err)
			}
		}
	}
}

// publish notifies downstream consumers of a committed transaction.
// Best-effort: failures are logged, never surfaced.
func (g *Gateway) publish(ctx context.Context, m *manifest.Manifest, txType string) {
	names := make([]string, 0, len(m.Documents))
	for _, document := range m.Documents {
		names = append(names, document.Name)
	}
	event := &queue.TxEvent{
		Tx:        m.Tx,
		TxID:      m.TxID,
		TxType:    txType,
		Realm:     m.Realm,
		Principal: m.Principal,
		Documents: names,
		Time:      time.Now().UnixMilli(),
	}
	if err := g.queue.Publish(ctx, event); err != nil {
		logrus.Warnf("publishing tx event for %s/%s failed: %v", m.Realm, m.Tx, err)
	}
}
