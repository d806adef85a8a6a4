// Package blob abstracts the object store holding document bytes.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Store is the object-store surface the gateway needs. Implementations must
// be safe for concurrent use.
type Store interface {
	// Put writes one object. Tags and metadata are attached verbatim.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, tags, metadata map[string]string) error
	// Get opens one object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Ping checks reachability of the backing store.
	Ping(ctx context.Context) error
}

// ObjectKey builds the object key for one document version. The version
// stamp keeps keys for successive versions of the same name distinct.
func ObjectKey(realm, name string, version int64, ext string) string {
	return fmt.Sprintf("%s/%s-%d%s", realm, name, version, ext)
}

// Location formats the persisted location URL of an object.
func Location(bucket, key string) string {
	return fmt.Sprintf("minio:%s:%s", bucket, key)
}

// ParseLocation splits a persisted location URL into bucket and key.
func ParseLocation(location string) (bucket, key string, err error) {
	parts := strings.SplitN(location, ":", 3)
	if len(parts) != 3 || parts[0] != "minio" {
		return "", "", fmt.Errorf("invalid object location: %s", location)
	}
	return parts[1], parts[2], nil
}
