package blob

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio stores objects in one bucket of a minio/S3-compatible endpoint.
type Minio struct {
	client *minio.Client
	bucket string
}

var _ Store = (*Minio)(nil)

func NewMinio(endpoint, accessKey, secretKey string, secure bool, bucket string) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	return &Minio{
		client: client,
		bucket: bucket,
	}, nil
}

func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, tags, metadata map[string]string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserTags:     tags,
		UserMetadata: metadata,
	})
	return err
}

func (m *Minio) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
}

func (m *Minio) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
