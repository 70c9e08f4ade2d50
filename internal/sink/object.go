package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JonMunkholm/olistclean/internal/config"
	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/logging"
)

// NewObjectClient creates a client for an S3-compatible endpoint.
func NewObjectClient(cfg config.ObjectStoreConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return client, nil
}

// ObjectSink uploads each table to <bucket>/<prefix>/<name>.csv[.gz|.zst].
type ObjectSink struct {
	client      *minio.Client
	bucket      string
	prefix      string
	compression Compression
}

// NewObjectSink creates an ObjectSink.
func NewObjectSink(client *minio.Client, bucket, prefix string, c Compression) *ObjectSink {
	return &ObjectSink{client: client, bucket: bucket, prefix: prefix, compression: c}
}

// Key returns the object key a table is written to.
func (s *ObjectSink) Key(table string) string {
	return path.Join(s.prefix, FileName(table, s.compression))
}

// Prepare creates the bucket when it does not exist.
func (s *ObjectSink) Prepare(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Write uploads the encoded table, replacing any previous object.
func (s *ObjectSink) Write(ctx context.Context, t *core.Table) error {
	data, err := Encode(t, s.compression)
	if err != nil {
		return err
	}

	key := s.Key(t.Name)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: s.compression.ContentType(),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	logging.FromContext(ctx).Debug("table uploaded",
		"table", t.Name,
		"bucket", s.bucket,
		"key", key,
		"bytes", len(data),
	)
	return nil
}
