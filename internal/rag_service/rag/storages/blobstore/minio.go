package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/pkg/logger"
)

// MinioStore persists original document files in a MinIO bucket, keyed by
// blob key.
type MinioStore struct {
	log    *logger.Logger
	client *minio.Client
	bucket string
}

// NewMinioStore creates a MinioStore over the shared MinIO client.
func NewMinioStore(client *minio.Client, bucket string) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is not initialized")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is empty")
	}
	return &MinioStore{
		log:    logger.New("blob-store"),
		client: client,
		bucket: bucket,
	}, nil
}

// Upload stores the object under the given key.
func (s *MinioStore) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// Download returns the full contents of the object.
func (s *MinioStore) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.log.Info(fmt.Sprintf("created bucket %s", s.bucket))
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("blob store health check failed: %w", err)
	}
	return nil
}

var _ interfaces.BlobStore = (*MinioStore)(nil)
