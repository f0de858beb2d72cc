package file

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// MinIOStore implements BlobStore over an object store bucket. Selected by
// KHANCLOUD_STORAGE_DRIVER=minio; static serving of uploads is unavailable
// with this driver.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an object-store backed blob store.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

func (s *MinIOStore) Store(ctx context.Context, content io.Reader, originalName string) (StoredBlob, error) {
	name := generateBlobName(originalName)

	info, err := s.client.PutObject(ctx, s.bucket, name, content, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return StoredBlob{}, fmt.Errorf("store object: %w", err)
	}

	return StoredBlob{Name: name, Path: name, Size: info.Size}, nil
}

func (s *MinIOStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	return object, nil
}

func (s *MinIOStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrBlobNotFound
		}
		return fmt.Errorf("stat object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
