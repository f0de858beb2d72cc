package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanbek/khancloud/internal/config"
	"github.com/khanbek/khancloud/internal/file"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const bucketSetupTimeout = 10 * time.Second

// NewObjectStore connects to the object store, makes sure the configured
// bucket exists, and returns a blob store bound to it. Used only when the
// minio storage driver is selected.
func NewObjectStore(ctx context.Context, cfg config.MinIOConfig) (*file.MinIOStore, error) {
	client, err := minio.New(withDefaultPort(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, bucketSetupTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("probe bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return file.NewMinIOStore(client, cfg.Bucket), nil
}

// withDefaultPort appends the standard MinIO API port when the endpoint
// carries none.
func withDefaultPort(endpoint string) string {
	if strings.Contains(endpoint, ":") {
		return endpoint
	}
	return endpoint + ":9000"
}
