package file

import (
	"context"
	"io"
)

// StoredBlob describes where and how large a written blob ended up.
type StoredBlob struct {
	Name string
	Path string
	Size int64
}

// BlobStore abstracts the blob storage backend. DiskStore is the default;
// MinIOStore serves the object-store driver.
type BlobStore interface {
	// Store writes the content under a freshly generated collision-resistant
	// name derived from originalName's extension.
	Store(ctx context.Context, content io.Reader, originalName string) (StoredBlob, error)
	// Open returns a reader for the blob at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the blob at path, returning ErrBlobNotFound if absent.
	Delete(ctx context.Context, path string) error
}
