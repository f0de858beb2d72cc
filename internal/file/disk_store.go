package file

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DiskStore writes blobs to a local directory. Generated names combine a
// millisecond timestamp with a random disambiguator so concurrent uploads
// cannot collide without any locking.
type DiskStore struct {
	root string
}

// NewDiskStore creates the storage root if absent and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Root returns the storage root directory.
func (s *DiskStore) Root() string {
	return s.root
}

// Store writes the content to a uniquely named file and reports the bytes
// actually written. A partially written file is removed on copy failure.
func (s *DiskStore) Store(ctx context.Context, content io.Reader, originalName string) (StoredBlob, error) {
	if err := ctx.Err(); err != nil {
		return StoredBlob{}, err
	}

	name := generateBlobName(originalName)
	path := filepath.Join(s.root, name)

	dst, err := os.Create(path)
	if err != nil {
		return StoredBlob{}, fmt.Errorf("create blob file: %w", err)
	}

	size, err := io.Copy(dst, content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return StoredBlob{}, fmt.Errorf("write blob content: %w", err)
	}

	return StoredBlob{Name: name, Path: path, Size: size}, nil
}

// Open returns a reader for the blob at path.
func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob at path. A missing file maps to ErrBlobNotFound
// so the caller can decide whether the absence is fatal.
func (s *DiskStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// generateBlobName produces "<unix-millis>-<9-digit random><ext>". The
// random component makes same-millisecond collisions negligible.
func generateBlobName(originalName string) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// without entropy, same-millisecond uploads could collide
		panic("blob name entropy unavailable: " + err.Error())
	}
	suffix := binary.BigEndian.Uint64(buf[:]) % 1_000_000_000

	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), suffix, ext)
}
