package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// metadataStore abstracts the file metadata persistence layer.
type metadataStore interface {
	Create(ctx context.Context, meta StoredFile) (StoredFile, error)
	List(ctx context.Context) ([]StoredFile, error)
	Get(ctx context.Context, id uuid.UUID) (StoredFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// userCounter reports how many users the credential store holds.
type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service coordinates blob writes and metadata records through the upload
// lifecycle. Blob and record are two independently-failable resources: no
// rollback or retry is attempted, and partial-failure states are logged and
// surfaced to the caller.
type Service struct {
	repo  metadataStore
	blobs BlobStore
	users userCounter
}

// NewService constructs a file lifecycle service.
func NewService(repo metadataStore, blobs BlobStore, users userCounter) *Service {
	return &Service{repo: repo, blobs: blobs, users: users}
}

// Upload stores the blob first, then persists its metadata record. If the
// metadata insert fails the already-written blob is left behind as an
// orphan; the inconsistency is logged and the error returned.
func (s *Service) Upload(ctx context.Context, content io.Reader, originalName string, ownerID uuid.UUID) (StoredFile, error) {
	blob, err := s.blobs.Store(ctx, content, originalName)
	if err != nil {
		return StoredFile{}, fmt.Errorf("store blob: %w", err)
	}

	meta := StoredFile{
		ID:           uuid.New(),
		Name:         blob.Name,
		Path:         blob.Path,
		OriginalName: originalName,
		Size:         blob.Size,
		OwnerID:      ownerID,
	}

	stored, err := s.repo.Create(ctx, meta)
	if err != nil {
		log.Printf("orphaned blob %s: metadata insert failed: %v", blob.Path, err)
		return StoredFile{}, fmt.Errorf("persist metadata: %w", err)
	}

	return stored, nil
}

// List returns all metadata records, most recent upload first.
func (s *Service) List(ctx context.Context) ([]StoredFile, error) {
	return s.repo.List(ctx)
}

// Download returns the metadata record and a reader over the stored bytes.
// A record whose blob has vanished surfaces ErrBlobNotFound; the
// inconsistency is logged, not healed.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (StoredFile, io.ReadCloser, error) {
	meta, err := s.repo.Get(ctx, id)
	if err != nil {
		return StoredFile{}, nil, err
	}

	content, err := s.blobs.Open(ctx, meta.Path)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			log.Printf("metadata %s references missing blob %s", meta.ID, meta.Path)
			return StoredFile{}, nil, ErrBlobNotFound
		}
		return StoredFile{}, nil, fmt.Errorf("open blob: %w", err)
	}

	return meta, content, nil
}

// Remove deletes the blob and then the metadata record. A blob already
// missing from storage is non-fatal: the record is still deleted so the
// record set converges.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	meta, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, meta.Path); err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("delete blob: %w", err)
		}
		log.Printf("blob %s already missing, removing metadata record anyway", meta.Path)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	return nil
}

// Stats aggregates user and file counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}

	files, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count files: %w", err)
	}

	return Stats{Users: users, Files: files}, nil
}
