package file

import (
	"time"

	"github.com/google/uuid"
)

// StoredFile is the metadata record describing an uploaded blob. The record
// and the on-disk bytes are independently-failable resources; the service
// keeps them consistent on the happy path only (see Service).
type StoredFile struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	OwnerID      uuid.UUID `json:"owner_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Stats aggregates counts from the credential and metadata stores.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}
