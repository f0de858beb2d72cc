package file

import "errors"

var (
	// ErrFileNotFound signals that no metadata record exists for the id.
	ErrFileNotFound = errors.New("file not found")
	// ErrBlobNotFound signals that the stored bytes are missing from the
	// storage backend. Callers treat it as non-fatal during removal.
	ErrBlobNotFound = errors.New("blob not found")
)
