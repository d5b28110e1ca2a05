// Package storage provides object storage for rendered documents.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned when an operation is attempted without a key
var ErrEmptyKey = errors.New("storage key is required")

// ErrObjectNotFound is returned when no object is stored under the key
var ErrObjectNotFound = errors.New("storage object not found")

// ObjectStorage stores rendered invoice and credit note PDFs. Keys are
// opaque paths like "invoices/0001-00000042.pdf".
type ObjectStorage interface {
	// Upload writes an object
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Download reads an object back
	Download(ctx context.Context, key string) ([]byte, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists checks whether an object is stored under the key
	ObjectExists(ctx context.Context, key string) (bool, error)

	// DeleteObject removes an object
	DeleteObject(ctx context.Context, key string) error
}
