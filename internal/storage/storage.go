package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the object-storage collaborator. Presigned credentials
// are scoped to a single key, verb and declared content type; the vault
// never streams upload bytes through the server.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, filename string, expiry time.Duration) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}
