package model

import (
	"context"
	"io"
)

// BlobStore stores raw photo bytes keyed by an opaque identifier.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
