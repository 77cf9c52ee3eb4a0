package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/facegate/facegate/internal/model"
)

var _ model.BlobStore = (*BlobStore)(nil)

// BlobStore is a testify mock of model.BlobStore.
type BlobStore struct {
	mock.Mock
}

func (m *BlobStore) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *BlobStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *BlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
