package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/facegate/facegate/internal/model"
)

var _ model.FrameSource = (*FrameSource)(nil)

// FrameSource is a testify mock of model.FrameSource.
type FrameSource struct {
	mock.Mock
}

func (m *FrameSource) ReadFrame(ctx context.Context, mirror bool) ([]byte, error) {
	args := m.Called(ctx, mirror)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *FrameSource) Release() error {
	args := m.Called()
	return args.Error(0)
}
