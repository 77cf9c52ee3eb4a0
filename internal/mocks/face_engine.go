package mocks

import (
	"image"

	"github.com/stretchr/testify/mock"

	"github.com/facegate/facegate/internal/model"
)

var _ model.FaceEngine = (*FaceEngine)(nil)

// FaceEngine is a testify mock of model.FaceEngine.
type FaceEngine struct {
	mock.Mock
}

func (m *FaceEngine) DetectFaces(photo []byte) ([]image.Rectangle, error) {
	args := m.Called(photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]image.Rectangle), args.Error(1)
}

func (m *FaceEngine) DescribeFaces(photo []byte) ([]model.Descriptor, error) {
	args := m.Called(photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Descriptor), args.Error(1)
}
