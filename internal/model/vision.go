package model

import (
	"context"
	"image"
)

// DescriptorSize is the length of a face descriptor vector.
const DescriptorSize = 128

// Descriptor is a fixed-size numeric vector representing a detected
// face, used for similarity comparison. It is derived on demand from
// photo bytes and never persisted.
type Descriptor [DescriptorSize]float32

// FaceEngine extracts face regions and descriptors from an encoded
// (JPEG) photo. Both methods return results in detection order; an
// empty slice means no face was detected.
type FaceEngine interface {
	DetectFaces(photo []byte) ([]image.Rectangle, error)
	DescribeFaces(photo []byte) ([]Descriptor, error)
}

// FrameSource provides frames from a camera device. ReadFrame returns
// one encoded (JPEG) frame, optionally mirrored for preview display.
type FrameSource interface {
	ReadFrame(ctx context.Context, mirror bool) ([]byte, error)
	Release() error
}
