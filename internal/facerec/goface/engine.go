package goface

import (
	"fmt"
	"image"

	"github.com/Kagami/go-face"

	"github.com/facegate/facegate/internal/model"
)

// Internal adapter interface to enable mocking without dlib models.
type recognizerAPI interface {
	Recognize(imgData []byte) ([]face.Face, error)
	Close()
}

var _ model.FaceEngine = (*Engine)(nil)

// Engine adapts a go-face recognizer to the model.FaceEngine
// interface. Input photos must be JPEG-encoded.
type Engine struct {
	rec recognizerAPI
}

// NewEngine creates an Engine backed by dlib models loaded from
// modelsDir (shape predictor, resnet descriptor and cnn detector
// files, as shipped with go-face).
func NewEngine(modelsDir string) (*Engine, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face recognition models: %w", err)
	}
	return &Engine{rec: rec}, nil
}

// NewEngineWithAPI allows injecting a mockable recognizer (used in tests).
func NewEngineWithAPI(rec recognizerAPI) *Engine {
	return &Engine{rec: rec}
}

// DetectFaces returns the bounding region of each detected face, in
// detection order. An empty slice means no face was found.
func (e *Engine) DetectFaces(photo []byte) ([]image.Rectangle, error) {
	faces, err := e.rec.Recognize(photo)
	if err != nil {
		return nil, fmt.Errorf("failed to detect faces: %w", err)
	}

	regions := make([]image.Rectangle, 0, len(faces))
	for _, f := range faces {
		regions = append(regions, f.Rectangle)
	}
	return regions, nil
}

// DescribeFaces returns one descriptor per detected face, in the same
// order as detection.
func (e *Engine) DescribeFaces(photo []byte) ([]model.Descriptor, error) {
	faces, err := e.rec.Recognize(photo)
	if err != nil {
		return nil, fmt.Errorf("failed to compute face descriptors: %w", err)
	}

	descriptors := make([]model.Descriptor, 0, len(faces))
	for _, f := range faces {
		descriptors = append(descriptors, model.Descriptor(f.Descriptor))
	}
	return descriptors, nil
}

// Close releases the underlying dlib recognizer.
func (e *Engine) Close() {
	e.rec.Close()
}
