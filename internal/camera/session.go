package camera

import (
	"context"
	"fmt"

	"github.com/facegate/facegate/internal/logger"
	"github.com/facegate/facegate/internal/model"
)

// DefaultCaptureRetries is how many frames are attempted before a
// capture is abandoned.
const DefaultCaptureRetries = 3

// Session drives photo capture over a frame source. Captured photos
// are pre-filtered through face detection so that frames without a
// detectable face never reach enrollment or verification.
type Session struct {
	source  model.FrameSource
	faces   model.FaceEngine
	retries int
	logger  *logger.Logger
}

// NewSession creates a capture session. Non-positive retries falls
// back to DefaultCaptureRetries.
func NewSession(source model.FrameSource, faces model.FaceEngine, retries int, logger *logger.Logger) *Session {
	if retries <= 0 {
		retries = DefaultCaptureRetries
	}
	return &Session{
		source:  source,
		faces:   faces,
		retries: retries,
		logger:  logger,
	}
}

// CapturePhoto reads frames until one contains a detectable face, up
// to the configured number of attempts. Returns model.ErrNoUsableFrame
// when every attempt is exhausted.
func (s *Session) CapturePhoto(ctx context.Context) ([]byte, error) {
	for attempt := 1; attempt <= s.retries; attempt++ {
		frame, err := s.source.ReadFrame(ctx, false)
		if err != nil {
			s.logger.Error("Capture session: failed to read frame",
				"attempt", attempt,
				"error", err.Error())
			continue
		}

		regions, err := s.faces.DetectFaces(frame)
		if err != nil {
			s.logger.Error("Capture session: face detection failed",
				"attempt", attempt,
				"error", err.Error())
			continue
		}
		if len(regions) == 0 {
			s.logger.Info("Capture session: no face detected in captured frame",
				"attempt", attempt)
			continue
		}

		return frame, nil
	}

	return nil, fmt.Errorf("no face-containing frame after %d attempts: %w", s.retries, model.ErrNoUsableFrame)
}

// PreviewFrame returns a single best-effort frame for live display.
// The frame is never validated and never stored.
func (s *Session) PreviewFrame(ctx context.Context, mirror bool) ([]byte, error) {
	frame, err := s.source.ReadFrame(ctx, mirror)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview frame: %w", err)
	}
	return frame, nil
}

// Release releases the underlying frame source.
func (s *Session) Release() error {
	return s.source.Release()
}
