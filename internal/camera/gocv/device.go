package gocv

import (
	"context"
	"fmt"

	cv "gocv.io/x/gocv"

	"github.com/facegate/facegate/internal/model"
)

var _ model.FrameSource = (*Device)(nil)

// Device is a webcam frame source backed by OpenCV. Frames are
// returned JPEG-encoded.
type Device struct {
	cap *cv.VideoCapture
}

// Open probes device indexes 0..maxIndex in order and opens the first
// camera that responds, configured to the requested resolution.
func Open(maxIndex, width, height int) (*Device, error) {
	for i := 0; i <= maxIndex; i++ {
		cap, err := cv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if !cap.IsOpened() {
			_ = cap.Close()
			continue
		}
		cap.Set(cv.VideoCaptureFrameWidth, float64(width))
		cap.Set(cv.VideoCaptureFrameHeight, float64(height))
		return &Device{cap: cap}, nil
	}

	return nil, fmt.Errorf("no camera available on indexes 0..%d", maxIndex)
}

// ReadFrame grabs one frame, optionally mirrored horizontally, and
// returns its JPEG encoding.
func (d *Device) ReadFrame(ctx context.Context, mirror bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := cv.NewMat()
	defer mat.Close()

	if ok := d.cap.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("failed to read frame from camera")
	}

	if mirror {
		cv.Flip(mat, &mat, 1)
	}

	buf, err := cv.IMEncode(cv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Release closes the camera device.
func (d *Device) Release() error {
	if d.cap == nil {
		return nil
	}
	return d.cap.Close()
}
