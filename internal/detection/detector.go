// Package detection talks to the hosted plastic-detection model.
package detection

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("detection client not configured")
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")
	ErrInvalidImage  = errors.New("unsupported or corrupt image")
)

// Detector submits one image and returns what the model found in it.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*Result, error)
}

// Prediction is a single detected object.
type Prediction struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Confidence  float64 `json:"confidence"`
	Class       string  `json:"class"`
	ClassID     int     `json:"class_id"`
	DetectionID string  `json:"detection_id,omitempty"`
}

type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Result struct {
	Predictions []Prediction `json:"predictions"`
	Image       ImageInfo    `json:"image"`

	// Prepared is the normalized JPEG that was sent to the model.
	Prepared []byte `json:"-"`
}

// RemoteError is a non-2xx answer from the inference endpoint.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("detection request failed: status=%d body=%s", e.StatusCode, e.Body)
}
