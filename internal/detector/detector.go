// Package detector runs pose and face-mesh inference on camera frames.
package detector

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/headshaker/internal/landmark"
)

// ErrNotStarted is returned when the inference service is not available.
var ErrNotStarted = errors.New("detector not started")

// ErrClosed is returned by Analyzer.Next after Close.
var ErrClosed = errors.New("analyzer closed")

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the most
	// confident subject in image pixels. Returns nil when no subject is found.
	Detect(frame *gocv.Mat) (*landmark.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Task selects the model served by the inference service.
type Task string

const (
	TaskPose Task = "pose"
	TaskFace Task = "face"
)

// Config holds configuration options for detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
