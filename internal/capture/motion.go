package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur on the downscaled frame.
	GaussianBlurSize = 11
	// DiffThreshold is the binary threshold for difference detection.
	DiffThreshold = 25
	// AnalysisWidth is the width frames are downscaled to before differencing.
	AnalysisWidth = 160
)

// Motion is the result of comparing a frame with the previous one.
type Motion struct {
	Moving bool
	// Changed is the percentage of pixels that changed.
	Changed float64
}

// MotionDetector detects motion between consecutive video frames using frame
// differencing on a blurred, downscaled grayscale copy.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a new MotionDetector with the given threshold, the
// percentage of pixels that must change to count as motion.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame only sets the
// baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) Motion {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Motion{}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	h := gray.Rows() * AnalysisWidth / gray.Cols()
	if h < 1 {
		h = 1
	}
	gocv.Resize(gray, &small, image.Point{X: AnalysisWidth, Y: h}, 0, 0, gocv.InterpolationArea)
	gocv.GaussianBlur(small, &small, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized || m.prevGray.Rows() != small.Rows() || m.prevGray.Cols() != small.Cols() {
		small.CopyTo(&m.prevGray)
		m.initialized = true
		return Motion{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(small, m.prevGray, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0
	small.CopyTo(&m.prevGray)

	return Motion{Moving: changed > m.threshold, Changed: changed}
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
