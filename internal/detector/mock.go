package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/headshaker/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	frame  *landmark.Frame
	err    error
	gate   chan struct{}
	calls  int
	closed bool

	// OnDetect, if set, is called at the start of every Detect.
	OnDetect func()
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrame sets the frame that will be returned by Detect.
func (m *MockDetector) SetFrame(frame *landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = frame
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Block makes Detect wait until Release is called.
func (m *MockDetector) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release unblocks pending and future Detect calls.
func (m *MockDetector) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Detect returns the pre-configured frame or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*landmark.Frame, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	hook := m.OnDetect
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

// Close marks the mock as closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
