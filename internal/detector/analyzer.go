package detector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/headshaker/internal/landmark"
)

// Analyzer chains pose then face inference on each submitted frame and merges the
// landmarks into one sample, face mesh points winning on conflict. At most one
// frame is in flight; frames submitted while busy are dropped. Results are kept
// latest-only, so a slow consumer sees the newest analysis. It is the live
// landmark.Source.
type Analyzer struct {
	pose Detector
	face Detector

	busy    atomic.Bool
	dropped atomic.Uint64

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	results chan landmark.Sample

	closeOnce sync.Once
}

// NewAnalyzer creates an analyzer. Either detector may be nil to skip that stage.
func NewAnalyzer(pose, face Detector) *Analyzer {
	return &Analyzer{
		pose:    pose,
		face:    face,
		results: make(chan landmark.Sample, 1),
	}
}

// Submit hands mat to the analyzer, which takes ownership and closes it. It
// reports false when the frame was dropped because an analysis is in flight.
func (a *Analyzer) Submit(mat gocv.Mat, captured time.Time) bool {
	a.mu.Lock()
	if a.closed || !a.busy.CompareAndSwap(false, true) {
		a.mu.Unlock()
		mat.Close()
		a.dropped.Add(1)
		return false
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		defer mat.Close()

		if mat.Empty() {
			return
		}

		a.publish(a.analyze(&mat, captured))
	}()
	return true
}

// analyze runs the face stage only after the pose stage has finished with the
// same frame.
func (a *Analyzer) analyze(mat *gocv.Mat, captured time.Time) landmark.Sample {
	pose := a.detect(a.pose, TaskPose, mat, captured)
	face := a.detect(a.face, TaskFace, mat, captured)
	return landmark.Sample{
		Captured: captured,
		Frame:    pose.Merge(face),
	}
}

func (a *Analyzer) detect(d Detector, task Task, mat *gocv.Mat, captured time.Time) *landmark.Frame {
	if d == nil {
		return nil
	}
	frame, err := d.Detect(mat)
	if err != nil {
		log.Warn().Err(err).Str("task", string(task)).Msg("inference failed, treating frame as empty")
		return nil
	}
	if frame == nil {
		return nil
	}
	return landmark.NewFrame(captured, frame.Points())
}

// publish replaces any unread result with r.
func (a *Analyzer) publish(r landmark.Sample) {
	for {
		select {
		case a.results <- r:
			return
		default:
		}
		select {
		case <-a.results:
		default:
		}
	}
}

// Busy reports whether an analysis is in flight.
func (a *Analyzer) Busy() bool {
	return a.busy.Load()
}

// Dropped returns how many frames were dropped.
func (a *Analyzer) Dropped() uint64 {
	return a.dropped.Load()
}

// Next waits for the next analysis. It returns ErrClosed once the analyzer was
// closed and drained.
func (a *Analyzer) Next(ctx context.Context) (landmark.Sample, error) {
	select {
	case <-ctx.Done():
		return landmark.Sample{}, ctx.Err()
	case r, ok := <-a.results:
		if !ok {
			return landmark.Sample{}, ErrClosed
		}
		return r, nil
	}
}

// Close waits for the in-flight analysis, closes the results channel and the
// detectors.
func (a *Analyzer) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		a.wg.Wait()
		close(a.results)

		var errs []error
		if a.pose != nil {
			errs = append(errs, a.pose.Close())
		}
		if a.face != nil {
			errs = append(errs, a.face.Close())
		}
		err = errors.Join(errs...)
	})
	return err
}
