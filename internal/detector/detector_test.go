package detector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/headshaker/internal/landmark"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testMat() gocv.Mat {
	return gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
}

func poseOnly(ts time.Time) *landmark.Frame {
	points := landmark.NeutralFrame(ts).Points()
	delete(points, landmark.LeftEyebrow)
	delete(points, landmark.RightEyebrow)
	delete(points, landmark.LeftEyeLid)
	delete(points, landmark.RightEyeLid)
	return landmark.NewFrame(ts, points)
}

func faceOnly(ts time.Time) *landmark.Frame {
	return landmark.NewFrame(ts, map[landmark.Name]landmark.Point3D{
		landmark.NoseTip:      {X: 321, Y: 241},
		landmark.LeftEyebrow:  {X: 280, Y: 140},
		landmark.RightEyebrow: {X: 360, Y: 140},
		landmark.LeftEyeLid:   {X: 280, Y: 195},
		landmark.RightEyeLid:  {X: 360, Y: 195},
	})
}

func waitResult(t *testing.T, a *Analyzer) landmark.Sample {
	t.Helper()
	select {
	case r := <-a.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for analysis")
		return landmark.Sample{}
	}
}

func waitIdle(t *testing.T, a *Analyzer) {
	t.Helper()
	require.Eventually(t, func() bool { return !a.Busy() }, 2*time.Second, time.Millisecond)
}

func TestAnalyzer_MergesPoseAndFace(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()
	pose.SetFrame(poseOnly(time.Now()))
	face.SetFrame(faceOnly(time.Now()))
	a := NewAnalyzer(pose, face)
	defer a.Close()

	require.True(t, a.Submit(testMat(), t0))
	r := waitResult(t, a)

	assert.Equal(t, t0, r.Captured)
	require.NotNil(t, r.Frame)
	assert.Equal(t, t0, r.Frame.Timestamp, "frames carry the capture time")
	assert.True(t, r.Frame.Has(landmark.LeftEye, landmark.RightShoulder, landmark.LeftEyebrow))

	nose, _ := r.Frame.Point(landmark.NoseTip)
	assert.Equal(t, 321.0, nose.X, "face mesh wins on conflicts")

	assert.True(t, r.Frame.Has(landmark.LeftEyeLid, landmark.RightEyeLid))
}

func TestAnalyzer_FaceRunsAfterPose(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()

	var mu sync.Mutex
	var order []string
	pose.OnDetect = func() {
		mu.Lock()
		order = append(order, "pose")
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	face.OnDetect = func() {
		mu.Lock()
		order = append(order, "face")
		mu.Unlock()
	}

	a := NewAnalyzer(pose, face)
	defer a.Close()

	for i := 0; i < 3; i++ {
		require.True(t, a.Submit(testMat(), t0.Add(time.Duration(i)*time.Second)))
		waitResult(t, a)
		waitIdle(t, a)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pose", "face", "pose", "face", "pose", "face"}, order)
}

func TestAnalyzer_DropsWhileBusy(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()
	pose.SetFrame(poseOnly(t0))
	pose.Block()
	a := NewAnalyzer(pose, face)
	defer a.Close()

	require.True(t, a.Submit(testMat(), t0))
	require.Eventually(t, func() bool { return pose.Calls() == 1 }, 2*time.Second, time.Millisecond)

	for i := 0; i < 5; i++ {
		assert.False(t, a.Submit(testMat(), t0.Add(time.Duration(i+1)*time.Millisecond)))
	}
	assert.Equal(t, uint64(5), a.Dropped())

	pose.Release()
	r := waitResult(t, a)
	assert.Equal(t, t0, r.Captured)
	waitIdle(t, a)

	assert.Equal(t, 1, pose.Calls())
	assert.Equal(t, 1, face.Calls())

	require.True(t, a.Submit(testMat(), t0.Add(time.Second)))
	assert.Equal(t, t0.Add(time.Second), waitResult(t, a).Captured)
}

func TestAnalyzer_KeepsLatestResult(t *testing.T) {
	a := NewAnalyzer(NewMockDetector(), NewMockDetector())
	defer a.Close()

	require.True(t, a.Submit(testMat(), t0))
	waitIdle(t, a)
	require.True(t, a.Submit(testMat(), t0.Add(time.Second)))
	waitIdle(t, a)

	assert.Equal(t, t0.Add(time.Second), waitResult(t, a).Captured)
	select {
	case r := <-a.results:
		t.Fatalf("unexpected stale result %v", r.Captured)
	default:
	}
}

func TestAnalyzer_ErrorsAreNoDetection(t *testing.T) {
	t.Run("pose fails", func(t *testing.T) {
		pose, face := NewMockDetector(), NewMockDetector()
		pose.SetError(errors.New("model crashed"))
		face.SetFrame(faceOnly(t0))
		a := NewAnalyzer(pose, face)
		defer a.Close()

		require.True(t, a.Submit(testMat(), t0))
		r := waitResult(t, a)

		require.NotNil(t, r.Frame)
		assert.False(t, r.Frame.Has(landmark.LeftEye))
		assert.True(t, r.Frame.Has(landmark.LeftEyebrow))
		assert.Equal(t, 1, face.Calls(), "face still runs after a pose failure")
	})

	t.Run("both fail", func(t *testing.T) {
		pose, face := NewMockDetector(), NewMockDetector()
		pose.SetError(errors.New("boom"))
		face.SetError(errors.New("boom"))
		a := NewAnalyzer(pose, face)
		defer a.Close()

		require.True(t, a.Submit(testMat(), t0))
		r := waitResult(t, a)
		assert.Nil(t, r.Frame)
		assert.Equal(t, t0, r.Captured, "empty cycles keep their capture time")

		waitIdle(t, a)
		assert.True(t, a.Submit(testMat(), t0.Add(time.Second)), "a failure frees the analyzer")
	})
}

func TestAnalyzer_EmptyImage(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()
	a := NewAnalyzer(pose, face)
	defer a.Close()

	require.True(t, a.Submit(gocv.NewMat(), t0))
	waitIdle(t, a)

	assert.Zero(t, pose.Calls())
	assert.Zero(t, face.Calls())
	select {
	case <-a.results:
		t.Fatal("empty image must not produce a result")
	default:
	}
}

func TestAnalyzer_Close(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()
	a := NewAnalyzer(pose, face)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	assert.True(t, pose.Closed())
	assert.True(t, face.Closed())
	assert.False(t, a.Submit(testMat(), t0))

	_, ok := <-a.results
	assert.False(t, ok)
}

func TestToFrame(t *testing.T) {
	low := 0.1
	high := 0.9
	points := make([]jsonPoint, 33)
	points[PoseLeftEye] = jsonPoint{X: 0.25, Y: 0.5, Visibility: &high}
	points[PoseRightEye] = jsonPoint{X: 0.75, Y: 0.5, Z: 0.1}
	points[PoseLeftWrist] = jsonPoint{X: 0.1, Y: 0.9, Visibility: &low}

	f := toFrame(TaskPose, points, 640, 480, 0.5, t0)
	require.NotNil(t, f)

	left, ok := f.Point(landmark.LeftEye)
	require.True(t, ok)
	assert.Equal(t, landmark.Point3D{X: 160, Y: 240}, left)

	right, _ := f.Point(landmark.RightEye)
	assert.InDelta(t, 64, right.Z, 1e-9)

	assert.False(t, f.Has(landmark.LeftWrist), "low visibility points are dropped")

	assert.Nil(t, toFrame(TaskPose, nil, 640, 480, 0.5, t0))
	assert.Nil(t, toFrame(TaskFace, make([]jsonPoint, 1), 640, 480, 0.5, t0), "face indices out of range")
}

func TestParseResponse(t *testing.T) {
	f, err := parseResponse(TaskFace, []byte(`{"landmarks":[]}`), 640, 480, 0.5, t0)
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = parseResponse(TaskFace, []byte(`{"error":"no model"}`), 640, 480, 0.5, t0)
	assert.ErrorContains(t, err, "no model")

	_, err = parseResponse(TaskFace, []byte(`not json`), 640, 480, 0.5, t0)
	assert.Error(t, err)
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()
	mat := testMat()
	defer mat.Close()

	f, err := m.Detect(&mat)
	assert.NoError(t, err)
	assert.Nil(t, f)

	m.SetFrame(poseOnly(t0))
	f, err = m.Detect(&mat)
	assert.NoError(t, err)
	assert.NotNil(t, f)

	m.SetError(errors.New("detection failed"))
	_, err = m.Detect(&mat)
	assert.Error(t, err)
	assert.Equal(t, 3, m.Calls())

	assert.NoError(t, m.Close())
	assert.True(t, m.Closed())
}

func TestAnalyzer_Next(t *testing.T) {
	pose, face := NewMockDetector(), NewMockDetector()
	face.SetFrame(faceOnly(t0))
	a := NewAnalyzer(pose, face)

	var src landmark.Source = a

	require.True(t, a.Submit(testMat(), t0))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sample, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, t0, sample.Captured)
	require.NotNil(t, sample.Frame)
	assert.True(t, sample.Frame.Has(landmark.NoseTip))

	waitIdle(t, a)
	cancelled, stop := context.WithCancel(context.Background())
	stop()
	_, err = src.Next(cancelled)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, src.Close())
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
