package landmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_NilIsEmpty(t *testing.T) {
	var f *Frame

	_, ok := f.Point(NoseTip)
	assert.False(t, ok)
	assert.False(t, f.Has(NoseTip))
	assert.Equal(t, 0, f.Len())
	assert.Nil(t, f.Names())
	assert.Nil(t, f.Points())
}

func TestFrame_CopiesInput(t *testing.T) {
	points := map[Name]Point3D{NoseTip: {X: 1, Y: 2, Z: 3}}
	f := NewFrame(time.Unix(10, 0), points)

	points[NoseTip] = Point3D{}
	delete(points, NoseTip)

	p, ok := f.Point(NoseTip)
	require.True(t, ok)
	assert.Equal(t, Point3D{X: 1, Y: 2, Z: 3}, p)

	out := f.Points()
	out[NoseTip] = Point3D{}
	p, _ = f.Point(NoseTip)
	assert.Equal(t, 1.0, p.X, "Points must return a copy")
}

func TestFrame_Has(t *testing.T) {
	f := NeutralFrame(time.Unix(0, 0))

	assert.True(t, f.Has(LeftEye, RightEye))
	assert.False(t, FaceFrame(time.Unix(0, 0), Point3D{}).Has(LeftEye, NoseTip))
}

func TestFrame_Merge(t *testing.T) {
	pose := NewFrame(time.Unix(1, 0), map[Name]Point3D{
		LeftEye:  {X: 1},
		RightEye: {X: 2},
	})
	face := NewFrame(time.Unix(2, 0), map[Name]Point3D{
		RightEye: {X: 20},
		NoseTip:  {X: 3},
	})

	merged := pose.Merge(face)

	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, time.Unix(2, 0), merged.Timestamp)
	p, _ := merged.Point(RightEye)
	assert.Equal(t, 20.0, p.X)
	assert.Equal(t, 2, pose.Len(), "merge must not mutate the receiver")

	var none *Frame
	assert.Same(t, face, none.Merge(face))
	assert.Same(t, pose, pose.Merge(nil))
}

func TestFixtures(t *testing.T) {
	ts := time.Unix(0, 0)

	t.Run("tilt left lowers the right eye", func(t *testing.T) {
		f := TiltLeftFrame(ts)
		l, _ := f.Point(LeftEye)
		r, _ := f.Point(RightEye)
		assert.Greater(t, r.Y-l.Y, 18.0)
	})

	t.Run("tilt right raises the right eye", func(t *testing.T) {
		f := TiltRightFrame(ts)
		l, _ := f.Point(LeftEye)
		r, _ := f.Point(RightEye)
		assert.Less(t, r.Y-l.Y, -18.0)
	})

	t.Run("shoulder shift moves up", func(t *testing.T) {
		f := ShoulderShiftedFrame(ts, 10, 0)
		l, _ := f.Point(LeftShoulder)
		assert.Equal(t, 390.0, l.Y)
	})

	t.Run("names are sorted", func(t *testing.T) {
		names := NeutralFrame(ts).Names()
		for i := 1; i < len(names); i++ {
			assert.Less(t, string(names[i-1]), string(names[i]))
		}
	})
}
