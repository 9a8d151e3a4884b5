// Package landmark provides the per-frame body and face landmark snapshot shared by
// the gesture recognizer and the target tracker.
package landmark

import (
	"context"
	"sort"
	"time"
)

// Name identifies an anatomical landmark.
type Name string

// Landmarks produced by the pose and face-mesh analyzers. Pose and face positions are
// in image pixels (Y grows downward); NoseTip from an AR face source is in world meters.
const (
	LeftEye       Name = "left_eye"
	RightEye      Name = "right_eye"
	LeftEyebrow   Name = "left_eyebrow"
	RightEyebrow  Name = "right_eyebrow"
	LeftEyeLid    Name = "left_eye_lid"
	RightEyeLid   Name = "right_eye_lid"
	NoseTip       Name = "nose_tip"
	LeftShoulder  Name = "left_shoulder"
	RightShoulder Name = "right_shoulder"
	LeftWrist     Name = "left_wrist"
	RightWrist    Name = "right_wrist"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x" cbor:"x"`
	Y float64 `json:"y" cbor:"y"`
	Z float64 `json:"z" cbor:"z"`
}

// Frame is an immutable snapshot of the landmarks of the most confident subject
// detected in one analysis cycle. A nil *Frame means no subject was detected.
type Frame struct {
	Timestamp time.Time
	points    map[Name]Point3D
}

// NewFrame creates a Frame from the given points. The map is copied.
func NewFrame(ts time.Time, points map[Name]Point3D) *Frame {
	f := &Frame{
		Timestamp: ts,
		points:    make(map[Name]Point3D, len(points)),
	}
	for name, p := range points {
		f.points[name] = p
	}
	return f
}

// Point returns the named landmark and whether it was detected.
func (f *Frame) Point(name Name) (Point3D, bool) {
	if f == nil {
		return Point3D{}, false
	}
	p, ok := f.points[name]
	return p, ok
}

// Has reports whether every named landmark is present.
func (f *Frame) Has(names ...Name) bool {
	if f == nil {
		return false
	}
	for _, name := range names {
		if _, ok := f.points[name]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of landmarks in the frame.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.points)
}

// Names returns the landmark names in the frame in sorted order.
func (f *Frame) Names() []Name {
	if f == nil {
		return nil
	}
	names := make([]Name, 0, len(f.points))
	for name := range f.points {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Points returns a copy of all landmarks in the frame.
func (f *Frame) Points() map[Name]Point3D {
	if f == nil {
		return nil
	}
	out := make(map[Name]Point3D, len(f.points))
	for name, p := range f.points {
		out[name] = p
	}
	return out
}

// Merge combines two frames captured from the same image. Points in other win on
// conflict and the later timestamp is kept. Merging with nil returns the other frame.
func (f *Frame) Merge(other *Frame) *Frame {
	if f == nil {
		return other
	}
	if other == nil {
		return f
	}

	merged := NewFrame(f.Timestamp, f.points)
	if other.Timestamp.After(merged.Timestamp) {
		merged.Timestamp = other.Timestamp
	}
	for name, p := range other.points {
		merged.points[name] = p
	}
	return merged
}

// Sample is the outcome of one analysis cycle. Frame is nil when no subject was
// detected; Captured is always set.
type Sample struct {
	Captured time.Time
	Frame    *Frame
}

// Source delivers landmark samples one analysis cycle at a time.
type Source interface {
	Next(ctx context.Context) (Sample, error)
	Close() error
}
