package landmark

import "time"

// NeutralFrame returns a preset frame of a subject looking straight at the camera
// with relaxed eyebrows and both hands down. Coordinates are 640x480 image pixels.
func NeutralFrame(ts time.Time) *Frame {
	return NewFrame(ts, neutralPoints())
}

// TiltLeftFrame returns a preset frame with the head tilted to the subject's left
// (right eye 30px lower than the left eye).
func TiltLeftFrame(ts time.Time) *Frame {
	points := neutralPoints()
	points[RightEye] = Point3D{X: 360, Y: 230}
	return NewFrame(ts, points)
}

// TiltRightFrame returns a preset frame with the head tilted to the subject's right
// (right eye 30px higher than the left eye).
func TiltRightFrame(ts time.Time) *Frame {
	points := neutralPoints()
	points[RightEye] = Point3D{X: 360, Y: 170}
	return NewFrame(ts, points)
}

// EyebrowRaisedFrame returns a preset frame with both eyebrows raised 55px above
// the upper eyelids.
func EyebrowRaisedFrame(ts time.Time) *Frame {
	points := neutralPoints()
	points[LeftEyebrow] = Point3D{X: 280, Y: 140}
	points[RightEyebrow] = Point3D{X: 360, Y: 140}
	return NewFrame(ts, points)
}

// HandRaisedFrame returns a preset frame with the right wrist raised well above
// the right shoulder.
func HandRaisedFrame(ts time.Time) *Frame {
	points := neutralPoints()
	points[RightWrist] = Point3D{X: 440, Y: 300}
	return NewFrame(ts, points)
}

// ShoulderShiftedFrame returns a neutral frame with both shoulders moved up by the
// given pixel amounts.
func ShoulderShiftedFrame(ts time.Time, leftUp, rightUp float64) *Frame {
	points := neutralPoints()
	l := points[LeftShoulder]
	r := points[RightShoulder]
	l.Y -= leftUp
	r.Y -= rightUp
	points[LeftShoulder] = l
	points[RightShoulder] = r
	return NewFrame(ts, points)
}

// FaceFrame returns an AR face frame holding only the nose tip in world meters.
func FaceFrame(ts time.Time, nose Point3D) *Frame {
	return NewFrame(ts, map[Name]Point3D{NoseTip: nose})
}

func neutralPoints() map[Name]Point3D {
	return map[Name]Point3D{
		LeftEye:       {X: 280, Y: 200},
		RightEye:      {X: 360, Y: 200},
		LeftEyebrow:   {X: 280, Y: 170},
		RightEyebrow:  {X: 360, Y: 170},
		LeftEyeLid:    {X: 280, Y: 195},
		RightEyeLid:   {X: 360, Y: 195},
		NoseTip:       {X: 320, Y: 240},
		LeftShoulder:  {X: 220, Y: 400},
		RightShoulder: {X: 420, Y: 400},
		LeftWrist:     {X: 200, Y: 600},
		RightWrist:    {X: 440, Y: 600},
	}
}
