package detector

import (
	"time"

	"github.com/ayusman/headshaker/internal/landmark"
)

// Pose landmark indices following the MediaPipe pose model.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	PoseNose          = 0
	PoseLeftEye       = 2
	PoseRightEye      = 5
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
)

// Face mesh landmark indices following the MediaPipe face mesh model.
const (
	FaceNoseTip           = 1
	FaceLeftEyebrowUpper  = 105
	FaceLeftEyeUpperLid   = 159
	FaceRightEyebrowUpper = 334
	FaceRightEyeUpperLid  = 386
)

var poseNames = map[int]landmark.Name{
	PoseNose:          landmark.NoseTip,
	PoseLeftEye:       landmark.LeftEye,
	PoseRightEye:      landmark.RightEye,
	PoseLeftShoulder:  landmark.LeftShoulder,
	PoseRightShoulder: landmark.RightShoulder,
	PoseLeftWrist:     landmark.LeftWrist,
	PoseRightWrist:    landmark.RightWrist,
}

var faceNames = map[int]landmark.Name{
	FaceNoseTip:           landmark.NoseTip,
	FaceLeftEyebrowUpper:  landmark.LeftEyebrow,
	FaceLeftEyeUpperLid:   landmark.LeftEyeLid,
	FaceRightEyebrowUpper: landmark.RightEyebrow,
	FaceRightEyeUpperLid:  landmark.RightEyeLid,
}

// namesFor returns the index table of a task.
func namesFor(task Task) map[int]landmark.Name {
	if task == TaskFace {
		return faceNames
	}
	return poseNames
}

// toFrame picks the named landmarks out of a model result given in normalized
// image coordinates and scales them to pixels. Z is scaled like X, as MediaPipe
// does. Points below minVisibility are dropped.
func toFrame(task Task, points []jsonPoint, width, height, minVisibility float64, ts time.Time) *landmark.Frame {
	if len(points) == 0 {
		return nil
	}

	out := make(map[landmark.Name]landmark.Point3D)
	for idx, name := range namesFor(task) {
		if idx >= len(points) {
			continue
		}
		p := points[idx]
		if p.Visibility != nil && *p.Visibility < minVisibility {
			continue
		}
		out[name] = landmark.Point3D{
			X: p.X * width,
			Y: p.Y * height,
			Z: p.Z * width,
		}
	}

	if len(out) == 0 {
		return nil
	}
	return landmark.NewFrame(ts, out)
}

type jsonPoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}
