// Package tracker turns the tracked nose tip into the player's avatar at a fixed
// depth in front of the camera.
package tracker

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/headshaker/internal/geom"
	"github.com/ayusman/headshaker/internal/landmark"
)

// Avatar is the player's marker. It is derived from a single frame and carries no
// identity between frames.
type Avatar struct {
	Position mgl64.Vec3
	Scale    float64
}

// Tracker locks the avatar to a constant depth so raw depth jitter from the face
// tracker never reaches the game.
type Tracker struct {
	depth float64
}

// New creates a Tracker placing the avatar depth meters along the view ray.
func New(depth float64) *Tracker {
	return &Tracker{depth: depth}
}

// Depth returns the fixed avatar depth.
func (t *Tracker) Depth() float64 {
	return t.depth
}

// Update computes the avatar for the given face frame. It returns false when no
// face or no nose tip is tracked, or the nose is behind the camera.
func (t *Tracker) Update(face *landmark.Frame, cam geom.Camera) (Avatar, bool) {
	nose, ok := face.Point(landmark.NoseTip)
	if !ok {
		return Avatar{}, false
	}

	screen, ok := cam.WorldToScreen(mgl64.Vec3{nose.X, nose.Y, nose.Z})
	if !ok {
		return Avatar{}, false
	}

	pos := cam.ScreenPointToRay(screen.X(), screen.Y()).Point(t.depth)
	return Avatar{
		Position: pos,
		Scale:    cam.Distance(pos),
	}, true
}

// WorldFace lifts the nose tip of a face frame measured in camera image pixels
// into world space, so it can be fed to Update. The image is stretched over the
// camera viewport and the nose is placed distance meters along the view ray
// through it. Frames without a nose tip, or an empty image size, yield nil.
func WorldFace(face *landmark.Frame, cam geom.Camera, imageWidth, imageHeight int, distance float64) *landmark.Frame {
	nose, ok := face.Point(landmark.NoseTip)
	if !ok || imageWidth <= 0 || imageHeight <= 0 {
		return nil
	}

	x := nose.X * cam.Viewport.Width / float64(imageWidth)
	y := nose.Y * cam.Viewport.Height / float64(imageHeight)
	p := cam.ScreenPointToRay(x, y).Point(distance)

	return landmark.NewFrame(face.Timestamp, map[landmark.Name]landmark.Point3D{
		landmark.NoseTip: {X: p.X(), Y: p.Y(), Z: p.Z()},
	})
}
