// Package geom provides the pinhole camera model used to move between world space,
// screen space and view rays.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Default camera settings
const (
	DefaultVerticalFOV = math.Pi / 3 // 60 degrees
	DefaultNear        = 0.01        // meters
)

// Viewport is the size of the rendered view in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Ray is a half-line starting at Origin. Direction is unit length.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// Point returns the point at the given distance along the ray.
func (r Ray) Point(distance float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(distance))
}

// Camera is a pinhole camera pose plus projection parameters. Screen coordinates have
// their origin at the top-left corner with Y growing downward.
type Camera struct {
	Position    mgl64.Vec3
	Forward     mgl64.Vec3
	Up          mgl64.Vec3
	VerticalFOV float64 // radians
	Near        float64 // distance from Position to the near clip plane
	Viewport    Viewport
}

// NewCamera returns a camera at the origin looking down -Z with +Y up.
func NewCamera(viewport Viewport) Camera {
	return Camera{
		Position:    mgl64.Vec3{0, 0, 0},
		Forward:     mgl64.Vec3{0, 0, -1},
		Up:          mgl64.Vec3{0, 1, 0},
		VerticalFOV: DefaultVerticalFOV,
		Near:        DefaultNear,
		Viewport:    viewport,
	}
}

// basis returns the orthonormal forward, up and right vectors of the camera.
func (c Camera) basis() (forward, up, right mgl64.Vec3) {
	forward = c.Forward.Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, up, right
}

// focal returns the focal length in pixels.
func (c Camera) focal() float64 {
	return (c.Viewport.Height / 2) / math.Tan(c.VerticalFOV/2)
}

// WorldToScreen projects a world point onto the screen. It returns false when the
// point is behind the camera.
func (c Camera) WorldToScreen(p mgl64.Vec3) (mgl64.Vec2, bool) {
	forward, up, right := c.basis()
	d := p.Sub(c.Position)

	z := d.Dot(forward)
	if z <= 0 {
		return mgl64.Vec2{}, false
	}

	f := c.focal()
	x := c.Viewport.Width/2 + d.Dot(right)*f/z
	y := c.Viewport.Height/2 - d.Dot(up)*f/z
	return mgl64.Vec2{x, y}, true
}

// ScreenPointToRay returns the view ray through a screen point. The ray starts on
// the near clip plane.
func (c Camera) ScreenPointToRay(x, y float64) Ray {
	forward, up, right := c.basis()
	f := c.focal()

	dir := forward.
		Add(right.Mul((x - c.Viewport.Width/2) / f)).
		Add(up.Mul((c.Viewport.Height/2 - y) / f)).
		Normalize()

	origin := c.Position.Add(dir.Mul(c.Near / dir.Dot(forward)))
	return Ray{Origin: origin, Direction: dir}
}

// Distance returns the distance from the camera position to p.
func (c Camera) Distance(p mgl64.Vec3) float64 {
	return p.Sub(c.Position).Len()
}
