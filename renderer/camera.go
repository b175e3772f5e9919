package renderer

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSpeed   = 0.25 // radians per second
	orbitRadius  = 7
	orbitHeight  = 4
	initialAngle = math32.Pi / 4
	twoPi        = 2 * math32.Pi

	fovY  = 60 // degrees
	zNear = 0.3
	zFar  = 100
)

// FrameState is the per-frame mutable state owned by the render tick.
type FrameState struct {
	Angle   float32 // orbit angle in [0, 2π)
	Frame   uint64
	prev    float64
	hasPrev bool
}

func NewFrameState() FrameState {
	return FrameState{Angle: initialAngle}
}

// Advance moves the orbit forward to time now (seconds) and returns the
// elapsed time used. The first call always uses a zero delta, and a
// non-finite now leaves the orbit where it is.
func (s *FrameState) Advance(now float64) float64 {
	s.Frame++
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return 0
	}
	var delta float64
	if s.hasPrev && now > s.prev {
		delta = now - s.prev
	}
	s.prev, s.hasPrev = now, true

	step := math.Mod(orbitSpeed*delta, 2*math.Pi)
	s.Angle = math32.Mod(s.Angle+float32(step), twoPi)
	if s.Angle < 0 {
		s.Angle += twoPi
	}
	if s.Angle >= twoPi {
		s.Angle = 0
	}
	return delta
}

// OrbitEye returns the camera position for an orbit angle.
func OrbitEye(angle float32) mgl32.Vec3 {
	return mgl32.Vec3{orbitRadius * math32.Cos(angle), orbitHeight, orbitRadius * math32.Sin(angle)}
}

// ViewMatrix looks from the orbit position at the origin with +Y up.
func ViewMatrix(angle float32) mgl32.Mat4 {
	return mgl32.LookAtV(OrbitEye(angle), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix is the perspective projection for a viewport of
// width x height pixels.
func ProjectionMatrix(width, height int) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovY), float32(width)/float32(height), zNear, zFar)
}

// NormalMatrix is the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// Camera holds the shared view and projection transforms.
type Camera struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

func (c *Camera) SetViewport(width, height int) {
	c.Projection = ProjectionMatrix(width, height)
}

// AspectRatio recovers width/height from the projection matrix.
func (c Camera) AspectRatio() float32 {
	return c.Projection[5] / c.Projection[0]
}
