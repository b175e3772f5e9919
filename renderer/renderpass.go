package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Material holds the Phong reflectance constants of one object.
type Material struct {
	Kd        mgl32.Vec3
	Ks        mgl32.Vec3
	Ka        mgl32.Vec3
	Shininess float32
}

var (
	copperMaterial = Material{
		Kd:        mgl32.Vec3{0.9, 0.5, 0.3},
		Ks:        mgl32.Vec3{0.95, 0.95, 0.95},
		Ka:        mgl32.Vec3{0.9 * 0.3, 0.5 * 0.3, 0.3 * 0.3},
		Shininess: 100,
	}
	floorMaterial = Material{
		Kd:        mgl32.Vec3{0.7, 0.7, 0.7},
		Ks:        mgl32.Vec3{0.9, 0.9, 0.9},
		Ka:        mgl32.Vec3{0.2, 0.2, 0.2},
		Shininess: 180,
	}
)

// drawable is one solid object of pass 1.
type drawable struct {
	geometry *GeometryBuffer
	model    mgl32.Mat4
	material Material
	// Radius uniform is viewport width / radiusDivisor.
	radiusDivisor float32
}

const (
	edgeThreshold = 0.1

	renderTexUnit = 0
	noiseTexUnit  = 1
)

var (
	worldLight     = mgl32.Vec4{0, 0, 0, 1}
	lightIntensity = mgl32.Vec3{1, 1, 1}
	midGray        = mgl32.Vec4{0.5, 0.5, 0.5, 1}
	black          = mgl32.Vec4{0, 0, 0, 1}
)

func teapotModel() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(-90))
}

func torusModel() mgl32.Mat4 {
	return mgl32.Translate3D(1, 1, 3).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(90)))
}

func planeModel() mgl32.Mat4 {
	return mgl32.Translate3D(0, -0.75, 0)
}
