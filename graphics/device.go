package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Handle names a GPU object. Zero is the default framebuffer or "no object".
type Handle uint32

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Slot is a vertex attribute location.
type Slot uint32

const (
	PositionSlot Slot = 0
	NormalSlot   Slot = 1
	TexCoordSlot Slot = 2
)

// Attribute is one tightly packed float stream bound to a slot.
type Attribute struct {
	Slot       Slot
	Components int
	Data       []float32
}

// VertexArray is a vertex array object together with the buffers it owns.
type VertexArray struct {
	VAO     Handle
	Buffers []Handle
}

// ClearMask selects the buffers touched by Clear.
type ClearMask uint32

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// TextureDesc describes an immutable RGBA8 texture upload.
type TextureDesc struct {
	Width  int
	Height int
	Linear bool // linear min/mag filtering, nearest otherwise
	Repeat bool // repeat wrapping, clamp to edge otherwise
}

// Device is the subset of the GPU API used by the renderer. All methods must
// be called from the goroutine that owns the current context.
type Device interface {
	CreateVertexArray(attrs []Attribute, indices []uint32) (VertexArray, error)
	DeleteVertexArray(va VertexArray)
	BindVertexArray(vao Handle)
	EnableAttribute(slot Slot)
	DisableAttribute(slot Slot)
	DrawElements(count int)
	DrawArrays(first, count int)

	CreateTexture(desc TextureDesc, pixels []byte) (Handle, error)
	DeleteTexture(tex Handle)
	BindTexture(unit int, tex Handle)

	CreateDepthBuffer(width, height int) (Handle, error)
	DeleteDepthBuffer(rb Handle)
	CreateFramebuffer(color, depth Handle) (Handle, error)
	DeleteFramebuffer(fbo Handle)
	BindFramebuffer(fbo Handle)

	CompileShader(stage Stage, source string) (Handle, error)
	DeleteShader(shader Handle)
	LinkProgram(shaders ...Handle) (Handle, error)
	DeleteProgram(program Handle)
	UseProgram(program Handle)
	SubroutineIndex(program Handle, stage Stage, name string) (uint32, bool)
	SelectSubroutine(stage Stage, index uint32)

	UniformLocation(program Handle, name string) int32
	Uniform1f(loc int32, v float32)
	Uniform1i(loc int32, v int32)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMatrix3(loc int32, m mgl32.Mat3)
	UniformMatrix4(loc int32, m mgl32.Mat4)

	Viewport(width, height int)
	ClearColor(c mgl32.Vec4)
	Clear(mask ClearMask)
	EnableDepthTest()
	FrontFaceCCW()
	ReadPixels(width, height int, dst []byte)
}
