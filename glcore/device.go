// Package glcore implements graphics.Device on the OpenGL 4.1 core profile.
package glcore

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/nightvision/graphics"
	"go.uber.org/zap"
)

var glInitOnce sync.Once

// Device issues GL calls on the context current on the calling thread.
type Device struct{}

// New loads the GL entry points for the current context. The context must
// already be current on the calling thread.
func New() (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("%w: failed to initialize OpenGL: %v", graphics.ErrFatalInit, initErr)
	}
	zap.S().Infof("OpenGL %s, GLSL %s, renderer %s",
		gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		gl.GoStr(gl.GetString(gl.RENDERER)))
	return &Device{}, nil
}

func (d *Device) CreateVertexArray(attrs []graphics.Attribute, indices []uint32) (graphics.VertexArray, error) {
	var va graphics.VertexArray
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return va, fmt.Errorf("%w: glGenVertexArrays returned no name", graphics.ErrFatalInit)
	}
	va.VAO = graphics.Handle(vao)
	gl.BindVertexArray(vao)

	for _, a := range attrs {
		var vbo uint32
		gl.GenBuffers(1, &vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(a.Data)*4, gl.Ptr(a.Data), gl.STATIC_DRAW)
		gl.VertexAttribPointer(uint32(a.Slot), int32(a.Components), gl.FLOAT, false, int32(a.Components*4), gl.PtrOffset(0))
		va.Buffers = append(va.Buffers, graphics.Handle(vbo))
	}

	if len(indices) > 0 {
		var ibo uint32
		gl.GenBuffers(1, &ibo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		va.Buffers = append(va.Buffers, graphics.Handle(ibo))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := checkError("create vertex array"); err != nil {
		d.DeleteVertexArray(va)
		return graphics.VertexArray{}, err
	}
	return va, nil
}

func (d *Device) DeleteVertexArray(va graphics.VertexArray) {
	for _, b := range va.Buffers {
		buf := uint32(b)
		gl.DeleteBuffers(1, &buf)
	}
	vao := uint32(va.VAO)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) BindVertexArray(vao graphics.Handle) { gl.BindVertexArray(uint32(vao)) }
func (d *Device) EnableAttribute(slot graphics.Slot) { gl.EnableVertexAttribArray(uint32(slot)) }
func (d *Device) DisableAttribute(slot graphics.Slot) { gl.DisableVertexAttribArray(uint32(slot)) }

func (d *Device) DrawElements(count int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (d *Device) DrawArrays(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

func (d *Device) CreateTexture(desc graphics.TextureDesc, pixels []byte) (graphics.Handle, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	var data unsafe.Pointer
	if len(pixels) > 0 {
		if len(pixels) != desc.Width*desc.Height*4 {
			gl.DeleteTextures(1, &tex)
			return 0, fmt.Errorf("%w: %d bytes for a %dx%d RGBA texture", graphics.ErrInvalidParameter, len(pixels), desc.Width, desc.Height)
		}
		data = gl.Ptr(pixels)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, data)

	filter := int32(gl.NEAREST)
	if desc.Linear {
		filter = gl.LINEAR
	}
	wrap := int32(gl.CLAMP_TO_EDGE)
	if desc.Repeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("create texture"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return graphics.Handle(tex), nil
}

func (d *Device) DeleteTexture(tex graphics.Handle) {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
}

func (d *Device) BindTexture(unit int, tex graphics.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) CreateDepthBuffer(width, height int) (graphics.Handle, error) {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	if err := checkError("create depth buffer"); err != nil {
		gl.DeleteRenderbuffers(1, &rb)
		return 0, err
	}
	return graphics.Handle(rb), nil
}

func (d *Device) DeleteDepthBuffer(rb graphics.Handle) {
	r := uint32(rb)
	gl.DeleteRenderbuffers(1, &r)
}

func (d *Device) CreateFramebuffer(color, depth graphics.Handle) (graphics.Handle, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(color), 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, uint32(depth))
	drawBuffers := []uint32{gl.COLOR_ATTACHMENT0}
	gl.DrawBuffers(1, &drawBuffers[0])

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("%w: framebuffer is not complete (status 0x%x)", graphics.ErrFatalInit, status)
	}
	return graphics.Handle(fbo), nil
}

func (d *Device) DeleteFramebuffer(fbo graphics.Handle) {
	f := uint32(fbo)
	gl.DeleteFramebuffers(1, &f)
}

func (d *Device) BindFramebuffer(fbo graphics.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fbo))
}

func (d *Device) CompileShader(stage graphics.Stage, source string) (graphics.Handle, error) {
	shader := gl.CreateShader(glStage(stage))
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, &graphics.CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return graphics.Handle(shader), nil
}

func (d *Device) DeleteShader(shader graphics.Handle) { gl.DeleteShader(uint32(shader)) }

func (d *Device) LinkProgram(shaders ...graphics.Handle) (graphics.Handle, error) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, uint32(s))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &graphics.LinkError{Log: strings.TrimRight(logText, "\x00")}
	}
	for _, s := range shaders {
		gl.DetachShader(program, uint32(s))
	}
	return graphics.Handle(program), nil
}

func (d *Device) DeleteProgram(program graphics.Handle) { gl.DeleteProgram(uint32(program)) }
func (d *Device) UseProgram(program graphics.Handle) { gl.UseProgram(uint32(program)) }

func (d *Device) SubroutineIndex(program graphics.Handle, stage graphics.Stage, name string) (uint32, bool) {
	idx := gl.GetSubroutineIndex(uint32(program), glStage(stage), gl.Str(name+"\x00"))
	return idx, idx != gl.INVALID_INDEX
}

// SelectSubroutine sets the single subroutine uniform of stage. Subroutine
// uniform state is reset by every glUseProgram.
func (d *Device) SelectSubroutine(stage graphics.Stage, index uint32) {
	gl.UniformSubroutinesuiv(glStage(stage), 1, &index)
}

func (d *Device) UniformLocation(program graphics.Handle, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (d *Device) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }
func (d *Device) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }
func (d *Device) UniformMatrix3(loc int32, m mgl32.Mat3) { gl.UniformMatrix3fv(loc, 1, false, &m[0]) }
func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) ClearColor(c mgl32.Vec4) { gl.ClearColor(c[0], c[1], c[2], c[3]) }

func (d *Device) Clear(mask graphics.ClearMask) {
	var bits uint32
	if mask&graphics.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&graphics.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *Device) EnableDepthTest() { gl.Enable(gl.DEPTH_TEST) }
func (d *Device) FrontFaceCCW() { gl.FrontFace(gl.CCW) }

// ReadPixels reads the bound read framebuffer as RGBA bytes, bottom row
// first.
func (d *Device) ReadPixels(width, height int, dst []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
}

func glStage(s graphics.Stage) uint32 {
	if s == graphics.VertexStage {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w: %s: GL error 0x%x", graphics.ErrFatalInit, op, code)
	}
	return nil
}

var _ graphics.Device = (*Device)(nil)
