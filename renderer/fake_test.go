package renderer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/nightvision/graphics"
)

// drawRecord captures the state a draw call executed with.
type drawRecord struct {
	program    graphics.Handle
	subroutine string
	fbo        graphics.Handle
	width      int
	height     int
	indexed    bool
	count      int
	slots      []graphics.Slot
	uniforms   map[string]any
}

// fakeDevice records calls and models the bits of GL state the renderer
// relies on, including the subroutine reset done by every UseProgram.
type fakeDevice struct {
	next graphics.Handle
	log  []string

	textures  map[graphics.Handle]graphics.TextureDesc
	depths    map[graphics.Handle][2]int
	fbos      map[graphics.Handle]graphics.Handle
	vaos      map[graphics.Handle]graphics.VertexArray
	shaders   map[graphics.Handle]graphics.Stage
	programs  map[graphics.Handle]bool
	units     map[int]graphics.Handle
	subByIdx  map[uint32]string
	locations map[string]int32
	lookups   map[string]int
	uniforms  map[string]any
	enabled   map[graphics.Slot]bool

	program  graphics.Handle
	selected string
	boundFBO graphics.Handle
	boundVAO graphics.Handle
	viewport [2]int
	misuse   []string
	draws    []drawRecord

	failCompile       map[graphics.Stage]bool
	failLink          bool
	failFramebuffer   bool
	missingSubroutine string
	inactive          map[string]bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures:    make(map[graphics.Handle]graphics.TextureDesc),
		depths:      make(map[graphics.Handle][2]int),
		fbos:        make(map[graphics.Handle]graphics.Handle),
		vaos:        make(map[graphics.Handle]graphics.VertexArray),
		shaders:     make(map[graphics.Handle]graphics.Stage),
		programs:    make(map[graphics.Handle]bool),
		units:       make(map[int]graphics.Handle),
		subByIdx:    make(map[uint32]string),
		locations:   make(map[string]int32),
		lookups:     make(map[string]int),
		uniforms:    make(map[string]any),
		enabled:     make(map[graphics.Slot]bool),
		failCompile: make(map[graphics.Stage]bool),
		inactive:    make(map[string]bool),
	}
}

func (d *fakeDevice) gen() graphics.Handle {
	d.next++
	return d.next
}

func (d *fakeDevice) logf(format string, args ...any) {
	d.log = append(d.log, fmt.Sprintf(format, args...))
}

// live counts GPU objects that were created and not yet deleted.
func (d *fakeDevice) live() int {
	return len(d.textures) + len(d.depths) + len(d.fbos) + len(d.vaos) + len(d.shaders) + len(d.programs)
}

// entries returns the log lines starting with one of prefixes.
func (d *fakeDevice) entries(prefixes ...string) []string {
	var out []string
	for _, l := range d.log {
		for _, p := range prefixes {
			if len(l) >= len(p) && l[:len(p)] == p {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

func (d *fakeDevice) CreateVertexArray(attrs []graphics.Attribute, indices []uint32) (graphics.VertexArray, error) {
	va := graphics.VertexArray{VAO: d.gen()}
	for range attrs {
		va.Buffers = append(va.Buffers, d.gen())
	}
	if len(indices) > 0 {
		va.Buffers = append(va.Buffers, d.gen())
	}
	d.vaos[va.VAO] = va
	return va, nil
}

func (d *fakeDevice) DeleteVertexArray(va graphics.VertexArray) { delete(d.vaos, va.VAO) }
func (d *fakeDevice) BindVertexArray(vao graphics.Handle) { d.boundVAO = vao }
func (d *fakeDevice) EnableAttribute(slot graphics.Slot) { d.enabled[slot] = true }
func (d *fakeDevice) DisableAttribute(slot graphics.Slot) { delete(d.enabled, slot) }

func (d *fakeDevice) record(indexed bool, count int) {
	r := drawRecord{
		program:    d.program,
		subroutine: d.selected,
		fbo:        d.boundFBO,
		indexed:    indexed,
		count:      count,
		uniforms:   maps.Clone(d.uniforms),
	}
	if d.boundFBO != 0 {
		desc := d.textures[d.fbos[d.boundFBO]]
		r.width, r.height = desc.Width, desc.Height
	} else {
		r.width, r.height = d.viewport[0], d.viewport[1]
	}
	for s := range d.enabled {
		r.slots = append(r.slots, s)
	}
	slices.Sort(r.slots)
	d.draws = append(d.draws, r)
	d.logf("draw %s %d", d.selected, count)
}

func (d *fakeDevice) DrawElements(count int) { d.record(true, count) }
func (d *fakeDevice) DrawArrays(first, count int) { d.record(false, count) }

func (d *fakeDevice) CreateTexture(desc graphics.TextureDesc, pixels []byte) (graphics.Handle, error) {
	if len(pixels) > 0 && len(pixels) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("%w: pixel size", graphics.ErrInvalidParameter)
	}
	h := d.gen()
	d.textures[h] = desc
	return h, nil
}

func (d *fakeDevice) DeleteTexture(tex graphics.Handle) { delete(d.textures, tex) }

func (d *fakeDevice) BindTexture(unit int, tex graphics.Handle) {
	d.units[unit] = tex
}

func (d *fakeDevice) CreateDepthBuffer(width, height int) (graphics.Handle, error) {
	h := d.gen()
	d.depths[h] = [2]int{width, height}
	return h, nil
}

func (d *fakeDevice) DeleteDepthBuffer(rb graphics.Handle) { delete(d.depths, rb) }

func (d *fakeDevice) CreateFramebuffer(color, depth graphics.Handle) (graphics.Handle, error) {
	if d.failFramebuffer {
		return 0, fmt.Errorf("%w: framebuffer incomplete", graphics.ErrFatalInit)
	}
	h := d.gen()
	d.fbos[h] = color
	return h, nil
}

func (d *fakeDevice) DeleteFramebuffer(fbo graphics.Handle) { delete(d.fbos, fbo) }

func (d *fakeDevice) BindFramebuffer(fbo graphics.Handle) {
	d.boundFBO = fbo
	d.logf("fbo %d", fbo)
}

func (d *fakeDevice) CompileShader(stage graphics.Stage, source string) (graphics.Handle, error) {
	if d.failCompile[stage] {
		return 0, &graphics.CompileError{Stage: stage, Log: "0:1(1): error: syntax error"}
	}
	h := d.gen()
	d.shaders[h] = stage
	return h, nil
}

func (d *fakeDevice) DeleteShader(shader graphics.Handle) { delete(d.shaders, shader) }

func (d *fakeDevice) LinkProgram(shaders ...graphics.Handle) (graphics.Handle, error) {
	if d.failLink {
		return 0, &graphics.LinkError{Log: "error: unresolved subroutine"}
	}
	h := d.gen()
	d.programs[h] = true
	return h, nil
}

func (d *fakeDevice) DeleteProgram(program graphics.Handle) { delete(d.programs, program) }

func (d *fakeDevice) UseProgram(program graphics.Handle) {
	d.program = program
	d.selected = ""
	d.logf("use %d", program)
}

func (d *fakeDevice) SubroutineIndex(program graphics.Handle, stage graphics.Stage, name string) (uint32, bool) {
	if name == d.missingSubroutine || stage != graphics.FragmentStage {
		return 0, false
	}
	idx := uint32(10 + len(d.subByIdx))
	for i, n := range d.subByIdx {
		if n == name {
			idx = i
		}
	}
	d.subByIdx[idx] = name
	return idx, true
}

func (d *fakeDevice) SelectSubroutine(stage graphics.Stage, index uint32) {
	if d.program == 0 {
		d.misuse = append(d.misuse, "subroutine selected without a program")
	}
	d.selected = d.subByIdx[index]
	d.logf("select %s", d.selected)
}

func (d *fakeDevice) UniformLocation(program graphics.Handle, name string) int32 {
	d.lookups[name]++
	if d.inactive[name] {
		return -1
	}
	loc, ok := d.locations[name]
	if !ok {
		loc = int32(len(d.locations))
		d.locations[name] = loc
	}
	return loc
}

func (d *fakeDevice) setUniform(loc int32, v any) {
	if d.program == 0 {
		d.misuse = append(d.misuse, "uniform set without a program")
	}
	for name, l := range d.locations {
		if l == loc {
			d.uniforms[name] = v
			return
		}
	}
	d.misuse = append(d.misuse, fmt.Sprintf("unknown uniform location %d", loc))
}

func (d *fakeDevice) Uniform1f(loc int32, v float32) { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform1i(loc int32, v int32) { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform3f(loc int32, v mgl32.Vec3) { d.setUniform(loc, v) }
func (d *fakeDevice) Uniform4f(loc int32, v mgl32.Vec4) { d.setUniform(loc, v) }
func (d *fakeDevice) UniformMatrix3(loc int32, m mgl32.Mat3) { d.setUniform(loc, m) }
func (d *fakeDevice) UniformMatrix4(loc int32, m mgl32.Mat4) { d.setUniform(loc, m) }

func (d *fakeDevice) Viewport(width, height int) {
	d.viewport = [2]int{width, height}
	d.logf("viewport %dx%d", width, height)
}

func (d *fakeDevice) ClearColor(c mgl32.Vec4) {}

func (d *fakeDevice) Clear(mask graphics.ClearMask) {
	d.logf("clear %d fbo %d", mask, d.boundFBO)
}

func (d *fakeDevice) EnableDepthTest() { d.logf("depth test") }
func (d *fakeDevice) FrontFaceCCW() { d.logf("front face ccw") }

func (d *fakeDevice) ReadPixels(width, height int, dst []byte) {
	for i := range dst {
		dst[i] = byte(i)
	}
	d.logf("read %dx%d", width, height)
}

var _ graphics.Device = (*fakeDevice)(nil)

// fakeWindow closes after a fixed number of frames.
type fakeWindow struct {
	frames    int
	maxFrames int
}

func (w *fakeWindow) MakeCurrent() {}
func (w *fakeWindow) Shutdown() {}
func (w *fakeWindow) ShouldClose() bool { return w.frames >= w.maxFrames }
func (w *fakeWindow) EndFrame() { w.frames++ }
func (w *fakeWindow) GetFramebufferSize() (int, int) { return 320, 240 }
func (w *fakeWindow) Time() float64 { return 0 }
func (w *fakeWindow) SetResizeCallback(func(w, h int)) {}

var _ graphics.Context = (*fakeWindow)(nil)

func handleString(h graphics.Handle) string { return fmt.Sprint(uint32(h)) }
