package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/nightvision/graphics"
	"github.com/richinsley/nightvision/shader"
	"go.uber.org/zap"
)

// Pass selects the fragment entry point used for a draw.
type Pass int

const (
	Pass1 Pass = iota // lit geometry into the offscreen target
	Pass2             // post-process composite onto the default framebuffer
	passCount
)

func (p Pass) String() string {
	switch p {
	case Pass1:
		return shader.Pass1Name
	case Pass2:
		return shader.Pass2Name
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

type programState int

const (
	programUnlinked programState = iota
	programCompiled
	programReady
	programBound
)

// Program is a single linked shader program whose fragment stage exposes one
// subroutine per Pass.
type Program struct {
	dev         graphics.Device
	handle      graphics.Handle
	shaders     []graphics.Handle
	state       programState
	subroutines [passCount]uint32
	locations   map[string]int32
	bound       *Binding
}

func NewProgram(dev graphics.Device) *Program {
	return &Program{
		dev:       dev,
		locations: make(map[string]int32),
	}
}

// Compile compiles both stages. A failure returns a *graphics.CompileError
// carrying the driver log.
func (p *Program) Compile(vertexSource, fragmentSource string) error {
	if p.state != programUnlinked {
		return fmt.Errorf("%w: program already compiled", graphics.ErrStateMisuse)
	}
	vs, err := p.dev.CompileShader(graphics.VertexStage, vertexSource)
	if err != nil {
		return err
	}
	fs, err := p.dev.CompileShader(graphics.FragmentStage, fragmentSource)
	if err != nil {
		p.dev.DeleteShader(vs)
		return err
	}
	p.shaders = []graphics.Handle{vs, fs}
	p.state = programCompiled
	return nil
}

// Link links the compiled stages and resolves the subroutine index of every
// pass. A missing entry point is reported as a link failure.
func (p *Program) Link() error {
	if p.state != programCompiled {
		return fmt.Errorf("%w: link requires compiled shaders", graphics.ErrStateMisuse)
	}
	handle, err := p.dev.LinkProgram(p.shaders...)
	for _, s := range p.shaders {
		p.dev.DeleteShader(s)
	}
	p.shaders = nil
	if err != nil {
		p.state = programUnlinked
		return err
	}

	for pass := Pass1; pass < passCount; pass++ {
		idx, ok := p.dev.SubroutineIndex(handle, graphics.FragmentStage, pass.String())
		if !ok {
			p.dev.DeleteProgram(handle)
			p.state = programUnlinked
			return &graphics.LinkError{Log: fmt.Sprintf("fragment subroutine %q not found", pass)}
		}
		p.subroutines[pass] = idx
	}

	p.handle = handle
	p.state = programReady
	zap.S().Infof("Shader program %d linked (pass1=%d, pass2=%d)", handle, p.subroutines[Pass1], p.subroutines[Pass2])
	return nil
}

// Bind makes the program current and selects the fragment subroutine for
// pass in the same step. The returned Binding must be released before the
// program is bound again.
func (p *Program) Bind(pass Pass) (*Binding, error) {
	switch {
	case pass < Pass1 || pass >= passCount:
		return nil, fmt.Errorf("%w: unknown pass %d", graphics.ErrInvalidParameter, int(pass))
	case p.state == programBound:
		return nil, fmt.Errorf("%w: program still bound for %s", graphics.ErrStateMisuse, p.bound.pass)
	case p.state != programReady:
		return nil, fmt.Errorf("%w: program is not linked", graphics.ErrStateMisuse)
	}

	p.dev.UseProgram(p.handle)
	p.dev.SelectSubroutine(graphics.FragmentStage, p.subroutines[pass])
	p.state = programBound
	p.bound = &Binding{program: p, pass: pass}
	return p.bound, nil
}

// Destroy deletes the program. It must not be bound.
func (p *Program) Destroy() {
	for _, s := range p.shaders {
		p.dev.DeleteShader(s)
	}
	p.shaders = nil
	if p.handle != 0 {
		p.dev.DeleteProgram(p.handle)
		p.handle = 0
	}
	clear(p.locations)
	p.bound = nil
	p.state = programUnlinked
}

func (p *Program) location(name string) int32 {
	loc, ok := p.locations[name]
	if !ok {
		loc = p.dev.UniformLocation(p.handle, name)
		p.locations[name] = loc
		if loc < 0 {
			zap.S().Debugf("Uniform %q is not active in program %d", name, p.handle)
		}
	}
	return loc
}

// Binding is the scope of one bound program. Uniform setters are only valid
// until Release.
type Binding struct {
	program  *Program
	pass     Pass
	released bool
}

// Pass returns the subroutine selected when the binding was created.
func (b *Binding) Pass() Pass { return b.pass }

func (b *Binding) loc(name string) (int32, bool) {
	if b.released {
		zap.S().Warnf("Uniform %q set on a released %s binding", name, b.pass)
		return -1, false
	}
	loc := b.program.location(name)
	return loc, loc >= 0
}

func (b *Binding) SetFloat(name string, v float32) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.Uniform1f(loc, v)
	}
}

func (b *Binding) SetInt(name string, v int32) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.Uniform1i(loc, v)
	}
}

func (b *Binding) SetVec3(name string, v mgl32.Vec3) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.Uniform3f(loc, v)
	}
}

func (b *Binding) SetVec4(name string, v mgl32.Vec4) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.Uniform4f(loc, v)
	}
}

func (b *Binding) SetMat3(name string, m mgl32.Mat3) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.UniformMatrix3(loc, m)
	}
}

func (b *Binding) SetMat4(name string, m mgl32.Mat4) {
	if loc, ok := b.loc(name); ok {
		b.program.dev.UniformMatrix4(loc, m)
	}
}

// Release unbinds the program. Releasing twice is a no-op.
func (b *Binding) Release() {
	if b.released {
		return
	}
	b.released = true
	b.program.dev.UseProgram(0)
	b.program.state = programReady
	b.program.bound = nil
}
