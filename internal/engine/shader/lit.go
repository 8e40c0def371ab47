package shader

import (
	_ "embed"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed shaders/lit.vert
var litVertexSource string

//go:embed shaders/lit.frag
var litFragmentSource string

// Lit is the single program every scene node is drawn with.
type Lit struct {
	Program uint32

	Model          int32
	ViewProj       int32
	NormalMatrix   int32
	Color          int32
	Shininess      int32
	UseVertexColor int32
	Unlit          int32
	LightDir       int32
	Ambient        int32
	Diffuse        int32
	CameraPos      int32
}

// NewLit compiles the lit program and looks up its uniforms.
func NewLit() (*Lit, error) {
	program, err := CompileProgram(litVertexSource, litFragmentSource)
	if err != nil {
		return nil, err
	}
	return &Lit{
		Program:        program,
		Model:          GetUniform(program, "uModel"),
		ViewProj:       GetUniform(program, "uViewProj"),
		NormalMatrix:   GetUniform(program, "uNormalMatrix"),
		Color:          GetUniform(program, "uColor"),
		Shininess:      GetUniform(program, "uShininess"),
		UseVertexColor: GetUniform(program, "uUseVertexColor"),
		Unlit:          GetUniform(program, "uUnlit"),
		LightDir:       GetUniform(program, "uLightDir"),
		Ambient:        GetUniform(program, "uAmbient"),
		Diffuse:        GetUniform(program, "uDiffuse"),
		CameraPos:      GetUniform(program, "uCameraPos"),
	}, nil
}

// Delete releases the program.
func (l *Lit) Delete() {
	if l.Program != 0 {
		gl.DeleteProgram(l.Program)
		l.Program = 0
	}
}
