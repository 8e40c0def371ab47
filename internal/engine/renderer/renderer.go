// Package renderer draws scene graph meshes with OpenGL 4.1.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/sculpt/internal/engine/lighting"
	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/internal/engine/shader"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

var (
	ErrNotInitialized = errors.New("renderer not initialized")
	ErrUnknownHandle  = errors.New("unknown mesh handle")
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor math.Vec3
	Light      lighting.Light
}

// Renderer is the OpenGL scene graph adapter. Each uploaded mesh becomes one
// or more VAOs with 16-bit index buffers.
type Renderer struct {
	config Config
	lit    *shader.Lit
	meshes []*gpuMesh

	viewProj  math.Mat4
	cameraPos math.Vec3
	wireframe bool
}

type gpuMesh struct {
	name     string
	layout   mesh.Layout
	usage    uint32
	vertices int
	parts    []gpuPart
}

type gpuPart struct {
	vao, vbo, ebo uint32
	vertices      int
	count         int32
}

var (
	_ scenegraph.Adapter = (*Renderer)(nil)
	_ scenegraph.Updater = (*Renderer)(nil)
)

// New creates a renderer. It must be called after the GL context exists.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.L().Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.CullFace(gl.BACK)
	gl.ClearColor(cfg.ClearColor.X, cfg.ClearColor.Y, cfg.ClearColor.Z, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	lit, err := shader.NewLit()
	if err != nil {
		return nil, fmt.Errorf("failed to create lit shader: %w", err)
	}

	return &Renderer{
		config:   cfg,
		lit:      lit,
		viewProj: math.Identity(),
	}, nil
}

// Close releases every GL object.
func (r *Renderer) Close() {
	logger.L().Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for _, m := range r.meshes {
		m.release()
	}
	r.meshes = nil
	if r.lit != nil {
		r.lit.Delete()
		r.lit = nil
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.L().Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetCamera sets the view-projection matrix and eye position for the next draws.
func (r *Renderer) SetCamera(viewProj math.Mat4, eye math.Vec3) {
	r.viewProj = viewProj
	r.cameraPos = eye
}

// SetLight replaces the directional light.
func (r *Renderer) SetLight(l lighting.Light) {
	r.config.Light = l
}

// ToggleWireframe switches polygon mode and returns the new state.
func (r *Renderer) ToggleWireframe() bool {
	r.wireframe = !r.wireframe
	return r.wireframe
}

// Begin clears the frame and binds the lit program with per-frame uniforms.
func (r *Renderer) Begin() error {
	if r.lit == nil {
		return ErrNotInitialized
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.UseProgram(r.lit.Program)
	gl.UniformMatrix4fv(r.lit.ViewProj, 1, false, r.viewProj.Ptr())
	dir := r.config.Light.Direction()
	gl.Uniform3f(r.lit.LightDir, dir.X, dir.Y, dir.Z)
	amb := r.config.Light.Ambient
	gl.Uniform3f(r.lit.Ambient, amb.X, amb.Y, amb.Z)
	dif := r.config.Light.Diffuse
	gl.Uniform3f(r.lit.Diffuse, dif.X, dif.Y, dif.Z)
	gl.Uniform3f(r.lit.CameraPos, r.cameraPos.X, r.cameraPos.Y, r.cameraPos.Z)
	return nil
}

// End finishes the frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// ReadPixels reads the back buffer as RGBA, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// Upload creates GPU buffers for m. Meshes above the 16-bit index limit are
// split into several parts sharing one handle.
func (r *Renderer) Upload(m *mesh.Mesh) (scenegraph.Handle, error) {
	if r.lit == nil {
		return 0, ErrNotInitialized
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	g := &gpuMesh{
		name:     m.Name,
		layout:   m.Layout,
		usage:    bufferUsage(m.Usage),
		vertices: m.VertexCount(),
	}
	if err := g.upload(m); err != nil {
		g.release()
		return 0, err
	}
	r.meshes = append(r.meshes, g)
	h := scenegraph.Handle(len(r.meshes) - 1)

	logger.L().Debug("mesh buffers created",
		zap.String("mesh", m.Name),
		zap.Uint32("handle", uint32(h)),
		zap.Int("parts", len(g.parts)),
		zap.Stringer("layout", m.Layout))
	return h, nil
}

// Update rewrites the vertex data of a dynamic mesh. Unchanged topology is
// patched in place with BufferSubData; otherwise the buffers are rebuilt.
func (r *Renderer) Update(h scenegraph.Handle, m *mesh.Mesh) error {
	g, err := r.lookup(h)
	if err != nil {
		return err
	}
	if len(g.parts) == 1 && g.vertices == m.VertexCount() && g.layout == m.Layout && m.VertexCount() <= mesh.MaxVertices {
		data := m.Interleave()
		if len(data) == 0 {
			return nil
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, g.parts[0].vbo)
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		return nil
	}

	if err := m.Validate(); err != nil {
		return err
	}
	g.release()
	g.layout = m.Layout
	g.usage = bufferUsage(m.Usage)
	g.vertices = m.VertexCount()
	return g.upload(m)
}

// Draw issues one draw call with the lit program bound by Begin.
func (r *Renderer) Draw(dc scenegraph.DrawCall) error {
	g, err := r.lookup(dc.Handle)
	if err != nil {
		return err
	}

	mat := dc.Material
	gl.UniformMatrix4fv(r.lit.Model, 1, false, dc.World.Ptr())
	gl.UniformMatrix3fv(r.lit.NormalMatrix, 1, false, dc.Normal.Ptr())
	gl.Uniform3f(r.lit.Color, mat.Color.X, mat.Color.Y, mat.Color.Z)
	gl.Uniform1f(r.lit.Shininess, mat.Shininess)
	gl.Uniform1i(r.lit.UseVertexColor, boolToInt(mat.UseVertexColor && g.layout.HasColor()))
	gl.Uniform1i(r.lit.Unlit, boolToInt(mat.Unlit || !g.layout.HasNormal()))

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	// Mirroring transforms flip the apparent winding.
	if dc.World.Upper3().Det() < 0 {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}

	for _, p := range g.parts {
		gl.BindVertexArray(p.vao)
		gl.DrawElements(gl.TRIANGLES, p.count, gl.UNSIGNED_SHORT, nil)
	}
	gl.BindVertexArray(0)
	return nil
}

func (r *Renderer) lookup(h scenegraph.Handle) (*gpuMesh, error) {
	if r.lit == nil {
		return nil, ErrNotInitialized
	}
	if int(h) >= len(r.meshes) {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}
	return r.meshes[h], nil
}

func (g *gpuMesh) upload(m *mesh.Mesh) error {
	for _, part := range m.SplitForUint16() {
		p, err := uploadPart(part, g.usage)
		if err != nil {
			return err
		}
		g.parts = append(g.parts, p)
	}
	return nil
}

func (g *gpuMesh) release() {
	for _, p := range g.parts {
		gl.DeleteVertexArrays(1, &p.vao)
		gl.DeleteBuffers(1, &p.vbo)
		gl.DeleteBuffers(1, &p.ebo)
	}
	g.parts = nil
}

func uploadPart(m *mesh.Mesh, usage uint32) (gpuPart, error) {
	indices, err := m.Indices16()
	if err != nil {
		return gpuPart{}, err
	}
	p := gpuPart{vertices: m.VertexCount(), count: int32(len(indices))}
	data := m.Interleave()

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)

	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), usage)
	}

	gl.GenBuffers(1, &p.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	stride := int32(m.Layout.Stride())
	for _, a := range m.Layout.Attributes() {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride, uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return p, nil
}

func bufferUsage(u mesh.Usage) uint32 {
	if u == mesh.Dynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
