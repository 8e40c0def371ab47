// Package viewer implements the interactive creature viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/sculpt/internal/config"
	"github.com/Faultbox/sculpt/internal/creature"
	"github.com/Faultbox/sculpt/internal/engine/camera"
	"github.com/Faultbox/sculpt/internal/engine/debug"
	"github.com/Faultbox/sculpt/internal/engine/input"
	"github.com/Faultbox/sculpt/internal/engine/picking"
	"github.com/Faultbox/sculpt/internal/engine/renderer"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/internal/engine/window"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

var boundsColor = math.Vec3{X: 1, Y: 0.85, Z: 0.2}

// Viewer owns the window, the renderer and the creature rig.
type Viewer struct {
	config   *config.Config
	running  bool
	paused   bool
	elapsed  float32
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture

	rig      *creature.Rig
	bounds   scenegraph.NodeID
	selected scenegraph.NodeID
}

// New creates the window and GL context, builds the creature and uploads it.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config:   cfg,
		log:      logger.Named("viewer"),
		bounds:   scenegraph.None,
		selected: scenegraph.None,
	}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.Render.ClearColor,
		Light:      cfg.Render.Light,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if cfg.Render.Wireframe {
		v.renderer.ToggleWireframe()
	}

	v.rig, err = creature.Build(cfg.Creature)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to build creature: %w", err)
	}
	v.addBoundsBox()
	if err := v.rig.Graph.Setup(v.renderer); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to upload creature: %w", err)
	}

	v.camera = camera.NewOrbitCamera()
	v.camera.AutoOrbit = cfg.Render.AutoOrbit
	v.camera.FitToBounds(v.rig.Bounds())

	v.input = input.New()
	v.shots = debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "sculpt")

	vertices, triangles := v.rig.Stats()
	v.log.Info("viewer initialized",
		zap.Int("vertices", vertices),
		zap.Int("triangles", triangles))
	return v, nil
}

// addBoundsBox attaches a hidden outline of the rest pose as its own root.
func (v *Viewer) addBoundsBox() {
	box := debug.BoundsBox(v.rig.Bounds(), debug.DefaultBoundsPadding, boundsColor)
	if box.TriangleCount() == 0 {
		return
	}
	v.bounds = v.rig.Graph.AddRoot("bounds", math.Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}})
	mat := scenegraph.Material{UseVertexColor: true, Unlit: true}
	if err := v.rig.Graph.SetMesh(v.bounds, box, mat); err != nil {
		v.log.Warn("attaching bounds box", zap.Error(err))
		return
	}
	if err := v.rig.Graph.SetVisible(v.bounds, v.config.Render.ShowBounds); err != nil {
		v.log.Warn("showing bounds box", zap.Error(err))
	}
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		if err := v.update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventKeyDown:
			v.handleKey(event.Key)
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_RIGHT {
				v.pick(event.MouseX, event.MouseY)
			}
		}
	}

	if dx, dy := v.input.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		v.camera.HandleDrag(dx, dy)
	}
	if wheel := v.input.Wheel(); wheel != 0 {
		v.camera.HandleZoom(wheel)
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_W:
		v.log.Info("wireframe", zap.Bool("on", v.renderer.ToggleWireframe()))
	case sdl.SCANCODE_G:
		if err := v.rig.SetGizmoVisible(!v.rig.GizmoVisible()); err != nil {
			v.log.Warn("toggling gizmo", zap.Error(err))
		}
	case sdl.SCANCODE_B:
		v.toggleBounds()
	case sdl.SCANCODE_H:
		v.toggleSelected()
	case sdl.SCANCODE_SPACE:
		v.paused = !v.paused
	case sdl.SCANCODE_R:
		v.camera.FitToBounds(v.rig.Bounds())
	case sdl.SCANCODE_F12:
		v.screenshot()
	}
}

func (v *Viewer) toggleBounds() {
	if v.bounds == scenegraph.None {
		return
	}
	node, err := v.rig.Graph.Node(v.bounds)
	if err != nil {
		return
	}
	if err := v.rig.Graph.SetVisible(v.bounds, !node.Visible); err != nil {
		v.log.Warn("toggling bounds", zap.Error(err))
	}
}

// pick selects the part under the cursor. Mouse coordinates are in window
// points and are scaled to drawable pixels first.
func (v *Viewer) pick(x, y int) {
	ww, wh := v.window.GetSize()
	dw, dh := v.renderer.Size()
	if ww == 0 || wh == 0 {
		return
	}
	px := float32(x) * float32(dw) / float32(ww)
	py := float32(y) * float32(dh) / float32(wh)

	ray, ok := picking.ScreenToRay(px, py, dw, dh, v.camera.ViewProjection(dw, dh))
	if !ok {
		return
	}
	hit, ok := picking.Pick(v.rig.Graph, ray)
	if !ok {
		v.selected = scenegraph.None
		v.log.Debug("pick missed")
		return
	}
	v.selected = hit.Node
	point := hit.Point.Array()
	v.log.Info("picked",
		zap.String("node", hit.Name),
		zap.Float32("distance", hit.Distance),
		zap.Float32s("point", point[:]))
}

// toggleSelected hides or shows the last picked part.
func (v *Viewer) toggleSelected() {
	if v.selected == scenegraph.None {
		return
	}
	node, err := v.rig.Graph.Node(v.selected)
	if err != nil {
		return
	}
	if err := v.rig.Graph.SetVisible(v.selected, !node.Visible); err != nil {
		v.log.Warn("toggling selection", zap.String("node", node.Name), zap.Error(err))
	}
}

// screenshot captures the frame drawn last, which is still in the back buffer.
func (v *Viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) update(dt float32) error {
	v.camera.Update(dt)
	if v.paused {
		return nil
	}
	v.elapsed += dt
	if err := v.rig.Animate(v.elapsed); err != nil {
		return err
	}
	return v.rig.Graph.SyncDynamic(v.renderer)
}

func (v *Viewer) render() error {
	width, height := v.renderer.Size()
	v.renderer.SetCamera(v.camera.ViewProjection(width, height), v.camera.Position())

	if err := v.renderer.Begin(); err != nil {
		return err
	}
	defer v.renderer.End()
	return v.rig.Graph.Render(v.renderer, math.Identity())
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
