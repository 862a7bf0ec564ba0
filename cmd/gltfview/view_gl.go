package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glbackend"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

const flatVertexShader = `#version 410 core
in vec3 a_position;
uniform mat4 u_mvp;
out float v_depth;
void main() {
	gl_Position = u_mvp * vec4(a_position, 1.0);
	v_depth = gl_Position.z / gl_Position.w;
}
`

const flatFragmentShader = `#version 410 core
in float v_depth;
out vec4 color;
void main() {
	float shade = 1.0 - 0.5 * clamp(v_depth * 0.5 + 0.5, 0.0, 1.0);
	color = vec4(vec3(0.85, 0.8, 0.7) * shade, 1.0);
}
`

var flatDraw = renderer.DrawOptions{PositionAttribute: "a_position", MVPUniform: "u_mvp"}

// glViewer owns the window loop state. All fields are touched only from the window thread.
type glViewer struct {
	cfg     config
	gl      *glbackend.Context
	program common.Program
	cam     camera.Camera

	loader loader.Loader
	name   string
	model  *model
	// primitives is the per-frame primitive count of model.
	primitives int

	spin bool
	prof *profiler.Profiler
	// drawErr stops drawing the current model after its first failure.
	drawErr error
}

func runWindow(ctx context.Context, cfg config) error {
	win, err := window.NewWindow(
		window.WithTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, filepath.Base(cfg.Model))),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithVSync(cfg.Window.VSync),
		window.WithGraphicsAPI(window.GraphicsAPIOpenGL),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	glc, err := glbackend.NewContext()
	if err != nil {
		return err
	}
	defer glc.Release()

	program, err := renderer.CreateProgram(glc, flatVertexShader, flatFragmentShader)
	if err != nil {
		return err
	}

	l, name, err := newLoader(cfg)
	if err != nil {
		return err
	}
	v := &glViewer{
		cfg:     cfg,
		gl:      glc,
		program: program,
		cam:     camera.NewCamera(),
		loader:  l,
		name:    name,
	}
	if cfg.Profile {
		v.prof = profiler.NewProfiler()
	}
	v.resize(win.Width(), win.Height())
	if err := v.load(ctx, cfg.Scene); err != nil {
		return err
	}

	var changed <-chan struct{}
	if cfg.Watch && cfg.BaseURL == "" {
		if changed, err = watchFile(ctx, cfg.Model); err != nil {
			log.Printf("[Viewer] not watching %s: %v", cfg.Model, err)
		}
	}

	win.SetResizeCallback(v.resize)
	win.SetScrollCallback(func(delta float32) { v.cam.Zoom(delta) })
	win.SetDragCallback(func(dx, dy float32) { v.cam.Drag(dx, dy) })
	win.SetKeyDownCallback(func(key uint32) { v.key(ctx, key) })
	win.SetDropCallback(func(paths []string) {
		if len(paths) > 0 {
			v.open(ctx, paths[0])
		}
	})
	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			win.Close()
			return
		}
		select {
		case <-changed:
			v.reload(ctx)
		default:
		}
		if v.spin {
			v.cam.Orbit(0.01, 0)
		}
		drawn := v.draw()
		if v.prof != nil {
			v.prof.Tick(drawn)
		}
	})

	win.ProcessMessages()
	return nil
}

func (v *glViewer) resize(width, height int) {
	v.gl.Viewport(int32(width), int32(height))
	if height > 0 {
		v.cam.SetAspect(float32(width) / float32(height))
	}
}

func (v *glViewer) key(ctx context.Context, key uint32) {
	switch key {
	case common.KeyEqual:
		v.cam.Zoom(1)
	case common.KeyMinus:
		v.cam.Zoom(-1)
	case common.KeySpace:
		v.spin = !v.spin
	case common.KeyR:
		v.reload(ctx)
	case common.KeyN:
		if n := len(v.model.doc.Scenes); n > 1 {
			if err := v.load(ctx, (v.model.sceneIndex+1)%n); err != nil {
				log.Printf("[Viewer] %v", err)
			}
		}
	case common.KeyO:
		if err := printOutline(v.cfg.Outline, v.model); err != nil {
			log.Printf("[Viewer] outline: %v", err)
		}
	}
}

// load resolves scene index of the current model, uploads its buffer views and frames it.
// The cached document is reused; use reload to fetch it again.
func (v *glViewer) load(ctx context.Context, index int) error {
	m, err := loadModel(ctx, v.loader, v.name, index)
	if err != nil {
		return err
	}
	if err := renderer.SliceScene(v.gl, m.scene, m.buffers()); err != nil {
		return fmt.Errorf("%s: %w", v.name, err)
	}
	if err := printOutline(v.cfg.Outline, m); err != nil {
		log.Printf("[Viewer] outline: %v", err)
	}
	if textures := uploadImages(ctx, v.gl, v.loader, m); len(textures) > 0 {
		log.Printf("[Viewer] %s: uploaded %d of %d images", v.name, len(textures), len(m.doc.Images))
	}

	if lo, hi, ok := m.scene.Bounds(); ok {
		v.cam.Frame(lo, hi)
	} else {
		v.cam.Frame(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	}
	v.model = m
	v.primitives = m.primitives()
	v.drawErr = nil
	return nil
}

// reload evicts the model from the loader cache and loads it again, keeping the old model on failure.
func (v *glViewer) reload(ctx context.Context) {
	v.loader.Evict(v.name)
	index := -1
	if v.model != nil {
		index = v.model.sceneIndex
	}
	if err := v.load(ctx, index); err != nil {
		log.Printf("[Viewer] reload %s: %v", v.name, err)
		return
	}
	log.Printf("[Viewer] reloaded %s", v.name)
}

// open switches to a dropped local file.
func (v *glViewer) open(ctx context.Context, path string) {
	cfg := v.cfg
	cfg.Model = path
	cfg.BaseURL = ""
	l, name, err := newLoader(cfg)
	if err != nil {
		log.Printf("[Viewer] open %s: %v", path, err)
		return
	}
	prevLoader, prevName := v.loader, v.name
	v.loader, v.name = l, name
	if err := v.load(ctx, -1); err != nil {
		log.Printf("[Viewer] open %s: %v", path, err)
		v.loader, v.name = prevLoader, prevName
		return
	}
	v.cfg = cfg
}

// draw clears the frame and draws the current model, returning the number of primitives drawn.
func (v *glViewer) draw() int {
	v.gl.Clear(mgl32.Vec4(v.cfg.Window.Clear))
	if v.model == nil || v.drawErr != nil {
		return 0
	}
	if err := renderer.DrawScene(v.gl, v.program, v.model.scene, v.cam.ViewProjection(), flatDraw); err != nil {
		log.Printf("[Viewer] draw %s: %v", v.name, err)
		v.drawErr = err
		return 0
	}
	return v.primitives
}
