package viewer

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/g3n/engine/app"
	"github.com/g3n/engine/camera"
	"github.com/g3n/engine/core"
	"github.com/g3n/engine/light"
	"github.com/g3n/engine/loader/obj"
	"github.com/g3n/engine/math32"
	"github.com/g3n/engine/util/logger"
	"github.com/g3n/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"objview/internal/event"
	"objview/internal/input"
)

// Fixed viewer geometry. Height always follows width at 16:9.
const (
	aspectNumerator   = 16
	aspectDenominator = 9
	viewAspect        = float32(aspectNumerator) / float32(aspectDenominator)

	fieldOfView    = 45.0
	nearPlane      = 1.0
	farPlane       = 2500.0
	cameraDistance = 250.0

	orbitRotateSpeed = 5.0
	orbitZoomSpeed   = 3.2

	defaultWidth     = 1600
	commandQueueSize = 64
)

var (
	// ErrBadWidth is returned for a non-positive initial window width.
	ErrBadWidth = errors.New("window width must be positive")
	// ErrAlreadyRunning is returned when Run is called on a running loop.
	ErrAlreadyRunning = errors.New("render loop already running")
	// ErrStopped is returned when Run is called after Stop.
	ErrStopped = errors.New("render loop already stopped")

	errQueueFull = errors.New("command queue full")
)

// Viewport holds the current output surface dimensions in screen points.
type Viewport struct {
	Width  int
	Height int
}

// Options configures a new Viewer.
type Options struct {
	Title string
	Width int // initial window width; 0 means the 1600 default
	Debug bool

	// Bus, when non-nil, is used instead of a fresh event bus. Subscribers
	// wired onto it before New observe the "loaded" event, which fires
	// during construction.
	Bus *event.Bus
}

// Viewer owns the rendering window, camera, scene graph root, lighting and
// orbit controls, and orchestrates asset loading into the scene. All scene
// mutation happens on the render thread; calls arriving from other
// goroutines are funneled through the command queue.
type Viewer struct {
	log *logger.Logger
	bus *event.Bus

	application *app.Application
	win         *window.GlfwWindow
	scene       *core.Node
	cam         *camera.Camera
	orbit       *camera.OrbitControl
	actions     *input.Manager

	state    int32 // render loop state, accessed atomically
	commands chan func()
	limiter  *fpsLimiter
	assets   *fetcher

	mu       sync.Mutex
	viewport Viewport
	pointer  mgl32.Vec2
	visible  bool
	models   []*core.Node
	decoded  map[string]*obj.Decoder
}

// New creates the viewer window and all owned render resources, wires the
// resize, cursor and key listeners, and emits the "loaded" event. It must be
// called from the main OS thread.
func New(opts Options) (*Viewer, error) {
	width := opts.Width
	if width == 0 {
		width = defaultWidth
	}
	if width < 0 {
		return nil, ErrBadWidth
	}
	title := opts.Title
	if title == "" {
		title = "objview"
	}

	log := logger.New("objview", logger.Default)
	if opts.Debug {
		log.SetLevel(logger.DEBUG)
	} else {
		log.SetLevel(logger.INFO)
	}

	a := app.App()
	win, ok := a.IWindow.(*window.GlfwWindow)
	if !ok {
		return nil, errors.New("no desktop window available")
	}

	assets, err := newFetcher()
	if err != nil {
		return nil, err
	}

	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus()
	}

	v := &Viewer{
		log:         log,
		bus:         bus,
		application: a,
		win:         win,
		scene:       core.NewNode(),
		actions:     input.NewManager(),
		commands:    make(chan func(), commandQueueSize),
		limiter:     &fpsLimiter{},
		assets:      assets,
		visible:     true,
		decoded:     make(map[string]*obj.Decoder),
	}

	win.SetTitle(title)

	// Camera at +Z looking down the view axis toward the scene origin.
	v.cam = camera.NewPerspective(viewAspect, nearPlane, farPlane, fieldOfView, camera.Vertical)
	v.cam.SetPosition(0, 0, cameraDistance)
	v.scene.Add(v.cam)

	v.scene.Add(light.NewAmbient(&math32.Color{R: 1, G: 1, B: 1}, 0.5))

	// Point light attached to the camera so it rides along with orbiting.
	point := light.NewPoint(&math32.Color{R: 1, G: 1, B: 1}, 1.0)
	point.SetPosition(0, 0, 0)
	v.cam.Add(point)

	v.orbit = camera.NewOrbitControl(v.cam)
	v.orbit.SetEnabled(camera.OrbitRot | camera.OrbitZoom)
	v.orbit.RotSpeed = orbitRotateSpeed
	v.orbit.ZoomSpeed = orbitZoomSpeed
	v.orbit.MinDistance = nearPlane * 2
	v.orbit.MaxDistance = farPlane * 0.8

	// Pacing is owned by the FPS limiter, not the display sync.
	glfw.SwapInterval(0)

	v.win.Gls().ClearColor(0.12, 0.12, 0.14, 1.0)

	a.Subscribe(window.OnWindowSize, func(evname string, ev interface{}) {
		w, _ := v.win.GetSize()
		v.applySize(w)
	})
	a.Subscribe(window.OnCursor, v.onCursor)
	a.Subscribe(window.OnKeyDown, func(evname string, ev interface{}) {
		kev := ev.(*window.KeyEvent)
		v.actions.HandleKeyEvent(kev.Key, true)
	})
	a.Subscribe(window.OnKeyUp, func(evname string, ev interface{}) {
		kev := ev.(*window.KeyEvent)
		v.actions.HandleKeyEvent(kev.Key, false)
	})

	// Height is derived before any window mutation.
	v.applySize(width)

	v.bus.Emit(event.Loaded, v)
	return v, nil
}

// Events returns the viewer's event bus. Subscribers receive "model-loaded"
// and "model-load-failed" notifications. The "loaded" event fires once
// inside New, so only subscribers on a bus passed through Options see it.
func (v *Viewer) Events() *event.Bus {
	return v.bus
}

// Actions returns the key/action binding table.
func (v *Viewer) Actions() *input.Manager {
	return v.actions
}

// applySize recomputes the viewport from the given width, reapplies the
// derived height to the window, reasserts the camera aspect and resets the
// GL viewport. Idempotent under repeated resize events.
func (v *Viewer) applySize(width int) {
	if width <= 0 {
		return
	}
	vp := Viewport{Width: width, Height: viewportHeight(width)}

	v.mu.Lock()
	v.viewport = vp
	v.mu.Unlock()

	if _, h := v.win.GetSize(); h != vp.Height {
		v.win.SetSize(vp.Width, vp.Height)
	}

	sx, sy := v.win.GetScale()
	v.win.Gls().Viewport(0, 0, int32(float64(vp.Width)*sx), int32(float64(vp.Height)*sy))
	v.cam.SetAspect(viewAspect)
}

func (v *Viewer) onCursor(evname string, ev interface{}) {
	cev := ev.(*window.CursorEvent)

	v.mu.Lock()
	// Observational state only; nothing downstream consumes it yet.
	v.pointer = pointerFromCursor(cev.Xpos, cev.Ypos, v.viewport)
	v.mu.Unlock()
}

// Viewport returns the current output surface dimensions.
func (v *Viewer) Viewport() Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport
}

// PointerPosition returns the last pointer position relative to the
// viewport center.
func (v *Viewer) PointerPosition() mgl32.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pointer
}

// Visible reports whether the window is currently shown.
func (v *Viewer) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Show makes the window visible. Scene contents, camera and renderer size
// are untouched. Takes effect on the next frame.
func (v *Viewer) Show() {
	v.enqueue(func() { v.setVisible(true) })
}

// Hide hides the window without tearing down any owned resource.
func (v *Viewer) Hide() {
	v.enqueue(func() { v.setVisible(false) })
}

// setVisible runs on the render thread.
func (v *Viewer) setVisible(visible bool) {
	if visible {
		v.win.Window.Show()
	} else {
		v.win.Window.Hide()
	}
	v.mu.Lock()
	v.visible = visible
	v.mu.Unlock()
}

// ModelCount returns the number of loaded top-level model nodes.
func (v *Viewer) ModelCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.models)
}

// ClearModels removes every loaded model from the scene on the next frame.
func (v *Viewer) ClearModels() {
	v.enqueue(v.clearModels)
}

// clearModels runs on the render thread.
func (v *Viewer) clearModels() {
	v.mu.Lock()
	models := v.models
	v.models = nil
	v.mu.Unlock()

	for _, m := range models {
		v.scene.Remove(m)
	}
	if len(models) > 0 {
		v.log.Debug("removed %d model(s) from scene", len(models))
	}
}

// resetView restores the default orbit pose: camera on the +Z axis at the
// initial distance, facing the scene origin.
func (v *Viewer) resetView() {
	v.cam.SetPosition(0, 0, cameraDistance)
	v.cam.SetRotation(0, 0, 0)
}

// Dispose releases the download cache directory. The window itself is torn
// down by the frame loop on exit.
func (v *Viewer) Dispose() {
	v.assets.dispose()
}

// enqueue hands fn to the render thread. It fails once the loop has stopped
// and nothing drains the queue anymore, or when the queue is saturated.
// Callers that promise completion to third parties must surface the error.
func (v *Viewer) enqueue(fn func()) error {
	if atomic.LoadInt32(&v.state) == loopStopped {
		return ErrStopped
	}
	select {
	case v.commands <- fn:
		return nil
	default:
		v.log.Error("command queue full, dropping command")
		return errQueueFull
	}
}

// viewportHeight derives the surface height from its width at the fixed
// 16:9 aspect. Integer math keeps the invariant exact for common widths.
func viewportHeight(width int) int {
	return width * aspectDenominator / aspectNumerator
}

// pointerFromCursor maps a cursor position to the halved delta from the
// viewport center.
func pointerFromCursor(x, y float32, vp Viewport) mgl32.Vec2 {
	return mgl32.Vec2{
		(x - float32(vp.Width)/2) / 2,
		(y - float32(vp.Height)/2) / 2,
	}
}
