package viewer

import (
	"sync/atomic"
	"time"

	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/renderer"

	"objview/internal/config"
	"objview/internal/input"
)

// Render loop states.
const (
	loopIdle int32 = iota
	loopRunning
	loopStopped
)

// Run drives the render loop at the configured frame rate until Stop is
// called or the window is closed. It blocks on the calling goroutine, which
// must be the main OS thread. A second Run returns ErrAlreadyRunning; Run
// after Stop returns ErrStopped.
func (v *Viewer) Run() error {
	if !atomic.CompareAndSwapInt32(&v.state, loopIdle, loopRunning) {
		if atomic.LoadInt32(&v.state) == loopStopped {
			return ErrStopped
		}
		return ErrAlreadyRunning
	}

	v.log.Info("render loop started (%d FPS target)", config.GetFPSLimit())
	v.application.Run(v.frame)
	atomic.StoreInt32(&v.state, loopStopped)
	v.log.Info("render loop stopped")
	return nil
}

// Stop transitions the loop to its terminal state. Safe to call from any
// goroutine and more than once.
func (v *Viewer) Stop() {
	if atomic.CompareAndSwapInt32(&v.state, loopRunning, loopStopped) {
		v.application.Exit()
		return
	}
	atomic.CompareAndSwapInt32(&v.state, loopIdle, loopStopped)
}

// Running reports whether the render loop is currently active.
func (v *Viewer) Running() bool {
	return atomic.LoadInt32(&v.state) == loopRunning
}

// frame executes one render loop tick on the render thread: drain pending
// commands, apply key actions, render, then pace to the frame budget. The
// engine swaps buffers and polls events after this returns.
func (v *Viewer) frame(rend *renderer.Renderer, deltaTime time.Duration) {
	start := time.Now()

	v.drainCommands()
	v.handleActions()

	g := v.win.Gls()
	g.Clear(gls.DEPTH_BUFFER_BIT | gls.STENCIL_BUFFER_BIT | gls.COLOR_BUFFER_BIT)
	if err := rend.Render(v.scene, v.cam); err != nil {
		v.log.Error("render: %v", err)
	}

	if d := time.Since(start); d > config.FrameBudget() {
		v.log.Debug("slow frame: %v (budget %v)", d, config.FrameBudget())
	}

	v.actions.PostUpdate()
	v.limiter.Wait(config.GetFPSLimit())
}

func (v *Viewer) drainCommands() {
	for {
		select {
		case fn := <-v.commands:
			fn()
		default:
			return
		}
	}
}

func (v *Viewer) handleActions() {
	if v.actions.JustPressed(input.ActionResetView) {
		v.resetView()
	}
	if v.actions.JustPressed(input.ActionToggleVisibility) {
		v.setVisible(!v.Visible())
	}
	if v.actions.JustPressed(input.ActionClearModels) {
		v.clearModels()
	}
	if v.actions.JustPressed(input.ActionQuit) {
		v.Stop()
	}
}
