// Package renderer presents swarm snapshots: in a raylib window, or nowhere
// for headless runs.
package renderer

import (
	"errors"
	"sync/atomic"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/paulmach/orb"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/components"
)

// ErrWindowClosed is returned by Present once the window is gone.
var ErrWindowClosed = errors.New("window closed")

const hudHeight = 24

// WindowConfig configures the raylib window.
type WindowConfig struct {
	Width, Height int
	Title         string
	Arena         orb.Bound
	ShowHUD       bool
}

// Window draws every agent as a single pixel on black and reports the close
// button, Escape and the HUD stop button as stop requests.
//
// raylib is not thread safe: all methods, including NewWindow, must run on the
// goroutine that owns the OS main thread.
type Window struct {
	cam     *camera.Camera
	arena   orb.Bound
	showHUD bool

	stop   atomic.Bool
	frames int
	last   time.Time
	fps    float64
}

// NewWindow opens the window.
func NewWindow(cfg WindowConfig) *Window {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), cfg.Title)
	return &Window{
		cam:     camera.New(float64(cfg.Width), float64(cfg.Height), cfg.Arena),
		arena:   cfg.Arena,
		showHUD: cfg.ShowHUD,
	}
}

// Present draws one frame. The snapshot is not retained.
func (w *Window) Present(snap components.Snapshot) error {
	if !rl.IsWindowReady() {
		return ErrWindowClosed
	}
	w.handleCamera()

	now := time.Now()
	if !w.last.IsZero() {
		w.fps = smoothFPS(w.fps, now.Sub(w.last))
	}
	w.last = now
	w.frames++

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w.drawArena()
	for _, e := range snap {
		if !w.cam.IsVisible(e.Position, 1) {
			continue
		}
		sx, sy := w.cam.WorldToScreen(e.Position)
		rl.DrawRectangle(int32(sx), int32(sy), 1, 1, toColor(e.Color))
	}

	if w.showHUD {
		w.drawHUD(len(snap))
	}
	rl.EndDrawing()
	return nil
}

// PollStopRequested reports whether the user asked to quit.
func (w *Window) PollStopRequested() bool {
	return w.stop.Load() || rl.WindowShouldClose()
}

// Close destroys the window.
func (w *Window) Close() {
	rl.CloseWindow()
}

// handleCamera applies zoom (wheel), pan (right drag) and reset (R).
func (w *Window) handleCamera() {
	if rl.IsWindowResized() {
		w.cam.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.cam.ZoomBy(1 + 0.1*float64(wheel))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		w.cam.Pan(-float64(d.X), -float64(d.Y))
	}
	if rl.IsKeyPressed(rl.KeyR) {
		w.cam.Reset()
	}
}

func (w *Window) drawArena() {
	x0, y0 := w.cam.WorldToScreen(pointVec(w.arena.Min))
	x1, y1 := w.cam.WorldToScreen(pointVec(w.arena.Max))
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.DarkGray)
}

func (w *Window) drawHUD(agents int) {
	width := float32(rl.GetScreenWidth())
	y := float32(rl.GetScreenHeight() - hudHeight)

	gui.StatusBar(rl.Rectangle{X: 0, Y: y, Width: width - 80, Height: hudHeight},
		statusText(w.frames, agents, w.fps, w.cam.Zoom))
	if gui.Button(rl.Rectangle{X: width - 80, Y: y, Width: 80, Height: hudHeight}, "Stop") {
		w.stop.Store(true)
	}
}

func toColor(c components.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, 255)
}
