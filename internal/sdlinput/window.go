package sdlinput

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/logging"
	"github.com/verte-zerg/seqtrain/internal/shell"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

const (
	windowTitle  = "seqtrain"
	windowWidth  = 320
	windowHeight = 120
)

// Options configure the SDL loop.
type Options struct {
	// TickRate paces the loop in Hz when vsync is unavailable.
	TickRate int
	Log      *slog.Logger
}

// Window is the SDL window that receives keyboard focus. Its GL context is
// only used to pace the loop with buffer swaps.
type Window struct {
	window    *sdl.Window
	glContext sdl.GLContext
	ticker    *time.Ticker
	log       *slog.Logger
}

// NewWindow initialises SDL and opens the window. It must be called from the
// goroutine that runs the loop.
func NewWindow(opts Options) (*Window, error) {
	runtime.LockOSThread()

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(windowTitle, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, windowWidth, windowHeight, sdl.WINDOW_OPENGL)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	w := &Window{window: window, log: log}

	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	w.glContext, err = window.GLCreateContext()
	if err != nil {
		w.Destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %w", err)
	}
	if err := window.GLMakeCurrent(w.glContext); err != nil {
		w.Destroy()
		return nil, fmt.Errorf("failed to set current OpenGL context: %w", err)
	}

	if err := sdl.GLSetSwapInterval(1); err != nil {
		rate := opts.TickRate
		if rate <= 0 {
			rate = 60
		}
		log.Warn("vsync unavailable, pacing with ticker", "err", err, "tick_rate", rate)
		_ = sdl.GLSetSwapInterval(0)
		w.ticker = time.NewTicker(time.Second / time.Duration(rate))
	}
	return w, nil
}

// Destroy releases the window and shuts SDL down.
func (w *Window) Destroy() {
	if w.ticker != nil {
		w.ticker.Stop()
		w.ticker = nil
	}
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
		w.glContext = nil
	}
	if w.window != nil {
		_ = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

// Run drives the session once per frame until the window is closed or ctx
// is done.
func (w *Window) Run(ctx context.Context, s *shell.Session, reserved input.Reserved) error {
	keys := make([]bool, input.KeyCount)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var cmds trainer.Commands
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			c, quit := translateEvent(ev, reserved)
			if quit {
				return nil
			}
			cmds.Confirm = cmds.Confirm || c.Confirm
			cmds.Reset = cmds.Reset || c.Reset
		}

		copyKeyboard(keys, sdl.GetKeyboardState())
		s.Step(keys, cmds)

		w.window.GLSwap()
		if w.ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-w.ticker.C:
			}
		}
	}
}

// translateEvent maps an SDL event to trainer commands. Commands fire on the
// first keydown only, never on key repeat.
func translateEvent(ev sdl.Event, reserved input.Reserved) (trainer.Commands, bool) {
	var cmds trainer.Commands
	switch ev := ev.(type) {
	case *sdl.QuitEvent:
		return cmds, true
	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
			return cmds, false
		}
		switch int(ev.Keysym.Scancode) {
		case reserved.Confirm:
			cmds.Confirm = true
		case reserved.Reset:
			cmds.Reset = true
		}
	}
	return cmds, false
}

// copyKeyboard converts SDL's keyboard state into held flags, truncated to
// the tracked scancode range.
func copyKeyboard(dst []bool, state []uint8) {
	for i := range dst {
		dst[i] = i < len(state) && state[i] != 0
	}
}
