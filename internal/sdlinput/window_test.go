package sdlinput

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/verte-zerg/seqtrain/internal/input"
)

func TestTranslateEvent(t *testing.T) {
	reserved := input.DefaultReserved

	down := &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_RETURN}}
	cmds, quit := translateEvent(down, reserved)
	if quit || !cmds.Confirm || cmds.Reset {
		t.Fatalf("expected confirm, got %+v quit=%v", cmds, quit)
	}

	reset := &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_BACKSPACE}}
	if cmds, _ := translateEvent(reset, reserved); !cmds.Reset {
		t.Fatalf("expected reset")
	}

	repeat := &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_RETURN}}
	if cmds, _ := translateEvent(repeat, reserved); cmds.Confirm {
		t.Fatalf("key repeat must not confirm")
	}

	up := &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_RETURN}}
	if cmds, _ := translateEvent(up, reserved); cmds.Confirm {
		t.Fatalf("key up must not confirm")
	}

	if _, quit := translateEvent(&sdl.QuitEvent{Type: sdl.QUIT}, reserved); !quit {
		t.Fatalf("expected quit")
	}
}

func TestScancodesMatchHID(t *testing.T) {
	if int(sdl.SCANCODE_A) != input.KeyA || int(sdl.SCANCODE_RETURN) != input.KeyReturn || int(sdl.SCANCODE_BACKSPACE) != input.KeyBackspace {
		t.Fatalf("SDL scancodes diverge from the tracked key numbering")
	}
}

func TestCopyKeyboard(t *testing.T) {
	state := make([]uint8, 512)
	state[input.KeyA] = 1
	state[300] = 1
	keys := make([]bool, input.KeyCount)
	keys[input.KeySpace] = true
	copyKeyboard(keys, state)
	if !keys[input.KeyA] || keys[input.KeySpace] {
		t.Fatalf("unexpected keyboard state")
	}

	copyKeyboard(keys, state[:10])
	if !keys[input.KeyA] || keys[20] {
		t.Fatalf("short state must read released past its end")
	}
}
