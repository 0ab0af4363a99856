// Package sdlinput is the SDL backend: joysticks and the keyboard state of a
// window, polled once per vertical retrace.
package sdlinput

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/verte-zerg/seqtrain/internal/input"
)

// JoystickOpener enumerates SDL joysticks. SDL must be initialised with
// INIT_JOYSTICK and events must be pumped for the count to change.
type JoystickOpener struct{}

// DeviceCount implements input.Opener.
func (JoystickOpener) DeviceCount() int {
	return sdl.NumJoysticks()
}

// Open implements input.Opener.
func (JoystickOpener) Open(index int) (input.Handle, error) {
	joy := sdl.JoystickOpen(index)
	if joy == nil {
		return nil, fmt.Errorf("failed to open joystick %d: %v", index, sdl.GetError())
	}
	return &joystick{joy: joy}, nil
}

type joystick struct {
	joy *sdl.Joystick
}

func (j *joystick) Name() string {
	return j.joy.Name()
}

func (j *joystick) ButtonCount() int {
	return max(j.joy.NumButtons(), 0)
}

func (j *joystick) Button(index int) bool {
	return j.joy.Button(index) != 0
}

// Hat reads the first hat only.
func (j *joystick) Hat() input.HatPosition {
	if j.joy.NumHats() < 1 {
		return input.HatCentered
	}
	return input.HatPosition(j.joy.Hat(0))
}

func (j *joystick) Close() error {
	j.joy.Close()
	return nil
}

// KeyName names a scancode the way SDL does, falling back to the built-in
// names when SDL has none.
func KeyName(key int) string {
	if name := sdl.GetScancodeName(sdl.Scancode(key)); name != "" {
		return name
	}
	return input.KeyName(key)
}

// ListJoysticks initialises the joystick subsystem just long enough to name
// the attached joysticks.
func ListJoysticks() ([]string, error) {
	if err := sdl.InitSubSystem(sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2 joysticks: %w", err)
	}
	defer sdl.QuitSubSystem(sdl.INIT_JOYSTICK)

	names := make([]string, 0, sdl.NumJoysticks())
	for i := 0; i < sdl.NumJoysticks(); i++ {
		names = append(names, sdl.JoystickNameForIndex(i))
	}
	return names, nil
}
