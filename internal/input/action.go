// Package input unifies keyboards, joysticks and MIDI devices into edge-triggered actions.
package input

import "fmt"

// Kind identifies which payload of an Action is set.
type Kind int

const (
	KindButton Kind = iota
	KindHat
	KindKey
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindHat:
		return "hat"
	case KindKey:
		return "key"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HatPosition is a directional-pad position. Values match SDL hat bits.
type HatPosition uint8

const (
	HatCentered  HatPosition = 0x00
	HatUp        HatPosition = 0x01
	HatRight     HatPosition = 0x02
	HatDown      HatPosition = 0x04
	HatLeft      HatPosition = 0x08
	HatRightUp               = HatRight | HatUp
	HatRightDown             = HatRight | HatDown
	HatLeftUp                = HatLeft | HatUp
	HatLeftDown              = HatLeft | HatDown
)

// Numpad returns the position in numpad notation, 5 being centered.
func (h HatPosition) Numpad() rune {
	switch h {
	case HatCentered:
		return '5'
	case HatRight:
		return '6'
	case HatRightDown:
		return '3'
	case HatDown:
		return '2'
	case HatLeftDown:
		return '1'
	case HatLeft:
		return '4'
	case HatLeftUp:
		return '7'
	case HatUp:
		return '8'
	case HatRightUp:
		return '9'
	default:
		return ' '
	}
}

// Action identifies one logical input source. Only the fields belonging to
// Kind are meaningful.
type Action struct {
	Kind   Kind
	Device int
	Button int
	Hat    HatPosition
	Key    int
}

// ButtonAction builds a device button action.
func ButtonAction(device, button int) Action {
	return Action{Kind: KindButton, Device: device, Button: button}
}

// HatAction builds a directional-pad action.
func HatAction(device int, pos HatPosition) Action {
	return Action{Kind: KindHat, Device: device, Hat: pos}
}

// KeyAction builds a keyboard action.
func KeyAction(key int) Action {
	return Action{Kind: KindKey, Key: key}
}

// Equal reports whether a and b name the same physical input.
func Equal(a, b Action) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindButton:
		return a.Device == b.Device && a.Button == b.Button
	case KindHat:
		return a.Device == b.Device && a.Hat == b.Hat
	case KindKey:
		return a.Key == b.Key
	default:
		return false
	}
}

// FromDevice reports whether the action was produced by the given device slot.
func (a Action) FromDevice(device int) bool {
	return a.Kind != KindKey && a.Device == device
}

// String returns a compact identifier such as "j0b3", "j1h8" or "k4".
func (a Action) String() string {
	switch a.Kind {
	case KindButton:
		return fmt.Sprintf("j%db%d", a.Device, a.Button)
	case KindHat:
		return fmt.Sprintf("j%dh%c", a.Device, a.Hat.Numpad())
	case KindKey:
		return fmt.Sprintf("k%d", a.Key)
	default:
		return "?"
	}
}
