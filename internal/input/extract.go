package input

// Reserved names the two keys the shells consume as commands. They never
// show up as trainable actions.
type Reserved struct {
	Confirm int
	Reset   int
}

// DefaultReserved reserves Return for confirm and Backspace for reset.
var DefaultReserved = Reserved{Confirm: KeyReturn, Reset: KeyBackspace}

// ActiveInputs lists the actions that went down on the last Update: device
// buttons and hat changes in enumeration order, then keyboard keys.
func ActiveInputs(s *Snapshot, reserved Reserved) []Action {
	var list []Action
	for di := range s.Devices {
		d := &s.Devices[di]
		for bi := range d.Buttons {
			if d.Buttons[bi].Pressed {
				list = append(list, ButtonAction(di, bi))
			}
		}
		if d.Hat != d.PreviousHat {
			list = append(list, HatAction(di, d.Hat))
		}
	}
	for k := range s.Keyboard {
		if !s.Keyboard[k].Pressed {
			continue
		}
		if k == reserved.Confirm || k == reserved.Reset {
			continue
		}
		list = append(list, KeyAction(k))
	}
	return list
}
