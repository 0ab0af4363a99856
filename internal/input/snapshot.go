package input

import "errors"

// ButtonState holds the edge and level state of one button or key.
type ButtonState struct {
	Pressed bool // true only on the tick the input went down
	Down    bool // true while the input is held
}

func (b *ButtonState) update(isDown bool) {
	if isDown {
		b.Pressed = !b.Down
		b.Down = true
		return
	}
	b.Pressed = false
	b.Down = false
}

// Handle is an open input device. Implementations are provided by the shells
// (SDL joysticks, MIDI ports) and report raw held state when asked.
type Handle interface {
	Name() string
	ButtonCount() int
	Button(index int) bool
	Hat() HatPosition
	Close() error
}

// Opener enumerates and opens input devices.
type Opener interface {
	DeviceCount() int
	Open(index int) (Handle, error)
}

// Device is the per-tick state of one enumerated device slot.
type Device struct {
	Name        string
	Buttons     []ButtonState
	Hat         HatPosition
	PreviousHat HatPosition

	handle Handle
}

// Opened reports whether the slot holds an open device.
func (d *Device) Opened() bool {
	return d.handle != nil
}

// Snapshot owns every open device handle and the edge state derived from them.
type Snapshot struct {
	Keyboard [KeyCount]ButtonState
	Devices  []Device

	count int
}

// NewSnapshot returns an empty snapshot with no devices.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Reconcile rebuilds all device state when the enumerated device count has
// changed since the last call. Every handle is closed and every slot reopened,
// including devices that did not change. A slot that fails to open stays in
// the list with no buttons. Reports whether a rebuild happened.
func (s *Snapshot) Reconcile(opener Opener) (bool, error) {
	count := opener.DeviceCount()
	if count < 0 {
		count = 0
	}
	if count == s.count && len(s.Devices) == count {
		return false, nil
	}

	closeErr := s.closeDevices()

	s.count = count
	s.Devices = make([]Device, count)
	var openErrs []error
	for i := range s.Devices {
		h, err := opener.Open(i)
		if err != nil || h == nil {
			if err != nil {
				openErrs = append(openErrs, err)
			}
			continue
		}
		s.Devices[i] = Device{
			Name:    h.Name(),
			Buttons: make([]ButtonState, h.ButtonCount()),
			handle:  h,
		}
	}
	return true, errors.Join(append([]error{closeErr}, openErrs...)...)
}

// Update recomputes edge state for every device and key. keys holds the raw
// held state per scancode; slots past its end read as released.
func (s *Snapshot) Update(keys []bool) {
	for i := range s.Devices {
		d := &s.Devices[i]
		for b := range d.Buttons {
			d.Buttons[b].update(d.handle.Button(b))
		}
		d.PreviousHat = d.Hat
		if d.handle != nil {
			d.Hat = d.handle.Hat()
		} else {
			d.Hat = HatCentered
		}
	}
	for k := range s.Keyboard {
		down := false
		if k < len(keys) {
			down = keys[k]
		}
		s.Keyboard[k].update(down)
	}
}

// Close releases every device handle and forgets the device list.
func (s *Snapshot) Close() error {
	err := s.closeDevices()
	s.Devices = nil
	s.count = 0
	return err
}

func (s *Snapshot) closeDevices() error {
	var errs []error
	for i := range s.Devices {
		if s.Devices[i].handle == nil {
			continue
		}
		if err := s.Devices[i].handle.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Devices[i].handle = nil
	}
	return errors.Join(errs...)
}

// MultiOpener presents several openers as one enumeration, in order.
type MultiOpener []Opener

// DeviceCount implements Opener.
func (m MultiOpener) DeviceCount() int {
	total := 0
	for _, o := range m {
		total += o.DeviceCount()
	}
	return total
}

// Open implements Opener.
func (m MultiOpener) Open(index int) (Handle, error) {
	for _, o := range m {
		n := o.DeviceCount()
		if index < n {
			return o.Open(index)
		}
		index -= n
	}
	return nil, errors.New("device index out of range")
}
