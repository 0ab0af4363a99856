// Package midiinput exposes MIDI in-ports as trainer input devices. Each
// port is one device with a button per note number; ports have no hat.
package midiinput

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/verte-zerg/seqtrain/internal/input"
)

// NoteCount is the number of buttons a MIDI device reports.
const NoteCount = 128

const (
	// ScanInterval is how often Watch refreshes the port list.
	ScanInterval = 2 * time.Second
	scanTimeout  = 3 * time.Second
)

// Opener serves MIDI in-ports from a cached port list. The list is filled by
// Scan and refreshed in the background by Watch, so the tick loop never
// enumerates ports itself. The driver is registered by the binary with a
// blank import.
type Opener struct {
	ports   func() gomidi.InPorts
	timeout time.Duration

	mu     sync.RWMutex
	cached gomidi.InPorts
}

// NewOpener returns an opener over the driver's in-ports with the port list
// already scanned once.
func NewOpener() *Opener {
	o := newOpener(gomidi.GetInPorts)
	o.Scan()
	return o
}

func newOpener(ports func() gomidi.InPorts) *Opener {
	return &Opener{ports: ports, timeout: scanTimeout}
}

// Scan enumerates the in-ports and replaces the cached list. Drivers can
// hang while enumerating; after the timeout the scan is abandoned, the
// cache is left as it was and false is returned.
func (o *Opener) Scan() bool {
	ch := make(chan gomidi.InPorts, 1)
	go func() {
		ch <- o.ports()
	}()

	select {
	case ins := <-ch:
		o.mu.Lock()
		o.cached = ins
		o.mu.Unlock()
		return true
	case <-time.After(o.timeout):
		return false
	}
}

// Watch rescans the port list every interval until ctx is done. It blocks;
// run it in a goroutine.
func (o *Opener) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Scan()
		}
	}
}

// DeviceCount implements input.Opener.
func (o *Opener) DeviceCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.cached)
}

// Open implements input.Opener.
func (o *Opener) Open(index int) (input.Handle, error) {
	o.mu.RLock()
	ins := o.cached
	o.mu.RUnlock()
	if index < 0 || index >= len(ins) {
		return nil, fmt.Errorf("midi port %d out of range", index)
	}
	port := ins[index]
	h := &Handle{name: port.String()}
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, _ int32) {
		h.consume(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on midi port %q: %w", port.String(), err)
	}
	h.stop = stop
	return h, nil
}

// List returns the names of the available in-ports.
func List() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// CloseDriver releases the registered driver.
func CloseDriver() {
	gomidi.CloseDriver()
}

// Handle is an open MIDI in-port. Note state is written by the driver's
// listener goroutine and read by the tick loop.
//
// A note struck and released between two reads is still reported down for
// one read, and a note struck again while reported down reads released once
// first, so every note on yields one pressed edge. Button is expected to be
// read once per tick.
type Handle struct {
	name string
	stop func()

	mu       sync.Mutex
	notes    [NoteCount]bool
	struck   [NoteCount]bool
	reported [NoteCount]bool
}

// Name implements input.Handle.
func (h *Handle) Name() string {
	return h.name
}

// ButtonCount implements input.Handle.
func (h *Handle) ButtonCount() int {
	return NoteCount
}

// Button implements input.Handle.
func (h *Handle) Button(index int) bool {
	if index < 0 || index >= NoteCount {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.struck[index] && h.reported[index] {
		h.reported[index] = false
		return false
	}
	down := h.notes[index] || h.struck[index]
	h.struck[index] = false
	h.reported[index] = down
	return down
}

// Hat implements input.Handle.
func (h *Handle) Hat() input.HatPosition {
	return input.HatCentered
}

// Close implements input.Handle.
func (h *Handle) Close() error {
	if h.stop != nil {
		h.stop()
		h.stop = nil
	}
	return nil
}

func (h *Handle) consume(msg gomidi.Message) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		// note on with zero velocity is a note off
		h.set(key, velocity > 0)
	case msg.GetNoteOff(&channel, &key, &velocity):
		h.set(key, false)
	}
}

func (h *Handle) set(key uint8, down bool) {
	if int(key) >= NoteCount {
		return
	}
	h.mu.Lock()
	h.notes[key] = down
	if down {
		h.struck[key] = true
	}
	h.mu.Unlock()
}
