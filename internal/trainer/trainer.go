// Package trainer records an input sequence and scores practice attempts against it.
package trainer

import "github.com/verte-zerg/seqtrain/internal/input"

// DefaultTimeout is the number of idle ticks after which an attempt is abandoned.
const DefaultTimeout = 15

// Mode is the trainer state.
type Mode int

const (
	ModeSelectDevice Mode = iota
	ModeRecording
	ModePracticing
)

func (m Mode) String() string {
	switch m {
	case ModeSelectDevice:
		return "select-device"
	case ModeRecording:
		return "recording"
	case ModePracticing:
		return "practicing"
	default:
		return "unknown"
	}
}

// Commands are the edge-triggered command signals for one tick.
type Commands struct {
	Confirm bool
	Reset   bool
}

// Options configure a Trainer.
type Options struct {
	// Timeout in ticks; zero means DefaultTimeout.
	Timeout int
	// LatchDevice starts in ModeSelectDevice and trains only the device
	// whose button is pressed first.
	LatchDevice bool
}

// Trainer is the Recording/Practicing state machine. It is not safe for
// concurrent use; the shell drives it once per tick.
type Trainer struct {
	opts Options
	sink Sink

	mode     Mode
	sequence []input.Action
	latched  int

	tick          int
	lastInputTick int
	next          int
}

// New returns a trainer in its initial mode with an empty sequence.
func New(opts Options, sink Sink) *Trainer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if sink == nil {
		sink = SinkFunc(func(Event) {})
	}
	t := &Trainer{
		opts:    opts,
		sink:    sink,
		mode:    ModeRecording,
		latched: -1,
	}
	if opts.LatchDevice {
		t.mode = ModeSelectDevice
	}
	return t
}

// Mode returns the current mode.
func (t *Trainer) Mode() Mode {
	return t.mode
}

// Sequence returns a copy of the recorded sequence.
func (t *Trainer) Sequence() []input.Action {
	return append([]input.Action(nil), t.sequence...)
}

// NextExpected returns the index of the next expected sequence entry.
func (t *Trainer) NextExpected() int {
	return t.next
}

// CurrentTick returns the tick counter of the current attempt.
func (t *Trainer) CurrentTick() int {
	return t.tick
}

// LatchedDevice returns the selected device slot, if any.
func (t *Trainer) LatchedDevice() (int, bool) {
	return t.latched, t.latched >= 0
}

// Tick consumes one tick of active inputs and command signals, then
// advances the tick counter.
func (t *Trainer) Tick(actions []input.Action, cmds Commands) {
	switch t.mode {
	case ModeSelectDevice:
		t.selectDevice(actions)
	case ModeRecording:
		t.record(t.filter(actions))
		if cmds.Confirm && len(t.sequence) > 0 {
			t.setMode(ModePracticing)
		}
	case ModePracticing:
		t.practice(t.filter(actions))
	}

	if cmds.Reset && len(t.sequence) > 0 {
		t.sequence = nil
		t.resetAttempt(true)
		t.setMode(ModeRecording)
	}

	t.tick++
}

func (t *Trainer) filter(actions []input.Action) []input.Action {
	if t.latched < 0 {
		return actions
	}
	kept := actions[:0:0]
	for _, a := range actions {
		if a.FromDevice(t.latched) {
			kept = append(kept, a)
		}
	}
	return kept
}

func (t *Trainer) selectDevice(actions []input.Action) {
	for _, a := range actions {
		if a.Kind != input.KindButton {
			continue
		}
		t.latched = a.Device
		t.sink.Emit(Event{Kind: EventDeviceLatched, Tick: t.tick, Device: a.Device})
		t.setMode(ModeRecording)
		return
	}
}

func (t *Trainer) record(actions []input.Action) {
	for _, a := range actions {
		index := len(t.sequence)
		t.sequence = append(t.sequence, a)
		t.sink.Emit(Event{
			Kind:   EventRecorded,
			Tick:   t.tick,
			Action: a,
			Index:  index,
			Label:  Label(index),
		})
	}
}

func (t *Trainer) practice(actions []input.Action) {
	for _, a := range actions {
		if t.next >= len(t.sequence) {
			continue
		}
		if t.lastInputTick != 0 {
			gap := t.tick - t.lastInputTick
			t.sink.Emit(Event{Kind: EventGap, Tick: t.tick, Action: a, Index: t.next, Gap: gap})
			if gap == 0 {
				t.sink.Emit(Event{Kind: EventMiss, Tick: t.tick, Action: a, Index: t.next, Reason: MissSimultaneous})
			}
		}

		if index, ok := t.classify(a); ok {
			t.sink.Emit(Event{Kind: EventClassified, Tick: t.tick, Action: a, Index: t.next, Label: Label(index)})
		} else {
			t.sink.Emit(Event{Kind: EventNoSuchInput, Tick: t.tick, Action: a, Index: t.next, Label: Label(-1)})
		}

		if input.Equal(t.sequence[t.next], a) {
			t.next++
		} else {
			t.sink.Emit(Event{Kind: EventMiss, Tick: t.tick, Action: a, Index: t.next, Reason: MissWrongInput})
		}
		t.lastInputTick = t.tick
	}

	if t.lastInputTick != 0 {
		gap := t.tick - t.lastInputTick
		if gap >= t.opts.Timeout || t.next >= len(t.sequence) {
			t.resetAttempt(true)
		}
	}
}

// classify picks the sequence index an input most plausibly stands for: the
// first match at or after the next-expected index, else the last match seen.
func (t *Trainer) classify(a input.Action) (int, bool) {
	found := -1
	for i := range t.sequence {
		if !input.Equal(t.sequence[i], a) {
			continue
		}
		found = i
		if i >= t.next {
			break
		}
	}
	return found, found >= 0
}

func (t *Trainer) resetAttempt(emit bool) {
	completed := len(t.sequence) > 0 && t.next >= len(t.sequence)
	t.tick = 0
	t.lastInputTick = 0
	t.next = 0
	if emit {
		t.sink.Emit(Event{Kind: EventBreak, Completed: completed})
	}
}

func (t *Trainer) setMode(m Mode) {
	t.mode = m
	ev := Event{Kind: EventModeChanged, Tick: t.tick, Mode: m}
	if m == ModePracticing {
		ev.Sequence = t.Sequence()
	}
	t.sink.Emit(ev)
}
