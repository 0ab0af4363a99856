package trainer

import "github.com/verte-zerg/seqtrain/internal/input"

// EventKind identifies a feedback event.
type EventKind int

const (
	// EventRecorded: an action was appended to the sequence.
	EventRecorded EventKind = iota
	// EventGap: ticks since the previous scored input of the attempt.
	EventGap
	// EventMiss: the input was wrong, or landed on the same tick as the previous one.
	EventMiss
	// EventClassified: the label the input most plausibly stands for.
	EventClassified
	// EventNoSuchInput: the input does not appear anywhere in the sequence.
	EventNoSuchInput
	// EventBreak: the attempt ended by completion, timeout or reset.
	EventBreak
	// EventModeChanged: the trainer switched mode.
	EventModeChanged
	// EventDeviceLatched: the device that will be trained was selected.
	EventDeviceLatched
)

// MissReason says why an EventMiss was emitted.
type MissReason int

const (
	MissWrongInput MissReason = iota
	MissSimultaneous
)

// Event is one entry in the feedback stream. Fields not relevant to Kind are zero.
type Event struct {
	Kind   EventKind
	Tick   int
	Action input.Action
	// Index is the sequence index for EventRecorded and the next-expected
	// index for practice events.
	Index     int
	Label     string
	Gap       int
	Reason    MissReason
	Completed bool
	Mode      Mode
	Device    int
	Sequence  []input.Action
}

// Sink receives feedback events in order.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

// Emit calls f.
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

// Sinks fans events out to every sink in order.
type Sinks []Sink

// Emit implements Sink.
func (s Sinks) Emit(ev Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Emit(ev)
		}
	}
}
