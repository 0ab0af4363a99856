package trainer

import (
	"strings"
	"time"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/model"
)

// Attempt is a finished practice attempt with its scored steps.
type Attempt struct {
	Stats model.AttemptStats
	Steps []model.StepStats
}

// Recorder is a Sink that turns the practice feedback stream into attempt
// statistics and hands each finished attempt to a callback.
type Recorder struct {
	now    func() time.Time
	onDone func(Attempt)

	sequence string
	length   int

	active       bool
	startedAt    time.Time
	steps        []model.StepStats
	pendingGap   int
	pendingSimul bool
}

// NewRecorder returns a recorder. now may be nil to use time.Now.
func NewRecorder(now func() time.Time, onDone func(Attempt)) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now, onDone: onDone}
}

// Emit implements Sink.
func (r *Recorder) Emit(ev Event) {
	switch ev.Kind {
	case EventModeChanged:
		if ev.Mode == ModePracticing {
			r.sequence = SequenceSignature(ev.Sequence)
			r.length = len(ev.Sequence)
		}
		r.discard()
	case EventGap:
		r.pendingGap = ev.Gap
	case EventMiss:
		if ev.Reason == MissSimultaneous {
			r.pendingSimul = true
			return
		}
		if n := len(r.steps); n > 0 {
			r.steps[n-1].Hit = false
		}
	case EventClassified, EventNoSuchInput:
		if !r.active {
			r.active = true
			r.startedAt = r.now()
		}
		r.steps = append(r.steps, model.StepStats{
			Position:     len(r.steps),
			Expected:     Label(ev.Index),
			Label:        ev.Label,
			GapTicks:     r.pendingGap,
			Hit:          true,
			Simultaneous: r.pendingSimul,
		})
		r.pendingGap = 0
		r.pendingSimul = false
	case EventBreak:
		r.finish(ev.Completed)
	}
}

func (r *Recorder) finish(completed bool) {
	if !r.active || len(r.steps) == 0 {
		r.discard()
		return
	}
	stats := model.AttemptStats{
		StartedAt:      r.startedAt,
		EndedAt:        r.now(),
		Sequence:       r.sequence,
		SequenceLength: r.length,
		Completed:      completed,
	}
	for _, s := range r.steps {
		if s.Hit && !s.Simultaneous {
			stats.Hits++
		} else {
			stats.Misses++
		}
		stats.GapTicks += s.GapTicks
	}
	attempt := Attempt{Stats: stats, Steps: r.steps}
	r.steps = nil
	r.discard()
	if r.onDone != nil {
		r.onDone(attempt)
	}
}

func (r *Recorder) discard() {
	r.active = false
	r.startedAt = time.Time{}
	r.steps = nil
	r.pendingGap = 0
	r.pendingSimul = false
}

// SequenceSignature renders a sequence as a space-separated list of action
// identifiers, used to group attempts of the same sequence.
func SequenceSignature(seq []input.Action) string {
	parts := make([]string, len(seq))
	for i, a := range seq {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
