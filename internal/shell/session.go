// Package shell drives one trainer tick from raw device and keyboard state.
package shell

import (
	"log/slog"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/logging"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

// Session owns the device snapshot and feeds the trainer once per tick.
type Session struct {
	opener   input.Opener
	snapshot *input.Snapshot
	reserved input.Reserved
	trainer  *trainer.Trainer
	log      *slog.Logger
}

// NewSession returns a session. A nil opener means keyboard only; a nil
// logger discards.
func NewSession(opener input.Opener, reserved input.Reserved, tr *trainer.Trainer, log *slog.Logger) *Session {
	if opener == nil {
		opener = input.MultiOpener(nil)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Session{
		opener:   opener,
		snapshot: input.NewSnapshot(),
		reserved: reserved,
		trainer:  tr,
		log:      log,
	}
}

// Step reconciles devices, refreshes edge state, extracts the pressed actions
// and ticks the trainer. keys is the raw held state indexed by scancode.
func (s *Session) Step(keys []bool, cmds trainer.Commands) {
	rebuilt, err := s.snapshot.Reconcile(s.opener)
	if err != nil {
		s.log.Warn("device reconcile", "err", err)
	}
	if rebuilt {
		s.logDevices()
	}
	s.snapshot.Update(keys)
	actions := input.ActiveInputs(s.snapshot, s.reserved)
	if len(actions) > 0 {
		s.log.Debug("active inputs", "tick", s.trainer.CurrentTick(), "count", len(actions))
	}
	s.trainer.Tick(actions, cmds)
}

// Trainer returns the driven trainer.
func (s *Session) Trainer() *trainer.Trainer {
	return s.trainer
}

// Devices returns the current device slots.
func (s *Session) Devices() []input.Device {
	return s.snapshot.Devices
}

// Close releases every device handle.
func (s *Session) Close() error {
	return s.snapshot.Close()
}

func (s *Session) logDevices() {
	s.log.Info("devices rebuilt", "count", len(s.snapshot.Devices))
	for i := range s.snapshot.Devices {
		d := &s.snapshot.Devices[i]
		if !d.Opened() {
			s.log.Warn("device unavailable", "index", i)
			continue
		}
		s.log.Info("device", "index", i, "name", d.Name, "buttons", len(d.Buttons))
	}
}
