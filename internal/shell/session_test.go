package shell

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/logging"
	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/store"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

type fakeHandle struct {
	buttons []bool
	closed  bool
}

func (h *fakeHandle) Name() string { return "pad" }

func (h *fakeHandle) ButtonCount() int { return len(h.buttons) }

func (h *fakeHandle) Button(i int) bool { return h.buttons[i] }

func (h *fakeHandle) Hat() input.HatPosition { return input.HatCentered }

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

type fakeOpener struct {
	handles []*fakeHandle
	fail    map[int]bool
}

func (o *fakeOpener) DeviceCount() int { return len(o.handles) }

func (o *fakeOpener) Open(i int) (input.Handle, error) {
	if o.fail[i] {
		return nil, errors.New("busy")
	}
	return o.handles[i], nil
}

func keysDown(codes ...int) []bool {
	keys := make([]bool, input.KeyCount)
	for _, c := range codes {
		keys[c] = true
	}
	return keys
}

func TestSessionRecordsAndPractices(t *testing.T) {
	pad := &fakeHandle{buttons: make([]bool, 4)}
	opener := &fakeOpener{handles: []*fakeHandle{pad}}

	var events []trainer.Event
	tr := trainer.New(trainer.Options{}, trainer.SinkFunc(func(ev trainer.Event) {
		events = append(events, ev)
	}))
	s := NewSession(opener, input.DefaultReserved, tr, nil)

	s.Step(keysDown(input.KeyA), trainer.Commands{})
	pad.buttons[2] = true
	s.Step(nil, trainer.Commands{})
	// held button does not record twice
	s.Step(nil, trainer.Commands{})
	pad.buttons[2] = false
	s.Step(keysDown(input.KeyReturn), trainer.Commands{Confirm: true})

	if tr.Mode() != trainer.ModePracticing {
		t.Fatalf("expected practicing, got %v", tr.Mode())
	}
	seq := tr.Sequence()
	if len(seq) != 2 {
		t.Fatalf("expected 2 recorded actions, got %d", len(seq))
	}
	if !input.Equal(seq[0], input.KeyAction(input.KeyA)) || !input.Equal(seq[1], input.ButtonAction(0, 2)) {
		t.Fatalf("unexpected sequence %v", seq)
	}
	for _, ev := range events {
		if ev.Kind == trainer.EventRecorded && ev.Action.Kind == input.KindKey && ev.Action.Key == input.KeyReturn {
			t.Fatalf("confirm key must not be recorded")
		}
	}
}

func TestSessionRebuildsOnDeviceChange(t *testing.T) {
	first := &fakeHandle{buttons: make([]bool, 2)}
	opener := &fakeOpener{handles: []*fakeHandle{first}}
	var logs bytes.Buffer
	log, err := logging.New(logging.Options{Output: &logs})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s := NewSession(opener, input.DefaultReserved, trainer.New(trainer.Options{}, nil), log)

	s.Step(nil, trainer.Commands{})
	if len(s.Devices()) != 1 {
		t.Fatalf("expected 1 device, got %d", len(s.Devices()))
	}

	second := &fakeHandle{buttons: make([]bool, 3)}
	opener.handles = append(opener.handles, second)
	opener.fail = map[int]bool{1: true}
	s.Step(nil, trainer.Commands{})

	if len(s.Devices()) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(s.Devices()))
	}
	if !first.closed {
		t.Fatalf("expected unchanged device to be closed on rebuild")
	}
	if s.Devices()[1].Opened() {
		t.Fatalf("expected failed slot to stay unopened")
	}
	out := logs.String()
	if !strings.Contains(out, "devices rebuilt") || !strings.Contains(out, "device unavailable") {
		t.Fatalf("expected rebuild logs, got:\n%s", out)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestAttemptSaverPersists(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "seqtrain.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()

	rec := trainer.NewRecorder(nil, AttemptSaver(ctx, st, logging.Discard()))
	tr := trainer.New(trainer.Options{}, rec)
	s := NewSession(nil, Reserved(input.KeyReturn, input.KeyBackspace), tr, nil)

	s.Step(keysDown(input.KeyA), trainer.Commands{})
	s.Step(keysDown(input.KeyReturn), trainer.Commands{Confirm: true})
	s.Step(nil, trainer.Commands{})
	s.Step(keysDown(input.KeyA), trainer.Commands{})

	attempts, err := st.ListAttempts(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 || !attempts[0].Completed || attempts[0].Hits != 1 {
		t.Fatalf("unexpected attempts %+v", attempts)
	}
}
