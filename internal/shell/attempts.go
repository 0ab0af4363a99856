package shell

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/store"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

// AttemptSaver returns a recorder callback that persists finished attempts.
// Storage failures are logged and never interrupt training.
func AttemptSaver(ctx context.Context, st *store.Store, log *slog.Logger) func(trainer.Attempt) {
	return func(a trainer.Attempt) {
		if st == nil {
			return
		}
		id, err := st.InsertAttempt(ctx, a.Stats, a.Steps)
		if err != nil {
			log.Error("failed to save attempt", "err", err)
			return
		}
		log.Debug("attempt saved", "id", id, "completed", a.Stats.Completed, "hits", a.Stats.Hits, "misses", a.Stats.Misses)
	}
}

// Reserved builds the reserved key set from configured scancodes.
func Reserved(confirm, reset int) input.Reserved {
	return input.Reserved{Confirm: confirm, Reset: reset}
}
