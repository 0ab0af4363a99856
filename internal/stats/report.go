package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts         []model.AttemptAggregate
	WindowAttemptIDs []int64
	StepAggsAll      []model.StepAggregate
	StepAggsWindow   []model.StepAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}

	allIDs := attemptIDs(attempts)
	windowIDs := lastAttemptIDs(attempts, cfg.CurveWindow)
	stepAggsAll, err := st.ListStepAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	stepAggsWindow, err := st.ListStepAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Attempts:         attempts,
		WindowAttemptIDs: windowIDs,
		StepAggsAll:      stepAggsAll,
		StepAggsWindow:   stepAggsWindow,
	}, nil
}

// Render writes the whole report: summary, curves and the windowed step table.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Attempts); err != nil {
		return err
	}
	if len(r.Attempts) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Attempts, window, width); err != nil {
		return err
	}
	return RenderStepTable(w, r.StepAggsWindow)
}

func attemptIDs(attempts []model.AttemptAggregate) []int64 {
	ids := make([]int64, len(attempts))
	for i, a := range attempts {
		ids[i] = a.AttemptID
	}
	return ids
}

func lastAttemptIDs(attempts []model.AttemptAggregate, window int) []int64 {
	if window <= 0 || len(attempts) <= window {
		return attemptIDs(attempts)
	}
	return attemptIDs(attempts[len(attempts)-window:])
}
