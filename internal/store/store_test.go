package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/seqtrain/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "seqtrain.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListAttempts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	start := time.Unix(1000, 0).UTC()
	steps := []model.StepStats{
		{Position: 0, Expected: "a", Label: "a", Hit: true},
		{Position: 1, Expected: "b", Label: "-", GapTicks: 4},
		{Position: 2, Expected: "b", Label: "b", GapTicks: 6, Hit: true},
	}
	id, err := st.InsertAttempt(ctx, model.AttemptStats{
		StartedAt:      start,
		EndedAt:        start.Add(2 * time.Second),
		Sequence:       "k4 k5",
		SequenceLength: 2,
		Completed:      true,
		Hits:           2,
		Misses:         1,
		GapTicks:       10,
	}, steps)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertAttempt(ctx, model.AttemptStats{
		StartedAt:      start.Add(time.Minute),
		EndedAt:        start.Add(time.Minute + time.Second),
		Sequence:       "j0b1",
		SequenceLength: 1,
	}, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := st.ListAttempts(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(all))
	}
	first := all[0]
	if first.AttemptID != id || !first.Completed || first.Steps != 3 || first.Hits != 2 || first.GapTicks != 10 {
		t.Fatalf("unexpected first attempt: %+v", first)
	}

	filtered, err := st.ListAttempts(ctx, model.StatsConfig{Sequence: "j0b1"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Completed {
		t.Fatalf("unexpected filtered attempts: %+v", filtered)
	}

	since := start.Add(30 * time.Second)
	recent, err := st.ListAttempts(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent attempt, got %d", len(recent))
	}

	seqs, err := st.ListSequences(ctx)
	if err != nil {
		t.Fatalf("list sequences: %v", err)
	}
	if seqs["k4 k5"] != 1 || seqs["j0b1"] != 1 {
		t.Fatalf("unexpected sequences: %v", seqs)
	}
}

func TestListStepAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	steps := []model.StepStats{
		{Position: 0, Expected: "a", Label: "a", Hit: true},
		{Position: 1, Expected: "b", Label: "b", GapTicks: 4, Hit: true, Simultaneous: true},
		{Position: 2, Expected: "b", Label: "a", GapTicks: 2},
	}
	id, err := st.InsertAttempt(ctx, model.AttemptStats{StartedAt: time.Unix(0, 0), EndedAt: time.Unix(1, 0)}, steps)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	aggs, err := st.ListStepAggregates(ctx, []int64{id})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	byLabel := map[string]model.StepAggregate{}
	for _, agg := range aggs {
		byLabel[agg.Expected] = agg
	}
	a := byLabel["a"]
	if a.Hits != 1 || a.Misses != 0 || a.GapCount != 0 {
		t.Fatalf("unexpected aggregate for a: %+v", a)
	}
	b := byLabel["b"]
	if b.Hits != 0 || b.Misses != 2 || b.GapSumTicks != 6 || b.GapCount != 2 {
		t.Fatalf("unexpected aggregate for b: %+v", b)
	}

	empty, err := st.ListStepAggregates(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil aggregates for no ids, got %v (%v)", empty, err)
	}
}
