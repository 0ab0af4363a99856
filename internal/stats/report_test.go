package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "seqtrain.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		stats := model.AttemptStats{
			StartedAt:      start,
			EndedAt:        start.Add(3 * time.Second),
			Sequence:       "k4 k5",
			SequenceLength: 2,
			Completed:      true,
			Hits:           2,
			Misses:         1,
			GapTicks:       9,
		}
		steps := []model.StepStats{
			{Position: 0, Expected: "a", Label: "a", Hit: true},
			{Position: 1, Expected: "b", Label: "-", GapTicks: 4},
			{Position: 2, Expected: "b", Label: "b", GapTicks: 5, Hit: true},
		}
		id, err := st.InsertAttempt(ctx, stats, steps)
		if err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{Sequence: "k4 k5", Last: 2, CurveWindow: 2}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].AttemptID != ids[1] || report.Attempts[1].AttemptID != ids[2] {
		t.Fatalf("unexpected attempt ids: %+v", report.Attempts)
	}
	if len(report.WindowAttemptIDs) != 2 {
		t.Fatalf("expected 2 window attempt ids, got %d", len(report.WindowAttemptIDs))
	}
	if len(report.StepAggsAll) != 2 || len(report.StepAggsWindow) != 2 {
		t.Fatalf("expected aggregates for labels a and b")
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, cfg.CurveWindow, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 2", "Completed: 2", "Learning Curves", "Per-Step", "Avg Gap (ticks)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No attempts found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
