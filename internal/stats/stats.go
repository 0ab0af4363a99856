// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/seqtrain/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	curveLabelWidth     = 12
)

// AttemptMetrics computes accuracy and mean gap in ticks for an attempt.
func AttemptMetrics(hits, misses, gapTicks, steps int) (accuracy, meanGap float64) {
	if total := hits + misses; total > 0 {
		accuracy = float64(hits) / float64(total)
	}
	if steps > 1 {
		meanGap = float64(gapTicks) / float64(steps-1)
	}
	return accuracy, meanGap
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	var totalAcc, totalGap float64
	completed := 0
	bestGap := math.Inf(1)
	for _, a := range attempts {
		acc, gap := AttemptMetrics(a.Hits, a.Misses, a.GapTicks, a.Steps)
		totalAcc += acc
		totalGap += gap
		if a.Completed {
			completed++
			if a.Misses == 0 && gap > 0 && gap < bestGap {
				bestGap = gap
			}
		}
	}
	count := float64(len(attempts))
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", len(attempts)),
		fmt.Sprintf("Completed: %d (%.2f%%)", completed, float64(completed)/count*100),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Avg Gap: %.2f ticks", totalGap/count),
	}
	if !math.IsInf(bestGap, 1) {
		lines = append(lines, fmt.Sprintf("Best Clean Gap: %.2f ticks", bestGap))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints accuracy and mean-gap learning curves as sparklines.
func RenderCurves(w io.Writer, attempts []model.AttemptAggregate, window, totalWidth int) error {
	if len(attempts) == 0 {
		return nil
	}
	accs := make([]float64, len(attempts))
	gaps := make([]float64, len(attempts))
	for i, a := range attempts {
		acc, gap := AttemptMetrics(a.Hits, a.Misses, a.GapTicks, a.Steps)
		accs[i] = acc * 100
		gaps[i] = gap
	}
	if totalWidth <= 0 {
		totalWidth = TerminalWidth(w)
	}
	width := max(totalWidth-curveLabelWidth, 10)
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	curves := []struct {
		name   string
		values []float64
	}{
		{"Accuracy", MovingAverage(accs, window)},
		{"Gap", MovingAverage(gaps, window)},
	}
	for _, c := range curves {
		line := Sparkline(Downsample(c.values, width))
		if _, err := fmt.Fprintf(w, "%-*s%s\n", curveLabelWidth, c.name, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderStepTable prints per-label aggregates, weakest first.
func RenderStepTable(w io.Writer, aggs []model.StepAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No step stats found.")
		return err
	}
	rows := make([]model.StepAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := stepAccuracy(rows[i]), stepAccuracy(rows[j])
		if ai == aj {
			return labelLess(rows[i].Expected, rows[j].Expected)
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Step"); err != nil {
		return err
	}
	headers := []string{"Step", "Accuracy", "Avg Gap (ticks)", "Hits", "Misses"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		gap := 0.0
		if r.GapCount > 0 {
			gap = float64(r.GapSumTicks) / float64(r.GapCount)
		}
		tableRows = append(tableRows, []string{
			r.Expected,
			fmt.Sprintf("%.2f%%", stepAccuracy(r)*100),
			fmt.Sprintf("%.1f", gap),
			fmt.Sprintf("%d", r.Hits),
			fmt.Sprintf("%d", r.Misses),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// WeakestSteps returns up to n labels with the lowest accuracy.
func WeakestSteps(aggs []model.StepAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.StepAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := stepAccuracy(candidates[i]), stepAccuracy(candidates[j])
		if ai == aj {
			return labelLess(candidates[i].Expected, candidates[j].Expected)
		}
		return ai < aj
	})
	n = min(n, len(candidates))
	out := make([]string, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.Expected)
	}
	return out
}

// TerminalWidth returns the width of w when it is a terminal.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func stepAccuracy(agg model.StepAggregate) float64 {
	total := agg.Hits + agg.Misses
	if total == 0 {
		return 1.0
	}
	return float64(agg.Hits) / float64(total)
}

// labelLess orders labels the way the sequence does: a..z, then aa.
func labelLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
