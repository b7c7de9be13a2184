package pipeline

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/tabular"
)

func TestDurationStatsSnapshotPercentiles(t *testing.T) {
	stats := NewDurationStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestDurationStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewDurationStats(10 * time.Millisecond)
	stats.Record(100 * time.Millisecond)
	stats.RecordFailure()
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 || snap.Failed != 0 {
		t.Fatalf("expected empty stats after prune, got %+v", snap)
	}

	stats.Record(200 * time.Millisecond)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestDurationStatsCountsFailures(t *testing.T) {
	stats := NewDurationStats(time.Hour)
	stats.RecordFailure()
	stats.RecordFailure()

	snap := stats.Snapshot()
	if snap.Failed != 2 {
		t.Errorf("expected 2 failures, got %d", snap.Failed)
	}
	if snap.Count != 0 {
		t.Errorf("expected no completed samples, got %d", snap.Count)
	}
}

func TestDurationStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewDurationStats(time.Hour)
	stats.Record(-5 * time.Millisecond)
	if snap := stats.Snapshot(); snap.MinMs != 0 {
		t.Fatalf("expected min=0, got %d", snap.MinMs)
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt, base := range []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: expected backoff in [%v, %v), got %v", attempt, base, base+base/2, d)
		}
	}
	if d := Backoff(40); d < maxSettleDelay || d >= maxSettleDelay+maxSettleDelay/2 {
		t.Errorf("expected capped backoff, got %v", d)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{tabular.ErrEmptySource, true},
		{fmt.Errorf("read pregrado.csv: %w", tabular.ErrEmptySource), true},
		{io.ErrUnexpectedEOF, true},
		{tabular.ErrNoTable, false},
		{&catalog.SchemaError{Missing: []string{catalog.ColProgramName}}, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v): expected %v, got %v", tc.err, tc.want, got)
		}
	}
}
