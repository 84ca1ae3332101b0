package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ArbiOps/internal/model"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTick(time.Millisecond, &model.Snapshot{})
	m.ObserveLogFailure()
	m.ObserveFallback()
	m.ObserveDiscard()
	m.SetStatus(model.StatusActive)
	m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	m.ObserveJob("health", nil)
	m.ClientConnected()
	m.ClientDisconnected()
}

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveTick(10*time.Millisecond, &model.Snapshot{Totals: model.RunningTotals{TotalProfit: 42, ROI: 7}})
	m.ObserveLogFailure()
	m.ObserveLogFailure()
	m.ObserveFallback()
	m.SetStatus(model.StatusActive)
	m.ObserveJob("health", errors.New("boom"))

	if got := testutil.ToFloat64(m.TicksTotal); got != 1 {
		t.Errorf("ticks: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.TotalProfit); got != 42 {
		t.Errorf("profit gauge: expected 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.LogSourceFailures); got != 2 {
		t.Errorf("failures: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.FallbackBatches); got != 1 {
		t.Errorf("fallbacks: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.Status.WithLabelValues("ACTIVE")); got != 1 {
		t.Errorf("status ACTIVE: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.Status.WithLabelValues("IDLE")); got != 0 {
		t.Errorf("status IDLE: expected 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.BackgroundJobs.WithLabelValues("health", "error")); got != 1 {
		t.Errorf("job errors: expected 1, got %v", got)
	}
}
