package scheduler

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ArbiOps/internal/alerts"
	"ArbiOps/internal/logstream"
	"ArbiOps/internal/model"
	"ArbiOps/internal/pipeline"
	"ArbiOps/internal/simulation"
)

func TestCronTicker_EveryAndStop(t *testing.T) {
	c := NewCron()
	c.Start()
	defer c.Stop()

	var n atomic.Int32
	stop := NewCronTicker(c).Every(time.Second, func() { n.Add(1) })
	time.Sleep(2500 * time.Millisecond)
	stop()
	fired := n.Load()
	if fired < 1 {
		t.Fatalf("expected at least one run, got %d", fired)
	}
	time.Sleep(1500 * time.Millisecond)
	if got := n.Load(); got != fired {
		t.Errorf("ran %d more times after stop", got-fired)
	}
	if len(c.Entries()) != 0 {
		t.Errorf("expected no entries after stop, got %d", len(c.Entries()))
	}
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), NewCron())
	s.Alerts = alerts.NewStore()
	// no services configured: nothing is registered
	if err := s.RegisterAll("@every 1m", "@every 5m", "@every 30s"); err != nil {
		t.Fatal(err)
	}
	if len(s.Cron.Entries()) != 0 {
		t.Errorf("expected no entries, got %d", len(s.Cron.Entries()))
	}
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	c := NewCron()
	r := rand.New(rand.NewPCG(3, 4))
	loop, err := simulation.NewLoop(simulation.Options{
		Controls: model.Controls{DailySpendLimit: 500, RiskTolerance: 35},
	}, simulation.Deps{
		Source:   logstream.NewMockSource(),
		Selector: pipeline.NewRandomSelector(r),
		Ticker:   NewCronTicker(c),
		Rand:     r,
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewScheduler(context.Background(), c)
	s.Loop = loop
	s.Alerts = alerts.NewSeededStore()
	return s
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(t)
	ctx := context.Background()

	tests := []struct {
		cmd    string
		want   string
		status model.SystemStatus
	}{
		{"/status", "IDLE", model.StatusIdle},
		{"/stop", "Already idle", model.StatusIdle},
		{"/start", "started", model.StatusActive},
		{"/start", "Already running", model.StatusActive},
		{"/pause", "paused", model.StatusPaused},
		{"/pause", "Nothing to pause", model.StatusPaused},
		{"/stop", "aborted", model.StatusIdle},
		{"/alerts", "3 unread", model.StatusIdle},
		{"/wallet", "not configured", model.StatusIdle},
		{"hello", "Available commands", model.StatusIdle},
	}
	for _, tt := range tests {
		got := s.HandleCommand(ctx, tt.cmd)
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: expected reply containing %q, got %q", tt.cmd, tt.want, got)
		}
		if st := s.Loop.Snapshot().Status; st != tt.status {
			t.Errorf("%s: expected status %s, got %s", tt.cmd, tt.status, st)
		}
	}
}
