package recorder

import (
	"path/filepath"
	"testing"

	"ArbiOps/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if err := r.RecordTick(&TickRecord{
		Tick:     1,
		Point:    model.ChartDataPoint{Time: "10:00", Revenue: 90, Spend: 20, Profit: 70},
		Totals:   model.RunningTotals{TotalProfit: 35, ROI: 2},
		Stage:    model.StageGenerateAds,
		Controls: model.Controls{DailySpendLimit: 500, RiskTolerance: 35},
	}); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	entries := []model.LogEntry{
		{ID: "a", Timestamp: "10:00:00", Category: model.CategoryScan, Message: "one"},
		{ID: "b", Timestamp: "10:00:00", Category: model.CategoryAd, Message: "two"},
	}
	if err := r.RecordLogs(entries); err != nil {
		t.Fatalf("record logs: %v", err)
	}
	// duplicate ids are ignored
	if err := r.RecordLogs(entries[:1]); err != nil {
		t.Fatalf("record duplicate logs: %v", err)
	}
	if err := r.RecordStatus(&StatusEvent{From: model.StatusIdle, To: model.StatusActive, Source: "api"}); err != nil {
		t.Fatalf("record status: %v", err)
	}
	if err := r.RecordPayout(&PayoutEvent{Amount: "12.50", BankAccount: "****1234", Accepted: true}); err != nil {
		t.Fatalf("record payout: %v", err)
	}

	counts := map[string]int{"ticks": 1, "log_entries": 2, "status_events": 1, "payout_events": 1}
	for table, want := range counts {
		var got int
		if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s: expected %d rows, got %d", table, want, got)
		}
	}

	var stage string
	if err := r.db.QueryRow("SELECT stage FROM ticks WHERE tick = 1").Scan(&stage); err != nil {
		t.Fatalf("query stage: %v", err)
	}
	if stage != string(model.StageGenerateAds) {
		t.Errorf("expected stage %s, got %s", model.StageGenerateAds, stage)
	}
}
