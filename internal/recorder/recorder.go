package recorder

import "ArbiOps/internal/model"

// TickRecord holds the outputs of one simulation tick.
type TickRecord struct {
	Tick     uint64
	Point    model.ChartDataPoint
	Totals   model.RunningTotals
	Stage    model.PipelineStage
	Controls model.Controls
	Fallback bool
}

// StatusEvent records a system status transition.
type StatusEvent struct {
	From   model.SystemStatus
	To     model.SystemStatus
	Source string // "api", "ws", "telegram"
}

// PayoutEvent records a payout request forwarded to the backend.
type PayoutEvent struct {
	Amount      string
	BankAccount string
	Accepted    bool
	Note        string
}

// Recorder keeps a write-only history for offline analysis. Nothing is read
// back at startup.
type Recorder interface {
	RecordTick(rec *TickRecord) error
	RecordLogs(entries []model.LogEntry) error
	RecordStatus(evt *StatusEvent) error
	RecordPayout(evt *PayoutEvent) error
	Close() error
}
