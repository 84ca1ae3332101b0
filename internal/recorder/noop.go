package recorder

import "ArbiOps/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTick(_ *TickRecord) error      { return nil }
func (n *NoopRecorder) RecordLogs(_ []model.LogEntry) error { return nil }
func (n *NoopRecorder) RecordStatus(_ *StatusEvent) error   { return nil }
func (n *NoopRecorder) RecordPayout(_ *PayoutEvent) error   { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
