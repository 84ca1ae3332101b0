package model

import "time"

// Snapshot is the consistent bundle of simulation state published after every change.
// Slices are owned by the snapshot; the publisher never mutates them afterwards.
type Snapshot struct {
	Status      SystemStatus     `json:"status"`
	Controls    Controls         `json:"controls"`
	Logs        []LogEntry       `json:"logs"`
	Chart       []ChartDataPoint `json:"chart"`
	Totals      RunningTotals    `json:"totals"`
	ActiveStage PipelineStage    `json:"active_stage"`
	Tick        uint64           `json:"tick"`
	PublishedAt time.Time        `json:"published_at"`
}

// DisplayROI is the ROAS figure shown to users: live only while active.
func (s *Snapshot) DisplayROI() float64 {
	if s.Status != StatusActive {
		return 0
	}
	return s.Totals.ROI
}
