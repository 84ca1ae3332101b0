package logstream

import (
	"context"
	"sync"

	"ArbiOps/internal/model"
)

// MockSource cycles through fixed lines for development and testing.
// When Err is set every request fails with it.
type MockSource struct {
	mu    sync.Mutex
	Lines []model.LogEntry
	Err   error
	next  int
	calls int
}

// NewMockSource returns a source over lines, or over DefaultLines when none are given.
func NewMockSource(lines ...model.LogEntry) *MockSource {
	if len(lines) == 0 {
		lines = DefaultLines
	}
	return &MockSource{Lines: lines}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) RequestLogs(ctx context.Context, count int) ([]model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, providerErr(m.Name(), "request", err)
	}
	if m.Err != nil {
		return nil, providerErr(m.Name(), "request", m.Err)
	}
	raw := make([]model.LogEntry, 0, count)
	for i := 0; i < count && len(m.Lines) > 0; i++ {
		raw = append(raw, m.Lines[m.next%len(m.Lines)])
		m.next++
	}
	return normalize(m.Name(), raw, count)
}

// Calls reports how many requests have been made.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// DefaultLines read like the generated terminal output.
var DefaultLines = []model.LogEntry{
	{Category: model.CategoryScan, Message: "Walmart delta feed parsed, 412 SKUs"},
	{Category: model.CategoryList, Message: "SEO page published, LCP 1.2s"},
	{Category: model.CategoryAd, Message: "Video render complete, 28s"},
	{Category: model.CategoryCampaign, Message: "Meta bid cap adj +4%"},
	{Category: model.CategoryROI, Message: "ROAS 3.1x, budget shifted"},
	{Category: model.CategoryFulfill, Message: "Tracking updated, carrier UPS"},
	{Category: model.CategoryScan, Message: "BestBuy latency 24ms"},
	{Category: model.CategoryCampaign, Message: "TikTok ad set scaled to $80/day"},
}
