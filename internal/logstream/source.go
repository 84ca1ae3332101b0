// Package logstream supplies the short categorized lines shown in the dashboard terminal.
package logstream

import (
	"context"
	"fmt"
	"strings"

	"ArbiOps/internal/model"
)

// Source produces up to count log lines in order. Entries carry a category and a
// message; the caller assigns ids and timestamps when it appends them.
// Any failure is reported as a *ProviderError.
type Source interface {
	RequestLogs(ctx context.Context, count int) ([]model.LogEntry, error)
	Name() string
}

// ProviderError reports an unreachable source or unusable response.
type ProviderError struct {
	Source string
	Op     string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("log source %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(source, op string, err error) *ProviderError {
	return &ProviderError{Source: source, Op: op, Err: err}
}

// Fallback returns the fixed lines substituted when a source fails.
func Fallback() []model.LogEntry {
	return []model.LogEntry{
		{Category: model.CategorySystem, Message: "Connection to neural engine stable."},
		{Category: model.CategoryScan, Message: "Scanning Target, Walmart, BestBuy APIs..."},
	}
}

// normalize validates raw lines and caps them at count.
func normalize(source string, raw []model.LogEntry, count int) ([]model.LogEntry, error) {
	if len(raw) == 0 {
		return nil, providerErr(source, "parse", fmt.Errorf("no log lines returned"))
	}
	if len(raw) > count {
		raw = raw[:count]
	}
	out := make([]model.LogEntry, 0, len(raw))
	for i, e := range raw {
		cat := model.LogCategory(strings.ToUpper(strings.TrimSpace(string(e.Category))))
		if !cat.Generated() {
			return nil, providerErr(source, "parse", fmt.Errorf("line %d: unknown category %q", i, e.Category))
		}
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			return nil, providerErr(source, "parse", fmt.Errorf("line %d: empty message", i))
		}
		out = append(out, model.LogEntry{Category: cat, Message: msg})
	}
	return out, nil
}
