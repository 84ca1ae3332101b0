// Package feed computes the simulated chart series shown on the dashboard.
package feed

import (
	"time"

	"ArbiOps/internal/model"
)

// WindowSize is the fixed number of points kept in the chart window.
const WindowSize = 10

// Rand is the subset of math/rand/v2 used by the simulation.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// uniform draws from [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// ProfitMultiplier is the spend-to-profit factor for a risk tolerance.
func ProfitMultiplier(riskTolerance int) float64 {
	if riskTolerance > 50 {
		return 3.5
	}
	return 2.5
}

// Next computes the next chart point for the given controls. It has no state of its
// own, so a seeded r makes the series reproducible.
func Next(c model.Controls, r Rand, now time.Time) model.ChartDataPoint {
	spend := c.DailySpendLimit/24 + uniform(r, -10, 10)
	profit := spend*ProfitMultiplier(c.RiskTolerance) + uniform(r, 0, 50)
	return model.ChartDataPoint{
		Time:    now.Format(model.ChartTimeLayout),
		Revenue: spend + profit,
		Spend:   spend,
		Profit:  profit,
	}
}

// Slide appends p and drops the oldest points so the result has WindowSize entries.
// The result never aliases window.
func Slide(window []model.ChartDataPoint, p model.ChartDataPoint) []model.ChartDataPoint {
	out := make([]model.ChartDataPoint, 0, WindowSize)
	start := len(window) + 1 - WindowSize
	if start < 0 {
		start = 0
	}
	out = append(out, window[start:]...)
	return append(out, p)
}

// SeedWindow builds the initial window: zero-valued points one minute apart, ending
// one minute before now.
func SeedWindow(now time.Time) []model.ChartDataPoint {
	window := make([]model.ChartDataPoint, WindowSize)
	for i := range window {
		window[i] = model.ChartDataPoint{
			Time: now.Add(-time.Duration(WindowSize-i) * time.Minute).Format(model.ChartTimeLayout),
		}
	}
	return window
}
