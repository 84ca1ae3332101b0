package model

import (
	"errors"
	"fmt"
)

// ChartTimeLayout formats ChartDataPoint.Time.
const ChartTimeLayout = "15:04"

// ChartDataPoint is one sample of simulated campaign activity.
type ChartDataPoint struct {
	Time    string  `json:"time"`
	Revenue float64 `json:"revenue"`
	Spend   float64 `json:"spend"`
	Profit  float64 `json:"profit"`
}

// ErrInvalidControls is returned for out-of-range control values.
var ErrInvalidControls = errors.New("invalid controls")

// Controls are the user-adjustable inputs read by the metrics feed each tick.
type Controls struct {
	DailySpendLimit float64 `json:"daily_spend_limit"`
	RiskTolerance   int     `json:"risk_tolerance"` // 1-100
}

// Validate checks the spend limit is positive and risk is within [1,100].
func (c Controls) Validate() error {
	if c.DailySpendLimit <= 0 {
		return fmt.Errorf("%w: daily_spend_limit must be positive, got %v", ErrInvalidControls, c.DailySpendLimit)
	}
	if c.RiskTolerance < 1 || c.RiskTolerance > 100 {
		return fmt.Errorf("%w: risk_tolerance must be in [1,100], got %d", ErrInvalidControls, c.RiskTolerance)
	}
	return nil
}

// RiskLevel buckets the tolerance the way the control panel colours it.
func (c Controls) RiskLevel() string {
	switch {
	case c.RiskTolerance > 70:
		return "aggressive"
	case c.RiskTolerance > 40:
		return "moderate"
	default:
		return "conservative"
	}
}

// MaxROI caps RunningTotals.ROI.
const MaxROI = 320.0

// RunningTotals accumulate across ticks.
type RunningTotals struct {
	TotalProfit float64 `json:"total_profit"`
	ROI         float64 `json:"roi"`
}
