package model

import "fmt"

// ArbitrageSettings are the engine parameters persisted by the backend.
type ArbitrageSettings struct {
	MinMargin       float64 `json:"minMargin"`
	MaxPrice        float64 `json:"maxPrice"`
	RiskTolerance   int     `json:"riskTolerance"`
	AutoListEnabled bool    `json:"autoListEnabled"`
}

// DefaultArbitrageSettings mirrors the settings screen defaults.
func DefaultArbitrageSettings() ArbitrageSettings {
	return ArbitrageSettings{MinMargin: 20, MaxPrice: 500, RiskTolerance: 35}
}

// WithDefaults fills zero fields from DefaultArbitrageSettings.
func (s ArbitrageSettings) WithDefaults() ArbitrageSettings {
	d := DefaultArbitrageSettings()
	if s.MinMargin == 0 {
		s.MinMargin = d.MinMargin
	}
	if s.MaxPrice == 0 {
		s.MaxPrice = d.MaxPrice
	}
	if s.RiskTolerance == 0 {
		s.RiskTolerance = d.RiskTolerance
	}
	return s
}

// Validate checks the settings are within the ranges the settings screen allows.
func (s ArbitrageSettings) Validate() error {
	if s.MinMargin < 0 || s.MinMargin > 100 {
		return fmt.Errorf("minMargin must be in [0,100], got %v", s.MinMargin)
	}
	if s.MaxPrice <= 0 {
		return fmt.Errorf("maxPrice must be positive, got %v", s.MaxPrice)
	}
	if s.RiskTolerance < 1 || s.RiskTolerance > 100 {
		return fmt.Errorf("riskTolerance must be in [1,100], got %d", s.RiskTolerance)
	}
	return nil
}
