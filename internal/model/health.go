package model

import "time"

// HealthState is the outcome of a service probe.
type HealthState string

const (
	HealthHealthy  HealthState = "healthy"
	HealthDegraded HealthState = "degraded"
	HealthDown     HealthState = "down"
)

// ServiceHealth is the last probe result for one backend service.
type ServiceHealth struct {
	Service     string      `json:"service"`
	Endpoint    string      `json:"endpoint"`
	Status      HealthState `json:"status"`
	StatusCode  int         `json:"statusCode,omitempty"`
	LastChecked time.Time   `json:"lastChecked"`
}
