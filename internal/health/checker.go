// Package health probes the backend services shown on the settings screen.
package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ArbiOps/internal/model"
)

// Endpoint names one probed service.
type Endpoint struct {
	Service string
	Path    string
}

// DefaultEndpoints are the backend services checked by default.
var DefaultEndpoints = []Endpoint{
	{"API Server", "/health"},
	{"Marketplace", "/api/marketplace/health"},
	{"Arbitrage Engine", "/api/arbitrage/health"},
	{"Payment System", "/api/payment/health"},
	{"AI Engine", "/api/ai/health"},
	{"Web Automation", "/api/web/health"},
	{"Voice Interface", "/api/voice/health"},
}

// Prober issues a GET and returns the status code, or an error on transport failure.
type Prober interface {
	Probe(ctx context.Context, path string) (int, error)
}

// AlertSink receives alerts raised by the checker.
type AlertSink interface {
	Add(a model.Alert) model.Alert
}

// Classify maps a probe outcome to a state.
func Classify(code int, err error) model.HealthState {
	switch {
	case err != nil:
		return model.HealthDown
	case code >= 200 && code <= 299:
		return model.HealthHealthy
	default:
		return model.HealthDegraded
	}
}

// Checker keeps the last result for each endpoint.
type Checker struct {
	prober    Prober
	endpoints []Endpoint
	alerts    AlertSink
	now       func() time.Time

	mu      sync.RWMutex
	results []model.ServiceHealth
}

// NewChecker creates a checker over endpoints, or DefaultEndpoints when nil.
// alerts may be nil.
func NewChecker(p Prober, endpoints []Endpoint, alerts AlertSink) *Checker {
	if endpoints == nil {
		endpoints = DefaultEndpoints
	}
	return &Checker{prober: p, endpoints: endpoints, alerts: alerts, now: time.Now}
}

// CheckAll probes every endpoint concurrently and stores the results in
// endpoint order. A service that was not down before and is down now raises an
// alert.
func (c *Checker) CheckAll(ctx context.Context) []model.ServiceHealth {
	out := make([]model.ServiceHealth, len(c.endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range c.endpoints {
		g.Go(func() error {
			code, err := c.prober.Probe(gctx, ep.Path)
			out[i] = model.ServiceHealth{
				Service:     ep.Service,
				Endpoint:    ep.Path,
				Status:      Classify(code, err),
				StatusCode:  code,
				LastChecked: c.now(),
			}
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	prev := c.results
	c.results = out
	c.mu.Unlock()

	was := make(map[string]model.HealthState, len(prev))
	for _, r := range prev {
		was[r.Endpoint] = r.Status
	}
	for _, r := range out {
		if r.Status != model.HealthDown || was[r.Endpoint] == model.HealthDown {
			continue
		}
		log.Printf("[WARN] %s (%s) is down", r.Service, r.Endpoint)
		if c.alerts != nil {
			c.alerts.Add(model.Alert{
				Type:     model.AlertError,
				Category: model.AlertSystem,
				Title:    "Service Down",
				Message:  fmt.Sprintf("%s is not responding at %s", r.Service, r.Endpoint),
			})
		}
	}
	return append([]model.ServiceHealth(nil), out...)
}

// Results returns the most recent check, empty before the first one.
func (c *Checker) Results() []model.ServiceHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.ServiceHealth{}, c.results...)
}
