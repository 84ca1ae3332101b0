// Package alerts keeps the in-memory notification list.
package alerts

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ArbiOps/internal/model"
)

// ErrNotFound is returned for an unknown alert id.
var ErrNotFound = errors.New("alert not found")

const (
	// ForwardTimeout bounds one forwarded delivery.
	ForwardTimeout = 15 * time.Second
	// MaxAlerts caps the list; the oldest alerts are dropped first.
	MaxAlerts = 100
)

// Forwarder delivers alerts to an external channel.
type Forwarder interface {
	ForwardAlert(ctx context.Context, a model.Alert) error
}

// Store holds alerts newest first.
type Store struct {
	mu      sync.RWMutex
	alerts  []model.Alert
	forward Forwarder
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewSeededStore creates a store holding the starter alerts shown on first launch.
func NewSeededStore() *Store {
	s := NewStore()
	now := s.now()
	seed := []struct {
		age time.Duration
		a   model.Alert
	}{
		{2 * time.Minute, model.Alert{ID: "1", Type: model.AlertSuccess, Category: model.AlertOrder,
			Title: "New Order Received", Message: "Nintendo Switch OLED sold for $379.99"}},
		{15 * time.Minute, model.Alert{ID: "2", Type: model.AlertInfo, Category: model.AlertOpportunity,
			Title: "New Opportunity Found", Message: "High-margin product detected: PlayStation 5 Digital (28% margin)"}},
		{time.Hour, model.Alert{ID: "3", Type: model.AlertWarning, Category: model.AlertSystem,
			Title: "Low Stock Alert", Message: `Supplier 1 for "Gaming Headset" is out of stock. Switched to backup supplier.`}},
		{3 * time.Hour, model.Alert{ID: "4", Type: model.AlertSuccess, Category: model.AlertPayout,
			Title: "Payout Completed", Message: "$1,250.00 transferred to your bank account", Read: true}},
		{5 * time.Hour, model.Alert{ID: "5", Type: model.AlertInfo, Category: model.AlertOpportunity,
			Title: "5 New Opportunities", Message: "Found 5 new profitable products in the last hour", Read: true}},
	}
	for _, e := range seed {
		a := e.a
		a.Timestamp = now.Add(-e.age).Format(time.RFC3339)
		s.alerts = append(s.alerts, a)
	}
	return s
}

// SetForwarder makes Add deliver every new alert through f in the background.
func (s *Store) SetForwarder(f Forwarder) {
	s.mu.Lock()
	s.forward = f
	s.mu.Unlock()
}

// Add stores a, assigning an id and timestamp when missing, and returns it.
func (s *Store) Add(a model.Alert) model.Alert {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp == "" {
		a.Timestamp = s.now().Format(time.RFC3339)
	}
	s.mu.Lock()
	s.alerts = append([]model.Alert{a}, s.alerts...)
	if len(s.alerts) > MaxAlerts {
		s.alerts = s.alerts[:MaxAlerts:MaxAlerts]
	}
	f := s.forward
	s.mu.Unlock()

	if f != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), ForwardTimeout)
			defer cancel()
			if err := f.ForwardAlert(ctx, a); err != nil {
				log.Printf("[WARN] forward alert %s: %v", a.ID, err)
			}
		}()
	}
	return a
}

// List returns all alerts, or only unread ones.
func (s *Store) List(unreadOnly bool) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UnreadCount returns the number of unread alerts.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if !a.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one alert read.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

// MarkAllRead marks every alert read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		s.alerts[i].Read = true
	}
}

// Delete removes one alert.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Wait blocks until pending forwards have finished.
func (s *Store) Wait() {
	s.wg.Wait()
}
