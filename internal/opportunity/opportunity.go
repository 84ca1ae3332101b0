// Package opportunity filters arbitrage findings and turns them into listings.
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ArbiOps/internal/model"
)

var (
	// ErrNotFound is returned for an unknown opportunity id.
	ErrNotFound = errors.New("opportunity not found")
	// ErrInvalid is returned when an opportunity lacks the data needed to list it.
	ErrInvalid = errors.New("opportunity cannot be listed")
)

// HighMargin is the margin at which a newly seen opportunity raises an alert.
const HighMargin = 30.0

// ScrapeTimeout bounds the detached image scrape after a listing is created.
const ScrapeTimeout = 2 * time.Minute

// Backend is the subset of the backend client used here.
type Backend interface {
	Opportunities(ctx context.Context) ([]model.Opportunity, error)
	CreateListing(ctx context.Context, req *model.ListingRequest) (*model.ListingResult, error)
	ScrapeImages(ctx context.Context, listingID string) ([]string, error)
}

// AlertSink receives alerts raised by the service.
type AlertSink interface {
	Add(a model.Alert) model.Alert
}

// Criteria filter the opportunity list.
type Criteria struct {
	MinMargin float64 `json:"minMargin" form:"minMargin"`
	MaxPrice  float64 `json:"maxPrice" form:"maxPrice"`
}

// DefaultCriteria are the filter values the opportunities view starts with.
func DefaultCriteria() Criteria {
	return Criteria{MinMargin: 15, MaxPrice: 500}
}

// Filter drops dismissed opportunities, those below MinMargin and those whose
// supplier price exceeds MaxPrice. A zero MaxPrice disables the price bound.
func Filter(opps []model.Opportunity, c Criteria, dismissed map[string]bool) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(opps))
	for _, o := range opps {
		if dismissed[o.ID] {
			continue
		}
		if o.ProfitMargin < c.MinMargin {
			continue
		}
		if c.MaxPrice > 0 && o.SupplierPrice > c.MaxPrice {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Validate checks that o carries enough supplier data to be listed.
func Validate(o *model.Opportunity) error {
	switch {
	case o.ProductTitle == "":
		return fmt.Errorf("%w: missing product title", ErrInvalid)
	case o.SupplierURL == "":
		return fmt.Errorf("%w: missing supplier url", ErrInvalid)
	case o.SupplierPrice <= 0:
		return fmt.Errorf("%w: supplier price must be positive", ErrInvalid)
	case o.MarketPrice <= o.SupplierPrice:
		return fmt.Errorf("%w: market price %.2f does not exceed supplier price %.2f", ErrInvalid, o.MarketPrice, o.SupplierPrice)
	}
	return nil
}

// Service holds the latest opportunities and the dismissed set.
type Service struct {
	backend Backend
	alerts  AlertSink

	mu        sync.RWMutex
	opps      []model.Opportunity
	seen      map[string]bool
	dismissed map[string]bool
	updated   time.Time
	wg        sync.WaitGroup
}

// NewService creates a Service. alerts may be nil.
func NewService(b Backend, alerts AlertSink) *Service {
	return &Service{
		backend:   b,
		alerts:    alerts,
		seen:      map[string]bool{},
		dismissed: map[string]bool{},
	}
}

// Refresh replaces the cached opportunities. On failure the previous list is kept.
func (s *Service) Refresh(ctx context.Context) error {
	opps, err := s.backend.Opportunities(ctx)
	if err != nil {
		return fmt.Errorf("refresh opportunities: %w", err)
	}

	s.mu.Lock()
	var fresh []model.Opportunity
	for _, o := range opps {
		if !s.seen[o.ID] {
			s.seen[o.ID] = true
			if o.ProfitMargin >= HighMargin {
				fresh = append(fresh, o)
			}
		}
	}
	s.opps = opps
	s.updated = time.Now()
	s.mu.Unlock()

	if s.alerts != nil {
		for _, o := range fresh {
			s.alerts.Add(model.Alert{
				Type:     model.AlertInfo,
				Category: model.AlertOpportunity,
				Title:    "New Opportunity Found",
				Message:  fmt.Sprintf("High-margin product detected: %s (%.0f%% margin)", o.ProductTitle, o.ProfitMargin),
			})
		}
	}
	return nil
}

// List returns the cached opportunities that pass c.
func (s *Service) List(c Criteria) []model.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.opps, c, s.dismissed)
}

// UpdatedAt reports when the list was last refreshed.
func (s *Service) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Dismiss hides an opportunity from List.
func (s *Service) Dismiss(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(id); !ok {
		return ErrNotFound
	}
	s.dismissed[id] = true
	return nil
}

func (s *Service) find(id string) (model.Opportunity, bool) {
	for _, o := range s.opps {
		if o.ID == id {
			return o, true
		}
	}
	return model.Opportunity{}, false
}

// AutoList validates the opportunity, creates a listing for it and dismisses it.
// Image scraping then runs in the background with its own timeout; its outcome
// is only logged.
func (s *Service) AutoList(ctx context.Context, id string) (*model.ListingResult, error) {
	s.mu.RLock()
	o, ok := s.find(id)
	dismissed := s.dismissed[id]
	s.mu.RUnlock()
	if !ok || dismissed {
		return nil, ErrNotFound
	}
	if err := Validate(&o); err != nil {
		return nil, err
	}

	res, err := s.backend.CreateListing(ctx, &model.ListingRequest{
		OpportunityID:      o.ID,
		ProductTitle:       o.ProductTitle,
		ProductDescription: fmt.Sprintf("%s, sourced from %s.", o.ProductTitle, o.SupplierPlatform),
		ProductPrice:       o.MarketPrice,
		SupplierCost:       o.SupplierPrice,
		SupplierURL:        o.SupplierURL,
		SupplierPlatform:   o.SupplierPlatform,
	})
	if err != nil {
		return nil, fmt.Errorf("auto-list %s: %w", id, err)
	}

	s.mu.Lock()
	s.dismissed[id] = true
	s.mu.Unlock()
	log.Printf("[INFO] listed opportunity %s as %s", id, res.ListingID)

	s.wg.Add(1)
	go func(listingID string) {
		defer s.wg.Done()
		sctx, cancel := context.WithTimeout(context.Background(), ScrapeTimeout)
		defer cancel()
		images, err := s.backend.ScrapeImages(sctx, listingID)
		if err != nil {
			log.Printf("[WARN] image scrape for listing %s failed: %v", listingID, err)
			return
		}
		log.Printf("[INFO] image scrape for listing %s attached %d images", listingID, len(images))
	}(res.ListingID)

	return res, nil
}

// Wait blocks until background scrapes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
