// Package marketplace summarises the listing catalogue.
package marketplace

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"ArbiOps/internal/model"
)

// TopN is the number of listings kept in MarketplaceStats.TopProducts.
const TopN = 5

// Lister fetches listings from the backend.
type Lister interface {
	Listings(ctx context.Context) ([]model.Listing, error)
}

// ComputeStats aggregates listings. Every listing counts toward the totals; only
// those not explicitly inactive count as active.
func ComputeStats(listings []model.Listing) model.MarketplaceStats {
	stats := model.MarketplaceStats{
		TotalListings: len(listings),
		TopProducts:   []model.Listing{},
	}
	for i := range listings {
		l := &listings[i]
		if l.Active() {
			stats.ActiveListings++
		}
		stats.TotalPotentialRevenue += l.ProductPrice
		stats.TotalPotentialProfit += l.ProfitMargin
	}
	if len(listings) > 0 {
		stats.AverageMargin = stats.TotalPotentialProfit / float64(len(listings))
	}

	sorted := make([]model.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ProfitMargin > sorted[j].ProfitMargin })
	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}
	stats.TopProducts = append(stats.TopProducts, sorted...)
	return stats
}

// Service caches the latest listings and stats.
type Service struct {
	lister Lister
	now    func() time.Time

	mu       sync.RWMutex
	listings []model.Listing
	stats    model.MarketplaceStats
	lastErr  error
}

// NewService creates a Service with empty stats.
func NewService(lister Lister) *Service {
	return &Service{
		lister: lister,
		now:    time.Now,
		stats:  ComputeStats(nil),
	}
}

// Refresh fetches listings. On failure the previous stats are kept.
func (s *Service) Refresh(ctx context.Context) error {
	listings, err := s.lister.Listings(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		log.Printf("[WARN] marketplace refresh failed, keeping previous stats: %v", err)
		return fmt.Errorf("refresh marketplace: %w", err)
	}
	s.lastErr = nil
	s.listings = listings
	s.stats = ComputeStats(listings)
	s.stats.LastUpdated = s.now()
	return nil
}

// Stats returns the cached stats.
func (s *Service) Stats() model.MarketplaceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.TopProducts = append([]model.Listing(nil), s.stats.TopProducts...)
	return st
}

// Listings returns the cached listings.
func (s *Service) Listings() []model.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Listing{}, s.listings...)
}

// LastError returns the error of the most recent refresh, if it failed.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
