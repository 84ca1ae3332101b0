package marketplace

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ArbiOps/internal/model"
)

type stubLister struct {
	listings []model.Listing
	err      error
}

func (s *stubLister) Listings(context.Context) ([]model.Listing, error) { return s.listings, s.err }

func boolPtr(b bool) *bool { return &b }

func TestComputeStats(t *testing.T) {
	listings := []model.Listing{
		{ListingID: "a", ProductPrice: 100, ProfitMargin: 10},
		{ListingID: "b", ProductPrice: 200, ProfitMargin: 40, IsActive: boolPtr(false)},
		{ListingID: "c", ProductPrice: 50, ProfitMargin: 25, IsActive: boolPtr(true)},
	}
	st := ComputeStats(listings)
	if st.TotalListings != 3 || st.ActiveListings != 2 {
		t.Errorf("counts: total %d active %d", st.TotalListings, st.ActiveListings)
	}
	if st.TotalPotentialRevenue != 350 || st.TotalPotentialProfit != 75 {
		t.Errorf("sums: revenue %.2f profit %.2f", st.TotalPotentialRevenue, st.TotalPotentialProfit)
	}
	if st.AverageMargin != 25 {
		t.Errorf("average margin %.2f", st.AverageMargin)
	}
	want := []string{"b", "c", "a"}
	for i, id := range want {
		if st.TopProducts[i].ListingID != id {
			t.Errorf("top %d: expected %s, got %s", i, id, st.TopProducts[i].ListingID)
		}
	}
	if listings[0].ListingID != "a" {
		t.Error("input slice was reordered")
	}
}

func TestComputeStats_EmptyAndTopCap(t *testing.T) {
	empty := ComputeStats(nil)
	if empty.TotalListings != 0 || empty.AverageMargin != 0 || empty.TopProducts == nil {
		t.Errorf("unexpected empty stats %+v", empty)
	}

	var many []model.Listing
	for i := 0; i < 9; i++ {
		many = append(many, model.Listing{ListingID: fmt.Sprint(i), ProfitMargin: float64(i)})
	}
	st := ComputeStats(many)
	if len(st.TopProducts) != TopN || st.TopProducts[0].ListingID != "8" {
		t.Errorf("unexpected top products %+v", st.TopProducts)
	}
}

func TestService_RefreshFailureKeepsStats(t *testing.T) {
	l := &stubLister{listings: []model.Listing{{ListingID: "a", ProductPrice: 10, ProfitMargin: 3}}}
	s := NewService(l)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Stats().TotalListings != 1 || s.Stats().LastUpdated.IsZero() {
		t.Fatalf("unexpected stats %+v", s.Stats())
	}

	l.err = errors.New("backend down")
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.Stats().TotalListings != 1 || len(s.Listings()) != 1 {
		t.Error("failed refresh discarded previous stats")
	}
	if s.LastError() == nil {
		t.Error("last error not recorded")
	}
}
