package model

import "time"

// Listing is a product listed on the Arbi marketplace backend.
type Listing struct {
	ListingID          string    `json:"listingId"`
	ProductTitle       string    `json:"productTitle"`
	ProductDescription string    `json:"productDescription"`
	ProductPrice       float64   `json:"productPrice"`
	SupplierCost       float64   `json:"supplierCost"`
	ProfitMargin       float64   `json:"profitMargin"`
	SupplierURL        string    `json:"supplierUrl"`
	ProductImages      []string  `json:"productImages"`
	CreatedAt          time.Time `json:"createdAt"`
	IsActive           *bool     `json:"isActive,omitempty"`
}

// Active treats a missing flag as active.
func (l *Listing) Active() bool {
	return l.IsActive == nil || *l.IsActive
}

// MarketplaceStats summarises the listing catalogue.
type MarketplaceStats struct {
	TotalListings         int       `json:"totalListings"`
	ActiveListings        int       `json:"activeListings"`
	TotalPotentialRevenue float64   `json:"totalPotentialRevenue"`
	TotalPotentialProfit  float64   `json:"totalPotentialProfit"`
	AverageMargin         float64   `json:"averageMargin"`
	TopProducts           []Listing `json:"topProducts"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// Opportunity is a supplier/market price gap found by the arbitrage engine.
type Opportunity struct {
	ID               string   `json:"id"`
	ProductTitle     string   `json:"productTitle"`
	SupplierPlatform string   `json:"supplierPlatform"`
	SupplierURL      string   `json:"supplierUrl"`
	SupplierPrice    float64  `json:"supplierPrice"`
	MarketPrice      float64  `json:"marketPrice"`
	EstimatedProfit  float64  `json:"estimatedProfit"`
	ProfitMargin     float64  `json:"profitMargin"`
	Score            *float64 `json:"score,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
}

// ListingRequest creates a marketplace listing from an opportunity.
type ListingRequest struct {
	OpportunityID      string  `json:"opportunityId"`
	ProductTitle       string  `json:"productTitle"`
	ProductDescription string  `json:"productDescription"`
	ProductPrice       float64 `json:"productPrice"`
	SupplierCost       float64 `json:"supplierCost"`
	SupplierURL        string  `json:"supplierUrl"`
	SupplierPlatform   string  `json:"supplierPlatform"`
}

// ListingResult is the backend reply to a ListingRequest.
type ListingResult struct {
	Success   bool   `json:"success"`
	ListingID string `json:"listingId"`
	Error     string `json:"error,omitempty"`
}

// OrderSummary aggregates marketplace orders.
type OrderSummary struct {
	TotalOrders  int     `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalProfit  float64 `json:"totalProfit"`
}
