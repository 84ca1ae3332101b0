// Package backend talks to the Arbi marketplace REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ArbiOps/internal/model"
)

// ErrStatus matches any StatusError via errors.Is.
var ErrStatus = errors.New("backend: unexpected status")

// StatusError is returned for any non-2xx reply.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d, body: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client implements the marketplace, arbitrage and payout endpoints.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient creates a client with optional proxy support.
func NewClient(baseURL, apiKey, proxyURL string, timeout time.Duration) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Listings returns every marketplace listing.
func (c *Client) Listings(ctx context.Context) ([]model.Listing, error) {
	var out struct {
		Listings []model.Listing `json:"listings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/marketplace", nil, &out); err != nil {
		return nil, err
	}
	return out.Listings, nil
}

// Orders returns the order totals used by the wallet.
func (c *Client) Orders(ctx context.Context) (*model.OrderSummary, error) {
	var out model.OrderSummary
	if err := c.do(ctx, http.MethodGet, "/api/marketplace/orders", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Opportunities returns the arbitrage engine's current findings.
func (c *Client) Opportunities(ctx context.Context) ([]model.Opportunity, error) {
	var out struct {
		Opportunities []model.Opportunity `json:"opportunities"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/arbitrage/opportunities", nil, &out); err != nil {
		return nil, err
	}
	return out.Opportunities, nil
}

// CreateListing publishes a listing. A reply with success=false is an error.
func (c *Client) CreateListing(ctx context.Context, req *model.ListingRequest) (*model.ListingResult, error) {
	var out model.ListingResult
	if err := c.do(ctx, http.MethodPost, "/api/marketplace/listings", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "listing rejected"
		}
		return &out, fmt.Errorf("create listing: %s", msg)
	}
	return &out, nil
}

// ScrapeImages asks the backend to attach product images to a listing.
func (c *Client) ScrapeImages(ctx context.Context, listingID string) ([]string, error) {
	var out struct {
		Success bool     `json:"success"`
		Images  []string `json:"images"`
	}
	path := "/api/scrape-rainforest/" + url.PathEscape(listingID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("scrape images for %s: unsuccessful", listingID)
	}
	return out.Images, nil
}

// PayoutHistory returns past payouts.
func (c *Client) PayoutHistory(ctx context.Context) ([]model.Payout, error) {
	var out struct {
		Payouts []model.Payout `json:"payouts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/payout/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Payouts, nil
}

// ExecutePayout submits a payout request.
func (c *Client) ExecutePayout(ctx context.Context, req *model.PayoutRequest) error {
	return c.do(ctx, http.MethodPost, "/api/payout/execute", req, nil)
}

// SetAutoPayout enables or disables automatic payouts.
func (c *Client) SetAutoPayout(ctx context.Context, enabled bool) error {
	body := struct {
		Enabled bool `json:"enabled"`
	}{enabled}
	return c.do(ctx, http.MethodPost, "/api/payout/auto-enable", body, nil)
}

// Settings loads the arbitrage settings, defaulting zero fields.
func (c *Client) Settings(ctx context.Context) (model.ArbitrageSettings, error) {
	var out model.ArbitrageSettings
	if err := c.do(ctx, http.MethodGet, "/api/arbitrage/settings", nil, &out); err != nil {
		return model.DefaultArbitrageSettings(), err
	}
	return out.WithDefaults(), nil
}

// SaveSettings stores the arbitrage settings.
func (c *Client) SaveSettings(ctx context.Context, s model.ArbitrageSettings) error {
	return c.do(ctx, http.MethodPut, "/api/arbitrage/settings", s, nil)
}

// Probe issues a GET on path and returns the status code. Transport failures are
// returned as errors; any status code, including 5xx, is not.
func (c *Client) Probe(ctx context.Context, path string) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
