package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ArbiOps/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret", "", 5*time.Second)
}

func TestClient_Listings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/marketplace" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"listings":[{"listingId":"a","productPrice":99.5,"profitMargin":20},{"listingId":"b","isActive":false}]}`))
	})
	got, err := c.Listings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ListingID != "a" || got[0].ProductPrice != 99.5 {
		t.Fatalf("unexpected listings %+v", got)
	}
	if !got[0].Active() || got[1].Active() {
		t.Errorf("active flags decoded wrong: %v %v", got[0].Active(), got[1].Active())
	}
}

func TestClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.Opportunities(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !errors.Is(err, ErrStatus) {
		t.Error("StatusError should match ErrStatus")
	}
	if se.Code != http.StatusBadGateway || se.Path != "/api/arbitrage/opportunities" {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestClient_CreateListing(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{"accepted", `{"success":true,"listingId":"L1"}`, false},
		{"rejected", `{"success":false,"error":"duplicate"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				var req model.ListingRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req.OpportunityID != "opp-1" {
					t.Errorf("unexpected opportunity id %q", req.OpportunityID)
				}
				w.Write([]byte(tt.reply))
			})
			res, err := c.CreateListing(context.Background(), &model.ListingRequest{OpportunityID: "opp-1"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && res.ListingID != "L1" {
				t.Errorf("unexpected listing id %q", res.ListingID)
			}
		})
	}
}

func TestClient_PayoutRoundTrip(t *testing.T) {
	var gotAmount decimal.Decimal
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payout/history":
			w.Write([]byte(`{"payouts":[{"id":"p1","amount":125.5,"status":"pending","bankAccount":"****1234"}]}`))
		case "/api/payout/execute":
			var req model.PayoutRequest
			json.NewDecoder(r.Body).Decode(&req)
			gotAmount = req.Amount
			w.WriteHeader(http.StatusAccepted)
		default:
			http.NotFound(w, r)
		}
	})
	hist, err := c.PayoutHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || !hist[0].Amount.Equal(decimal.RequireFromString("125.5")) {
		t.Fatalf("unexpected history %+v", hist)
	}
	if err := c.ExecutePayout(context.Background(), &model.PayoutRequest{Amount: decimal.NewFromInt(40), BankAccount: "x"}); err != nil {
		t.Fatal(err)
	}
	if !gotAmount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("server saw amount %s", gotAmount)
	}
}

func TestClient_SettingsDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"minMargin":0,"maxPrice":800,"autoListEnabled":true}`))
	})
	s, err := c.Settings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := model.ArbitrageSettings{MinMargin: 20, MaxPrice: 800, RiskTolerance: 35, AutoListEnabled: true}
	if s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
}

func TestClient_Probe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/ai/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if code, err := c.Probe(context.Background(), "/health"); err != nil || code != 200 {
		t.Errorf("probe /health: code %d err %v", code, err)
	}
	if code, err := c.Probe(context.Background(), "/api/ai/health"); err != nil || code != 503 {
		t.Errorf("probe /api/ai/health: code %d err %v", code, err)
	}

	down := NewClient("http://127.0.0.1:1", "", "", time.Second)
	if _, err := down.Probe(context.Background(), "/health"); err == nil {
		t.Error("expected transport error for unreachable backend")
	}
}
