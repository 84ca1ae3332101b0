package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ArbiOps/internal/model"
	"ArbiOps/internal/recorder"
)

type fakeBackend struct {
	orders     *model.OrderSummary
	history    []model.Payout
	historyErr error
	execErr    error
	executed   []*model.PayoutRequest
	auto       *bool
}

func (f *fakeBackend) Orders(context.Context) (*model.OrderSummary, error) { return f.orders, nil }
func (f *fakeBackend) PayoutHistory(context.Context) ([]model.Payout, error) {
	return f.history, f.historyErr
}
func (f *fakeBackend) ExecutePayout(_ context.Context, req *model.PayoutRequest) error {
	if f.execErr != nil {
		return f.execErr
	}
	f.executed = append(f.executed, req)
	return nil
}
func (f *fakeBackend) SetAutoPayout(_ context.Context, enabled bool) error {
	f.auto = &enabled
	return nil
}

type payoutLog struct {
	recorder.NoopRecorder
	events []*recorder.PayoutEvent
}

func (p *payoutLog) RecordPayout(evt *recorder.PayoutEvent) error {
	p.events = append(p.events, evt)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeStats(t *testing.T) {
	history := []model.Payout{
		{ID: "1", Amount: dec("100.25"), Status: model.PayoutPending},
		{ID: "2", Amount: dec("50"), Status: model.PayoutCompleted},
		{ID: "3", Amount: dec("20.10"), Status: model.PayoutPending},
	}
	st := ComputeStats(&model.OrderSummary{TotalProfit: 1000}, history)
	if !st.AvailableBalance.Equal(dec("750")) {
		t.Errorf("available %s", st.AvailableBalance)
	}
	if !st.TotalEarnings.Equal(st.AvailableBalance) || !st.LifetimeEarnings.Equal(st.AvailableBalance) {
		t.Errorf("totals differ from user cut: %+v", st)
	}
	if !st.PendingPayouts.Equal(dec("120.35")) {
		t.Errorf("pending %s", st.PendingPayouts)
	}

	if z := ComputeStats(nil, nil); !z.AvailableBalance.IsZero() || !z.PendingPayouts.IsZero() {
		t.Errorf("expected zero stats, got %+v", z)
	}
}

func TestService_RequestPayout(t *testing.T) {
	tests := []struct {
		name    string
		req     model.PayoutRequest
		execErr error
		wantErr error
		records int
	}{
		{"accepted", model.PayoutRequest{Amount: dec("300"), BankAccount: "****1234"}, nil, nil, 1},
		{"zero", model.PayoutRequest{Amount: decimal.Zero, BankAccount: "****1234"}, nil, ErrInvalidAmount, 0},
		{"negative", model.PayoutRequest{Amount: dec("-5"), BankAccount: "****1234"}, nil, ErrInvalidAmount, 0},
		{"no account", model.PayoutRequest{Amount: dec("10"), BankAccount: "  "}, nil, ErrNoBankAccount, 0},
		{"too much", model.PayoutRequest{Amount: dec("750.01"), BankAccount: "****1234"}, nil, ErrInsufficientFunds, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{orders: &model.OrderSummary{TotalProfit: 1000}, execErr: tt.execErr}
			rec := &payoutLog{}
			s := NewService(b, rec, nil)
			err := s.RequestPayout(context.Background(), tt.req)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(rec.events) != tt.records {
				t.Errorf("expected %d recorded payouts, got %d", tt.records, len(rec.events))
			}
		})
	}
}

func TestService_RequestPayoutBackendFailureRecorded(t *testing.T) {
	b := &fakeBackend{orders: &model.OrderSummary{TotalProfit: 100}, execErr: errors.New("bank offline")}
	rec := &payoutLog{}
	s := NewService(b, rec, nil)
	if err := s.RequestPayout(context.Background(), model.PayoutRequest{Amount: dec("10"), BankAccount: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.events) != 1 || rec.events[0].Accepted || rec.events[0].Amount != "10.00" {
		t.Errorf("unexpected recorded event %+v", rec.events)
	}
}

func TestService_LoadAndAutoPayout(t *testing.T) {
	b := &fakeBackend{orders: &model.OrderSummary{TotalProfit: 40}, historyErr: errors.New("404")}
	s := NewService(b, nil, nil)
	w, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if w.History == nil || len(w.History) != 0 || !w.Stats.AvailableBalance.Equal(dec("30")) {
		t.Errorf("unexpected wallet %+v", w)
	}
	if err := s.SetAutoPayout(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	w, _ = s.Load(context.Background())
	if !w.AutoPayoutEnabled || b.auto == nil || !*b.auto {
		t.Error("auto payout not enabled")
	}
}
