// Package wallet computes earnings and submits payouts.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"ArbiOps/internal/model"
	"ArbiOps/internal/recorder"
)

var (
	ErrInvalidAmount     = errors.New("payout amount must be positive")
	ErrInsufficientFunds = errors.New("payout amount exceeds available balance")
	ErrNoBankAccount     = errors.New("bank account is required")
)

// UserShare is the fraction of marketplace profit paid out to the user.
var UserShare = decimal.NewFromFloat(0.75)

// Backend is the subset of the backend client used here.
type Backend interface {
	Orders(ctx context.Context) (*model.OrderSummary, error)
	PayoutHistory(ctx context.Context) ([]model.Payout, error)
	ExecutePayout(ctx context.Context, req *model.PayoutRequest) error
	SetAutoPayout(ctx context.Context, enabled bool) error
}

// AlertSink receives alerts raised by the service.
type AlertSink interface {
	Add(a model.Alert) model.Alert
}

// ComputeStats derives the wallet figures from order totals and payout history.
func ComputeStats(orders *model.OrderSummary, history []model.Payout) model.WalletStats {
	cut := decimal.Zero
	if orders != nil {
		cut = decimal.NewFromFloat(orders.TotalProfit).Mul(UserShare).Round(2)
	}
	pending := decimal.Zero
	for _, p := range history {
		if p.Status == model.PayoutPending {
			pending = pending.Add(p.Amount)
		}
	}
	return model.WalletStats{
		AvailableBalance: cut,
		TotalEarnings:    cut,
		PendingPayouts:   pending,
		LifetimeEarnings: cut,
	}
}

// Service loads the wallet and validates payouts against it.
type Service struct {
	backend  Backend
	recorder recorder.Recorder
	alerts   AlertSink

	mu         sync.Mutex
	autoPayout bool
}

// NewService creates a Service. rec and alerts may be nil.
func NewService(b Backend, rec recorder.Recorder, alerts AlertSink) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{backend: b, recorder: rec, alerts: alerts}
}

// Load fetches orders and payout history. A history failure is logged and the
// wallet is computed with an empty history.
func (s *Service) Load(ctx context.Context) (*model.Wallet, error) {
	orders, err := s.backend.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	history, err := s.backend.PayoutHistory(ctx)
	if err != nil {
		log.Printf("[WARN] payout history unavailable: %v", err)
		history = nil
	}
	if history == nil {
		history = []model.Payout{}
	}
	s.mu.Lock()
	auto := s.autoPayout
	s.mu.Unlock()
	return &model.Wallet{
		Stats:             ComputeStats(orders, history),
		History:           history,
		AutoPayoutEnabled: auto,
	}, nil
}

// RequestPayout checks the request against the current balance and submits it.
// Every attempt that reaches the backend is recorded.
func (s *Service) RequestPayout(ctx context.Context, req model.PayoutRequest) error {
	req.BankAccount = strings.TrimSpace(req.BankAccount)
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if req.BankAccount == "" {
		return ErrNoBankAccount
	}
	w, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if req.Amount.GreaterThan(w.Stats.AvailableBalance) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds,
			req.Amount.StringFixed(2), w.Stats.AvailableBalance.StringFixed(2))
	}

	err = s.backend.ExecutePayout(ctx, &req)
	evt := &recorder.PayoutEvent{
		Amount:      req.Amount.StringFixed(2),
		BankAccount: req.BankAccount,
		Accepted:    err == nil,
	}
	if err != nil {
		evt.Note = err.Error()
	}
	if rerr := s.recorder.RecordPayout(evt); rerr != nil {
		log.Printf("[ERROR] record payout: %v", rerr)
	}
	if err != nil {
		return fmt.Errorf("execute payout: %w", err)
	}

	log.Printf("[INFO] payout of $%s requested", evt.Amount)
	if s.alerts != nil {
		s.alerts.Add(model.Alert{
			Type:     model.AlertSuccess,
			Category: model.AlertPayout,
			Title:    "Payout Requested",
			Message:  fmt.Sprintf("$%s payout submitted to %s", evt.Amount, req.BankAccount),
		})
	}
	return nil
}

// SetAutoPayout toggles automatic payouts on the backend and remembers the choice.
func (s *Service) SetAutoPayout(ctx context.Context, enabled bool) error {
	if err := s.backend.SetAutoPayout(ctx, enabled); err != nil {
		return fmt.Errorf("set auto payout: %w", err)
	}
	s.mu.Lock()
	s.autoPayout = enabled
	s.mu.Unlock()
	return nil
}
