package model

import "github.com/shopspring/decimal"

// PayoutStatus is the settlement state of a payout.
type PayoutStatus string

const (
	PayoutCompleted PayoutStatus = "completed"
	PayoutPending   PayoutStatus = "pending"
	PayoutFailed    PayoutStatus = "failed"
)

// Payout is one entry of the payout history.
type Payout struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Status      PayoutStatus    `json:"status"`
	BankAccount string          `json:"bankAccount"`
}

// PayoutRequest asks the backend to transfer earnings.
type PayoutRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankAccount string          `json:"bankAccount"`
}

// WalletStats are the earnings figures shown on the wallet screen.
type WalletStats struct {
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalEarnings    decimal.Decimal `json:"totalEarnings"`
	PendingPayouts   decimal.Decimal `json:"pendingPayouts"`
	LifetimeEarnings decimal.Decimal `json:"lifetimeEarnings"`
}

// Wallet bundles stats, history and the auto-payout flag.
type Wallet struct {
	Stats             WalletStats `json:"stats"`
	History           []Payout    `json:"history"`
	AutoPayoutEnabled bool        `json:"autoPayoutEnabled"`
}
