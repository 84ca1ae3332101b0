package model

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
	AlertError   AlertType = "error"
)

// AlertCategory groups alerts by origin.
type AlertCategory string

const (
	AlertOrder       AlertCategory = "order"
	AlertOpportunity AlertCategory = "opportunity"
	AlertPayout      AlertCategory = "payout"
	AlertSystem      AlertCategory = "system"
)

// Alert is a user notification.
type Alert struct {
	ID        string        `json:"id"`
	Type      AlertType     `json:"type"`
	Category  AlertCategory `json:"category"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Timestamp string        `json:"timestamp"`
	Read      bool          `json:"read"`
}
