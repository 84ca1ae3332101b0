package notifier

import (
	"fmt"
	"html"
	"strings"

	"ArbiOps/internal/model"
)

// FormatSnapshot renders the simulation state for /status.
func FormatSnapshot(s *model.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🤖 <b>ArbiOS</b> | %s\n\n", s.Status))

	stage := "none"
	if info, ok := s.ActiveStage.Info(); ok {
		stage = info.Title + " (" + info.ActiveText + ")"
	}
	b.WriteString(fmt.Sprintf("Stage: %s\n", stage))
	b.WriteString(fmt.Sprintf("Net profit: $%.2f\n", s.Totals.TotalProfit))
	b.WriteString(fmt.Sprintf("ROAS: %.0f%%\n", s.DisplayROI()))
	b.WriteString(fmt.Sprintf("Daily spend limit: $%.0f | Risk: %d (%s)\n",
		s.Controls.DailySpendLimit, s.Controls.RiskTolerance, s.Controls.RiskLevel()))
	b.WriteString(fmt.Sprintf("Ticks: %d\n", s.Tick))

	if n := len(s.Logs); n > 0 {
		b.WriteString("\n<b>Latest:</b>\n")
		from := n - 3
		if from < 0 {
			from = 0
		}
		for _, e := range s.Logs[from:] {
			b.WriteString(fmt.Sprintf("<code>%s [%s] %s</code>\n", e.Timestamp, e.Category, html.EscapeString(e.Message)))
		}
	}
	return b.String()
}

// FormatWallet renders the wallet stats for /wallet.
func FormatWallet(w *model.Wallet) string {
	var b strings.Builder
	b.WriteString("💳 <b>Wallet</b>\n\n")
	b.WriteString(fmt.Sprintf("Available: $%s\n", w.Stats.AvailableBalance.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Pending payouts: $%s\n", w.Stats.PendingPayouts.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Lifetime earnings: $%s\n", w.Stats.LifetimeEarnings.StringFixed(2)))
	auto := "off"
	if w.AutoPayoutEnabled {
		auto = "on"
	}
	b.WriteString(fmt.Sprintf("Auto-payout: %s\n", auto))
	return b.String()
}

func alertIcon(t model.AlertType) string {
	switch t {
	case model.AlertSuccess:
		return "✅"
	case model.AlertWarning:
		return "⚠️"
	case model.AlertError:
		return "❌"
	default:
		return "ℹ️"
	}
}

// FormatAlert renders one alert.
func FormatAlert(a *model.Alert) string {
	return fmt.Sprintf("%s <b>%s</b>\n%s", alertIcon(a.Type), html.EscapeString(a.Title), html.EscapeString(a.Message))
}

// FormatAlerts renders the unread alerts for /alerts.
func FormatAlerts(unread []model.Alert) string {
	if len(unread) == 0 {
		return "🔔 No unread alerts"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>%d unread</b>\n", len(unread)))
	for i := range unread {
		b.WriteString("\n")
		b.WriteString(FormatAlert(&unread[i]))
		b.WriteString("\n")
	}
	return b.String()
}

// Help lists the supported commands.
const Help = "Available commands:\n• /status\n• /start\n• /stop\n• /pause\n• /wallet\n• /alerts"
