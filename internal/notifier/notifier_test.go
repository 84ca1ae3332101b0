package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ArbiOps/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	failures int
	updates  string
}

func (f *fakeTelegram) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failures > 0 {
				f.failures--
				http.Error(w, "flood", http.StatusTooManyRequests)
				return
			}
			if p["chat_id"] != "42" || p["parse_mode"] != "HTML" {
				t.Errorf("unexpected payload %v", p)
			}
			f.sent = append(f.sent, p["text"])
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.mu.Lock()
			body := f.updates
			f.updates = `{"ok":true,"result":[]}`
			f.mu.Unlock()
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSendWithRetry(t *testing.T) {
	f := &fakeTelegram{failures: 1}
	n := newTestNotifier(t, f)
	if err := n.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatal(err)
	}
	if got := f.messages(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("unexpected messages %v", got)
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	f := &fakeTelegram{failures: 10}
	n := newTestNotifier(t, f)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := n.SendWithRetry(ctx, "hello", 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestForwardAlert(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)
	err := n.ForwardAlert(context.Background(), model.Alert{Type: model.AlertError, Title: "Service Down", Message: "AI <engine>"})
	if err != nil {
		t.Fatal(err)
	}
	got := f.messages()
	if len(got) != 1 || !strings.Contains(got[0], "Service Down") || !strings.Contains(got[0], "AI &lt;engine&gt;") {
		t.Errorf("unexpected forwarded text %v", got)
	}

	var disabled *TelegramNotifier
	if err := disabled.ForwardAlert(context.Background(), model.Alert{}); err != nil {
		t.Errorf("disabled notifier returned %v", err)
	}
}

func TestStartPolling(t *testing.T) {
	f := &fakeTelegram{updates: `{"ok":true,"result":[{"update_id":7,"message":{"text":" /status "}}]}`}
	n := newTestNotifier(t, f)
	PollTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got string
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = cmd
			cancel()
			return "ok"
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("polling did not stop")
	}
	if got != "/status" {
		t.Errorf("expected trimmed /status, got %q", got)
	}
}

func TestFormatters(t *testing.T) {
	snap := &model.Snapshot{
		Status:      model.StatusActive,
		Controls:    model.Controls{DailySpendLimit: 500, RiskTolerance: 80},
		Totals:      model.RunningTotals{TotalProfit: 123.456, ROI: 42},
		ActiveStage: model.StageRunCampaigns,
		Logs:        []model.LogEntry{{Timestamp: "10:00:00", Category: model.CategoryScan, Message: "a<b"}},
	}
	out := FormatSnapshot(snap)
	for _, want := range []string{"ACTIVE", "$123.46", "ROAS: 42%", "Run Campaigns", "aggressive", "a&lt;b"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot text missing %q:\n%s", want, out)
		}
	}

	w := &model.Wallet{Stats: model.WalletStats{AvailableBalance: decimal.RequireFromString("750.5")}}
	if out := FormatWallet(w); !strings.Contains(out, "$750.50") || !strings.Contains(out, "Auto-payout: off") {
		t.Errorf("unexpected wallet text:\n%s", out)
	}

	if out := FormatAlerts(nil); !strings.Contains(out, "No unread") {
		t.Errorf("unexpected empty alerts text %q", out)
	}
}
