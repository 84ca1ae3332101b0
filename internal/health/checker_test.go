package health

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"ArbiOps/internal/model"
)

type stubProber struct {
	mu    sync.Mutex
	codes map[string]int
	down  map[string]bool
}

func (s *stubProber) Probe(_ context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down[path] {
		return 0, errors.New("connection refused")
	}
	if code, ok := s.codes[path]; ok {
		return code, nil
	}
	return http.StatusOK, nil
}

type alertCount struct {
	mu  sync.Mutex
	got []model.Alert
}

func (a *alertCount) Add(al model.Alert) model.Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.got = append(a.got, al)
	return al
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code int
		err  error
		want model.HealthState
	}{
		{200, nil, model.HealthHealthy},
		{204, nil, model.HealthHealthy},
		{301, nil, model.HealthDegraded},
		{503, nil, model.HealthDegraded},
		{0, errors.New("timeout"), model.HealthDown},
	}
	for _, tt := range tests {
		if got := Classify(tt.code, tt.err); got != tt.want {
			t.Errorf("Classify(%d, %v) = %s, want %s", tt.code, tt.err, got, tt.want)
		}
	}
}

func TestChecker_CheckAll(t *testing.T) {
	p := &stubProber{
		codes: map[string]int{"/api/ai/health": 503},
		down:  map[string]bool{"/api/voice/health": true},
	}
	a := &alertCount{}
	c := NewChecker(p, nil, a)
	if len(c.Results()) != 0 {
		t.Fatal("expected no results before the first check")
	}

	res := c.CheckAll(context.Background())
	if len(res) != len(DefaultEndpoints) {
		t.Fatalf("expected %d results, got %d", len(DefaultEndpoints), len(res))
	}
	for i, r := range res {
		if r.Endpoint != DefaultEndpoints[i].Path {
			t.Errorf("result %d out of order: %s", i, r.Endpoint)
		}
		if r.LastChecked.IsZero() {
			t.Errorf("result %d not stamped", i)
		}
		want := model.HealthHealthy
		switch r.Endpoint {
		case "/api/ai/health":
			want = model.HealthDegraded
		case "/api/voice/health":
			want = model.HealthDown
		}
		if r.Status != want {
			t.Errorf("%s: expected %s, got %s", r.Endpoint, want, r.Status)
		}
	}
	if len(a.got) != 1 {
		t.Fatalf("expected one down alert, got %d", len(a.got))
	}

	// still down: no new alert; newly down: one more
	p.mu.Lock()
	p.down["/health"] = true
	p.mu.Unlock()
	c.CheckAll(context.Background())
	if len(a.got) != 2 {
		t.Errorf("expected 2 alerts after a second outage, got %d", len(a.got))
	}
}
