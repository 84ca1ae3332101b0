package feed

import (
	"math/rand/v2"
	"testing"
	"time"

	"ArbiOps/internal/model"
)

// fixedRand returns the same draw every time.
type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return int(r.f * float64(n)) }

func TestNext_Formula(t *testing.T) {
	now := time.Date(2026, 1, 2, 13, 45, 0, 0, time.UTC)
	tests := []struct {
		name     string
		controls model.Controls
		draw     float64
		spend    float64
		profit   float64
	}{
		{"conservative midpoint", model.Controls{DailySpendLimit: 480, RiskTolerance: 35}, 0.5, 20, 20*2.5 + 25},
		{"aggressive low draw", model.Controls{DailySpendLimit: 480, RiskTolerance: 80}, 0, 10, 10 * 3.5},
		{"risk boundary 50 is conservative", model.Controls{DailySpendLimit: 240, RiskTolerance: 50}, 0.5, 10, 10*2.5 + 25},
		{"risk 51 is aggressive", model.Controls{DailySpendLimit: 240, RiskTolerance: 51}, 0.5, 10, 10*3.5 + 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Next(tt.controls, fixedRand{tt.draw}, now)
			if p.Spend != tt.spend {
				t.Errorf("spend: expected %.2f, got %.2f", tt.spend, p.Spend)
			}
			if p.Profit != tt.profit {
				t.Errorf("profit: expected %.2f, got %.2f", tt.profit, p.Profit)
			}
			if p.Revenue != p.Spend+p.Profit {
				t.Errorf("revenue %.2f != spend+profit %.2f", p.Revenue, p.Spend+p.Profit)
			}
			if p.Time != "13:45" {
				t.Errorf("expected time label 13:45, got %q", p.Time)
			}
		})
	}
}

func TestNext_Bounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	c := model.Controls{DailySpendLimit: 500, RiskTolerance: 35}
	base := c.DailySpendLimit / 24
	for i := 0; i < 1000; i++ {
		p := Next(c, r, time.Now())
		if p.Spend < base-10 || p.Spend >= base+10 {
			t.Fatalf("spend %.3f outside [%.3f, %.3f)", p.Spend, base-10, base+10)
		}
		lo := p.Spend * 2.5
		if p.Profit < lo || p.Profit >= lo+50 {
			t.Fatalf("profit %.3f outside [%.3f, %.3f)", p.Profit, lo, lo+50)
		}
	}
}

func TestNext_SeededIsReproducible(t *testing.T) {
	c := model.Controls{DailySpendLimit: 900, RiskTolerance: 70}
	now := time.Now()
	a := Next(c, rand.New(rand.NewPCG(1, 2)), now)
	b := Next(c, rand.New(rand.NewPCG(1, 2)), now)
	if a != b {
		t.Errorf("expected identical points for identical seeds, got %+v and %+v", a, b)
	}
}

func TestSlide_KeepsWindowSize(t *testing.T) {
	window := SeedWindow(time.Now())
	if len(window) != WindowSize {
		t.Fatalf("seed window: expected %d points, got %d", WindowSize, len(window))
	}
	for i := 0; i < 25; i++ {
		next := Slide(window, model.ChartDataPoint{Profit: float64(i)})
		if len(next) != WindowSize {
			t.Fatalf("slide %d: expected %d points, got %d", i, WindowSize, len(next))
		}
		if next[WindowSize-1].Profit != float64(i) {
			t.Fatalf("slide %d: newest point not last", i)
		}
		if next[0] != window[1] {
			t.Fatalf("slide %d: oldest point not evicted", i)
		}
		window = next
	}
}

func TestSlide_DoesNotAlias(t *testing.T) {
	window := SeedWindow(time.Now())
	next := Slide(window, model.ChartDataPoint{Profit: 1})
	next[0].Profit = 99
	if window[1].Profit == 99 {
		t.Error("Slide result aliases the input window")
	}
}

func TestSeedWindow_Labels(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC)
	w := SeedWindow(now)
	if w[0].Time != "10:20" || w[WindowSize-1].Time != "10:29" {
		t.Errorf("unexpected labels: first %q last %q", w[0].Time, w[WindowSize-1].Time)
	}
	for _, p := range w {
		if p.Revenue != 0 || p.Spend != 0 || p.Profit != 0 {
			t.Fatalf("seed point not zero: %+v", p)
		}
	}
}
