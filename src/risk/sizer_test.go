package risk

import (
	"strings"
	"testing"

	"riskfortress/src/model"
)

func TestHalfKelly(t *testing.T) {
	tests := []struct {
		name  string
		stats model.TradeStats
		want  float64
	}{
		{"favourable edge", model.TradeStats{WinRate: 0.6, AvgWin: 2, AvgLoss: 1}, 0.2},
		{"negative edge clamps to zero", model.TradeStats{WinRate: 0.3, AvgWin: 1, AvgLoss: 1}, 0},
		{"unusable stats", model.TradeStats{WinRate: 0.6, AvgWin: 2, AvgLoss: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HalfKelly(tt.stats); got != tt.want {
				t.Fatalf("HalfKelly(%+v) = %v, want %v", tt.stats, got, tt.want)
			}
		})
	}
}

func TestSizeRiskBudgetAndCaps(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())

	// $100k portfolio, $5 risk per share: the 2% budget allows 400
	// shares, but the 20% position cap binds at 200.
	res := s.Size(SizeRequest{
		EntryPrice:        100,
		StopPrice:         95,
		PortfolioValue:    100000,
		DeployableCash:    50000,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 1,
	})
	if res.Quantity != 200 {
		t.Fatalf("quantity = %d, want 200 (position cap binds)", res.Quantity)
	}
	if res.Notional != 20000 {
		t.Fatalf("notional = %v, want 20000", res.Notional)
	}
}

func TestSizeCircuitMultiplierShrinks(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())
	res := s.Size(SizeRequest{
		EntryPrice:        100,
		StopPrice:         95,
		PortfolioValue:    100000,
		DeployableCash:    50000,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 0.5,
	})
	if res.Quantity != 100 {
		t.Fatalf("quantity = %d, want 100 at half size", res.Quantity)
	}
}

func TestSizeKellyCapsDeployableCash(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())
	res := s.Size(SizeRequest{
		EntryPrice:        100,
		StopPrice:         95,
		PortfolioValue:    100000,
		DeployableCash:    50000,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 1,
		Stats:             &model.TradeStats{WinRate: 0.6, AvgWin: 2, AvgLoss: 1},
	})
	// Half-Kelly 0.2 limits cash to $10k, so 100 shares.
	if res.Quantity != 100 {
		t.Fatalf("quantity = %d, want 100 under half-Kelly", res.Quantity)
	}
	if res.KellyCap != 0.2 {
		t.Fatalf("kelly cap = %v, want 0.2", res.KellyCap)
	}
}

func TestSizeTinyAccountFloorsToZero(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())
	res := s.Size(SizeRequest{
		EntryPrice:        150,
		StopPrice:         145.50,
		PortfolioValue:    366,
		DeployableCash:    366,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 1,
	})
	// The 20% cap permits only 0.48 shares, which floors to zero. That
	// is a valid stand-aside, not an error.
	if res.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0 for an account too small to trade", res.Quantity)
	}
	if res.Notional != 0 {
		t.Fatalf("notional = %v, want 0", res.Notional)
	}
}

func TestSizeBelowMinimumNotional(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())
	res := s.Size(SizeRequest{
		EntryPrice:        9,
		StopPrice:         8,
		PortfolioValue:    50,
		DeployableCash:    50,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 1,
	})
	if res.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0 below the $10 minimum", res.Quantity)
	}
	if !strings.Contains(res.Detail, "minimum") {
		t.Fatalf("detail %q should mention the minimum", res.Detail)
	}
}

func TestSizeDegenerateInputs(t *testing.T) {
	s := NewPositionSizer(DefaultConfig())
	base := SizeRequest{
		EntryPrice:        100,
		StopPrice:         95,
		PortfolioValue:    100000,
		DeployableCash:    50000,
		MaxPositionPct:    0.20,
		CircuitMultiplier: 1,
	}

	req := base
	req.StopPrice = 100
	if res := s.Size(req); res.Quantity != 0 {
		t.Fatalf("stop == entry must size to zero, got %d", res.Quantity)
	}

	req = base
	req.EntryPrice = -1
	if res := s.Size(req); res.Quantity != 0 {
		t.Fatalf("negative entry must size to zero, got %d", res.Quantity)
	}

	req = base
	req.PortfolioValue = 0
	if res := s.Size(req); res.Quantity != 0 {
		t.Fatalf("zero portfolio must size to zero, got %d", res.Quantity)
	}
}
