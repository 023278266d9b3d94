package risk

import (
	"strings"
	"testing"
	"time"

	"riskfortress/src/model"
)

func snapshot(pv, cash float64, positions ...model.Position) model.PortfolioSnapshot {
	return model.PortfolioSnapshot{
		PortfolioValue: pv,
		Cash:           cash,
		Positions:      positions,
		AsOf:           time.Date(2025, time.March, 10, 16, 0, 0, 0, time.UTC),
	}
}

func TestHealthCleanPortfolio(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 4000,
		model.Position{Symbol: "AAPL", Quantity: 15, EntryPrice: 90, CurrentPrice: 100},
		model.Position{Symbol: "JPM", Quantity: 15, EntryPrice: 95, CurrentPrice: 100},
		model.Position{Symbol: "XOM", Quantity: 15, EntryPrice: 105, CurrentPrice: 100},
	)

	report := m.Health(snap, 0)
	if !report.Healthy {
		t.Fatalf("balanced portfolio must be healthy, blocks: %v", report.Blocks)
	}
	if report.PortfolioHeat != 0.6 {
		t.Fatalf("heat = %v, want 0.6", report.PortfolioHeat)
	}
	if report.Weights["AAPL"] != 0.15 {
		t.Fatalf("AAPL weight = %v, want 0.15", report.Weights["AAPL"])
	}
}

func TestHealthFlagsConcentrationAndHeat(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 1000,
		model.Position{Symbol: "AAPL", Quantity: 30, EntryPrice: 90, CurrentPrice: 100},
		model.Position{Symbol: "MSFT", Quantity: 10, EntryPrice: 90, CurrentPrice: 100},
		model.Position{Symbol: "XOM", Quantity: 50, EntryPrice: 105, CurrentPrice: 100},
	)

	report := m.Health(snap, 0)
	if report.Healthy {
		t.Fatal("90% heat and a 40% sector must not be healthy")
	}
	if report.MaxPositionSymbol != "XOM" || report.MaxPositionPct != 0.5 {
		t.Fatalf("max position = %s %.2f, want XOM 0.50", report.MaxPositionSymbol, report.MaxPositionPct)
	}
	if report.MaxSectorName != "energy" {
		t.Fatalf("max sector = %s, want energy", report.MaxSectorName)
	}
	if len(report.Blocks) < 2 {
		t.Fatalf("expected sector and heat blocks, got %v", report.Blocks)
	}
}

func TestHealthConvictionExemptFromPositionWarning(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 6000,
		model.Position{Symbol: "GME", Quantity: 100, EntryPrice: 25, CurrentPrice: 25, IsConviction: true},
	)

	report := m.Health(snap, 0)
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "concentration") {
			t.Fatalf("conviction position must not raise a concentration warning: %q", w)
		}
	}
}

func TestHealthReportsHHIWithoutBlocking(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 8500,
		model.Position{Symbol: "AAPL", Quantity: 15, EntryPrice: 90, CurrentPrice: 100},
	)

	report := m.Health(snap, 0)
	if report.HHI < 0.0224 || report.HHI > 0.0226 {
		t.Fatalf("HHI = %v, want ~0.0225", report.HHI)
	}
	if !report.Healthy {
		t.Fatalf("HHI is advisory only, blocks: %v", report.Blocks)
	}
}

func TestCanOpenPositionLimit(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 5000,
		model.Position{Symbol: "AAPL", Quantity: 8, EntryPrice: 90, CurrentPrice: 100},
	)

	adm := m.CanOpen("AAPL", 1500, snap, nil)
	if adm.Allowed {
		t.Fatal("23% position must be rejected at the 20% cap")
	}
	if adm.Reason != model.ReasonPositionLimit {
		t.Fatalf("reason = %s, want %s", adm.Reason, model.ReasonPositionLimit)
	}
	if adm.MaxAllowed != 1200 {
		t.Fatalf("max allowed = %v, want 1200", adm.MaxAllowed)
	}
}

func TestCanOpenSectorLimit(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 5000,
		model.Position{Symbol: "AAPL", Quantity: 13, EntryPrice: 90, CurrentPrice: 100},
		model.Position{Symbol: "MSFT", Quantity: 12, EntryPrice: 90, CurrentPrice: 100},
	)

	// Technology already holds 25%; another $800 of NVDA breaches 30%.
	adm := m.CanOpen("NVDA", 800, snap, nil)
	if adm.Allowed || adm.Reason != model.ReasonSectorLimit {
		t.Fatalf("expected sector rejection, got %+v", adm)
	}
	if adm.MaxAllowed != 500 {
		t.Fatalf("max allowed = %v, want 500", adm.MaxAllowed)
	}
}

func TestCanOpenSendItModeOverridesCapsNotHeat(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 5000,
		model.Position{Symbol: "AMC", Quantity: 60, EntryPrice: 30, CurrentPrice: 25},
	)
	conv := &model.Conviction{
		Symbol:         "GME",
		Status:         model.ConvictionStatusActive,
		SendItMode:     true,
		MaxPositionPct: 0.50,
	}

	// 30% of the portfolio into one meme name: the standard position and
	// sector caps would both reject this, the conviction cap admits it.
	adm := m.CanOpen("GME", 3000, snap, conv)
	if !adm.Allowed {
		t.Fatalf("send-it conviction should admit 30%%: %+v", adm)
	}

	// Heat is never overridden: this would deploy down to 10% cash and
	// past the 85% heat cap.
	adm = m.CanOpen("GME", 4500, snap, conv)
	if adm.Allowed || adm.Reason != model.ReasonHeatLimit {
		t.Fatalf("expected heat rejection even in send-it mode, got %+v", adm)
	}
}

func TestCanOpenCashReserve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPortfolioHeat = 0.95
	m := NewPortfolioRiskMonitor(cfg)
	snap := snapshot(10000, 1500)

	adm := m.CanOpen("AAPL", 600, snap, nil)
	if adm.Allowed || adm.Reason != model.ReasonCashReserve {
		t.Fatalf("expected cash-reserve rejection, got %+v", adm)
	}
	if adm.MaxAllowed != 500 {
		t.Fatalf("max allowed = %v, want 500", adm.MaxAllowed)
	}
}

func TestCanOpenApproves(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	snap := snapshot(10000, 5000,
		model.Position{Symbol: "JPM", Quantity: 10, EntryPrice: 95, CurrentPrice: 100},
	)

	adm := m.CanOpen("XOM", 1000, snap, nil)
	if !adm.Allowed || adm.Reason != model.ReasonApproved {
		t.Fatalf("expected approval, got %+v", adm)
	}
}

func TestCanOpenInvalidPortfolio(t *testing.T) {
	m := NewPortfolioRiskMonitor(DefaultConfig())
	adm := m.CanOpen("AAPL", 1000, snapshot(0, 0), nil)
	if adm.Allowed || adm.Reason != model.ReasonInvalidCandidate {
		t.Fatalf("expected invalid-candidate rejection, got %+v", adm)
	}
}
