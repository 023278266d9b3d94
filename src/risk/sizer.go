package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

// SizeRequest carries everything the sizer needs for one candidate. The
// caller resolves the effective position cap (conviction override or the
// default) before sizing.
type SizeRequest struct {
	EntryPrice        float64
	StopPrice         float64
	PortfolioValue    float64
	DeployableCash    float64
	MaxPositionPct    float64
	CircuitMultiplier float64
	Stats             *model.TradeStats
}

// SizeResult reports the admissible quantity. Quantity zero is a valid
// "do not trade" outcome, not an error.
type SizeResult struct {
	Quantity    int64   `json:"quantity"`
	Notional    float64 `json:"notional"`
	RiskDollars float64 `json:"risk_dollars"`
	RiskPct     float64 `json:"risk_pct"`
	KellyCap    float64 `json:"kelly_cap,omitempty"`
	Detail      string  `json:"detail"`
}

// PositionSizer converts a per-trade risk budget into a whole-unit
// quantity, bounded by the position cap, deployable cash, an optional
// half-Kelly ceiling, and the circuit breaker's size multiplier.
type PositionSizer struct {
	cfg Config
}

func NewPositionSizer(cfg Config) *PositionSizer {
	return &PositionSizer{cfg: cfg}
}

// HalfKelly computes the half-strength Kelly fraction from trailing
// statistics, clamped to [0, 1]. Unusable stats yield 0.
func HalfKelly(stats model.TradeStats) float64 {
	if !stats.Usable() {
		return 0
	}
	winRate := decimal.NewFromFloat(stats.WinRate)
	ratio := decimal.NewFromFloat(stats.AvgWin).Div(decimal.NewFromFloat(stats.AvgLoss))
	loseRate := decimal.NewFromInt(1).Sub(winRate)

	kelly := winRate.Sub(loseRate.Div(ratio))
	kelly = kelly.Div(decimal.NewFromInt(2))

	if kelly.IsNegative() {
		return 0
	}
	if kelly.GreaterThan(decimal.NewFromInt(1)) {
		return 1
	}
	f, _ := kelly.Float64()
	return f
}

// Size computes the final whole-unit quantity for a candidate entry.
func (s *PositionSizer) Size(req SizeRequest) SizeResult {
	if req.EntryPrice <= 0 || req.StopPrice <= 0 || req.PortfolioValue <= 0 {
		return SizeResult{Detail: "invalid prices or portfolio value"}
	}

	entry := decimal.NewFromFloat(req.EntryPrice)
	stop := decimal.NewFromFloat(req.StopPrice)
	pv := decimal.NewFromFloat(req.PortfolioValue)

	riskPerUnit := entry.Sub(stop).Abs()
	if riskPerUnit.IsZero() {
		return SizeResult{Detail: "stop equals entry, no risk per unit"}
	}

	riskDollars := pv.Mul(decimal.NewFromFloat(s.cfg.RiskFraction))
	rawQty := riskDollars.Div(riskPerUnit)
	detail := fmt.Sprintf("risk-based at %.1f%% of portfolio", s.cfg.RiskFraction*100)

	capQty := pv.Mul(decimal.NewFromFloat(req.MaxPositionPct)).Div(entry)
	if capQty.LessThan(rawQty) {
		detail = fmt.Sprintf("capped at %.0f%% position limit", req.MaxPositionPct*100)
	}

	cashCap := decimal.NewFromFloat(req.DeployableCash)
	kellyCap := 0.0
	if req.Stats != nil {
		if k := HalfKelly(*req.Stats); k > 0 {
			kellyCap = k
			cashCap = cashCap.Mul(decimal.NewFromFloat(k))
		}
	}
	cashQty := cashCap.Div(entry)
	if cashQty.LessThan(rawQty) && cashQty.LessThan(capQty) {
		detail = "capped at deployable cash"
		if kellyCap > 0 {
			detail = fmt.Sprintf("capped at half-Kelly %.1f%% of deployable cash", kellyCap*100)
		}
	}

	final := decimal.Min(rawQty, capQty, cashQty)
	if req.CircuitMultiplier >= 0 {
		final = final.Mul(decimal.NewFromFloat(req.CircuitMultiplier))
	}

	qty := final.Floor().IntPart()
	if qty <= 0 {
		return SizeResult{KellyCap: kellyCap, Detail: "sized to zero units"}
	}

	notional := decimal.NewFromInt(qty).Mul(entry)
	if notional.LessThan(decimal.NewFromFloat(s.cfg.MinTradeDollars)) {
		return SizeResult{
			KellyCap: kellyCap,
			Detail:   fmt.Sprintf("notional %s below $%.2f minimum", notional.StringFixed(2), s.cfg.MinTradeDollars),
		}
	}

	actualRisk := decimal.NewFromInt(qty).Mul(riskPerUnit)
	riskPct, _ := actualRisk.Div(pv).Float64()
	notionalF, _ := notional.Float64()
	riskF, _ := actualRisk.Float64()

	result := SizeResult{
		Quantity:    qty,
		Notional:    notionalF,
		RiskDollars: riskF,
		RiskPct:     riskPct,
		KellyCap:    kellyCap,
		Detail:      detail,
	}
	logger.WithFields(logger.Fields{
		"quantity": qty,
		"notional": notionalF,
		"risk":     riskF,
	}).Debug("position sized")
	return result
}
